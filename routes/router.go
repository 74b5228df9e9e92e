package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/greenmart/storefront/api"
	"github.com/greenmart/storefront/config"
	"github.com/greenmart/storefront/controllers"
	"github.com/greenmart/storefront/identity"
	"github.com/greenmart/storefront/middleware"
	"github.com/greenmart/storefront/utils"
)

// Deps carries the services the router wires into controllers. They are
// constructed once in main and passed down.
type Deps struct {
	API      *api.Client
	Cache    *utils.Cache
	Identity *identity.Store
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, deps Deps) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Count storefront page hits through the backend's visitor counter
	r.Use(middleware.VisitorCounter(deps.API))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	storefront := controllers.NewStorefrontController(deps.API, deps.Cache, deps.Identity, cfg.PageSize)
	identityController := controllers.NewIdentityController(deps.Identity)
	admin := controllers.NewAdminController(deps.API, deps.Cache, cfg.PageSize, utils.Sugar)

	v1 := r.Group("/api/v1")

	v1.GET("/articles", storefront.ListArticles)
	v1.GET("/articles/:id", storefront.GetArticle)
	v1.GET("/categories", storefront.ListCategories)
	v1.GET("/tags", storefront.ListTags)
	v1.GET("/contact", storefront.GetContactInfo)

	// Session-backed profile for logged-in commenters; tokens are issued by
	// the backend, the gateway only validates them.
	v1.GET("/session", middleware.AuthRequired(cfg.AdminJWTSecret), storefront.Profile)

	limited := v1.Group("")
	limited.Use(middleware.RateLimit(cfg.RateLimitPerMinute))
	limited.POST("/articles/:id/comments", storefront.CreateComment)
	limited.POST("/feedback", storefront.SendFeedback)
	limited.POST("/anon/login", identityController.RegisterOrLogin)
	limited.GET("/anon/me", identityController.Me)
	limited.POST("/anon/logout", identityController.Logout)

	adminGroup := v1.Group("/admin")
	adminGroup.Use(middleware.AdminRequired(cfg.AdminJWTSecret), middleware.RateLimit(cfg.RateLimitPerMinute))
	adminGroup.GET("/dashboard", admin.Dashboard)

	adminGroup.GET("/users", admin.ListUsers)
	adminGroup.PUT("/users/:id", admin.UpdateUser)
	adminGroup.DELETE("/users/:id", admin.DeleteUser)

	adminGroup.GET("/products", admin.ListProducts)
	adminGroup.POST("/products", admin.CreateProduct)
	adminGroup.PUT("/products/:id", admin.UpdateProduct)
	adminGroup.DELETE("/products/:id", admin.DeleteProduct)

	adminGroup.GET("/orders", admin.ListOrders)
	adminGroup.PUT("/orders/:id", admin.UpdateOrderStatus)
	adminGroup.DELETE("/orders/:id", admin.DeleteOrder)

	adminGroup.DELETE("/comments/:id", admin.DeleteComment)

	adminGroup.GET("/articles", admin.ListArticles)
	adminGroup.POST("/articles", admin.CreateArticle)
	adminGroup.PUT("/articles/:id", admin.UpdateArticle)
	adminGroup.DELETE("/articles/:id", admin.DeleteArticle)

	adminGroup.GET("/categories", admin.ListCategories)
	adminGroup.POST("/categories", admin.CreateCategory)
	adminGroup.PUT("/categories/:id", admin.UpdateCategory)
	adminGroup.DELETE("/categories/:id", admin.DeleteCategory)

	adminGroup.GET("/tags", admin.ListTags)
	adminGroup.POST("/tags", admin.CreateTag)
	adminGroup.PUT("/tags/:id", admin.UpdateTag)
	adminGroup.DELETE("/tags/:id", admin.DeleteTag)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
