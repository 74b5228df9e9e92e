package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/greenmart/storefront/api"
	"github.com/greenmart/storefront/utils"
)

// VisitorCounter bumps the backend visitor counter for storefront page hits.
// The increment is fire-and-forget: a failure is logged and never affects
// the request.
func VisitorCounter(client *api.Client) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		if ctx.Request.Method != http.MethodGet || ctx.Writer.Status() >= 400 {
			return
		}
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/admin") || strings.HasPrefix(path, "/api/v1/admin") {
			return
		}

		go func() {
			bg, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := client.IncrementVisitorCount(bg); err != nil && utils.Sugar != nil {
				utils.Sugar.Debugf("visitor count increment failed: %v", err)
			}
		}()
	}
}
