package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/greenmart/storefront/api"
	"github.com/greenmart/storefront/models"
	"github.com/greenmart/storefront/store"
	"github.com/greenmart/storefront/utils"
)

// AdminController serves the dashboard tables: users, products, orders,
// categories, tags and articles. Each table holds one fetched backend page
// in a collection store, filters it in memory, and splices mutations into
// the held snapshot without a refetch.
type AdminController struct {
	api      *api.Client
	cache    *utils.Cache
	pageSize int
	logger   *zap.SugaredLogger

	articles *adminTable[models.Article]
	users    *adminTable[models.User]
	products *adminTable[models.Product]
	orders   *adminTable[models.Order]

	categories *store.Collection[models.Category]
	tags       *store.Collection[models.Tag]
}

type adminTable[T store.Entity] struct {
	col   *store.Collection[T]
	pager *store.Pager
}

func newAdminTable[T store.Entity](pageSize int, logger *zap.SugaredLogger) *adminTable[T] {
	return &adminTable[T]{
		col:   store.NewCollection[T](logger),
		pager: store.NewPager(pageSize),
	}
}

// NewAdminController wires the admin tables.
func NewAdminController(client *api.Client, cache *utils.Cache, pageSize int, logger *zap.SugaredLogger) *AdminController {
	return &AdminController{
		api:        client,
		cache:      cache,
		pageSize:   pageSize,
		logger:     logger,
		articles:   newAdminTable[models.Article](pageSize, logger),
		users:      newAdminTable[models.User](pageSize, logger),
		products:   newAdminTable[models.Product](pageSize, logger),
		orders:     newAdminTable[models.Order](pageSize, logger),
		categories: store.NewCollection[models.Category](logger),
		tags:       store.NewCollection[models.Tag](logger),
	}
}

// Dashboard returns the admin home counters.
func (a *AdminController) Dashboard(ctx *gin.Context) {
	d, err := a.api.GetDashboard(ctx.Request.Context())
	if err != nil {
		writeAPIError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"dashboard": d})
}

// listTable fetches the requested backend page into the table's collection,
// applies the in-memory filter and responds with the page envelope. When the
// requested page is past the end the page clamps to the last one.
func listTable[T store.Entity](ctx *gin.Context, t *adminTable[T], fetch func(ctx context.Context, page, size int) (api.Page[T], error), match func(item T) bool, logger *zap.SugaredLogger) {
	page, _ := parsePagination(ctx.Query("page"), "", t.pager.PageSize())
	size := t.pager.PageSize()

	load := func(p int) store.FetchFunc[T] {
		return func(c context.Context) ([]T, int, error) {
			res, err := fetch(c, p, size)
			if err != nil {
				return nil, 0, err
			}
			return res.Results, res.Count, nil
		}
	}

	err := t.col.Activate(ctx.Request.Context(), load(page))
	if errors.Is(err, api.ErrNotFound) && page > 1 {
		// Past the last page: learn the count from page 1, then land on the
		// last page.
		if err = t.col.Activate(ctx.Request.Context(), load(1)); err == nil {
			t.pager.SetCount(t.col.Count())
			if last := t.pager.TotalPages(); last > 1 {
				page = last
				err = t.col.Activate(ctx.Request.Context(), load(page))
			} else {
				page = 1
			}
		}
	}
	if err != nil {
		if errors.Is(err, store.ErrStale) {
			utils.Error(ctx, http.StatusConflict, 40910, "superseded by a newer request")
			return
		}
		writeAPIError(ctx, err)
		return
	}

	t.pager.SetCount(t.col.Count())
	t.pager.SetPage(page)

	held := t.col.Snapshot()
	filtered := make([]T, 0, len(held))
	for _, item := range held {
		if match(item) {
			filtered = append(filtered, item)
		}
	}

	// The filter only sees the fetched page, not the full result set.
	if logger != nil && t.col.Count() > len(held) && len(filtered) < len(held) {
		logger.Debugw("admin filter applied to a single page of a larger set",
			"held", len(held), "total", t.col.Count())
	}

	utils.Success(ctx, gin.H{
		"items":    filtered,
		"filtered": len(filtered),
		"pagination": utils.Pagination{
			Page:       t.pager.Page(),
			PageSize:   size,
			Total:      t.col.Count(),
			TotalPages: t.pager.TotalPages(),
		},
	})
}

// ---- users ----

// ListUsers renders the user table with name/email substring and role
// equality filtering.
func (a *AdminController) ListUsers(ctx *gin.Context) {
	q := strings.TrimSpace(ctx.Query("q"))
	role := strings.TrimSpace(ctx.Query("role"))
	listTable(ctx, a.users, a.api.ListUsers, func(u models.User) bool {
		if !matchSubstring(q, u.Username, u.Email) {
			return false
		}
		switch role {
		case "admin":
			return u.IsAdmin
		case "normal":
			return !u.IsAdmin
		default:
			return true
		}
	}, a.logger)
}

// UpdateUser saves user fields through the backend and splices the canonical
// record into the held table.
func (a *AdminController) UpdateUser(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var in api.UserInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}
	u, err := a.users.col.Update(ctx.Request.Context(), func(c context.Context) (models.User, error) {
		return a.api.UpdateUser(c, id, in)
	})
	if err != nil {
		writeAPIError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"user": u})
}

// DeleteUser removes a user after explicit confirmation.
func (a *AdminController) DeleteUser(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if !confirmRequested(ctx) {
		utils.Error(ctx, http.StatusBadRequest, 40090, "confirmation required")
		return
	}
	if err := a.users.col.Delete(ctx.Request.Context(), id, func(c context.Context) error {
		return a.api.DeleteUser(c, id)
	}); err != nil {
		writeAPIError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "user deleted"})
}

// ---- products ----

// ListProducts renders the product table with name/description substring and
// category equality filtering.
func (a *AdminController) ListProducts(ctx *gin.Context) {
	q := strings.TrimSpace(ctx.Query("q"))
	category := strings.TrimSpace(ctx.Query("category"))
	listTable(ctx, a.products, a.api.ListProducts, func(p models.Product) bool {
		if !matchSubstring(q, p.Name, p.Description) {
			return false
		}
		return category == "" || strings.EqualFold(p.Category.Name, category)
	}, a.logger)
}

// CreateProduct creates a product and prepends it to the held table.
func (a *AdminController) CreateProduct(ctx *gin.Context) {
	var in api.ProductInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid request payload")
		return
	}
	p, err := a.products.col.Create(ctx.Request.Context(), func(c context.Context) (models.Product, error) {
		return a.api.CreateProduct(c, in)
	})
	if err != nil {
		writeAPIError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"product": p})
}

// UpdateProduct saves product fields.
func (a *AdminController) UpdateProduct(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var in api.ProductInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid request payload")
		return
	}
	p, err := a.products.col.Update(ctx.Request.Context(), func(c context.Context) (models.Product, error) {
		return a.api.UpdateProduct(c, id, in)
	})
	if err != nil {
		writeAPIError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"product": p})
}

// DeleteProduct removes a product after explicit confirmation.
func (a *AdminController) DeleteProduct(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if !confirmRequested(ctx) {
		utils.Error(ctx, http.StatusBadRequest, 40091, "confirmation required")
		return
	}
	if err := a.products.col.Delete(ctx.Request.Context(), id, func(c context.Context) error {
		return a.api.DeleteProduct(c, id)
	}); err != nil {
		writeAPIError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "product deleted"})
}

// ---- orders ----

// ListOrders renders the order table with customer substring and status
// equality filtering.
func (a *AdminController) ListOrders(ctx *gin.Context) {
	q := strings.TrimSpace(ctx.Query("q"))
	status := strings.TrimSpace(ctx.Query("status"))
	listTable(ctx, a.orders, a.api.ListOrders, func(o models.Order) bool {
		if !matchSubstring(q, o.CustomerName, o.CustomerEmail) {
			return false
		}
		return status == "" || strings.EqualFold(o.Status, status)
	}, a.logger)
}

// UpdateOrderStatus moves an order through its lifecycle.
func (a *AdminController) UpdateOrderStatus(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid request payload")
		return
	}
	o, err := a.orders.col.Update(ctx.Request.Context(), func(c context.Context) (models.Order, error) {
		return a.api.UpdateOrderStatus(c, id, req.Status)
	})
	if err != nil {
		writeAPIError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"order": o})
}

// DeleteOrder removes an order after explicit confirmation.
func (a *AdminController) DeleteOrder(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if !confirmRequested(ctx) {
		utils.Error(ctx, http.StatusBadRequest, 40092, "confirmation required")
		return
	}
	if err := a.orders.col.Delete(ctx.Request.Context(), id, func(c context.Context) error {
		return a.api.DeleteOrder(c, id)
	}); err != nil {
		writeAPIError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "order deleted"})
}

// ---- comments ----

// DeleteComment removes a comment after explicit confirmation. Moderation is
// a straight passthrough; comments are never held in an admin table.
func (a *AdminController) DeleteComment(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if !confirmRequested(ctx) {
		utils.Error(ctx, http.StatusBadRequest, 40096, "confirmation required")
		return
	}
	if err := a.api.DeleteComment(ctx.Request.Context(), id); err != nil {
		writeAPIError(ctx, err)
		return
	}
	// The owning article is unknown here, so every cached detail view goes.
	a.cache.InvalidateByPrefix("cache:article:detail:")
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}

// ---- articles ----

// ListArticles renders the article table with title/excerpt substring plus
// category and status filtering.
func (a *AdminController) ListArticles(ctx *gin.Context) {
	q := strings.TrimSpace(ctx.Query("q"))
	category := strings.TrimSpace(ctx.Query("category"))
	status := strings.TrimSpace(ctx.Query("status"))
	fetch := func(c context.Context, page, size int) (api.Page[models.Article], error) {
		return a.api.ListArticles(c, api.ArticleFilter{Page: page, PageSize: size})
	}
	listTable(ctx, a.articles, fetch, func(ar models.Article) bool {
		if !matchSubstring(q, ar.Title, ar.Excerpt) {
			return false
		}
		if category != "" && !strings.EqualFold(ar.Category.Name, category) {
			return false
		}
		return status == "" || ar.Status == status
	}, a.logger)
}

// CreateArticle accepts the admin form (multipart, the cover image rides
// along) and prepends the canonical record.
func (a *AdminController) CreateArticle(ctx *gin.Context) {
	in, ok := a.articleInput(ctx)
	if !ok {
		return
	}
	ar, err := a.articles.col.Create(ctx.Request.Context(), func(c context.Context) (models.Article, error) {
		return a.api.CreateArticle(c, in)
	})
	if err != nil {
		writeAPIError(ctx, err)
		return
	}
	a.invalidateArticleCaches(0)
	utils.Success(ctx, gin.H{"article": ar})
}

// UpdateArticle saves the admin form for an existing article.
func (a *AdminController) UpdateArticle(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	in, ok := a.articleInput(ctx)
	if !ok {
		return
	}
	ar, err := a.articles.col.Update(ctx.Request.Context(), func(c context.Context) (models.Article, error) {
		return a.api.UpdateArticle(c, id, in)
	})
	if err != nil {
		writeAPIError(ctx, err)
		return
	}
	a.invalidateArticleCaches(id)
	utils.Success(ctx, gin.H{"article": ar})
}

// DeleteArticle removes an article after explicit confirmation.
func (a *AdminController) DeleteArticle(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if !confirmRequested(ctx) {
		utils.Error(ctx, http.StatusBadRequest, 40093, "confirmation required")
		return
	}
	if err := a.articles.col.Delete(ctx.Request.Context(), id, func(c context.Context) error {
		return a.api.DeleteArticle(c, id)
	}); err != nil {
		writeAPIError(ctx, err)
		return
	}
	a.invalidateArticleCaches(id)
	utils.Success(ctx, gin.H{"message": "article deleted"})
}

func (a *AdminController) articleInput(ctx *gin.Context) (api.ArticleInput, bool) {
	title := utils.Sanitize(strings.TrimSpace(ctx.PostForm("title")))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40034, "title cannot be empty")
		return api.ArticleInput{}, false
	}
	categoryID, _ := strconv.ParseUint(ctx.PostForm("category"), 10, 32)
	status := ctx.PostForm("status")
	if status == "" {
		status = models.StatusDraft
	}
	if status != models.StatusDraft && status != models.StatusPublished {
		utils.Error(ctx, http.StatusBadRequest, 40035, "invalid status")
		return api.ArticleInput{}, false
	}

	in := api.ArticleInput{
		Title:      title,
		Excerpt:    utils.Sanitize(ctx.PostForm("excerpt")),
		Body:       ctx.PostForm("body"), // raw markdown; sanitized at render time
		CategoryID: uint(categoryID),
		Status:     status,
	}
	for _, raw := range ctx.PostFormArray("tags") {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			in.TagIDs = append(in.TagIDs, uint(id))
		}
	}

	if fh, err := ctx.FormFile("cover_image"); err == nil && fh != nil {
		f, err := fh.Open()
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40036, "unreadable cover image")
			return api.ArticleInput{}, false
		}
		// Closed when the request context ends; the API client consumes it
		// before then.
		in.CoverImage = f
		in.CoverName = fh.Filename
	}
	return in, true
}

func (a *AdminController) invalidateArticleCaches(id uint) {
	a.cache.InvalidateByPrefix("cache:articles:list:")
	if id != 0 {
		a.cache.InvalidateByPrefix("cache:article:detail:" + strconv.FormatUint(uint64(id), 10))
	}
}

// ---- categories and tags ----

// ListCategories renders the full category table with name filtering; the
// backend does not paginate taxonomy.
func (a *AdminController) ListCategories(ctx *gin.Context) {
	q := strings.TrimSpace(ctx.Query("q"))
	err := a.categories.Activate(ctx.Request.Context(), func(c context.Context) ([]models.Category, int, error) {
		items, err := a.api.ListCategories(c)
		return items, len(items), err
	})
	if err != nil && !errors.Is(err, store.ErrStale) {
		writeAPIError(ctx, err)
		return
	}
	held := a.categories.Snapshot()
	filtered := make([]models.Category, 0, len(held))
	for _, cat := range held {
		if matchSubstring(q, cat.Name) {
			filtered = append(filtered, cat)
		}
	}
	utils.Success(ctx, gin.H{"items": filtered, "total": a.categories.Count()})
}

// CreateCategory creates a category; duplicate or empty names come back as
// validation failures from the backend.
func (a *AdminController) CreateCategory(ctx *gin.Context) {
	in, ok := nameInput(ctx)
	if !ok {
		return
	}
	cat, err := a.categories.Create(ctx.Request.Context(), func(c context.Context) (models.Category, error) {
		return a.api.CreateCategory(c, in)
	})
	if err != nil {
		writeAPIError(ctx, err)
		return
	}
	a.cache.InvalidateByPrefix("cache:categories:")
	utils.Success(ctx, gin.H{"category": cat})
}

// UpdateCategory renames a category.
func (a *AdminController) UpdateCategory(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	in, ok := nameInput(ctx)
	if !ok {
		return
	}
	cat, err := a.categories.Update(ctx.Request.Context(), func(c context.Context) (models.Category, error) {
		return a.api.UpdateCategory(c, id, in)
	})
	if err != nil {
		writeAPIError(ctx, err)
		return
	}
	a.cache.InvalidateByPrefix("cache:categories:")
	utils.Success(ctx, gin.H{"category": cat})
}

// DeleteCategory removes a category after explicit confirmation. The fate of
// referencing articles is the backend's policy.
func (a *AdminController) DeleteCategory(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if !confirmRequested(ctx) {
		utils.Error(ctx, http.StatusBadRequest, 40094, "confirmation required")
		return
	}
	if err := a.categories.Delete(ctx.Request.Context(), id, func(c context.Context) error {
		return a.api.DeleteCategory(c, id)
	}); err != nil {
		writeAPIError(ctx, err)
		return
	}
	a.cache.InvalidateByPrefix("cache:categories:")
	utils.Success(ctx, gin.H{"message": "category deleted"})
}

// ListTags renders the full tag table with name filtering.
func (a *AdminController) ListTags(ctx *gin.Context) {
	q := strings.TrimSpace(ctx.Query("q"))
	err := a.tags.Activate(ctx.Request.Context(), func(c context.Context) ([]models.Tag, int, error) {
		items, err := a.api.ListTags(c)
		return items, len(items), err
	})
	if err != nil && !errors.Is(err, store.ErrStale) {
		writeAPIError(ctx, err)
		return
	}
	held := a.tags.Snapshot()
	filtered := make([]models.Tag, 0, len(held))
	for _, t := range held {
		if matchSubstring(q, t.Name) {
			filtered = append(filtered, t)
		}
	}
	utils.Success(ctx, gin.H{"items": filtered, "total": a.tags.Count()})
}

// CreateTag creates a tag.
func (a *AdminController) CreateTag(ctx *gin.Context) {
	in, ok := nameInput(ctx)
	if !ok {
		return
	}
	t, err := a.tags.Create(ctx.Request.Context(), func(c context.Context) (models.Tag, error) {
		return a.api.CreateTag(c, in)
	})
	if err != nil {
		writeAPIError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"tag": t})
}

// UpdateTag renames a tag.
func (a *AdminController) UpdateTag(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	in, ok := nameInput(ctx)
	if !ok {
		return
	}
	t, err := a.tags.Update(ctx.Request.Context(), func(c context.Context) (models.Tag, error) {
		return a.api.UpdateTag(c, id, in)
	})
	if err != nil {
		writeAPIError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"tag": t})
}

// DeleteTag removes a tag after explicit confirmation.
func (a *AdminController) DeleteTag(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if !confirmRequested(ctx) {
		utils.Error(ctx, http.StatusBadRequest, 40095, "confirmation required")
		return
	}
	if err := a.tags.Delete(ctx.Request.Context(), id, func(c context.Context) error {
		return a.api.DeleteTag(c, id)
	}); err != nil {
		writeAPIError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "tag deleted"})
}

func nameInput(ctx *gin.Context) (api.NameInput, bool) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40037, "name is required")
		return api.NameInput{}, false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40038, "name cannot be empty")
		return api.NameInput{}, false
	}
	return api.NameInput{Name: name}, true
}
