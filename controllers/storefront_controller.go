package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/greenmart/storefront/api"
	"github.com/greenmart/storefront/identity"
	"github.com/greenmart/storefront/middleware"
	"github.com/greenmart/storefront/models"
	"github.com/greenmart/storefront/store"
	"github.com/greenmart/storefront/utils"
)

// StorefrontController serves the public article listing, detail, comment,
// contact and feedback views.
type StorefrontController struct {
	api      *api.Client
	cache    *utils.Cache
	idStore  *identity.Store
	pageSize int
}

// NewStorefrontController wires the controller's dependencies.
func NewStorefrontController(client *api.Client, cache *utils.Cache, idStore *identity.Store, pageSize int) *StorefrontController {
	return &StorefrontController{api: client, cache: cache, idStore: idStore, pageSize: pageSize}
}

// ListArticles returns one page of published articles. With no search or
// category filter active on page 1, the first result is split out as the
// featured article and the remainder populate the list. A page requested
// beyond the last lands on the last page.
func (s *StorefrontController) ListArticles(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"), s.pageSize)
	search := strings.TrimSpace(ctx.Query("search"))
	category := strings.TrimSpace(ctx.Query("category"))

	// Cache homepage/category lists when no search term to avoid cache key explosion
	if search == "" {
		if b, ok := s.cache.GetBytes(articleListKey(category, page, pageSize)); ok {
			ctx.Data(200, "application/json", b)
			return
		}
	}

	filter := api.ArticleFilter{
		Search:   search,
		Category: category,
		Page:     page,
		PageSize: pageSize,
	}
	result, err := s.api.ListArticles(ctx.Request.Context(), filter)
	if errors.Is(err, api.ErrNotFound) && page > 1 {
		// Past the last page: learn the count from page 1, then land on the
		// last page.
		filter.Page = 1
		if first, ferr := s.api.ListArticles(ctx.Request.Context(), filter); ferr == nil {
			if last := store.TotalPages(first.Count, pageSize); last > 1 {
				page = last
				filter.Page = last
				result, err = s.api.ListArticles(ctx.Request.Context(), filter)
			} else {
				page = 1
				result, err = first, nil
			}
		}
	}
	if err != nil {
		writeAPIError(ctx, err)
		return
	}

	items := result.Results
	var featured *models.Article
	if search == "" && category == "" && page == 1 && len(items) > 0 {
		featured = &items[0]
		items = items[1:]
	}

	payload := gin.H{
		"featured": featured,
		"items":    items,
		"pagination": utils.Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      result.Count,
			TotalPages: store.TotalPages(result.Count, pageSize),
		},
	}
	if search == "" {
		s.cache.SetJSON(articleListKey(category, page, pageSize), utils.JSONResponse{Code: 0, Message: "success", Data: payload})
	}
	utils.Success(ctx, payload)
}

func articleListKey(category string, page, pageSize int) string {
	return fmt.Sprintf("cache:articles:list:cat=%s:page=%d:size=%d", category, page, pageSize)
}

// GetArticle returns one article with its body rendered to sanitized HTML,
// a read-time estimate, and its comments threaded.
func (s *StorefrontController) GetArticle(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("cache:article:detail:%d", id)
	if b, ok := s.cache.GetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	article, err := s.api.GetArticle(ctx.Request.Context(), id)
	if err != nil {
		writeAPIError(ctx, err)
		return
	}

	article.BodyHTML = utils.RenderMarkdown(article.Body)
	if article.ReadTime == 0 {
		article.ReadTime = utils.ReadTime(article.Body)
	}

	// Comments ride along on the detail view; a comment failure degrades to
	// an empty thread instead of failing the article.
	var comments []models.Comment
	if page, err := s.api.ListComments(ctx.Request.Context(), id, 1, 100); err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("load comments for article %d failed: %v", id, err)
		}
	} else {
		comments = ThreadComments(page.Results)
	}

	payload := gin.H{"article": article, "comments": comments}
	s.cache.SetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload})
	utils.Success(ctx, payload)
}

// CreateComment posts a comment on an article as either a logged-in user
// (author id forwarded by the frontend session) or the client's anonymous
// identity.
func (s *StorefrontController) CreateComment(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req struct {
		Body     string `json:"body" binding:"required"`
		AuthorID uint   `json:"author_id"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}

	body := utils.Sanitize(strings.TrimSpace(req.Body))
	if body == "" {
		utils.Error(ctx, http.StatusBadRequest, 40023, "comment body cannot be empty")
		return
	}

	in := api.CommentInput{
		ArticleID:   id,
		Body:        body,
		AuthorID:    req.AuthorID,
		ParentID:    req.ParentID,
		SubmitterIP: ctx.ClientIP(),
	}
	if in.AuthorID == 0 {
		anon, err := s.idStore.Current(ctx.Request.Context(), clientID(ctx))
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50040, "identity store unavailable")
			return
		}
		if anon == nil {
			utils.Error(ctx, http.StatusUnauthorized, 40130, "register a comment identity first")
			return
		}
		in.AnonName = anon.Name
		in.AnonEmail = anon.Email
	}

	comment, err := s.api.CreateComment(ctx.Request.Context(), in)
	if err != nil {
		writeAPIError(ctx, err)
		return
	}

	s.cache.InvalidateByPrefix(fmt.Sprintf("cache:article:detail:%d", id))
	utils.Success(ctx, gin.H{"comment": comment})
}

// Profile returns the backend profile of the authenticated session user.
// The user ID comes from the validated bearer token, never from the request.
func (s *StorefrontController) Profile(ctx *gin.Context) {
	u, err := s.api.GetUser(ctx.Request.Context(), ctx.GetUint(middleware.ContextUserIDKey))
	if err != nil {
		writeAPIError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"user": u})
}

// ListCategories returns all categories for the storefront navigation.
func (s *StorefrontController) ListCategories(ctx *gin.Context) {
	if b, ok := s.cache.GetBytes("cache:categories:all"); ok {
		ctx.Data(200, "application/json", b)
		return
	}
	categories, err := s.api.ListCategories(ctx.Request.Context())
	if err != nil {
		writeAPIError(ctx, err)
		return
	}
	payload := gin.H{"items": categories}
	s.cache.SetJSON("cache:categories:all", utils.JSONResponse{Code: 0, Message: "success", Data: payload})
	utils.Success(ctx, payload)
}

// ListTags returns all tags.
func (s *StorefrontController) ListTags(ctx *gin.Context) {
	tags, err := s.api.ListTags(ctx.Request.Context())
	if err != nil {
		writeAPIError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": tags})
}

// GetContactInfo returns the site contact block.
func (s *StorefrontController) GetContactInfo(ctx *gin.Context) {
	info, err := s.api.GetContactInfo(ctx.Request.Context())
	if err != nil {
		writeAPIError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"contact": info})
}

// SendFeedback forwards a visitor message to the backend.
func (s *StorefrontController) SendFeedback(ctx *gin.Context) {
	var req models.Feedback
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}
	req.Message = utils.Sanitize(strings.TrimSpace(req.Message))
	if req.Message == "" {
		utils.Error(ctx, http.StatusBadRequest, 40025, "message cannot be empty")
		return
	}
	if err := s.api.SendFeedback(ctx.Request.Context(), req); err != nil {
		writeAPIError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "feedback received"})
}

// ThreadComments derives the reply tree from the flat comment list using
// parent references. Replies are attached in list order; orphaned replies
// whose parent is missing surface at the top level.
func ThreadComments(flat []models.Comment) []models.Comment {
	present := make(map[uint]bool, len(flat))
	for _, c := range flat {
		present[c.ID] = true
	}

	byParent := make(map[uint][]models.Comment)
	var roots []models.Comment
	for _, c := range flat {
		c.Replies = nil
		if c.ParentID != nil && present[*c.ParentID] {
			byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
			continue
		}
		roots = append(roots, c)
	}

	var attach func(c *models.Comment)
	attach = func(c *models.Comment) {
		for _, child := range byParent[c.ID] {
			attach(&child)
			c.Replies = append(c.Replies, child)
		}
	}
	for i := range roots {
		attach(&roots[i])
	}
	return roots
}
