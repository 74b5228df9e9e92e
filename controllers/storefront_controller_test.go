package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenmart/storefront/api"
	"github.com/greenmart/storefront/identity"
	"github.com/greenmart/storefront/middleware"
	"github.com/greenmart/storefront/models"
	"github.com/greenmart/storefront/utils"
)

const sessionSecret = "session-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
}

func newStorefront(t *testing.T, backend http.Handler) (*gin.Engine, *identity.Store) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client := api.New(srv.URL, 5*time.Second, nil)
	idStore := identity.NewStore(nil)
	s := NewStorefrontController(client, utils.NewCache(nil, time.Minute), idStore, 10)

	r := gin.New()
	r.GET("/api/v1/articles", s.ListArticles)
	r.GET("/api/v1/articles/:id", s.GetArticle)
	r.POST("/api/v1/articles/:id/comments", s.CreateComment)
	r.GET("/api/v1/session", middleware.AuthRequired(sessionSecret), s.Profile)
	return r, idStore
}

func articlesBackend(total, size int) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/articles/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("search") == "quinoa" {
			_ = json.NewEncoder(w).Encode(api.Page[models.Article]{Count: 0})
			return
		}
		page := 1
		if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
			page = p
		}
		start := (page - 1) * size
		if start >= total && page > 1 {
			http.Error(w, `{"detail":"invalid page"}`, http.StatusNotFound)
			return
		}
		end := start + size
		if end > total {
			end = total
		}
		results := make([]models.Article, 0, end-start)
		for i := start; i < end; i++ {
			results = append(results, models.Article{ID: uint(i + 1), Title: fmt.Sprintf("article %d", i+1)})
		}
		_ = json.NewEncoder(w).Encode(api.Page[models.Article]{Count: total, Results: results})
	})
	return mux
}

func TestStorefrontListArticles(t *testing.T) {
	t.Run("page one splits the featured article and reports total pages", func(t *testing.T) {
		r, _ := newStorefront(t, articlesBackend(25, 10))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/articles?page=1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var data struct {
			Featured   *models.Article `json:"featured"`
			Items      []models.Article `json:"items"`
			Pagination struct {
				Page       int `json:"page"`
				TotalPages int `json:"total_pages"`
				Total      int `json:"total"`
			} `json:"pagination"`
		}
		decodeEnvelope(t, rec, &data)

		require.NotNil(t, data.Featured)
		assert.Equal(t, uint(1), data.Featured.ID)
		assert.Len(t, data.Items, 9, "the remaining nine populate the list")
		assert.Equal(t, 3, data.Pagination.TotalPages)
		assert.Equal(t, 25, data.Pagination.Total)
	})

	t.Run("an active search keeps the full page flat", func(t *testing.T) {
		r, _ := newStorefront(t, articlesBackend(25, 10))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/articles?search=greens", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var data struct {
			Featured *models.Article  `json:"featured"`
			Items    []models.Article `json:"items"`
		}
		decodeEnvelope(t, rec, &data)
		assert.Nil(t, data.Featured)
		assert.Len(t, data.Items, 10)
	})

	t.Run("a page past the end lands on the last page", func(t *testing.T) {
		r, _ := newStorefront(t, articlesBackend(25, 10))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/articles?page=99", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var data struct {
			Featured   *models.Article  `json:"featured"`
			Items      []models.Article `json:"items"`
			Pagination struct {
				Page       int `json:"page"`
				TotalPages int `json:"total_pages"`
			} `json:"pagination"`
		}
		decodeEnvelope(t, rec, &data)

		assert.Equal(t, 3, data.Pagination.Page)
		assert.Equal(t, 3, data.Pagination.TotalPages)
		assert.Nil(t, data.Featured, "only page 1 carries a featured article")
		assert.Len(t, data.Items, 5, "the last page holds the remainder")
	})

	t.Run("zero matches renders an empty success", func(t *testing.T) {
		r, _ := newStorefront(t, articlesBackend(25, 10))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/articles?search=quinoa", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var data struct {
			Items      []models.Article `json:"items"`
			Pagination struct {
				TotalPages int `json:"total_pages"`
			} `json:"pagination"`
		}
		decodeEnvelope(t, rec, &data)
		assert.Empty(t, data.Items)
		assert.Equal(t, 1, data.Pagination.TotalPages, "total pages never drops below one")
	})
}

func TestStorefrontGetArticle(t *testing.T) {
	parent := uint(1)
	mux := http.NewServeMux()
	mux.HandleFunc("/articles/7/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.Article{
			ID:    7,
			Title: "Cooking with quinoa",
			Body:  "# Heading\n\nSome **body** text.\n\n<script>alert(1)</script>",
		})
	})
	mux.HandleFunc("/comments/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.Page[models.Comment]{Count: 3, Results: []models.Comment{
			{ID: 1, ArticleID: 7, Body: "first"},
			{ID: 2, ArticleID: 7, Body: "reply", ParentID: &parent},
			{ID: 3, ArticleID: 7, Body: "second"},
		}})
	})

	r, _ := newStorefront(t, mux)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/articles/7", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Article  models.Article   `json:"article"`
		Comments []models.Comment `json:"comments"`
	}
	decodeEnvelope(t, rec, &data)

	assert.Contains(t, data.Article.BodyHTML, "<h1")
	assert.NotContains(t, data.Article.BodyHTML, "<script>", "rendered body is sanitized")
	assert.GreaterOrEqual(t, data.Article.ReadTime, 1)

	require.Len(t, data.Comments, 2, "reply is threaded under its parent")
	require.Len(t, data.Comments[0].Replies, 1)
	assert.Equal(t, uint(2), data.Comments[0].Replies[0].ID)
}

func TestStorefrontGetArticleNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
	})

	r, _ := newStorefront(t, mux)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/articles/99", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStorefrontCreateComment(t *testing.T) {
	newBackend := func(t *testing.T, created *api.CommentInput) http.Handler {
		mux := http.NewServeMux()
		mux.HandleFunc("/comments/", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			_ = json.NewDecoder(r.Body).Decode(created)
			_ = json.NewEncoder(w).Encode(models.Comment{ID: 11, ArticleID: created.ArticleID, Body: created.Body})
		})
		return mux
	}

	t.Run("anonymous commenter uses the current identity", func(t *testing.T) {
		var created api.CommentInput
		r, idStore := newStorefront(t, newBackend(t, &created))

		_, _, err := idStore.RegisterOrLogin(context.Background(), "client-1", "Alice", "alice@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/articles/7/comments",
			strings.NewReader(`{"body":"lovely recipe"}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: "gm_client", Value: "client-1"})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Alice", created.AnonName)
		assert.Equal(t, "alice@example.com", created.AnonEmail)
		assert.Equal(t, uint(7), created.ArticleID)
		assert.NotEmpty(t, created.SubmitterIP)
	})

	t.Run("no identity and no author is rejected", func(t *testing.T) {
		var created api.CommentInput
		r, _ := newStorefront(t, newBackend(t, &created))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/articles/7/comments",
			strings.NewReader(`{"body":"anonymous drive-by"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Zero(t, created.ArticleID, "no backend call is made")
	})
}

func TestStorefrontProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/7/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.User{ID: 7, Username: "bob", Email: "bob@example.com"})
	})

	t.Run("valid session token resolves the backend profile", func(t *testing.T) {
		r, _ := newStorefront(t, mux)
		token, err := utils.GenerateToken(sessionSecret, 7, "bob", false, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var data struct {
			User models.User `json:"user"`
		}
		decodeEnvelope(t, rec, &data)
		assert.Equal(t, uint(7), data.User.ID)
		assert.Equal(t, "bob", data.User.Username)
	})

	t.Run("no token is rejected before the backend is consulted", func(t *testing.T) {
		r, _ := newStorefront(t, mux)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestThreadCommentsOrphans(t *testing.T) {
	missing := uint(42)
	threaded := ThreadComments([]models.Comment{
		{ID: 1, Body: "root"},
		{ID: 2, Body: "orphan", ParentID: &missing},
	})
	require.Len(t, threaded, 2, "orphaned replies surface at the top level")
}
