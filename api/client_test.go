package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenmart/storefront/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, nil)
}

func TestListArticles(t *testing.T) {
	t.Run("passes filter as query parameters and decodes the page", func(t *testing.T) {
		var gotQuery map[string][]string
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/articles/", r.URL.Path)
			gotQuery = r.URL.Query()
			results := make([]models.Article, 10)
			for i := range results {
				results[i] = models.Article{ID: uint(i + 1), Title: fmt.Sprintf("article %d", i+1)}
			}
			_ = json.NewEncoder(w).Encode(Page[models.Article]{Count: 25, Results: results})
		}))

		page, err := client.ListArticles(context.Background(), ArticleFilter{
			Search: "quinoa", Category: "grains", Page: 2, PageSize: 10,
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"quinoa"}, gotQuery["search"])
		assert.Equal(t, []string{"grains"}, gotQuery["category"])
		assert.Equal(t, []string{"2"}, gotQuery["page"])
		assert.Equal(t, []string{"10"}, gotQuery["page_size"])
		assert.Equal(t, 25, page.Count)
		assert.Len(t, page.Results, 10)
	})

	t.Run("zero matches is empty results, no error", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(Page[models.Article]{Count: 0})
		}))

		page, err := client.ListArticles(context.Background(), ArticleFilter{Search: "quinoa"})
		require.NoError(t, err)
		assert.Empty(t, page.Results)
		assert.Equal(t, 0, page.Count)
	})
}

func TestErrorTaxonomy(t *testing.T) {
	t.Run("404 on a single fetch is ErrNotFound", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
		}))

		_, err := client.GetArticle(context.Background(), 42)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("403 is ErrUnauthorized", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))

		err := client.DeleteArticle(context.Background(), 1)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("400 on a mutation is a ValidationError with detail", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"name already exists"}`))
		}))

		_, err := client.CreateCategory(context.Background(), NameInput{Name: "grains"})
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, http.StatusBadRequest, vErr.Status)
		assert.Equal(t, "name already exists", vErr.Detail)
	})

	t.Run("500 is a StatusError", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		_, err := client.ListTags(context.Background())
		var sErr *StatusError
		require.ErrorAs(t, err, &sErr)
		assert.Equal(t, http.StatusInternalServerError, sErr.Status)
	})

	t.Run("unreachable backend surfaces a wrapped transport error", func(t *testing.T) {
		client := New("http://127.0.0.1:1", time.Second, nil)
		_, err := client.GetContactInfo(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestCreateArticleMultipart(t *testing.T) {
	var gotContentType string
	var gotFields map[string]string
	var gotTags []string
	var gotCover []byte

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))

		gotFields = map[string]string{}
		for _, k := range []string{"title", "excerpt", "body", "category", "status"} {
			gotFields[k] = r.FormValue(k)
		}
		gotTags = r.MultipartForm.Value["tags"]

		f, _, err := r.FormFile("cover_image")
		require.NoError(t, err)
		defer f.Close()
		buf := make([]byte, 32)
		n, _ := f.Read(buf)
		gotCover = buf[:n]

		_ = json.NewEncoder(w).Encode(models.Article{ID: 7, Title: r.FormValue("title")})
	}))

	article, err := client.CreateArticle(context.Background(), ArticleInput{
		Title:      "Cooking with quinoa",
		Excerpt:    "a primer",
		Body:       "# Quinoa\n\nIt cooks fast.",
		CategoryID: 3,
		TagIDs:     []uint{1, 2},
		Status:     models.StatusPublished,
		CoverImage: strings.NewReader("fake-image-bytes"),
		CoverName:  "cover.jpg",
	})

	require.NoError(t, err)
	assert.Equal(t, uint(7), article.ID)
	assert.True(t, strings.HasPrefix(gotContentType, "multipart/form-data"))
	assert.Equal(t, "Cooking with quinoa", gotFields["title"])
	assert.Equal(t, "3", gotFields["category"])
	assert.Equal(t, models.StatusPublished, gotFields["status"])
	assert.ElementsMatch(t, []string{"1", "2"}, gotTags)
	assert.Equal(t, "fake-image-bytes", string(gotCover))
}

func TestDeleteArticle(t *testing.T) {
	deleted := false
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/articles/5/", r.URL.Path)
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.DeleteArticle(context.Background(), 5))
	assert.True(t, deleted)
}

func TestIncrementVisitorCount(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/visitor-count/increment/", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		_ = json.NewEncoder(w).Encode(map[string]int{"count": 1234})
	}))

	n, err := client.IncrementVisitorCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1234, n)
}

func TestReadDetailFallsBackToRawBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("plain failure text"))
	}))

	_, err := client.CreateTag(context.Background(), NameInput{Name: "x"})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "plain failure text", vErr.Detail)
}
