package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/greenmart/storefront/models"
)

// ArticleFilter is passed through to the backend as query parameters
// verbatim; the backend performs filtering and pagination.
type ArticleFilter struct {
	Search   string
	Category string
	Page     int
	PageSize int
}

func (f ArticleFilter) query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(f.PageSize))
	}
	return q
}

// ArticleInput carries article fields for create/update. Articles travel as
// multipart form data because the cover image rides along with the fields.
type ArticleInput struct {
	Title      string
	Excerpt    string
	Body       string
	CategoryID uint
	TagIDs     []uint
	Status     string
	// CoverImage is optional; when set, CoverName names the uploaded file.
	CoverImage io.Reader
	CoverName  string
}

// ListArticles returns one backend page of articles matching the filter.
func (c *Client) ListArticles(ctx context.Context, f ArticleFilter) (Page[models.Article], error) {
	return listPage[models.Article](ctx, c, "/articles/", f.query())
}

// GetArticle fetches a single article; ErrNotFound when the backend 404s.
func (c *Client) GetArticle(ctx context.Context, id uint) (models.Article, error) {
	var a models.Article
	err := c.getJSON(ctx, fmt.Sprintf("/articles/%d/", id), nil, &a)
	return a, err
}

// CreateArticle creates an article and returns the canonical record.
func (c *Client) CreateArticle(ctx context.Context, in ArticleInput) (models.Article, error) {
	var a models.Article
	err := c.sendArticleForm(ctx, http.MethodPost, "/articles/", in, &a)
	return a, err
}

// UpdateArticle replaces an article and returns the canonical record.
func (c *Client) UpdateArticle(ctx context.Context, id uint, in ArticleInput) (models.Article, error) {
	var a models.Article
	err := c.sendArticleForm(ctx, http.MethodPut, fmt.Sprintf("/articles/%d/", id), in, &a)
	return a, err
}

// DeleteArticle removes an article.
func (c *Client) DeleteArticle(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/articles/%d/", id))
}

// sendArticleForm streams the multipart body through a pipe so the cover
// image is never buffered whole.
func (c *Client) sendArticleForm(ctx context.Context, method, path string, in ArticleInput, out any) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeArticleForm(mw, in)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	return c.do(ctx, method, path, nil, pr, mw.FormDataContentType(), out)
}

func writeArticleForm(mw *multipart.Writer, in ArticleInput) error {
	fields := map[string]string{
		"title":    in.Title,
		"excerpt":  in.Excerpt,
		"body":     in.Body,
		"category": strconv.FormatUint(uint64(in.CategoryID), 10),
		"status":   in.Status,
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return err
		}
	}
	for _, id := range in.TagIDs {
		if err := mw.WriteField("tags", strconv.FormatUint(uint64(id), 10)); err != nil {
			return err
		}
	}
	if in.CoverImage != nil {
		name := in.CoverName
		if name == "" {
			name = "cover"
		}
		part, err := mw.CreateFormFile("cover_image", name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, in.CoverImage); err != nil {
			return err
		}
	}
	return nil
}
