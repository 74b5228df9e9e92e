package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/greenmart/storefront/models"
)

// CommentInput carries the fields for creating or editing a comment.
// AuthorID zero means anonymous; AnonName/AnonEmail identify the pseudo-user.
type CommentInput struct {
	ArticleID   uint   `json:"article_id"`
	Body        string `json:"body"`
	AuthorID    uint   `json:"author_id,omitempty"`
	AnonName    string `json:"anon_name,omitempty"`
	AnonEmail   string `json:"anon_email,omitempty"`
	ParentID    *uint  `json:"parent_id,omitempty"`
	SubmitterIP string `json:"submitter_ip,omitempty"`
}

// ListComments returns one page of comments for an article, oldest first.
func (c *Client) ListComments(ctx context.Context, articleID uint, page, pageSize int) (Page[models.Comment], error) {
	q := url.Values{}
	q.Set("article", strconv.FormatUint(uint64(articleID), 10))
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	return listPage[models.Comment](ctx, c, "/comments/", q)
}

// CreateComment posts a comment and returns the canonical record.
func (c *Client) CreateComment(ctx context.Context, in CommentInput) (models.Comment, error) {
	var cm models.Comment
	err := c.postJSON(ctx, "/comments/", in, &cm)
	return cm, err
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/comments/%d/", id))
}
