package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/greenmart/storefront/models"
)

// UserInput carries mutable user fields for admin edits.
type UserInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// ListUsers returns one backend page of users.
func (c *Client) ListUsers(ctx context.Context, page, pageSize int) (Page[models.User], error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	return listPage[models.User](ctx, c, "/users/", q)
}

// GetUser fetches a single user.
func (c *Client) GetUser(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	err := c.getJSON(ctx, fmt.Sprintf("/users/%d/", id), nil, &u)
	return u, err
}

// UpdateUser saves user fields and returns the canonical record. Role flag
// changes gate administrative capability on the backend side.
func (c *Client) UpdateUser(ctx context.Context, id uint, in UserInput) (models.User, error) {
	var u models.User
	err := c.putJSON(ctx, fmt.Sprintf("/users/%d/", id), in, &u)
	return u, err
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/users/%d/", id))
}
