package api

import (
	"context"
	"fmt"

	"github.com/greenmart/storefront/models"
)

// NameInput covers the create/update payload shared by categories and tags.
type NameInput struct {
	Name string `json:"name"`
}

// ListCategories returns all categories. The backend does not paginate
// taxonomy endpoints.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := c.getJSON(ctx, "/categories/", nil, &out)
	return out, err
}

// CreateCategory creates a category; duplicate names surface as a
// ValidationError from the backend.
func (c *Client) CreateCategory(ctx context.Context, in NameInput) (models.Category, error) {
	var cat models.Category
	err := c.postJSON(ctx, "/categories/", in, &cat)
	return cat, err
}

// UpdateCategory renames a category.
func (c *Client) UpdateCategory(ctx context.Context, id uint, in NameInput) (models.Category, error) {
	var cat models.Category
	err := c.putJSON(ctx, fmt.Sprintf("/categories/%d/", id), in, &cat)
	return cat, err
}

// DeleteCategory removes a category. What happens to referencing articles is
// the backend's policy.
func (c *Client) DeleteCategory(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/categories/%d/", id))
}

// ListTags returns all tags.
func (c *Client) ListTags(ctx context.Context) ([]models.Tag, error) {
	var out []models.Tag
	err := c.getJSON(ctx, "/tags/", nil, &out)
	return out, err
}

// CreateTag creates a tag.
func (c *Client) CreateTag(ctx context.Context, in NameInput) (models.Tag, error) {
	var t models.Tag
	err := c.postJSON(ctx, "/tags/", in, &t)
	return t, err
}

// UpdateTag renames a tag.
func (c *Client) UpdateTag(ctx context.Context, id uint, in NameInput) (models.Tag, error) {
	var t models.Tag
	err := c.putJSON(ctx, fmt.Sprintf("/tags/%d/", id), in, &t)
	return t, err
}

// DeleteTag removes a tag.
func (c *Client) DeleteTag(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/tags/%d/", id))
}
