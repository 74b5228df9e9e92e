package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/greenmart/storefront/models"
)

// ProductInput carries mutable product fields for admin edits.
type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Image       string `json:"image,omitempty"`
	CategoryID  uint   `json:"category"`
	Stock       int    `json:"stock"`
	Status      string `json:"status"`
}

func pageQuery(page, pageSize int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	return q
}

// ListProducts returns one backend page of products.
func (c *Client) ListProducts(ctx context.Context, page, pageSize int) (Page[models.Product], error) {
	return listPage[models.Product](ctx, c, "/products/", pageQuery(page, pageSize))
}

// CreateProduct creates a product and returns the canonical record.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	var p models.Product
	err := c.postJSON(ctx, "/products/", in, &p)
	return p, err
}

// UpdateProduct saves product fields and returns the canonical record.
func (c *Client) UpdateProduct(ctx context.Context, id uint, in ProductInput) (models.Product, error) {
	var p models.Product
	err := c.putJSON(ctx, fmt.Sprintf("/products/%d/", id), in, &p)
	return p, err
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/products/%d/", id))
}

// ListOrders returns one backend page of orders.
func (c *Client) ListOrders(ctx context.Context, page, pageSize int) (Page[models.Order], error) {
	return listPage[models.Order](ctx, c, "/orders/", pageQuery(page, pageSize))
}

// UpdateOrderStatus moves an order through its lifecycle.
func (c *Client) UpdateOrderStatus(ctx context.Context, id uint, status string) (models.Order, error) {
	var o models.Order
	err := c.putJSON(ctx, fmt.Sprintf("/orders/%d/", id), map[string]string{"status": status}, &o)
	return o, err
}

// DeleteOrder removes an order.
func (c *Client) DeleteOrder(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/orders/%d/", id))
}
