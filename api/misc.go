package api

import (
	"context"

	"github.com/greenmart/storefront/models"
)

// GetContactInfo fetches the site-wide contact block.
func (c *Client) GetContactInfo(ctx context.Context) (models.ContactInfo, error) {
	var ci models.ContactInfo
	err := c.getJSON(ctx, "/contact-info/", nil, &ci)
	return ci, err
}

// SendFeedback submits a visitor message.
func (c *Client) SendFeedback(ctx context.Context, in models.Feedback) error {
	return c.postJSON(ctx, "/feedback/", in, nil)
}

// IncrementVisitorCount bumps the site visitor counter and returns the new
// total.
func (c *Client) IncrementVisitorCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.postJSON(ctx, "/visitor-count/increment/", struct{}{}, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// GetDashboard fetches the admin dashboard counters.
func (c *Client) GetDashboard(ctx context.Context) (models.Dashboard, error) {
	var d models.Dashboard
	err := c.getJSON(ctx, "/admin/dashboard/", nil, &d)
	return d, err
}
