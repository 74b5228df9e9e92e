package models

import "time"

// Article statuses as the backend reports them.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Article mirrors the backend's article resource. Body carries the raw
// markdown; BodyHTML is filled by the gateway when rendering a detail view
// and is never sent back to the backend.
type Article struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt"`
	Body       string    `json:"body"`
	BodyHTML   string    `json:"body_html,omitempty"`
	CoverImage string    `json:"cover_image"`
	Author     User      `json:"author"`
	Category   Category  `json:"category"`
	Tags       []Tag     `json:"tags"`
	ReadTime   int       `json:"read_time"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func (a Article) EntityID() uint { return a.ID }
