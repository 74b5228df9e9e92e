package models

import "time"

// Comment is a reply to an article. Author is nil for anonymous commenters.
// Replies is derived by the gateway from ParentID; the backend stores the
// flat list only.
type Comment struct {
	ID          uint      `json:"id"`
	ArticleID   uint      `json:"article_id"`
	Author      *User     `json:"author"`
	Body        string    `json:"body"`
	SubmitterIP string    `json:"submitter_ip,omitempty"`
	ParentID    *uint     `json:"parent_id"`
	Replies     []Comment `json:"replies,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c Comment) EntityID() uint { return c.ID }
