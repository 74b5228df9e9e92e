package models

import "time"

// User mirrors the backend's user resource. IsAdmin gates administrative
// capability; the role is enforced by the backend, the gateway only reads it.
type User struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsAdmin      bool      `json:"is_admin"`
	AvatarURL    string    `json:"avatar_url"`
	Bio          string    `json:"bio"`
	ArticleCount int       `json:"article_count"`
	CommentCount int       `json:"comment_count"`
	DateJoined   time.Time `json:"date_joined"`
}

func (u User) EntityID() uint { return u.ID }
