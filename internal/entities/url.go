package entities

import "time"

// URL represents a shortened URL entity in the database
type URL struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	OriginalURL string    `json:"originalUrl"`
	Visits      int64     `json:"visits"`
	CreatedAt   time.Time `json:"createdAt"`
	UserID      *string   `json:"userId"` // nil for anonymous URLs
}

// OwnedBy reports whether the URL belongs to userID.
func (u *URL) OwnedBy(userID string) bool {
	return u.UserID != nil && *u.UserID == userID
}
