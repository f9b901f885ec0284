package models

import "github.com/ArtyomSF99/url-shortener/internal/repository"

// CreateURLRequest represents the request body for creating a short URL
type CreateURLRequest struct {
	OriginalURL string  `json:"originalUrl" binding:"required,url,max=2048"`
	Slug        *string `json:"slug,omitempty" binding:"omitempty,slug"` // Optional custom slug
}

// UpdateURLRequest renames the slug of an existing URL
type UpdateURLRequest struct {
	Slug string `json:"slug" binding:"required,slug"`
}

// ListURLsQuery holds the query string of the per-user listing
type ListURLsQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=createdAt visits"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=ASC DESC"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Options applies defaults for omitted parameters.
func (q ListURLsQuery) Options() repository.ListOptions {
	opts := repository.ListOptions{
		Page:      q.Page,
		Limit:     q.Limit,
		SortBy:    repository.SortField(q.SortBy),
		SortOrder: repository.SortOrder(q.SortOrder),
	}
	if opts.Page < 1 {
		opts.Page = DefaultPage
	}
	if opts.Limit < 1 {
		opts.Limit = DefaultLimit
	}
	if opts.SortBy == "" {
		opts.SortBy = repository.SortByCreatedAt
	}
	if opts.SortOrder == "" {
		opts.SortOrder = repository.SortDesc
	}
	return opts
}
