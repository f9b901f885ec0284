package models

import "github.com/ArtyomSF99/url-shortener/internal/entities"

// PaginatedURLs is one page of a user's URLs. Callers derive the page
// count as ceil(Total / Limit).
type PaginatedURLs struct {
	Data  []*entities.URL `json:"data"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
