package domain

import (
	"strings"
	"time"
)

// MemberResource is an administrator-curated downloadable asset shown to
// members. Listing order is display_order ascending, then newest first.
type MemberResource struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	FileURL      string    `json:"file_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	IsActive     bool      `json:"is_active"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

type UpsertResourceRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	FileURL      string `json:"file_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	IsActive     *bool  `json:"is_active,omitempty"`
	DisplayOrder *int   `json:"display_order,omitempty"`
}

func (r *UpsertResourceRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.FileURL = strings.TrimSpace(r.FileURL)
	r.ThumbnailURL = strings.TrimSpace(r.ThumbnailURL)
}

func (r *UpsertResourceRequest) Validate() error {
	verr := NewValidationError()
	if r.Title == "" {
		verr.Add("title", "title is required")
	} else if len(r.Title) > 100 {
		verr.Add("title", "title must be at most 100 characters")
	}
	if r.FileURL == "" {
		verr.Add("file_url", "file_url is required")
	}
	if r.DisplayOrder != nil && *r.DisplayOrder < 0 {
		verr.Add("display_order", "display_order must not be negative")
	}
	return verr.OrNil()
}
