package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Bookmark represents a saved URL with metadata.
// Timestamps are milliseconds since the Unix epoch, matching the records the
// browser extension writes.
type Bookmark struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Folder      string   `json:"folder"` // "" = no folder
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

// NewBookmarkParams holds parameters for creating a new Bookmark.
type NewBookmarkParams struct {
	Title       string
	URL         string
	Description string
	Tags        []string
	Folder      string
}

// Normalize trims the text fields and checks that title and url are present.
func (p NewBookmarkParams) Normalize() (NewBookmarkParams, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.URL = strings.TrimSpace(p.URL)
	p.Description = strings.TrimSpace(p.Description)
	if p.Title == "" {
		return p, fmt.Errorf("%w: title", ErrEmptyField)
	}
	if p.URL == "" {
		return p, fmt.Errorf("%w: url", ErrEmptyField)
	}
	return p, nil
}

// NewBookmark creates a Bookmark with both timestamps set to now.
// The tags are copied.
func NewBookmark(id string, params NewBookmarkParams, now time.Time) Bookmark {
	tags := slices.Clone(params.Tags)
	if tags == nil {
		tags = []string{}
	}

	ms := Millis(now)
	return Bookmark{
		ID:          id,
		Title:       params.Title,
		URL:         params.URL,
		Description: params.Description,
		Tags:        tags,
		Folder:      params.Folder,
		CreatedAt:   ms,
		UpdatedAt:   ms,
	}
}

// HasFolder reports whether the bookmark is tagged with a folder.
func (b Bookmark) HasFolder() bool {
	return b.Folder != ""
}

// Clone returns a copy that does not share the tags slice.
func (b Bookmark) Clone() Bookmark {
	tags := make([]string, len(b.Tags))
	copy(tags, b.Tags)
	b.Tags = tags
	return b
}

// ParseTags splits a comma separated tag list, trimming blanks.
func ParseTags(s string) []string {
	tags := []string{}
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
