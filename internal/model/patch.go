package model

import (
	"fmt"
	"strings"
)

// BookmarkPatch lists the bookmark fields an edit may change.
// Nil fields are left untouched.
type BookmarkPatch struct {
	Title       *string
	URL         *string
	Description *string
	Tags        *[]string
	Folder      *string
}

// Empty reports whether the patch changes nothing.
func (p BookmarkPatch) Empty() bool {
	return p.Title == nil && p.URL == nil && p.Description == nil && p.Tags == nil && p.Folder == nil
}

// Validate rejects a patch that would blank out the title or url.
func (p BookmarkPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title", ErrEmptyField)
	}
	if p.URL != nil && strings.TrimSpace(*p.URL) == "" {
		return fmt.Errorf("%w: url", ErrEmptyField)
	}
	return nil
}

// Apply merges the patch into b. UpdatedAt is left to the caller.
func (p BookmarkPatch) Apply(b *Bookmark) {
	if p.Title != nil {
		b.Title = strings.TrimSpace(*p.Title)
	}
	if p.URL != nil {
		b.URL = strings.TrimSpace(*p.URL)
	}
	if p.Description != nil {
		b.Description = strings.TrimSpace(*p.Description)
	}
	if p.Tags != nil {
		tags := make([]string, len(*p.Tags))
		copy(tags, *p.Tags)
		b.Tags = tags
	}
	if p.Folder != nil {
		b.Folder = *p.Folder
	}
}
