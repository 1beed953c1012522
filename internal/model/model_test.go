package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nikbrunner/marks/internal/model"
)

func stringPtr(s string) *string { return &s }

func TestBookmark_DecodesExtensionRecord(t *testing.T) {
	// Record shape written by the browser extension.
	data := `{
		"id": "lx2k9abc",
		"title": "TanStack Router",
		"url": "https://tanstack.com/router",
		"description": "",
		"tags": ["react", "routing"],
		"folder": "f1",
		"createdAt": 1736937000000,
		"updatedAt": 1737382920000
	}`

	var got model.Bookmark
	if err := json.Unmarshal([]byte(data), &got); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if got.ID != "lx2k9abc" {
		t.Errorf("ID mismatch: got %q", got.ID)
	}
	if got.Folder != "f1" {
		t.Errorf("Folder mismatch: got %q", got.Folder)
	}
	if len(got.Tags) != 2 || got.Tags[1] != "routing" {
		t.Errorf("Tags mismatch: got %v", got.Tags)
	}
	if got.CreatedAt != 1736937000000 || got.UpdatedAt != 1737382920000 {
		t.Errorf("timestamps mismatch: got %d / %d", got.CreatedAt, got.UpdatedAt)
	}
}

func TestNewBookmark(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	tags := []string{"news"}
	b := model.NewBookmark(model.GenerateID(), model.NewBookmarkParams{
		Title: "Hacker News",
		URL:   "https://news.ycombinator.com",
		Tags:  tags,
	}, now)

	if b.ID == "" {
		t.Error("expected generated ID")
	}
	tags[0] = "mutated"
	if b.Tags[0] != "news" {
		t.Error("expected tags to be copied")
	}
	if b.CreatedAt != now.UnixMilli() || b.UpdatedAt != b.CreatedAt {
		t.Errorf("expected both timestamps to be %d, got %d / %d", now.UnixMilli(), b.CreatedAt, b.UpdatedAt)
	}
	if b.HasFolder() {
		t.Error("expected no folder")
	}

	other := model.NewBookmark(model.GenerateID(), model.NewBookmarkParams{Title: "x", URL: "y"}, now)
	if other.ID == b.ID {
		t.Error("expected unique IDs")
	}
	if other.Tags == nil {
		t.Error("expected tags to be empty slice, not nil")
	}

	f := model.NewFolder("f1", "Work", now)
	if f.ID != "f1" || f.CreatedAt != now.UnixMilli() {
		t.Errorf("unexpected folder: %+v", f)
	}
}

func TestNewBookmarkParams_Normalize(t *testing.T) {
	tests := []struct {
		name    string
		params  model.NewBookmarkParams
		wantErr bool
	}{
		{"valid", model.NewBookmarkParams{Title: " Go ", URL: " https://go.dev "}, false},
		{"blank title", model.NewBookmarkParams{Title: "   ", URL: "https://go.dev"}, true},
		{"blank url", model.NewBookmarkParams{Title: "Go", URL: ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.params.Normalize()
			if tt.wantErr {
				if !errors.Is(err, model.ErrEmptyField) {
					t.Errorf("expected ErrEmptyField, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Title != "Go" || got.URL != "https://go.dev" {
				t.Errorf("expected trimmed fields, got %q / %q", got.Title, got.URL)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	name, err := model.NormalizeName("  Work ")
	if err != nil || name != "Work" {
		t.Errorf("NormalizeName = %q, %v", name, err)
	}

	if _, err := model.NormalizeName(" \t"); !errors.Is(err, model.ErrEmptyField) {
		t.Errorf("expected ErrEmptyField, got %v", err)
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"go", []string{"go"}},
		{"go, rust ,, zig ", []string{"go", "rust", "zig"}},
		{" , ", []string{}},
	}

	for _, tt := range tests {
		got := model.ParseTags(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("ParseTags(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseTags(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestSeconds(t *testing.T) {
	tests := []struct {
		ms   int64
		want int64
	}{
		{0, 0},
		{999, 0},
		{1000, 1},
		{1700000000999, 1700000000},
		{-1, -1},
	}

	for _, tt := range tests {
		if got := model.Seconds(tt.ms); got != tt.want {
			t.Errorf("Seconds(%d) = %d, want %d", tt.ms, got, tt.want)
		}
	}
}

func TestBookmarkPatch(t *testing.T) {
	b := model.Bookmark{
		ID:        "b1",
		Title:     "Old",
		URL:       "https://old.com",
		Tags:      []string{"a"},
		CreatedAt: 10,
		UpdatedAt: 10,
	}

	tags := []string{"x", "y"}
	patch := model.BookmarkPatch{
		Title:  stringPtr("  New  "),
		Tags:   &tags,
		Folder: stringPtr("f1"),
	}
	if err := patch.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	patch.Apply(&b)

	if b.Title != "New" {
		t.Errorf("expected trimmed title, got %q", b.Title)
	}
	if b.URL != "https://old.com" {
		t.Errorf("url should be untouched, got %q", b.URL)
	}
	if b.Folder != "f1" || len(b.Tags) != 2 {
		t.Errorf("unexpected folder/tags: %q %v", b.Folder, b.Tags)
	}

	tags[0] = "mutated"
	if b.Tags[0] != "x" {
		t.Error("patch tags should be copied")
	}

	if !(model.BookmarkPatch{}).Empty() {
		t.Error("zero patch should be empty")
	}
	if err := (model.BookmarkPatch{URL: stringPtr(" ")}).Validate(); !errors.Is(err, model.ErrEmptyField) {
		t.Errorf("expected ErrEmptyField for blank url, got %v", err)
	}
}

func TestCollection_GetBookmarksInFolder(t *testing.T) {
	c := model.Collection{
		Folders: []model.Folder{},
		Bookmarks: []model.Bookmark{
			{ID: "b1", Title: "Root Bookmark", URL: "https://example.com"},
			{ID: "b2", Title: "Filed Bookmark", URL: "https://example.org", Folder: "f1"},
			{ID: "b3", Title: "Another Root", URL: "https://example.net"},
		},
	}

	if got := c.GetBookmarksInFolder(""); len(got) != 2 {
		t.Errorf("expected 2 unfiled bookmarks, got %d", len(got))
	}
	if got := c.GetBookmarksInFolder("f1"); len(got) != 1 {
		t.Errorf("expected 1 filed bookmark, got %d", len(got))
	}
}

func TestCollection_Lookups(t *testing.T) {
	c := model.Collection{
		Folders: []model.Folder{
			{ID: "f1", Name: "Development"},
			{ID: "f2", Name: "Design"},
		},
		Bookmarks: []model.Bookmark{
			{ID: "b1", Title: "Example", URL: "https://example.com", Folder: "f1"},
			{ID: "b2", Title: "Other", URL: "https://other.com", Folder: "f1"},
		},
	}

	if f := c.GetFolderByID("f2"); f == nil || f.Name != "Design" {
		t.Errorf("GetFolderByID(f2) = %v", f)
	}
	if c.GetFolderByID("nonexistent") != nil {
		t.Error("expected nil for nonexistent folder")
	}
	if f := c.GetFolderByName("Development"); f == nil || f.ID != "f1" {
		t.Errorf("GetFolderByName(Development) = %v", f)
	}
	if c.GetFolderByName("development") != nil {
		t.Error("folder name lookup should be exact")
	}
	if !c.HasBookmarkURL("https://example.com") {
		t.Error("expected to find existing URL")
	}
	if c.HasBookmarkURL("https://EXAMPLE.com") {
		t.Error("URL match should be case sensitive")
	}
	if c.URLTakenByOther("https://example.com", "b1") {
		t.Error("a bookmark does not conflict with itself")
	}
	if !c.URLTakenByOther("https://example.com", "b2") {
		t.Error("expected conflict with b1")
	}
	if got := c.FolderCounts(); got["f1"] != 2 || got["f2"] != 0 {
		t.Errorf("unexpected counts: %v", got)
	}
}

func TestCollection_CloneIsDeep(t *testing.T) {
	c := model.Collection{
		Folders:   []model.Folder{{ID: "f1", Name: "A"}},
		Bookmarks: []model.Bookmark{{ID: "b1", Tags: []string{"t"}}},
	}

	clone := c.Clone()
	clone.Folders[0].Name = "B"
	clone.Bookmarks[0].Tags[0] = "changed"

	if c.Folders[0].Name != "A" || c.Bookmarks[0].Tags[0] != "t" {
		t.Error("clone shares state with original")
	}
}
