package exporter

import (
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/golden"

	"github.com/nikbrunner/marks/internal/model"
)

func TestExportHTML_EmptyStore(t *testing.T) {
	html := ExportHTML(nil, nil)

	// Should have basic structure even when empty
	if !strings.Contains(html, "<!DOCTYPE NETSCAPE-Bookmark-file-1>") {
		t.Error("expected DOCTYPE declaration")
	}
	if !strings.Contains(html, "<TITLE>Bookmarks</TITLE>") {
		t.Error("expected TITLE element")
	}
	if !strings.Contains(html, "<H1>Bookmarks</H1>") {
		t.Error("expected H1 element")
	}
	if !strings.HasSuffix(html, "</DL><p>\n") {
		t.Error("expected closing list")
	}
}

func TestExportHTML_Golden(t *testing.T) {
	folders := []model.Folder{
		{ID: "f1", Name: "Work & Play", CreatedAt: 1690000000000},
		{ID: "f2", Name: "Empty", CreatedAt: 1690000000000},
	}
	bookmarks := []model.Bookmark{
		{ID: "b1", Title: "A", URL: "https://a.com", CreatedAt: 1700000000123},
		{ID: "b2", Title: "B", URL: "https://b.com", Folder: "f1", CreatedAt: 1700000500999},
		{ID: "b3", Title: `Q&A <Go> "quoted"`, URL: "https://c.com/?q=1&r=2", CreatedAt: 1700000900000},
	}

	golden.Assert(t, ExportHTML(bookmarks, folders), "export.golden")
}

func TestExportHTML_SingleBookmark(t *testing.T) {
	html := ExportHTML([]model.Bookmark{{
		ID:        "b1",
		Title:     "GitHub",
		URL:       "https://github.com",
		CreatedAt: 1700000000000,
	}}, nil)

	if !strings.Contains(html, `<A HREF="https://github.com"`) {
		t.Error("expected bookmark URL")
	}
	if !strings.Contains(html, "GitHub</A>") {
		t.Error("expected bookmark title")
	}
	if !strings.Contains(html, `ADD_DATE="1700000000"`) {
		t.Error("expected ADD_DATE timestamp in seconds")
	}
}

func TestExportHTML_OmitsEmptyFolders(t *testing.T) {
	folders := []model.Folder{{ID: "f1", Name: "Development"}}

	html := ExportHTML(nil, folders)

	if strings.Contains(html, "Development") {
		t.Error("folder without bookmarks should be omitted")
	}
}

func TestExportHTML_FolderOrderFollowsFolders(t *testing.T) {
	folders := []model.Folder{
		{ID: "f2", Name: "Second"},
		{ID: "f1", Name: "First"},
	}
	bookmarks := []model.Bookmark{
		{ID: "b1", Title: "One", URL: "https://one.com", Folder: "f1"},
		{ID: "b2", Title: "Two", URL: "https://two.com", Folder: "f2"},
		{ID: "b3", Title: "Root", URL: "https://root.com"},
	}

	html := ExportHTML(bookmarks, folders)

	root := strings.Index(html, "Root</A>")
	second := strings.Index(html, "Second</H3>")
	first := strings.Index(html, "First</H3>")
	if root < 0 || second < 0 || first < 0 {
		t.Fatalf("missing entries in:\n%s", html)
	}
	if !(root < second && second < first) {
		t.Errorf("expected unfiled, then folders in stored order; got positions %d %d %d", root, second, first)
	}
}

func TestExportHTML_DanglingFolderIsUnfiled(t *testing.T) {
	bookmarks := []model.Bookmark{
		{ID: "b1", Title: "Orphan", URL: "https://orphan.com", Folder: "deleted"},
	}

	html := ExportHTML(bookmarks, nil)

	if !strings.Contains(html, "    <DT><A HREF=\"https://orphan.com\"") {
		t.Errorf("expected orphan at top level, got:\n%s", html)
	}
}

func TestExportHTML_EscapesSpecialChars(t *testing.T) {
	html := ExportHTML([]model.Bookmark{{
		ID:    "b1",
		Title: "<script>alert('xss')</script>",
		URL:   `https://example.com/"onmouseover="x`,
	}}, nil)

	if strings.Contains(html, "<script>") {
		t.Error("expected title to be escaped")
	}
	if strings.Contains(html, `"onmouseover="`) {
		t.Error("expected quotes in URL to be escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("expected escaped script tag")
	}
}

func TestDefaultExportPath(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	got := DefaultExportPath("/tmp/exports", now)

	if got != "/tmp/exports/bookmarks_1700000000123.html" {
		t.Errorf("DefaultExportPath = %q", got)
	}
}
