package importer_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/marks/internal/exporter"
	"github.com/nikbrunner/marks/internal/importer"
	"github.com/nikbrunner/marks/internal/model"
)

var importTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func folderByName(t *testing.T, folders []model.Folder, name string) model.Folder {
	t.Helper()
	for _, f := range folders {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("folder %q not found in %v", name, folders)
	return model.Folder{}
}

func bookmarkByTitle(t *testing.T, bookmarks []model.Bookmark, title string) model.Bookmark {
	t.Helper()
	for _, b := range bookmarks {
		if b.Title == title {
			return b
		}
	}
	t.Fatalf("bookmark %q not found", title)
	return model.Bookmark{}
}

func TestParseHTML_SingleBookmark(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Example Site</A>
</DL><p>`

	res, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Folders) != 0 {
		t.Errorf("expected 0 folders, got %d", len(res.Folders))
	}
	if len(res.Bookmarks) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(res.Bookmarks))
	}

	b := res.Bookmarks[0]
	if b.Title != "Example Site" {
		t.Errorf("expected title 'Example Site', got %q", b.Title)
	}
	if b.URL != "https://example.com" {
		t.Errorf("expected URL 'https://example.com', got %q", b.URL)
	}
	if b.HasFolder() {
		t.Errorf("expected unfiled bookmark, got folder %q", b.Folder)
	}
	if b.ID == "" {
		t.Error("expected non-empty ID")
	}
	if b.Tags == nil || len(b.Tags) != 0 || b.Description != "" {
		t.Errorf("expected empty tags and description, got %v / %q", b.Tags, b.Description)
	}
}

func TestParseHTML_FolderScope(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1700000000">Work</H3>
    <DL><p>
        <DT><A HREF="https://a.com" ADD_DATE="1700000100">A</A>
    </DL><p>
    <DT><A HREF="https://b.com" ADD_DATE="1700000200">B</A>
</DL><p>`

	res := importer.DecodeAt(html, importTime)

	if len(res.Folders) != 1 {
		t.Fatalf("expected 1 folder, got %d", len(res.Folders))
	}
	work := res.Folders[0]
	if work.Name != "Work" {
		t.Errorf("expected folder 'Work', got %q", work.Name)
	}
	if work.CreatedAt != 1700000000000 {
		t.Errorf("expected folder date from ADD_DATE, got %d", work.CreatedAt)
	}

	if a := bookmarkByTitle(t, res.Bookmarks, "A"); a.Folder != work.ID {
		t.Errorf("A should be filed under Work, got %q", a.Folder)
	}
	if b := bookmarkByTitle(t, res.Bookmarks, "B"); b.HasFolder() {
		t.Errorf("B comes after the list closed and should be unfiled, got %q", b.Folder)
	}
}

func TestParseHTML_NestedFolders(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Development</H3>
    <DL><p>
        <DT><H3 ADD_DATE="1234567890">React</H3>
        <DL><p>
            <DT><A HREF="https://react.dev" ADD_DATE="1234567890">React Docs</A>
        </DL><p>
        <DT><A HREF="https://github.com" ADD_DATE="1234567890">GitHub</A>
    </DL><p>
    <DT><A HREF="https://google.com" ADD_DATE="1234567890">Google</A>
</DL><p>`

	res := importer.DecodeAt(html, importTime)

	// Folders are flat; nesting only decides which folder a bookmark lands in
	if len(res.Folders) != 2 {
		t.Fatalf("expected 2 folders, got %d", len(res.Folders))
	}
	dev := folderByName(t, res.Folders, "Development")
	react := folderByName(t, res.Folders, "React")

	if len(res.Bookmarks) != 3 {
		t.Fatalf("expected 3 bookmarks, got %d", len(res.Bookmarks))
	}
	if b := bookmarkByTitle(t, res.Bookmarks, "React Docs"); b.Folder != react.ID {
		t.Error("React Docs should be in React folder")
	}
	if b := bookmarkByTitle(t, res.Bookmarks, "GitHub"); b.Folder != dev.ID {
		t.Error("GitHub should be in Development folder")
	}
	if b := bookmarkByTitle(t, res.Bookmarks, "Google"); b.HasFolder() {
		t.Error("Google should be unfiled")
	}
}

func TestParseHTML_HeadingWithoutList(t *testing.T) {
	html := `<DL><p>
    <DT><H3>Orphan</H3>
    <DT><A HREF="https://a.com">A</A>
</DL><p>`

	res := importer.DecodeAt(html, importTime)

	if len(res.Folders) != 1 {
		t.Fatalf("expected heading to still produce a folder, got %d", len(res.Folders))
	}
	if len(res.Bookmarks) != 1 || res.Bookmarks[0].HasFolder() {
		t.Errorf("link after an empty heading should stay unfiled: %+v", res.Bookmarks)
	}
}

func TestParseHTML_EmptyFile(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
</DL><p>`

	res, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Folders) != 0 {
		t.Errorf("expected 0 folders, got %d", len(res.Folders))
	}
	if !res.Empty() {
		t.Errorf("expected 0 bookmarks, got %d", len(res.Bookmarks))
	}
}

func TestParseHTML_Timestamps(t *testing.T) {
	// 1234567890 = Fri Feb 13 2009 23:31:30 UTC
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Test</A>
    <DT><A HREF="https://nodate.com">No Date</A>
    <DT><A HREF="https://bad.com" ADD_DATE="yesterday">Bad Date</A>
</DL><p>`

	res := importer.DecodeAt(html, importTime)

	if len(res.Bookmarks) != 3 {
		t.Fatalf("expected 3 bookmarks, got %d", len(res.Bookmarks))
	}

	dated := bookmarkByTitle(t, res.Bookmarks, "Test")
	if dated.CreatedAt != 1234567890000 || dated.UpdatedAt != dated.CreatedAt {
		t.Errorf("expected CreatedAt 1234567890000, got %d / %d", dated.CreatedAt, dated.UpdatedAt)
	}

	for _, title := range []string{"No Date", "Bad Date"} {
		if b := bookmarkByTitle(t, res.Bookmarks, title); b.CreatedAt != importTime.UnixMilli() {
			t.Errorf("%s: expected import time fallback, got %d", title, b.CreatedAt)
		}
	}
}

func TestParseHTML_MissingHref(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><A ADD_DATE="1234567890">No URL</A>
    <DT><A HREF="  " ADD_DATE="1234567890">Blank URL</A>
    <DT><A HREF="https://valid.com" ADD_DATE="1234567890">Valid</A>
</DL><p>`

	res := importer.DecodeAt(html, importTime)

	// Should skip bookmarks without HREF, keep valid one
	if len(res.Bookmarks) != 1 {
		t.Fatalf("expected 1 bookmark (skip missing href), got %d", len(res.Bookmarks))
	}
	if res.Bookmarks[0].Title != "Valid" {
		t.Errorf("expected 'Valid' bookmark, got %q", res.Bookmarks[0].Title)
	}
	if res.Malformed != 2 {
		t.Errorf("expected 2 malformed entries, got %d", res.Malformed)
	}
}

func TestParseHTML_EmptyTitleUsesURL(t *testing.T) {
	html := `<DL><p>
    <DT><A HREF="https://untitled.com"></A>
    <DT><H3>   </H3>
</DL><p>`

	res := importer.DecodeAt(html, importTime)

	if len(res.Bookmarks) != 1 || res.Bookmarks[0].Title != "https://untitled.com" {
		t.Errorf("expected URL as title, got %+v", res.Bookmarks)
	}
	if len(res.Folders) != 0 || res.Malformed != 1 {
		t.Errorf("expected unnamed heading to be skipped, got %d folders / %d malformed", len(res.Folders), res.Malformed)
	}
}

func TestParseHTML_EntitiesDecoded(t *testing.T) {
	html := `<DL><p>
    <DT><H3>R&amp;D</H3>
    <DL><p>
        <DT><A HREF="https://x.com/?a=1&amp;b=2">&lt;Tom &amp; Jerry&gt;</A>
    </DL><p>
</DL><p>`

	res := importer.DecodeAt(html, importTime)

	if len(res.Folders) != 1 || res.Folders[0].Name != "R&D" {
		t.Fatalf("unexpected folders: %+v", res.Folders)
	}
	if len(res.Bookmarks) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(res.Bookmarks))
	}
	b := res.Bookmarks[0]
	if b.Title != "<Tom & Jerry>" || b.URL != "https://x.com/?a=1&b=2" {
		t.Errorf("entities not decoded: %q %q", b.Title, b.URL)
	}
}

func TestParseHTML_Garbage(t *testing.T) {
	inputs := []string{
		"",
		"not html at all",
		"<DL><DT><A HREF=",
		"</DL></DL></DL><H3>",
		"<DT><H3>Loose</H3><DL><DT><A HREF=\"https://a.com\">A",
	}

	for _, in := range inputs {
		res := importer.DecodeAt(in, importTime)
		for _, b := range res.Bookmarks {
			if b.URL == "" || b.Title == "" {
				t.Errorf("%q: decoded bookmark with empty field: %+v", in, b)
			}
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestParseHTMLBookmarks_ReadError(t *testing.T) {
	if _, err := importer.ParseHTMLBookmarks(failingReader{}); err == nil {
		t.Fatal("expected read error to be returned")
	}
}

func TestRoundTripWithExporter(t *testing.T) {
	folders := []model.Folder{
		{ID: "f1", Name: "Reading & Notes", CreatedAt: 1690000000000},
	}
	bookmarks := []model.Bookmark{
		{ID: "b1", Title: "Go", URL: "https://go.dev", CreatedAt: 1700000000123},
		{ID: "b2", Title: `"Quoted" <tag>`, URL: "https://example.com/?q=a&b=c", Folder: "f1", CreatedAt: 1700000500999},
	}

	res := importer.DecodeAt(exporter.ExportHTML(bookmarks, folders), importTime)

	if len(res.Folders) != 1 || res.Folders[0].Name != "Reading & Notes" {
		t.Fatalf("folder not preserved: %+v", res.Folders)
	}
	if len(res.Bookmarks) != len(bookmarks) {
		t.Fatalf("expected %d bookmarks, got %d", len(bookmarks), len(res.Bookmarks))
	}

	for _, want := range bookmarks {
		got := bookmarkByTitle(t, res.Bookmarks, want.Title)
		if got.URL != want.URL {
			t.Errorf("%s: URL %q, want %q", want.Title, got.URL, want.URL)
		}
		if got.HasFolder() != want.HasFolder() {
			t.Errorf("%s: folder membership changed", want.Title)
		}
		if got.HasFolder() && got.Folder != res.Folders[0].ID {
			t.Errorf("%s: filed under unknown folder %q", want.Title, got.Folder)
		}
		if got.CreatedAt != model.Seconds(want.CreatedAt)*1000 {
			t.Errorf("%s: date %d, want second precision of %d", want.Title, got.CreatedAt, want.CreatedAt)
		}
	}
}
