package exporter

import (
	"fmt"
	"html"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/marks/internal/model"
)

const (
	indent       = "    "
	nestedIndent = indent + indent
)

// DefaultExportPath returns the export file path inside dir, stamped with now.
// Format: <dir>/bookmarks_<unix-millis>.html
func DefaultExportPath(dir string, now time.Time) string {
	return filepath.Join(dir, ExportFilename(now))
}

// ExportFilename returns the timestamped export filename.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("bookmarks_%d.html", now.UnixMilli())
}

// ExportHTML exports bookmarks and folders to Netscape bookmark HTML format.
//
// Bookmarks without a folder come first. Each folder holding at least one
// bookmark follows as a heading with its own nested list; empty folders are
// left out. Bookmarks that point to an unknown folder are written with the
// unfiled ones so they are never lost.
func ExportHTML(bookmarks []model.Bookmark, folders []model.Folder) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	known := make(map[string]bool, len(folders))
	for _, f := range folders {
		known[f.ID] = true
	}

	byFolder := make(map[string][]model.Bookmark, len(folders))
	for _, bm := range bookmarks {
		if !known[bm.Folder] {
			writeBookmark(&b, bm, indent)
			continue
		}
		byFolder[bm.Folder] = append(byFolder[bm.Folder], bm)
	}

	for _, folder := range folders {
		items := byFolder[folder.ID]
		if len(items) == 0 {
			continue
		}

		fmt.Fprintf(&b, "%s<DT><H3 ADD_DATE=\"%d\">%s</H3>\n",
			indent, model.Seconds(folder.CreatedAt), html.EscapeString(folder.Name))
		fmt.Fprintf(&b, "%s<DL><p>\n", indent)
		for _, bm := range items {
			writeBookmark(&b, bm, nestedIndent)
		}
		fmt.Fprintf(&b, "%s</DL><p>\n", indent)
	}

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

func writeBookmark(b *strings.Builder, bookmark model.Bookmark, prefix string) {
	fmt.Fprintf(b,
		"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
		prefix,
		html.EscapeString(bookmark.URL),
		model.Seconds(bookmark.CreatedAt),
		html.EscapeString(bookmark.Title),
	)
}
