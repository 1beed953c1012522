package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nikbrunner/marks/internal/model"
)

// Result holds everything recovered from a bookmarks document.
// CreatedAt and UpdatedAt carry the file's ADD_DATE (or the decode time when
// missing); Repository.Import decides whether to keep them.
type Result struct {
	Folders   []model.Folder
	Bookmarks []model.Bookmark
	Malformed int // links without a target and headings without a name
}

// Empty reports whether no bookmark was found.
func (r Result) Empty() bool {
	return len(r.Bookmarks) == 0
}

// ParseHTMLBookmarks reads a Netscape bookmark file from r.
// It only fails when reading r fails; the markup itself is parsed best-effort.
func ParseHTMLBookmarks(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, err
	}
	return Decode(string(data)), nil
}

// Decode parses Netscape bookmark HTML and returns folders + bookmarks.
// Malformed markup never fails; whatever can be recovered is returned.
func Decode(markup string) Result {
	return DecodeAt(markup, time.Now())
}

// DecodeAt is Decode with an explicit import time, used for records whose
// ADD_DATE is missing or unreadable.
func DecodeAt(markup string, now time.Time) Result {
	var res Result

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return res
	}

	nowMs := model.Millis(now)

	// Folders are flat, but headings may still nest in the document; a
	// bookmark is tagged with the innermost enclosing folder.
	var folderStack []string
	pendingFolder := "" // heading waiting for its list

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := getTextContent(n)
				if name == "" {
					res.Malformed++
					pendingFolder = ""
					return
				}

				folder := model.Folder{
					ID:        model.GenerateID(),
					Name:      name,
					CreatedAt: parseAddDate(n, nowMs),
				}
				res.Folders = append(res.Folders, folder)

				// Will be pushed when we see the next DL
				pendingFolder = folder.ID
				return // Don't recurse into H3

			case "a":
				// A heading directly followed by a link has no list of its own
				pendingFolder = ""

				href := strings.TrimSpace(getAttr(n, "href"))
				if href == "" {
					res.Malformed++
					return
				}

				title := getTextContent(n)
				if title == "" {
					title = href
				}

				folderID := ""
				if len(folderStack) > 0 {
					folderID = folderStack[len(folderStack)-1]
				}

				createdAt := parseAddDate(n, nowMs)
				res.Bookmarks = append(res.Bookmarks, model.Bookmark{
					ID:          model.GenerateID(),
					Title:       title,
					URL:         href,
					Description: "",
					Tags:        []string{},
					Folder:      folderID,
					CreatedAt:   createdAt,
					UpdatedAt:   createdAt,
				})
				return // Don't recurse into A

			case "dl":
				pushed := false
				if pendingFolder != "" {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = ""
					pushed = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				// Scope ends with the list, nothing leaks into later siblings
				if pushed {
					folderStack = folderStack[:len(folderStack)-1]
				}
				pendingFolder = ""
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return res
}

// parseAddDate reads ADD_DATE (seconds) as milliseconds, falling back to def.
func parseAddDate(n *html.Node, def int64) int64 {
	addDate := strings.TrimSpace(getAttr(n, "add_date"))
	if addDate == "" {
		return def
	}
	ts, err := strconv.ParseInt(addDate, 10, 64)
	if err != nil || ts <= 0 {
		return def
	}
	return ts * 1000
}

// getTextContent returns the trimmed text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
