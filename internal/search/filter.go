package search

import (
	"strings"

	"github.com/nikbrunner/marks/internal/model"
)

// Folder selectors understood by Filter.
const (
	AllFolders = "all"
	NoFolder   = ""
)

// Outcome tells an empty collection apart from a search without hits.
type Outcome int

const (
	OutcomeEmptyCollection Outcome = iota
	OutcomeNoMatches
	OutcomeMatches
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmptyCollection:
		return "empty"
	case OutcomeNoMatches:
		return "no matches"
	default:
		return "matches"
	}
}

// Result is the filtered view of a collection.
type Result struct {
	Bookmarks []model.Bookmark
	Total     int // size of the unfiltered collection
}

// Outcome classifies the result for display.
func (r Result) Outcome() Outcome {
	switch {
	case r.Total == 0:
		return OutcomeEmptyCollection
	case len(r.Bookmarks) == 0:
		return OutcomeNoMatches
	default:
		return OutcomeMatches
	}
}

// Filter returns the bookmarks matching both term and folder, in input order.
//
// The term is a case-insensitive substring matched against title, URL,
// description and every tag; an empty term matches everything. folder is
// either AllFolders or an exact folder id, NoFolder selecting unfiled
// bookmarks.
func Filter(bookmarks []model.Bookmark, term, folder string) Result {
	term = strings.ToLower(term)

	matched := make([]model.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if folder != AllFolders && b.Folder != folder {
			continue
		}
		if !Matches(b, term) {
			continue
		}
		matched = append(matched, b)
	}

	return Result{Bookmarks: matched, Total: len(bookmarks)}
}

// Matches reports whether b contains the lowercased term in any text field.
func Matches(b model.Bookmark, term string) bool {
	if term == "" {
		return true
	}
	if containsFold(b.Title, term) || containsFold(b.URL, term) || containsFold(b.Description, term) {
		return true
	}
	for _, tag := range b.Tags {
		if containsFold(tag, term) {
			return true
		}
	}
	return false
}

func containsFold(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}
