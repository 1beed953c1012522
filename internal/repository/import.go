package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/nikbrunner/marks/internal/importer"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
)

// ImportOutcome summarizes an import for display.
type ImportOutcome int

const (
	// OutcomeNothingToImport means the file held no bookmarks at all.
	OutcomeNothingToImport ImportOutcome = iota
	// OutcomeImported means at least one bookmark was added.
	OutcomeImported
	// OutcomeAllSkipped means every bookmark was already present.
	OutcomeAllSkipped
)

func (o ImportOutcome) String() string {
	switch o {
	case OutcomeNothingToImport:
		return "nothing to import"
	case OutcomeImported:
		return "imported"
	default:
		return "all skipped"
	}
}

// ImportOptions tunes how decoded records are merged.
type ImportOptions struct {
	// KeepDates preserves the decoded creation dates instead of stamping
	// everything with the import time.
	KeepDates bool
}

// ImportResult reports what an import changed.
type ImportResult struct {
	Imported       int
	Skipped        int // URL already bookmarked
	Malformed      int // dropped by the decoder
	FoldersCreated int
	FoldersMerged  int
	Outcome        ImportOutcome
}

// Message renders the summary shown to the user.
func (r ImportResult) Message() string {
	if r.Outcome == OutcomeNothingToImport {
		return "No bookmarks found in file"
	}
	return fmt.Sprintf("Imported %d bookmarks (%d skipped as duplicates)", r.Imported, r.Skipped)
}

// Import merges decoded folders and bookmarks into the collection.
//
// Folders are matched by exact name and reused; bookmarks whose URL is
// already present, including ones added earlier in the same import, are
// skipped. Both collections are written once at the end.
func (r *Repository) Import(ctx context.Context, decoded importer.Result, opts ImportOptions) (ImportResult, error) {
	res := ImportResult{Malformed: decoded.Malformed}
	if decoded.Empty() {
		res.Outcome = OutcomeNothingToImport
		return res, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.sync(ctx); err != nil {
		return res, err
	}

	nowMs := r.nowMillis()
	created := func(decodedMs int64) int64 {
		if opts.KeepDates && decodedMs > 0 {
			return min(decodedMs, nowMs)
		}
		return nowMs
	}

	// decoded folder id -> collection folder id
	folderMap := make(map[string]string, len(decoded.Folders))
	for _, f := range decoded.Folders {
		name, err := model.NormalizeName(f.Name)
		if err != nil {
			continue
		}
		if existing := r.coll.GetFolderByName(name); existing != nil {
			folderMap[f.ID] = existing.ID
			res.FoldersMerged++
			continue
		}

		folder := model.Folder{
			ID:        r.newID(),
			Name:      name,
			CreatedAt: created(f.CreatedAt),
		}
		r.coll.Folders = append(r.coll.Folders, folder)
		folderMap[f.ID] = folder.ID
		res.FoldersCreated++
	}

	for _, b := range decoded.Bookmarks {
		url := strings.TrimSpace(b.URL)
		if url == "" {
			res.Malformed++
			continue
		}
		if r.coll.HasBookmarkURL(url) {
			res.Skipped++
			continue
		}

		title := strings.TrimSpace(b.Title)
		if title == "" {
			title = url
		}
		tags := make([]string, len(b.Tags))
		copy(tags, b.Tags)

		r.coll.Bookmarks = append(r.coll.Bookmarks, model.Bookmark{
			ID:          r.newID(),
			Title:       title,
			URL:         url,
			Description: strings.TrimSpace(b.Description),
			Tags:        tags,
			Folder:      folderMap[b.Folder],
			CreatedAt:   created(b.CreatedAt),
			UpdatedAt:   nowMs,
		})
		res.Imported++
	}

	if res.Imported > 0 {
		res.Outcome = OutcomeImported
	} else {
		res.Outcome = OutcomeAllSkipped
	}

	if res.Imported > 0 || res.FoldersCreated > 0 {
		if err := r.persist(ctx, KeyFolders, KeyBookmarks); err != nil {
			return res, err
		}
	}

	r.log.Info("import finished",
		logger.Int("imported", res.Imported),
		logger.Int("skipped", res.Skipped),
		logger.Int("malformed", res.Malformed),
		logger.Int("folders_created", res.FoldersCreated),
		logger.Int("folders_merged", res.FoldersMerged))
	return res, nil
}
