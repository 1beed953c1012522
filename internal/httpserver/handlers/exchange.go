package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/nikbrunner/marks/internal/exporter"
	"github.com/nikbrunner/marks/internal/httpserver/deps"
	"github.com/nikbrunner/marks/internal/importer"
)

const defaultMaxImportSize = 10 << 20

type importResponse struct {
	Imported       int    `json:"imported"`
	Skipped        int    `json:"skipped"`
	Malformed      int    `json:"malformed"`
	FoldersCreated int    `json:"foldersCreated"`
	FoldersMerged  int    `json:"foldersMerged"`
	Outcome        string `json:"outcome"`
	Message        string `json:"message"`
}

// Export serves the whole collection as a Netscape bookmark file.
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := d.Repo.Snapshot()
		body := exporter.ExportHTML(snap.Bookmarks, snap.Folders)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", exporter.ExportFilename(d.Now())))
		_, _ = w.Write([]byte(body))
	}
}

// Import merges an uploaded bookmark file, sent as the raw request body.
func Import(d deps.Deps) http.HandlerFunc {
	limit := d.MaxImportSize
	if limit <= 0 {
		limit = defaultMaxImportSize
	}

	return func(w http.ResponseWriter, r *http.Request) {
		decoded, err := importer.ParseHTMLBookmarks(http.MaxBytesReader(w, r.Body, limit))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "file too large"})
				return
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "read upload: " + err.Error()})
			return
		}

		res, err := d.Repo.Import(r.Context(), decoded, d.ImportOptions)
		if err != nil {
			writeError(w, d, err)
			return
		}

		writeJSON(w, http.StatusOK, importResponse{
			Imported:       res.Imported,
			Skipped:        res.Skipped,
			Malformed:      res.Malformed,
			FoldersCreated: res.FoldersCreated,
			FoldersMerged:  res.FoldersMerged,
			Outcome:        res.Outcome.String(),
			Message:        res.Message(),
		})
	}
}
