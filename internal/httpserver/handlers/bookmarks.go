package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikbrunner/marks/internal/httpserver/deps"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/repository"
	"github.com/nikbrunner/marks/internal/search"
)

type listResponse struct {
	Bookmarks []model.Bookmark `json:"bookmarks"`
	Total     int              `json:"total"`
	Outcome   string           `json:"outcome"`
}

type createBookmarkRequest struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Folder      string   `json:"folder"`
}

type patchBookmarkRequest struct {
	Title       *string   `json:"title"`
	URL         *string   `json:"url"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	Folder      *string   `json:"folder"`
}

type deleteManyRequest struct {
	IDs []string `json:"ids"`
}

type deleteManyResponse struct {
	Removed int `json:"removed"`
}

type moveRequest struct {
	Target string `json:"target"`
}

type fileRequest struct {
	Folder string `json:"folder"`
}

// ListBookmarks filters by ?q= and ?folder= (default all).
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		folder := search.AllFolders
		if r.URL.Query().Has("folder") {
			folder = r.URL.Query().Get("folder")
		}

		res := search.Filter(d.Repo.Bookmarks(), r.URL.Query().Get("q"), folder)
		writeJSON(w, http.StatusOK, listResponse{
			Bookmarks: res.Bookmarks,
			Total:     res.Total,
			Outcome:   res.Outcome().String(),
		})
	}
}

func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := d.Repo.Bookmark(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, d, model.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookmarkRequest
		if !decode(w, r, &req) {
			return
		}

		out, err := d.Repo.Dispatch(r.Context(), repository.AddBookmark{Params: model.NewBookmarkParams{
			Title:       req.Title,
			URL:         req.URL,
			Description: req.Description,
			Tags:        req.Tags,
			Folder:      req.Folder,
		}})
		if err != nil {
			writeError(w, d, err)
			return
		}

		b := out.(model.Bookmark)
		d.Logger.Info("bookmark created", logger.String("id", b.ID))
		writeJSON(w, http.StatusCreated, b)
	}
}

func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req patchBookmarkRequest
		if !decode(w, r, &req) {
			return
		}

		id := chi.URLParam(r, "id")
		patch := model.BookmarkPatch{
			Title:       req.Title,
			URL:         req.URL,
			Description: req.Description,
			Tags:        req.Tags,
			Folder:      req.Folder,
		}
		if _, err := d.Repo.Dispatch(r.Context(), repository.UpdateBookmark{ID: id, Patch: patch}); err != nil {
			writeError(w, d, err)
			return
		}

		b, _ := d.Repo.Bookmark(id)
		writeJSON(w, http.StatusOK, b)
	}
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := d.Repo.Dispatch(r.Context(), repository.DeleteBookmark{ID: chi.URLParam(r, "id")}); err != nil {
			writeError(w, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deleteManyRequest
		if !decode(w, r, &req) {
			return
		}

		out, err := d.Repo.Dispatch(r.Context(), repository.DeleteBookmarks{IDs: req.IDs})
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, deleteManyResponse{Removed: out.(int)})
	}
}

func MoveBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moveRequest
		if !decode(w, r, &req) {
			return
		}

		cmd := repository.Reorder{MovedID: chi.URLParam(r, "id"), TargetID: req.Target}
		if _, err := d.Repo.Dispatch(r.Context(), cmd); err != nil {
			writeError(w, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func FileBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req fileRequest
		if !decode(w, r, &req) {
			return
		}

		cmd := repository.SetBookmarkFolder{ID: chi.URLParam(r, "id"), FolderID: req.Folder}
		if _, err := d.Repo.Dispatch(r.Context(), cmd); err != nil {
			writeError(w, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
