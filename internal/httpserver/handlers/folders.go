package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikbrunner/marks/internal/httpserver/deps"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/repository"
)

type folderResponse struct {
	model.Folder
	Count int `json:"count"`
}

type folderRequest struct {
	Name string `json:"name"`
}

func ListFolders(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts := d.Repo.FolderCounts()
		folders := d.Repo.Folders()

		out := make([]folderResponse, len(folders))
		for i, f := range folders {
			out[i] = folderResponse{Folder: f, Count: counts[f.ID]}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func CreateFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req folderRequest
		if !decode(w, r, &req) {
			return
		}

		out, err := d.Repo.Dispatch(r.Context(), repository.AddFolder{Name: req.Name})
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func RenameFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req folderRequest
		if !decode(w, r, &req) {
			return
		}

		id := chi.URLParam(r, "id")
		if _, err := d.Repo.Dispatch(r.Context(), repository.RenameFolder{ID: id, Name: req.Name}); err != nil {
			writeError(w, d, err)
			return
		}

		f, _ := d.Repo.Folder(id)
		writeJSON(w, http.StatusOK, f)
	}
}

func DeleteFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := d.Repo.Dispatch(r.Context(), repository.DeleteFolder{ID: chi.URLParam(r, "id")}); err != nil {
			writeError(w, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
