package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nikbrunner/marks/internal/httpserver/deps"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/repository"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps repository errors to HTTP statuses. Store failures are
// reported as a generic failure; the details only go to the log.
func writeError(w http.ResponseWriter, d deps.Deps, err error) {
	switch {
	case errors.Is(err, model.ErrDuplicateURL):
		writeJSON(w, http.StatusConflict, errorResponse{Error: model.ErrDuplicateURL.Error()})
	case errors.Is(err, model.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrEmptyField):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		if !errors.Is(err, repository.ErrPersist) {
			d.Logger.Error("request failed", logger.Error(err))
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: repository.ErrPersist.Error()})
	}
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}
