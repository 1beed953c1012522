package handlers

import (
	"net/http"

	"github.com/nikbrunner/marks/internal/httpserver/deps"
	"github.com/nikbrunner/marks/internal/quickadd"
)

// QuickAdd receives the extension's context menu click.
func QuickAdd(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quickadd.Request
		if !decode(w, r, &req) {
			return
		}

		resp, err := d.QuickAdd.Handle(r.Context(), req)
		if err != nil {
			writeError(w, d, err)
			return
		}

		status := http.StatusOK
		if resp.Status == quickadd.StatusAdded {
			status = http.StatusCreated
		}
		writeJSON(w, status, resp)
	}
}
