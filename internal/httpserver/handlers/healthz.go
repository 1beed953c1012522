package handlers

import (
	"net/http"

	"github.com/nikbrunner/marks/internal/httpserver/deps"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
	Bookmarks     int     `json:"bookmarks"`
	Folders       int     `json:"folders"`
}

func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			Version:       d.Version,
			UptimeSeconds: d.Now().Sub(d.StartTime).Seconds(),
			Bookmarks:     len(d.Repo.Bookmarks()),
			Folders:       len(d.Repo.Folders()),
		})
	}
}
