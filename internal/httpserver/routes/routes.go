package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/nikbrunner/marks/internal/httpserver/deps"
	"github.com/nikbrunner/marks/internal/httpserver/handlers"
	"github.com/nikbrunner/marks/internal/httpserver/mw"
)

// RegisterAll mounts every endpoint. Called once from server.New().
func RegisterAll(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))

		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", handlers.ListBookmarks(d))
			r.Post("/", handlers.CreateBookmark(d))
			r.Post("/delete", handlers.DeleteBookmarks(d))
			r.Get("/{id}", handlers.GetBookmark(d))
			r.Patch("/{id}", handlers.UpdateBookmark(d))
			r.Delete("/{id}", handlers.DeleteBookmark(d))
			r.Post("/{id}/move", handlers.MoveBookmark(d))
			r.Put("/{id}/folder", handlers.FileBookmark(d))
		})

		r.Route("/folders", func(r chi.Router) {
			r.Get("/", handlers.ListFolders(d))
			r.Post("/", handlers.CreateFolder(d))
			r.Patch("/{id}", handlers.RenameFolder(d))
			r.Delete("/{id}", handlers.DeleteFolder(d))
		})

		r.Post("/quickadd", handlers.QuickAdd(d))
		r.Get("/export", handlers.Export(d))
		r.Post("/import", handlers.Import(d))
	})
}
