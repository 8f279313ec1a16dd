package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bindery/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bindery/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/bindery/internal/httpserver/mw"
)

func init() { Register(registerEntriesAPI) }

func registerEntriesAPI(r chi.Router, d deps.Deps) {
	r.Route("/api/entries", func(api chi.Router) {
		api.Use(mw.CORS(d.AllowedOrigins))

		api.Get("/", handlers.ListEntries(d))
		api.Get("/stream", handlers.Stream(d))
		api.Get("/{id}", handlers.GetEntry(d))

		w := writeLimited(api, d)
		w.Post("/", handlers.CreateEntry(d))
		w.Put("/{id}", handlers.UpdateEntry(d))
		w.Delete("/{id}", handlers.DeleteEntry(d))
	})
}
