package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bindery/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bindery/internal/httpserver/handlers"
)

func init() { Register(registerPages) }

func registerPages(r chi.Router, d deps.Deps) {
	r.Get("/", handlers.Home(d))
	r.Get("/entries/new", handlers.NewEntryPage(d))
	r.Get("/entries/{id}/edit", handlers.EditEntryPage(d))

	w := writeLimited(r, d)
	w.Post("/entries/new", handlers.CreateEntryForm(d))
	w.Post("/entries/{id}/edit", handlers.UpdateEntryForm(d))
	w.Post("/entries/{id}/delete", handlers.DeleteEntryForm(d))
}
