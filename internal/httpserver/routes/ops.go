package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bindery/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bindery/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/bindery/internal/httpserver/mw"
)

func init() { Register(registerOps) }

// registerOps mounts the health endpoints, restricted to the allowed CIDRs.
func registerOps(r chi.Router, d deps.Deps) {
	ops := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	ops.Get("/healthz", handlers.Healthz(d))
	ops.Get("/readyz", handlers.Readyz(d))
	ops.Get("/infra", handlers.Infra(d))
}
