package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/bindery/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bindery/internal/logger"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz is ready when the entry store answers a ping.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := d.Store.Ping(ctx); err != nil {
			d.Logger.Warn("readiness check failed",
				logger.String("store", d.StoreName),
				logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
