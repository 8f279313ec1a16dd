package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/bindery/internal/httpserver/deps"
)

type componentStatus struct {
	OK      bool   `json:"ok"`
	Backend string `json:"backend,omitempty"`
	Latency string `json:"latency,omitempty"`
	Entries *int64 `json:"entries,omitempty"`
	Impact  string `json:"impact,omitempty"`
	Error   string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// pinger is implemented by uploaders that can check their backend.
type pinger interface {
	Ping(ctx context.Context) error
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":    checkStore(r.Context(), d),
			"uploader": checkUploader(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	// Without the store nothing works
	if store, exists := components["store"]; exists && !store.OK {
		return "critical"
	}

	// Uploader down - listing still works, create/edit with photos fail
	if up, exists := components["uploader"]; exists && !up.OK {
		return "degraded"
	}

	return "operational"
}

func checkStore(parent context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{OK: false, Impact: "catalog-unavailable", Error: "store not initialized"}
	}

	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:      false,
			Backend: d.StoreName,
			Impact:  "catalog-unavailable",
			Error:   err.Error(),
		}
	}
	status := componentStatus{
		OK:      true,
		Backend: d.StoreName,
		Latency: time.Since(start).Round(time.Microsecond).String(),
	}
	if n, err := d.Store.Count(ctx); err == nil {
		status.Entries = &n
	}
	return status
}

func checkUploader(parent context.Context, d deps.Deps) componentStatus {
	if d.Uploader == nil {
		return componentStatus{OK: false, Impact: "uploads-disabled", Error: "uploader not initialized"}
	}

	p, ok := d.Uploader.(pinger)
	if !ok {
		// Hosted APIs without a health endpoint are assumed up.
		return componentStatus{OK: true, Backend: d.Uploader.Name()}
	}

	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		return componentStatus{
			OK:      false,
			Backend: d.Uploader.Name(),
			Impact:  "uploads-failing",
			Error:   err.Error(),
		}
	}
	return componentStatus{OK: true, Backend: d.Uploader.Name()}
}
