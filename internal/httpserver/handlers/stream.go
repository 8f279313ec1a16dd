package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/bindery/internal/catalog"
	"github.com/MrSnakeDoc/bindery/internal/domain"
	"github.com/MrSnakeDoc/bindery/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bindery/internal/logger"
)

const (
	defaultHeartbeat = 30 * time.Second
	// writeWindow is how long one event may take to reach the client.
	writeWindow = 60 * time.Second
)

type snapshotEvent struct {
	State   string         `json:"state"`
	Entries []domain.Entry `json:"entries"`
}

// Stream serves the live listing as Server-Sent Events: one "snapshot"
// event per store delivery, comment heartbeats in between. The request
// owns exactly one list view, closed on every exit path.
func Stream(d deps.Deps) http.HandlerFunc {
	heartbeat := d.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if ctx.Err() != nil {
			return
		}
		log := d.Logger.With(logger.String("request_id", middleware.GetReqID(ctx)))

		view, err := d.Catalog.OpenList(ctx)
		if err != nil {
			log.Error("failed to open entry stream", logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: catalog.MsgLoadError})
			return
		}
		defer func() {
			if err := view.Close(); err != nil {
				log.Warn("failed to close entry subscription", logger.Error(err))
			}
		}()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		rc := http.NewResponseController(w)
		// The server WriteTimeout would cut the stream; deadlines move with each write.
		_ = rc.SetWriteDeadline(time.Now().Add(writeWindow))
		w.WriteHeader(http.StatusOK)
		if err := rc.Flush(); err != nil {
			log.Error("streaming not supported", logger.Error(err))
			return
		}

		snaps := make(chan catalog.Snapshot)
		errs := make(chan error, 1)
		go func() {
			for {
				snap, err := view.Next(ctx)
				if err != nil {
					errs <- err
					return
				}
				select {
				case snaps <- snap:
				case <-ctx.Done():
					return
				}
			}
		}()

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Debug("entry stream client gone")
				return

			case <-d.Shutdown:
				_ = sendEvent(w, rc, "shutdown", struct{}{})
				return

			case err := <-errs:
				if !errors.Is(err, ctx.Err()) {
					log.Warn("entry stream ended", logger.Error(err))
				}
				return

			case snap := <-snaps:
				if err := sendEvent(w, rc, "snapshot", snapshotEvent{State: snap.State.String(), Entries: snap.Entries}); err != nil {
					log.Debug("entry stream write failed", logger.Error(err))
					return
				}

			case <-ticker.C:
				if err := sendComment(w, rc, "heartbeat"); err != nil {
					log.Debug("entry stream heartbeat failed", logger.Error(err))
					return
				}
			}
		}
	}
}

func sendEvent(w http.ResponseWriter, rc *http.ResponseController, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return flush(rc)
}

func sendComment(w http.ResponseWriter, rc *http.ResponseController, text string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", text); err != nil {
		return err
	}
	return flush(rc)
}

func flush(rc *http.ResponseController) error {
	if err := rc.Flush(); err != nil {
		return err
	}
	// Not every ResponseWriter supports deadlines (httptest does not).
	_ = rc.SetWriteDeadline(time.Now().Add(writeWindow))
	return nil
}
