package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bindery/internal/domain"
	"github.com/MrSnakeDoc/bindery/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bindery/internal/id"
	"github.com/MrSnakeDoc/bindery/internal/logger"
)

type listResponse struct {
	Entries []domain.Entry `json:"entries"`
}

type createdResponse struct {
	ID string `json:"id"`
}

// entryID reads {id} from the route. Ids that New could never have produced
// are answered as not found without a store round trip.
func entryID(r *http.Request) (string, bool) {
	v := chi.URLParam(r, "id")
	return v, id.Valid(v)
}

func ListEntries(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := d.Catalog.List(r.Context())
		if err != nil {
			d.Logger.Error("list entries failed", logger.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{Entries: entries})
	}
}

func GetEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eid, ok := entryID(r)
		if !ok {
			writeError(w, domain.NotFoundError(eid))
			return
		}

		e, err := d.Catalog.Get(r.Context(), eid)
		if err != nil {
			if statusFor(err) >= http.StatusInternalServerError {
				d.Logger.Error("get entry failed", logger.String("id", eid), logger.Error(err))
			}
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// CreateEntry takes the same multipart form as the HTML page.
func CreateEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := readSubmission(w, r, d.MaxUploadBytes)
		defer sub.Close()
		if err != nil {
			writeError(w, err)
			return
		}

		eid, err := d.Catalog.Create(r.Context(), sub.Input, sub.Files)
		if err != nil {
			logSubmitError(d, "create entry failed", "", err)
			writeError(w, err)
			return
		}

		w.Header().Set("Location", "/api/entries/"+eid)
		writeJSON(w, http.StatusCreated, createdResponse{ID: eid})
	}
}

// UpdateEntry overwrites an entry. Without files the photos are kept.
func UpdateEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eid, ok := entryID(r)
		if !ok {
			writeError(w, domain.NotFoundError(eid))
			return
		}

		sub, err := readSubmission(w, r, d.MaxUploadBytes)
		defer sub.Close()
		if err != nil {
			writeError(w, err)
			return
		}

		if err := d.Catalog.Update(r.Context(), eid, sub.Input, sub.Files); err != nil {
			logSubmitError(d, "update entry failed", eid, err)
			writeError(w, err)
			return
		}

		e, err := d.Catalog.Get(r.Context(), eid)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

// DeleteEntry is idempotent: deleting a missing entry is a 204 too.
func DeleteEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eid, ok := entryID(r)
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if err := d.Catalog.Delete(r.Context(), eid); err != nil {
			d.Logger.Error("delete entry failed", logger.String("id", eid), logger.Error(err))
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// logSubmitError logs server-side failures; validation and not-found are
// the user's business and stay out of the error log.
func logSubmitError(d deps.Deps, msg, eid string, err error) {
	status := statusFor(err)
	switch {
	case status >= http.StatusInternalServerError:
		d.Logger.Error(msg, logger.String("id", eid), logger.Int("status", status), logger.Error(err))
	default:
		d.Logger.Debug(msg, logger.String("id", eid), logger.Int("status", status), logger.Error(err))
	}
}
