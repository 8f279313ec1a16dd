package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/bindery/internal/catalog"
	"github.com/MrSnakeDoc/bindery/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bindery/internal/httpserver/views"
	"github.com/MrSnakeDoc/bindery/internal/logger"
)

// firstSnapshotWait bounds how long "/" waits for the store before it
// renders the loading state.
const firstSnapshotWait = 3 * time.Second

// Home renders the listing from the first snapshot of a fresh list view.
// ?entry=<id>&photo=<n> selects the photo shown by one card's carousel.
func Home(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		focus := r.URL.Query().Get("entry")
		photo, _ := strconv.Atoi(r.URL.Query().Get("photo"))

		page, status := homePage(r.Context(), d, focus, photo)
		render(w, d, status, views.PageList, page)
	}
}

func homePage(parent context.Context, d deps.Deps, focus string, photo int) (views.ListPage, int) {
	view, err := d.Catalog.OpenList(parent)
	if err != nil {
		d.Logger.Error("failed to open entry list", logger.Error(err))
		return views.ListPage{SiteTitle: views.SiteTitle, State: catalog.ListLoading.String(), Error: catalog.MsgLoadError}, http.StatusServiceUnavailable
	}
	defer func() { _ = view.Close() }()

	ctx, cancel := context.WithTimeout(parent, firstSnapshotWait)
	defer cancel()

	snap, err := view.Next(ctx)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		// The page subscribes to the stream and reloads once data arrives.
		return views.NewListPage(view.Current(), "", 0), http.StatusOK
	case err != nil:
		d.Logger.Error("entry list failed", logger.Error(err))
		return views.ListPage{SiteTitle: views.SiteTitle, State: catalog.ListLoading.String(), Error: catalog.MsgLoadError}, http.StatusServiceUnavailable
	}
	return views.NewListPage(snap, focus, photo), http.StatusOK
}

func NewEntryPage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, d, http.StatusOK, views.PageForm, views.NewCreatePage(catalog.Form{}))
	}
}

// CreateEntryForm handles the create form post: redirect to the listing
// on success, the same form with the typed values on failure.
func CreateEntryForm(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := readSubmission(w, r, d.MaxUploadBytes)
		defer sub.Close()
		if err != nil {
			f := catalog.Form{Input: sub.Input}
			f.Fail(err)
			if statusFor(err) == http.StatusRequestEntityTooLarge {
				f.Error = msgTooLarge
			}
			render(w, d, statusFor(err), views.PageForm, views.NewCreatePage(f))
			return
		}

		eid, form := d.Catalog.SubmitCreate(r.Context(), sub.Input, sub.Files)
		if form != nil {
			d.Logger.Debug("create form rejected", logger.String("reason", form.Error))
			render(w, d, formStatus(*form), views.PageForm, views.NewCreatePage(*form))
			return
		}

		d.Logger.Debug("create form accepted", logger.String("id", eid))
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func EditEntryPage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eid, ok := entryID(r)
		if !ok {
			renderNotFound(w, d)
			return
		}

		ef := d.Catalog.LoadEdit(r.Context(), eid)
		switch ef.State {
		case catalog.EditNotFound:
			renderNotFound(w, d)
		case catalog.EditLoadError:
			render(w, d, http.StatusInternalServerError, views.PageNotFound, views.NewMessagePage(catalog.MsgLoadError))
		default:
			render(w, d, http.StatusOK, views.PageForm, views.NewEditPage(ef))
		}
	}
}

func UpdateEntryForm(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eid, ok := entryID(r)
		if !ok {
			renderNotFound(w, d)
			return
		}

		sub, err := readSubmission(w, r, d.MaxUploadBytes)
		defer sub.Close()
		if err != nil {
			ef := d.Catalog.LoadEdit(r.Context(), eid)
			switch ef.State {
			case catalog.EditNotFound:
				renderNotFound(w, d)
				return
			case catalog.EditLoadError:
				render(w, d, http.StatusInternalServerError, views.PageNotFound, views.NewMessagePage(catalog.MsgLoadError))
				return
			}
			ef.Form.Input = sub.Input
			ef.Form.Fail(err)
			if statusFor(err) == http.StatusRequestEntityTooLarge {
				ef.Form.Error = msgTooLarge
			}
			render(w, d, statusFor(err), views.PageForm, views.NewEditPage(ef))
			return
		}

		ef := d.Catalog.SubmitEdit(r.Context(), eid, sub.Input, sub.Files)
		switch {
		case ef == nil:
			http.Redirect(w, r, "/", http.StatusSeeOther)
		case ef.State == catalog.EditNotFound:
			renderNotFound(w, d)
		default:
			render(w, d, formStatus(ef.Form), views.PageForm, views.NewEditPage(*ef))
		}
	}
}

// DeleteEntryForm is the target of the card's delete button; the browser
// asks for confirmation before posting.
func DeleteEntryForm(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if eid, ok := entryID(r); ok {
			if err := d.Catalog.Delete(r.Context(), eid); err != nil {
				d.Logger.Error("delete entry failed", logger.String("id", eid), logger.Error(err))
				render(w, d, http.StatusInternalServerError, views.PageNotFound, views.NewMessagePage(catalog.MsgSaveError))
				return
			}
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// NotFound is the router's fallback page.
func NotFound(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderNotFound(w, d)
	}
}

func renderNotFound(w http.ResponseWriter, d deps.Deps) {
	render(w, d, http.StatusNotFound, views.PageNotFound, views.NewMessagePage(catalog.MsgNotFound))
}

// formStatus picks the status of a re-rendered form from its errors.
func formStatus(f catalog.Form) int {
	switch {
	case len(f.FieldErrors) > 0:
		return http.StatusBadRequest
	case f.Error == catalog.MsgSaveError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func render(w http.ResponseWriter, d deps.Deps, status int, page string, data any) {
	if err := views.Render(w, status, page, data); err != nil {
		d.Logger.Error("failed to render page", logger.String("page", page), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
