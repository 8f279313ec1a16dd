package catalog

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/bindery/internal/domain"
	"github.com/MrSnakeDoc/bindery/internal/logger"
	"github.com/MrSnakeDoc/bindery/internal/upload"
)

// Form is what a create or edit page renders: the typed values plus the
// outcome of the last submission.
type Form struct {
	Input Input
	// Photos are the stored photos, shown read-only on the edit page.
	Photos []string
	// Error is the form-level message, FieldErrors the per-field ones.
	Error       string
	FieldErrors map[string]string
}

// Fail records err on the form, keeping what the user typed.
func (f *Form) Fail(err error) {
	f.Error = Message(err)
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		f.FieldErrors = verr.Fields
	}
}

// EditState is the outcome of loading an entry for editing.
type EditState int

const (
	EditLoading EditState = iota
	EditReady
	EditNotFound
	EditLoadError
)

func (s EditState) String() string {
	switch s {
	case EditReady:
		return "ready"
	case EditNotFound:
		return "not-found"
	case EditLoadError:
		return "load-error"
	default:
		return "loading"
	}
}

// EditForm is the edit page model. Only EditReady carries a usable Form.
type EditForm struct {
	ID    string
	State EditState
	Form  Form
}

// LoadEdit fetches an entry and pre-fills the form. A missing entry and a
// failed read are both terminal; neither is retried.
func (s *Service) LoadEdit(ctx context.Context, entryID string) EditForm {
	ef := EditForm{ID: entryID}

	rec, err := s.store.Get(ctx, entryID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		ef.State = EditNotFound
		return ef
	case err != nil:
		s.log.Error("failed to load entry for edit",
			logger.String("id", entryID),
			logger.Error(err))
		ef.State = EditLoadError
		ef.Form.Error = MsgLoadError
		return ef
	}

	e := rec.Entry()
	ef.State = EditReady
	ef.Form = Form{Input: InputFrom(e), Photos: e.Photos}
	return ef
}

// SubmitCreate runs Create and returns the form to re-render on failure.
func (s *Service) SubmitCreate(ctx context.Context, in Input, files []upload.File) (string, *Form) {
	entryID, err := s.Create(ctx, in, files)
	if err != nil {
		f := &Form{Input: in}
		f.Fail(err)
		return "", f
	}
	return entryID, nil
}

// SubmitEdit runs Update. On failure the returned form keeps the typed
// values and the photos currently stored.
func (s *Service) SubmitEdit(ctx context.Context, entryID string, in Input, files []upload.File) *EditForm {
	err := s.Update(ctx, entryID, in, files)
	if err == nil {
		return nil
	}

	if errors.Is(err, domain.ErrNotFound) {
		return &EditForm{ID: entryID, State: EditNotFound}
	}

	ef := &EditForm{ID: entryID, State: EditReady, Form: Form{Input: in}}
	if e, gerr := s.Get(ctx, entryID); gerr == nil {
		ef.Form.Photos = e.Photos
	}
	ef.Form.Fail(err)
	return ef
}
