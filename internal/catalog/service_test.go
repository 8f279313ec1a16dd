package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/MrSnakeDoc/bindery/internal/domain"
	"github.com/MrSnakeDoc/bindery/internal/upload"
)

func TestCreateWithoutPhotosTouchesNothing(t *testing.T) {
	svc, st, up := newTestService()

	_, err := svc.Create(context.Background(), Input{Title: "Atlas", Author: "Anon"}, nil)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Create() error = %v, want *domain.ValidationError", err)
	}
	if verr.Fields["photos"] != MsgPhotosRequired {
		t.Errorf("photos message = %q, want %q", verr.Fields["photos"], MsgPhotosRequired)
	}
	if up.calls() != 0 {
		t.Errorf("uploads attempted = %d, want 0", up.calls())
	}
	if st.writeCount() != 0 {
		t.Errorf("store writes = %d, want 0", st.writeCount())
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name       string
		input      Input
		wantFields []string
	}{
		{"missing title", Input{Author: "Anon"}, []string{"title"}},
		{"blank author", Input{Title: "Atlas", Author: "   "}, []string{"author"}},
		{"markup only title", Input{Title: "<b></b>", Author: "Anon"}, []string{"title"}},
		{"price not a number", Input{Title: "Atlas", Author: "Anon", Price: "douze"}, []string{"price"}},
		{"negative price", Input{Title: "Atlas", Author: "Anon", Price: "-3"}, []string{"price"}},
		{"everything wrong", Input{Price: "x"}, []string{"title", "author", "price"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st, up := newTestService()

			_, err := svc.Create(context.Background(), tt.input, photoFiles("front.jpg"))

			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Create() error = %v, want validation error", err)
			}
			for _, f := range tt.wantFields {
				if verr.Fields[f] == "" {
					t.Errorf("no message for %q in %v", f, verr.Fields)
				}
			}
			if up.calls() != 0 || st.writeCount() != 0 {
				t.Errorf("validation failure reached the network: uploads=%d writes=%d", up.calls(), st.writeCount())
			}
		})
	}
}

func TestCreateUploadFailureAtEachPosition(t *testing.T) {
	names := []string{"front.jpg", "spine.jpg", "back.jpg", "inside.jpg"}

	for k := 1; k <= len(names); k++ {
		svc, st, up := newTestService()
		up.failAt = k

		_, err := svc.Create(context.Background(), Input{Title: "Atlas", Author: "Anon"}, photoFiles(names...))

		var uerr *upload.Error
		if !errors.As(err, &uerr) {
			t.Fatalf("k=%d: Create() error = %v, want *upload.Error", k, err)
		}
		if uerr.File != names[k-1] {
			t.Errorf("k=%d: failing file = %q, want %q", k, uerr.File, names[k-1])
		}
		if !reflect.DeepEqual(up.attempts, names[:k]) {
			t.Errorf("k=%d: attempted %v, want %v", k, up.attempts, names[:k])
		}
		if st.writeCount() != 0 {
			t.Errorf("k=%d: store writes = %d, want 0", k, st.writeCount())
		}
		if got := Message(err); got != "Échec de l’upload de "+names[k-1] {
			t.Errorf("k=%d: Message() = %q", k, got)
		}
	}
}

func TestCreateStoreFailure(t *testing.T) {
	svc, st, _ := newTestService()
	st.saveErr = errors.New("connection reset by peer")

	_, err := svc.Create(context.Background(), Input{Title: "Atlas", Author: "Anon"}, photoFiles("a.jpg"))
	if err == nil {
		t.Fatal("Create() error = nil, want store error")
	}
	if Message(err) != MsgSaveError {
		t.Errorf("Message() = %q, want generic save error", Message(err))
	}
	if st.Len() != 0 {
		t.Errorf("records = %d, want 0", st.Len())
	}
}

func TestCreateEmptyOptionalFieldsStoredAsNull(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()

	entryID, err := svc.Create(ctx, Input{Title: "Atlas", Author: "Anon", Price: "", Description: "  "}, photoFiles("a.jpg"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	rec, _ := st.Get(ctx, entryID)
	if rec.Price != nil {
		t.Errorf("Price = %v, want nil", rec.Price)
	}
	if rec.Description != nil {
		t.Errorf("Description = %q, want nil", *rec.Description)
	}

	ef := svc.LoadEdit(ctx, entryID)
	if ef.Form.Input.Price != "" {
		t.Errorf("edit form price = %q, want empty", ef.Form.Input.Price)
	}
}

func TestCreateKeepsTextAsTyped(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"  Atlas  ", "Atlas"},
		{"a < b and c > d", "a < b and c > d"},
		{"5<6", "5<6"},
		{"Dupont & fils", "Dupont & fils"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			svc, st, _ := newTestService()
			ctx := context.Background()

			entryID, err := svc.Create(ctx, Input{Title: tt.title, Author: "Anon"}, photoFiles("a.jpg"))
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			rec, _ := st.Get(ctx, entryID)
			if rec.Title != tt.want {
				t.Errorf("Title = %q, want %q", rec.Title, tt.want)
			}
		})
	}
}

func TestCreateRejectsMarkup(t *testing.T) {
	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{"script in title", Input{Title: "Atlas <script>alert(1)</script>", Author: "Anon"}, "title"},
		{"tag-like title", Input{Title: "Les <Misérables>", Author: "Anon"}, "title"},
		{"letter after bracket", Input{Title: "Fish<Chips", Author: "Anon"}, "title"},
		{"html description", Input{Title: "Atlas", Author: "Anon", Description: "<p>Reliure <em>cuir</em></p>"}, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st, up := newTestService()

			_, err := svc.Create(context.Background(), tt.in, photoFiles("a.jpg"))
			var verr *domain.ValidationError
			if !errors.As(err, &verr) || verr.Fields[tt.field] != MsgMarkup {
				t.Fatalf("Create() error = %v, want %q on %s", err, MsgMarkup, tt.field)
			}
			if up.calls() != 0 || st.writeCount() != 0 {
				t.Errorf("uploads=%d writes=%d, want none", up.calls(), st.writeCount())
			}
		})
	}
}

func TestEditWithoutFilesKeepsPhotos(t *testing.T) {
	svc, st, up := newTestService()
	ctx := context.Background()

	entryID, _ := svc.Create(ctx, Input{Title: "Atlas", Author: "Anon"}, photoFiles("a.jpg", "b.jpg"))
	uploadsBefore := up.calls()

	if err := svc.Update(ctx, entryID, Input{Title: "Atlas", Author: "Anon", Price: "12,50"}, nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if up.calls() != uploadsBefore {
		t.Errorf("Update() without files uploaded %d photos", up.calls()-uploadsBefore)
	}
	rec, _ := st.Get(ctx, entryID)
	if got := rec.Entry().Photos; !reflect.DeepEqual(got, urlsFor("a.jpg", "b.jpg")) {
		t.Errorf("photos = %v, want unchanged", got)
	}
	if rec.Price == nil || rec.Price.String() != "12.5" {
		t.Errorf("Price = %v, want 12.5", rec.Price)
	}
	if rec.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestEditNormalizesLegacyPhotos(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()

	st.Put(&domain.Record{
		ID:        "legacy",
		Title:     "Carnet",
		Author:    "Anon",
		Photos:    domain.LegacyPhotos(map[string]any{"spine": "s", "front": "f"}),
		CreatedAt: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	ef := svc.LoadEdit(ctx, "legacy")
	if !reflect.DeepEqual(ef.Form.Photos, []string{"f", "s"}) {
		t.Errorf("edit photos = %v, want [f s]", ef.Form.Photos)
	}

	if err := svc.Update(ctx, "legacy", Input{Title: "Carnet", Author: "Anon"}, nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	rec, _ := st.Get(ctx, "legacy")
	if rec.Photos.Layout() != domain.LayoutSequence {
		t.Errorf("layout after edit = %v, want sequence", rec.Photos.Layout())
	}
}

func TestEditWithoutFilesCarriesEmptyLegacyPhotos(t *testing.T) {
	svc, st, up := newTestService()
	ctx := context.Background()

	st.Put(&domain.Record{
		ID:        "broken",
		Title:     "Carnet",
		Author:    "Anon",
		Photos:    domain.LegacyPhotos(map[string]any{"front": 1, "back": false}),
		CreatedAt: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	if err := svc.Update(ctx, "broken", Input{Title: "Carnet relié", Author: "Anon"}, nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if up.calls() != 0 {
		t.Errorf("uploads = %d, want 0", up.calls())
	}

	rec, _ := st.Get(ctx, "broken")
	if rec.Title != "Carnet relié" {
		t.Errorf("Title = %q, want the edited title", rec.Title)
	}
	if got := rec.Entry().Photos; len(got) != 0 {
		t.Errorf("Photos = %v, want the (empty) stored sequence carried through", got)
	}
}

func TestEditUploadFailureLeavesRecord(t *testing.T) {
	svc, st, up := newTestService()
	ctx := context.Background()

	entryID, _ := svc.Create(ctx, Input{Title: "Atlas", Author: "Anon"}, photoFiles("a.jpg"))
	writes := st.writeCount()
	up.failAt = up.calls() + 2

	ef := svc.SubmitEdit(ctx, entryID, Input{Title: "Changed", Author: "Anon"}, photoFiles("x.jpg", "y.jpg", "z.jpg"))
	if ef == nil {
		t.Fatal("SubmitEdit() = nil, want failed form")
	}
	if ef.Form.Error != "Échec de l’upload de y.jpg" {
		t.Errorf("form error = %q", ef.Form.Error)
	}
	if ef.Form.Input.Title != "Changed" {
		t.Errorf("typed title lost: %q", ef.Form.Input.Title)
	}
	if st.writeCount() != writes {
		t.Errorf("store written after failed upload")
	}
	rec, _ := st.Get(ctx, entryID)
	if rec.Title != "Atlas" {
		t.Errorf("Title = %q, want unchanged", rec.Title)
	}
}

func TestLoadEditStates(t *testing.T) {
	svc, st, _ := newTestService()
	ctx := context.Background()

	if ef := svc.LoadEdit(ctx, "missing"); ef.State != EditNotFound {
		t.Errorf("LoadEdit(missing) state = %v, want not-found", ef.State)
	}

	st.getErr = errors.New("dial tcp: i/o timeout")
	ef := svc.LoadEdit(ctx, "anything")
	if ef.State != EditLoadError {
		t.Errorf("LoadEdit() state = %v, want load-error", ef.State)
	}
	if ef.Form.Error != MsgLoadError {
		t.Errorf("load error message = %q", ef.Form.Error)
	}
}

func TestUpdateMissingEntry(t *testing.T) {
	svc, st, up := newTestService()

	err := svc.Update(context.Background(), "gone", Input{Title: "x", Author: "y"}, photoFiles("a.jpg"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	if up.calls() != 0 || st.writeCount() != 0 {
		t.Errorf("missing entry reached uploads=%d writes=%d", up.calls(), st.writeCount())
	}
}

func TestAtlasScenario(t *testing.T) {
	svc, _, _ := newTestService()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	view, err := svc.OpenList(ctx)
	if err != nil {
		t.Fatalf("OpenList() error = %v", err)
	}
	defer view.Close()

	snap, err := view.Next(ctx)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if snap.State != ListEmpty {
		t.Fatalf("initial state = %v, want empty", snap.State)
	}

	entryID, err := svc.Create(ctx, Input{Title: "Atlas", Author: "Anon", Price: "", Description: ""}, photoFiles("a.jpg", "b.jpg"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	snap, err = view.Next(ctx)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if snap.State != ListReady || len(snap.Entries) != 1 {
		t.Fatalf("snapshot = %+v, want one ready entry", snap)
	}
	e, ok := snap.Entry(entryID)
	if !ok {
		t.Fatalf("entry %s missing from snapshot", entryID)
	}
	if e.Title != "Atlas" || !reflect.DeepEqual(e.Photos, urlsFor("a.jpg", "b.jpg")) {
		t.Errorf("entry = %+v", e)
	}
	if _, shown := e.DisplayPrice(); shown {
		t.Error("empty price should not be displayed")
	}

	card := domain.NewCard(e, 0)
	if card.CurrentPhoto() != urlsFor("a.jpg")[0] {
		t.Errorf("first photo = %q", card.CurrentPhoto())
	}
	card.Carousel = card.Carousel.Next()
	if card.CurrentPhoto() != urlsFor("b.jpg")[0] {
		t.Errorf("after next = %q", card.CurrentPhoto())
	}
	card.Carousel = card.Carousel.Next()
	if card.CurrentPhoto() != urlsFor("a.jpg")[0] {
		t.Errorf("next should wrap to the first photo, got %q", card.CurrentPhoto())
	}

	if err := svc.Delete(ctx, entryID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	snap, err = view.Next(ctx)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if _, ok := snap.Entry(entryID); ok || snap.State != ListEmpty {
		t.Errorf("deleted entry still listed: %+v", snap)
	}
}
