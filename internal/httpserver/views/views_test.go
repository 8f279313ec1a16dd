package views

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrSnakeDoc/bindery/internal/catalog"
	"github.com/MrSnakeDoc/bindery/internal/domain"
)

func entry(id string, photos ...string) domain.Entry {
	return domain.Entry{ID: id, Title: "Atlas", Author: "Anon", Photos: photos, CreatedAt: time.Now()}
}

func TestNewCardLinks(t *testing.T) {
	c := NewCard(entry("abc", "p0", "p1", "p2"), 0)

	if c.CurrentPhoto() != "p0" {
		t.Errorf("CurrentPhoto() = %q, want p0", c.CurrentPhoto())
	}
	if !strings.Contains(c.PrevURL, "photo=2") {
		t.Errorf("PrevURL = %q, want wrap to photo=2", c.PrevURL)
	}
	if !strings.Contains(c.NextURL, "photo=1") || !strings.Contains(c.NextURL, "entry=abc") {
		t.Errorf("NextURL = %q", c.NextURL)
	}
	if len(c.Dots) != 3 || !c.Dots[0].Current || c.Dots[1].Current {
		t.Errorf("Dots = %+v", c.Dots)
	}
}

func TestNewCardPrice(t *testing.T) {
	zero := decimal.Zero
	price := decimal.RequireFromString("45")

	tests := []struct {
		name  string
		price *decimal.Decimal
		show  bool
	}{
		{"none", nil, false},
		{"zero", &zero, false},
		{"positive", &price, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entry("x", "p")
			e.Price = tt.price
			if c := NewCard(e, 0); c.ShowPrice != tt.show {
				t.Errorf("ShowPrice = %v, want %v", c.ShowPrice, tt.show)
			}
		})
	}
}

func TestRenderListStates(t *testing.T) {
	tests := []struct {
		name string
		page ListPage
		want string
	}{
		{"loading", ListPage{SiteTitle: SiteTitle, State: "loading"}, "Chargement…"},
		{"empty", ListPage{SiteTitle: SiteTitle, State: "empty"}, "Aucun livre pour l’instant…"},
		{"ready", ListPage{SiteTitle: SiteTitle, State: "ready", Cards: []Card{NewCard(entry("abc", "https://img.example/a.jpg"), 0)}}, `id="entry-abc"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if err := Render(rec, http.StatusOK, PageList, tt.page); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			body := rec.Body.String()
			if !strings.Contains(body, tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
			if !strings.Contains(body, SiteTitle) {
				t.Errorf("body missing site title")
			}
		})
	}
}

func TestRenderCardWithoutPhotosAndBracketTitle(t *testing.T) {
	e := entry("abc")
	e.Title = "5 < 6 > 4"
	page := ListPage{SiteTitle: SiteTitle, State: "ready", Cards: []Card{NewCard(e, 0)}}

	rec := httptest.NewRecorder()
	if err := Render(rec, http.StatusOK, PageList, page); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<img") {
		t.Error("card without photos should not render an image")
	}
	if !strings.Contains(body, "5 &lt; 6 &gt; 4") {
		t.Error("title should be escaped, not dropped")
	}
}

func TestRenderFormKeepsInputAndErrors(t *testing.T) {
	f := catalog.Form{Input: catalog.Input{Title: `Atlas "cuir"`, Author: "Anon"}}
	f.Fail(domain.NewValidationError("photos", catalog.MsgPhotosRequired))

	rec := httptest.NewRecorder()
	if err := Render(rec, http.StatusBadRequest, PageForm, NewCreatePage(f)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	body := rec.Body.String()
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	for _, want := range []string{"Ajouter un livre", catalog.MsgPhotosRequired, "Atlas &#34;cuir&#34;"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestRenderUnknownPage(t *testing.T) {
	if err := Render(httptest.NewRecorder(), http.StatusOK, "nope", nil); err == nil {
		t.Error("Render() of unknown page should fail")
	}
}
