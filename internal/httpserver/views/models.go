package views

import (
	"fmt"
	"net/url"

	"github.com/MrSnakeDoc/bindery/internal/catalog"
	"github.com/MrSnakeDoc/bindery/internal/domain"
)

const SiteTitle = "Mon portfolio de reliure"

// Card is one entry on the listing with its carousel links.
type Card struct {
	domain.Card
	PriceText string
	ShowPrice bool
	PrevURL   string
	NextURL   string
	Dots      []Dot
}

type Dot struct {
	Current bool
	URL     string
}

// ListPage is the model of "/".
type ListPage struct {
	SiteTitle string
	State     string
	Cards     []Card
	Error     string
	// Live enables the stream-driven reload script.
	Live bool
}

// NewListPage builds cards from a snapshot. The carousel of the entry
// named by focus starts at photo; every other card starts at 0.
func NewListPage(snap catalog.Snapshot, focus string, photo int) ListPage {
	page := ListPage{SiteTitle: SiteTitle, State: snap.State.String(), Live: true}
	for _, e := range snap.Entries {
		start := 0
		if e.ID == focus {
			start = photo
		}
		page.Cards = append(page.Cards, NewCard(e, start))
	}
	return page
}

func NewCard(e domain.Entry, start int) Card {
	c := Card{Card: domain.NewCard(e, start)}
	c.PriceText, c.ShowPrice = e.DisplayPrice()

	car := c.Card.Carousel
	c.PrevURL = carouselURL(e.ID, car.Prev().Index)
	c.NextURL = carouselURL(e.ID, car.Next().Index)
	for i, current := range car.Dots() {
		c.Dots = append(c.Dots, Dot{Current: current, URL: carouselURL(e.ID, i)})
	}
	return c
}

func carouselURL(entryID string, photo int) string {
	q := url.Values{}
	q.Set("entry", entryID)
	q.Set("photo", fmt.Sprint(photo))
	return "/?" + q.Encode() + "#entry-" + entryID
}

// FormPage is the model of the create and edit pages.
type FormPage struct {
	SiteTitle string
	Heading   string
	Action    string
	Submit    string
	Edit      bool
	Form      catalog.Form
}

func NewCreatePage(f catalog.Form) FormPage {
	return FormPage{
		SiteTitle: SiteTitle,
		Heading:   "Ajouter un livre",
		Action:    "/entries/new",
		Submit:    "Ajouter",
		Form:      f,
	}
}

func NewEditPage(ef catalog.EditForm) FormPage {
	return FormPage{
		SiteTitle: SiteTitle,
		Heading:   "Modifier le livre",
		Action:    "/entries/" + ef.ID + "/edit",
		Submit:    "Enregistrer",
		Edit:      true,
		Form:      ef.Form,
	}
}

// MessagePage is the model of the terminal "not found" and "load error" pages.
type MessagePage struct {
	SiteTitle string
	Message   string
}

func NewMessagePage(msg string) MessagePage {
	return MessagePage{SiteTitle: SiteTitle, Message: msg}
}
