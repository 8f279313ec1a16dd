package catalog

import (
	"errors"
	"html"
	"maps"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"

	"github.com/MrSnakeDoc/bindery/internal/domain"
	"github.com/MrSnakeDoc/bindery/internal/validation"
)

// Messages shown next to the form.
const (
	MsgPhotosRequired = "Merci de sélectionner au moins une photo."
	MsgPriceInvalid   = "Le prix doit être un nombre."
	MsgPriceNegative  = "Le prix ne peut pas être négatif."
	MsgMarkup         = "Les balises HTML ne sont pas acceptées."
)

// Input is what the user typed in the create or edit form. Price stays a
// string so a rejected value can be shown back unchanged.
type Input struct {
	Title       string `form:"title" validate:"required,max=200"`
	Author      string `form:"author" validate:"required,max=200"`
	Price       string `form:"price" validate:"max=32"`
	Description string `form:"description" validate:"max=5000"`
}

var plainText = bluemonday.StrictPolicy()

// Normalize trims whitespace. Text is otherwise stored as typed; pages
// escape it on output.
func (in Input) Normalize() Input {
	return Input{
		Title:       strings.TrimSpace(in.Title),
		Author:      strings.TrimSpace(in.Author),
		Price:       strings.TrimSpace(in.Price),
		Description: strings.TrimSpace(in.Description),
	}
}

// RejectMarkup fails on text fields holding HTML tags. Stray angle
// brackets ("a < b", "5 > 3") are plain text and pass.
func (in Input) RejectMarkup() error {
	fields := map[string]string{}
	for name, v := range map[string]string{"title": in.Title, "author": in.Author, "description": in.Description} {
		if hasMarkup(v) {
			fields[name] = MsgMarkup
		}
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// hasMarkup reports whether the strict policy would drop part of s.
func hasMarkup(s string) bool {
	return html.UnescapeString(plainText.Sanitize(s)) != html.UnescapeString(s)
}

// ParsePrice reads the price field. Empty means no price. A comma is
// accepted as the decimal separator.
func ParsePrice(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.Replace(raw, ",", ".", 1))
	if err != nil {
		return nil, domain.NewValidationError("price", MsgPriceInvalid)
	}
	if d.IsNegative() {
		return nil, domain.NewValidationError("price", MsgPriceNegative)
	}
	return &d, nil
}

// check runs every local rule and merges the failures into one
// *domain.ValidationError. needPhotos is false when an edit keeps the
// existing photos.
func (in Input) check(v *validation.Validator, files int, needPhotos bool) (*decimal.Decimal, error) {
	fields := map[string]string{}

	var verr *domain.ValidationError
	if err := v.Validate(in); err != nil {
		if !errors.As(err, &verr) {
			return nil, err
		}
		maps.Copy(fields, verr.Fields)
	}

	price, err := ParsePrice(in.Price)
	if errors.As(err, &verr) {
		maps.Copy(fields, verr.Fields)
	}

	if err := in.RejectMarkup(); errors.As(err, &verr) {
		for name, msg := range verr.Fields {
			if _, taken := fields[name]; !taken {
				fields[name] = msg
			}
		}
	}

	if needPhotos && files == 0 {
		fields["photos"] = MsgPhotosRequired
	}

	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}
	return price, nil
}

// fields builds the store payload.
func (in Input) fields(price *decimal.Decimal, photos []string) domain.Fields {
	return domain.Fields{
		Title:       in.Title,
		Author:      in.Author,
		Price:       price,
		Description: domain.OptionalText(in.Description),
		Photos:      photos,
	}
}

// InputFrom pre-fills a form from a stored entry. A missing price shows
// as an empty field.
func InputFrom(e domain.Entry) Input {
	in := Input{
		Title:       e.Title,
		Author:      e.Author,
		Description: e.DescriptionText(),
	}
	if e.Price != nil {
		in.Price = e.Price.String()
	}
	return in
}
