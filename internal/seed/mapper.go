package seed

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/bindery/internal/catalog"
	"github.com/MrSnakeDoc/bindery/internal/domain"
)

// Map converts the catalog into store payloads, in file order. Entries
// that miss a title, an author or a photo are rejected with their
// position so the file can be fixed.
func Map(c Catalog) ([]domain.Fields, error) {
	out := make([]domain.Fields, 0, len(c.Entries))
	var errs []error

	for i, spec := range c.Entries {
		f, err := mapEntry(spec)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%q): %w", i+1, spec.Title, err))
			continue
		}
		out = append(out, f)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no entries found in seed file")
	}
	return out, nil
}

func mapEntry(spec EntrySpec) (domain.Fields, error) {
	in := catalog.Input{
		Title:       spec.Title,
		Author:      spec.Author,
		Price:       spec.Price,
		Description: spec.Description,
	}.Normalize()

	if in.Title == "" || in.Author == "" {
		return domain.Fields{}, errors.New("title and author are required")
	}
	if err := in.RejectMarkup(); err != nil {
		return domain.Fields{}, err
	}

	price, err := catalog.ParsePrice(in.Price)
	if err != nil {
		return domain.Fields{}, err
	}

	photos, err := decodePhotos(&spec.Photos)
	if err != nil {
		return domain.Fields{}, err
	}
	if len(photos) == 0 {
		return domain.Fields{}, errors.New("at least one photo is required")
	}

	return domain.Fields{
		Title:       in.Title,
		Author:      in.Author,
		Price:       price,
		Description: domain.OptionalText(in.Description),
		Photos:      photos,
	}, nil
}

// decodePhotos accepts a list of URLs or the legacy mapping.
func decodePhotos(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.SequenceNode:
		var urls []string
		if err := node.Decode(&urls); err != nil {
			return nil, fmt.Errorf("invalid photos list: %w", err)
		}
		return domain.PhotoSequence(urls).Normalize(), nil
	case yaml.MappingNode:
		var m map[string]any
		if err := node.Decode(&m); err != nil {
			return nil, fmt.Errorf("invalid photos mapping: %w", err)
		}
		return domain.LegacyPhotos(m).Normalize(), nil
	default:
		return nil, fmt.Errorf("photos must be a list or a mapping (line %d)", node.Line)
	}
}
