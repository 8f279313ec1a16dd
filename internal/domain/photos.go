package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PhotoLayout tells how a stored record keeps its photos.
type PhotoLayout int

const (
	// LayoutSequence is the canonical ordered list of URLs.
	LayoutSequence PhotoLayout = iota
	// LayoutLegacy is the older fixed mapping keyed by LegacyPhotoKeys.
	LayoutLegacy
)

func (l PhotoLayout) String() string {
	if l == LayoutLegacy {
		return "legacy"
	}
	return "sequence"
}

// LegacyPhotoKeys is the display order of the legacy mapping.
var LegacyPhotoKeys = [...]string{"front", "spine", "back", "inside"}

// PhotoSet is the photo field of a stored record: either an ordered sequence
// or the legacy four-key mapping. It only exists at the store boundary;
// Normalize turns it into the canonical []string right after reading.
type PhotoSet struct {
	layout PhotoLayout
	seq    []string
	legacy map[string]any
}

// PhotoSequence wraps an ordered list of URLs.
func PhotoSequence(urls []string) PhotoSet {
	return PhotoSet{layout: LayoutSequence, seq: urls}
}

// LegacyPhotos wraps a legacy mapping. Values that are not strings are kept
// as-is and dropped by Normalize.
func LegacyPhotos(m map[string]any) PhotoSet {
	return PhotoSet{layout: LayoutLegacy, legacy: m}
}

func (p PhotoSet) Layout() PhotoLayout { return p.layout }

// Normalize returns the photos as an ordered sequence. Legacy mappings are
// read in LegacyPhotoKeys order, skipping absent keys, empty strings and
// non-string values.
func (p PhotoSet) Normalize() []string {
	if p.layout == LayoutLegacy {
		out := make([]string, 0, len(LegacyPhotoKeys))
		for _, key := range LegacyPhotoKeys {
			if url, ok := p.legacy[key].(string); ok && url != "" {
				out = append(out, url)
			}
		}
		return out
	}

	out := make([]string, len(p.seq))
	copy(out, p.seq)
	return out
}

func (p PhotoSet) MarshalJSON() ([]byte, error) {
	if p.layout == LayoutLegacy {
		return json.Marshal(p.legacy)
	}
	if p.seq == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.seq)
}

func (p *PhotoSet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*p = PhotoSequence(nil)
		return nil

	case data[0] == '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode photo sequence: %w", err)
		}
		urls := make([]string, 0, len(raw))
		for _, item := range raw {
			var url string
			// null decodes into "" without error; neither is a photo.
			if err := json.Unmarshal(item, &url); err == nil && url != "" {
				urls = append(urls, url)
			}
		}
		*p = PhotoSequence(urls)
		return nil

	case data[0] == '{':
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("decode legacy photos: %w", err)
		}
		*p = LegacyPhotos(m)
		return nil

	default:
		return fmt.Errorf("unsupported photos value: %.32s", data)
	}
}
