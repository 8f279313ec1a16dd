package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestPhotoSetNormalize(t *testing.T) {
	tests := []struct {
		name     string
		set      PhotoSet
		expected []string
	}{
		{
			name:     "sequence passes through unchanged",
			set:      PhotoSequence([]string{"c", "a", "b"}),
			expected: []string{"c", "a", "b"},
		},
		{
			name:     "legacy with spine and inside absent",
			set:      LegacyPhotos(map[string]any{"front": "a", "back": "b"}),
			expected: []string{"a", "b"},
		},
		{
			name: "legacy keeps fixed key order",
			set: LegacyPhotos(map[string]any{
				"inside": "d", "back": "c", "spine": "b", "front": "a",
			}),
			expected: []string{"a", "b", "c", "d"},
		},
		{
			name: "legacy drops non-string values and unknown keys",
			set: LegacyPhotos(map[string]any{
				"front": "a", "spine": nil, "back": 42.0, "inside": "d", "cover": "x",
			}),
			expected: []string{"a", "d"},
		},
		{
			name:     "empty sequence",
			set:      PhotoSequence(nil),
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.set.Normalize()
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Normalize() = %#v, want %#v", got, tt.expected)
			}
		})
	}
}

func TestPhotoSetNormalizeReturnsCopy(t *testing.T) {
	urls := []string{"a", "b"}
	set := PhotoSequence(urls)

	got := set.Normalize()
	got[0] = "mutated"

	if urls[0] != "a" {
		t.Errorf("Normalize() must not alias the stored sequence")
	}
}

func TestPhotoSetUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		layout   PhotoLayout
		expected []string
	}{
		{name: "array", input: `["u1","u2"]`, layout: LayoutSequence, expected: []string{"u1", "u2"}},
		{name: "legacy object", input: `{"back":"b","front":"a","spine":false}`, layout: LayoutLegacy, expected: []string{"a", "b"}},
		{name: "null", input: `null`, layout: LayoutSequence, expected: []string{}},
		{name: "array skips non strings", input: `["u1",7,null,"u2"]`, layout: LayoutSequence, expected: []string{"u1", "u2"}},
		{name: "array skips empty urls", input: `["",null,"u1"]`, layout: LayoutSequence, expected: []string{"u1"}},
		{name: "legacy skips empty urls", input: `{"front":"","back":"b","inside":null}`, layout: LayoutLegacy, expected: []string{"b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var set PhotoSet
			if err := json.Unmarshal([]byte(tt.input), &set); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if set.Layout() != tt.layout {
				t.Errorf("Layout() = %v, want %v", set.Layout(), tt.layout)
			}
			if got := set.Normalize(); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Normalize() = %#v, want %#v", got, tt.expected)
			}
		})
	}
}

func TestPhotoSetUnmarshalJSONRejectsScalars(t *testing.T) {
	var set PhotoSet
	if err := json.Unmarshal([]byte(`"https://img/a.jpg"`), &set); err == nil {
		t.Error("Unmarshal() of a bare string should fail")
	}
}

func TestRecordEntryNormalizesLegacyRecord(t *testing.T) {
	raw := `{
		"id": "abc",
		"title": "Carnet",
		"author": "A. Relieur",
		"price": null,
		"description": "",
		"photos": {"front": "a", "back": "b"},
		"createdAt": "2024-05-01T10:00:00Z"
	}`

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	entry := rec.Entry()
	if !reflect.DeepEqual(entry.Photos, []string{"a", "b"}) {
		t.Errorf("Photos = %#v, want [a b]", entry.Photos)
	}
	if entry.Description != nil {
		t.Errorf("Description = %q, want nil for empty text", *entry.Description)
	}
	if entry.Price != nil {
		t.Errorf("Price = %v, want nil", entry.Price)
	}
}
