package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/MrSnakeDoc/bindery/internal/catalog"
	"github.com/MrSnakeDoc/bindery/internal/upload"
)

const (
	// maxFieldBytes caps one text field; validation rejects far less.
	maxFieldBytes = 64 << 10
	photosField   = "photos"
	msgTooLarge   = "Les photos sont trop volumineuses."
)

// submission is one parsed create/edit form post. Close removes the photos
// spooled to disk.
type submission struct {
	Input catalog.Input
	Files []upload.File

	temps []string
}

func (s *submission) Close() {
	for _, p := range s.temps {
		_ = os.Remove(p)
	}
	s.temps = nil
}

// readSubmission reads a urlencoded or multipart form capped at maxBytes.
// Multipart bodies are streamed part by part: text fields come before the
// file input in the form, so what the user typed survives a body that
// overflows the cap. On error the returned submission holds every field
// read so far. Files keep the order the browser sent them, which is the
// selection order; empty file inputs are skipped.
func readSubmission(w http.ResponseWriter, r *http.Request, maxBytes int64) (*submission, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	sub := &submission{}

	mr, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		if err := r.ParseForm(); err != nil {
			return sub, fmt.Errorf("parse form: %w", err)
		}
		for _, name := range []string{"title", "author", "price", "description"} {
			setField(&sub.Input, name, r.PostFormValue(name))
		}
		return sub, nil
	}
	if err != nil {
		return sub, fmt.Errorf("parse form: %w", err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return sub, nil
		}
		if err != nil {
			return sub, fmt.Errorf("parse form: %w", err)
		}

		if part.FileName() == "" && part.FormName() != photosField {
			b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			if err != nil {
				return sub, fmt.Errorf("read field %q: %w", part.FormName(), err)
			}
			setField(&sub.Input, part.FormName(), string(b))
			continue
		}

		if part.FormName() != photosField || part.FileName() == "" {
			_, _ = io.Copy(io.Discard, part)
			continue
		}
		if err := sub.spool(part); err != nil {
			return sub, err
		}
	}
}

// spool writes one photo part to a temp file.
func (s *submission) spool(part *multipart.Part) error {
	f, err := os.CreateTemp("", "bindery-photo-*")
	if err != nil {
		return fmt.Errorf("spool %s: %w", part.FileName(), err)
	}
	s.temps = append(s.temps, f.Name())

	size, err := io.Copy(f, part)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("spool %s: %w", part.FileName(), err)
	}
	if size == 0 {
		return nil
	}

	s.Files = append(s.Files, upload.FromTemp(part.FileName(), part.Header.Get("Content-Type"), f.Name(), size))
	return nil
}

func setField(in *catalog.Input, name, value string) {
	switch name {
	case "title":
		in.Title = value
	case "author":
		in.Author = value
	case "price":
		in.Price = value
	case "description":
		in.Description = value
	}
}
