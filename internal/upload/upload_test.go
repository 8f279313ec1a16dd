package upload

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/bindery/internal/logger"
)

// scriptedUploader fails on the file whose 1-indexed position is failAt.
type scriptedUploader struct {
	failAt   int
	attempts []string
	opened   []string
}

func (s *scriptedUploader) Name() string { return "scripted" }

func (s *scriptedUploader) Upload(_ context.Context, f File) (string, error) {
	s.attempts = append(s.attempts, f.Name)
	if len(s.attempts) == s.failAt {
		return "", errors.New("rejected by host")
	}
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	s.opened = append(s.opened, f.Name)
	return "https://img.example/" + f.Name, nil
}

func memFile(name, body string) File {
	return File{
		Name:        name,
		ContentType: "image/jpeg",
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func files(names ...string) []File {
	out := make([]File, 0, len(names))
	for _, n := range names {
		out = append(out, memFile(n, "jpeg-bytes-"+n))
	}
	return out
}

func TestAllUploadsInOrder(t *testing.T) {
	u := &scriptedUploader{}

	urls, err := All(context.Background(), u, files("front.jpg", "spine.jpg", "back.jpg"), logger.Nop())
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}

	want := []string{
		"https://img.example/front.jpg",
		"https://img.example/spine.jpg",
		"https://img.example/back.jpg",
	}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("All() = %v, want %v", urls, want)
	}
}

func TestAllStopsAtFirstFailure(t *testing.T) {
	names := []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg"}

	for k := 1; k <= len(names); k++ {
		u := &scriptedUploader{failAt: k}

		urls, err := All(context.Background(), u, files(names...), logger.Nop())

		if urls != nil {
			t.Errorf("k=%d: All() returned urls %v on failure", k, urls)
		}
		var uerr *Error
		if !errors.As(err, &uerr) {
			t.Fatalf("k=%d: All() error = %v, want *Error", k, err)
		}
		if uerr.File != names[k-1] {
			t.Errorf("k=%d: error names %q, want %q", k, uerr.File, names[k-1])
		}
		if !strings.Contains(err.Error(), names[k-1]) {
			t.Errorf("k=%d: message %q does not name the file", k, err.Error())
		}
		if !reflect.DeepEqual(u.attempts, names[:k]) {
			t.Errorf("k=%d: attempted %v, want %v", k, u.attempts, names[:k])
		}
	}
}

func TestAllWithNoFiles(t *testing.T) {
	u := &scriptedUploader{}

	urls, err := All(context.Background(), u, nil, logger.Nop())
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(urls) != 0 || len(u.attempts) != 0 {
		t.Errorf("All() with no files made %d attempts", len(u.attempts))
	}
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantExt string
	}{
		{name: "jpeg", input: "Front.JPG", wantExt: ".jpg"},
		{name: "windows path", input: `C:\photos\dos.png`, wantExt: ".png"},
		{name: "no extension", input: "scan", wantExt: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := ObjectKey(tt.input)
			if !strings.HasPrefix(key, "photos/") {
				t.Errorf("ObjectKey() = %q, want photos/ prefix", key)
			}
			if !strings.HasSuffix(key, tt.wantExt) {
				t.Errorf("ObjectKey() = %q, want suffix %q", key, tt.wantExt)
			}
		})
	}

	if ObjectKey("a.jpg") == ObjectKey("a.jpg") {
		t.Error("ObjectKey() should be unique per call")
	}
}
