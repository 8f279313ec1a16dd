// Package upload sends photo files to an external image host and returns
// their public URLs.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MrSnakeDoc/bindery/internal/logger"
)

// File is one local photo selected by the user.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FromTemp adapts a photo spooled to a local file. The body is opened lazily
// so files after a failed upload are never read.
func FromTemp(name, contentType, path string, size int64) File {
	return File{
		Name:        name,
		ContentType: contentType,
		Size:        size,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// Uploader stores one file remotely and returns a URL that is reachable as
// soon as Upload returns.
type Uploader interface {
	Upload(ctx context.Context, f File) (string, error)
	Name() string
}

// Error reports which file failed to upload.
type Error struct {
	File string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("Échec de l’upload de %s: %v", e.File, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// All uploads files one after another, in order. The first failure stops the
// batch: later files are never attempted and earlier ones stay on the host.
func All(ctx context.Context, u Uploader, files []File, log logger.Logger) ([]string, error) {
	urls := make([]string, 0, len(files))
	for i, f := range files {
		url, err := u.Upload(ctx, f)
		if err != nil {
			if len(urls) > 0 {
				log.Warn("upload batch aborted, earlier photos left on image host",
					logger.String("file", f.Name),
					logger.Strings("orphaned", urls),
					logger.Error(err))
			}
			var uerr *Error
			if errors.As(err, &uerr) {
				return nil, uerr
			}
			return nil, &Error{File: f.Name, Err: err}
		}
		log.Debug("photo uploaded",
			logger.String("uploader", u.Name()),
			logger.String("file", f.Name),
			logger.Int("position", i+1),
			logger.Int("total", len(files)))
		urls = append(urls, url)
	}
	return urls, nil
}

