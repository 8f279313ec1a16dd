package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/bindery/internal/domain"
	"github.com/MrSnakeDoc/bindery/internal/logger"
	"github.com/MrSnakeDoc/bindery/internal/store"
	"github.com/MrSnakeDoc/bindery/internal/store/memory"
	"github.com/MrSnakeDoc/bindery/internal/upload"
	"github.com/MrSnakeDoc/bindery/internal/validation"
)

// fakeUploader returns predictable URLs and can fail at a 1-indexed call.
type fakeUploader struct {
	mu       sync.Mutex
	failAt   int
	attempts []string
}

func (f *fakeUploader) Name() string { return "fake" }

func (f *fakeUploader) Upload(_ context.Context, file upload.File) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, file.Name)
	if len(f.attempts) == f.failAt {
		return "", errors.New("403 upload preset not found")
	}
	return "https://img.example/" + file.Name, nil
}

func (f *fakeUploader) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.attempts)
}

// countingStore counts writes on top of the memory store and can fail reads.
type countingStore struct {
	*memory.Store
	mu      sync.Mutex
	writes  int
	getErr  error
	saveErr error
}

func (c *countingStore) Create(ctx context.Context, f domain.Fields) (string, error) {
	c.mu.Lock()
	c.writes++
	err := c.saveErr
	c.mu.Unlock()
	if err != nil {
		return "", err
	}
	return c.Store.Create(ctx, f)
}

func (c *countingStore) Update(ctx context.Context, id string, f domain.Fields) error {
	c.mu.Lock()
	c.writes++
	err := c.saveErr
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.Store.Update(ctx, id, f)
}

func (c *countingStore) Get(ctx context.Context, id string) (*domain.Record, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.Store.Get(ctx, id)
}

func (c *countingStore) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

var _ store.Store = (*countingStore)(nil)

func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestService() (*Service, *countingStore, *fakeUploader) {
	st := &countingStore{Store: memory.New(memory.WithClock(tickingClock()))}
	up := &fakeUploader{}
	return NewService(st, up, validation.New(), logger.Nop()), st, up
}

func photoFiles(names ...string) []upload.File {
	out := make([]upload.File, 0, len(names))
	for _, n := range names {
		body := "jpeg:" + n
		out = append(out, upload.File{
			Name: n,
			Size: int64(len(body)),
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader(body)), nil
			},
		})
	}
	return out
}

func urlsFor(names ...string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, fmt.Sprintf("https://img.example/%s", n))
	}
	return out
}
