// Package memory is an in-process entry store. It backs local development
// and the service and handler tests; nothing survives a restart.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/MrSnakeDoc/bindery/internal/domain"
	"github.com/MrSnakeDoc/bindery/internal/id"
	"github.com/MrSnakeDoc/bindery/internal/store"
)

type item struct {
	rec *domain.Record
	seq uint64 // insertion order, breaks CreatedAt ties
}

// Store keeps records in a map guarded by a RWMutex and fans every change
// out to the open subscriptions.
type Store struct {
	mu      sync.RWMutex
	records map[string]item
	seq     uint64
	feeds   map[*store.Feed]struct{}
	now     func() time.Time
	newID   func() (string, error)
}

type Option func(*Store)

// WithClock replaces time.Now for CreatedAt/UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs replaces the id generator.
func WithIDs(gen func() (string, error)) Option {
	return func(s *Store) { s.newID = gen }
}

func New(opts ...Option) *Store {
	s := &Store{
		records: make(map[string]item),
		feeds:   make(map[*store.Feed]struct{}),
		now:     time.Now,
		newID:   id.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ store.Store = (*Store)(nil)

func (s *Store) Create(_ context.Context, f domain.Fields) (string, error) {
	entryID, err := s.newID()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.seq++
	s.records[entryID] = item{
		rec: &domain.Record{
			ID:          entryID,
			Title:       f.Title,
			Author:      f.Author,
			Price:       f.Price,
			Description: f.Description,
			Photos:      domain.PhotoSequence(slices.Clone(f.Photos)),
			CreatedAt:   s.now().UTC(),
		},
		seq: s.seq,
	}
	s.broadcastLocked()
	s.mu.Unlock()

	return entryID, nil
}

// Put stores a record as-is, legacy photo layout included. Tests use it to
// plant documents written by older versions.
func (s *Store) Put(rec *domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.seq++
	s.records[rec.ID] = item{rec: &cp, seq: s.seq}
	s.broadcastLocked()
}

func (s *Store) Get(_ context.Context, entryID string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.records[entryID]
	if !ok {
		return nil, domain.NotFoundError(entryID)
	}
	cp := *it.rec
	return &cp, nil
}

func (s *Store) Update(_ context.Context, entryID string, f domain.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.records[entryID]
	if !ok {
		return domain.NotFoundError(entryID)
	}

	rec := *it.rec
	rec.Title = f.Title
	rec.Author = f.Author
	rec.Price = f.Price
	rec.Description = f.Description
	rec.Photos = domain.PhotoSequence(slices.Clone(f.Photos))
	rec.UpdatedAt = s.now().UTC()
	it.rec = &rec
	s.records[entryID] = it

	s.broadcastLocked()
	return nil
}

func (s *Store) Delete(_ context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[entryID]; !ok {
		return nil
	}
	delete(s.records, entryID)
	s.broadcastLocked()
	return nil
}

func (s *Store) List(_ context.Context) ([]*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(), nil
}

func (s *Store) Count(context.Context) (int64, error) {
	return int64(s.Len()), nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) Subscribe(ctx context.Context) (store.Subscription, error) {
	var feed *store.Feed
	feed, fctx := store.NewFeed(ctx, func() error {
		s.mu.Lock()
		delete(s.feeds, feed)
		s.mu.Unlock()
		return nil
	})

	s.mu.Lock()
	s.feeds[feed] = struct{}{}
	feed.Publish(s.snapshotLocked())
	s.mu.Unlock()

	go func() {
		<-fctx.Done()
		_ = feed.Close()
	}()

	return feed, nil
}

// Subscribers returns the number of open subscriptions.
func (s *Store) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.feeds)
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error {
	s.mu.Lock()
	feeds := make([]*store.Feed, 0, len(s.feeds))
	for f := range s.feeds {
		feeds = append(feeds, f)
	}
	s.mu.Unlock()

	for _, f := range feeds {
		_ = f.Close()
	}
	return nil
}

// snapshotLocked returns copies ordered newest first. Caller holds mu.
func (s *Store) snapshotLocked() []*domain.Record {
	items := make([]item, 0, len(s.records))
	for _, it := range s.records {
		items = append(items, it)
	}
	slices.SortFunc(items, func(a, b item) int {
		if c := b.rec.CreatedAt.Compare(a.rec.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})

	out := make([]*domain.Record, 0, len(items))
	for _, it := range items {
		cp := *it.rec
		out = append(out, &cp)
	}
	return out
}

// broadcastLocked pushes a fresh snapshot to every feed. Caller holds mu.
func (s *Store) broadcastLocked() {
	if len(s.feeds) == 0 {
		return
	}
	for f := range s.feeds {
		f.Publish(s.snapshotLocked())
	}
}
