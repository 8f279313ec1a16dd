package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/MrSnakeDoc/bindery/internal/domain"
	"github.com/MrSnakeDoc/bindery/internal/store"
)

// ErrListClosed is returned by Next once the view is closed.
var ErrListClosed = errors.New("list view closed")

type ListState int

const (
	ListLoading ListState = iota
	ListEmpty
	ListReady
)

func (s ListState) String() string {
	switch s {
	case ListEmpty:
		return "empty"
	case ListReady:
		return "ready"
	default:
		return "loading"
	}
}

// Snapshot is one rendering of the listing.
type Snapshot struct {
	State   ListState
	Entries []domain.Entry
	byID    map[string]int
}

// Entry looks a card up by entry id.
func (s Snapshot) Entry(entryID string) (domain.Entry, bool) {
	i, ok := s.byID[entryID]
	if !ok {
		return domain.Entry{}, false
	}
	return s.Entries[i], true
}

// ListView owns exactly one subscription. Every delivered snapshot
// replaces the previous list entirely.
type ListView struct {
	sub store.Subscription

	mu      sync.Mutex
	current Snapshot
	once    sync.Once
	err     error
}

func newListView(sub store.Subscription) *ListView {
	return &ListView{sub: sub, current: Snapshot{State: ListLoading}}
}

// Current returns the last snapshot without waiting.
func (v *ListView) Current() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Next waits for the next delivery from the store and rebuilds the list.
func (v *ListView) Next(ctx context.Context) (Snapshot, error) {
	select {
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case recs, ok := <-v.sub.Snapshots():
		if !ok {
			if err := v.sub.Err(); err != nil {
				return Snapshot{}, err
			}
			return Snapshot{}, ErrListClosed
		}
		snap := buildSnapshot(recs)
		v.mu.Lock()
		v.current = snap
		v.mu.Unlock()
		return snap, nil
	}
}

// Close releases the subscription. It is safe to call more than once.
func (v *ListView) Close() error {
	v.once.Do(func() {
		v.err = v.sub.Close()
	})
	return v.err
}

func buildSnapshot(recs []*domain.Record) Snapshot {
	snap := Snapshot{
		Entries: entries(recs),
		byID:    make(map[string]int, len(recs)),
	}
	for i, e := range snap.Entries {
		snap.byID[e.ID] = i
	}
	if len(snap.Entries) == 0 {
		snap.State = ListEmpty
	} else {
		snap.State = ListReady
	}
	return snap
}
