package store

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/bindery/internal/domain"
)

// Feed is the Subscription shared by the store backends. A backend runs one
// goroutine per feed that calls Publish with fresh snapshots; readers only
// ever see the latest one, stale snapshots are dropped.
type Feed struct {
	ch      chan []*domain.Record
	done    chan struct{}
	cancel  context.CancelFunc
	release func() error

	closeOnce sync.Once
	finish    sync.Once
	mu        sync.Mutex
	err       error
	closeErr  error
}

// NewFeed returns a feed bound to ctx. release is called once, on the first
// Close, to free backend resources (pub/sub connection, listener...).
func NewFeed(ctx context.Context, release func() error) (*Feed, context.Context) {
	fctx, cancel := context.WithCancel(ctx)
	f := &Feed{
		ch:      make(chan []*domain.Record, 1),
		done:    make(chan struct{}),
		cancel:  cancel,
		release: release,
	}
	return f, fctx
}

func (f *Feed) Snapshots() <-chan []*domain.Record { return f.ch }

func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Publish hands a snapshot to the reader, replacing any snapshot it has not
// picked up yet. It returns false once the feed is closed.
func (f *Feed) Publish(records []*domain.Record) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	select {
	case <-f.done:
		return false
	default:
	}

	select {
	case <-f.ch:
	default:
	}
	f.ch <- records
	return true
}

// Done is closed when the feed stops.
func (f *Feed) Done() <-chan struct{} { return f.done }

// Fail stops the feed because the backend broke.
func (f *Feed) Fail(err error) {
	f.stop(err)
}

func (f *Feed) Close() error {
	f.closeOnce.Do(func() {
		f.stop(nil)
		if f.release != nil {
			f.closeErr = f.release()
		}
	})
	return f.closeErr
}

func (f *Feed) stop(err error) {
	f.finish.Do(func() {
		f.cancel()
		f.mu.Lock()
		f.err = err
		close(f.done)
		close(f.ch)
		f.mu.Unlock()
	})
}
