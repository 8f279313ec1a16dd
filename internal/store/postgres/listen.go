package postgres

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/bindery/internal/logger"
	"github.com/MrSnakeDoc/bindery/internal/store"
	"github.com/jackc/pgx/v5"
)

// Subscribe takes one connection out of the pool for LISTEN. It is closed,
// not returned to the pool, when the subscription ends.
func (s *Store) Subscribe(ctx context.Context) (store.Subscription, error) {
	pooled, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	conn := pooled.Hijack()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		_ = conn.Close(context.Background())
		return nil, fmt.Errorf("failed to listen on %s: %w", notifyChannel, err)
	}

	initial, err := s.List(ctx)
	if err != nil {
		_ = conn.Close(context.Background())
		return nil, err
	}

	// The listener goroutine owns conn; Close only cancels it.
	feed, fctx := store.NewFeed(ctx, nil)
	feed.Publish(initial)

	go s.listen(fctx, feed, conn)

	return feed, nil
}

func (s *Store) listen(ctx context.Context, feed *store.Feed, conn *pgx.Conn) {
	defer func() {
		_ = conn.Close(context.Background())
		_ = feed.Close()
	}()

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Error("entry listener stopped", logger.Error(err))
				feed.Fail(err)
			}
			return
		}
		s.log.Debug("entry notification received", logger.String("id", n.Payload))

		records, err := s.List(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Error("failed to refresh entry snapshot", logger.Error(err))
				feed.Fail(err)
			}
			return
		}
		if !feed.Publish(records) {
			return
		}
	}
}
