package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/bindery/internal/logger"
	"github.com/MrSnakeDoc/bindery/internal/store"
	"github.com/redis/go-redis/v9"
)

const (
	eventCreated = "created"
	eventUpdated = "updated"
	eventDeleted = "deleted"
)

// event is the pub/sub payload. Subscribers only use it as a trigger and
// re-read the whole list.
type event struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// announce publishes a change. The write already succeeded, so a publish
// failure is logged and not returned.
func (s *Store) announce(ctx context.Context, kind, entryID string) {
	payload, _ := json.Marshal(event{Kind: kind, ID: entryID})
	if err := s.client.Publish(ctx, ChannelEntryEvents, payload).Err(); err != nil {
		s.log.Warn("failed to publish entry event",
			logger.String("kind", kind),
			logger.String("id", entryID),
			logger.Error(err))
	}
}

// Subscribe listens on the events channel and re-reads the ordered list
// after each message. The channel is joined before the first read so no
// change can fall between the two.
func (s *Store) Subscribe(ctx context.Context) (store.Subscription, error) {
	pubsub := s.client.Subscribe(ctx, ChannelEntryEvents)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to entry events: %w", err)
	}

	initial, err := s.List(ctx)
	if err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	feed, fctx := store.NewFeed(ctx, pubsub.Close)
	feed.Publish(initial)

	go s.pump(fctx, feed, pubsub.Channel())

	return feed, nil
}

func (s *Store) pump(ctx context.Context, feed *store.Feed, msgs <-chan *redis.Message) {
	defer func() { _ = feed.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				feed.Fail(errors.New("entry events channel closed"))
				return
			}
			s.log.Debug("entry event received", logger.String("payload", msg.Payload))

			records, err := s.List(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.log.Error("failed to refresh entry snapshot", logger.Error(err))
				feed.Fail(err)
				return
			}
			if !feed.Publish(records) {
				return
			}
		}
	}
}
