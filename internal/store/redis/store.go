package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/MrSnakeDoc/bindery/internal/domain"
	"github.com/MrSnakeDoc/bindery/internal/id"
	"github.com/MrSnakeDoc/bindery/internal/logger"
	"github.com/MrSnakeDoc/bindery/internal/store"
	"github.com/redis/go-redis/v9"
)

// Store keeps entries as JSON documents, ordered by a sorted set and
// announced on a pub/sub channel.
type Store struct {
	client *redis.Client
	log    logger.Logger
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

// NewStore creates a new Redis entry store
func NewStore(client *redis.Client, log logger.Logger) *Store {
	return &Store{
		client: client,
		log:    log,
		now:    time.Now,
	}
}

func (s *Store) Create(ctx context.Context, f domain.Fields) (string, error) {
	entryID, err := id.New()
	if err != nil {
		return "", err
	}

	rec := newRecord(entryID, f, s.now().UTC())
	data, err := encodeRecord(rec)
	if err != nil {
		return "", err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, EntryKey(entryID), data, 0)
		pipe.ZAdd(ctx, KeyEntriesByCreated, redis.Z{
			Score:  float64(rec.CreatedAt.UnixMilli()),
			Member: entryID,
		})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to save entry: %w", err)
	}

	s.announce(ctx, eventCreated, entryID)
	return entryID, nil
}

func (s *Store) Get(ctx context.Context, entryID string) (*domain.Record, error) {
	data, err := s.client.Get(ctx, EntryKey(entryID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NotFoundError(entryID)
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return decodeRecord(data)
}

// Update is a read-modify-write without locking; the last writer wins.
func (s *Store) Update(ctx context.Context, entryID string, f domain.Fields) error {
	rec, err := s.Get(ctx, entryID)
	if err != nil {
		return err
	}

	applyFields(rec, f)
	rec.UpdatedAt = s.now().UTC()

	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	// XX: a concurrent delete must not resurrect the document.
	ok, err := s.client.SetXX(ctx, EntryKey(entryID), data, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	if !ok {
		return domain.NotFoundError(entryID)
	}

	s.announce(ctx, eventUpdated, entryID)
	return nil
}

func (s *Store) Delete(ctx context.Context, entryID string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, EntryKey(entryID))
		pipe.ZRem(ctx, KeyEntriesByCreated, entryID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	if del.Val() > 0 {
		s.announce(ctx, eventDeleted, entryID)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*domain.Record, error) {
	ids, err := s.client.ZRevRange(ctx, KeyEntriesByCreated, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get entry IDs: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Record{}, nil
	}

	keys := make([]string, len(ids))
	for i, entryID := range ids {
		keys[i] = EntryKey(entryID)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}

	records := make([]*domain.Record, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index member without a document: deleted between the two reads.
			continue
		}
		rec, err := decodeRecord([]byte(raw))
		if err != nil {
			s.log.Warn("skipping unreadable entry document",
				logger.String("id", ids[i]),
				logger.Error(err))
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// Count returns the number of indexed entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.client.ZCard(ctx, KeyEntriesByCreated).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func newRecord(entryID string, f domain.Fields, createdAt time.Time) *domain.Record {
	rec := &domain.Record{ID: entryID, CreatedAt: createdAt}
	applyFields(rec, f)
	return rec
}

func applyFields(rec *domain.Record, f domain.Fields) {
	rec.Title = f.Title
	rec.Author = f.Author
	rec.Price = f.Price
	rec.Description = f.Description
	rec.Photos = domain.PhotoSequence(slices.Clone(f.Photos))
}

func encodeRecord(rec *domain.Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entry: %w", err)
	}
	return data, nil
}

func decodeRecord(data []byte) (*domain.Record, error) {
	var rec domain.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return &rec, nil
}
