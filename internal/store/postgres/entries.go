package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/bindery/internal/domain"
	"github.com/MrSnakeDoc/bindery/internal/id"
	"github.com/MrSnakeDoc/bindery/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const selectColumns = `id, title, author, price::text, description, photos, created_at, updated_at`

func (s *Store) Create(ctx context.Context, f domain.Fields) (string, error) {
	entryID, err := id.New()
	if err != nil {
		return "", err
	}

	photos, err := photosParam(f.Photos)
	if err != nil {
		return "", err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO entries (id, title, author, price, description, photos, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6::jsonb, $7)`,
		entryID, f.Title, f.Author, priceParam(f.Price), f.Description, photos, s.now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to insert entry: %w", err)
	}
	return entryID, nil
}

func (s *Store) Get(ctx context.Context, entryID string) (*domain.Record, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM entries WHERE id = $1`, entryID)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundError(entryID)
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return rec, nil
}

func (s *Store) Update(ctx context.Context, entryID string, f domain.Fields) error {
	photos, err := photosParam(f.Photos)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE entries
		SET title = $2, author = $3, price = $4::numeric, description = $5, photos = $6::jsonb, updated_at = $7
		WHERE id = $1`,
		entryID, f.Title, f.Author, priceParam(f.Price), f.Description, photos, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundError(entryID)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, entryID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM entries WHERE id = $1`, entryID); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]*domain.Record, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+selectColumns+` FROM entries ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	records := []*domain.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			s.log.Warn("skipping unreadable entry row", logger.Error(err))
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return records, nil
}

// Count returns the number of rows in entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

func scanRecord(row pgx.Row) (*domain.Record, error) {
	var (
		rec       domain.Record
		price     *string
		photos    []byte
		updatedAt *time.Time
	)
	if err := row.Scan(&rec.ID, &rec.Title, &rec.Author, &price, &rec.Description, &photos, &rec.CreatedAt, &updatedAt); err != nil {
		return nil, err
	}

	p, err := parsePrice(price)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", rec.ID, err)
	}
	rec.Price = p

	if err := json.Unmarshal(photos, &rec.Photos); err != nil {
		return nil, fmt.Errorf("entry %s: %w", rec.ID, err)
	}
	if updatedAt != nil {
		rec.UpdatedAt = *updatedAt
	}
	return &rec, nil
}

// priceParam renders a price for a ::numeric placeholder; nil stays NULL.
func priceParam(p *decimal.Decimal) *string {
	if p == nil {
		return nil
	}
	s := p.String()
	return &s
}

func parsePrice(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", *s, err)
	}
	return &d, nil
}

func photosParam(urls []string) (string, error) {
	data, err := json.Marshal(domain.PhotoSequence(urls))
	if err != nil {
		return "", fmt.Errorf("failed to marshal photos: %w", err)
	}
	return string(data), nil
}
