// Package catalog runs the portfolio use cases on top of a store and an
// image uploader: the create and edit form flows, deletion and the live
// listing.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/bindery/internal/domain"
	"github.com/MrSnakeDoc/bindery/internal/logger"
	"github.com/MrSnakeDoc/bindery/internal/store"
	"github.com/MrSnakeDoc/bindery/internal/upload"
	"github.com/MrSnakeDoc/bindery/internal/validation"
)

type Service struct {
	store    store.Store
	uploader upload.Uploader
	validate *validation.Validator
	log      logger.Logger
}

func NewService(st store.Store, up upload.Uploader, v *validation.Validator, log logger.Logger) *Service {
	return &Service{
		store:    st,
		uploader: up,
		validate: v,
		log:      log,
	}
}

// Create validates the form, uploads files in order and writes one record.
// Nothing is uploaded when validation fails and nothing is written when an
// upload fails.
func (s *Service) Create(ctx context.Context, in Input, files []upload.File) (string, error) {
	in = in.Normalize()

	price, err := in.check(s.validate, len(files), true)
	if err != nil {
		return "", err
	}

	urls, err := upload.All(ctx, s.uploader, files, s.log)
	if err != nil {
		return "", err
	}

	entryID, err := s.store.Create(ctx, in.fields(price, urls))
	if err != nil {
		s.log.Error("entry create failed after upload",
			logger.Strings("orphaned", urls),
			logger.Error(err))
		return "", fmt.Errorf("create entry: %w", err)
	}

	s.log.Info("entry created",
		logger.String("id", entryID),
		logger.String("title", in.Title),
		logger.Int("photos", len(urls)))
	return entryID, nil
}

// Update overwrites every field of an entry. New files replace all photos;
// without files the stored sequence is kept as is.
func (s *Service) Update(ctx context.Context, entryID string, in Input, files []upload.File) error {
	in = in.Normalize()

	price, err := in.check(s.validate, len(files), false)
	if err != nil {
		return err
	}

	// Re-read so a deleted entry fails before anything is uploaded.
	rec, err := s.store.Get(ctx, entryID)
	if err != nil {
		return err
	}

	photos := rec.Entry().Photos
	if len(files) > 0 {
		photos, err = upload.All(ctx, s.uploader, files, s.log)
		if err != nil {
			return err
		}
	}
	if err := s.store.Update(ctx, entryID, in.fields(price, photos)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("update entry: %w", err)
	}

	s.log.Info("entry updated",
		logger.String("id", entryID),
		logger.Bool("photos_replaced", len(files) > 0))
	return nil
}

// Delete removes an entry. Its photos stay on the image host.
func (s *Service) Delete(ctx context.Context, entryID string) error {
	if err := s.store.Delete(ctx, entryID); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	s.log.Info("entry deleted", logger.String("id", entryID))
	return nil
}

// Get returns one normalized entry.
func (s *Service) Get(ctx context.Context, entryID string) (domain.Entry, error) {
	rec, err := s.store.Get(ctx, entryID)
	if err != nil {
		return domain.Entry{}, err
	}
	return rec.Entry(), nil
}

// List returns every normalized entry, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Entry, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries(recs), nil
}

// OpenList subscribes to the collection. The caller owns the view and
// must Close it.
func (s *Service) OpenList(ctx context.Context) (*ListView, error) {
	sub, err := s.store.Subscribe(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscribe to entries: %w", err)
	}
	return newListView(sub), nil
}

func entries(recs []*domain.Record) []domain.Entry {
	out := make([]domain.Entry, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Entry())
	}
	return out
}
