package seed

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/bindery/internal/logger"
	"github.com/MrSnakeDoc/bindery/internal/store"
)

// Import loads path and creates its entries when the store is empty. It
// returns how many entries were created; a non-empty store is left alone.
// Entries are created last to first so the listing shows them in file
// order.
func Import(ctx context.Context, st store.Store, path string, log logger.Logger) (int, error) {
	existing, err := st.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: check store: %w", err)
	}
	if existing > 0 {
		log.Info("store not empty, skipping seed import",
			logger.String("file", path),
			logger.Int("entries", int(existing)))
		return 0, nil
	}

	cat, err := NewLoader(path).Load()
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	items, err := Map(cat)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}

	created := 0
	for i := len(items) - 1; i >= 0; i-- {
		entryID, err := st.Create(ctx, items[i])
		if err != nil {
			return created, fmt.Errorf("seed: create %q: %w", items[i].Title, err)
		}
		log.Debug("seed entry created",
			logger.String("id", entryID),
			logger.String("title", items[i].Title))
		created++
	}

	log.Info("seed import done",
		logger.String("file", path),
		logger.Int("created", created))
	return created, nil
}
