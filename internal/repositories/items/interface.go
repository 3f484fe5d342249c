package items

import (
	"context"

	"github.com/dmitrijs2005/passvault/internal/models"
)

// Repository is the local persistence contract used by the sync engine.
// Implementations are typically backed by a local SQLite database.
type Repository interface {
	// UpsertItem inserts or updates an item by (shareID, itemID). An item
	// with a revision lower than the stored one is a no-op, never a
	// rollback.
	UpsertItem(ctx context.Context, item *models.Item) error

	// DeleteItem removes an item. Deleting an absent item is a no-op so
	// replayed batches stay idempotent.
	DeleteItem(ctx context.Context, shareID, itemID string) error

	// ReplaceAllItems atomically swaps the entire item set of a share.
	// Used by the full-refresh path.
	ReplaceAllItems(ctx context.Context, shareID string, items []*models.Item) error

	// GetStoredCursor returns the share's event cursor, or "" before the
	// first completed sync.
	GetStoredCursor(ctx context.Context, shareID string) (string, error)

	// SetStoredCursor persists the share's event cursor.
	SetStoredCursor(ctx context.Context, shareID, eventID string) error

	// GetByID returns one item or common.ErrNotFound.
	GetByID(ctx context.Context, shareID, itemID string) (*models.Item, error)

	// GetAll lists all items of a share.
	GetAll(ctx context.Context, shareID string) ([]*models.Item, error)
}
