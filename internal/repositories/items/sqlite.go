// Package items persists decrypted vault items and per-share sync cursors in
// the local SQLite database. Title and note columns hold keystore-sealed
// blobs; plaintext never reaches disk.
package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/dbx"
	"github.com/dmitrijs2005/passvault/internal/models"
)

// SQLiteRepository implements Repository on a *sql.DB. Single-statement
// operations run directly; ReplaceAllItems wraps its work in a transaction.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository returns a repository bound to db.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const upsertQuery = `
	INSERT INTO items (share_id, item_id, revision, state, item_type, title, note,
		create_time, modify_time, last_use_time, revision_time)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(share_id, item_id) DO UPDATE SET
		revision = excluded.revision,
		state = excluded.state,
		item_type = excluded.item_type,
		title = excluded.title,
		note = excluded.note,
		create_time = excluded.create_time,
		modify_time = excluded.modify_time,
		last_use_time = excluded.last_use_time,
		revision_time = excluded.revision_time
	WHERE excluded.revision >= items.revision
`

func upsertItem(ctx context.Context, db dbx.DBTX, item *models.Item) error {
	_, err := db.ExecContext(ctx, upsertQuery,
		item.ShareID, item.ID, item.Revision, item.State, string(item.ItemType),
		item.TitleBlob, item.NoteBlob,
		item.CreateTime, item.ModifyTime, item.LastUseTime, item.RevisionTime)
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpsertItem(ctx context.Context, item *models.Item) error {
	return upsertItem(ctx, r.db, item)
}

func (r *SQLiteRepository) DeleteItem(ctx context.Context, shareID, itemID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE share_id = ? AND item_id = ?`, shareID, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ReplaceAllItems(ctx context.Context, shareID string, items []*models.Item) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE share_id = ?`, shareID); err != nil {
			return fmt.Errorf("failed to clear share items: %w", err)
		}
		for _, item := range items {
			if err := upsertItem(ctx, tx, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) GetStoredCursor(ctx context.Context, shareID string) (string, error) {
	var eventID string
	err := r.db.QueryRowContext(ctx,
		`SELECT event_id FROM share_cursors WHERE share_id = ?`, shareID).Scan(&eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get cursor: %w", err)
	}
	return eventID, nil
}

func (r *SQLiteRepository) SetStoredCursor(ctx context.Context, shareID, eventID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO share_cursors (share_id, event_id) VALUES (?, ?)
		ON CONFLICT(share_id) DO UPDATE SET event_id = excluded.event_id
	`, shareID, eventID)
	if err != nil {
		return fmt.Errorf("failed to set cursor: %w", err)
	}
	return nil
}

const selectColumns = `share_id, item_id, revision, state, item_type, title, note,
	create_time, modify_time, last_use_time, revision_time`

func scanItem(scan func(dest ...any) error) (*models.Item, error) {
	item := &models.Item{}
	var itemType string
	err := scan(&item.ShareID, &item.ID, &item.Revision, &item.State, &itemType,
		&item.TitleBlob, &item.NoteBlob,
		&item.CreateTime, &item.ModifyTime, &item.LastUseTime, &item.RevisionTime)
	if err != nil {
		return nil, err
	}
	item.ItemType = models.ItemType(itemType)
	return item, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, shareID, itemID string) (*models.Item, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM items WHERE share_id = ? AND item_id = ?`, shareID, itemID)
	item, err := scanItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context, shareID string) ([]*models.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM items WHERE share_id = ? ORDER BY item_id`, shareID)
	if err != nil {
		return nil, fmt.Errorf("failed to select items: %w", err)
	}
	defer rows.Close()

	var result []*models.Item
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
