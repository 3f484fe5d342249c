// Package syncer reconciles local item state with the server's per-share
// event log. The Engine performs one pass: fetch a batch, apply it either
// incrementally or as a full refresh, and advance the stored cursor.
// ApplyPendingEvents drives passes until the server reports no more pending
// events.
package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/client"
	"github.com/dmitrijs2005/passvault/internal/codec"
	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/keys"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/models"
	"github.com/dmitrijs2005/passvault/internal/repositories/items"
)

// Engine applies one event batch per call. It is not self-looping: the
// caller re-invokes SyncShare while the returned eventsPending is true.
type Engine struct {
	api      client.Client
	repo     items.Repository
	resolver *keys.Resolver
	codec    *codec.Codec
	log      logging.Logger
}

// NewEngine wires an engine to its collaborators.
func NewEngine(api client.Client, repo items.Repository, resolver *keys.Resolver, cdc *codec.Codec, log logging.Logger) *Engine {
	return &Engine{api: api, repo: repo, resolver: resolver, codec: cdc, log: log}
}

// SyncShare fetches and applies the next event batch for a share. It returns
// whether more events are pending on the server.
//
// The cursor is only persisted after the batch's storage writes complete, so
// a cancelled or failed pass re-fetches and re-applies the same batch on
// retry; upserts and deletes by item id make that replay idempotent.
func (e *Engine) SyncShare(ctx context.Context, userID string, addr *models.UserAddress, shareID string) (bool, error) {
	cursor, err := e.repo.GetStoredCursor(ctx, shareID)
	if err != nil {
		return false, err
	}

	batch, err := e.api.FetchEvents(ctx, userID, addr.ID, shareID, cursor)
	if err != nil {
		return false, fmt.Errorf("fetching events for share %s: %w", shareID, err)
	}

	if batch.FullRefresh {
		e.log.Info(ctx, "cursor too stale, running full refresh", "share_id", shareID)
		if err := e.fullRefresh(ctx, userID, addr, shareID); err != nil {
			return false, err
		}
	} else if err := e.applyIncremental(ctx, addr, shareID, batch); err != nil {
		return false, err
	}

	if batch.LatestEventID != "" {
		if err := e.repo.SetStoredCursor(ctx, shareID, batch.LatestEventID); err != nil {
			return false, fmt.Errorf("persisting cursor for share %s: %w", shareID, err)
		}
	}

	return batch.EventsPending, nil
}

// applyIncremental upserts every decryptable updated item and removes the
// deleted ones. Items that fail decryption, verification or decoding are
// excluded from the batch without failing it; a missing key rotation aborts
// the whole batch because that is a provisioning problem, not per-item
// noise.
func (e *Engine) applyIncremental(ctx context.Context, addr *models.UserAddress, shareID string, batch *models.PendingEventList) error {
	applied, skipped := 0, 0
	for _, rev := range batch.UpdatedItems {
		item, err := e.openRevision(ctx, addr, shareID, rev)
		if err != nil {
			if errors.Is(err, common.ErrKeyNotFound) {
				return fmt.Errorf("share %s: %w", shareID, err)
			}
			e.logSkip(ctx, shareID, rev.ItemID, err)
			skipped++
			continue
		}
		if err := e.repo.UpsertItem(ctx, item); err != nil {
			return err
		}
		applied++
	}

	for _, itemID := range batch.DeletedItemIDs {
		if err := e.repo.DeleteItem(ctx, shareID, itemID); err != nil {
			return err
		}
	}

	e.log.Info(ctx, "applied incremental batch",
		"share_id", shareID, "applied", applied, "skipped", skipped, "deleted", len(batch.DeletedItemIDs))
	return nil
}

// fullRefresh re-downloads the complete item set and replaces local state
// for the share wholesale. Unreadable items are excluded the same way the
// incremental path excludes them.
func (e *Engine) fullRefresh(ctx context.Context, userID string, addr *models.UserAddress, shareID string) error {
	revs, err := e.api.FetchAllItems(ctx, userID, shareID)
	if err != nil {
		return fmt.Errorf("fetching full item set for share %s: %w", shareID, err)
	}

	fresh := make([]*models.Item, 0, len(revs))
	for _, rev := range revs {
		item, err := e.openRevision(ctx, addr, shareID, rev)
		if err != nil {
			if errors.Is(err, common.ErrKeyNotFound) {
				return fmt.Errorf("share %s: %w", shareID, err)
			}
			e.logSkip(ctx, shareID, rev.ItemID, err)
			continue
		}
		fresh = append(fresh, item)
	}

	if err := e.repo.ReplaceAllItems(ctx, shareID, fresh); err != nil {
		return err
	}

	e.log.Info(ctx, "replaced share items", "share_id", shareID, "items", len(fresh), "skipped", len(revs)-len(fresh))
	return nil
}

func (e *Engine) openRevision(ctx context.Context, addr *models.UserAddress, shareID string, rev models.ItemRevision) (*models.Item, error) {
	pair, err := e.resolver.Resolve(ctx, shareID, rev.RotationID)
	if err != nil {
		return nil, err
	}
	return e.codec.Open(rev, shareID, addr.VerifyKeys, []*models.ShareKeyPair{pair})
}

// logSkip records an excluded item. Signature failures are logged at Error
// level so telemetry always sees them; everything else is a Warn.
func (e *Engine) logSkip(ctx context.Context, shareID, itemID string, err error) {
	if errors.Is(err, common.ErrSignatureVerification) {
		e.log.Error(ctx, "item rejected: signature verification failed",
			"share_id", shareID, "item_id", itemID, "error", err)
		return
	}
	e.log.Warn(ctx, "item skipped", "share_id", shareID, "item_id", itemID, "error", err)
}
