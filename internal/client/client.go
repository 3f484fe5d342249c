// Package client defines the contract with the remote vault API. The sync
// and crypto core consume only this interface; the concrete transport is
// wired by the host application.
package client

import (
	"context"

	"github.com/dmitrijs2005/passvault/internal/models"
)

// KeyBundle is the armored key material for one rotation of a share.
type KeyBundle struct {
	VaultKey models.VaultKey `json:"vault_key"`
	ItemKey  models.ItemKey  `json:"item_key"`
}

// Client is the remote API surface used by the sync engine and the item
// write path.
//
// All methods must honor context cancellation and timeouts.
type Client interface {
	// FetchEvents returns the next pending-event batch for a share.
	// sinceEventID is the stored cursor; empty means first sync.
	FetchEvents(ctx context.Context, userID, addressID, shareID, sinceEventID string) (*models.PendingEventList, error)

	// FetchShareKeys returns the key bundle for one rotation of a share.
	// An empty rotationID requests the share's primary rotation. A rotation
	// the server has no record of (e.g. share revoked) fails with
	// common.ErrKeyNotFound.
	FetchShareKeys(ctx context.Context, shareID, rotationID string) (*KeyBundle, error)

	// FetchAllItems returns the complete current item set for a share.
	// Used by the full-refresh path.
	FetchAllItems(ctx context.Context, userID, shareID string) ([]models.ItemRevision, error)

	// SubmitItemUpdate creates or updates an item and returns the revision
	// the server committed.
	SubmitItemUpdate(ctx context.Context, shareID, itemID string, body *models.UpdateItemRequestBody) (*models.ItemRevision, error)

	// GetPrimaryAddress resolves the user's primary address with its
	// signature verification keys.
	GetPrimaryAddress(ctx context.Context, userID string) (*models.UserAddress, error)

	// Ping checks server liveness.
	Ping(ctx context.Context) error

	// Close releases transport resources.
	Close() error
}
