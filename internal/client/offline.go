package client

import (
	"context"

	"github.com/dmitrijs2005/passvault/internal/models"
)

// Offline is a Client for sessions without a configured transport. Every
// remote call fails with ErrUnavailable, which keeps the application in
// offline mode: the local vault stays browsable and sync is reported as
// "could not refresh" instead of crashing.
type Offline struct{}

var _ Client = Offline{}

func (Offline) FetchEvents(ctx context.Context, userID, addressID, shareID, sinceEventID string) (*models.PendingEventList, error) {
	return nil, ErrUnavailable
}

func (Offline) FetchShareKeys(ctx context.Context, shareID, rotationID string) (*KeyBundle, error) {
	return nil, ErrUnavailable
}

func (Offline) FetchAllItems(ctx context.Context, userID, shareID string) ([]models.ItemRevision, error) {
	return nil, ErrUnavailable
}

func (Offline) SubmitItemUpdate(ctx context.Context, shareID, itemID string, body *models.UpdateItemRequestBody) (*models.ItemRevision, error) {
	return nil, ErrUnavailable
}

func (Offline) GetPrimaryAddress(ctx context.Context, userID string) (*models.UserAddress, error) {
	return nil, ErrUnavailable
}

func (Offline) Ping(ctx context.Context) error { return ErrUnavailable }

func (Offline) Close() error { return nil }
