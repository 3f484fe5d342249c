// Package services exposes the item use cases consumed by the CLI: reading
// the local store and the end-to-end encrypted write path.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/client"
	"github.com/dmitrijs2005/passvault/internal/codec"
	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/keys"
	"github.com/dmitrijs2005/passvault/internal/keystore"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/models"
	"github.com/dmitrijs2005/passvault/internal/repositories/items"
	"github.com/google/uuid"
)

// ItemView is a display-ready item: title and note are already unsealed.
type ItemView struct {
	ID       string
	Revision int64
	State    int
	Type     models.ItemType
	Title    string
	Note     string
}

type ItemService interface {
	// Add encrypts, signs and submits a new item under the share's primary
	// rotation, then stores the committed revision locally.
	Add(ctx context.Context, userID, shareID string, content models.Content) (*ItemView, error)

	// Update produces a new revision of an existing item.
	Update(ctx context.Context, userID, shareID, itemID string, content models.Content) (*ItemView, error)

	List(ctx context.Context, shareID string) ([]ItemView, error)
	Get(ctx context.Context, shareID, itemID string) (*ItemView, error)
}

type itemService struct {
	api      client.Client
	repo     items.Repository
	resolver *keys.Resolver
	codec    *codec.Codec
	ks       keystore.Keystore
	log      logging.Logger
}

func NewItemService(api client.Client, repo items.Repository, resolver *keys.Resolver, cdc *codec.Codec, ks keystore.Keystore, log logging.Logger) ItemService {
	return &itemService{api: api, repo: repo, resolver: resolver, codec: cdc, ks: ks, log: log}
}

func (s *itemService) Add(ctx context.Context, userID, shareID string, content models.Content) (*ItemView, error) {
	return s.submit(ctx, userID, shareID, uuid.NewString(), content, 0)
}

func (s *itemService) Update(ctx context.Context, userID, shareID, itemID string, content models.Content) (*ItemView, error) {
	current, err := s.repo.GetByID(ctx, shareID, itemID)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, userID, shareID, itemID, content, current.Revision)
}

// submit runs the full write path: encode, wrap a fresh session key under
// the primary rotation, sign, submit, then verify and store the revision the
// server committed. Opening the server's own response guards against a
// server that hands back something other than what was sent.
func (s *itemService) submit(ctx context.Context, userID, shareID, itemID string, content models.Content, lastRevision int64) (*ItemView, error) {
	pair, err := s.resolver.ResolvePrimary(ctx, shareID)
	if err != nil {
		return nil, err
	}

	addr, err := s.api.GetPrimaryAddress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolving primary address: %w", err)
	}

	contentBytes, err := models.EncodeContent(models.CurrentContentFormat, content)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(contentBytes)

	sessionKey := cryptox.GenerateSessionKey()
	defer common.WipeByteArray(sessionKey)

	keyPacket, err := cryptox.WrapSessionKey(sessionKey, pair.EncryptionPub)
	if err != nil {
		return nil, err
	}

	body, err := s.codec.CreateRequest(pair, keyPacket, addr, contentBytes, lastRevision)
	if err != nil {
		return nil, err
	}

	rev, err := s.api.SubmitItemUpdate(ctx, shareID, itemID, body)
	if err != nil {
		return nil, fmt.Errorf("submitting item %s: %w", itemID, err)
	}

	item, err := s.codec.Open(*rev, shareID, addr.VerifyKeys, []*models.ShareKeyPair{pair})
	if err != nil {
		return nil, fmt.Errorf("verifying committed revision: %w", err)
	}

	if err := s.repo.UpsertItem(ctx, item); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "item submitted", "share_id", shareID, "item_id", itemID, "revision", item.Revision)
	return s.view(item)
}

func (s *itemService) List(ctx context.Context, shareID string) ([]ItemView, error) {
	rows, err := s.repo.GetAll(ctx, shareID)
	if err != nil {
		return nil, err
	}

	result := make([]ItemView, 0, len(rows))
	for _, row := range rows {
		v, err := s.view(row)
		if err != nil {
			s.log.Warn(ctx, "item unreadable, excluded from listing",
				"share_id", shareID, "item_id", row.ID, "error", err)
			continue
		}
		result = append(result, *v)
	}
	return result, nil
}

func (s *itemService) Get(ctx context.Context, shareID, itemID string) (*ItemView, error) {
	item, err := s.repo.GetByID(ctx, shareID, itemID)
	if err != nil {
		return nil, err
	}
	return s.view(item)
}

func (s *itemService) view(item *models.Item) (*ItemView, error) {
	title, err := s.ks.Decrypt(item.TitleBlob)
	if err != nil {
		return nil, err
	}

	v := &ItemView{
		ID:       item.ID,
		Revision: item.Revision,
		State:    item.State,
		Type:     item.ItemType,
		Title:    string(title),
	}

	if len(item.NoteBlob) > 0 {
		note, err := s.ks.Decrypt(item.NoteBlob)
		if err != nil {
			return nil, err
		}
		v.Note = string(note)
	}
	return v, nil
}
