// Package keys resolves vault/item key pairs by rotation id. Resolution is
// KeyRing-first; on a miss the armored bundle is fetched from the server,
// the key passphrases are opened through the keystore, and the decrypted
// pair is cached for the rest of the session.
package keys

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/client"
	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/keyring"
	"github.com/dmitrijs2005/passvault/internal/keystore"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/models"
	"golang.org/x/sync/singleflight"
)

// primaryRotation is the singleflight key suffix for primary-rotation
// lookups, which have no rotation id until the server answers.
const primaryRotation = "primary"

// Resolver turns (shareID, rotationID) into a decrypted ShareKeyPair.
// Concurrent resolutions of the same key are coalesced: at most one fetch is
// in flight per rotation, and other callers wait for its result.
type Resolver struct {
	ring  *keyring.KeyRing
	api   client.Client
	ks    keystore.Keystore
	log   logging.Logger
	group singleflight.Group
}

// NewResolver wires a resolver to the session key ring, the remote API and
// the local keystore.
func NewResolver(ring *keyring.KeyRing, api client.Client, ks keystore.Keystore, log logging.Logger) *Resolver {
	return &Resolver{ring: ring, api: api, ks: ks, log: log}
}

// Resolve returns the key pair for a rotation, fetching and decrypting it on
// a cache miss. A rotation the server has no record of fails with
// common.ErrKeyNotFound; this propagates to the caller and is never treated
// as "skip the item".
func (r *Resolver) Resolve(ctx context.Context, shareID, rotationID string) (*models.ShareKeyPair, error) {
	if pair, ok := r.ring.Get(rotationID); ok {
		return pair, nil
	}
	return r.resolveShared(ctx, shareID, rotationID)
}

// ResolvePrimary returns the share's current write rotation.
func (r *Resolver) ResolvePrimary(ctx context.Context, shareID string) (*models.ShareKeyPair, error) {
	return r.resolveShared(ctx, shareID, primaryRotation)
}

func (r *Resolver) resolveShared(ctx context.Context, shareID, rotationID string) (*models.ShareKeyPair, error) {
	v, err, _ := r.group.Do(shareID+"/"+rotationID, func() (any, error) {
		fetchRotation := rotationID
		if rotationID == primaryRotation {
			fetchRotation = ""
		} else if pair, ok := r.ring.Get(rotationID); ok {
			// another caller populated the ring while we waited for the lock
			return pair, nil
		}
		return r.fetch(ctx, shareID, fetchRotation)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.ShareKeyPair), nil
}

func (r *Resolver) fetch(ctx context.Context, shareID, rotationID string) (*models.ShareKeyPair, error) {
	bundle, err := r.api.FetchShareKeys(ctx, shareID, rotationID)
	if err != nil {
		return nil, fmt.Errorf("fetching keys for share %s: %w", shareID, err)
	}

	if bundle.ItemKey.RotationID != bundle.VaultKey.RotationID {
		return nil, fmt.Errorf("%w: item key rotation %s does not match vault key rotation %s",
			common.ErrKeyMalformed, bundle.ItemKey.RotationID, bundle.VaultKey.RotationID)
	}
	if rotationID != "" && bundle.VaultKey.RotationID != rotationID {
		return nil, fmt.Errorf("%w: server returned rotation %s, requested %s",
			common.ErrKeyMalformed, bundle.VaultKey.RotationID, rotationID)
	}

	pair, err := r.decryptBundle(bundle)
	if err != nil {
		return nil, err
	}

	if err := r.ring.Store(pair.RotationID, pair); err != nil {
		if errors.Is(err, common.ErrKeyAlreadyStored) {
			// lost a race against a primary-rotation lookup for the same key;
			// use the cached pair and drop ours
			if cached, ok := r.ring.Get(pair.RotationID); ok {
				pair.Wipe()
				return cached, nil
			}
		}
		pair.Wipe()
		return nil, err
	}

	r.log.Debug(ctx, "resolved share key", "share_id", shareID, "rotation_id", pair.RotationID)
	return pair, nil
}

func (r *Resolver) decryptBundle(bundle *client.KeyBundle) (*models.ShareKeyPair, error) {
	vaultPass, err := r.ks.Decrypt(bundle.VaultKey.EncryptedPassphrase)
	if err != nil {
		return nil, fmt.Errorf("opening vault key passphrase: %w", err)
	}
	defer common.WipeByteArray(vaultPass)

	encPriv, err := cryptox.UnarmorPrivateKey(bundle.VaultKey.ArmoredKey, vaultPass)
	if err != nil {
		return nil, fmt.Errorf("unarmoring vault key: %w", err)
	}
	encPub, err := cryptox.PublicFromPrivate(encPriv)
	if err != nil {
		common.WipeByteArray(encPriv)
		return nil, err
	}

	itemPass, err := r.ks.Decrypt(bundle.ItemKey.EncryptedPassphrase)
	if err != nil {
		common.WipeByteArray(encPriv)
		return nil, fmt.Errorf("opening item key passphrase: %w", err)
	}
	defer common.WipeByteArray(itemPass)

	seed, err := cryptox.UnarmorPrivateKey(bundle.ItemKey.ArmoredKey, itemPass)
	if err != nil {
		common.WipeByteArray(encPriv)
		return nil, fmt.Errorf("unarmoring item key: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		common.WipeByteArray(encPriv)
		common.WipeByteArray(seed)
		return nil, fmt.Errorf("%w: item key seed must be %d bytes", common.ErrKeyMalformed, ed25519.SeedSize)
	}
	signingKey := ed25519.NewKeyFromSeed(seed)
	common.WipeByteArray(seed)

	return &models.ShareKeyPair{
		RotationID:     bundle.VaultKey.RotationID,
		RotationNumber: bundle.VaultKey.RotationNumber,
		IsPrimary:      bundle.VaultKey.IsPrimary,
		EncryptionPub:  encPub,
		EncryptionPriv: encPriv,
		SigningKey:     signingKey,
		VerifyKey:      signingKey.Public().(ed25519.PublicKey),
	}, nil
}
