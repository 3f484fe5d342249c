// Package codec converts between encrypted, signed item revisions and
// decrypted domain items. Opening a revision unwraps the session key with
// the vault key of the matching rotation, decrypts the content buffer,
// checks both detached signatures over the plaintext and only then decodes
// the versioned content envelope. Any failure rejects the revision; a
// revision is never accepted with an unverified signature.
package codec

import (
	"crypto/ed25519"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/keystore"
	"github.com/dmitrijs2005/passvault/internal/models"
)

// Codec opens and creates item revisions. Stateless apart from the keystore
// used to seal titles and notes for local at-rest storage; safe for
// concurrent use.
type Codec struct {
	ks keystore.Keystore
}

// New returns a Codec sealing local blobs through ks.
func New(ks keystore.Keystore) *Codec {
	return &Codec{ks: ks}
}

func selectPair(rotationID string, pairs []*models.ShareKeyPair) (*models.ShareKeyPair, error) {
	for _, p := range pairs {
		if p.RotationID == rotationID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", common.ErrUnknownRotation, rotationID)
}

// Open decrypts and verifies one item revision and returns the domain item.
//
// verifierKeys are the candidate public keys for the user signature; the
// signature must verify against at least one of them. The item key signature
// must verify against the rotation's item verify key. Both checks are hard
// failures: on common.ErrSignatureVerification the item must not enter local
// state.
func (c *Codec) Open(rev models.ItemRevision, shareID string, verifierKeys []ed25519.PublicKey, pairs []*models.ShareKeyPair) (*models.Item, error) {
	pair, err := selectPair(rev.RotationID, pairs)
	if err != nil {
		return nil, err
	}

	sessionKey, err := cryptox.UnwrapSessionKey(rev.KeyPacket, pair.EncryptionPub, pair.EncryptionPriv)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", rev.ItemID, err)
	}
	defer common.WipeByteArray(sessionKey)

	plaintext, err := cryptox.DecryptPayload(rev.Content, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", rev.ItemID, err)
	}

	if !cryptox.Verify(plaintext, rev.ItemKeySignature, pair.VerifyKey) {
		return nil, fmt.Errorf("item %s: item key signature: %w", rev.ItemID, common.ErrSignatureVerification)
	}
	userVerified := false
	for _, key := range verifierKeys {
		if cryptox.Verify(plaintext, rev.UserSignature, key) {
			userVerified = true
			break
		}
	}
	if !userVerified {
		return nil, fmt.Errorf("item %s: user signature: %w", rev.ItemID, common.ErrSignatureVerification)
	}

	content, err := models.DecodeContent(rev.ContentFormatVersion, plaintext)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", rev.ItemID, err)
	}

	titleBlob, err := c.ks.Encrypt([]byte(content.Title))
	if err != nil {
		return nil, fmt.Errorf("item %s: sealing title: %w", rev.ItemID, err)
	}
	noteBlob, err := c.ks.Encrypt([]byte(content.Note))
	if err != nil {
		return nil, fmt.Errorf("item %s: sealing note: %w", rev.ItemID, err)
	}

	return &models.Item{
		ID:           rev.ItemID,
		ShareID:      shareID,
		Revision:     rev.Revision,
		State:        rev.State,
		ItemType:     content.Type,
		TitleBlob:    titleBlob,
		NoteBlob:     noteBlob,
		CreateTime:   rev.CreateTime,
		ModifyTime:   rev.ModifyTime,
		LastUseTime:  rev.LastUseTime,
		RevisionTime: rev.RevisionTime,
	}, nil
}

// CreateRequest builds the outgoing update body for contentBytes (an encoded
// content envelope): it recovers the session key from keyPacket, encrypts
// the content, and signs the plaintext with both the rotation's item key and
// the user's address key. lastRevision rides along for the server's
// optimistic-concurrency check.
func (c *Codec) CreateRequest(pair *models.ShareKeyPair, keyPacket []byte, addr *models.UserAddress, contentBytes []byte, lastRevision int64) (*models.UpdateItemRequestBody, error) {
	if addr == nil || addr.SigningKey == nil {
		return nil, fmt.Errorf("%w: address has no signing key", common.ErrKeyMalformed)
	}

	sessionKey, err := cryptox.UnwrapSessionKey(keyPacket, pair.EncryptionPub, pair.EncryptionPriv)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(sessionKey)

	ciphertext, err := cryptox.EncryptPayload(contentBytes, sessionKey)
	if err != nil {
		return nil, err
	}

	return &models.UpdateItemRequestBody{
		RotationID:           pair.RotationID,
		ContentFormatVersion: models.CurrentContentFormat,
		Content:              ciphertext,
		KeyPacket:            keyPacket,
		ItemKeySignature:     cryptox.Sign(contentBytes, pair.SigningKey),
		UserSignature:        cryptox.Sign(contentBytes, addr.SigningKey),
		SignatureEmail:       addr.Email,
		LastRevision:         lastRevision,
	}, nil
}
