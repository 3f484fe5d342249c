package models

import (
	"crypto/ed25519"

	"github.com/dmitrijs2005/passvault/internal/common"
)

// VaultKey is one generation of a vault's asymmetric key material as received
// from the server. The private key travels armored (passphrase-sealed); the
// passphrase itself is sealed by the local keystore. VaultKeys are immutable
// after creation and retained indefinitely so historical revisions stay
// decryptable.
type VaultKey struct {
	RotationID          string `json:"rotation_id"`
	RotationNumber      int64  `json:"rotation_number"`
	ArmoredKey          string `json:"armored_key"`
	EncryptedPassphrase []byte `json:"encrypted_passphrase"`
	IsPrimary           bool   `json:"is_primary"`
}

// ItemKey is the per-item-content signing key, always tied to exactly one
// VaultKey through a shared rotation id.
type ItemKey struct {
	RotationID          string `json:"rotation_id"`
	ArmoredKey          string `json:"armored_key"`
	EncryptedPassphrase []byte `json:"encrypted_passphrase"`
}

// ShareKeyPair is the decrypted VaultKey/ItemKey pair for one rotation.
// Instances live only inside a session's KeyRing and must be wiped when the
// session ends.
type ShareKeyPair struct {
	RotationID     string
	RotationNumber int64
	IsPrimary      bool

	// X25519 pair used to wrap/unwrap session keys.
	EncryptionPub  []byte
	EncryptionPriv []byte

	// ed25519 pair used for item content signatures.
	SigningKey ed25519.PrivateKey
	VerifyKey  ed25519.PublicKey
}

// Wipe zeroizes all private key material in the pair.
func (p *ShareKeyPair) Wipe() {
	if p == nil {
		return
	}
	common.WipeByteArray(p.EncryptionPriv)
	common.WipeByteArray(p.SigningKey)
	p.EncryptionPriv = nil
	p.SigningKey = nil
}

// UserAddress identifies a user address and its signature keys. For the
// session owner's own address SigningKey is populated; addresses fetched for
// verification carry only VerifyKeys.
type UserAddress struct {
	ID    string
	Email string

	SigningKey ed25519.PrivateKey
	VerifyKeys []ed25519.PublicKey
}
