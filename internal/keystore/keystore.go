// Package keystore seals and opens local-at-rest blobs: key passphrases,
// item titles and notes. The sync core depends only on the Keystore
// interface; MasterKeyStore is the concrete implementation unlocked by the
// user's passphrase.
package keystore

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
)

// Keystore encrypts and decrypts opaque at-rest blobs.
type Keystore interface {
	Encrypt(plain []byte) ([]byte, error)
	Decrypt(blob []byte) ([]byte, error)
}

// MasterKeyStore is a Keystore backed by an argon2id-derived master key.
type MasterKeyStore struct {
	key []byte
}

// Unlock derives the master key from (passphrase, salt) and checks it
// against the stored verifier. A mismatch fails with common.ErrUnauthorized.
// The passphrase is not retained.
func Unlock(passphrase, salt, verifier []byte) (*MasterKeyStore, error) {
	key := cryptox.DeriveKey(passphrase, salt)
	candidate := cryptox.MakeVerifier(key)
	if subtle.ConstantTimeCompare(verifier, candidate) == 0 {
		common.WipeByteArray(key)
		return nil, common.ErrUnauthorized
	}
	return &MasterKeyStore{key: key}, nil
}

// NewWithKey wraps an already-derived master key. Used in tests.
func NewWithKey(key []byte) *MasterKeyStore {
	return &MasterKeyStore{key: key}
}

// Enroll derives a fresh master key from (passphrase, salt) and returns the
// unlocked store together with the verifier to persist for later Unlock
// calls.
func Enroll(passphrase, salt []byte) (*MasterKeyStore, []byte) {
	key := cryptox.DeriveKey(passphrase, salt)
	return &MasterKeyStore{key: key}, cryptox.MakeVerifier(key)
}

// Encrypt seals plain under the master key.
func (s *MasterKeyStore) Encrypt(plain []byte) ([]byte, error) {
	if s.key == nil {
		return nil, common.ErrClosed
	}
	return cryptox.EncryptPayload(plain, s.key)
}

// Decrypt opens a blob sealed by Encrypt. Tampered blobs fail with
// common.ErrIntegrity.
func (s *MasterKeyStore) Decrypt(blob []byte) ([]byte, error) {
	if s.key == nil {
		return nil, common.ErrClosed
	}
	return cryptox.DecryptPayload(blob, s.key)
}

// Close wipes the master key. The store is unusable afterwards.
func (s *MasterKeyStore) Close() {
	common.WipeByteArray(s.key)
	s.key = nil
}
