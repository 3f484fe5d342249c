// Package cryptox implements the stateless cryptographic operations of the
// vault client: asymmetric wrapping of symmetric session keys, AEAD payload
// encryption, detached signatures, and passphrase-based key derivation.
//
// All functions are pure given their key-material inputs and safe for
// concurrent use.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

const (
	// SessionKeyLen is the length of a symmetric session key (AES-256).
	SessionKeyLen = 32

	// KeyLen is the length of X25519 public and private keys.
	KeyLen = 32

	// SaltLen is the length of salts used for passphrase derivation.
	SaltLen = 16
)

// GenerateSessionKey returns a fresh random symmetric session key. The caller
// owns the key and should wipe it when done.
func GenerateSessionKey() []byte {
	return common.GenerateRandByteArray(SessionKeyLen)
}

// NewEncryptionKeyPair generates an X25519 key pair for session-key wrapping.
func NewEncryptionKeyPair() (pub, priv []byte, err error) {
	p, s, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return p[:], s[:], nil
}

// NewSigningKeyPair generates an ed25519 key pair for detached signatures.
func NewSigningKeyPair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

// PublicFromPrivate derives the X25519 public key for a private scalar.
func PublicFromPrivate(priv []byte) ([]byte, error) {
	if len(priv) != KeyLen {
		return nil, fmt.Errorf("%w: private key must be %d bytes", common.ErrKeyMalformed, KeyLen)
	}
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrKeyMalformed, err)
	}
	return pub, nil
}

func toBoxKey(b []byte) (*[KeyLen]byte, error) {
	if len(b) != KeyLen {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", common.ErrKeyMalformed, KeyLen, len(b))
	}
	var k [KeyLen]byte
	copy(k[:], b)
	return &k, nil
}

// WrapSessionKey asymmetrically encrypts a session key under the recipient's
// X25519 public key, producing a key packet. Only the holder of the matching
// private key can recover the session key.
func WrapSessionKey(sessionKey, recipientPub []byte) ([]byte, error) {
	pub, err := toBoxKey(recipientPub)
	if err != nil {
		return nil, err
	}
	packet, err := box.SealAnonymous(nil, sessionKey, pub, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap session key: %w", err)
	}
	return packet, nil
}

// UnwrapSessionKey recovers a session key from a key packet. It fails with
// common.ErrDecryption when the packet was wrapped for a different key or has
// been corrupted.
func UnwrapSessionKey(packet, recipientPub, recipientPriv []byte) ([]byte, error) {
	pub, err := toBoxKey(recipientPub)
	if err != nil {
		return nil, err
	}
	priv, err := toBoxKey(recipientPriv)
	if err != nil {
		return nil, err
	}
	sessionKey, ok := box.OpenAnonymous(nil, packet, pub, priv)
	if !ok {
		return nil, common.ErrDecryption
	}
	return sessionKey, nil
}

// EncryptPayload encrypts plaintext with AES-256-GCM under the session key.
// The random nonce is prepended to the returned ciphertext so the result is a
// single self-contained blob.
func EncryptPayload(plaintext, sessionKey []byte) ([]byte, error) {
	block, err := aes.NewCipher(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrKeyMalformed, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptPayload reverses EncryptPayload. Tampered or truncated ciphertext
// fails with common.ErrIntegrity.
func DecryptPayload(ciphertext, sessionKey []byte) ([]byte, error) {
	block, err := aes.NewCipher(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrKeyMalformed, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aesgcm.NonceSize() {
		return nil, common.ErrIntegrity
	}
	nonce, sealed := ciphertext[:aesgcm.NonceSize()], ciphertext[aesgcm.NonceSize():]
	plaintext, err := aesgcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, common.ErrIntegrity
	}
	return plaintext, nil
}

// Sign produces a detached ed25519 signature over data.
func Sign(data []byte, priv ed25519.PrivateKey) []byte {
	return ed25519.Sign(priv, data)
}

// Verify reports whether sig is a valid detached signature over data.
// A false result must be treated by callers as a hard integrity violation,
// never silently ignored.
func Verify(data, sig []byte, pub ed25519.PublicKey) bool {
	if len(pub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(pub, data, sig)
}

// DeriveKey derives a 32-byte key from a passphrase and salt using argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, SessionKeyLen)
}

// MakeVerifier returns a value safe to store alongside the salt for checking
// a derived key without retaining it.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}
