// Package common defines shared constants and sentinel errors used across
// the passvault client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Key-material errors.
	ErrKeyMalformed     = errors.New("malformed key material")
	ErrKeyNotFound      = errors.New("key rotation not found")
	ErrUnknownRotation  = errors.New("no key for rotation")
	ErrKeyAlreadyStored = errors.New("rotation already cached")

	// Crypto errors. ErrSignatureVerification is security-relevant: an item
	// failing it must never be accepted into local state.
	ErrDecryption            = errors.New("decryption failed")
	ErrIntegrity             = errors.New("ciphertext integrity check failed")
	ErrSignatureVerification = errors.New("signature verification failed")

	// Content errors.
	ErrUnsupportedFormat = errors.New("unsupported content format version")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Session errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrClosed       = errors.New("session closed")
)
