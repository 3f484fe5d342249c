// Package keyring caches decrypted share key pairs for one authenticated
// session. The ring is the only mutable structure shared between concurrent
// key resolutions, so all access goes through a RWMutex; readers never
// observe a half-written entry.
//
// Key material must not outlive the session that decrypted it: Close wipes
// every cached pair, and this is a confidentiality requirement, not a
// convenience.
package keyring

import (
	"sync"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/models"
)

// KeyRing holds decrypted key pairs keyed by rotation id.
type KeyRing struct {
	mu     sync.RWMutex
	keys   map[string]*models.ShareKeyPair
	closed bool
}

// New returns an empty ring for a freshly authenticated session.
func New() *KeyRing {
	return &KeyRing{keys: make(map[string]*models.ShareKeyPair)}
}

// Store caches a decrypted pair for a rotation id. The ring does not merge:
// storing over an existing entry fails with common.ErrKeyAlreadyStored and
// the caller must Invalidate first (e.g. after a passphrase re-entry forced
// a re-fetch).
func (k *KeyRing) Store(rotationID string, pair *models.ShareKeyPair) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return common.ErrClosed
	}
	if _, ok := k.keys[rotationID]; ok {
		return common.ErrKeyAlreadyStored
	}
	k.keys[rotationID] = pair
	return nil
}

// Get returns the cached pair for a rotation id, or false when the caller
// must resolve it through the ShareKeyResolver.
func (k *KeyRing) Get(rotationID string) (*models.ShareKeyPair, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.closed {
		return nil, false
	}
	pair, ok := k.keys[rotationID]
	return pair, ok
}

// Invalidate wipes and removes the entry for a rotation id, if present.
func (k *KeyRing) Invalidate(rotationID string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if pair, ok := k.keys[rotationID]; ok {
		pair.Wipe()
		delete(k.keys, rotationID)
	}
}

// Close wipes all cached key material and marks the ring unusable. Called on
// sign-out.
func (k *KeyRing) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	for id, pair := range k.keys {
		pair.Wipe()
		delete(k.keys, id)
	}
	k.closed = true
}
