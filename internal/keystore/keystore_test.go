package keystore

import (
	"bytes"
	"testing"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnlock_CorrectPassphrase(t *testing.T) {
	passphrase := []byte("master passphrase")
	salt := common.GenerateRandByteArray(cryptox.SaltLen)
	key := cryptox.DeriveKey(passphrase, salt)
	verifier := cryptox.MakeVerifier(key)

	ks, err := Unlock(passphrase, salt, verifier)
	require.NoError(t, err)

	blob, err := ks.Encrypt([]byte("secret title"))
	require.NoError(t, err)

	plain, err := ks.Decrypt(blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret title"), plain)
}

func TestEnroll_ThenUnlock(t *testing.T) {
	passphrase := []byte("master passphrase")
	salt := common.GenerateRandByteArray(cryptox.SaltLen)

	first, verifier := Enroll(passphrase, salt)
	blob, err := first.Encrypt([]byte("sealed on first run"))
	require.NoError(t, err)
	first.Close()

	// a later session unlocks with the persisted salt and verifier
	second, err := Unlock(passphrase, salt, verifier)
	require.NoError(t, err)

	plain, err := second.Decrypt(blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("sealed on first run"), plain)
}

func TestUnlock_WrongPassphrase(t *testing.T) {
	salt := common.GenerateRandByteArray(cryptox.SaltLen)
	verifier := cryptox.MakeVerifier(cryptox.DeriveKey([]byte("right"), salt))

	_, err := Unlock([]byte("wrong"), salt, verifier)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestDecrypt_Tampered(t *testing.T) {
	ks := NewWithKey(common.GenerateRandByteArray(32))

	blob, err := ks.Encrypt([]byte("data"))
	require.NoError(t, err)

	corrupted := bytes.Clone(blob)
	corrupted[len(corrupted)-1] ^= 0x01
	_, err = ks.Decrypt(corrupted)
	assert.ErrorIs(t, err, common.ErrIntegrity)
}

func TestClose_WipesKey(t *testing.T) {
	key := common.GenerateRandByteArray(32)
	ks := NewWithKey(key)
	ks.Close()

	assert.Equal(t, make([]byte, 32), key)

	_, err := ks.Encrypt([]byte("x"))
	assert.ErrorIs(t, err, common.ErrClosed)
	_, err = ks.Decrypt([]byte("x"))
	assert.ErrorIs(t, err, common.ErrClosed)
}
