package cryptox

import (
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
)

// ArmorPrivateKey seals raw private key bytes under a passphrase and encodes
// the result as a printable string suitable for transport and storage.
// The layout before encoding is salt || AES-GCM(nonce || ciphertext) with the
// AEAD key derived from (passphrase, salt) via argon2id.
func ArmorPrivateKey(priv, passphrase []byte) (string, error) {
	salt := common.GenerateRandByteArray(SaltLen)
	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	sealed, err := EncryptPayload(priv, key)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(append(salt, sealed...)), nil
}

// UnarmorPrivateKey decodes and decrypts an armored private key. A blob that
// is not valid base64 or is too short fails with common.ErrKeyMalformed; a
// wrong passphrase fails with common.ErrIntegrity from the AEAD open, which
// callers surface as a decryption failure.
func UnarmorPrivateKey(armored string, passphrase []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(armored)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrKeyMalformed, err)
	}
	if len(raw) <= SaltLen {
		return nil, fmt.Errorf("%w: armored blob too short", common.ErrKeyMalformed)
	}
	salt, sealed := raw[:SaltLen], raw[SaltLen:]

	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	priv, err := DecryptPayload(sealed, key)
	if err != nil {
		return nil, fmt.Errorf("%w: wrong passphrase or corrupted key", common.ErrDecryption)
	}
	return priv, nil
}
