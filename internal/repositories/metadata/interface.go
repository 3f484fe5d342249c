package metadata

import "context"

// Repository is a small key/value store for local session metadata such as
// the keystore salt and verifier.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Well-known metadata keys.
const (
	KeySalt     = "salt"
	KeyVerifier = "verifier"
	KeyUserID   = "user_id"
)
