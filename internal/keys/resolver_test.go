package keys

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/passvault/internal/client"
	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/keyring"
	"github.com/dmitrijs2005/passvault/internal/keystore"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKeyClient struct {
	client.Client

	bundle     *client.KeyBundle
	err        error
	delay      time.Duration
	fetchCount atomic.Int32
}

func (f *fakeKeyClient) FetchShareKeys(ctx context.Context, shareID, rotationID string) (*client.KeyBundle, error) {
	f.fetchCount.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.bundle, nil
}

// makeBundle builds an armored key bundle decryptable through ks.
func makeBundle(t *testing.T, ks keystore.Keystore, rotationID string, primary bool) *client.KeyBundle {
	t.Helper()

	vaultPass := common.GenerateRandByteArray(24)
	_, encPriv, err := cryptox.NewEncryptionKeyPair()
	require.NoError(t, err)
	armoredVault, err := cryptox.ArmorPrivateKey(encPriv, vaultPass)
	require.NoError(t, err)
	sealedVaultPass, err := ks.Encrypt(vaultPass)
	require.NoError(t, err)

	itemPass := common.GenerateRandByteArray(24)
	_, signingKey, err := cryptox.NewSigningKeyPair()
	require.NoError(t, err)
	armoredItem, err := cryptox.ArmorPrivateKey(signingKey.Seed(), itemPass)
	require.NoError(t, err)
	sealedItemPass, err := ks.Encrypt(itemPass)
	require.NoError(t, err)

	return &client.KeyBundle{
		VaultKey: models.VaultKey{
			RotationID:          rotationID,
			RotationNumber:      1,
			ArmoredKey:          armoredVault,
			EncryptedPassphrase: sealedVaultPass,
			IsPrimary:           primary,
		},
		ItemKey: models.ItemKey{
			RotationID:          rotationID,
			ArmoredKey:          armoredItem,
			EncryptedPassphrase: sealedItemPass,
		},
	}
}

func newTestResolver(t *testing.T, api client.Client) (*Resolver, *keyring.KeyRing, keystore.Keystore) {
	t.Helper()
	ring := keyring.New()
	t.Cleanup(ring.Close)
	ks := keystore.NewWithKey(common.GenerateRandByteArray(32))
	return NewResolver(ring, api, ks, logging.NewDiscardLogger()), ring, ks
}

func TestResolve_FetchesAndCaches(t *testing.T) {
	ks := keystore.NewWithKey(common.GenerateRandByteArray(32))
	api := &fakeKeyClient{}
	ring := keyring.New()
	t.Cleanup(ring.Close)
	api.bundle = makeBundle(t, ks, "R1", true)
	r := NewResolver(ring, api, ks, logging.NewDiscardLogger())

	pair, err := r.Resolve(context.Background(), "share-1", "R1")
	require.NoError(t, err)
	assert.Equal(t, "R1", pair.RotationID)
	assert.True(t, pair.IsPrimary)
	assert.Len(t, pair.EncryptionPriv, cryptox.KeyLen)

	// second resolve hits the ring, no extra fetch
	again, err := r.Resolve(context.Background(), "share-1", "R1")
	require.NoError(t, err)
	assert.Same(t, pair, again)
	assert.Equal(t, int32(1), api.fetchCount.Load())
}

func TestResolve_CoalescesConcurrentFetches(t *testing.T) {
	ks := keystore.NewWithKey(common.GenerateRandByteArray(32))
	api := &fakeKeyClient{delay: 30 * time.Millisecond}
	api.bundle = makeBundle(t, ks, "R1", true)
	ring := keyring.New()
	t.Cleanup(ring.Close)
	r := NewResolver(ring, api, ks, logging.NewDiscardLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pair, err := r.Resolve(context.Background(), "share-1", "R1")
			assert.NoError(t, err)
			assert.Equal(t, "R1", pair.RotationID)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), api.fetchCount.Load(), "concurrent resolutions must share one fetch")
}

func TestResolve_KeyNotFound(t *testing.T) {
	api := &fakeKeyClient{err: common.ErrKeyNotFound}
	r, _, _ := newTestResolver(t, api)

	_, err := r.Resolve(context.Background(), "share-1", "gone")
	assert.ErrorIs(t, err, common.ErrKeyNotFound)
}

func TestResolve_RotationMismatch(t *testing.T) {
	ks := keystore.NewWithKey(common.GenerateRandByteArray(32))
	api := &fakeKeyClient{}
	bundle := makeBundle(t, ks, "R1", true)
	bundle.ItemKey.RotationID = "R2"
	api.bundle = bundle
	ring := keyring.New()
	t.Cleanup(ring.Close)
	r := NewResolver(ring, api, ks, logging.NewDiscardLogger())

	_, err := r.Resolve(context.Background(), "share-1", "R1")
	assert.ErrorIs(t, err, common.ErrKeyMalformed)
}

func TestResolvePrimary(t *testing.T) {
	ks := keystore.NewWithKey(common.GenerateRandByteArray(32))
	api := &fakeKeyClient{}
	api.bundle = makeBundle(t, ks, "R3", true)
	ring := keyring.New()
	t.Cleanup(ring.Close)
	r := NewResolver(ring, api, ks, logging.NewDiscardLogger())

	pair, err := r.ResolvePrimary(context.Background(), "share-1")
	require.NoError(t, err)
	assert.Equal(t, "R3", pair.RotationID)

	// the fetched rotation is now resolvable directly from the ring
	cached, err := r.Resolve(context.Background(), "share-1", "R3")
	require.NoError(t, err)
	assert.Same(t, pair, cached)
	assert.Equal(t, int32(1), api.fetchCount.Load())
}
