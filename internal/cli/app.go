// Package cli is the interactive PassVault client: a small REPL over the
// local encrypted vault and the sync engine.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/passvault/internal/client"
	"github.com/dmitrijs2005/passvault/internal/codec"
	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/config"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/keyring"
	"github.com/dmitrijs2005/passvault/internal/keys"
	"github.com/dmitrijs2005/passvault/internal/keystore"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/repositories/items"
	"github.com/dmitrijs2005/passvault/internal/repositories/metadata"
	"github.com/dmitrijs2005/passvault/internal/services"
	"github.com/dmitrijs2005/passvault/internal/storage"
	"github.com/dmitrijs2005/passvault/internal/syncer"
)

// App wires the vault stack for one interactive session. Until Unlock
// succeeds the crypto-dependent fields (keystore, syncer, item service) are
// nil and only unlock/exit are available.
type App struct {
	config *config.Config
	log    logging.Logger

	api      client.Client
	itemRepo items.Repository
	metaRepo metadata.Repository

	ks     *keystore.MasterKeyStore
	ring   *keyring.KeyRing
	items  services.ItemService
	syncer *syncer.ApplyPendingEvents
	userID string

	reader *bufio.Reader
}

// NewApp opens the local database and wires the pre-unlock parts of the
// application. apiClient may be nil, in which case the session runs offline.
func NewApp(ctx context.Context, cfg *config.Config, apiClient client.Client, log logging.Logger) (*App, error) {
	db, err := storage.InitDatabase(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	if apiClient == nil {
		apiClient = client.Offline{}
	}

	return &App{
		config:   cfg,
		log:      log,
		api:      apiClient,
		itemRepo: items.NewSQLiteRepository(db),
		metaRepo: metadata.NewSQLiteRepository(db),
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isUnlocked() bool {
	return a.ks != nil
}

func (a *App) out() io.Writer { return os.Stdout }

// Unlock prompts for the vault passphrase and derives the session keystore.
// On a fresh database it enrolls the passphrase instead: a random salt is
// generated and the derived key's verifier is persisted for later unlocks.
func (a *App) Unlock(ctx context.Context) error {
	if a.isUnlocked() {
		printlnFn("Already unlocked.")
		return nil
	}

	passphrase, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	salt, err := a.metaRepo.Get(ctx, metadata.KeySalt)
	if err != nil {
		return err
	}

	if salt == nil {
		if err := a.enroll(ctx, passphrase); err != nil {
			return err
		}
	} else {
		verifier, err := a.metaRepo.Get(ctx, metadata.KeyVerifier)
		if err != nil {
			return err
		}
		ks, err := keystore.Unlock(passphrase, salt, verifier)
		if err != nil {
			return err
		}
		a.ks = ks
	}

	if userID, err := a.metaRepo.Get(ctx, metadata.KeyUserID); err == nil && userID != nil {
		a.userID = string(userID)
	}

	a.buildSession()
	printlnFn("Vault unlocked.")
	return nil
}

// enroll sets up keystore material on first run.
func (a *App) enroll(ctx context.Context, passphrase []byte) error {
	salt := common.GenerateRandByteArray(cryptox.SaltLen)
	ks, verifier := keystore.Enroll(passphrase, salt)

	if err := a.metaRepo.Set(ctx, metadata.KeySalt, salt); err != nil {
		ks.Close()
		return err
	}
	if err := a.metaRepo.Set(ctx, metadata.KeyVerifier, verifier); err != nil {
		ks.Close()
		return err
	}

	a.ks = ks
	printlnFn("New vault created.")
	return nil
}

// buildSession constructs the post-unlock stack on top of the keystore.
func (a *App) buildSession() {
	a.ring = keyring.New()
	resolver := keys.NewResolver(a.ring, a.api, a.ks, a.log)
	cdc := codec.New(a.ks)
	engine := syncer.NewEngine(a.api, a.itemRepo, resolver, cdc, a.log)
	a.syncer = syncer.NewApplyPendingEvents(engine, a.api, a.log,
		syncer.WithMaxPasses(a.config.SyncMaxPasses))
	a.items = services.NewItemService(a.api, a.itemRepo, resolver, cdc, a.ks, a.log)
}

// Run starts the REPL and tears the session down when it exits.
func (a *App) Run(ctx context.Context) {
	defer a.close()
	runREPL(ctx, a, bufio.NewScanner(os.Stdin))
}

func (a *App) close() {
	if a.ring != nil {
		a.ring.Close()
	}
	if a.ks != nil {
		a.ks.Close()
	}
	_ = a.api.Close()
}
