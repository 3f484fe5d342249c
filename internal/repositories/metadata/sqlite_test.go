package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:metadata_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL);`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM metadata`)
	require.NoError(t, err)
	return db
}

func TestSetGet(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeySalt, []byte("salty")))

	got, err := repo.Get(ctx, KeySalt)
	require.NoError(t, err)
	assert.Equal(t, []byte("salty"), got)

	// overwrite
	require.NoError(t, repo.Set(ctx, KeySalt, []byte("saltier")))
	got, err = repo.Get(ctx, KeySalt)
	require.NoError(t, err)
	assert.Equal(t, []byte("saltier"), got)
}

func TestGet_Missing(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	got, err := repo.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteAndClear(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeySalt, []byte("a")))
	require.NoError(t, repo.Set(ctx, KeyVerifier, []byte("b")))

	require.NoError(t, repo.Delete(ctx, KeySalt))
	got, err := repo.Get(ctx, KeySalt)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Clear(ctx))
	got, err = repo.Get(ctx, KeyVerifier)
	require.NoError(t, err)
	assert.Nil(t, got)
}
