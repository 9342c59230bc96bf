package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultIndexer/internal/entity"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEntityUpsertAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	id := entity.NewID(common.HexToHash("0xabc"), 2)

	require.NoError(t, store.Save(ctx, entity.KindNewVault, id, entity.Attributes{
		"vaultAddress": "0x0000000000000000000000000000000000000001",
		"blockNumber":  "10",
	}))
	require.NoError(t, store.Save(ctx, entity.KindNewVault, id, entity.Attributes{
		"vaultAddress": "0x0000000000000000000000000000000000000002",
		"blockNumber":  "11",
	}))

	count, err := store.Count(ctx, entity.KindNewVault)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	attrs, ok, err := store.Load(ctx, entity.KindNewVault, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0x0000000000000000000000000000000000000002", attrs["vaultAddress"])
	assert.Equal(t, "11", attrs["blockNumber"])

	_, ok, err = store.Load(ctx, entity.KindFactoryShutdown, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckpointRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.LoadCheckpoint(ctx, "vault-factory")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveCheckpoint(ctx, "vault-factory", 100))
	require.NoError(t, store.SaveCheckpoint(ctx, "vault-factory", 250))

	block, ok, err := store.LoadCheckpoint(ctx, "vault-factory")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(250), block)

	assert.Error(t, store.SaveCheckpoint(ctx, "", 1))
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "entities.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	id := entity.NewID(common.HexToHash("0xdef"), 0)
	require.NoError(t, store.Save(ctx, entity.KindFactoryShutdown, id, entity.Attributes{"blockNumber": "1"}))

	_, ok, err := store.Load(ctx, entity.KindFactoryShutdown, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.FileExists(t, path)
}
