package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultIndexer/internal/entity"
)

func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"memory": NewMemoryStore(),
		"jsonl":  NewJsonlStore(filepath.Join(t.TempDir(), "entities.jsonl")),
	}
}

func TestStoreSaveLoadCount(t *testing.T) {
	ctx := context.Background()
	tx := common.HexToHash("0x1234")

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			first := entity.NewID(tx, 0)
			second := entity.NewID(tx, 1)

			require.NoError(t, store.Save(ctx, entity.KindNewVault, first, entity.Attributes{"asset": "0x01"}))
			require.NoError(t, store.Save(ctx, entity.KindNewVault, second, entity.Attributes{"asset": "0x02"}))
			require.NoError(t, store.Save(ctx, entity.KindFactoryShutdown, first, entity.Attributes{"blockNumber": "1"}))

			count, err := store.Count(ctx, entity.KindNewVault)
			require.NoError(t, err)
			assert.Equal(t, 2, count)

			attrs, ok, err := store.Load(ctx, entity.KindNewVault, second)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "0x02", attrs["asset"])

			_, ok, err = store.Load(ctx, entity.KindUpdateGovernance, first)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStoreLastWriteWins(t *testing.T) {
	ctx := context.Background()
	id := entity.NewID(common.HexToHash("0xfeed"), 3)

	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(ctx, entity.KindUpdateGovernance, id, entity.Attributes{"governance": "0xaa"}))
			require.NoError(t, store.Save(ctx, entity.KindUpdateGovernance, id, entity.Attributes{"governance": "0xbb"}))

			count, err := store.Count(ctx, entity.KindUpdateGovernance)
			require.NoError(t, err)
			assert.Equal(t, 1, count)

			attrs, ok, err := store.Load(ctx, entity.KindUpdateGovernance, id)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "0xbb", attrs["governance"])
		})
	}
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, entity.KindNewVault, entity.NewID(common.Hash{}, 0), entity.Attributes{}))

	store.Clear()

	count, err := store.Count(ctx, entity.KindNewVault)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMemoryStoreCopiesAttributes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	id := entity.NewID(common.Hash{}, 0)
	attrs := entity.Attributes{"vault": "0x01"}

	require.NoError(t, store.Save(ctx, entity.KindRemovedCustomProtocolFee, id, attrs))
	attrs["vault"] = "0x02"

	loaded, ok, err := store.Load(ctx, entity.KindRemovedCustomProtocolFee, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0x01", loaded["vault"])
}

func TestJsonlStoreMissingFile(t *testing.T) {
	ctx := context.Background()
	store := NewJsonlStore(filepath.Join(t.TempDir(), "missing", "entities.jsonl"))

	count, err := store.Count(ctx, entity.KindNewVault)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestJsonlStoreSaveBatch(t *testing.T) {
	ctx := context.Background()
	store := NewJsonlStore(filepath.Join(t.TempDir(), "entities.jsonl"))
	tx := common.HexToHash("0xabcd")

	var _ BatchStore = store
	require.NoError(t, store.SaveBatch(ctx, []Entry{
		{Kind: entity.KindUpdateGovernance, ID: entity.NewID(tx, 0), Attributes: entity.Attributes{"governance": "0x01"}},
		{Kind: entity.KindUpdateGovernance, ID: entity.NewID(tx, 1), Attributes: entity.Attributes{"governance": "0x02"}},
		{Kind: entity.KindUpdateGovernance, ID: entity.NewID(tx, 0), Attributes: entity.Attributes{"governance": "0x03"}},
	}))
	require.NoError(t, store.SaveBatch(ctx, nil))

	count, err := store.Count(ctx, entity.KindUpdateGovernance)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	attrs, ok, err := store.Load(ctx, entity.KindUpdateGovernance, entity.NewID(tx, 0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0x03", attrs["governance"])
}
