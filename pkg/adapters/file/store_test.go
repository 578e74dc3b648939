package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/flowbuilder/pkg/adapters/file"
	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/aretw0/flowbuilder/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements KVStore
var _ ports.KVStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunKVStoreContract(t, store)
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, "chatbot-flow", []byte(`{"nodes":[]}`)))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "chatbot-flow.kv", entries[0].Name())
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, "", []byte("x")))
	assert.Error(t, store.Save(ctx, filepath.Join("..", "escape"), []byte("x")))
}

func TestFileStore_Quota(t *testing.T) {
	store := file.New(t.TempDir(), file.WithMaxBytes(4))
	err := store.Save(context.Background(), "k", []byte("too large"))
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	keys, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}
