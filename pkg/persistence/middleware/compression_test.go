package middleware_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/flowbuilder/pkg/adapters/memory"
	"github.com/aretw0/flowbuilder/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressionMiddleware_Roundtrip(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	store := middleware.NewCompressionMiddleware()(underlying)

	plain := []byte(`{"nodes":[` + strings.Repeat(`{"id":"n","kind":"message"},`, 200) + `{}]}`)
	require.NoError(t, store.Save(ctx, "chatbot-flow", plain))

	stored, err := underlying.Load(ctx, "chatbot-flow")
	require.NoError(t, err)
	assert.Less(t, len(stored), len(plain))
	assert.True(t, bytes.HasPrefix(stored, []byte{0x28, 0xb5, 0x2f, 0xfd}))

	got, err := store.Load(ctx, "chatbot-flow")
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"chatbot-flow"}, keys)

	require.NoError(t, store.Delete(ctx, "chatbot-flow"))
	_, err = store.Load(ctx, "chatbot-flow")
	assert.Error(t, err)
}

func TestCompressionMiddleware_PassesThroughLegacyValues(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	legacy := []byte(`{"nodes":[],"edges":[]}`)
	require.NoError(t, underlying.Save(ctx, "chatbot-flow", legacy))

	got, err := middleware.NewCompressionMiddleware()(underlying).Load(ctx, "chatbot-flow")
	require.NoError(t, err)
	assert.Equal(t, legacy, got)
}

func TestChain_EncryptsCompressedValues(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	store := middleware.Chain(underlying,
		middleware.NewCompressionMiddleware(),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}),
	)

	plain := []byte(`{"nodes":[{"id":"n1","payload":{"prompt":"secret"}}]}`)
	require.NoError(t, store.Save(ctx, "k", plain))

	stored, err := underlying.Load(ctx, "k")
	require.NoError(t, err)
	assert.Contains(t, string(stored), "__encrypted__")

	got, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}
