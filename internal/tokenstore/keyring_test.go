package tokenstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringStoreRoundTrip(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()

	store, err := NewKeyringStore("iasql-test", "alice")
	require.NoError(t, err)

	_, err = store.Read(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Write(ctx, "abc123"))

	token, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	require.NoError(t, store.Delete(ctx))

	_, err = store.Read(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx), ErrNotFound)
}

func TestNewKeyringStoreValidation(t *testing.T) {
	_, err := NewKeyringStore("", "alice")
	assert.Error(t, err)

	_, err = NewKeyringStore("iasql", "")
	assert.Error(t, err)
}
