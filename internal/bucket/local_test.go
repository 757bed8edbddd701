package bucket

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunearena/gateway/internal/arena"
)

func TestLocalPutGet(t *testing.T) {
	b := NewLocal(t.TempDir(), "http://localhost:8080/data/")
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, "audio/abc.mp3", []byte("bytes"), "audio/mpeg", false))

	got, err := b.Get(ctx, "audio/abc.mp3")
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), got)

	assert.Equal(t, "http://localhost:8080/data/audio/abc.mp3", b.PublicURL("audio/abc.mp3"))
}

func TestLocalOverwrite(t *testing.T) {
	b := NewLocal(t.TempDir(), "")
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, "k", []byte("one"), "application/json", false))

	err := b.Put(ctx, "k", []byte("two"), "application/json", false)
	var storage *arena.StorageError
	require.ErrorAs(t, err, &storage)

	require.NoError(t, b.Put(ctx, "k", []byte("two"), "application/json", true))
	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
}

func TestLocalGetMissing(t *testing.T) {
	b := NewLocal(t.TempDir(), "")

	_, err := b.Get(context.Background(), "nope")
	var notFound *arena.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestLocalDelete(t *testing.T) {
	b := NewLocal(t.TempDir(), "")
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, "k", []byte("x"), "", false))
	require.NoError(t, b.Delete(ctx, "k"))

	_, err := b.Get(ctx, "k")
	assert.Error(t, err)

	// Deleting an absent key is a no-op.
	assert.NoError(t, b.Delete(ctx, "k"))
}
