package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBlobStore(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Open(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	data := []byte("00000000:  de ad be ef \n")
	require.NoError(t, store.Put(ctx, "run1.memdump", data))
	require.NoError(t, store.Put(ctx, "run2.memdump", []byte("x")))
	require.NoError(t, store.Put(ctx, "other.txt", []byte("y")))

	blob, err := store.Open(ctx, "run1.memdump")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 4)
	n, err := blob.ReadAt(buf, 11)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("de a"), buf)
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "run")
	require.NoError(t, err)
	assert.Equal(t, []string{"run1.memdump", "run2.memdump"}, names)

	require.NoError(t, store.Delete(ctx, "run1.memdump"))
	_, err = store.Open(ctx, "run1.memdump")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore(t *testing.T) {
	testBlobStore(t, NewLocalStore(t.TempDir()))
}

func TestMemoryStore(t *testing.T) {
	testBlobStore(t, NewMemoryStore())
}

func TestLocalStorePutOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	require.NoError(t, store.Put(ctx, "a", []byte("one")))
	require.NoError(t, store.Put(ctx, "a", []byte("two")))

	blob, err := store.Open(ctx, "a")
	require.NoError(t, err)
	defer blob.Close()

	m, ok := blob.(Mappable)
	require.True(t, ok, "local blobs are memory-mapped")
	data, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte{1, 2, 3}
	require.NoError(t, store.Put(ctx, "a", data))
	data[0] = 99

	blob, err := store.Open(ctx, "a")
	require.NoError(t, err)
	defer blob.Close()

	buf := make([]byte, 1)
	_, err = blob.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(1), buf[0], "stored blob must not alias the caller's slice")
}
