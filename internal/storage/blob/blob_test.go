package blob

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/jgivc/assetgate/internal/common"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	store, err := NewStoreWithFS(afero.NewMemMapFs(), "/data", log)
	require.NoError(t, err)

	return store
}

func TestWriteOpenDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	size, err := store.Write(ctx, "aabbcc.txt", strings.NewReader("hello blob"))
	require.NoError(t, err)
	require.EqualValues(t, 10, size)

	f, err := store.Open(ctx, "aabbcc.txt")
	require.NoError(t, err)

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.Equal(t, "hello blob", string(data))

	require.NoError(t, store.Delete(ctx, "aabbcc.txt"))

	_, err = store.Open(ctx, "aabbcc.txt")
	require.ErrorIs(t, err, common.ErrBlobNotFoundError)
}

func TestOpenMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Open(context.Background(), "nothere.bin")
	require.ErrorIs(t, err, common.ErrBlobNotFoundError)
}

func TestDeleteMissing(t *testing.T) {
	store := newTestStore(t)

	err := store.Delete(context.Background(), "nothere.bin")
	require.ErrorIs(t, err, common.ErrBlobNotFoundError)
}

func TestInvalidNames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"", "../etc/passwd", "a/b", `a\b`} {
		_, err := store.Write(ctx, name, strings.NewReader("x"))
		require.Error(t, err, "name %q must be rejected", name)
	}
}
