package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/simaogato/savespendshare-backend/internal/adapter/repository/snapshot"
	"github.com/simaogato/savespendshare-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKV_GetPut(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	kv, err := NewKV(dir, "ledger")
	require.NoError(t, err)

	_, err = kv.Get(ctx, snapshot.SlotCurrent)
	assert.ErrorIs(t, err, snapshot.ErrNotFound)

	require.NoError(t, kv.Put(ctx, snapshot.SlotCurrent, []byte("one")))
	require.NoError(t, kv.Put(ctx, snapshot.SlotCurrent, []byte("two")))

	got, err := kv.Get(ctx, snapshot.SlotCurrent)
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	_, err = os.Stat(filepath.Join(dir, "ledger.current.json.tmp"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.FileExists(t, filepath.Join(dir, "ledger.current.json"))
}

func TestKV_WithSnapshotStore(t *testing.T) {
	ctx := context.Background()
	kv, err := NewKV(t.TempDir(), "ledger")
	require.NoError(t, err)
	store := snapshot.NewStore(kv, zerolog.Nop())

	state := domain.NewAppState()
	state.Settings.RotationWeek = 3
	require.NoError(t, store.Persist(ctx, state))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.RotationWeek(3), loaded.Settings.RotationWeek)
}
