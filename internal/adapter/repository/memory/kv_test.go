package memory

import (
	"context"
	"testing"

	"github.com/simaogato/savespendshare-backend/internal/adapter/repository/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKV_GetPut(t *testing.T) {
	ctx := context.Background()
	kv := NewKV()

	_, err := kv.Get(ctx, snapshot.SlotCurrent)
	assert.ErrorIs(t, err, snapshot.ErrNotFound)

	data := []byte(`{"kids":[]}`)
	require.NoError(t, kv.Put(ctx, snapshot.SlotCurrent, data))
	data[0] = 'X'

	got, err := kv.Get(ctx, snapshot.SlotCurrent)
	require.NoError(t, err)
	assert.Equal(t, `{"kids":[]}`, string(got), "stored bytes are copied")

	_, err = kv.Get(ctx, snapshot.SlotBackup)
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
}
