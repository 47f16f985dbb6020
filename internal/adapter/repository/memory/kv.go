// Package memory is a volatile snapshot.KV, used when nothing should outlive the process.
package memory

import (
	"context"
	"sync"

	"github.com/simaogato/savespendshare-backend/internal/adapter/repository/snapshot"
)

// KV keeps snapshot slots in a map
type KV struct {
	mu    sync.RWMutex
	slots map[snapshot.Slot][]byte
}

// NewKV creates an empty in-memory KV
func NewKV() *KV {
	return &KV{slots: make(map[snapshot.Slot][]byte)}
}

func (kv *KV) Get(_ context.Context, slot snapshot.Slot) ([]byte, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()

	data, ok := kv.slots[slot]
	if !ok {
		return nil, snapshot.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (kv *KV) Put(_ context.Context, slot snapshot.Slot, data []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	kv.slots[slot] = append([]byte(nil), data...)
	return nil
}
