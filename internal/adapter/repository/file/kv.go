// Package file stores snapshot slots as JSON files in one directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/simaogato/savespendshare-backend/internal/adapter/repository/snapshot"
)

// KV writes each slot to <dir>/<prefix>.<slot>.json
type KV struct {
	dir    string
	prefix string
}

// NewKV creates the directory if needed
func NewKV(dir, prefix string) (*KV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &KV{dir: dir, prefix: prefix}, nil
}

func (kv *KV) path(slot snapshot.Slot) string {
	return filepath.Join(kv.dir, fmt.Sprintf("%s.%s.json", kv.prefix, slot))
}

func (kv *KV) Get(_ context.Context, slot snapshot.Slot) ([]byte, error) {
	data, err := os.ReadFile(kv.path(slot))
	if errors.Is(err, os.ErrNotExist) {
		return nil, snapshot.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", slot, err)
	}
	return data, nil
}

// Put replaces the slot atomically through a temp file and rename.
func (kv *KV) Put(_ context.Context, slot snapshot.Slot, data []byte) error {
	path := kv.path(slot)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp %s file: %w", slot, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s file: %w", slot, err)
	}
	return nil
}
