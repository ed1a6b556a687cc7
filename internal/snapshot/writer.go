// Package snapshot persists the asset store to disk as a best-effort,
// atomically-written binary file, and separately caches generated report
// projections behind a small Cache interface with an optional Redis
// backend. Neither path is a durable transactional store: losing the
// on-disk snapshot or the cache never loses live data, only the ability
// to warm-start the next run instead of rebuilding from ESI.
package snapshot

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/evesaga/evesaga/internal/store"
)

const snapshotFileName = "assets.snapshot"

// Writer tracks dirtiness and atomically persists a store.Snapshot to a
// fixed file path, the Go analogue of the original implementation's
// last_stored_at < last_updated_at dirty check and temp-file-then-rename
// write.
type Writer struct {
	path string

	mu            sync.Mutex
	lastStoredAt  time.Time
	lastUpdatedAt time.Time
}

// NewWriter builds a Writer persisting to <dir>/assets.snapshot. dir must
// already exist; Writer never creates directories.
func NewWriter(dir string) *Writer {
	now := time.Now()
	return &Writer{
		path:          filepath.Join(dir, snapshotFileName),
		lastStoredAt:  now,
		lastUpdatedAt: now,
	}
}

// MarkDirty records that the store changed since the last successful
// Store call. Callers mark dirty after each batch of saga Apply calls
// that mutated the store.
func (w *Writer) MarkDirty() {
	w.mu.Lock()
	w.lastUpdatedAt = time.Now()
	w.mu.Unlock()
}

// Store writes st's current snapshot to disk if MarkDirty was called
// since the last successful Store, via a temp file plus rename so a
// concurrent reader never observes a partially-written file.
func (w *Writer) Store(st *store.Store) error {
	w.mu.Lock()
	dirty := w.lastStoredAt.Before(w.lastUpdatedAt)
	w.mu.Unlock()
	if !dirty {
		return nil
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(st.Snapshot()); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tempPath := w.path + ".tmp"
	if err := os.WriteFile(tempPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := os.Rename(tempPath, w.path); err != nil {
		return fmt.Errorf("rename snapshot into place: %w", err)
	}

	w.mu.Lock()
	w.lastStoredAt = time.Now()
	w.mu.Unlock()

	log.Info().Str("path", w.path).Msg("snapshot: stored")
	return nil
}

// Load reads a previously-written snapshot file from dir and rebuilds a
// Store from it. Callers should treat a *PathError wrapping
// os.ErrNotExist as a cold start, not a failure.
func Load(dir string) (*store.Store, error) {
	path := filepath.Join(dir, snapshotFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap store.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return store.RestoreSnapshot(snap), nil
}
