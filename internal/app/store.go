package app

import (
	"errors"
	"fmt"
	"os"

	"shelf-go/internal/shelf"
)

// ErrSnapshotUnsupported is returned by SnapshotStore for backends that
// cannot copy themselves to a file.
var ErrSnapshotUnsupported = errors.New("store type does not support snapshots")

// Optional store capabilities, implemented by some kv backends.
type (
	setupValidator   interface{ ValidateSetup() error }
	migrationChecker interface{ CheckMigrations() error }
	writeTimer       interface {
		UpdatedAt(key string) (int64, error)
	}
	snapshotter interface{ BackupTo(destPath string) error }
)

// StoreStatus describes the configured store.
type StoreStatus struct {
	Type       string
	Bookmarks  int
	Categories int
	// LastWrite is the epoch-millis time the bookmarks were last saved,
	// or 0 when the backend does not record it.
	LastWrite  int64
	BackupKeys bool
}

// CheckStore runs the health checks the store backend provides and
// summarizes what it holds.
func (a *ShelfApp) CheckStore() (StoreStatus, error) {
	status := StoreStatus{
		Type:       a.cfg.Store.Type,
		BackupKeys: a.encryptor.IsConfigured(),
	}
	status.Bookmarks, status.Categories = a.repo.Counts()

	if v, ok := a.store.(setupValidator); ok {
		if err := v.ValidateSetup(); err != nil {
			return status, fmt.Errorf("%w: %w", shelf.ErrStorage, err)
		}
	}
	if m, ok := a.store.(migrationChecker); ok {
		if err := m.CheckMigrations(); err != nil {
			return status, fmt.Errorf("%w: %w", shelf.ErrStorage, err)
		}
	}
	if w, ok := a.store.(writeTimer); ok {
		ts, err := w.UpdatedAt(shelf.BookmarksKey)
		switch {
		case err == nil:
			status.LastWrite = ts
		case !errors.Is(err, shelf.ErrKeyNotFound):
			return status, fmt.Errorf("%w: %w", shelf.ErrStorage, err)
		}
	}

	a.logger.Debug("store checked", "type", status.Type,
		"bookmarks", status.Bookmarks, "categories", status.Categories)
	return status, nil
}

// SnapshotStore copies the raw store to path. Only database-backed stores
// support this; path must not exist yet.
func (a *ShelfApp) SnapshotStore(path string) error {
	s, ok := a.store.(snapshotter)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSnapshotUnsupported, a.cfg.Store.Type)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("snapshot target already exists: %s", path)
	}
	if err := a.repo.Flush(); err != nil {
		return err
	}
	if err := s.BackupTo(path); err != nil {
		return fmt.Errorf("%w: %w", shelf.ErrStorage, err)
	}
	a.logger.Info("store snapshot written", "path", path)
	return nil
}
