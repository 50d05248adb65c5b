package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// lockTimeout is the maximum time to wait for the file lock.
const lockTimeout = 1 * time.Second

// FileStore implements Store on a single JSON file guarded by a file lock,
// so a CLI can keep tokens across invocations and concurrent commands do not
// corrupt the file.
type FileStore struct {
	filePath string
}

// NewFileStore creates a file-backed store at filePath. The file and its
// parent directory are created on first write.
func NewFileStore(filePath string) *FileStore {
	return &FileStore{filePath: path.Clean(filePath)}
}

// Set persists value under key; an empty value deletes the entry.
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	return s.update(ctx, func(entries map[string]string) {
		if value == "" {
			delete(entries, key)
			return
		}
		entries[key] = value
	})
}

// Get returns the value for key, or "" when absent.
func (s *FileStore) Get(ctx context.Context, key string) (string, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return "", err
	}
	defer unlock()

	entries, err := s.load()
	if err != nil {
		return "", err
	}
	return entries[key], nil
}

// Delete removes one entry; absent keys are a no-op.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	return s.update(ctx, func(entries map[string]string) {
		delete(entries, key)
	})
}

// DeletePrefix removes every entry whose key starts with prefix.
func (s *FileStore) DeletePrefix(ctx context.Context, prefix string) error {
	return s.update(ctx, func(entries map[string]string) {
		for k := range entries {
			if strings.HasPrefix(k, prefix) {
				delete(entries, k)
			}
		}
	})
}

// update performs a locked read-modify-write of the backing file.
func (s *FileStore) update(ctx context.Context, fn func(map[string]string)) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	fn(entries)
	return s.save(entries)
}

// lock acquires the sidecar lock file; a separate lock path keeps things
// portable across platforms. The parent directory must exist before the
// sidecar can be opened, so it is created here rather than on save.
func (s *FileStore) lock(ctx context.Context) (func(), error) {
	if dir := path.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	fileLock := flock.New(s.filePath + ".lock")

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("failed to acquire lock: timeout after %v", lockTimeout)
	}
	return func() { _ = fileLock.Unlock() }, nil
}

func (s *FileStore) load() (map[string]string, error) {
	// #nosec G304: the path is chosen by the host application.
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read store file %s: %w", s.filePath, err)
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse store file: %w", err)
	}
	return entries, nil
}

func (s *FileStore) save(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store file: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	return nil
}
