package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/parsivoice/pasban/internal/errors"
)

// fileStore keeps grants in a JSON object of name to bool. Every read opens
// the file fresh; writes replace it atomically via a temp file and rename in
// the same directory, so readers need no lock. The mutex only serializes
// writers against each other's read-modify-write cycle.
type fileStore struct {
	path string
	mu   sync.Mutex
}

// IsGranted reports the persisted state of one permission. A missing or
// unreadable grant file denies, never grants.
func (f *fileStore) IsGranted(name string) bool {
	grants, err := f.read()
	if err != nil {
		return false
	}

	return grants[name]
}

// Grant persists the named permission as granted.
func (f *fileStore) Grant(name string) error {
	return f.set(name, true)
}

// Revoke persists the named permission as revoked.
func (f *fileStore) Revoke(name string) error {
	return f.set(name, false)
}

func (f *fileStore) set(name string, granted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	grants, err := f.read()
	if err != nil {
		return err
	}
	grants[name] = granted

	return f.write(grants)
}

func (f *fileStore) read() (map[string]bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read permission file")
	}

	grants := map[string]bool{}
	if len(bytes.TrimSpace(data)) == 0 {
		return grants, nil
	}
	if err := json.Unmarshal(data, &grants); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse permission file")
	}

	return grants, nil
}

func (f *fileStore) write(grants map[string]bool) error {
	encoded, err := json.MarshalIndent(grants, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, "failed to encode permission file")
	}
	encoded = append(encoded, '\n')

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return apperrors.Wrap(err, "failed to create temp file")
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(encoded); err != nil {
		cleanup()
		return apperrors.Wrap(err, "failed to write temp file")
	}
	if err := tmp.Chmod(0o600); err != nil {
		cleanup()
		return apperrors.Wrap(err, "failed to chmod temp file")
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return apperrors.Wrap(err, "failed to sync temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return apperrors.Wrap(err, "failed to close temp file")
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return apperrors.Wrap(err, "failed to replace permission file")
	}

	return nil
}

// NewFileStore creates a PermissionStore persisting grants at path.
func NewFileStore(path string) PermissionStore {
	return &fileStore{path: path}
}
