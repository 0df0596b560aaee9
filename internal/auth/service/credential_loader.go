package service

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/parsivoice/pasban/internal/auth/domain"
	apperrors "github.com/parsivoice/pasban/internal/errors"
)

// credentialFile is the on-disk YAML schema of the credential table.
type credentialFile struct {
	Credentials []CredentialEntry    `yaml:"credentials"`
	Tiers       map[string]tierEntry `yaml:"tiers,omitempty"`
}

// CredentialEntry is one credential row of the credential file.
type CredentialEntry struct {
	ID          string   `yaml:"id"`
	KeyDigest   string   `yaml:"key_digest,omitempty"`
	KeyHash     string   `yaml:"key_hash,omitempty"`
	Tier        string   `yaml:"tier"`
	Permissions []string `yaml:"permissions,omitempty"`
}

// tierEntry overrides a tier's default permission set or rate profile.
type tierEntry struct {
	Permissions   []string `yaml:"permissions,omitempty"`
	Limit         int      `yaml:"limit,omitempty"`
	WindowSeconds int      `yaml:"window_seconds,omitempty"`
}

// LoadCredentialTable reads the credential file and builds the immutable
// table. Tier entries in the file override the supplied defaults; credential
// entries are validated strictly since a malformed table must fail startup
// rather than silently authenticate nobody.
func LoadCredentialTable(
	path string,
	defaultPermissions map[domain.Tier][]string,
	defaultProfiles map[domain.Tier]domain.RateProfile,
) (*domain.CredentialTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read credential file")
	}

	var file credentialFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse credential file")
	}

	credentials := make([]domain.Credential, 0, len(file.Credentials))
	seen := make(map[string]bool, len(file.Credentials))
	for i, entry := range file.Credentials {
		credential, err := entry.toDomain()
		if err != nil {
			return nil, apperrors.Wrapf(err, "credential entry %d", i)
		}
		if seen[credential.ID] {
			return nil, apperrors.Wrapf(apperrors.ErrConflict, "duplicate credential id %q", credential.ID)
		}
		seen[credential.ID] = true
		credentials = append(credentials, credential)
	}

	permissions := make(map[domain.Tier][]string, len(defaultPermissions))
	for tier, perms := range defaultPermissions {
		permissions[tier] = perms
	}
	profiles := make(map[domain.Tier]domain.RateProfile, len(defaultProfiles))
	for tier, profile := range defaultProfiles {
		profiles[tier] = profile
	}

	for name, entry := range file.Tiers {
		tier, err := domain.ParseTier(name)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse tier override")
		}
		if len(entry.Permissions) > 0 {
			permissions[tier] = entry.Permissions
		}
		profile := profiles[tier]
		if entry.Limit > 0 {
			profile.Limit = entry.Limit
		}
		if entry.WindowSeconds > 0 {
			profile.Window = time.Duration(entry.WindowSeconds) * time.Second
		}
		profiles[tier] = profile
	}

	return domain.NewCredentialTable(credentials, permissions, profiles), nil
}

// AppendCredential adds an entry to the credential file, creating the file
// when missing. The rewrite is atomic: a temp file in the same directory is
// renamed over the original so concurrent readers never observe a partial
// table.
func AppendCredential(path string, entry CredentialEntry) error {
	if _, err := entry.toDomain(); err != nil {
		return err
	}

	var file credentialFile
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return apperrors.Wrap(err, "failed to parse credential file")
		}
	case os.IsNotExist(err):
		// First credential; start a fresh file.
	default:
		return apperrors.Wrap(err, "failed to read credential file")
	}

	for _, existing := range file.Credentials {
		if existing.ID == entry.ID {
			return apperrors.Wrapf(apperrors.ErrConflict, "credential id %q already exists", entry.ID)
		}
	}
	file.Credentials = append(file.Credentials, entry)

	encoded, err := yaml.Marshal(&file)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode credential file")
	}

	return atomicWriteFile(path, encoded, 0o600)
}

// atomicWriteFile writes data to path via a temp file and rename. The temp
// file lives in the target directory so the rename never crosses
// filesystems.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return apperrors.Wrap(err, "failed to create temp file")
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return apperrors.Wrap(err, "failed to write temp file")
	}
	if err := tmp.Chmod(perm); err != nil {
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
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return apperrors.Wrap(err, "failed to replace file")
	}
	return nil
}

// toDomain validates the entry and converts it to a domain credential.
func (e CredentialEntry) toDomain() (domain.Credential, error) {
	if strings.TrimSpace(e.ID) == "" {
		return domain.Credential{}, apperrors.Wrap(apperrors.ErrInvalidInput, "credential id is required")
	}

	tier, err := domain.ParseTier(e.Tier)
	if err != nil {
		return domain.Credential{}, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}

	hasDigest := e.KeyDigest != ""
	hasHash := e.KeyHash != ""
	if hasDigest == hasHash {
		return domain.Credential{}, apperrors.Wrap(
			apperrors.ErrInvalidInput,
			"exactly one of key_digest and key_hash is required",
		)
	}

	digest := strings.ToLower(e.KeyDigest)
	if hasDigest {
		if len(digest) != 64 {
			return domain.Credential{}, apperrors.Wrap(apperrors.ErrInvalidInput, "key_digest must be 64 hex characters")
		}
		if _, err := hex.DecodeString(digest); err != nil {
			return domain.Credential{}, apperrors.Wrap(apperrors.ErrInvalidInput, "key_digest must be hex encoded")
		}
	}
	if hasHash && !strings.HasPrefix(e.KeyHash, "$argon2id$") {
		return domain.Credential{}, apperrors.Wrap(apperrors.ErrInvalidInput, "key_hash must be an argon2id hash")
	}

	return domain.Credential{
		ID:          e.ID,
		KeyDigest:   digest,
		KeyHash:     e.KeyHash,
		Tier:        tier,
		Permissions: e.Permissions,
	}, nil
}

// String renders the entry ID and tier for log output without key material.
func (e CredentialEntry) String() string {
	return fmt.Sprintf("%s (%s)", e.ID, e.Tier)
}
