package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"gocloud.dev/secrets"

	apperrors "github.com/parsivoice/pasban/internal/errors"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

const (
	// signingSeedFile holds the hex ed25519 seed, readable by the owner only.
	signingSeedFile = "session-signing.seed"

	// signingPublicFile holds the hex public key for external verifiers.
	signingPublicFile = "session-signing.pub"
)

// SigningSeedPath returns the location of the signing seed inside stateDir.
func SigningSeedPath(stateDir string) string {
	return filepath.Join(stateDir, signingSeedFile)
}

// LoadOrGenerateSigningKey loads the session signing key from the state
// directory, generating and persisting a fresh keypair on first start.
// The seed file is written 0600; the public key 0644.
func LoadOrGenerateSigningKey(stateDir string) (ed25519.PrivateKey, error) {
	seedPath := filepath.Join(stateDir, signingSeedFile)

	raw, err := os.ReadFile(seedPath)
	if err == nil {
		seed, err := hex.DecodeString(strings.TrimSpace(string(raw)))
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to decode signing seed")
		}
		if len(seed) != ed25519.SeedSize {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "signing seed is %d bytes, want %d", len(seed), ed25519.SeedSize)
		}
		return ed25519.NewKeyFromSeed(seed), nil
	}
	if !os.IsNotExist(err) {
		return nil, apperrors.Wrap(err, "failed to read signing seed")
	}

	return GenerateSigningKey(stateDir)
}

// GenerateSigningKey creates a new ed25519 keypair and writes it to the
// state directory, replacing any existing keypair. Rotation invalidates
// every outstanding session token at once.
func GenerateSigningKey(stateDir string) (ed25519.PrivateKey, error) {
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return nil, apperrors.Wrap(err, "failed to create state directory")
	}

	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate signing seed")
	}
	private := ed25519.NewKeyFromSeed(seed)

	seedPath := filepath.Join(stateDir, signingSeedFile)
	if err := os.WriteFile(seedPath, []byte(hex.EncodeToString(seed)+"\n"), 0o600); err != nil {
		return nil, apperrors.Wrap(err, "failed to write signing seed")
	}

	public := private.Public().(ed25519.PublicKey)
	publicPath := filepath.Join(stateDir, signingPublicFile)
	if err := os.WriteFile(publicPath, []byte(hex.EncodeToString(public)+"\n"), 0o644); err != nil {
		return nil, apperrors.Wrap(err, "failed to write signing public key")
	}

	return private, nil
}

// DecryptSigningSeed unwraps a KMS-encrypted signing seed using a
// gocloud.dev secrets keeper.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func DecryptSigningSeed(ctx context.Context, keyURI string, encryptedSeed string) (ed25519.PrivateKey, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open KMS keeper")
	}
	defer func() {
		_ = keeper.Close()
	}()

	ciphertext, err := base64.StdEncoding.DecodeString(encryptedSeed)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decode encrypted seed")
	}

	seed, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt signing seed")
	}
	if len(seed) != ed25519.SeedSize {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "decrypted seed is %d bytes, want %d", len(seed), ed25519.SeedSize)
	}

	return ed25519.NewKeyFromSeed(seed), nil
}
