package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"
)

func generateLocalKeeperURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func TestLoadOrGenerateSigningKey(t *testing.T) {
	t.Run("Success_GeneratesOnFirstStart", func(t *testing.T) {
		stateDir := filepath.Join(t.TempDir(), "state")

		private, err := LoadOrGenerateSigningKey(stateDir)
		require.NoError(t, err)
		assert.Len(t, private, ed25519.PrivateKeySize)

		seedInfo, err := os.Stat(filepath.Join(stateDir, "session-signing.seed"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), seedInfo.Mode().Perm())

		publicInfo, err := os.Stat(filepath.Join(stateDir, "session-signing.pub"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), publicInfo.Mode().Perm())
	})

	t.Run("Success_ReloadsSameKey", func(t *testing.T) {
		stateDir := filepath.Join(t.TempDir(), "state")

		first, err := LoadOrGenerateSigningKey(stateDir)
		require.NoError(t, err)
		second, err := LoadOrGenerateSigningKey(stateDir)
		require.NoError(t, err)
		assert.True(t, first.Equal(second))
	})

	t.Run("Success_PublicFileMatchesKey", func(t *testing.T) {
		stateDir := filepath.Join(t.TempDir(), "state")

		private, err := LoadOrGenerateSigningKey(stateDir)
		require.NoError(t, err)

		raw, err := os.ReadFile(filepath.Join(stateDir, "session-signing.pub"))
		require.NoError(t, err)
		public, err := hex.DecodeString(string(raw[:len(raw)-1]))
		require.NoError(t, err)
		assert.Equal(t, private.Public(), ed25519.PublicKey(public))
	})

	t.Run("Error_CorruptSeed", func(t *testing.T) {
		stateDir := t.TempDir()
		seedPath := filepath.Join(stateDir, "session-signing.seed")
		require.NoError(t, os.WriteFile(seedPath, []byte("not-hex!\n"), 0o600))

		_, err := LoadOrGenerateSigningKey(stateDir)
		assert.ErrorContains(t, err, "failed to decode signing seed")
	})

	t.Run("Error_WrongSeedLength", func(t *testing.T) {
		stateDir := t.TempDir()
		seedPath := filepath.Join(stateDir, "session-signing.seed")
		require.NoError(t, os.WriteFile(seedPath, []byte(hex.EncodeToString([]byte("short"))+"\n"), 0o600))

		_, err := LoadOrGenerateSigningKey(stateDir)
		assert.ErrorContains(t, err, "signing seed is 5 bytes")
	})
}

func TestGenerateSigningKey(t *testing.T) {
	t.Run("Success_RotationReplacesKey", func(t *testing.T) {
		stateDir := filepath.Join(t.TempDir(), "state")

		first, err := GenerateSigningKey(stateDir)
		require.NoError(t, err)
		second, err := GenerateSigningKey(stateDir)
		require.NoError(t, err)
		assert.False(t, first.Equal(second))

		// The loader must pick up the rotated key, not the old one.
		loaded, err := LoadOrGenerateSigningKey(stateDir)
		require.NoError(t, err)
		assert.True(t, second.Equal(loaded))
	})
}

func TestDecryptSigningSeed(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_LocalKeeper", func(t *testing.T) {
		keyURI := generateLocalKeeperURI(t)

		seed := make([]byte, ed25519.SeedSize)
		_, err := rand.Read(seed)
		require.NoError(t, err)

		keeper, err := secrets.OpenKeeper(ctx, keyURI)
		require.NoError(t, err)
		defer func() {
			_ = keeper.Close()
		}()
		ciphertext, err := keeper.Encrypt(ctx, seed)
		require.NoError(t, err)

		private, err := DecryptSigningSeed(ctx, keyURI, base64.StdEncoding.EncodeToString(ciphertext))
		require.NoError(t, err)
		assert.True(t, ed25519.NewKeyFromSeed(seed).Equal(private))
	})

	t.Run("Error_InvalidURI", func(t *testing.T) {
		_, err := DecryptSigningSeed(ctx, "invalid://key-uri", "aGVsbG8=")
		assert.ErrorContains(t, err, "failed to open KMS keeper")
	})

	t.Run("Error_NotBase64", func(t *testing.T) {
		_, err := DecryptSigningSeed(ctx, generateLocalKeeperURI(t), "!!!not base64!!!")
		assert.ErrorContains(t, err, "failed to decode encrypted seed")
	})

	t.Run("Error_WrongKey", func(t *testing.T) {
		seed := make([]byte, ed25519.SeedSize)
		_, err := rand.Read(seed)
		require.NoError(t, err)

		keeper, err := secrets.OpenKeeper(ctx, generateLocalKeeperURI(t))
		require.NoError(t, err)
		defer func() {
			_ = keeper.Close()
		}()
		ciphertext, err := keeper.Encrypt(ctx, seed)
		require.NoError(t, err)

		_, err = DecryptSigningSeed(ctx, generateLocalKeeperURI(t), base64.StdEncoding.EncodeToString(ciphertext))
		assert.ErrorContains(t, err, "failed to decrypt signing seed")
	})

	t.Run("Error_WrongSeedLength", func(t *testing.T) {
		keyURI := generateLocalKeeperURI(t)

		keeper, err := secrets.OpenKeeper(ctx, keyURI)
		require.NoError(t, err)
		defer func() {
			_ = keeper.Close()
		}()
		ciphertext, err := keeper.Encrypt(ctx, []byte("short"))
		require.NoError(t, err)

		_, err = DecryptSigningSeed(ctx, keyURI, base64.StdEncoding.EncodeToString(ciphertext))
		assert.ErrorContains(t, err, "decrypted seed is 5 bytes")
	})
}
