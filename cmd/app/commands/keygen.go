package commands

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"

	authService "github.com/parsivoice/pasban/internal/auth/service"
)

// RunKeygen generates a fresh session signing keypair in the state directory.
// Refuses to overwrite an existing seed unless force is set, since rotating
// the key invalidates every outstanding session token.
func RunKeygen(logger *slog.Logger, writer io.Writer, stateDir string, force bool) error {
	seedPath := authService.SigningSeedPath(stateDir)
	if _, err := os.Stat(seedPath); err == nil && !force {
		return fmt.Errorf("signing seed already exists at %s, use --force to replace it", seedPath)
	}

	privateKey, err := authService.GenerateSigningKey(stateDir)
	if err != nil {
		return fmt.Errorf("failed to generate signing key: %w", err)
	}

	publicKey := privateKey.Public().(ed25519.PublicKey)

	logger.Info("signing keypair generated", slog.String("state_dir", stateDir))

	_, _ = fmt.Fprintln(writer, "Session signing keypair generated!")
	_, _ = fmt.Fprintf(writer, "Seed: %s\n", seedPath)
	_, _ = fmt.Fprintf(writer, "Public key: %s\n", hex.EncodeToString(publicKey))
	_, _ = fmt.Fprintln(writer, "\nRotating the keypair invalidates all outstanding session tokens.")

	return nil
}
