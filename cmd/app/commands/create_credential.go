package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	authDomain "github.com/parsivoice/pasban/internal/auth/domain"
	authService "github.com/parsivoice/pasban/internal/auth/service"
)

// RunCreateCredential mints a new credential and appends it to the credential
// file. By default a random API key is generated and its digest stored; with a
// passphrase the entry stores an argon2id hash instead. The plain key is shown
// exactly once and never written anywhere.
func RunCreateCredential(
	credentialService authService.CredentialService,
	logger *slog.Logger,
	writer io.Writer,
	credentialFile string,
	id string,
	tier string,
	permissionsCSV string,
	passphrase string,
	format string,
) error {
	if _, err := authDomain.ParseTier(tier); err != nil {
		return fmt.Errorf("invalid tier: %w", err)
	}

	logger.Info("creating credential",
		slog.String("id", id),
		slog.String("tier", tier),
	)

	entry := authService.CredentialEntry{
		ID:          id,
		Tier:        tier,
		Permissions: parsePermissions(permissionsCSV),
	}

	var plainKey string
	if passphrase != "" {
		hash, err := credentialService.HashPassphrase(passphrase)
		if err != nil {
			return fmt.Errorf("failed to hash passphrase: %w", err)
		}
		entry.KeyHash = hash
	} else {
		key, digest, err := credentialService.GenerateKey()
		if err != nil {
			return fmt.Errorf("failed to generate key: %w", err)
		}
		plainKey = key
		entry.KeyDigest = digest
	}

	if err := authService.AppendCredential(credentialFile, entry); err != nil {
		return fmt.Errorf("failed to update credential file: %w", err)
	}

	// Output result based on format
	if format == "json" {
		outputCredentialJSON(writer, entry, plainKey)
	} else {
		outputCredentialText(writer, entry, plainKey)
	}

	logger.Info("credential created successfully",
		slog.String("id", id),
		slog.String("tier", tier),
	)

	return nil
}

// parsePermissions converts a comma-separated permission list into a slice.
// An empty input yields nil so the tier's default permission set applies.
func parsePermissions(input string) []string {
	parts := strings.Split(input, ",")
	permissions := make([]string, 0, len(parts))

	for _, part := range parts {
		if permission := strings.TrimSpace(part); permission != "" {
			permissions = append(permissions, permission)
		}
	}

	if len(permissions) == 0 {
		return nil
	}
	return permissions
}

// outputCredentialText outputs the result in human-readable text format.
func outputCredentialText(writer io.Writer, entry authService.CredentialEntry, plainKey string) {
	_, _ = fmt.Fprintln(writer, "\nCredential created successfully!")
	_, _ = fmt.Fprintf(writer, "ID: %s\n", entry.ID)
	_, _ = fmt.Fprintf(writer, "Tier: %s\n", entry.Tier)
	if len(entry.Permissions) > 0 {
		_, _ = fmt.Fprintf(writer, "Permissions: %s\n", strings.Join(entry.Permissions, ", "))
	}
	if plainKey != "" {
		_, _ = fmt.Fprintf(writer, "API Key: %s\n", plainKey)
		_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The key is shown only once. Store it securely.")
	}
}

// outputCredentialJSON outputs the result in JSON format for machine consumption.
func outputCredentialJSON(writer io.Writer, entry authService.CredentialEntry, plainKey string) {
	result := map[string]interface{}{
		"id":   entry.ID,
		"tier": entry.Tier,
	}
	if len(entry.Permissions) > 0 {
		result["permissions"] = entry.Permissions
	}
	if plainKey != "" {
		result["api_key"] = plainKey
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
