package service

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	apperrors "github.com/parsivoice/pasban/internal/errors"
	"github.com/parsivoice/pasban/internal/skills/domain"
)

// ManifestFileName is the manifest file looked up inside each skill directory.
const ManifestFileName = "skill.yaml"

// LoadManifests scans skillsDir for <name>/skill.yaml manifests and returns
// them in routing order. A broken manifest is logged and skipped so one bad
// skill never takes the assistant down; a missing skills directory yields an
// empty registry.
func LoadManifests(skillsDir string, logger *slog.Logger) ([]domain.Manifest, error) {
	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("skills directory does not exist", slog.String("dir", skillsDir))
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "failed to read skills directory")
	}

	manifests := make([]domain.Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(skillsDir, entry.Name())
		path := filepath.Join(dir, ManifestFileName)

		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			logger.Warn("failed to read skill manifest",
				slog.String("path", path),
				slog.Any("error", err),
			)
			continue
		}

		var manifest domain.Manifest
		if err := yaml.Unmarshal(raw, &manifest); err != nil {
			logger.Warn("failed to parse skill manifest",
				slog.String("path", path),
				slog.Any("error", err),
			)
			continue
		}
		if err := manifest.Validate(); err != nil {
			logger.Warn("invalid skill manifest",
				slog.String("path", path),
				slog.Any("error", err),
			)
			continue
		}
		if manifest.Name != entry.Name() {
			logger.Warn("skill manifest name does not match its directory",
				slog.String("path", path),
				slog.String("name", manifest.Name),
			)
			continue
		}

		manifest.Dir = dir
		manifests = append(manifests, manifest)
	}

	sortManifests(manifests)
	return manifests, nil
}

// sortManifests orders by priority descending, ties by name ascending.
func sortManifests(manifests []domain.Manifest) {
	sort.SliceStable(manifests, func(i, j int) bool {
		if manifests[i].Priority != manifests[j].Priority {
			return manifests[i].Priority > manifests[j].Priority
		}
		return manifests[i].Name < manifests[j].Name
	})
}
