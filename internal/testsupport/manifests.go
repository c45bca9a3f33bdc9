package testsupport

import (
	"testing"

	"shoebox/internal/config"
	"shoebox/internal/manifest"
)

// WriteCopiedManifest persists a per-drive copy manifest for tests that start
// at the analyze or consolidate stage without running the copier.
func WriteCopiedManifest(t testing.TB, cfg *config.Config, label string, files []manifest.File) string {
	t.Helper()

	m := manifest.New(manifest.KindCopied, files)
	m.SetDrive(label, DrivePath(cfg, label))
	path := manifest.CopiedPath(cfg.ManifestDir(), label)
	if err := m.Write(path); err != nil {
		t.Fatalf("write copied manifest %s: %v", label, err)
	}
	return path
}

// WriteCombinedManifest persists the merged copy manifest directly.
func WriteCombinedManifest(t testing.TB, cfg *config.Config, files []manifest.File) string {
	t.Helper()

	m := manifest.New(manifest.KindCombined, files)
	path := manifest.CombinedPath(cfg.ManifestDir())
	if err := m.Write(path); err != nil {
		t.Fatalf("write combined manifest: %v", err)
	}
	return path
}
