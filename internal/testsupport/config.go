package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"shoebox/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in unique temp directories per test.
// Dry-run is disabled so stage tests exercise the mutating paths by default;
// the free-space margin is zeroed so small temp filesystems pass preflight.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Root = filepath.Join(base, "consolidation")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Process.DryRun = false
	cfgVal.Safety.MinFreeSpaceGB = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return builder.cfg
}

// WithDrive registers a source drive backed by a fresh directory under the
// test base and returns files written there via DrivePath.
func WithDrive(label string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "drives", label)
		if err := os.MkdirAll(path, 0o755); err != nil {
			b.t.Fatalf("mkdir drive %s: %v", label, err)
		}
		b.cfg.Drives = append(b.cfg.Drives, config.Drive{Path: path, Label: label})
	}
}

// WithDryRun toggles dry-run on the test config.
func WithDryRun(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Process.DryRun = enabled
	}
}

// WithBackup toggles backup-before-removal on the test config.
func WithBackup(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Safety.BackupBeforeRemoval = enabled
	}
}

// WithDateFolders toggles capture-date folder suffixes on the test config.
func WithDateFolders(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Process.DateFolders = enabled
	}
}

// DrivePath returns the directory backing a drive registered with WithDrive.
func DrivePath(cfg *config.Config, label string) string {
	for _, drive := range cfg.Drives {
		if drive.Label == label {
			return drive.Path
		}
	}
	return ""
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.Root)
}
