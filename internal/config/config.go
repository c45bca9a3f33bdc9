package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the consolidation root and derived directory overrides.
type Paths struct {
	Root   string `toml:"root"`
	LogDir string `toml:"log_dir"`
}

// Drive describes one read-only source drive to consolidate from.
type Drive struct {
	Path  string `toml:"path"`
	Label string `toml:"label"`
}

// Extensions lists the media file extensions the pipeline recognizes.
// Entries are matched case-insensitively and stored without a leading dot.
type Extensions struct {
	Photos []string `toml:"photos"`
	Videos []string `toml:"videos"`
}

// Quality holds the weights for the duplicate-ranking heuristic. Scores are
// base points per format; bonuses and penalties adjust for folder context and
// file size. All values are in score points on the 0-100 scale.
type Quality struct {
	RawScore        int `toml:"raw_score"`
	LargeJpegScore  int `toml:"large_jpeg_score"`
	JpegScore       int `toml:"jpeg_score"`
	PngScore        int `toml:"png_score"`
	HeicScore       int `toml:"heic_score"`
	LargeVideoScore int `toml:"large_video_score"`
	VideoScore      int `toml:"video_score"`
	DefaultScore    int `toml:"default_score"`

	PhotoLargeMB int `toml:"photo_large_mb"`
	VideoLargeMB int `toml:"video_large_mb"`

	OrganizedBonus  int `toml:"organized_bonus"`
	MeaningfulBonus int `toml:"meaningful_bonus"`
	BackupPenalty   int `toml:"backup_penalty"`
	JunkPenalty     int `toml:"junk_penalty"`

	LargeBonusMB  int `toml:"large_bonus_mb"`
	MediumBonusMB int `toml:"medium_bonus_mb"`
	LargeBonus    int `toml:"large_bonus"`
	MediumBonus   int `toml:"medium_bonus"`

	OrganizedKeywords  []string `toml:"organized_keywords"`
	MeaningfulKeywords []string `toml:"meaningful_keywords"`
	BackupKeywords     []string `toml:"backup_keywords"`
	JunkKeywords       []string `toml:"junk_keywords"`
}

// Safety contains thresholds that guard destructive or bulk operations.
type Safety struct {
	MinFreeSpaceGB      int     `toml:"min_free_space_gb"`
	MaxDuplicatePercent float64 `toml:"max_duplicate_percent"`
	BackupBeforeRemoval bool    `toml:"backup_before_removal"`
}

// Process controls execution behaviour shared by all stages.
type Process struct {
	DryRun           bool `toml:"dry_run"`
	ParallelJobs     int  `toml:"parallel_jobs"`
	ProgressInterval int  `toml:"progress_interval"`
	DateFolders      bool `toml:"date_folders"`
}

// Logging selects log output format, level, and retention.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config is the complete shoebox configuration. Load it once at startup and
// pass it by pointer into stage constructors.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Drives     []Drive    `toml:"drives"`
	Extensions Extensions `toml:"extensions"`
	Quality    Quality    `toml:"quality"`
	Safety     Safety     `toml:"safety"`
	Process    Process    `toml:"process"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shoebox/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shoebox.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// IncomingDir is the staging area copies land in; the only tree the
// consolidator may mutate.
func (c *Config) IncomingDir() string { return filepath.Join(c.Paths.Root, "incoming") }

// ManifestDir holds the per-drive and combined manifests.
func (c *Config) ManifestDir() string { return filepath.Join(c.Paths.Root, "manifests") }

// DuplicatesDir is the root of the duplicate analysis output.
func (c *Config) DuplicatesDir() string { return filepath.Join(c.Paths.Root, "duplicates") }

// GroupsDir holds one group report per duplicate set.
func (c *Config) GroupsDir() string { return filepath.Join(c.DuplicatesDir(), "groups") }

// ReportsDir holds human-readable analysis and consolidation reports.
func (c *Config) ReportsDir() string { return filepath.Join(c.Paths.Root, "reports") }

// FinalDir is the deduplicated archive destination.
func (c *Config) FinalDir() string { return filepath.Join(c.Paths.Root, "final") }

// BackupDir receives pre-removal copies when backup_before_removal is set.
func (c *Config) BackupDir() string { return filepath.Join(c.Paths.Root, "backup") }

// LockPath is the advisory lock taken by mutating pipeline runs.
func (c *Config) LockPath() string { return filepath.Join(c.Paths.Root, "shoebox.lock") }

// FFprobeBinary returns the ffprobe executable name used to read container
// metadata from videos.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// EnsureDirectories creates the consolidation root tree. Callers on dry-run
// preview paths must not invoke this.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.Root,
		c.IncomingDir(),
		c.ManifestDir(),
		c.DuplicatesDir(),
		c.GroupsDir(),
		c.ReportsDir(),
		c.FinalDir(),
		c.Paths.LogDir,
	}
	if c.Safety.BackupBeforeRemoval {
		dirs = append(dirs, c.BackupDir())
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SampleConfig returns the embedded sample configuration document written by
// "shoebox config init".
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
