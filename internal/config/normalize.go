package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDrives(); err != nil {
		return err
	}
	c.normalizeExtensions()
	c.normalizeProcess()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.Root) == "" {
		c.Paths.Root = defaultRoot
	}
	if c.Paths.Root, err = expandPath(c.Paths.Root); err != nil {
		return fmt.Errorf("paths.root: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.Root, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDrives() error {
	for i := range c.Drives {
		expanded, err := expandPath(strings.TrimSpace(c.Drives[i].Path))
		if err != nil {
			return fmt.Errorf("drives[%d].path: %w", i, err)
		}
		c.Drives[i].Path = expanded
		label := strings.TrimSpace(c.Drives[i].Label)
		if label == "" {
			label = filepath.Base(expanded)
		}
		c.Drives[i].Label = label
	}
	return nil
}

func (c *Config) normalizeExtensions() {
	c.Extensions.Photos = normalizeExtensionList(c.Extensions.Photos)
	c.Extensions.Videos = normalizeExtensionList(c.Extensions.Videos)
}

func normalizeExtensionList(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		ext = strings.TrimPrefix(ext, ".")
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}

func (c *Config) normalizeProcess() {
	if c.Process.ParallelJobs <= 0 {
		c.Process.ParallelJobs = defaultParallelJobs
	}
	if c.Process.ProgressInterval <= 0 {
		c.Process.ProgressInterval = defaultProgressInterval
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
