package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDrives(); err != nil {
		return err
	}
	if err := c.validateExtensions(); err != nil {
		return err
	}
	if err := c.validateQuality(); err != nil {
		return err
	}
	if err := c.validateSafety(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.Root) == "" {
		return errors.New("paths.root must be set")
	}
	return nil
}

func (c *Config) validateDrives() error {
	labels := make(map[string]int, len(c.Drives))
	for i, drive := range c.Drives {
		if strings.TrimSpace(drive.Path) == "" {
			return fmt.Errorf("drives[%d].path must be set", i)
		}
		if prev, ok := labels[drive.Label]; ok {
			return fmt.Errorf("drives[%d].label %q duplicates drives[%d] (labels name staging subdirectories and must be unique)", i, drive.Label, prev)
		}
		labels[drive.Label] = i
	}
	return nil
}

func (c *Config) validateExtensions() error {
	if len(c.Extensions.Photos) == 0 && len(c.Extensions.Videos) == 0 {
		return errors.New("extensions must list at least one photo or video extension")
	}
	return nil
}

func (c *Config) validateQuality() error {
	scores := map[string]int{
		"quality.raw_score":         c.Quality.RawScore,
		"quality.large_jpeg_score":  c.Quality.LargeJpegScore,
		"quality.jpeg_score":        c.Quality.JpegScore,
		"quality.png_score":         c.Quality.PngScore,
		"quality.heic_score":        c.Quality.HeicScore,
		"quality.large_video_score": c.Quality.LargeVideoScore,
		"quality.video_score":       c.Quality.VideoScore,
		"quality.default_score":     c.Quality.DefaultScore,
	}
	for field, score := range scores {
		if score < 0 || score > 100 {
			return fmt.Errorf("%s must be between 0 and 100, got %d", field, score)
		}
	}
	if c.Quality.PhotoLargeMB <= 0 {
		return errors.New("quality.photo_large_mb must be positive")
	}
	if c.Quality.VideoLargeMB <= 0 {
		return errors.New("quality.video_large_mb must be positive")
	}
	if c.Quality.LargeBonusMB <= c.Quality.MediumBonusMB {
		return fmt.Errorf("quality.large_bonus_mb (%d) must exceed quality.medium_bonus_mb (%d)", c.Quality.LargeBonusMB, c.Quality.MediumBonusMB)
	}
	return nil
}

func (c *Config) validateSafety() error {
	if c.Safety.MinFreeSpaceGB < 0 {
		return errors.New("safety.min_free_space_gb must not be negative")
	}
	if c.Safety.MaxDuplicatePercent <= 0 || c.Safety.MaxDuplicatePercent > 100 {
		return errors.New("safety.max_duplicate_percent must be in (0, 100]")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
