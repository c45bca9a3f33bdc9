// Package scanner enumerates configured source drives and records what they
// hold as per-drive source manifests. Scanning is strictly read-only: it
// never hashes and never touches a source file.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"

	"log/slog"

	"github.com/dustin/go-humanize"

	"shoebox/internal/config"
	"shoebox/internal/logging"
	"shoebox/internal/manifest"
	"shoebox/internal/media"
	"shoebox/internal/services"
	"shoebox/internal/stage"
)

// ProgressFunc receives the number of files enumerated so far on a drive.
type ProgressFunc func(drive string, files int)

// DriveResult captures the outcome of scanning one source drive.
type DriveResult struct {
	Label        string
	Path         string
	Files        int
	Bytes        int64
	ManifestPath string
}

// Result aggregates a scan across all configured drives.
type Result struct {
	TotalFiles    int
	TotalBytes    int64
	DrivesScanned int
	Drives        []DriveResult
	Errors        []string
}

// Scanner walks source drives and writes one source manifest per drive.
type Scanner struct {
	cfg    *config.Config
	set    *media.Set
	logger *slog.Logger
}

// New constructs the scan stage.
func New(cfg *config.Config, logger *slog.Logger) *Scanner {
	return &Scanner{
		cfg:    cfg,
		set:    media.NewSet(cfg.Extensions),
		logger: logging.NewComponentLogger(logger, "scanner"),
	}
}

// Scan enumerates every configured drive. An inaccessible drive is a
// recoverable per-drive error recorded in the result; scanning continues
// with the remaining drives. Cancellation aborts the whole scan.
func (s *Scanner) Scan(ctx context.Context, progress ProgressFunc) (*Result, error) {
	if len(s.cfg.Drives) == 0 {
		return nil, services.Wrap(
			services.ErrConfiguration,
			"scan",
			"resolve drives",
			"No source drives configured; add [[drives]] entries to your shoebox config",
			nil,
		)
	}

	result := &Result{}
	for _, drive := range s.cfg.Drives {
		logger := logging.WithContext(ctx, s.logger).With(logging.String(logging.FieldDrive, drive.Label))
		logger.Info("scanning drive", logging.String("path", drive.Path))

		info, err := os.Stat(drive.Path)
		if err != nil || !info.IsDir() {
			msg := fmt.Sprintf("source drive not accessible: %s", drive.Path)
			logger.Warn("skipping inaccessible drive", logging.String("path", drive.Path))
			result.Errors = append(result.Errors, msg)
			continue
		}

		files, walkErr := s.scanDrive(ctx, drive, progress)
		if walkErr != nil {
			if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
				return nil, walkErr
			}
			msg := fmt.Sprintf("scan %s: %v", drive.Label, walkErr)
			logger.Warn("drive scan failed", logging.Error(walkErr))
			result.Errors = append(result.Errors, msg)
			continue
		}

		m := manifest.New(manifest.KindSource, files)
		m.SetDrive(drive.Label, drive.Path)
		manifestPath := manifest.SourcePath(s.cfg.ManifestDir(), drive.Label)
		if err := m.Write(manifestPath); err != nil {
			return nil, services.Wrap(
				services.ErrTransient,
				"scan",
				"write manifest",
				fmt.Sprintf("Failed to write source manifest for drive %s", drive.Label),
				err,
			)
		}

		logger.Info("drive scan complete",
			logging.Int("files", m.Metadata.TotalFiles),
			logging.String("size", humanize.Bytes(uint64(m.Metadata.TotalSize))),
			logging.String("manifest", manifestPath),
		)

		result.TotalFiles += m.Metadata.TotalFiles
		result.TotalBytes += m.Metadata.TotalSize
		result.DrivesScanned++
		result.Drives = append(result.Drives, DriveResult{
			Label:        drive.Label,
			Path:         drive.Path,
			Files:        m.Metadata.TotalFiles,
			Bytes:        m.Metadata.TotalSize,
			ManifestPath: manifestPath,
		})
	}

	logging.WithContext(ctx, s.logger).Info("scan complete",
		logging.Int("total_files", result.TotalFiles),
		logging.String("total_size", humanize.Bytes(uint64(result.TotalBytes))),
		logging.Int("drives_scanned", result.DrivesScanned),
		logging.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func (s *Scanner) scanDrive(ctx context.Context, drive config.Drive, progress ProgressFunc) ([]manifest.File, error) {
	var files []manifest.File
	interval := s.cfg.Process.ProgressInterval
	err := media.WalkFunc(ctx, drive.Path, s.set, func(entry media.Entry) error {
		files = append(files, manifest.File{
			Path:         entry.Path,
			RelativePath: entry.Rel,
			Size:         entry.Size,
			Modified:     entry.ModTime,
		})
		if progress != nil && len(files)%interval == 0 {
			progress(drive.Label, len(files))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// HealthCheck verifies scanner prerequisites: configured drives that resolve
// to readable directories.
func (s *Scanner) HealthCheck(ctx context.Context) stage.Health {
	const name = "scanner"
	if s.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if len(s.cfg.Drives) == 0 {
		return stage.Unhealthy(name, "no source drives configured")
	}
	for _, drive := range s.cfg.Drives {
		if h := stage.CheckDir(name, drive.Path); !h.Ready {
			return h
		}
	}
	return stage.Healthy(name)
}
