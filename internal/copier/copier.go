// Package copier stages media files from source drives into the incoming
// tree with hash-verified transfers. Sources are opened read-only; every
// byte that lands in staging carries a SHA256 digest in the drive's copy
// manifest.
package copier

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"log/slog"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"shoebox/internal/config"
	"shoebox/internal/fileutil"
	"shoebox/internal/logging"
	"shoebox/internal/manifest"
	"shoebox/internal/media"
	"shoebox/internal/services"
	"shoebox/internal/stage"
)

// ProgressFunc receives per-drive copy progress at a bounded cadence. It may
// be invoked concurrently from copy workers.
type ProgressFunc func(drive string, done, total int)

// DriveResult captures the outcome of copying one source drive.
type DriveResult struct {
	Label        string
	Path         string
	Total        int
	Copied       int
	Skipped      int
	Failed       int
	CopiedBytes  int64
	ManifestPath string
	Errors       []string
}

// Result aggregates a copy pass across all configured drives.
type Result struct {
	DryRun          bool
	TotalFiles      int
	CopiedFiles     int
	SkippedFiles    int
	FailedFiles     int
	CopiedBytes     int64
	DrivesProcessed int
	Drives          []DriveResult
	Errors          []string
}

// Copier transfers media files drive by drive, file work fanned out over a
// bounded worker pool.
type Copier struct {
	cfg    *config.Config
	set    *media.Set
	logger *slog.Logger
}

// New constructs the copy stage.
func New(cfg *config.Config, logger *slog.Logger) *Copier {
	return &Copier{
		cfg:    cfg,
		set:    media.NewSet(cfg.Extensions),
		logger: logging.NewComponentLogger(logger, "copier"),
	}
}

// CopyAll copies every configured drive into incoming/<label>/, preserving
// the drive-relative structure. Inaccessible drives and insufficient staging
// space are recoverable per-drive errors; per-file failures never stop the
// drive. Dry-run enumerates and plans without creating anything.
func (c *Copier) CopyAll(ctx context.Context, progress ProgressFunc) (*Result, error) {
	if len(c.cfg.Drives) == 0 {
		return nil, services.Wrap(
			services.ErrConfiguration,
			"copy",
			"resolve drives",
			"No source drives configured; add [[drives]] entries to your shoebox config",
			nil,
		)
	}

	dryRun := c.cfg.Process.DryRun
	if !dryRun {
		if err := os.MkdirAll(c.cfg.IncomingDir(), 0o755); err != nil {
			return nil, services.Wrap(services.ErrTransient, "copy", "ensure staging", "Failed to create incoming directory", err)
		}
	}

	result := &Result{DryRun: dryRun}
	for _, drive := range c.cfg.Drives {
		logger := logging.WithContext(ctx, c.logger).With(logging.String(logging.FieldDrive, drive.Label))
		logger.Info("processing drive", logging.String("path", drive.Path), logging.Bool("dry_run", dryRun))

		info, err := os.Stat(drive.Path)
		if err != nil || !info.IsDir() {
			msg := fmt.Sprintf("source drive not accessible: %s", drive.Path)
			logger.Warn("skipping inaccessible drive", logging.String("path", drive.Path))
			result.Errors = append(result.Errors, msg)
			continue
		}

		driveResult, err := c.copyDrive(ctx, drive, dryRun, progress)
		if err != nil {
			return nil, err
		}

		result.TotalFiles += driveResult.Total
		result.CopiedFiles += driveResult.Copied
		result.SkippedFiles += driveResult.Skipped
		result.FailedFiles += driveResult.Failed
		result.CopiedBytes += driveResult.CopiedBytes
		result.DrivesProcessed++
		result.Errors = append(result.Errors, driveResult.Errors...)
		result.Drives = append(result.Drives, driveResult)
	}

	logging.WithContext(ctx, c.logger).Info("copy complete",
		logging.Bool("dry_run", dryRun),
		logging.Int("copied", result.CopiedFiles),
		logging.Int("skipped", result.SkippedFiles),
		logging.Int("failed", result.FailedFiles),
		logging.String("copied_size", humanize.Bytes(uint64(result.CopiedBytes))),
	)
	return result, nil
}

// fileOutcome is one worker's report, indexed by input position so manifest
// order stays deterministic regardless of completion order.
type fileOutcome struct {
	entry   manifest.File
	hasFile bool
	copied  bool
	skipped bool
	failed  bool
	bytes   int64
	errMsg  string
}

func (c *Copier) copyDrive(ctx context.Context, drive config.Drive, dryRun bool, progress ProgressFunc) (DriveResult, error) {
	logger := logging.WithContext(ctx, c.logger).With(logging.String(logging.FieldDrive, drive.Label))
	driveResult := DriveResult{Label: drive.Label, Path: drive.Path}

	entries, err := media.Walk(ctx, drive.Path, c.set)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return driveResult, err
		}
		msg := fmt.Sprintf("enumerate %s: %v", drive.Label, err)
		logger.Warn("drive enumeration failed", logging.Error(err))
		driveResult.Errors = append(driveResult.Errors, msg)
		return driveResult, nil
	}

	driveResult.Total = len(entries)
	if len(entries) == 0 {
		logger.Info("no media files on drive")
		return driveResult, nil
	}

	sourceBytes := media.TotalSize(entries)
	logger.Info("drive enumerated",
		logging.Int("files", len(entries)),
		logging.String("source_size", humanize.Bytes(uint64(sourceBytes))),
	)

	if !dryRun {
		if err := c.checkSpace(drive.Label, sourceBytes, &driveResult, logger); err != nil {
			return driveResult, nil
		}
	}

	destRoot := filepath.Join(c.cfg.IncomingDir(), drive.Label)
	outcomes := make([]fileOutcome, len(entries))
	interval := int64(c.cfg.Process.ProgressInterval)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Process.ParallelJobs)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = c.processFile(destRoot, entry, dryRun)
			n := done.Add(1)
			if progress != nil && n%interval == 0 {
				progress(drive.Label, int(n), len(entries))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return driveResult, err
	}

	var files []manifest.File
	for _, outcome := range outcomes {
		if outcome.hasFile {
			files = append(files, outcome.entry)
		}
		switch {
		case outcome.copied:
			driveResult.Copied++
		case outcome.skipped:
			driveResult.Skipped++
		case outcome.failed:
			driveResult.Failed++
		}
		driveResult.CopiedBytes += outcome.bytes
		if outcome.errMsg != "" {
			driveResult.Errors = append(driveResult.Errors, outcome.errMsg)
		}
	}

	if !dryRun && len(files) > 0 {
		m := manifest.New(manifest.KindCopied, files)
		m.SetDrive(drive.Label, drive.Path)
		m.Metadata.CopiedFiles = driveResult.Copied
		m.Metadata.SkippedFiles = driveResult.Skipped
		m.Metadata.FailedFiles = driveResult.Failed
		manifestPath := manifest.CopiedPath(c.cfg.ManifestDir(), drive.Label)
		if err := m.Write(manifestPath); err != nil {
			return driveResult, services.Wrap(
				services.ErrTransient,
				"copy",
				"write manifest",
				fmt.Sprintf("Failed to write copy manifest for drive %s", drive.Label),
				err,
			)
		}
		driveResult.ManifestPath = manifestPath
	}

	logger.Info("drive copy complete",
		logging.Int("copied", driveResult.Copied),
		logging.Int("skipped", driveResult.Skipped),
		logging.Int("failed", driveResult.Failed),
		logging.String("copied_size", humanize.Bytes(uint64(driveResult.CopiedBytes))),
	)
	return driveResult, nil
}

// checkSpace enforces the staging free-space preflight: source bytes plus the
// configured margin must fit before the first byte is copied. Returning an
// error means the drive is skipped; the error is already recorded.
func (c *Copier) checkSpace(label string, sourceBytes int64, driveResult *DriveResult, logger *slog.Logger) error {
	free, err := fileutil.FreeSpace(c.cfg.IncomingDir())
	if err != nil {
		msg := fmt.Sprintf("free space check for %s: %v", label, err)
		logger.Warn("free space check failed", logging.Error(err))
		driveResult.Errors = append(driveResult.Errors, msg)
		return err
	}
	needed := uint64(sourceBytes) + uint64(c.cfg.Safety.MinFreeSpaceGB)*1024*1024*1024
	if needed > free {
		msg := fmt.Sprintf("insufficient space for %s: need %s, have %s",
			label, humanize.Bytes(needed), humanize.Bytes(free))
		logger.Error("insufficient staging space",
			logging.String("needed", humanize.Bytes(needed)),
			logging.String("available", humanize.Bytes(free)),
		)
		driveResult.Errors = append(driveResult.Errors, msg)
		return services.Wrap(services.ErrInsufficientSpace, "copy", "space preflight", msg, nil)
	}
	logger.Info("space check passed",
		logging.String("needed", humanize.Bytes(needed)),
		logging.String("available", humanize.Bytes(free)),
	)
	return nil
}

func (c *Copier) processFile(destRoot string, entry media.Entry, dryRun bool) fileOutcome {
	dst := filepath.Join(destRoot, entry.Rel)

	if info, err := os.Stat(dst); err == nil && info.Size() == entry.Size {
		if dryRun {
			return fileOutcome{skipped: true}
		}
		// Already staged; hash the existing destination so re-runs still
		// produce a complete manifest.
		hash, hashErr := fileutil.HashFile(dst)
		if hashErr != nil {
			return fileOutcome{failed: true, errMsg: fmt.Sprintf("hash existing %s: %v", dst, hashErr)}
		}
		return fileOutcome{
			skipped: true,
			hasFile: true,
			entry: manifest.File{
				Path:         dst,
				RelativePath: entry.Rel,
				Size:         entry.Size,
				Hash:         hash,
				Modified:     entry.ModTime,
			},
		}
	}

	if dryRun {
		return fileOutcome{copied: true, bytes: entry.Size}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fileOutcome{failed: true, errMsg: fmt.Sprintf("create directory for %s: %v", dst, err)}
	}
	hash, err := fileutil.CopyFileHash(entry.Path, dst)
	if err != nil {
		return fileOutcome{failed: true, errMsg: fmt.Sprintf("copy %s: %v", entry.Path, err)}
	}
	return fileOutcome{
		copied:  true,
		hasFile: true,
		bytes:   entry.Size,
		entry: manifest.File{
			Path:         dst,
			RelativePath: entry.Rel,
			Size:         entry.Size,
			Hash:         hash,
			Modified:     entry.ModTime,
		},
	}
}

// Combine merges every per-drive copy manifest into copied_files_combined.json
// and returns the combined manifest. It fails when no copy manifest exists.
func (c *Copier) Combine(ctx context.Context) (*manifest.Manifest, error) {
	logger := logging.WithContext(ctx, c.logger)

	combined, err := manifest.Combine(c.cfg.ManifestDir())
	if err != nil {
		return nil, services.Wrap(
			services.ErrNotFound,
			"combine",
			"load copy manifests",
			"No per-drive copy manifests to combine",
			err,
		)
	}

	path := manifest.CombinedPath(c.cfg.ManifestDir())
	if err := combined.Write(path); err != nil {
		return nil, services.Wrap(services.ErrTransient, "combine", "write combined manifest", "Failed to write combined manifest", err)
	}

	logger.Info("combined manifest written",
		logging.Int("files", combined.Metadata.TotalFiles),
		logging.String("size", humanize.Bytes(uint64(combined.Metadata.TotalSize))),
		logging.String("path", path),
	)
	return combined, nil
}

// HealthCheck verifies copier prerequisites: configured drives and a
// writable staging area.
func (c *Copier) HealthCheck(ctx context.Context) stage.Health {
	const name = "copier"
	if c.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if len(c.cfg.Drives) == 0 {
		return stage.Unhealthy(name, "no source drives configured")
	}
	if h := stage.CheckWritableDir(name, c.cfg.Paths.Root); !h.Ready {
		return h
	}
	return stage.Healthy(name)
}
