// Package consolidator executes the analyzer's recommendations: duplicate
// groups collapse to their best member, unique files move into the final
// archive, and staged duplicates are removed. It is the only stage that
// deletes anything, and it only ever deletes inside the staging area.
package consolidator

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/dustin/go-humanize"

	"shoebox/internal/config"
	"shoebox/internal/fileutil"
	"shoebox/internal/logging"
	"shoebox/internal/manifest"
	"shoebox/internal/media"
	"shoebox/internal/metadata"
	"shoebox/internal/report"
	"shoebox/internal/services"
	"shoebox/internal/stage"
)

// ReportName is the filename of the human-readable consolidation report.
const ReportName = "consolidation_report.txt"

// maxCollisionSuffix bounds the _2, _3, ... probe so a pathological
// destination directory cannot spin forever.
const maxCollisionSuffix = 1000

// Result aggregates one consolidation run. In dry-run mode the counters are
// projections; nothing on disk has changed.
type Result struct {
	DryRun          bool
	GroupsProcessed int
	FilesKept       int
	FilesRemoved    int
	UniqueCopied    int
	SpaceSaved      int64
	FinalFiles      int
	FinalBytes      int64
	EmptyDirsPruned int
	ReportPath      string
	JSONReportPath  string
	Errors          []string
}

// Consolidator applies group reports and relocates unique files.
type Consolidator struct {
	cfg       *config.Config
	set       *media.Set
	extractor *metadata.Extractor
	logger    *slog.Logger
}

// New constructs the consolidation stage.
func New(cfg *config.Config, logger *slog.Logger) *Consolidator {
	set := media.NewSet(cfg.Extensions)
	return &Consolidator{
		cfg:       cfg,
		set:       set,
		extractor: metadata.NewExtractor(set, cfg.FFprobeBinary()),
		logger:    logging.NewComponentLogger(logger, "consolidator"),
	}
}

// Consolidate processes every group report, then every unique file from the
// combined manifest. Group failures are recorded per group and never stop
// the run; a failed keep-copy skips that group's removals entirely. On live
// runs, empty directories left in staging are pruned afterwards.
func (c *Consolidator) Consolidate(ctx context.Context) (*Result, error) {
	logger := logging.WithContext(ctx, c.logger)
	dryRun := c.cfg.Process.DryRun

	if _, err := os.Stat(c.cfg.IncomingDir()); err != nil {
		return nil, services.Wrap(
			services.ErrNotFound,
			"consolidate",
			"check staging",
			"Staging directory not found; run the copy phase first",
			err,
		)
	}

	result := &Result{DryRun: dryRun}
	logger.Info("starting consolidation", logging.Bool("dry_run", dryRun))

	groupPaths, err := filepath.Glob(filepath.Join(c.cfg.GroupsDir(), "group_*.txt"))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "consolidate", "list group reports", "Failed to list duplicate group reports", err)
	}
	if len(groupPaths) == 0 {
		logger.Warn("no duplicate group reports found; treating all files as unique")
	}
	for _, path := range groupPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.applyGroup(ctx, path, result, dryRun); err != nil {
			msg := fmt.Sprintf("group %s: %v", filepath.Base(path), err)
			logger.Error("group processing failed",
				logging.String("report", filepath.Base(path)),
				logging.Error(err),
			)
			result.Errors = append(result.Errors, msg)
			continue
		}
		result.GroupsProcessed++
	}

	if err := c.copyUniqueFiles(ctx, result, dryRun); err != nil {
		return nil, err
	}

	if !dryRun {
		c.countFinalCollection(ctx, result)
		pruned, err := fileutil.RemoveEmptyDirs(c.cfg.IncomingDir())
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("prune staging directories: %v", err))
		}
		result.EmptyDirsPruned = pruned
	}

	c.writeReports(result)

	logger.Info("consolidation complete",
		logging.Bool("dry_run", dryRun),
		logging.Int("groups", result.GroupsProcessed),
		logging.Int("kept", result.FilesKept),
		logging.Int("removed", result.FilesRemoved),
		logging.Int("unique_copied", result.UniqueCopied),
		logging.String("space_saved", humanize.Bytes(uint64(result.SpaceSaved))),
	)
	return result, nil
}

// applyGroup executes one group report: copy the keeper into the archive,
// then remove the rest. A parse failure, safety violation, missing keeper,
// or failed keep-copy aborts the group before any removal.
func (c *Consolidator) applyGroup(ctx context.Context, reportPath string, result *Result, dryRun bool) error {
	f, err := os.Open(reportPath)
	if err != nil {
		return fmt.Errorf("open report: %w", err)
	}
	plan, err := report.ParseGroup(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parse report: %w", err)
	}

	rel, ok := pathWithin(plan.Keep, c.cfg.IncomingDir())
	if !ok {
		return fmt.Errorf("safety violation: keep file %s is outside the staging area", plan.Keep)
	}
	info, err := os.Stat(plan.Keep)
	if err != nil {
		return fmt.Errorf("keep file missing: %s", plan.Keep)
	}

	dest := c.destination(ctx, plan.Keep, rel)
	dest, skip, err := resolveCollision(dest, info.Size())
	if err != nil {
		return fmt.Errorf("resolve destination for %s: %w", plan.Keep, err)
	}

	switch {
	case skip:
		// Same size at the destination: the keeper already landed on a
		// previous run.
		result.FilesKept++
	case dryRun:
		result.FilesKept++
	default:
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("create archive directory: %w", err)
		}
		if err := fileutil.CopyFileVerified(plan.Keep, dest); err != nil {
			return fmt.Errorf("copy keep file: %w", err)
		}
		result.FilesKept++
	}

	groupName := strings.TrimSuffix(filepath.Base(reportPath), ".txt")
	c.removeDuplicates(plan.Remove, groupName, result, dryRun)
	return nil
}

// removeDuplicates deletes the REMOVE entries of a group, backing each up
// first when configured. Backups are best effort: a failed backup is logged
// but never blocks removal.
func (c *Consolidator) removeDuplicates(paths []string, groupName string, result *Result, dryRun bool) {
	backup := c.cfg.Safety.BackupBeforeRemoval && !dryRun
	backupDir := filepath.Join(c.cfg.BackupDir(), groupName)

	for _, path := range paths {
		if _, ok := pathWithin(path, c.cfg.IncomingDir()); !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("safety violation: %s is outside the staging area", path))
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			// Already removed by a previous run.
			continue
		}

		if backup {
			if err := os.MkdirAll(backupDir, 0o755); err != nil {
				c.logger.Warn("backup directory creation failed",
					logging.String("dir", backupDir), logging.Error(err))
			} else if err := fileutil.CopyFile(path, filepath.Join(backupDir, filepath.Base(path))); err != nil {
				c.logger.Warn("backup failed", logging.String("path", path), logging.Error(err))
			}
		}

		if dryRun {
			result.FilesRemoved++
			result.SpaceSaved += info.Size()
			continue
		}
		if err := os.Remove(path); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("remove %s: %v", path, err))
			continue
		}
		result.FilesRemoved++
		result.SpaceSaved += info.Size()
	}
}

// copyUniqueFiles relocates every file whose hash appears exactly once in
// the combined manifest. A missing manifest skips the pass; unique files can
// only come from a completed copy phase.
func (c *Consolidator) copyUniqueFiles(ctx context.Context, result *Result, dryRun bool) error {
	logger := logging.WithContext(ctx, c.logger)

	m, err := manifest.Load(manifest.CombinedPath(c.cfg.ManifestDir()))
	if err != nil {
		logger.Warn("combined manifest not found; skipping unique files", logging.Error(err))
		return nil
	}
	counts := m.CountByHash()

	for _, file := range m.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if file.Hash == "" || counts[file.Hash] != 1 {
			continue
		}

		rel, ok := pathWithin(file.Path, c.cfg.IncomingDir())
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("safety violation: %s is outside the staging area", file.Path))
			continue
		}
		info, err := os.Stat(file.Path)
		if err != nil {
			logger.Warn("unique file missing from staging", logging.String("path", file.Path))
			continue
		}

		dest := c.destination(ctx, file.Path, rel)
		dest, skip, err := resolveCollision(dest, info.Size())
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("resolve destination for %s: %v", file.Path, err))
			continue
		}
		if skip || dryRun {
			result.UniqueCopied++
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("create archive directory for %s: %v", file.Path, err))
			continue
		}
		if err := fileutil.CopyFileVerified(file.Path, dest); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("copy unique file %s: %v", file.Path, err))
			continue
		}
		result.UniqueCopied++
	}
	return nil
}

// destination maps a staged file onto the archive tree. The drive-label
// segment is dropped so the archive is organized by original folder
// structure, and when date folders are enabled the top-level folder gains a
// _YYYY-MM suffix from the file's capture date. Files staged at the drive
// root and files without a recoverable date keep their layout.
func (c *Consolidator) destination(ctx context.Context, stagedPath, rel string) string {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	if c.cfg.Process.DateFolders && len(parts) > 1 {
		if captured, ok := c.extractor.CaptureDate(ctx, stagedPath); ok {
			parts[0] += captured.Format("_2006-01")
		}
	}
	return filepath.Join(c.cfg.FinalDir(), filepath.Join(parts...))
}

// resolveCollision picks the destination name for a file of the given size.
// An existing same-size file is the same content already landed, so the copy
// is skipped. A different size is a genuine name collision: _2, _3, ...
// suffixes are probed until a free or same-size name turns up. An existing
// file is never overwritten.
func resolveCollision(dest string, size int64) (string, bool, error) {
	info, err := os.Stat(dest)
	if os.IsNotExist(err) {
		return dest, false, nil
	}
	if err != nil {
		return "", false, err
	}
	if !info.IsDir() && info.Size() == size {
		return dest, true, nil
	}

	dir := filepath.Dir(dest)
	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(filepath.Base(dest), ext)
	for n := 2; n <= maxCollisionSuffix; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
		info, err := os.Stat(candidate)
		if os.IsNotExist(err) {
			return candidate, false, nil
		}
		if err != nil {
			return "", false, err
		}
		if !info.IsDir() && info.Size() == size {
			return candidate, true, nil
		}
	}
	return "", false, fmt.Errorf("no free name for %s after %d attempts", dest, maxCollisionSuffix)
}

// pathWithin reports whether path resides under root and returns its
// root-relative form. This containment check is the sole guard keeping the
// consolidator away from source drives, so it must not rely on string
// prefixes.
func pathWithin(path, root string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

func (c *Consolidator) countFinalCollection(ctx context.Context, result *Result) {
	entries, err := media.Walk(ctx, c.cfg.FinalDir(), c.set)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("count final collection: %v", err))
		return
	}
	result.FinalFiles = len(entries)
	result.FinalBytes = media.TotalSize(entries)
}

// writeReports renders the human-readable report into reports/ and the
// structured run record into the log directory. Report failures are
// recorded, never fatal: the consolidation itself already happened.
func (c *Consolidator) writeReports(result *Result) {
	now := time.Now()
	final := report.FinalReport{
		GeneratedAt:     now,
		DryRun:          result.DryRun,
		GroupsProcessed: result.GroupsProcessed,
		FilesKept:       result.FilesKept,
		FilesRemoved:    result.FilesRemoved,
		UniqueCopied:    result.UniqueCopied,
		SpaceSaved:      result.SpaceSaved,
		FinalFiles:      result.FinalFiles,
		FinalBytes:      result.FinalBytes,
		EmptyDirsPruned: result.EmptyDirsPruned,
		Errors:          result.Errors,
	}

	textPath := filepath.Join(c.cfg.ReportsDir(), ReportName)
	if err := writeTextReport(textPath, final); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("write consolidation report: %v", err))
	} else {
		result.ReportPath = textPath
	}

	jsonPath := filepath.Join(c.cfg.Paths.LogDir, fmt.Sprintf("final_consolidation_%s.json", now.Format("2006-01-02T15-04-05")))
	if err := c.writeJSONReport(jsonPath, now, result); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("write consolidation record: %v", err))
	} else {
		result.JSONReportPath = jsonPath
	}
}

func writeTextReport(path string, final report.FinalReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := report.WriteFinalReport(w, final); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type runRecord struct {
	DryRun     bool          `json:"dry_run"`
	Timestamp  time.Time     `json:"timestamp"`
	Statistics runStatistics `json:"statistics"`
	Paths      runPaths      `json:"paths"`
	Errors     []string      `json:"errors"`
	Success    bool          `json:"success"`
}

type runStatistics struct {
	GroupsProcessed int    `json:"groups_processed"`
	FilesKept       int    `json:"files_kept"`
	FilesRemoved    int    `json:"files_removed"`
	UniqueCopied    int    `json:"unique_files_copied"`
	SpaceSavedBytes int64  `json:"space_saved_bytes"`
	SpaceSaved      string `json:"space_saved_human"`
	FinalFiles      int    `json:"final_collection_files"`
	FinalBytes      int64  `json:"final_collection_size_bytes"`
	EmptyDirsPruned int    `json:"empty_dirs_pruned"`
}

type runPaths struct {
	Incoming string `json:"incoming_dir"`
	Final    string `json:"final_dir"`
	Backup   string `json:"backup_dir,omitempty"`
}

func (c *Consolidator) writeJSONReport(path string, now time.Time, result *Result) error {
	record := runRecord{
		DryRun:    result.DryRun,
		Timestamp: now,
		Statistics: runStatistics{
			GroupsProcessed: result.GroupsProcessed,
			FilesKept:       result.FilesKept,
			FilesRemoved:    result.FilesRemoved,
			UniqueCopied:    result.UniqueCopied,
			SpaceSavedBytes: result.SpaceSaved,
			SpaceSaved:      humanize.Bytes(uint64(result.SpaceSaved)),
			FinalFiles:      result.FinalFiles,
			FinalBytes:      result.FinalBytes,
			EmptyDirsPruned: result.EmptyDirsPruned,
		},
		Paths: runPaths{
			Incoming: c.cfg.IncomingDir(),
			Final:    c.cfg.FinalDir(),
		},
		Errors:  result.Errors,
		Success: len(result.Errors) == 0,
	}
	if c.cfg.Safety.BackupBeforeRemoval {
		record.Paths.Backup = c.cfg.BackupDir()
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// HealthCheck verifies consolidation prerequisites: a staging tree to read
// and a writable archive root.
func (c *Consolidator) HealthCheck(ctx context.Context) stage.Health {
	const name = "consolidator"
	if c.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if h := stage.CheckDir(name, c.cfg.IncomingDir()); !h.Ready {
		return h
	}
	return stage.CheckWritableDir(name, c.cfg.FinalDir())
}
