// Package duplicates finds identical files in the combined copy manifest and
// ranks each duplicate set by quality. Its only outputs are report files; it
// never touches staged media, so analysis can be re-run freely until the
// recommendations look right.
package duplicates

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"log/slog"

	"github.com/dustin/go-humanize"

	"shoebox/internal/config"
	"shoebox/internal/logging"
	"shoebox/internal/manifest"
	"shoebox/internal/media"
	"shoebox/internal/quality"
	"shoebox/internal/report"
	"shoebox/internal/services"
	"shoebox/internal/stage"
)

// SummaryName is the filename of the aggregate analysis report.
const SummaryName = "copied_files_analysis.txt"

// Result aggregates one analysis run.
type Result struct {
	ManifestPath     string
	TotalFiles       int
	UniqueFiles      int
	DuplicateGroups  int
	FilesInGroups    int
	DuplicatePercent float64
	SpaceSavings     int64
	SummaryPath      string
	GroupPaths       []string
	Warnings         []string
}

// Analyzer detects duplicate groups and writes the review reports the
// consolidator later executes.
type Analyzer struct {
	cfg    *config.Config
	scorer *quality.Scorer
	logger *slog.Logger
}

// New constructs the analysis stage.
func New(cfg *config.Config, logger *slog.Logger) *Analyzer {
	set := media.NewSet(cfg.Extensions)
	return &Analyzer{
		cfg:    cfg,
		scorer: quality.NewScorer(cfg.Quality, set),
		logger: logging.NewComponentLogger(logger, "analyzer"),
	}
}

type scoredFile struct {
	file  manifest.File
	score float64
}

// Analyze loads the manifest at manifestPath (empty means the combined copy
// manifest), groups files by content hash, and writes one report per
// duplicate group plus an aggregate summary. Groups keep first-seen hash
// order so report numbering is stable across re-runs; stale group reports
// from a previous run are removed first. An empty manifest yields a zero
// result without touching existing reports.
func (a *Analyzer) Analyze(ctx context.Context, manifestPath string) (*Result, error) {
	logger := logging.WithContext(ctx, a.logger)

	if manifestPath == "" {
		manifestPath = manifest.CombinedPath(a.cfg.ManifestDir())
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, services.Wrap(
			services.ErrNotFound,
			"analyze",
			"load manifest",
			"No combined manifest found; run the copy phase first",
			err,
		)
	}

	result := &Result{ManifestPath: manifestPath, TotalFiles: len(m.Files)}
	if len(m.Files) == 0 {
		logger.Warn("manifest contains no files", logging.String("path", manifestPath))
		return result, nil
	}
	logger.Info("analyzing files for duplicates",
		logging.Int("files", len(m.Files)),
		logging.String("manifest", manifestPath),
	)

	// Group by hash in first-seen order so group numbering is deterministic.
	groupsByHash := make(map[string][]scoredFile)
	var hashOrder []string
	for _, f := range m.Files {
		if f.Hash == "" {
			continue
		}
		if _, seen := groupsByHash[f.Hash]; !seen {
			hashOrder = append(hashOrder, f.Hash)
		}
		groupsByHash[f.Hash] = append(groupsByHash[f.Hash], scoredFile{
			file:  f,
			score: a.scorer.Score(f.Path, f.Size),
		})
	}

	extCounts := make(map[string]int)
	folderCounts := make(map[string]int)
	var groups []report.Group
	for _, hash := range hashOrder {
		members := groupsByHash[hash]
		if len(members) < 2 {
			result.UniqueFiles++
			continue
		}
		// Highest score first; the stable sort preserves manifest order on
		// ties so the keeper never flips between runs.
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].score > members[j].score
		})

		g := report.Group{ID: len(groups) + 1, Hash: hash}
		for i, member := range members {
			g.Entries = append(g.Entries, report.Entry{
				Rank:   i + 1,
				Keep:   i == 0,
				Score:  member.score,
				Path:   member.file.Path,
				Size:   member.file.Size,
				Format: strings.ToUpper(media.Ext(member.file.Path)),
				Folder: filepath.Base(filepath.Dir(member.file.Path)),
			})
			g.TotalSize += member.file.Size
			extCounts[media.Ext(member.file.Path)]++
			folderCounts[topFolder(member.file.RelativePath)]++
		}
		g.SpaceSavings = g.TotalSize - members[0].file.Size
		groups = append(groups, g)

		result.FilesInGroups += len(members)
		result.SpaceSavings += g.SpaceSavings
	}
	result.DuplicateGroups = len(groups)
	result.DuplicatePercent = float64(result.FilesInGroups) * 100 / float64(result.TotalFiles)

	if result.DuplicatePercent > a.cfg.Safety.MaxDuplicatePercent {
		warning := fmt.Sprintf("duplicate percentage %.1f%% exceeds maximum %.0f%%",
			result.DuplicatePercent, a.cfg.Safety.MaxDuplicatePercent)
		logger.Warn("duplicate percentage above threshold",
			logging.Float64("percent", result.DuplicatePercent),
			logging.Float64("maximum", a.cfg.Safety.MaxDuplicatePercent),
		)
		result.Warnings = append(result.Warnings, warning)
	}

	if err := a.writeGroupReports(ctx, groups, result); err != nil {
		return nil, err
	}
	summary := report.AnalysisSummary{
		GeneratedAt:      time.Now(),
		ManifestPath:     manifestPath,
		TotalFiles:       result.TotalFiles,
		UniqueFiles:      result.UniqueFiles,
		DuplicateGroups:  result.DuplicateGroups,
		FilesInGroups:    result.FilesInGroups,
		DuplicatePercent: result.DuplicatePercent,
		SpaceSavings:     result.SpaceSavings,
		ExtensionCounts:  extCounts,
		FolderCounts:     folderCounts,
		Warnings:         result.Warnings,
	}
	summaryPath, err := a.writeSummary(summary)
	if err != nil {
		return nil, err
	}
	result.SummaryPath = summaryPath

	logger.Info("duplicate analysis complete",
		logging.Int("duplicate_groups", result.DuplicateGroups),
		logging.Int("unique_files", result.UniqueFiles),
		logging.String("space_savings", humanize.Bytes(uint64(result.SpaceSavings))),
	)
	return result, nil
}

// writeGroupReports replaces the group report directory contents: stale
// reports from a previous run are removed so the consolidator only ever sees
// recommendations from the latest analysis.
func (a *Analyzer) writeGroupReports(ctx context.Context, groups []report.Group, result *Result) error {
	groupsDir := a.cfg.GroupsDir()
	if err := os.MkdirAll(groupsDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "analyze", "ensure groups directory", "Failed to create duplicate groups directory", err)
	}

	stale, err := filepath.Glob(filepath.Join(groupsDir, "group_*.txt"))
	if err != nil {
		return services.Wrap(services.ErrTransient, "analyze", "list group reports", "Failed to list existing group reports", err)
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return services.Wrap(services.ErrTransient, "analyze", "remove stale report", fmt.Sprintf("Failed to remove stale group report %s", path), err)
		}
	}

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(groupsDir, report.GroupFileName(g.ID))
		if err := writeReportFile(path, func(w *bufio.Writer) error {
			return report.WriteGroup(w, g)
		}); err != nil {
			return services.Wrap(services.ErrTransient, "analyze", "write group report", fmt.Sprintf("Failed to write group report %s", path), err)
		}
		result.GroupPaths = append(result.GroupPaths, path)
	}
	return nil
}

func (a *Analyzer) writeSummary(summary report.AnalysisSummary) (string, error) {
	if err := os.MkdirAll(a.cfg.ReportsDir(), 0o755); err != nil {
		return "", services.Wrap(services.ErrTransient, "analyze", "ensure reports directory", "Failed to create reports directory", err)
	}
	path := filepath.Join(a.cfg.ReportsDir(), SummaryName)
	if err := writeReportFile(path, func(w *bufio.Writer) error {
		return report.WriteAnalysisSummary(w, summary)
	}); err != nil {
		return "", services.Wrap(services.ErrTransient, "analyze", "write summary", "Failed to write analysis summary", err)
	}
	return path, nil
}

func writeReportFile(path string, render func(*bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := render(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// topFolder returns the first path element of a drive-relative path, or "."
// for files staged at the drive root.
func topFolder(rel string) string {
	rel = filepath.ToSlash(rel)
	if i := strings.IndexByte(rel, '/'); i > 0 {
		return rel[:i]
	}
	return "."
}

// HealthCheck verifies the analysis prerequisite: a combined copy manifest.
func (a *Analyzer) HealthCheck(ctx context.Context) stage.Health {
	const name = "analyzer"
	if a.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	return stage.CheckFile(name, manifest.CombinedPath(a.cfg.ManifestDir()))
}
