// Package metrics renders a point-in-time census of the consolidation tree
// as InfluxDB line protocol, one record per line, for external scrapers.
// The collector never mutates anything and missing directories simply
// produce no records.
package metrics

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"log/slog"

	"shoebox/internal/config"
	"shoebox/internal/fileutil"
	"shoebox/internal/logging"
	"shoebox/internal/media"
)

// Measurement is the line-protocol measurement name for every record.
const Measurement = "shoebox"

// Collector walks the consolidation tree and emits census records.
type Collector struct {
	cfg    *config.Config
	set    *media.Set
	logger *slog.Logger
}

// New constructs a collector over the configured tree.
func New(cfg *config.Config, logger *slog.Logger) *Collector {
	return &Collector{
		cfg:    cfg,
		set:    media.NewSet(cfg.Extensions),
		logger: logging.NewComponentLogger(logger, "metrics"),
	}
}

// Collect gathers line-protocol records in a stable order: the directory
// census, manifest and group-report counts, latest log size, the most
// recent consolidation run, and storage capacity. Unreadable entries are
// skipped; only cancellation fails the collection.
func (c *Collector) Collect(ctx context.Context) ([]string, error) {
	var lines []string

	directories := []struct {
		name string
		path string
	}{
		{"incoming", c.cfg.IncomingDir()},
		{"duplicates", c.cfg.DuplicatesDir()},
		{"final", c.cfg.FinalDir()},
	}
	for _, dir := range directories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		census, ok := c.censusDir(dir.path)
		if !ok {
			continue
		}
		lines = append(lines,
			fmt.Sprintf("%s,directory=%s size_bytes=%di", Measurement, dir.name, census.bytes),
			fmt.Sprintf("%s,directory=%s photo_count=%di", Measurement, dir.name, census.photos),
			fmt.Sprintf("%s,directory=%s video_count=%di", Measurement, dir.name, census.videos),
			fmt.Sprintf("%s,directory=%s total_files=%di", Measurement, dir.name, census.files),
		)
	}

	if manifests, err := filepath.Glob(filepath.Join(c.cfg.ManifestDir(), "*.json")); err == nil && len(manifests) > 0 {
		lines = append(lines, fmt.Sprintf("%s,type=manifests count=%di", Measurement, len(manifests)))
	}
	if groups, err := filepath.Glob(filepath.Join(c.cfg.GroupsDir(), "group_*.txt")); err == nil && len(groups) > 0 {
		lines = append(lines, fmt.Sprintf("%s,type=analysis group_count=%di", Measurement, len(groups)))
	}

	if size, ok := latestSize(filepath.Join(c.cfg.Paths.LogDir, "*.log")); ok {
		lines = append(lines, fmt.Sprintf("%s,type=logs latest_size_bytes=%di", Measurement, size))
	}
	if ts, ok := latestModTime(filepath.Join(c.cfg.Paths.LogDir, "final_consolidation_*.json")); ok {
		lines = append(lines, fmt.Sprintf("%s,type=runs last_consolidation_ts=%di", Measurement, ts))
	}

	if usage, err := fileutil.DiskUsage(c.cfg.Paths.Root); err == nil {
		lines = append(lines,
			fmt.Sprintf("%s,type=storage free_bytes=%di", Measurement, usage.Free),
			fmt.Sprintf("%s,type=storage used_bytes=%di", Measurement, usage.Used()),
			fmt.Sprintf("%s,type=storage total_bytes=%di", Measurement, usage.Total),
			fmt.Sprintf("%s,type=storage used_percent=%.2f", Measurement, usage.UsedPercent()),
		)
	} else {
		c.logger.Warn("storage census unavailable", logging.Error(err))
	}

	return lines, nil
}

// Write renders the collected records to w, one per line.
func (c *Collector) Write(ctx context.Context, w io.Writer) error {
	lines, err := c.Collect(ctx)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

type dirCensus struct {
	files  int
	photos int
	videos int
	bytes  int64
}

// censusDir counts every regular file below root, classifying media by
// extension. A missing root reports ok=false; unreadable entries inside an
// existing root are skipped.
func (c *Collector) censusDir(root string) (dirCensus, bool) {
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return dirCensus{}, false
	}

	var census dirCensus
	_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		census.files++
		census.bytes += info.Size()
		switch c.set.Kind(path) {
		case media.KindPhoto:
			census.photos++
		case media.KindVideo:
			census.videos++
		}
		return nil
	})
	return census, true
}

// latestSize returns the byte size of the newest file matching pattern.
func latestSize(pattern string) (int64, bool) {
	path, ok := latestMatch(pattern)
	if !ok {
		return 0, false
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	return info.Size(), true
}

// latestModTime returns the Unix modification time of the newest file
// matching pattern.
func latestModTime(pattern string) (int64, bool) {
	path, ok := latestMatch(pattern)
	if !ok {
		return 0, false
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	return info.ModTime().Unix(), true
}

func latestMatch(pattern string) (string, bool) {
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return "", false
	}
	latest := ""
	var latestMod int64
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); latest == "" || mod > latestMod {
			latest = match
			latestMod = mod
		}
	}
	return latest, latest != ""
}
