package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"shoebox/internal/config"
	"shoebox/internal/deps"
	"shoebox/internal/fileutil"
	"shoebox/internal/logging"
	"shoebox/internal/pipeline"
	"shoebox/internal/stage"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show workspace, stage, and dependency status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			printSection(stdout, "Configuration", colorize, configurationLines(ctx, cfg, colorize))
			printSection(stdout, "Stages", colorize, stageLines(cmd, cfg, colorize))
			printSection(stdout, "Dependencies", colorize, dependencyLines(cfg, colorize))
			printSection(stdout, "Source Drives", colorize, driveLines(cfg, colorize))
			printSection(stdout, "Storage", colorize, storageLines(cfg, colorize))

			for _, line := range renderSectionHeader("Workspace", colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"Area", "Files", "Size", "Updated"},
				workspaceRows(cfg),
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func printSection(out io.Writer, title string, colorize bool, lines []string) {
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)
}

func configurationLines(ctx *commandContext, cfg *config.Config, colorize bool) []string {
	configDetail := ctx.configPath
	configKind := statusOK
	if !ctx.configExists {
		configDetail = fmt.Sprintf("%s (not found; defaults in use)", ctx.configPath)
		configKind = statusWarn
	}

	modeKind := statusOK
	modeDetail := "live"
	if cfg.Process.DryRun {
		modeKind = statusWarn
		modeDetail = "dry-run (previews only)"
	}

	return []string{
		renderStatusLine("Config", configKind, configDetail, colorize),
		renderStatusLine("Root", statusInfo, cfg.Paths.Root, colorize),
		renderStatusLine("Mode", modeKind, modeDetail, colorize),
		renderStatusLine("Drives", statusInfo, fmt.Sprintf("%d configured", len(cfg.Drives)), colorize),
		renderStatusLine("Parallel jobs", statusInfo, fmt.Sprintf("%d", cfg.Process.ParallelJobs), colorize),
		renderStatusLine("Backups", statusInfo, yesNo(cfg.Safety.BackupBeforeRemoval), colorize),
		renderStatusLine("Date folders", statusInfo, yesNo(cfg.Process.DateFolders), colorize),
	}
}

func stageLines(cmd *cobra.Command, cfg *config.Config, colorize bool) []string {
	checkers := pipeline.New(cfg, logging.NewNop()).HealthCheckers()
	results := stage.CheckAll(cmd.Context(), checkers...)
	lines := make([]string, 0, len(results))
	for _, health := range results {
		if health.Ready {
			lines = append(lines, renderStatusLine(health.Name, statusOK, "Ready", colorize))
			continue
		}
		detail := strings.TrimSpace(health.Detail)
		if detail == "" {
			detail = "not ready"
		}
		lines = append(lines, renderStatusLine(health.Name, statusError, detail, colorize))
	}
	return lines
}

func dependencyLines(cfg *config.Config, colorize bool) []string {
	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	lines := make([]string, 0, len(statuses))
	for _, dep := range statuses {
		if dep.Available {
			lines = append(lines, renderStatusLine(dep.Name, statusOK, fmt.Sprintf("Ready (command: %s)", dep.Command), colorize))
			continue
		}
		detail := dep.Detail
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
			detail = fmt.Sprintf("%s (optional: %s)", detail, dep.Description)
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
	}
	return lines
}

func driveLines(cfg *config.Config, colorize bool) []string {
	if len(cfg.Drives) == 0 {
		return []string{renderStatusLine("Drives", statusError, "none configured", colorize)}
	}
	lines := make([]string, 0, len(cfg.Drives))
	for _, drive := range cfg.Drives {
		info, err := os.Stat(drive.Path)
		switch {
		case err != nil || !info.IsDir():
			lines = append(lines, renderStatusLine(drive.Label, statusError, fmt.Sprintf("not accessible: %s", drive.Path), colorize))
		default:
			lines = append(lines, renderStatusLine(drive.Label, statusOK, drive.Path, colorize))
		}
	}
	return lines
}

func storageLines(cfg *config.Config, colorize bool) []string {
	lines := make([]string, 0, 2)

	usage, err := fileutil.DiskUsage(cfg.Paths.Root)
	if err != nil {
		lines = append(lines, renderStatusLine("Free space", statusInfo, "root not created yet", colorize))
	} else {
		detail := fmt.Sprintf("%s free of %s (%.0f%% used)",
			humanize.Bytes(usage.Free), humanize.Bytes(usage.Total), usage.UsedPercent())
		kind := statusOK
		if usage.Free < uint64(cfg.Safety.MinFreeSpaceGB)*humanize.GiByte {
			kind = statusWarn
			detail = fmt.Sprintf("%s; below min_free_space_gb=%d", detail, cfg.Safety.MinFreeSpaceGB)
		}
		lines = append(lines, renderStatusLine("Free space", kind, detail, colorize))
	}

	lines = append(lines, runLockLine(cfg, colorize))
	return lines
}

// runLockLine probes the run lock without creating the root tree.
func runLockLine(cfg *config.Config, colorize bool) string {
	if _, err := os.Stat(cfg.Paths.Root); err != nil {
		return renderStatusLine("Run lock", statusInfo, "idle", colorize)
	}
	lock := pipeline.NewLock(cfg.LockPath())
	if err := lock.Acquire(); err != nil {
		return renderStatusLine("Run lock", statusWarn, err.Error(), colorize)
	}
	_ = lock.Release()
	return renderStatusLine("Run lock", statusOK, "idle", colorize)
}

func workspaceRows(cfg *config.Config) [][]string {
	areas := []struct {
		name string
		path string
	}{
		{"incoming", cfg.IncomingDir()},
		{"manifests", cfg.ManifestDir()},
		{"duplicate groups", cfg.GroupsDir()},
		{"reports", cfg.ReportsDir()},
		{"final", cfg.FinalDir()},
	}
	if cfg.Safety.BackupBeforeRemoval {
		areas = append(areas, struct {
			name string
			path string
		}{"backup", cfg.BackupDir()})
	}

	rows := make([][]string, 0, len(areas))
	for _, area := range areas {
		files, bytes, updated := countTree(area.path)
		updatedText := "-"
		if !updated.IsZero() {
			updatedText = humanize.Time(updated)
		}
		rows = append(rows, []string{
			area.name,
			countPrinter.Sprintf("%d", files),
			humanize.Bytes(uint64(bytes)),
			updatedText,
		})
	}
	return rows
}

// countTree totals regular files under root, best effort: unreadable
// entries are skipped and a missing root counts as empty.
func countTree(root string) (int, int64, time.Time) {
	var files int
	var bytes int64
	var latest time.Time
	_ = filepath.WalkDir(root, func(_ string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		files++
		bytes += info.Size()
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
		return nil
	})
	return files, bytes, latest
}
