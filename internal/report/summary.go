package report

import (
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const timestampLayout = "2006-01-02 15:04:05"

// AnalysisSummary aggregates one duplicate-analysis run for the summary
// report. Percent is a file-count ratio: files inside duplicate groups over
// all hashed files.
type AnalysisSummary struct {
	GeneratedAt      time.Time
	ManifestPath     string
	TotalFiles       int
	UniqueFiles      int
	DuplicateGroups  int
	FilesInGroups    int
	DuplicatePercent float64
	SpaceSavings     int64
	ExtensionCounts  map[string]int
	FolderCounts     map[string]int
	Warnings         []string
}

// WriteAnalysisSummary renders the aggregate duplicate-analysis report.
func WriteAnalysisSummary(w io.Writer, s AnalysisSummary) error {
	printer := message.NewPrinter(language.English)
	var err error
	write := func(format string, args ...any) {
		if err != nil {
			return
		}
		_, err = printer.Fprintf(w, format, args...)
	}

	write("Duplicate Analysis Summary\n")
	write("==========================\n")
	write("Generated: %s\n", s.GeneratedAt.Format(timestampLayout))
	if s.ManifestPath != "" {
		write("Manifest: %s\n", s.ManifestPath)
	}
	write("\n")
	write("Total files analyzed: %d\n", s.TotalFiles)
	write("Unique files: %d\n", s.UniqueFiles)
	write("Duplicate groups: %d\n", s.DuplicateGroups)
	write("Files in duplicate groups: %d\n", s.FilesInGroups)
	write("Duplicate percentage: %.1f%%\n", s.DuplicatePercent)
	write("Recoverable space: %s\n", humanize.Bytes(uint64(s.SpaceSavings)))

	if len(s.ExtensionCounts) > 0 {
		write("\nFiles by extension:\n")
		for _, line := range sortedCounts(s.ExtensionCounts) {
			write("  %-12s %d\n", line.key, line.count)
		}
	}
	if len(s.FolderCounts) > 0 {
		write("\nFiles by top-level folder:\n")
		for _, line := range sortedCounts(s.FolderCounts) {
			write("  %-24s %d\n", line.key, line.count)
		}
	}
	if len(s.Warnings) > 0 {
		write("\nWarnings:\n")
		for _, warning := range s.Warnings {
			write("  ! %s\n", warning)
		}
	}
	return err
}

// FinalReport aggregates one consolidation run.
type FinalReport struct {
	GeneratedAt     time.Time
	DryRun          bool
	GroupsProcessed int
	FilesKept       int
	FilesRemoved    int
	UniqueCopied    int
	SpaceSaved      int64
	FinalFiles      int
	FinalBytes      int64
	EmptyDirsPruned int
	Errors          []string
}

// WriteFinalReport renders the human-readable consolidation report.
func WriteFinalReport(w io.Writer, r FinalReport) error {
	printer := message.NewPrinter(language.English)
	var err error
	write := func(format string, args ...any) {
		if err != nil {
			return
		}
		_, err = printer.Fprintf(w, format, args...)
	}

	write("Consolidation Report\n")
	write("====================\n")
	write("Generated: %s\n", r.GeneratedAt.Format(timestampLayout))
	if r.DryRun {
		write("Mode: dry-run (no files were modified)\n")
	} else {
		write("Mode: live\n")
	}
	write("\n")
	write("Duplicate groups processed: %d\n", r.GroupsProcessed)
	write("Files kept: %d\n", r.FilesKept)
	write("Duplicates removed: %d\n", r.FilesRemoved)
	write("Unique files copied: %d\n", r.UniqueCopied)
	write("Space saved: %s\n", humanize.Bytes(uint64(r.SpaceSaved)))
	write("Final collection: %d files, %s\n", r.FinalFiles, humanize.Bytes(uint64(r.FinalBytes)))
	if !r.DryRun {
		write("Empty staging directories pruned: %d\n", r.EmptyDirsPruned)
	}
	if len(r.Errors) > 0 {
		write("\nErrors (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			write("  ! %s\n", e)
		}
	}
	return err
}

type countLine struct {
	key   string
	count int
}

func sortedCounts(counts map[string]int) []countLine {
	lines := make([]countLine, 0, len(counts))
	for key, count := range counts {
		lines = append(lines, countLine{key: key, count: count})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].count != lines[j].count {
			return lines[i].count > lines[j].count
		}
		return lines[i].key < lines[j].key
	})
	return lines
}
