// Package report owns the plain-text report formats: per-group duplicate
// reports, the analysis summary, and the final consolidation report. The
// group format is a wire contract between the analyzer and the consolidator
// and must stay line-parseable across versions.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
)

// Entry is one ranked member of a duplicate group.
type Entry struct {
	Rank   int
	Keep   bool
	Score  float64
	Path   string
	Size   int64
	Format string
	Folder string
}

// Group is a duplicate set prepared for reporting, entries in rank order
// with the keeper first.
type Group struct {
	ID           int
	Hash         string
	Entries      []Entry
	TotalSize    int64
	SpaceSavings int64
}

// GroupFileName returns the report filename for a group id.
func GroupFileName(id int) string {
	return fmt.Sprintf("group_%05d.txt", id)
}

// WriteGroup renders a duplicate group in the durable report format. The
// KEEP/REMOVE marker line and the Full: path line are deliberately separate
// lines of each entry block; ParseGroup binds them back together.
func WriteGroup(w io.Writer, g Group) error {
	var err error
	write := func(format string, args ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, args...)
	}

	write("=== Duplicate Group %05d ===\n", g.ID)
	write("Hash: %s\n", g.Hash)
	write("Files: %d\n", len(g.Entries))
	write("Total size: %s\n", humanize.Bytes(uint64(g.TotalSize)))
	write("Space savings: %s\n", humanize.Bytes(uint64(g.SpaceSavings)))
	write("\nFiles ranked by quality (KEEP first, REMOVE others):\n\n")

	for _, entry := range g.Entries {
		action := "REMOVE"
		suffix := ""
		if entry.Keep {
			action = "KEEP"
			suffix = " (best quality)"
		}
		write("[%d] %s - Score: %s/100%s\n", entry.Rank, action, formatScore(entry.Score), suffix)
		write("    Full: %s\n", entry.Path)
		write("    Size: %s\n", humanize.Bytes(uint64(entry.Size)))
		write("    Format: %s\n", entry.Format)
		write("    Folder: %s\n", entry.Folder)
		write("\n")
	}

	removals := len(g.Entries) - 1
	noun := "duplicates"
	if removals == 1 {
		noun = "duplicate"
	}
	write("Recommendation: keep file [1], remove %d %s\n", removals, noun)
	write("Space saved by removing duplicates: %s\n", humanize.Bytes(uint64(g.SpaceSavings)))
	return err
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
