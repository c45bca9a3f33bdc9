package report_test

import (
	"strings"
	"testing"
	"time"

	"shoebox/internal/report"
)

func twoEntryGroup() report.Group {
	return report.Group{
		ID:   1,
		Hash: "deadbeef",
		Entries: []report.Entry{
			{Rank: 1, Keep: true, Score: 85, Path: "/stage/sdb1/photos/a.jpg", Size: 5 << 20, Format: "JPG", Folder: "photos"},
			{Rank: 2, Keep: false, Score: 50, Path: "/stage/sdb1/backup/a.jpg", Size: 5 << 20, Format: "JPG", Folder: "backup"},
		},
		TotalSize:    10 << 20,
		SpaceSavings: 5 << 20,
	}
}

func TestWriteGroupFormat(t *testing.T) {
	var buf strings.Builder
	if err := report.WriteGroup(&buf, twoEntryGroup()); err != nil {
		t.Fatalf("WriteGroup: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"=== Duplicate Group 00001 ===",
		"Hash: deadbeef",
		"Files: 2",
		"[1] KEEP - Score: 85/100 (best quality)",
		"    Full: /stage/sdb1/photos/a.jpg",
		"[2] REMOVE - Score: 50/100",
		"    Full: /stage/sdb1/backup/a.jpg",
		"Recommendation: keep file [1], remove 1 duplicate",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestGroupFileName(t *testing.T) {
	if got := report.GroupFileName(7); got != "group_00007.txt" {
		t.Fatalf("unexpected name: %s", got)
	}
	if got := report.GroupFileName(12345); got != "group_12345.txt" {
		t.Fatalf("unexpected name: %s", got)
	}
}

func TestParseGroupRoundTrip(t *testing.T) {
	var buf strings.Builder
	if err := report.WriteGroup(&buf, twoEntryGroup()); err != nil {
		t.Fatalf("WriteGroup: %v", err)
	}

	plan, err := report.ParseGroup(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ParseGroup: %v", err)
	}
	if plan.ID != 1 {
		t.Fatalf("unexpected id: %d", plan.ID)
	}
	if plan.Hash != "deadbeef" {
		t.Fatalf("unexpected hash: %s", plan.Hash)
	}
	if plan.Keep != "/stage/sdb1/photos/a.jpg" {
		t.Fatalf("unexpected keep: %s", plan.Keep)
	}
	if len(plan.Remove) != 1 || plan.Remove[0] != "/stage/sdb1/backup/a.jpg" {
		t.Fatalf("unexpected removals: %v", plan.Remove)
	}
}

func TestParseGroupBindsMarkerAndPathAcrossLines(t *testing.T) {
	// Markers and Full: paths are separate lines; extra detail lines and
	// blank lines in between must not break the binding.
	raw := `=== Duplicate Group 00042 ===
Hash: cafef00d
Files: 3

Files ranked by quality (KEEP first, REMOVE others):

[1] KEEP - Score: 92.5/100 (best quality)

    Size: 12 MB
    Full: /stage/alpha/2023/wedding.cr2
    Format: CR2
    Folder: 2023

[2] REMOVE - Score: 60/100
    Full: /stage/alpha/old/wedding.cr2

[3] REMOVE - Score: 45/100
    Size: 12 MB
    Full: /stage/beta/temp/wedding.cr2

Recommendation: keep file [1], remove 2 duplicates
`
	plan, err := report.ParseGroup(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseGroup: %v", err)
	}
	if plan.ID != 42 {
		t.Fatalf("unexpected id: %d", plan.ID)
	}
	if plan.Keep != "/stage/alpha/2023/wedding.cr2" {
		t.Fatalf("unexpected keep: %s", plan.Keep)
	}
	if len(plan.Remove) != 2 {
		t.Fatalf("expected 2 removals, got %v", plan.Remove)
	}
	if plan.Remove[1] != "/stage/beta/temp/wedding.cr2" {
		t.Fatalf("unexpected removals: %v", plan.Remove)
	}
}

func TestParseGroupPathsWithSpaces(t *testing.T) {
	raw := `[1] KEEP - Score: 70/100
Full: /stage/sdb1/My Pictures/holiday snap.jpg
[2] REMOVE - Score: 50/100
Full: /stage/sdb1/tmp/holiday snap.jpg
`
	plan, err := report.ParseGroup(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("ParseGroup: %v", err)
	}
	if plan.Keep != "/stage/sdb1/My Pictures/holiday snap.jpg" {
		t.Fatalf("unexpected keep: %q", plan.Keep)
	}
}

func TestParseGroupErrors(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		fragment string
	}{
		{
			name:     "no keep entry",
			raw:      "[1] REMOVE - Score: 50/100\nFull: /stage/a\n",
			fragment: "no KEEP",
		},
		{
			name:     "multiple keeps",
			raw:      "[1] KEEP - Score: 80/100\nFull: /stage/a\n[2] KEEP - Score: 70/100\nFull: /stage/b\n",
			fragment: "multiple KEEP",
		},
		{
			name:     "path without marker",
			raw:      "Files ranked by quality (KEEP first, REMOVE others):\nFull: /stage/a\n",
			fragment: "without a KEEP/REMOVE marker",
		},
		{
			name:     "marker without path",
			raw:      "[1] KEEP - Score: 80/100\n[2] REMOVE - Score: 70/100\nFull: /stage/b\n",
			fragment: "previous entry",
		},
		{
			name:     "empty report",
			raw:      "",
			fragment: "no KEEP",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := report.ParseGroup(strings.NewReader(tc.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.fragment) {
				t.Fatalf("expected error containing %q, got %v", tc.fragment, err)
			}
		})
	}
}

func TestWriteAnalysisSummary(t *testing.T) {
	var buf strings.Builder
	summary := report.AnalysisSummary{
		GeneratedAt:      time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		TotalFiles:       10,
		UniqueFiles:      4,
		DuplicateGroups:  2,
		FilesInGroups:    6,
		DuplicatePercent: 60.0,
		SpaceSavings:     4 << 20,
		ExtensionCounts:  map[string]int{"jpg": 8, "mp4": 2},
		FolderCounts:     map[string]int{"photos": 7, "videos": 3},
		Warnings:         []string{"duplicate percentage 60.0% exceeds maximum 50.0%"},
	}
	if err := report.WriteAnalysisSummary(&buf, summary); err != nil {
		t.Fatalf("WriteAnalysisSummary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Duplicate percentage: 60.0%",
		"Files in duplicate groups: 6",
		"jpg",
		"! duplicate percentage",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriteFinalReportDryRun(t *testing.T) {
	var buf strings.Builder
	final := report.FinalReport{
		GeneratedAt:     time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		DryRun:          true,
		GroupsProcessed: 2,
		FilesKept:       2,
		FilesRemoved:    3,
		UniqueCopied:    4,
		SpaceSaved:      12 << 20,
		FinalFiles:      6,
		FinalBytes:      48 << 20,
	}
	if err := report.WriteFinalReport(&buf, final); err != nil {
		t.Fatalf("WriteFinalReport: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "dry-run") {
		t.Fatalf("expected dry-run marker:\n%s", out)
	}
	if strings.Contains(out, "Empty staging directories") {
		t.Fatalf("dry-run report must not mention pruning:\n%s", out)
	}
}
