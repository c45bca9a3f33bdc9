package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"shoebox/internal/logging"
)

func TestCleanupOldLogsHonorsPatternAndExclusions(t *testing.T) {
	dir := t.TempDir()

	old := filepath.Join(dir, "final_report_old.json")
	recent := filepath.Join(dir, "final_report_new.json")
	excluded := filepath.Join(dir, "final_report_keep.json")
	unrelated := filepath.Join(dir, "notes.txt")

	for _, path := range []string{old, recent, excluded, unrelated} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	stale := time.Now().AddDate(0, 0, -90)
	for _, path := range []string{old, excluded, unrelated} {
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("chtimes %s: %v", path, err)
		}
	}

	logging.CleanupOldLogs(logging.NewNop(), 30, logging.RetentionTarget{
		Dir:     dir,
		Pattern: "final_report_*.json",
		Exclude: []string{excluded},
	})

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected %s removed, stat err=%v", old, err)
	}
	for _, path := range []string{recent, excluded, unrelated} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to remain: %v", path, err)
		}
	}
}

func TestCleanupOldLogsDisabledByZeroRetention(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ancient.log")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	stale := time.Now().AddDate(0, 0, -365)
	if err := os.Chtimes(path, stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	logging.CleanupOldLogs(logging.NewNop(), 0, logging.RetentionTarget{Dir: dir, Pattern: "*.log"})

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to remain with retention disabled: %v", err)
	}
}
