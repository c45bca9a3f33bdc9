package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shoebox/internal/logging"
	"shoebox/internal/manifest"
	"shoebox/internal/pipeline"
	"shoebox/internal/services"
	"shoebox/internal/stage"
	"shoebox/internal/testsupport"
)

func TestRunLiveEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDrive("usb1"))
	drive := testsupport.DrivePath(cfg, "usb1")
	// Two identical files under different names plus one unique file.
	testsupport.WriteFileSeed(t, filepath.Join(drive, "photos", "img.cr2"), 4096, 0x07)
	testsupport.WriteFileSeed(t, filepath.Join(drive, "backup", "img.jpg"), 4096, 0x07)
	testsupport.WriteFileSeed(t, filepath.Join(drive, "solo.mp4"), 1000, 0x08)

	p := pipeline.New(cfg, logging.NewNop())
	summary, err := p.Run(context.Background(), pipeline.Progress{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.RunID == "" {
		t.Fatal("summary missing run ID")
	}
	if summary.DryRun {
		t.Fatal("summary.DryRun = true for live config")
	}
	if summary.Scan == nil || summary.Scan.TotalFiles != 3 {
		t.Fatalf("scan result = %+v, want 3 files", summary.Scan)
	}
	if summary.Copy == nil || summary.Copy.CopiedFiles != 3 {
		t.Fatalf("copy result = %+v, want 3 copied", summary.Copy)
	}
	if summary.Combined == nil || summary.Combined.Metadata.TotalFiles != 3 {
		t.Fatalf("combined manifest = %+v, want 3 files", summary.Combined)
	}
	if summary.Analysis == nil || summary.Analysis.DuplicateGroups != 1 ||
		summary.Analysis.FilesInGroups != 2 || summary.Analysis.UniqueFiles != 1 {
		t.Fatalf("analysis result = %+v, want 1 group of 2 and 1 unique", summary.Analysis)
	}
	cons := summary.Consolidation
	if cons == nil || cons.FilesKept != 1 || cons.FilesRemoved != 1 || cons.UniqueCopied != 1 {
		t.Fatalf("consolidation result = %+v, want 1 kept, 1 removed, 1 unique", cons)
	}
	if cons.FinalFiles != 2 {
		t.Fatalf("FinalFiles = %d, want 2", cons.FinalFiles)
	}
	if errs := summary.Errors(); len(errs) != 0 {
		t.Fatalf("summary errors = %v, want none", errs)
	}

	// The RAW member wins its group; the archive holds exactly it and the
	// unique file.
	assertFileSize(t, filepath.Join(cfg.FinalDir(), "photos", "img.cr2"), 4096)
	assertFileSize(t, filepath.Join(cfg.FinalDir(), "solo.mp4"), 1000)
	if _, err := os.Stat(filepath.Join(cfg.IncomingDir(), "usb1", "backup")); !os.IsNotExist(err) {
		t.Fatalf("staged duplicate folder survived, stat err = %v", err)
	}

	// A second run over the same state converges: the keeper resolves onto
	// its landed copy instead of minting suffixed names.
	again, err := p.Run(context.Background(), pipeline.Progress{})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if again.Consolidation.FinalFiles != 2 {
		t.Fatalf("FinalFiles after re-run = %d, want 2", again.Consolidation.FinalFiles)
	}
	entries, err := os.ReadDir(filepath.Join(cfg.FinalDir(), "photos"))
	if err != nil {
		t.Fatalf("read archive dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "img.cr2" {
		t.Fatalf("archive photos dir = %v, want only img.cr2", entries)
	}
}

func TestRunDryRunFromScratchStopsAtAnalyze(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDrive("usb1"), testsupport.WithDryRun(true))
	testsupport.WriteFile(t, filepath.Join(testsupport.DrivePath(cfg, "usb1"), "a.jpg"), 100)

	p := pipeline.New(cfg, logging.NewNop())
	_, err := p.Run(context.Background(), pipeline.Progress{})
	if err == nil {
		t.Fatal("Run succeeded without a combined manifest")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}

	// The dry run staged nothing.
	entries, err := os.ReadDir(cfg.IncomingDir())
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("staging not empty after dry run: %v", entries)
	}
}

func TestRunFailsWhenLockHeld(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDrive("usb1"))

	holder := pipeline.NewLock(cfg.LockPath())
	if err := holder.Acquire(); err != nil {
		t.Fatalf("acquire holder lock: %v", err)
	}
	defer holder.Release()

	p := pipeline.New(cfg, logging.NewNop())
	_, err := p.Run(context.Background(), pipeline.Progress{})
	if err == nil {
		t.Fatal("Run succeeded while lock was held")
	}
	if !strings.Contains(err.Error(), "already in progress") {
		t.Fatalf("error = %v, want held-lock message", err)
	}
}

func TestHealthCheckersCoverEveryStage(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDrive("usb1"))
	p := pipeline.New(cfg, logging.NewNop())

	checks := stage.CheckAll(context.Background(), p.HealthCheckers()...)
	if len(checks) != 4 {
		t.Fatalf("CheckAll returned %d results, want 4", len(checks))
	}
	// The analyzer reports unready until a combined manifest exists.
	if stage.AllReady(checks) {
		t.Fatal("AllReady = true before any copy run")
	}

	testsupport.WriteCombinedManifest(t, cfg, []manifest.File{
		{Path: filepath.Join(cfg.IncomingDir(), "usb1", "a.jpg"), RelativePath: "a.jpg", Size: 10, Hash: "aaa"},
	})
	checks = stage.CheckAll(context.Background(), p.HealthCheckers()...)
	if !stage.AllReady(checks) {
		for _, h := range checks {
			t.Logf("%s ready=%v detail=%s", h.Name, h.Ready, h.Detail)
		}
		t.Fatal("AllReady = false with manifest in place")
	}
}

func assertFileSize(t *testing.T, path string, size int64) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if info.Size() != size {
		t.Fatalf("%s size = %d, want %d", path, info.Size(), size)
	}
}
