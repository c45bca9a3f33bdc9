package scanner_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"shoebox/internal/config"
	"shoebox/internal/logging"
	"shoebox/internal/manifest"
	"shoebox/internal/scanner"
	"shoebox/internal/testsupport"
)

func TestScanWritesPerDriveManifests(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDrive("alpha"), testsupport.WithDrive("beta"))
	alpha := testsupport.DrivePath(cfg, "alpha")
	beta := testsupport.DrivePath(cfg, "beta")
	testsupport.WriteFile(t, filepath.Join(alpha, "photos", "a.jpg"), 10)
	testsupport.WriteFile(t, filepath.Join(alpha, "videos", "clip.mp4"), 20)
	testsupport.WriteFile(t, filepath.Join(alpha, "notes.txt"), 5)
	testsupport.WriteFile(t, filepath.Join(beta, "b.jpg"), 30)

	s := scanner.New(cfg, logging.NewNop())
	result, err := s.Scan(context.Background(), nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if result.TotalFiles != 3 {
		t.Fatalf("expected 3 media files, got %d", result.TotalFiles)
	}
	if result.TotalBytes != 60 {
		t.Fatalf("expected 60 bytes, got %d", result.TotalBytes)
	}
	if result.DrivesScanned != 2 {
		t.Fatalf("expected 2 drives scanned, got %d", result.DrivesScanned)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	m, err := manifest.Load(manifest.SourcePath(cfg.ManifestDir(), "alpha"))
	if err != nil {
		t.Fatalf("load alpha manifest: %v", err)
	}
	if m.Metadata.Kind != manifest.KindSource {
		t.Fatalf("unexpected kind: %s", m.Metadata.Kind)
	}
	if m.Metadata.DriveLabel != "alpha" {
		t.Fatalf("unexpected drive label: %s", m.Metadata.DriveLabel)
	}
	if len(m.Files) != 2 {
		t.Fatalf("expected 2 files in alpha manifest, got %d", len(m.Files))
	}
	if m.Files[0].RelativePath != filepath.Join("photos", "a.jpg") {
		t.Fatalf("unexpected first entry: %s", m.Files[0].RelativePath)
	}
	for _, f := range m.Files {
		if f.Hash != "" {
			t.Fatalf("scan must not hash, got %q for %s", f.Hash, f.Path)
		}
		if f.Modified.IsZero() {
			t.Fatalf("expected modified time for %s", f.Path)
		}
	}
}

func TestScanRecordsInaccessibleDriveAndContinues(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDrive("good"))
	testsupport.WriteFile(t, filepath.Join(testsupport.DrivePath(cfg, "good"), "a.jpg"), 10)
	cfg.Drives = append(cfg.Drives, config.Drive{Label: "gone", Path: filepath.Join(testsupport.BaseDir(cfg), "missing")})

	s := scanner.New(cfg, logging.NewNop())
	result, err := s.Scan(context.Background(), nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.DrivesScanned != 1 {
		t.Fatalf("expected 1 drive scanned, got %d", result.DrivesScanned)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "not accessible") {
		t.Fatalf("expected accessibility error, got %v", result.Errors)
	}
	if result.TotalFiles != 1 {
		t.Fatalf("expected remaining drive to be scanned, got %d files", result.TotalFiles)
	}
}

func TestScanFailsWithoutDrives(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := scanner.New(cfg, logging.NewNop())
	if _, err := s.Scan(context.Background(), nil); err == nil {
		t.Fatal("expected error without configured drives")
	}
}

func TestScanInvokesProgressAtInterval(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDrive("alpha"))
	cfg.Process.ProgressInterval = 2
	drive := testsupport.DrivePath(cfg, "alpha")
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg"} {
		testsupport.WriteFile(t, filepath.Join(drive, name), 1)
	}

	var calls []int
	s := scanner.New(cfg, logging.NewNop())
	_, err := s.Scan(context.Background(), func(label string, files int) {
		if label != "alpha" {
			t.Fatalf("unexpected drive label: %s", label)
		}
		calls = append(calls, files)
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(calls) != 2 || calls[0] != 2 || calls[1] != 4 {
		t.Fatalf("unexpected progress calls: %v", calls)
	}
}

func TestScanRerunReplacesManifest(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDrive("alpha"))
	drive := testsupport.DrivePath(cfg, "alpha")
	testsupport.WriteFile(t, filepath.Join(drive, "a.jpg"), 10)

	s := scanner.New(cfg, logging.NewNop())
	if _, err := s.Scan(context.Background(), nil); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(drive, "b.jpg"), 10)
	if _, err := s.Scan(context.Background(), nil); err != nil {
		t.Fatalf("second scan: %v", err)
	}

	m, err := manifest.Load(manifest.SourcePath(cfg.ManifestDir(), "alpha"))
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if len(m.Files) != 2 {
		t.Fatalf("expected re-scan to replace manifest with 2 files, got %d", len(m.Files))
	}
}

func TestScannerHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDrive("alpha"))
	s := scanner.New(cfg, logging.NewNop())
	if h := s.HealthCheck(context.Background()); !h.Ready {
		t.Fatalf("expected healthy scanner, got %+v", h)
	}

	cfg.Drives[0].Path = filepath.Join(testsupport.BaseDir(cfg), "missing")
	if h := s.HealthCheck(context.Background()); h.Ready {
		t.Fatal("expected unhealthy scanner for missing drive")
	}

	empty := testsupport.NewConfig(t)
	if h := scanner.New(empty, logging.NewNop()).HealthCheck(context.Background()); h.Ready {
		t.Fatal("expected unhealthy scanner without drives")
	}
}
