package stage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckDir(t *testing.T) {
	dir := t.TempDir()
	if h := CheckDir("scanner", dir); !h.Ready {
		t.Fatalf("expected ready, got %+v", h)
	}
	if h := CheckDir("scanner", filepath.Join(dir, "missing")); h.Ready {
		t.Fatal("expected unhealthy for missing directory")
	}

	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if h := CheckDir("scanner", file); h.Ready {
		t.Fatal("expected unhealthy for non-directory")
	}
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "manifest.json")
	if h := CheckFile("analyzer", file); h.Ready {
		t.Fatal("expected unhealthy for missing file")
	}
	if err := os.WriteFile(file, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if h := CheckFile("analyzer", file); !h.Ready {
		t.Fatalf("expected ready, got %+v", h)
	}
	if h := CheckFile("analyzer", dir); h.Ready {
		t.Fatal("expected unhealthy for directory")
	}
}

type fixedChecker struct {
	health Health
}

func (f fixedChecker) HealthCheck(context.Context) Health { return f.health }

func TestCheckAll(t *testing.T) {
	results := CheckAll(context.Background(),
		fixedChecker{Healthy("scanner")},
		fixedChecker{Unhealthy("copier", "staging missing")},
	)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "scanner" || !results[0].Ready {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
	if AllReady(results) {
		t.Fatal("expected AllReady to be false")
	}
	if !AllReady(results[:1]) {
		t.Fatal("expected AllReady to be true for healthy subset")
	}
}
