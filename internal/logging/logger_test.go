package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shoebox/internal/logging"
	"shoebox/internal/services"
)

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "console-debug.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "debug",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleHeaderCarriesComponentDriveStage(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "console.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	component := logging.NewComponentLogger(logger, "copier")
	component.Info("copying drive",
		logging.String(logging.FieldDrive, "sdb1"),
		logging.String(logging.FieldStage, "copy"),
		logging.Int("files", 12),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if !strings.Contains(line, "[copier]") {
		t.Fatalf("expected component in header, got %q", line)
	}
	if !strings.Contains(line, "sdb1 (copy)") {
		t.Fatalf("expected drive/stage subject in header, got %q", line)
	}
	if !strings.Contains(line, "files: 12") {
		t.Fatalf("expected remaining attrs as fields, got %q", line)
	}
}

func TestJSONLoggerLowercasesLevel(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "log.json")

	logger, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Warn("short on space")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, `"level":"warn"`) {
		t.Fatalf("expected lowercase level key, got %q", text)
	}
	if !strings.Contains(text, `"msg":"short on space"`) {
		t.Fatalf("expected msg key, got %q", text)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "ctx.log")

	logger, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "run-42")
	ctx = services.WithStage(ctx, "analyze")
	logging.WithContext(ctx, logger).Info("grouping files")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, `"run_id":"run-42"`) {
		t.Fatalf("expected run_id field, got %q", text)
	}
	if !strings.Contains(text, `"stage":"analyze"`) {
		t.Fatalf("expected stage field, got %q", text)
	}
}

func TestNoopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("this should go nowhere", logging.Error(os.ErrNotExist))
}
