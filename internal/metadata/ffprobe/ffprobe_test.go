package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCreationTimeLayouts(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  time.Time
	}{
		{
			name:  "iso with fractional seconds",
			value: "2023-06-19T22:41:11.000000Z",
			want:  time.Date(2023, 6, 19, 22, 41, 11, 0, time.UTC),
		},
		{
			name:  "rfc3339",
			value: "2023-06-19T22:41:11Z",
			want:  time.Date(2023, 6, 19, 22, 41, 11, 0, time.UTC),
		},
		{
			name:  "legacy space separated",
			value: "2023-06-19 22:41:11",
			want:  time.Date(2023, 6, 19, 22, 41, 11, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Result{Format: Format{Tags: map[string]string{"creation_time": tc.value}}}
			got, ok := result.CreationTime()
			if !ok {
				t.Fatal("expected creation time")
			}
			if !got.Equal(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCreationTimeMissingOrInvalid(t *testing.T) {
	if _, ok := (Result{}).CreationTime(); ok {
		t.Fatal("expected no creation time without tags")
	}
	result := Result{Format: Format{Tags: map[string]string{"creation_time": "not a date"}}}
	if _, ok := result.CreationTime(); ok {
		t.Fatal("expected no creation time for unparseable tag")
	}
}

func TestCreationTimeCaseInsensitiveKey(t *testing.T) {
	result := Result{Format: Format{Tags: map[string]string{"Creation_Time": "2023-06-19T22:41:11Z"}}}
	if _, ok := result.CreationTime(); !ok {
		t.Fatal("expected tag key match to ignore case")
	}
}

func TestResultHelpers(t *testing.T) {
	result := Result{Format: Format{Duration: "123.45", Size: "1000"}}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad", Size: "-1"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestInspectParsesStubOutput(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "fakeprobe")
	script := "#!/bin/sh\necho '{\"format\":{\"filename\":\"clip.mp4\",\"duration\":\"5.0\",\"tags\":{\"creation_time\":\"2023-06-19T22:41:11.000000Z\"}}}'\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	result, err := Inspect(context.Background(), stub, "clip.mp4")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if result.Format.Filename != "clip.mp4" {
		t.Fatalf("unexpected filename: %s", result.Format.Filename)
	}
	created, ok := result.CreationTime()
	if !ok {
		t.Fatal("expected creation time from stub output")
	}
	if created.Year() != 2023 {
		t.Fatalf("unexpected year: %d", created.Year())
	}
	if len(result.RawJSON()) == 0 {
		t.Fatal("expected raw payload to be retained")
	}
}

func TestInspectReportsCommandFailure(t *testing.T) {
	if _, err := Inspect(context.Background(), "/nonexistent/ffprobe", "clip.mp4"); err == nil {
		t.Fatal("expected error for missing binary")
	}
}
