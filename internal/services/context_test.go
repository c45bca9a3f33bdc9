package services_test

import (
	"context"
	"testing"

	"shoebox/internal/services"
)

func TestRunIDRoundTrip(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "abc-123")
	id, ok := services.RunIDFromContext(ctx)
	if !ok || id != "abc-123" {
		t.Fatalf("expected run id abc-123, got %q (ok=%v)", id, ok)
	}
}

func TestEmptyValuesAreNotStored(t *testing.T) {
	ctx := context.Background()
	if got := services.WithRunID(ctx, ""); got != ctx {
		t.Fatal("empty run id should return the original context")
	}
	if got := services.WithStage(ctx, ""); got != ctx {
		t.Fatal("empty stage should return the original context")
	}
	if got := services.WithDrive(ctx, ""); got != ctx {
		t.Fatal("empty drive should return the original context")
	}
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage on a bare context")
	}
}

func TestStageAndDriveRoundTrip(t *testing.T) {
	ctx := services.WithStage(context.Background(), "copy")
	ctx = services.WithDrive(ctx, "sdb1")

	stage, ok := services.StageFromContext(ctx)
	if !ok || stage != "copy" {
		t.Fatalf("expected stage copy, got %q (ok=%v)", stage, ok)
	}
	drive, ok := services.DriveFromContext(ctx)
	if !ok || drive != "sdb1" {
		t.Fatalf("expected drive sdb1, got %q (ok=%v)", drive, ok)
	}
}
