package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	content := []byte("hello world")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("copied content mismatch: got %q want %q", got, content)
	}
}

func TestCopyFileHashReturnsDigest(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	content := []byte("best-content")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	sum := sha256.Sum256(content)
	want := hex.EncodeToString(sum[:])

	got, err := CopyFileHash(src, dst)
	if err != nil {
		t.Fatalf("CopyFileHash: %v", err)
	}
	if got != want {
		t.Fatalf("hash mismatch: got %s want %s", got, want)
	}

	dstHash, err := HashFile(dst)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if dstHash != want {
		t.Fatalf("destination hash mismatch: got %s want %s", dstHash, want)
	}
}

func TestHashFileStableAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.jpg")
	if err := os.WriteFile(path, []byte("stable bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	first, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("hash not stable: %s vs %s", first, second)
	}
}

func TestCopyFileVerifiedMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFileVerified(filepath.Join(dir, "missing.bin"), filepath.Join(dir, "out.bin"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestFreeSpaceUsesStatfs(t *testing.T) {
	orig := statfsFunc
	defer func() { statfsFunc = orig }()

	statfsFunc = func(string) (uint64, uint64, error) {
		return 500 << 30, 42 << 30, nil
	}
	free, err := FreeSpace("/anywhere")
	if err != nil {
		t.Fatalf("FreeSpace: %v", err)
	}
	if free != 42<<30 {
		t.Fatalf("unexpected free bytes: %d", free)
	}

	statfsFunc = func(string) (uint64, uint64, error) {
		return 0, 0, errors.New("mount gone")
	}
	if _, err := FreeSpace("/anywhere"); err == nil {
		t.Fatal("expected statfs error to propagate")
	}
}

func TestRemoveEmptyDirs(t *testing.T) {
	root := t.TempDir()
	keep := filepath.Join(root, "keep")
	emptyLeaf := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(keep, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(emptyLeaf, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(keep, "file.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	removed, err := RemoveEmptyDirs(root)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed dirs (a/b/c chain), got %d", removed)
	}
	if _, err := os.Stat(filepath.Join(root, "a")); !os.IsNotExist(err) {
		t.Fatal("expected empty chain to be removed")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Fatalf("expected non-empty dir to remain: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("expected root to remain: %v", err)
	}
}
