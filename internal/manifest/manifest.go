// Package manifest defines the durable JSON artifacts that carry pipeline
// state between stages. Each stage writes its manifest once per run and
// downstream stages only ever read it; re-running a stage atomically replaces
// the file for that drive and kind.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Manifest kinds. Source manifests describe untouched drives, copied
// manifests describe verified staging transfers, and the combined manifest is
// the union of every copied manifest.
const (
	KindSource   = "source"
	KindCopied   = "copied"
	KindCombined = "combined"
)

// CombinedName is the filename of the merged copy manifest the analyzer reads.
const CombinedName = "copied_files_combined.json"

// File is one media file record. Identity is the SHA256 content hash; the
// relative path is positional metadata only. Records are immutable once
// written to a manifest.
type File struct {
	Path         string    `json:"path"`
	RelativePath string    `json:"relative_path"`
	Size         int64     `json:"size"`
	Hash         string    `json:"hash,omitempty"`
	Modified     time.Time `json:"modified"`
}

// Metadata describes the manifest itself.
type Metadata struct {
	Kind            string    `json:"kind"`
	Created         time.Time `json:"created"`
	DriveLabel      string    `json:"drive_label,omitempty"`
	DrivePath       string    `json:"drive_path,omitempty"`
	TotalFiles      int       `json:"total_files"`
	TotalSize       int64     `json:"total_size"`
	CopiedFiles     int       `json:"copied_files,omitempty"`
	SkippedFiles    int       `json:"skipped_files,omitempty"`
	FailedFiles     int       `json:"failed_files,omitempty"`
	SourceManifests []string  `json:"source_manifests,omitempty"`
}

// Manifest is an ordered sequence of file records plus metadata.
type Manifest struct {
	Files    []File   `json:"files"`
	Metadata Metadata `json:"metadata"`
}

// New builds a manifest of the given kind, stamping creation time and totals.
// File order is preserved as supplied.
func New(kind string, files []File) *Manifest {
	m := &Manifest{
		Files: files,
		Metadata: Metadata{
			Kind:       kind,
			Created:    time.Now().UTC(),
			TotalFiles: len(files),
		},
	}
	for _, f := range files {
		m.Metadata.TotalSize += f.Size
	}
	return m
}

// SetDrive records which source drive this manifest describes.
func (m *Manifest) SetDrive(label, path string) {
	m.Metadata.DriveLabel = label
	m.Metadata.DrivePath = path
}

// SourcePath returns the manifest filename for a drive's scan result.
func SourcePath(dir, label string) string {
	return filepath.Join(dir, label+"_source_manifest.json")
}

// CopiedPath returns the manifest filename for a drive's copy result.
func CopiedPath(dir, label string) string {
	return filepath.Join(dir, label+"_copied_manifest.json")
}

// CombinedPath returns the merged copy manifest filename.
func CombinedPath(dir string) string {
	return filepath.Join(dir, CombinedName)
}

// Write persists the manifest as indented JSON via a temp file and rename so
// readers never observe a partial manifest.
func (m *Manifest) Write(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp manifest: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp manifest: %w", err)
	}
	return nil
}

// Load reads a manifest from disk.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// Combine unions every per-drive copy manifest in dir into one combined
// manifest, ordered by manifest filename for determinism. It returns an error
// when no copy manifest exists, which means the copy phase has not run.
func Combine(dir string) (*Manifest, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*_copied_manifest.json"))
	if err != nil {
		return nil, fmt.Errorf("glob copy manifests: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no copy manifests found in %s; run the copy phase first", dir)
	}
	sort.Strings(matches)

	var files []File
	sources := make([]string, 0, len(matches))
	for _, path := range matches {
		m, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		files = append(files, m.Files...)
		sources = append(sources, filepath.Base(path))
	}

	combined := New(KindCombined, files)
	combined.Metadata.SourceManifests = sources
	return combined, nil
}

// CountByHash tallies how many files carry each content hash. Records with an
// empty hash are excluded; they were never verified and cannot participate in
// duplicate detection.
func (m *Manifest) CountByHash() map[string]int {
	counts := make(map[string]int, len(m.Files))
	for _, f := range m.Files {
		if f.Hash == "" {
			continue
		}
		counts[f.Hash]++
	}
	return counts
}
