// Package media classifies files by extension and enumerates media trees.
package media

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"shoebox/internal/config"
)

// Kind buckets a file by its configured extension list.
type Kind int

const (
	KindUnknown Kind = iota
	KindPhoto
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindPhoto:
		return "photo"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Set answers extension-membership questions for the configured photo and
// video allow-lists. Matching is case-insensitive and ignores the dot.
type Set struct {
	photos map[string]struct{}
	videos map[string]struct{}
}

// NewSet builds a Set from normalized config extension lists.
func NewSet(exts config.Extensions) *Set {
	s := &Set{
		photos: make(map[string]struct{}, len(exts.Photos)),
		videos: make(map[string]struct{}, len(exts.Videos)),
	}
	for _, ext := range exts.Photos {
		s.photos[strings.ToLower(ext)] = struct{}{}
	}
	for _, ext := range exts.Videos {
		s.videos[strings.ToLower(ext)] = struct{}{}
	}
	return s
}

// Ext returns the lowercased extension of path without the leading dot.
func Ext(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// Kind reports which allow-list the path's extension belongs to.
func (s *Set) Kind(path string) Kind {
	ext := Ext(path)
	if _, ok := s.photos[ext]; ok {
		return KindPhoto
	}
	if _, ok := s.videos[ext]; ok {
		return KindVideo
	}
	return KindUnknown
}

// IsMedia reports whether the path carries a recognized media extension.
func (s *Set) IsMedia(path string) bool {
	return s.Kind(path) != KindUnknown
}

// Entry is one enumerated media file.
type Entry struct {
	Path    string
	Rel     string
	Size    int64
	ModTime time.Time
}

// WalkFunc enumerates media files under root in lexical order, invoking fn
// for each one. Hidden files and directories are skipped. Sources are never
// modified; the walk is read-only. Unreadable subtrees abort the walk with
// the underlying error so a flaky mount is surfaced rather than silently
// under-scanned.
func WalkFunc(ctx context.Context, root string, set *Set, fn func(Entry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !set.IsMedia(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return fn(Entry{
			Path:    path,
			Rel:     rel,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	})
}

// Walk collects every media entry under root in lexical order.
func Walk(ctx context.Context, root string, set *Set) ([]Entry, error) {
	var entries []Entry
	err := WalkFunc(ctx, root, set, func(entry Entry) error {
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// TotalSize sums the sizes of the entries.
func TotalSize(entries []Entry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return total
}
