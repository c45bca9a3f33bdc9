// Package metadata recovers capture timestamps from media files.
//
// Photos are read through their EXIF block (DateTimeOriginal, falling back
// to DateTime); videos are probed for the container creation_time tag via
// the external ffprobe binary. Files without usable metadata simply report
// no capture date, which callers treat as "leave the layout alone" rather
// than an error.
package metadata

import (
	"context"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"shoebox/internal/media"
	"shoebox/internal/metadata/ffprobe"
)

// Extractor resolves capture dates for scanned media files.
type Extractor struct {
	set    *media.Set
	binary string
}

// NewExtractor builds an Extractor classifying files with set and probing
// videos with the given ffprobe binary (empty means "ffprobe" from PATH).
func NewExtractor(set *media.Set, ffprobeBinary string) *Extractor {
	return &Extractor{set: set, binary: ffprobeBinary}
}

// CaptureDate returns the capture timestamp recorded inside the file, or
// false when none is recoverable. Modification times are deliberately not
// consulted: they change on every copy and would make date-derived folder
// names unstable across re-runs.
func (e *Extractor) CaptureDate(ctx context.Context, path string) (time.Time, bool) {
	switch e.set.Kind(path) {
	case media.KindPhoto:
		return exifDate(path)
	case media.KindVideo:
		return e.videoDate(ctx, path)
	default:
		return time.Time{}, false
	}
}

func exifDate(path string) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, false
	}
	captured, err := x.DateTime()
	if err != nil {
		return time.Time{}, false
	}
	return captured, true
}

func (e *Extractor) videoDate(ctx context.Context, path string) (time.Time, bool) {
	result, err := ffprobe.Inspect(ctx, e.binary, path)
	if err != nil {
		return time.Time{}, false
	}
	return result.CreationTime()
}
