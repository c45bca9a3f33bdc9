// Package quality implements the deterministic heuristic used to rank
// duplicate files. A score is derived from format, size, and folder context
// only; it is recomputed on every analysis run and never persisted.
package quality

import (
	"path/filepath"
	"strings"

	"shoebox/internal/config"
	"shoebox/internal/media"
)

// Camera raw formats. These rank above any processed export so deduplication
// keeps originals.
var rawExtensions = map[string]struct{}{
	"raw": {}, "cr2": {}, "cr3": {}, "nef": {}, "nrw": {}, "arw": {},
	"srf": {}, "sr2": {}, "dng": {}, "orf": {}, "raf": {}, "rw2": {},
	"pef": {}, "srw": {}, "x3f": {}, "3fr": {}, "erf": {}, "mrw": {},
}

// Scorer computes quality scores from configured weights. Identical inputs
// and configuration always produce identical scores.
type Scorer struct {
	cfg config.Quality
	set *media.Set
}

// NewScorer builds a Scorer over the configured weights and extension lists.
func NewScorer(cfg config.Quality, set *media.Set) *Scorer {
	return &Scorer{cfg: cfg, set: set}
}

// Score rates a file on the 0-100 scale: a format base score, folder-context
// adjustments from the parent (full weight) and grandparent (half weight)
// directory names, and a size bonus checked largest threshold first.
func (s *Scorer) Score(path string, size int64) float64 {
	score := float64(s.formatScore(path, size))

	parent := filepath.Base(filepath.Dir(path))
	grandparent := filepath.Base(filepath.Dir(filepath.Dir(path)))
	score += s.folderAdjustment(parent)
	score += s.folderAdjustment(grandparent) / 2

	score += float64(s.sizeBonus(size))

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func (s *Scorer) formatScore(path string, size int64) int {
	ext := media.Ext(path)
	if _, ok := rawExtensions[ext]; ok {
		return s.cfg.RawScore
	}
	switch ext {
	case "jpg", "jpeg":
		if size > mb(s.cfg.PhotoLargeMB) {
			return s.cfg.LargeJpegScore
		}
		return s.cfg.JpegScore
	case "png":
		return s.cfg.PngScore
	case "heic", "heif":
		return s.cfg.HeicScore
	}
	if s.set.Kind(path) == media.KindVideo {
		if size > mb(s.cfg.VideoLargeMB) {
			return s.cfg.LargeVideoScore
		}
		return s.cfg.VideoScore
	}
	return s.cfg.DefaultScore
}

// folderAdjustment classifies a directory name against the keyword lists,
// first match wins: organized > meaningful > backup > junk.
func (s *Scorer) folderAdjustment(name string) float64 {
	name = strings.ToLower(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return 0
	}
	if containsAny(name, s.cfg.OrganizedKeywords) {
		return float64(s.cfg.OrganizedBonus)
	}
	if containsAny(name, s.cfg.MeaningfulKeywords) {
		return float64(s.cfg.MeaningfulBonus)
	}
	if containsAny(name, s.cfg.BackupKeywords) {
		return -float64(s.cfg.BackupPenalty)
	}
	if containsAny(name, s.cfg.JunkKeywords) {
		return -float64(s.cfg.JunkPenalty)
	}
	return 0
}

// sizeBonus must test the larger threshold first so a file above both gets
// the large bonus, not the medium one.
func (s *Scorer) sizeBonus(size int64) int {
	if size > mb(s.cfg.LargeBonusMB) {
		return s.cfg.LargeBonus
	}
	if size > mb(s.cfg.MediumBonusMB) {
		return s.cfg.MediumBonus
	}
	return 0
}

func containsAny(name string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(name, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

func mb(v int) int64 {
	return int64(v) * 1024 * 1024
}
