package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock is the exclusive run lock shared by every mutating command. It guards
// the consolidation root as a whole: two copy or consolidate runs over the
// same tree would race on staging and manifests.
type Lock struct {
	fl *flock.Flock
}

// NewLock builds a lock on the given file, conventionally cfg.LockPath().
func NewLock(path string) *Lock {
	return &Lock{fl: flock.New(path)}
}

// Acquire takes the lock without blocking. A held lock means another
// shoebox process owns the tree. The lock file's directory is created if
// needed so locking works on a root that has not been populated yet.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.fl.Path()), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return errors.New("another shoebox run is already in progress")
	}
	return nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.fl.Path()
}
