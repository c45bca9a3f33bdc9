package stage

import (
	"fmt"
	"os"

	"shoebox/internal/fileutil"
)

// CheckDir returns an unhealthy record when path is missing or not a
// directory. Stages use it for the directories they read.
func CheckDir(name, path string) Health {
	info, err := os.Stat(path)
	if err != nil {
		return Unhealthy(name, fmt.Sprintf("directory not accessible: %s", path))
	}
	if !info.IsDir() {
		return Unhealthy(name, fmt.Sprintf("not a directory: %s", path))
	}
	return Healthy(name)
}

// CheckWritableDir extends CheckDir with a writability probe for the
// directories a stage mutates.
func CheckWritableDir(name, path string) Health {
	if h := CheckDir(name, path); !h.Ready {
		return h
	}
	if !fileutil.Writable(path) {
		return Unhealthy(name, fmt.Sprintf("directory not writable: %s", path))
	}
	return Healthy(name)
}

// CheckFile returns an unhealthy record when path is missing or a directory.
// Stages use it for artifacts an earlier stage must have produced.
func CheckFile(name, path string) Health {
	info, err := os.Stat(path)
	if err != nil {
		return Unhealthy(name, fmt.Sprintf("file not found: %s", path))
	}
	if info.IsDir() {
		return Unhealthy(name, fmt.Sprintf("expected a file: %s", path))
	}
	return Healthy(name)
}
