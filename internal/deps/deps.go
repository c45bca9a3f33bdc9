// Package deps reports the availability of the external binaries shoebox
// shells out to. Checks are advisory: the status command renders them so a
// missing tool is visible before a run depends on it.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"shoebox/internal/config"
)

// Requirement defines an external dependency shoebox relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements returns the external binaries the configured pipeline can
// invoke. ffprobe is only consulted for video capture dates, so it stays
// optional unless date folders are enabled.
func Requirements(cfg *config.Config) []Requirement {
	ffprobe := Requirement{
		Name:        "ffprobe",
		Command:     "ffprobe",
		Description: "reads video container creation times for date folders",
		Optional:    true,
	}
	if cfg != nil {
		ffprobe.Command = cfg.FFprobeBinary()
		if cfg.Process.DateFolders {
			ffprobe.Optional = false
			ffprobe.Description = "required while date_folders is enabled"
		}
	}
	return []Requirement{ffprobe}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}
