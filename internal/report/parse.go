package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// GroupPlan is the actionable result of parsing a group report: the single
// file to keep and the files to remove.
type GroupPlan struct {
	ID     int
	Hash   string
	Keep   string
	Remove []string
}

type parseState int

const (
	stateHeader parseState = iota
	stateEntries
	stateTrailer
)

type pendingAction int

const (
	actionNone pendingAction = iota
	actionKeep
	actionRemove
)

// ParseGroup reads a group report through a line-oriented state machine
// (header, entries, trailer). Within the entries section an action marker
// line ("[N] KEEP ..." or "[N] REMOVE ...") opens a file block and the next
// "Full:" line supplies its path, so markers and paths are matched across
// lines rather than expected on one. A report without exactly one KEEP entry
// is an error: every group must resolve to one survivor.
func ParseGroup(r io.Reader) (GroupPlan, error) {
	var plan GroupPlan
	state := stateHeader
	pending := actionNone
	keepSeen := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch state {
		case stateHeader:
			if strings.HasPrefix(line, "=== Duplicate Group") {
				plan.ID = parseGroupID(line)
				continue
			}
			if value, ok := strings.CutPrefix(line, "Hash:"); ok {
				plan.Hash = strings.TrimSpace(value)
				continue
			}
			if strings.HasPrefix(line, "Files ranked by quality") {
				state = stateEntries
				continue
			}
			// Entry marker with no section banner still starts the entries.
			if strings.HasPrefix(line, "[") {
				state = stateEntries
			} else {
				continue
			}
			fallthrough

		case stateEntries:
			if strings.HasPrefix(line, "Recommendation:") {
				state = stateTrailer
				continue
			}
			if strings.HasPrefix(line, "[") {
				action, err := parseActionMarker(line)
				if err != nil {
					return GroupPlan{}, fmt.Errorf("line %d: %w", lineNo, err)
				}
				if pending != actionNone {
					return GroupPlan{}, fmt.Errorf("line %d: action marker before previous entry's Full: path", lineNo)
				}
				if action == actionKeep {
					if keepSeen {
						return GroupPlan{}, fmt.Errorf("line %d: multiple KEEP entries", lineNo)
					}
					keepSeen = true
				}
				pending = action
				continue
			}
			if value, ok := strings.CutPrefix(line, "Full:"); ok {
				path := strings.TrimSpace(value)
				if path == "" {
					return GroupPlan{}, fmt.Errorf("line %d: empty Full: path", lineNo)
				}
				switch pending {
				case actionKeep:
					plan.Keep = path
				case actionRemove:
					plan.Remove = append(plan.Remove, path)
				default:
					return GroupPlan{}, fmt.Errorf("line %d: Full: path without a KEEP/REMOVE marker", lineNo)
				}
				pending = actionNone
				continue
			}
			// Size/Format/Folder detail lines carry no actionable state.
			continue

		case stateTrailer:
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return GroupPlan{}, fmt.Errorf("read group report: %w", err)
	}

	if pending != actionNone {
		return GroupPlan{}, fmt.Errorf("entry block ended without a Full: path")
	}
	if plan.Keep == "" {
		return GroupPlan{}, fmt.Errorf("no KEEP entry found")
	}
	return plan, nil
}

func parseActionMarker(line string) (pendingAction, error) {
	closing := strings.Index(line, "]")
	if closing < 0 {
		return actionNone, fmt.Errorf("malformed entry marker %q", line)
	}
	rest := strings.TrimSpace(line[closing+1:])
	switch {
	case strings.HasPrefix(rest, "KEEP"):
		return actionKeep, nil
	case strings.HasPrefix(rest, "REMOVE"):
		return actionRemove, nil
	default:
		return actionNone, fmt.Errorf("entry marker %q has no KEEP/REMOVE action", line)
	}
}

func parseGroupID(line string) int {
	fields := strings.Fields(line)
	for _, field := range fields {
		if id, err := strconv.Atoi(field); err == nil {
			return id
		}
	}
	return 0
}
