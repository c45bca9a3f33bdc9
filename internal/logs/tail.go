package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// LogName is the filename of the run log inside the configured log directory.
const LogName = "shoebox.log"

// scanBuffer sizes the line scanner: 64 KiB initial, 1 MiB ceiling. Console
// format log lines stay far below this; JSON lines with long error chains
// still fit.
func scanBuffer(s *bufio.Scanner) {
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
}

// Tail returns up to limit lines from the end of the file, plus the byte
// offset just past the final complete line for use with ReadFrom. A missing
// file yields no lines and offset zero; limit <= 0 yields no lines and the
// end-of-file offset, which is how follow mode starts at "now".
func Tail(path string, limit int) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		offset, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, offset, nil
	}

	// One forward pass through a fixed ring keeps memory bounded by limit
	// regardless of file size.
	ring := make([]string, limit)
	count := 0
	next := 0
	var offset int64

	scanner := bufio.NewScanner(file)
	scanBuffer(scanner)
	for scanner.Scan() {
		line := scanner.Text()
		ring[next] = line
		next = (next + 1) % limit
		if count < limit {
			count++
		}
		offset += int64(len(line)) + 1
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	lines := make([]string, 0, count)
	start := 0
	if count == limit {
		start = next
	}
	for i := 0; i < count; i++ {
		lines = append(lines, ring[(start+i)%limit])
	}
	return lines, offset, nil
}

// ReadFrom returns the complete lines starting at offset and the offset just
// past the last one. A missing file or an offset beyond the current size
// returns no lines; truncation resets the offset to zero so a rotated log is
// picked up from its start.
func ReadFrom(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, offset, nil
		}
		return nil, offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset > info.Size() {
		return nil, 0, nil
	}
	if offset < 0 {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek log file: %w", err)
	}

	var lines []string
	scanner := bufio.NewScanner(file)
	scanBuffer(scanner)
	for scanner.Scan() {
		line := scanner.Text()
		lines = append(lines, line)
		offset += int64(len(line)) + 1
	}
	if err := scanner.Err(); err != nil {
		return nil, offset, fmt.Errorf("read log file: %w", err)
	}
	return lines, offset, nil
}

// Follow polls the file from offset, passing each new line to emit, until
// ctx is done. Cancellation is the normal way out and is not reported as an
// error. The file may not exist yet; it is picked up once it appears.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, emit func(string)) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		lines, next, err := ReadFrom(path, offset)
		if err != nil {
			return err
		}
		for _, line := range lines {
			emit(line)
		}
		offset = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
