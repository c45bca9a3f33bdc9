package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressRenderer adapts stage progress callbacks to a terminal progress
// bar, one bar per drive. On non-terminal writers it stays silent; the log
// file carries the detail instead. Copy callbacks arrive from worker
// goroutines, so updates are serialized.
type progressRenderer struct {
	out     io.Writer
	enabled bool

	mu    sync.Mutex
	drive string
	bar   *progressbar.ProgressBar
}

func newProgressRenderer(out io.Writer) *progressRenderer {
	return &progressRenderer{out: out, enabled: shouldColorize(out)}
}

// Scan renders an unbounded counter while a drive is being enumerated.
func (p *progressRenderer) Scan(drive string, files int) {
	if p == nil || !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil || p.drive != drive {
		p.finishLocked()
		p.drive = drive
		p.bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("scanning "+drive),
			progressbar.OptionShowCount(),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(p.out) }),
		)
	}
	_ = p.bar.Set(files)
}

// Copy renders a bounded bar across one drive's files.
func (p *progressRenderer) Copy(drive string, done, total int) {
	if p == nil || !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil || p.drive != drive {
		p.finishLocked()
		p.drive = drive
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("copying "+drive),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(p.out) }),
		)
	}
	_ = p.bar.Set(done)
}

// Finish closes out the active bar, if any.
func (p *progressRenderer) Finish() {
	if p == nil || !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finishLocked()
}

func (p *progressRenderer) finishLocked() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
