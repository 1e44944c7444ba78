package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress for long-running operations such as
// usage exports.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
}

// NewProgressReporter creates a text progress bar writing to w. A nil
// writer defaults to os.Stderr so piped command output stays clean.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &textProgress{writer: w}
}

type textProgress struct {
	mu      sync.Mutex
	total   int64
	current int64
	started time.Time
	writer  io.Writer
}

func (p *textProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.current = 0
	p.started = time.Now()
	p.render()
}

func (p *textProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = current
	p.render()
}

func (p *textProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

func (p *textProgress) render() {
	if p.total <= 0 {
		return
	}

	percent := float64(p.current) / float64(p.total) * 100
	const width = 40
	filled := int(width * percent / 100)
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", width-filled)

	rate := float64(p.current) / time.Since(p.started).Seconds()
	fmt.Fprintf(p.writer, "\r[%s] %.1f%% (%d/%d) %.0f records/s",
		bar, percent, p.current, p.total, rate)
}
