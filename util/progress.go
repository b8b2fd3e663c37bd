package util

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gosuri/uilive"
)

// ProgressPrinter multiplexes live status lines onto one terminal
// region, refreshing at a fixed frequency. Each line belongs to one
// producer that updates it through its ProgressLine.
type ProgressPrinter struct {
	lines     []*ProgressLine
	frequency time.Duration
	doneCh    chan struct{}

	writer  *uilive.Writer
	writers []io.Writer
}

func NewProgressPrinter(frequency time.Duration) *ProgressPrinter {
	return &ProgressPrinter{
		lines:     make([]*ProgressLine, 0),
		frequency: frequency,
		doneCh:    make(chan struct{}),

		writer:  uilive.New(),
		writers: make([]io.Writer, 0),
	}
}

// NewLine adds one live line. Add all lines before calling Start.
func (p *ProgressPrinter) NewLine() *ProgressLine {
	line := NewProgressLine()
	p.lines = append(p.lines, line)
	p.writers = append(p.writers, p.writer.Newline())
	return line
}

func (p *ProgressPrinter) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-p.doneCh:
				p.print()
				p.writer.Stop()
				return
			case <-ctx.Done():
				p.writer.Stop()
				return
			case <-time.After(p.frequency):
				p.print()
			}
		}
	}()
}

func (p *ProgressPrinter) Stop() {
	close(p.doneCh)
}

func (p *ProgressPrinter) print() {
	for i, line := range p.lines {
		fmt.Fprint(p.writers[i], line.Get()+"\n")
	}
	p.writer.Flush()
}

// ProgressLine holds the latest status text of one producer. It
// implements io.Writer so code that streams progress lines can be
// pointed at it directly; each write replaces the shown text.
type ProgressLine struct {
	mu        *sync.Mutex
	printable string
}

var _ io.Writer = &ProgressLine{}

func NewProgressLine() *ProgressLine {
	return &ProgressLine{
		mu:        new(sync.Mutex),
		printable: "",
	}
}

// Set the shown text (blocking)
func (l *ProgressLine) Set(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.printable = s
}

// Try to set the shown text (non-blocking)
func (l *ProgressLine) TrySet(s string) bool {
	if !l.mu.TryLock() {
		return false
	}
	defer l.mu.Unlock()
	l.printable = s
	return true
}

// Get the shown text (blocking)
func (l *ProgressLine) Get() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.printable
}

func (l *ProgressLine) Write(bs []byte) (int, error) {
	l.Set(strings.TrimRight(string(bs), "\n"))
	return len(bs), nil
}
