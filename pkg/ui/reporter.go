package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Summary describes a finished build
type Summary struct {
	Records       int
	Skipped       int
	Output        string
	SilhouetteDir string
	Duration      time.Duration
}

// Reporter receives progress events from the pipeline. Calls come from a
// single goroutine.
type Reporter interface {
	Started(startID, maxID int)
	Resumed(lastID, records int)
	Added(id int, name string)
	Skipped(id int)
	CheckpointSaved(lastID, records int)
	Done(s Summary)
}

// Terminal prints one human-readable line per event
type Terminal struct {
	mu      sync.Mutex
	w       io.Writer
	tracker *StatusTracker
}

// NewTerminal creates a reporter writing to w
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w, tracker: NewStatusTracker(0)}
}

func (t *Terminal) Started(startID, maxID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := maxID - startID + 1
	if total < 0 {
		total = 0
	}
	t.tracker = NewStatusTracker(total)
	fmt.Fprintf(t.w, "%s ids %d..%d\n", Magenta("[BUILDING]"), startID, maxID)
}

func (t *Terminal) Resumed(lastID, records int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "%s from id %d with %d records\n", Cyan("[RESUMING]"), lastID+1, records)
}

func (t *Terminal) Added(id int, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tracker.Added++
	fmt.Fprintf(t.w, "%s #%04d %s %s\n", Green("[ADDED]"), id, name, Dim(t.tracker.GetProgressBar()))
}

func (t *Terminal) Skipped(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tracker.Skipped++
	fmt.Fprintf(t.w, "%s #%04d %s\n", Yellow("[SKIPPED]"), id, Dim(t.tracker.GetProgressBar()))
}

func (t *Terminal) CheckpointSaved(lastID, records int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "%s through id %d (%d records)\n", Cyan("[CHECKPOINT]"), lastID, records)
}

func (t *Terminal) Done(s Summary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "%s %d records saved to %s (%d skipped) in %s\n",
		Green("[COMPLETE]"), s.Records, s.Output, s.Skipped, s.Duration.Round(time.Second))
	if s.SilhouetteDir != "" {
		fmt.Fprintf(t.w, "%s %s\n", Cyan("Silhouettes:"), s.SilhouetteDir)
	}
}

// Nop discards every event
type Nop struct{}

func (Nop) Started(int, int)         {}
func (Nop) Resumed(int, int)         {}
func (Nop) Added(int, string)        {}
func (Nop) Skipped(int)              {}
func (Nop) CheckpointSaved(int, int) {}
func (Nop) Done(Summary)             {}
