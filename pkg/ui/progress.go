package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	barWidth      = 20
)

// StatusTracker keeps track of build progress
type StatusTracker struct {
	Total     int
	Added     int
	Skipped   int
	StartTime time.Time
}

// NewStatusTracker creates a tracker for total ids
func NewStatusTracker(total int) *StatusTracker {
	return &StatusTracker{
		Total:     total,
		StartTime: time.Now(),
	}
}

// Done returns the number of ids that finished either way
func (st *StatusTracker) Done() int {
	return st.Added + st.Skipped
}

// GetProgressBar returns a formatted bar of finished ids against the total
func (st *StatusTracker) GetProgressBar() string {
	filled := 0
	if st.Total > 0 {
		filled = st.Done() * barWidth / st.Total
	}
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, barWidth-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, st.Done(), st.Total)
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// GetRate returns finished ids per minute
func (st *StatusTracker) GetRate() float64 {
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.Done()) / elapsed
}
