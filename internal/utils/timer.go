package utils

import "time"

// Timer measures elapsed wall-clock time between a start and stop event.
// Create one with [NewTimer], which starts the timer immediately.
type Timer struct {
	startTime time.Time
	duration  time.Duration
}

// NewTimer creates a new Timer and immediately starts it.
func NewTimer() *Timer {
	return &Timer{startTime: time.Now()}
}

// Start resets the timer's start time to now, beginning a fresh measurement.
func (t *Timer) Start() {
	t.startTime = time.Now()
}

// Stop records the elapsed time since construction (or the last Start).
func (t *Timer) Stop() {
	t.duration = time.Since(t.startTime)
}

// Elapsed returns the duration captured by the most recent call to [Timer.Stop].
func (t *Timer) Elapsed() time.Duration {
	return t.duration
}
