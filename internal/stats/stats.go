package stats

import (
	"time"
)

// Sample is a single observation emitted by a connection worker: bytes
// drained from one response body and the number of attempts it covers.
// A failed attempt is reported as a zero-byte completion, so CPS counts
// attempts, not successes.
type Sample struct {
	Bytes     uint64 `json:"b"`
	Completed uint32 `json:"c"`
}

// Window accumulates samples between two reporting ticks. It is owned
// exclusively by the aggregator and reset after every report.
type Window struct {
	Bytes     uint64
	Completed uint64
	Start     time.Time
}

// Add folds one sample into the window.
func (w *Window) Add(s Sample) {
	w.Bytes += s.Bytes
	w.Completed += uint64(s.Completed)
}

// Reset clears the counters and restamps the window start.
func (w *Window) Reset(now time.Time) {
	w.Bytes = 0
	w.Completed = 0
	w.Start = now
}

// Report is one finished reporting window.
type Report struct {
	Elapsed   time.Duration // since the run started
	CPS       float64       // completed attempts per second
	Gbps      float64       // gigabits per second transferred
	Bytes     uint64
	Completed uint64
}

// Close computes the report for a window that spanned elapsedSec
// seconds of wall-clock time.
func (w *Window) Close(sinceStart time.Duration, elapsedSec float64) Report {
	if elapsedSec <= 0 {
		elapsedSec = 1
	}
	return Report{
		Elapsed:   sinceStart,
		CPS:       float64(w.Completed) / elapsedSec,
		Gbps:      float64(w.Bytes) * 8 / (elapsedSec * 1e9),
		Bytes:     w.Bytes,
		Completed: w.Completed,
	}
}
