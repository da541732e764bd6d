package stats

import (
	"context"
	"time"
)

const (
	// PollInterval is how often the aggregator drains its channels.
	PollInterval = 10 * time.Millisecond
	// ReportInterval is how often a window is closed and reported.
	ReportInterval = 1 * time.Second
)

// Aggregator drains every metrics channel on a fixed tick and closes a
// reporting window once per second. Samples from different workers may
// interleave arbitrarily; only the totals within a window matter.
type Aggregator struct {
	channels []<-chan Sample
	report   func(Report)
}

// NewAggregator consumes the given channels. Each channel must have a
// single producer; a closed channel simply stops contributing samples.
func NewAggregator(channels []<-chan Sample, report func(Report)) *Aggregator {
	return &Aggregator{channels: channels, report: report}
}

// Run polls until the duration elapses or ctx is cancelled. It returns
// within one poll tick of the deadline regardless of worker activity.
func (a *Aggregator) Run(ctx context.Context, duration time.Duration) {
	open := make([]<-chan Sample, len(a.channels))
	copy(open, a.channels)

	start := time.Now()
	window := &Window{Start: start}

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Sub(start) > duration {
				return
			}

			a.drain(open, window)

			if interval := now.Sub(window.Start); interval >= ReportInterval {
				a.report(window.Close(now.Sub(start), interval.Seconds()))
				window.Reset(now)
			}
		}
	}
}

// drain performs a non-blocking receive-all pass over every channel
// still open, marking closed ones so they are skipped on later ticks.
func (a *Aggregator) drain(open []<-chan Sample, window *Window) {
	for i, ch := range open {
		if ch == nil {
			continue
		}
		draining := true
		for draining {
			select {
			case s, ok := <-ch:
				if !ok {
					open[i] = nil
					draining = false
					break
				}
				window.Add(s)
			default:
				draining = false
			}
		}
	}
}
