package loadgen

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/terratrax/swgbench/internal/stats"
)

// FailureBackoff is the fixed pause after a transport-level failure,
// keeping an unreachable host from turning the loop hot.
const FailureBackoff = 100 * time.Millisecond

// Picker yields the next request URL. *target.Selector is the real
// implementation; the indirection exists so a worker can be pointed at
// an arbitrary endpoint.
type Picker interface {
	Pick() string
}

// Worker is one cooperative task issuing GET requests in a loop until
// its deadline. It owns its selector (and therefore its RNG); the HTTP
// client and sample channel are shared across the process's workers.
type Worker struct {
	Selector Picker
	Client   *http.Client
	Samples  chan<- stats.Sample
	Logger   *log.Logger
}

// Run loops until the deadline passes or ctx is cancelled. The deadline
// is checked once per iteration, so an in-flight request is allowed to
// finish on its own; the supervisor's process kill is the hard bound.
//
// Every attempt emits exactly one sample. A transport failure counts as
// a zero-byte completion: throughput collapse under server failure is a
// measurement, not an error to recover from, and no request is retried.
func (w *Worker) Run(ctx context.Context, deadline time.Time) {
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		default:
		}

		url := w.Selector.Pick()
		n, err := w.fetch(ctx, url)
		if err != nil {
			w.Logger.Printf("error fetching %s: %v", url, err)
			w.emit(ctx, stats.Sample{Bytes: 0, Completed: 1})
			select {
			case <-ctx.Done():
				return
			case <-time.After(FailureBackoff):
			}
			continue
		}

		w.emit(ctx, stats.Sample{Bytes: n, Completed: 1})
	}
}

// fetch issues one GET and drains the body, returning the byte count.
func (w *Worker) fetch(ctx context.Context, url string) (uint64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := w.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		// A truncated body still transferred n bytes; report the
		// attempt as failed but keep the loop going.
		return 0, err
	}

	return uint64(n), nil
}

func (w *Worker) emit(ctx context.Context, s stats.Sample) {
	select {
	case <-ctx.Done():
	case w.Samples <- s:
	}
}
