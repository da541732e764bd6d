package target

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/terratrax/swgbench/internal/config"
	"github.com/terratrax/swgbench/internal/manifest"
)

// Selector maps a manifest plus a desired object-size affinity and
// protocol mix to concrete request URLs using weighted random selection.
// The manifest and weight table are read-only; the RNG is owned by the
// caller, so a Selector is safe for one goroutine per instance.
type Selector struct {
	manifest  manifest.Manifest
	weights   Weights
	host      string
	avgSizeMB float64
	httpsPct  float64
	rng       *rand.Rand
}

// NewSelector validates its inputs once; Pick never fails afterwards.
func NewSelector(m manifest.Manifest, w Weights, host string, avgSizeMB, httpsPct float64, rng *rand.Rand) (*Selector, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("manifest is empty")
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weight table: %w", err)
	}
	return &Selector{
		manifest:  m,
		weights:   w,
		host:      host,
		avgSizeMB: avgSizeMB,
		httpsPct:  httpsPct,
		rng:       rng,
	}, nil
}

// Pick returns a fully qualified URL for the next request.
func (s *Selector) Pick() string {
	entry := s.manifest[s.pickIndex()]

	scheme, port := "http", config.HTTPPort
	if s.rng.Float64()*100 < s.httpsPct {
		scheme, port = "https", config.HTTPSPort
	}
	return fmt.Sprintf("%s://%s:%d/%s", scheme, s.host, port, entry.Path)
}

// pickIndex implements the weighted selection: restrict to entries
// within ±50% of the size affinity when any exist, build a pool with
// each candidate repeated weight×100 times, and fall back to a uniform
// draw over the whole manifest when no candidate has positive weight.
func (s *Selector) pickIndex() int {
	candidates := s.closeSet()

	var pool []int
	for _, idx := range candidates {
		weight := s.weights.Weight(CategoryOf(s.manifest[idx].Path))
		for n := 0; n < int(weight*100); n++ {
			pool = append(pool, idx)
		}
	}

	if len(pool) == 0 {
		return s.rng.Intn(len(s.manifest))
	}
	return pool[s.rng.Intn(len(pool))]
}

// closeSet returns the indices of entries within ±50% of the size
// affinity, or every index when none qualify.
func (s *Selector) closeSet() []int {
	var close, all []int
	for i, e := range s.manifest {
		all = append(all, i)
		if math.Abs(e.SizeMB-s.avgSizeMB) < 0.5*s.avgSizeMB {
			close = append(close, i)
		}
	}
	if len(close) == 0 {
		return all
	}
	return close
}
