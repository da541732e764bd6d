package target

import (
	"math"
	"math/rand"
	"net/url"
	"strings"
	"testing"

	"github.com/terratrax/swgbench/internal/manifest"
)

func newTestSelector(t *testing.T, m manifest.Manifest, avgSizeMB, httpsPct float64) *Selector {
	t.Helper()
	s, err := NewSelector(m, DefaultWeights(), "127.0.0.1", avgSizeMB, httpsPct, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}
	return s
}

func pathOf(t *testing.T, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("Pick returned unparseable URL %q: %v", rawURL, err)
	}
	return strings.TrimPrefix(u.Path, "/")
}

func TestNewSelector_EmptyManifest(t *testing.T) {
	_, err := NewSelector(nil, DefaultWeights(), "127.0.0.1", 2, 50, rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatal("Expected error for empty manifest")
	}
}

func TestPick_PathAlwaysInManifest(t *testing.T) {
	m := manifest.Manifest{
		{Path: "a.bin", SizeMB: 1},
		{Path: "b.zip", SizeMB: 2},
		{Path: "c.docx", SizeMB: 4},
		{Path: "d.jpg", SizeMB: 8},
	}
	known := make(map[string]bool)
	for _, e := range m {
		known[e.Path] = true
	}

	s := newTestSelector(t, m, 3, 50)
	for i := 0; i < 1000; i++ {
		if p := pathOf(t, s.Pick()); !known[p] {
			t.Fatalf("Pick returned path %q not in manifest", p)
		}
	}
}

func TestPick_CloseSetExcludesFarSizes(t *testing.T) {
	// With affinity 2MB the close set is [1.0, 3.0)MB exclusive of the
	// boundary: a.bin and b.zip qualify, c.docx never gets selected.
	m := manifest.Manifest{
		{Path: "a.bin", SizeMB: 1},
		{Path: "b.zip", SizeMB: 2},
		{Path: "c.docx", SizeMB: 4},
	}
	s := newTestSelector(t, m, 2, 0)

	counts := map[string]int{}
	const trials = 20000
	for i := 0; i < trials; i++ {
		counts[pathOf(t, s.Pick())]++
	}

	if counts["c.docx"] != 0 {
		t.Errorf("c.docx selected %d times, expected 0", counts["c.docx"])
	}
	// bin and zip carry equal weight, so the split should be close to 1:1.
	ratio := float64(counts["a.bin"]) / float64(trials)
	if math.Abs(ratio-0.5) > 0.03 {
		t.Errorf("a.bin frequency %.3f, expected ~0.5", ratio)
	}
}

func TestPick_FallbackToFullManifestWhenNothingClose(t *testing.T) {
	m := manifest.Manifest{
		{Path: "a.bin", SizeMB: 100},
		{Path: "b.zip", SizeMB: 200},
	}
	s := newTestSelector(t, m, 1, 0)

	counts := map[string]int{}
	for i := 0; i < 5000; i++ {
		counts[pathOf(t, s.Pick())]++
	}
	if counts["a.bin"] == 0 || counts["b.zip"] == 0 {
		t.Errorf("Expected both entries selected under fallback, got %v", counts)
	}
}

func TestPick_UniformFallbackWhenNoPositiveWeight(t *testing.T) {
	// Only unknown extensions: every candidate weighs zero, so selection
	// degrades to a uniform draw over the full manifest.
	m := manifest.Manifest{
		{Path: "a.jpg", SizeMB: 1},
		{Path: "b.pdf", SizeMB: 2},
	}
	s := newTestSelector(t, m, 1.5, 0)

	counts := map[string]int{}
	const trials = 10000
	for i := 0; i < trials; i++ {
		counts[pathOf(t, s.Pick())]++
	}
	for _, e := range m {
		freq := float64(counts[e.Path]) / float64(trials)
		if math.Abs(freq-0.5) > 0.03 {
			t.Errorf("%s frequency %.3f, expected ~0.5", e.Path, freq)
		}
	}
}

func TestPick_CategoryWeightDistribution(t *testing.T) {
	// Equal counts of bin/zip/docx at identical sizes: observed frequency
	// should approximate the 0.4/0.4/0.2 weight table.
	m := manifest.Manifest{
		{Path: "a.bin", SizeMB: 2},
		{Path: "b.zip", SizeMB: 2},
		{Path: "c.docx", SizeMB: 2},
	}
	s := newTestSelector(t, m, 2, 0)

	counts := map[string]int{}
	const trials = 30000
	for i := 0; i < trials; i++ {
		counts[pathOf(t, s.Pick())]++
	}

	want := map[string]float64{"a.bin": 0.4, "b.zip": 0.4, "c.docx": 0.2}
	for path, expected := range want {
		freq := float64(counts[path]) / float64(trials)
		if math.Abs(freq-expected) > 0.03 {
			t.Errorf("%s frequency %.3f, expected %.1f±0.03", path, freq, expected)
		}
	}
}

func TestPick_ProtocolMix(t *testing.T) {
	m := manifest.Manifest{{Path: "a.bin", SizeMB: 2}}

	tests := []struct {
		name     string
		httpsPct float64
	}{
		{"all http", 0},
		{"all https", 100},
		{"30 percent", 30},
		{"70 percent", 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSelector(t, m, 2, tt.httpsPct)

			https := 0
			const trials = 20000
			for i := 0; i < trials; i++ {
				u := s.Pick()
				switch {
				case strings.HasPrefix(u, "https://127.0.0.1:8443/"):
					https++
				case strings.HasPrefix(u, "http://127.0.0.1:8080/"):
				default:
					t.Fatalf("Unexpected URL %q", u)
				}
			}

			got := float64(https) / float64(trials) * 100
			if math.Abs(got-tt.httpsPct) > 2 {
				t.Errorf("HTTPS frequency %.1f%%, expected %.1f%%±2", got, tt.httpsPct)
			}
		})
	}
}

func TestPick_SingleEntryManifest(t *testing.T) {
	m := manifest.Manifest{{Path: "only.bin", SizeMB: 7}}

	for _, affinity := range []float64{0.1, 1, 7, 1000} {
		s := newTestSelector(t, m, affinity, 50)
		for i := 0; i < 100; i++ {
			if p := pathOf(t, s.Pick()); p != "only.bin" {
				t.Fatalf("affinity %v: expected only.bin, got %q", affinity, p)
			}
		}
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		path string
		want Category
	}{
		{"binary_1MB.bin", CategoryBinary},
		{"archive_2MB.zip", CategoryArchive},
		{"document_4MB.docx", CategoryDocument},
		{"UPPER.BIN", CategoryBinary},
		{"image.jpg", CategoryUnknown},
		{"noext", CategoryUnknown},
		{"dir/file.zip", CategoryArchive},
	}
	for _, tt := range tests {
		if got := CategoryOf(tt.path); got != tt.want {
			t.Errorf("CategoryOf(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
