package manifest

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Entry describes one fetchable object: its path relative to the
// content directory and its size in megabytes.
type Entry struct {
	Path   string
	SizeMB float64
}

// Manifest is the ordered, read-only list of available fetch targets.
// It is loaded once at startup and safely shared across workers.
type Manifest []Entry

// Load reads a manifest file. Each non-empty line has the form
// "<relative-path>, <size>MB"; whitespace is trimmed and the line is
// split on the first ", ".
func Load(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	var m Manifest
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("manifest line %d: %w", lineNum, err)
		}
		if seen[entry.Path] {
			return nil, fmt.Errorf("manifest line %d: duplicate path %q", lineNum, entry.Path)
		}
		seen[entry.Path] = true
		m = append(m, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	if len(m) == 0 {
		return nil, fmt.Errorf("manifest %s contains no entries", path)
	}

	return m, nil
}

func parseLine(line string) (Entry, error) {
	idx := strings.Index(line, ", ")
	if idx < 0 {
		return Entry{}, fmt.Errorf("expected \"<path>, <size>MB\", got %q", line)
	}

	path := strings.TrimSpace(line[:idx])
	sizeStr := strings.TrimSpace(line[idx+2:])
	if path == "" {
		return Entry{}, fmt.Errorf("empty path in %q", line)
	}
	if !strings.HasSuffix(sizeStr, "MB") {
		return Entry{}, fmt.Errorf("unsupported size unit in %q", sizeStr)
	}

	size, err := strconv.ParseFloat(strings.TrimSuffix(sizeStr, "MB"), 64)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid size %q: %w", sizeStr, err)
	}
	if size <= 0 {
		return Entry{}, fmt.Errorf("size must be positive in %q", line)
	}

	return Entry{Path: path, SizeMB: size}, nil
}

// Sizes returns the size column, index-aligned with the manifest.
func (m Manifest) Sizes() []float64 {
	sizes := make([]float64, len(m))
	for i, e := range m {
		sizes[i] = e.SizeMB
	}
	return sizes
}
