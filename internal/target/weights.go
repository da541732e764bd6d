package target

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is an enumerated file-type category derived from an
// extension. Unknown extensions map to CategoryUnknown, which always
// carries zero weight.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryBinary
	CategoryArchive
	CategoryDocument
)

func (c Category) String() string {
	switch c {
	case CategoryBinary:
		return "binary"
	case CategoryArchive:
		return "archive"
	case CategoryDocument:
		return "document"
	default:
		return "unknown"
	}
}

// CategoryOf maps a manifest path to its category via the file extension.
func CategoryOf(path string) Category {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "bin":
		return CategoryBinary
	case "zip":
		return CategoryArchive
	case "docx":
		return CategoryDocument
	default:
		return CategoryUnknown
	}
}

// Weights is the relative selection weight per category. The mapping is
// total: categories absent from the table select with weight zero. It is
// process-wide configuration, validated at startup and never mutated.
type Weights map[Category]float64

// DefaultWeights matches the original traffic mix: 40% binaries,
// 40% archives, 20% documents.
func DefaultWeights() Weights {
	return Weights{
		CategoryBinary:   0.4,
		CategoryArchive:  0.4,
		CategoryDocument: 0.2,
	}
}

// Weight returns the weight for a category, defaulting to zero.
func (w Weights) Weight(c Category) float64 {
	return w[c]
}

// Validate checks the table before any traffic is generated.
func (w Weights) Validate() error {
	positive := false
	for c, v := range w {
		if v < 0 || v > 1 {
			return fmt.Errorf("weight for %s must be between 0 and 1, got %v", c, v)
		}
		if v > 0 {
			positive = true
		}
	}
	if !positive {
		return fmt.Errorf("at least one category weight must be positive")
	}
	return nil
}

type weightsFile struct {
	Binary   *float64 `yaml:"binary"`
	Archive  *float64 `yaml:"archive"`
	Document *float64 `yaml:"document"`
}

// LoadWeights reads a YAML weights profile, overlaying any categories it
// names onto the defaults.
func LoadWeights(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}

	var wf weightsFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("failed to parse weights file: %w", err)
	}

	w := DefaultWeights()
	if wf.Binary != nil {
		w[CategoryBinary] = *wf.Binary
	}
	if wf.Archive != nil {
		w[CategoryArchive] = *wf.Archive
	}
	if wf.Document != nil {
		w[CategoryDocument] = *wf.Document
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}
