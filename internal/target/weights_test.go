package target

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()
	if err := w.Validate(); err != nil {
		t.Fatalf("Default weights should validate: %v", err)
	}
	if w.Weight(CategoryBinary) != 0.4 || w.Weight(CategoryArchive) != 0.4 || w.Weight(CategoryDocument) != 0.2 {
		t.Errorf("Unexpected default weights: %v", w)
	}
	if w.Weight(CategoryUnknown) != 0 {
		t.Errorf("Unknown category should weigh 0, got %v", w.Weight(CategoryUnknown))
	}
}

func TestWeights_Validate(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr bool
	}{
		{"defaults", DefaultWeights(), false},
		{"single positive", Weights{CategoryBinary: 1}, false},
		{"all zero", Weights{CategoryBinary: 0, CategoryArchive: 0}, true},
		{"empty table", Weights{}, true},
		{"negative", Weights{CategoryBinary: -0.1}, true},
		{"above one", Weights{CategoryBinary: 1.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	content := "binary: 0.6\ndocument: 0.1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write weights file: %v", err)
	}

	w, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights failed: %v", err)
	}

	if w.Weight(CategoryBinary) != 0.6 {
		t.Errorf("Expected binary weight 0.6, got %v", w.Weight(CategoryBinary))
	}
	// Archive was not named, so the default survives.
	if w.Weight(CategoryArchive) != 0.4 {
		t.Errorf("Expected archive weight 0.4, got %v", w.Weight(CategoryArchive))
	}
	if w.Weight(CategoryDocument) != 0.1 {
		t.Errorf("Expected document weight 0.1, got %v", w.Weight(CategoryDocument))
	}
}

func TestLoadWeights_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	if err := os.WriteFile(path, []byte("binary: 2.0\narchive: 0\ndocument: 0\n"), 0644); err != nil {
		t.Fatalf("Failed to write weights file: %v", err)
	}
	if _, err := LoadWeights(path); err == nil {
		t.Fatal("Expected validation error")
	}
}

func TestLoadWeights_MissingFile(t *testing.T) {
	if _, err := LoadWeights(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}
