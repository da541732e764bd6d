package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/terratrax/swgbench/internal/corpus"
)

var generateFlags struct {
	outDir    string
	maxSizeMB float64
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the test-content corpus and its manifest",
	Long: `Generate binaries, archives, and documents in doubling sizes from
20KB up to the configured maximum, plus the config.txt manifest that
"run" and "serve" consume. The document formats are structural
approximations; the harness measures transfer, not rendering.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := &corpus.Generator{
			OutputDir: generateFlags.outDir,
			MaxSizeMB: generateFlags.maxSizeMB,
			Rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
		}

		manifestPath, err := g.Generate()
		if err != nil {
			return err
		}

		fmt.Printf("corpus written to %s (manifest: %s)\n", generateFlags.outDir, manifestPath)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateFlags.outDir, "out", "server_content", "Output directory for the corpus")
	generateCmd.Flags().Float64Var(&generateFlags.maxSizeMB, "max-size-mb", 64, "Largest object size to generate, in MB")
}
