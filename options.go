package strata

import (
	"go.uber.org/zap"

	"github.com/tsawler/strata/assemble"
	"github.com/tsawler/strata/layout"
	"github.com/tsawler/strata/merge"
	"github.com/tsawler/strata/tables"
)

// Options aggregates the per-stage configuration for a pipeline. The
// zero value is not usable; start from DefaultOptions and override what
// you need.
type Options struct {
	// Words configures character-to-word clustering
	Words layout.WordConfig

	// Lines configures word-to-line clustering
	Lines layout.LineConfig

	// Blocks configures line-to-block clustering
	Blocks layout.BlockConfig

	// Classify configures geometry-driven block classification
	Classify layout.ClassifyConfig

	// Tables configures ruled-line table detection
	Tables tables.Config

	// Merge configures semantic tag matching
	Merge merge.Config

	// Assemble configures the final tree assembly
	Assemble assemble.Config

	// Workers bounds page-level parallelism; 0 means GOMAXPROCS
	Workers int

	// Logger receives structured progress and diagnostic output; nil
	// means no logging
	Logger *zap.Logger
}

// DefaultOptions returns the default configuration for every stage
func DefaultOptions() Options {
	return Options{
		Words:    layout.DefaultWordConfig(),
		Lines:    layout.DefaultLineConfig(),
		Blocks:   layout.DefaultBlockConfig(),
		Classify: layout.DefaultClassifyConfig(),
		Tables:   tables.DefaultConfig(),
		Merge:    merge.DefaultConfig(),
		Assemble: assemble.DefaultConfig(),
	}
}
