// Package strata reconstructs structured documents from raw page
// geometry. It clusters positioned characters into words, lines, and
// paragraph-level blocks, detects tables from ruled-line intersections,
// optionally merges externally supplied semantic tags onto the geometry,
// and assembles everything into an immutable document tree with stable
// identifiers, normalized bounding boxes, a dense per-page reading
// order, and a reading graph.
//
// Basic usage:
//
//	p := strata.NewPipeline()
//	doc, warnings, err := p.Process(ctx, input)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", strata.FormatWarnings(warnings))
//	}
//
// With semantic tags and custom options:
//
//	opts := strata.DefaultOptions()
//	opts.Merge.MinScore = 0.5
//	doc, _, err := strata.NewPipelineWithOptions(opts).
//	    WithTagSource(strata.NewStaticTags(tags)).
//	    Process(ctx, input)
//
// The lower-level layout, tables, merge, and assemble packages are also
// available for callers that need a single stage.
package strata
