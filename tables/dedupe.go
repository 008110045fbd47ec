package tables

import "github.com/tsawler/strata/layout"

// FilterBlocks removes geometry blocks that a detected table region
// already covers, so no page area is represented twice. A block is dropped
// when any region covers more than the threshold fraction of the block's
// own area; pass threshold <= 0 to use the extractor default. Returns the
// surviving blocks and the number dropped.
func FilterBlocks(blocks []layout.Block, regions []*Region, threshold float64) ([]layout.Block, int) {
	if len(regions) == 0 || len(blocks) == 0 {
		return blocks, 0
	}
	if threshold <= 0 {
		threshold = DefaultConfig().BlockOverlap
	}

	kept := make([]layout.Block, 0, len(blocks))
	for _, b := range blocks {
		overlapped := false
		for _, r := range regions {
			if b.BBox.CoverageOf(r.BBox) > threshold {
				overlapped = true
				break
			}
		}
		if !overlapped {
			kept = append(kept, b)
		}
	}

	return kept, len(blocks) - len(kept)
}
