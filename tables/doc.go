// Package tables detects tabular regions on a page from ruled-line
// geometry. Horizontal and vertical rule segments are intersected into a
// candidate cell grid, characters are assigned to cells by centroid, and
// cells whose content crosses grid boundaries become row/column spans.
//
// Detection runs independently of the paragraph-level block builder, so
// the same page region can be claimed by both. Tables take precedence:
// candidate regions overlapping each other above a threshold are merged
// (the candidate with more populated cells wins), and geometry blocks
// overlapping an emitted region above the threshold are dropped from the
// block stream by FilterBlocks.
package tables
