// Package layout reconstructs the visual structure of a page from raw
// character geometry. It clusters characters into words, words into text
// lines, and lines into paragraph-level blocks, then assigns each block a
// provisional semantic type from geometric and stylistic heuristics.
//
// The three builders run strictly in sequence:
//
//	words := layout.NewWordBuilder().Build(page.Chars)
//	lines := layout.NewLineBuilder().Build(words)
//	blocks := layout.NewBlockBuilder().Build(lines)
//
// Each builder has a Config struct with documented defaults; thresholds
// scale with font size so mixed-size text is handled gracefully. Input
// order of characters is not assumed: the word builder re-sorts by page
// position before clustering.
//
// Provisional block types assigned here are authoritative only until the
// merge package reconciles blocks against externally supplied semantic
// tags; any block the matcher claims has its type, role, and rhetoric
// overwritten.
package layout
