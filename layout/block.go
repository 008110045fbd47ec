package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/strata/model"
	"github.com/tsawler/strata/styles"
)

// Block is a paragraph-level grouping of lines derived purely from
// spatial and stylistic clustering. The matcher may later overwrite
// Type, Role, Rhetoric, and RhetoricFeatures with tagger-supplied values;
// nothing mutates a block after assembly.
type Block struct {
	// Lines in top-to-bottom order
	Lines []Line

	// Words collects every word from every line, in line order
	Words []Word

	// Text is the block text, lines joined by newlines
	Text string

	// BBox is the union of the member lines' boxes
	BBox model.BBox

	// FontName is the dominant font among the lines
	FontName string

	// Size is the average font size of the lines, rounded to 0.01pt
	Size float64

	// Color is the color of the block's first line
	Color string

	// Page is the 1-indexed page number
	Page int

	// Type is the provisional semantic type until the matcher claims the
	// block
	Type model.BlockType

	// Role is the structural role; neutral default unless matched
	Role model.RoleType

	// Rhetoric and RhetoricFeatures are nil unless a semantic tag was
	// matched onto this block
	Rhetoric         *model.Rhetoric
	RhetoricFeatures *model.RhetoricFeatures

	// Matched reports whether a semantic tag claimed this block
	Matched bool
}

// BlockConfig holds configuration for block clustering
type BlockConfig struct {
	// LineGapFactor is the maximum vertical gap between consecutive lines
	// as a multiple of the previous line's font size (default: 1.5)
	LineGapFactor float64

	// MinLineGap is the floor on the gap threshold in points, so small
	// fonts still merge across ordinary leading (default: 4.0)
	MinLineGap float64

	// IndentTolerance is the maximum change in left edge between
	// consecutive lines, in points. Larger shifts indicate a column break
	// or alignment change and force a new block (default: 40.0)
	IndentTolerance float64

	// SizeTolerance is the maximum change in font size between
	// consecutive lines, in points, before the style is considered
	// materially changed (default: 2.0)
	SizeTolerance float64
}

// DefaultBlockConfig returns sensible default configuration
func DefaultBlockConfig() BlockConfig {
	return BlockConfig{
		LineGapFactor:   1.5,
		MinLineGap:      4.0,
		IndentTolerance: 40.0,
		SizeTolerance:   2.0,
	}
}

// BlockBuilder merges consecutive lines into paragraph-level blocks
type BlockBuilder struct {
	config BlockConfig
}

// NewBlockBuilder creates a block builder with default configuration
func NewBlockBuilder() *BlockBuilder {
	return &BlockBuilder{
		config: DefaultBlockConfig(),
	}
}

// NewBlockBuilderWithConfig creates a block builder with custom configuration
func NewBlockBuilderWithConfig(config BlockConfig) *BlockBuilder {
	return &BlockBuilder{
		config: config,
	}
}

// Build merges the lines of one page into blocks. Consecutive lines stay
// in the same block while the vertical gap is small, the dominant style
// is materially unchanged, and the left edge stays aligned. A large gap,
// a font family or size change, an indentation shift, or a line opening
// with a list marker starts a new block.
func (b *BlockBuilder) Build(lines []Line) []Block {
	if len(lines) == 0 {
		return nil
	}

	sorted := make([]Line, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Y0 != sorted[j].BBox.Y0 {
			return sorted[i].BBox.Y0 < sorted[j].BBox.Y0
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	var groups [][]Line
	current := []Line{sorted[0]}

	for _, ln := range sorted[1:] {
		prev := current[len(current)-1]

		if b.continues(prev, ln) {
			current = append(current, ln)
		} else {
			groups = append(groups, current)
			current = []Line{ln}
		}
	}
	groups = append(groups, current)

	blocks := make([]Block, 0, len(groups))
	for _, group := range groups {
		blocks = append(blocks, b.mergeLines(group))
	}
	return blocks
}

// continues reports whether ln belongs to the same block as prev
func (b *BlockBuilder) continues(prev, ln Line) bool {
	gap := ln.BBox.Y0 - prev.BBox.Y1
	threshold := math.Max(prev.Size*b.config.LineGapFactor, b.config.MinLineGap)
	if gap > threshold {
		return false
	}

	if math.Abs(ln.BBox.X0-prev.BBox.X0) > b.config.IndentTolerance {
		return false
	}

	if styles.Family(ln.FontName) != styles.Family(prev.FontName) {
		return false
	}
	if math.Abs(ln.Size-prev.Size) > b.config.SizeTolerance {
		return false
	}

	// A line opening with a bullet or numbering marker is a new list item
	if startsListMarker(ln.Text) {
		return false
	}

	return true
}

// mergeLines merges a group of lines into one block with a provisional
// paragraph type; classification refines the type afterwards
func (b *BlockBuilder) mergeLines(lines []Line) Block {
	texts := make([]string, len(lines))
	fontCounts := make(map[string]int)
	sizeSum := 0.0

	var words []Word
	bbox := lines[0].BBox
	for i, ln := range lines {
		texts[i] = ln.Text
		fontCounts[ln.FontName]++
		sizeSum += ln.Size
		bbox = bbox.Union(ln.BBox)
		words = append(words, ln.Words...)
	}

	return Block{
		Lines:    lines,
		Words:    words,
		Text:     strings.Join(texts, "\n"),
		BBox:     bbox,
		FontName: dominantKey(fontCounts),
		Size:     math.Round(sizeSum/float64(len(lines))*100) / 100,
		Color:    lines[0].Color,
		Type:     model.BlockParagraph,
		Role:     model.RoleParagraph,
	}
}
