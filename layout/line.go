package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/strata/model"
)

// Line is an ordered sequence of words sharing a baseline
type Line struct {
	// Words in left-to-right order
	Words []Word

	// Text is the assembled line text, words joined by single spaces
	Text string

	// BBox is the union of the member words' boxes
	BBox model.BBox

	// FontName is the dominant font among the words
	FontName string

	// Size is the average font size of the words, rounded to 0.01pt
	Size float64

	// Color is the color of the line's first word
	Color string
}

// LineConfig holds configuration for line clustering
type LineConfig struct {
	// CenterToleranceFactor scales the vertical-center tolerance band by
	// the reference word's font size (default: 0.6). The tolerance uses
	// the smaller of the candidate sizes so small inline text next to a
	// large word still joins the line.
	CenterToleranceFactor float64

	// MinCenterTolerance is the floor on the tolerance band in points
	// (default: 3.0)
	MinCenterTolerance float64

	// RowBandFactor scales the band used when ordering finished lines:
	// lines whose tops differ by less than RowBandFactor times the
	// shorter line's height are treated as the same visual row and
	// ordered left to right, which serializes side-by-side columns
	// (default: 0.5)
	RowBandFactor float64
}

// DefaultLineConfig returns sensible default configuration
func DefaultLineConfig() LineConfig {
	return LineConfig{
		CenterToleranceFactor: 0.6,
		MinCenterTolerance:    3.0,
		RowBandFactor:         0.5,
	}
}

// LineBuilder groups words into text lines
type LineBuilder struct {
	config LineConfig
}

// NewLineBuilder creates a line builder with default configuration
func NewLineBuilder() *LineBuilder {
	return &LineBuilder{
		config: DefaultLineConfig(),
	}
}

// NewLineBuilderWithConfig creates a line builder with custom configuration
func NewLineBuilderWithConfig(config LineConfig) *LineBuilder {
	return &LineBuilder{
		config: config,
	}
}

// Build groups the words of one page into lines. Words whose vertical
// centers fall within a size-relative tolerance band share a line; within
// a line words are ordered by horizontal position. Finished lines are
// ordered top to bottom with a left-to-right tie-break for lines at
// near-identical heights.
func (b *LineBuilder) Build(words []Word) []Line {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].BBox.Y0 != sorted[j].BBox.Y0 {
			return sorted[i].BBox.Y0 < sorted[j].BBox.Y0
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	var groups [][]Word
	current := []Word{sorted[0]}

	for _, w := range sorted[1:] {
		ref := current[0]
		tolerance := math.Max(
			math.Min(ref.Size, w.Size)*b.config.CenterToleranceFactor,
			b.config.MinCenterTolerance,
		)

		if math.Abs(w.BBox.Center().Y-ref.BBox.Center().Y) <= tolerance {
			current = append(current, w)
		} else {
			groups = append(groups, current)
			current = []Word{w}
		}
	}
	groups = append(groups, current)

	lines := make([]Line, 0, len(groups))
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].BBox.X0 < group[j].BBox.X0
		})
		lines = append(lines, b.mergeWords(group))
	}

	b.orderLines(lines)
	return lines
}

// mergeWords merges a left-to-right run of words into one line
func (b *LineBuilder) mergeWords(words []Word) Line {
	texts := make([]string, len(words))
	fontCounts := make(map[string]int)
	sizeSum := 0.0

	bbox := words[0].BBox
	for i, w := range words {
		texts[i] = w.Text
		fontCounts[w.FontName]++
		sizeSum += w.Size
		bbox = bbox.Union(w.BBox)
	}

	return Line{
		Words:    words,
		Text:     strings.Join(texts, " "),
		BBox:     bbox,
		FontName: dominantKey(fontCounts),
		Size:     math.Round(sizeSum/float64(len(words))*100) / 100,
		Color:    words[0].Color,
	}
}

// orderLines sorts lines top to bottom, breaking ties on horizontal
// position for lines within the same visual row. Distinct columns at the
// same height become sequentially ordered lines rather than being merged.
func (b *LineBuilder) orderLines(lines []Line) {
	sort.SliceStable(lines, func(i, j int) bool {
		band := math.Min(lines[i].BBox.Height(), lines[j].BBox.Height()) * b.config.RowBandFactor
		yDiff := lines[i].BBox.Y0 - lines[j].BBox.Y0
		if math.Abs(yDiff) > band {
			return yDiff < 0
		}
		return lines[i].BBox.X0 < lines[j].BBox.X0
	})
}
