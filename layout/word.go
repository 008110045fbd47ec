package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/strata/model"
)

// Word is an ordered run of characters merged by horizontal adjacency.
// Its bounding box is the union of its member characters' boxes.
type Word struct {
	// Text is the concatenated character text
	Text string

	// BBox is the union of the member characters' boxes
	BBox model.BBox

	// FontName is the dominant (most frequent) font among the characters
	FontName string

	// Size is the average font size of the characters, rounded to 0.01pt
	Size float64

	// Color is the color of the word's first character
	Color string

	// CharIndices are the indices of the member characters in the input
	// slice, in cluster order, for traceability back to the extractor
	CharIndices []int
}

// WordConfig holds configuration for word clustering
type WordConfig struct {
	// GapFactor is the maximum horizontal gap between adjacent characters
	// as a fraction of their average glyph width (default: 0.35)
	GapFactor float64

	// MinGapFraction is a floor on the gap threshold as a fraction of the
	// previous character's font size, so narrow glyphs don't fragment
	// words (default: 0.25)
	MinGapFraction float64

	// MinOverlapFraction is the minimum vertical overlap between adjacent
	// characters, as a fraction of the shorter glyph's height, for them to
	// share a word (default: 0.5)
	MinOverlapFraction float64
}

// DefaultWordConfig returns sensible default configuration
func DefaultWordConfig() WordConfig {
	return WordConfig{
		GapFactor:          0.35,
		MinGapFraction:     0.25,
		MinOverlapFraction: 0.5,
	}
}

// WordBuilder clusters characters into words
type WordBuilder struct {
	config WordConfig
}

// NewWordBuilder creates a word builder with default configuration
func NewWordBuilder() *WordBuilder {
	return &WordBuilder{
		config: DefaultWordConfig(),
	}
}

// NewWordBuilderWithConfig creates a word builder with custom configuration
func NewWordBuilderWithConfig(config WordConfig) *WordBuilder {
	return &WordBuilder{
		config: config,
	}
}

// Build clusters the characters of one page into words. The extractor's
// emission order is not trusted: characters are re-sorted top-to-bottom,
// left-to-right before clustering, so overlapping glyphs and superscripts
// emitted out of order land in the right word.
func (b *WordBuilder) Build(chars []model.Char) []Word {
	if len(chars) == 0 {
		return nil
	}

	// Sort index view by (y0 rounded to 0.1pt, x0). Rounding keeps
	// characters with baseline jitter on the same visual row together.
	order := make([]int, len(chars))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, c := chars[order[i]], chars[order[j]]
		ay := math.Round(a.BBox.Y0*10) / 10
		cy := math.Round(c.BBox.Y0*10) / 10
		if ay != cy {
			return ay < cy
		}
		return a.BBox.X0 < c.BBox.X0
	})

	var words []Word
	current := []int{order[0]}

	for _, idx := range order[1:] {
		prev := chars[current[len(current)-1]]
		c := chars[idx]

		if b.sameBaseline(prev, c) {
			gap := c.BBox.X0 - prev.BBox.X1
			avgWidth := (prev.BBox.Width() + c.BBox.Width()) / 2
			threshold := math.Max(avgWidth*b.config.GapFactor, prev.Size*b.config.MinGapFraction)

			if gap <= threshold {
				current = append(current, idx)
				continue
			}
		}

		words = append(words, b.mergeChars(chars, current))
		current = []int{idx}
	}

	words = append(words, b.mergeChars(chars, current))
	return words
}

// sameBaseline reports whether two characters overlap vertically enough to
// share a word
func (b *WordBuilder) sameBaseline(prev, c model.Char) bool {
	overlap := prev.BBox.VerticalOverlap(c.BBox)
	if overlap <= 0 {
		return false
	}
	minHeight := math.Min(prev.BBox.Height(), c.BBox.Height())
	return overlap/math.Max(minHeight, 0.1) > b.config.MinOverlapFraction
}

// mergeChars merges a run of characters into one word
func (b *WordBuilder) mergeChars(chars []model.Char, indices []int) Word {
	var sb strings.Builder
	fontCounts := make(map[string]int)
	sizeSum := 0.0

	bbox := chars[indices[0]].BBox
	for _, idx := range indices {
		c := chars[idx]
		sb.WriteString(c.Text)
		fontCounts[c.FontName]++
		sizeSum += c.Size
		bbox = bbox.Union(c.BBox)
	}

	return Word{
		Text:        sb.String(),
		BBox:        bbox,
		FontName:    dominantKey(fontCounts),
		Size:        math.Round(sizeSum/float64(len(indices))*100) / 100,
		Color:       chars[indices[0]].Color,
		CharIndices: append([]int(nil), indices...),
	}
}

// dominantKey returns the most frequent key, breaking count ties by the
// lexicographically smaller key so the result is deterministic
func dominantKey(counts map[string]int) string {
	best := ""
	bestCount := -1
	for k, n := range counts {
		if n > bestCount || (n == bestCount && k < best) {
			best = k
			bestCount = n
		}
	}
	return best
}
