// Package merge reconciles geometry-derived blocks with externally
// supplied semantic tags. Matching is page-scoped, greedy, and
// one-to-one: tags are processed in input order, each claims at most one
// geometry block, and a claimed block leaves the candidate pool. The
// score combines fuzzy text similarity with spatial overlap when the tag
// carries an approximate region.
//
// Tags that clear no candidate above the acceptance threshold are
// reported as unmatched, never fatal; the affected blocks keep their
// provisional classification.
package merge

import (
	"math"

	"github.com/tsawler/strata/layout"
	"github.com/tsawler/strata/model"
)

// scoreEpsilon is the margin within which two candidate scores count as
// tied and the positional tie-break applies
const scoreEpsilon = 1e-9

// Config holds configuration for tag matching
type Config struct {
	// MinScore is the minimum combined score for a tag to claim a block;
	// tags below it are discarded as unmatched (default: 0.4)
	MinScore float64

	// TextWeight and SpatialWeight blend text similarity and region
	// overlap into the combined score. When a tag has no region, the
	// text term is used alone. (defaults: 0.7 / 0.3)
	TextWeight    float64
	SpatialWeight float64

	// CompareWindow caps the number of runes compared per side; tagger
	// snippets are usually truncated, so comparing whole blocks against
	// them punishes long paragraphs (default: 200)
	CompareWindow int
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		MinScore:      0.4,
		TextWeight:    0.7,
		SpatialWeight: 0.3,
		CompareWindow: 200,
	}
}

// Unmatched reports a semantic tag that claimed no geometry block
type Unmatched struct {
	// Tag is the discarded tag
	Tag model.SemanticTag

	// BestScore is the highest score any candidate reached
	BestScore float64
}

// Matcher reconciles semantic tags with geometry blocks
type Matcher struct {
	config Config
}

// NewMatcher creates a matcher with default configuration
func NewMatcher() *Matcher {
	return &Matcher{
		config: DefaultConfig(),
	}
}

// NewMatcherWithConfig creates a matcher with custom configuration
func NewMatcherWithConfig(config Config) *Matcher {
	return &Matcher{
		config: config,
	}
}

// Match reconciles one page's semantic tags with its geometry blocks,
// in place. Every matched block adopts the tag's type, role, rhetoric,
// and rhetoric features; unmatched blocks keep their provisional
// classification. Returns the tags that claimed nothing.
//
// Tags are processed strictly in input order and matching is one-to-one,
// so the result is deterministic for a fixed input.
func (m *Matcher) Match(blocks []layout.Block, tags []model.SemanticTag) []Unmatched {
	if len(tags) == 0 || len(blocks) == 0 {
		return nil
	}

	// Normalize block text once
	blockText := make([]string, len(blocks))
	for i := range blocks {
		blockText[i] = truncateRunes(normalizeText(blocks[i].Text), m.config.CompareWindow)
	}

	var unmatched []Unmatched

	for _, tag := range tags {
		tagText := truncateRunes(normalizeText(tag.Text), m.config.CompareWindow)

		bestIdx := -1
		bestScore := 0.0
		bestDistance := math.Inf(1)

		for i := range blocks {
			if blocks[i].Matched || blocks[i].Page != tag.Page {
				continue
			}

			score := m.score(blockText[i], blocks[i].BBox, tagText, tag.Region)
			distance := tagDistance(blocks[i].BBox, tag.Region)

			better := score > bestScore+scoreEpsilon
			tied := math.Abs(score-bestScore) <= scoreEpsilon && bestIdx >= 0

			// Tied top scores resolve to the candidate nearest the
			// tag's region; without a region, the earlier candidate
			// stands.
			if better || (tied && distance < bestDistance) {
				bestIdx = i
				bestScore = score
				bestDistance = distance
			}
		}

		if bestIdx < 0 || bestScore < m.config.MinScore {
			unmatched = append(unmatched, Unmatched{Tag: tag, BestScore: bestScore})
			continue
		}

		m.apply(&blocks[bestIdx], tag)
	}

	return unmatched
}

// score combines text similarity with region overlap. Weights renormalize
// to the text term when the tag has no region.
func (m *Matcher) score(blockText string, blockBox model.BBox, tagText string, region *model.BBox) float64 {
	text := textSimilarity(blockText, tagText)
	if region == nil {
		return text
	}

	spatial := blockBox.OverlapRatio(*region)
	total := m.config.TextWeight + m.config.SpatialWeight
	if total <= 0 {
		return text
	}
	return (m.config.TextWeight*text + m.config.SpatialWeight*spatial) / total
}

// apply transfers a tag's semantic attributes onto a block
func (m *Matcher) apply(block *layout.Block, tag model.SemanticTag) {
	if tag.Type.Valid() {
		block.Type = tag.Type
	}
	if tag.Role.Valid() {
		block.Role = tag.Role
	}
	block.Rhetoric = tag.Rhetoric
	block.RhetoricFeatures = tag.RhetoricFeatures
	block.Matched = true
}

// tagDistance is the center distance between a block and a tag region;
// infinite when the tag has no region so the tie-break degrades to input
// order
func tagDistance(blockBox model.BBox, region *model.BBox) float64 {
	if region == nil {
		return math.Inf(1)
	}
	return blockBox.Center().Distance(region.Center())
}
