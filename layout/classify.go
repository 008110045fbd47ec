package layout

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tsawler/strata/model"
)

// ClassifyConfig holds configuration for provisional type assignment
type ClassifyConfig struct {
	// HeadingSizeRatio is the minimum ratio of a block's font size to the
	// page's median size for a single-line block to be a heading
	// (default: 1.2)
	HeadingSizeRatio float64

	// HeadingMaxLines is the maximum line count for a heading block
	// (default: 2)
	HeadingMaxLines int

	// MarginBandFraction is the fraction of page height at the top and
	// bottom treated as the header/footer band (default: 0.08)
	MarginBandFraction float64

	// MarginMaxLines is the maximum line count for a block in the margin
	// band to be classified as a header or footer (default: 2)
	MarginMaxLines int
}

// DefaultClassifyConfig returns sensible default configuration
func DefaultClassifyConfig() ClassifyConfig {
	return ClassifyConfig{
		HeadingSizeRatio:   1.2,
		HeadingMaxLines:    2,
		MarginBandFraction: 0.08,
		MarginMaxLines:     2,
	}
}

// Classifier assigns provisional types to geometry blocks
type Classifier struct {
	config ClassifyConfig
}

// NewClassifier creates a classifier with default configuration
func NewClassifier() *Classifier {
	return &Classifier{
		config: DefaultClassifyConfig(),
	}
}

// NewClassifierWithConfig creates a classifier with custom configuration
func NewClassifierWithConfig(config ClassifyConfig) *Classifier {
	return &Classifier{
		config: config,
	}
}

var (
	listMarkerRe = regexp.MustCompile(`^\s*(?:[-*•‣▪◦–—]|\(?\d{1,3}[.)]|\(?[a-zA-Z][.)]|[ivxIVX]{1,5}\.)\s+`)
	pageNumberRe = regexp.MustCompile(`^\s*(?:[-–—]?\s*\d{1,4}\s*[-–—]?|[Pp]age\s+\d+(?:\s+of\s+\d+)?)\s*$`)
)

// startsListMarker reports whether text opens with a bullet or numbering
// marker
func startsListMarker(text string) bool {
	return listMarkerRe.MatchString(text)
}

// Classify assigns a provisional type and neutral role to every block on
// a page, in place. Heuristics only look at geometry and style; the
// matcher overwrites these for any block a semantic tag claims.
func (c *Classifier) Classify(blocks []Block, pageWidth, pageHeight float64) {
	if len(blocks) == 0 {
		return
	}

	median := medianSize(blocks)
	topBand := pageHeight * c.config.MarginBandFraction
	bottomBand := pageHeight * (1 - c.config.MarginBandFraction)

	for i := range blocks {
		b := &blocks[i]
		trimmed := strings.TrimSpace(b.Text)

		switch {
		case pageNumberRe.MatchString(trimmed) && (b.BBox.Y1 <= topBand || b.BBox.Y0 >= bottomBand):
			b.Type = model.BlockPageNumber
			if b.BBox.Y1 <= topBand {
				b.Role = model.RoleHeader
			} else {
				b.Role = model.RoleFooter
			}

		case b.BBox.Y1 <= topBand && len(b.Lines) <= c.config.MarginMaxLines:
			b.Type = model.BlockHeader
			b.Role = model.RoleHeader

		case b.BBox.Y0 >= bottomBand && len(b.Lines) <= c.config.MarginMaxLines:
			b.Type = model.BlockFooter
			b.Role = model.RoleFooter

		case startsListMarker(trimmed):
			b.Type = model.BlockListItem
			b.Role = model.RoleListItem

		case len(b.Lines) <= c.config.HeadingMaxLines && median > 0 &&
			b.Size >= median*c.config.HeadingSizeRatio:
			b.Type = model.BlockHeading
			b.Role = model.RoleSectionTitle

		default:
			b.Type = model.BlockParagraph
			b.Role = model.RoleParagraph
		}
	}
}

// medianSize returns the median block font size on the page
func medianSize(blocks []Block) float64 {
	sizes := make([]float64, 0, len(blocks))
	for _, b := range blocks {
		if b.Size > 0 {
			sizes = append(sizes, b.Size)
		}
	}
	if len(sizes) == 0 {
		return 0
	}
	sort.Float64s(sizes)
	return sizes[len(sizes)/2]
}
