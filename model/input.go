package model

// Char is a single glyph produced by the external character extractor.
// It is input only and never mutated by the pipeline.
type Char struct {
	// Text is the glyph's text content (usually one rune)
	Text string

	// BBox is the glyph's absolute bounding box on the page
	BBox BBox

	// FontName is the raw font name as reported by the extractor,
	// possibly carrying a subset prefix like "ABCDEF+Helvetica-Bold"
	FontName string

	// Size is the font size in points
	Size float64

	// Color is the fill color as a hex string, e.g. "#1a1a1a"
	Color string
}

// PageInput carries everything the pipeline needs for one page: character
// geometry from the extractor plus optional ruled-line segments for table
// detection. Width and Height must be positive.
type PageInput struct {
	// Number is the 1-indexed page number
	Number int

	// Width and Height are the page dimensions in points
	Width  float64
	Height float64

	// Rotation is the page rotation in degrees (0, 90, 180, 270)
	Rotation int

	// Chars is the character geometry for the page. Emission order is not
	// assumed; the word builder re-sorts by page position.
	Chars []Char

	// Rules are the ruled-line segments on the page. May be empty.
	Rules []RuleSegment
}

// DocumentInput is the full input for one document
type DocumentInput struct {
	// DocumentID identifies the document in the emitted tree. When empty,
	// the pipeline generates one.
	DocumentID string

	// Source describes the originating format
	Source SourceType

	// Pages in ascending page number order
	Pages []PageInput
}

// SemanticTag is one externally produced classification for a region of
// text. Tags are matched fuzzily against geometry blocks; they are input
// only and never mutated.
type SemanticTag struct {
	// Text is the approximate text content the tagger saw
	Text string

	// Page is the 1-indexed page the tag belongs to
	Page int

	// Region is the tagger's approximate bounding box for the text.
	// Nil when the tagger supplies no geometry.
	Region *BBox

	// Type is the semantic block type
	Type BlockType

	// Role is the structural role
	Role RoleType

	// Rhetoric is the optional tone classification
	Rhetoric *Rhetoric

	// RhetoricFeatures are the optional computed rhetoric metrics
	RhetoricFeatures *RhetoricFeatures
}
