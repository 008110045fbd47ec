package model

import "strings"

// SchemaVersion is the version string written into every emitted document
const SchemaVersion = "3.0"

// SourceType describes the originating format of a document
type SourceType string

const (
	SourcePDF   SourceType = "pdf"
	SourceDOCX  SourceType = "docx"
	SourceHTML  SourceType = "html"
	SourceImage SourceType = "image"
)

// BlockType is the semantic type of a block
type BlockType string

const (
	BlockHeading    BlockType = "heading"
	BlockParagraph  BlockType = "paragraph"
	BlockListItem   BlockType = "list_item"
	BlockTable      BlockType = "table"
	BlockFigure     BlockType = "figure"
	BlockCaption    BlockType = "caption"
	BlockHeader     BlockType = "header"
	BlockFooter     BlockType = "footer"
	BlockPageNumber BlockType = "page_number"
	BlockCodeBlock  BlockType = "code_block"
)

// Valid reports whether the block type is a known value
func (t BlockType) Valid() bool {
	switch t {
	case BlockHeading, BlockParagraph, BlockListItem, BlockTable,
		BlockFigure, BlockCaption, BlockHeader, BlockFooter,
		BlockPageNumber, BlockCodeBlock:
		return true
	}
	return false
}

// RoleType is the structural role of a block
type RoleType string

const (
	RoleTitle           RoleType = "title"
	RoleSectionTitle    RoleType = "section_title"
	RoleSubsectionTitle RoleType = "subsection_title"
	RoleParagraph       RoleType = "paragraph"
	RoleListItem        RoleType = "list_item"
	RoleTable           RoleType = "table"
	RoleFigure          RoleType = "figure"
	RoleCaption         RoleType = "caption"
	RoleHeader          RoleType = "header"
	RoleFooter          RoleType = "footer"
)

// Valid reports whether the role is a known value
func (r RoleType) Valid() bool {
	switch r {
	case RoleTitle, RoleSectionTitle, RoleSubsectionTitle, RoleParagraph,
		RoleListItem, RoleTable, RoleFigure, RoleCaption, RoleHeader,
		RoleFooter:
		return true
	}
	return false
}

// WeightType is a font weight
type WeightType string

const (
	WeightNormal WeightType = "normal"
	WeightBold   WeightType = "bold"
)

// AlignType is a horizontal alignment
type AlignType string

const (
	AlignLeft    AlignType = "left"
	AlignCenter  AlignType = "center"
	AlignRight   AlignType = "right"
	AlignJustify AlignType = "justify"
)

// RelationType labels a reading graph edge
type RelationType string

const (
	RelationNext      RelationType = "next"
	RelationParent    RelationType = "parent"
	RelationChild     RelationType = "child"
	RelationCaptionOf RelationType = "caption_of"
)

// Rhetoric is the per-block tone classification supplied by the tagger
type Rhetoric struct {
	Tone     string `json:"tone,omitempty"`
	Voice    string `json:"voice,omitempty"`
	Modality string `json:"modality,omitempty"`
	Tense    string `json:"tense,omitempty"`
	Domain   string `json:"domain,omitempty"`
}

// RhetoricFeatures are computed numeric rhetoric metrics per block
type RhetoricFeatures struct {
	AvgSentenceLength float64 `json:"avg_sentence_length,omitempty"`
	ModalDensity      float64 `json:"modal_density,omitempty"`
	PassiveRatio      float64 `json:"passive_ratio,omitempty"`
	LegalTermDensity  float64 `json:"legal_term_density,omitempty"`
}

// Style is a normalized font/formatting record in the style palette
type Style struct {
	FontFamily string     `json:"font_family,omitempty"`
	Size       float64    `json:"size,omitempty"`
	Weight     WeightType `json:"weight,omitempty"`
	Italic     bool       `json:"italic"`
	Underline  bool       `json:"underline"`
	Color      string     `json:"color,omitempty"`
	Align      AlignType  `json:"align,omitempty"`
}

// DocumentMeta is the top-level document metadata
type DocumentMeta struct {
	DocumentID    string     `json:"document_id"`
	SchemaVersion string     `json:"schema_version"`
	Source        SourceType `json:"source"`
	PageCount     int        `json:"page_count"`
}

// Page records the physical dimensions of one page
type Page struct {
	PageNumber int     `json:"page_number"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Rotation   int     `json:"rotation"`
	Unit       string  `json:"unit"`
}

// Block is one assembled document block
type Block struct {
	ID               string            `json:"id"`
	Type             BlockType         `json:"type"`
	Role             RoleType          `json:"role,omitempty"`
	Page             int               `json:"page"`
	BBox             []float64         `json:"bbox"`
	BBoxNorm         []float64         `json:"bbox_norm,omitempty"`
	ReadingOrder     int               `json:"reading_order"`
	ZIndex           int               `json:"z_index"`
	Parent           string            `json:"parent,omitempty"`
	Children         []string          `json:"children,omitempty"`
	Text             string            `json:"text,omitempty"`
	StyleID          string            `json:"style_id,omitempty"`
	HTML             string            `json:"html,omitempty"`
	HTMLTemplate     string            `json:"html_template,omitempty"`
	Rhetoric         *Rhetoric         `json:"rhetoric,omitempty"`
	RhetoricFeatures *RhetoricFeatures `json:"rhetoric_features,omitempty"`
}

// Span is a contiguous same-style run of words within a block
type Span struct {
	ID       string    `json:"id"`
	BlockID  string    `json:"block_id"`
	Text     string    `json:"text"`
	BBox     []float64 `json:"bbox"`
	BBoxNorm []float64 `json:"bbox_norm,omitempty"`
	StyleID  string    `json:"style_id,omitempty"`
}

// Token is a single word-level token with its bounding box
type Token struct {
	Text     string    `json:"text"`
	BBox     []float64 `json:"bbox"`
	BBoxNorm []float64 `json:"bbox_norm,omitempty"`
	BlockID  string    `json:"block_id"`
	SpanID   string    `json:"span_id,omitempty"`
}

// TableCell is a single cell in a table grid
type TableCell struct {
	Row      int       `json:"row"`
	Col      int       `json:"col"`
	RowSpan  int       `json:"row_span"`
	ColSpan  int       `json:"col_span"`
	Text     string    `json:"text"`
	BBox     []float64 `json:"bbox"`
	BBoxNorm []float64 `json:"bbox_norm,omitempty"`
	StyleID  string    `json:"style_id,omitempty"`
}

// Table is a structured table with a cell grid
type Table struct {
	ID    string      `json:"id"`
	Page  int         `json:"page"`
	Rows  int         `json:"rows"`
	Cols  int         `json:"cols"`
	BBox  []float64   `json:"bbox,omitempty"`
	Cells []TableCell `json:"cells"`
}

// CellAt returns the cell at the given grid position, or nil
func (t *Table) CellAt(row, col int) *TableCell {
	for i := range t.Cells {
		if t.Cells[i].Row == row && t.Cells[i].Col == col {
			return &t.Cells[i]
		}
	}
	return nil
}

// ToMarkdown renders the table as a markdown grid. Merged cells repeat
// their text in the anchor position only.
func (t *Table) ToMarkdown() string {
	if t.Rows == 0 || t.Cols == 0 {
		return ""
	}

	var sb strings.Builder
	for r := 0; r < t.Rows; r++ {
		for c := 0; c < t.Cols; c++ {
			sb.WriteString("| ")
			if cell := t.CellAt(r, c); cell != nil {
				sb.WriteString(strings.ReplaceAll(cell.Text, "\n", " "))
			}
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")

		if r == 0 {
			for c := 0; c < t.Cols; c++ {
				sb.WriteString("|---")
			}
			sb.WriteString("|\n")
		}
	}
	return sb.String()
}

// Edge is a directed reading graph edge between two blocks
type Edge struct {
	From     string       `json:"from"`
	To       string       `json:"to"`
	Relation RelationType `json:"relation"`
}

// Document is the final assembled tree. It is built once by the assembler
// and must not be mutated afterwards.
type Document struct {
	Document     DocumentMeta     `json:"document"`
	Pages        []Page           `json:"pages"`
	Blocks       []Block          `json:"blocks"`
	Spans        []Span           `json:"spans,omitempty"`
	Tokens       []Token          `json:"tokens,omitempty"`
	Tables       []Table          `json:"tables,omitempty"`
	Styles       map[string]Style `json:"styles,omitempty"`
	ReadingGraph []Edge           `json:"reading_graph,omitempty"`
}

// BlockByID returns the block with the given ID, or nil
func (d *Document) BlockByID(id string) *Block {
	for i := range d.Blocks {
		if d.Blocks[i].ID == id {
			return &d.Blocks[i]
		}
	}
	return nil
}

// BlocksOnPage returns the blocks for a page in reading order
func (d *Document) BlocksOnPage(pageNumber int) []Block {
	var result []Block
	for _, b := range d.Blocks {
		if b.Page == pageNumber {
			result = append(result, b)
		}
	}
	return result
}

// GetText returns the document text block by block in page and reading
// order, with blank lines between blocks.
func (d *Document) GetText() string {
	var sb strings.Builder
	first := true
	for _, p := range d.Pages {
		for _, b := range d.BlocksOnPage(p.PageNumber) {
			if b.Text == "" {
				continue
			}
			if !first {
				sb.WriteString("\n\n")
			}
			sb.WriteString(b.Text)
			first = false
		}
	}
	return sb.String()
}
