// Package assemble performs the final, single-threaded pass over the
// page-parallel reconstruction output: stable identifier assignment,
// normalized bounding boxes, span and token derivation, caption nesting,
// per-page dense reading order, and the reading graph. The emitted
// document tree is immutable; anything that would corrupt identifier or
// bounding-box integrity fails the whole document instead of emitting a
// partially-inconsistent tree.
package assemble

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/tsawler/strata/layout"
	"github.com/tsawler/strata/model"
	"github.com/tsawler/strata/styles"
	"github.com/tsawler/strata/tables"
)

// ErrInconsistent indicates the assembled tree violated a structural
// invariant and the document was rejected
var ErrInconsistent = errors.New("assemble: inconsistent document tree")

// PageResult is the per-page output of the geometry and merge stages,
// collected by the pipeline and handed to the assembler in page order
type PageResult struct {
	// Number is the 1-indexed page number
	Number int

	// Width and Height are the page dimensions in points
	Width  float64
	Height float64

	// Rotation is the page rotation in degrees
	Rotation int

	// Blocks are the surviving geometry blocks after table dedup and
	// semantic matching
	Blocks []layout.Block

	// Tables are the detected table regions
	Tables []*tables.Region
}

// Config holds configuration for assembly
type Config struct {
	// ReadingBand is the vertical tolerance, in points, within which two
	// blocks count as the same visual row and order left to right
	// (default: 10.0)
	ReadingBand float64

	// CaptionMaxGap is the maximum vertical gap, in points, between a
	// table or figure and the block below it for caption nesting
	// (default: 20.0)
	CaptionMaxGap float64

	// CaptionMinOverlap is the minimum horizontal overlap, as a fraction
	// of the narrower box, for caption nesting (default: 0.5)
	CaptionMinOverlap float64
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		ReadingBand:       10.0,
		CaptionMaxGap:     20.0,
		CaptionMinOverlap: 0.5,
	}
}

// Assembler builds the final document tree
type Assembler struct {
	config Config
}

// NewAssembler creates an assembler with default configuration
func NewAssembler() *Assembler {
	return &Assembler{
		config: DefaultConfig(),
	}
}

// NewAssemblerWithConfig creates an assembler with custom configuration
func NewAssemblerWithConfig(config Config) *Assembler {
	return &Assembler{
		config: config,
	}
}

// captionTextRe matches conventional caption openings
var captionTextRe = regexp.MustCompile(`(?i)^\s*(?:figure|fig\.?|table)\s*\d`)

// pageItem is one orderable unit on a page: either a geometry block or a
// table region treated as a block with fixed type table
type pageItem struct {
	bbox   model.BBox
	geo    *layout.Block
	region *tables.Region
}

// Assemble builds the document tree from per-page results. When docID is
// empty a random UUID is generated; supply a fixed ID for byte-identical
// reruns.
func (a *Assembler) Assemble(docID string, source model.SourceType, pages []PageResult) (*model.Document, error) {
	if docID == "" {
		docID = uuid.NewString()
	}
	if source == "" {
		source = model.SourcePDF
	}

	ordered := make([]PageResult, len(pages))
	copy(ordered, pages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Number < ordered[j].Number
	})

	normalizer := styles.NewNormalizer()
	ids := newIDAllocator()

	doc := &model.Document{
		Document: model.DocumentMeta{
			DocumentID:    docID,
			SchemaVersion: model.SchemaVersion,
			Source:        source,
			PageCount:     len(ordered),
		},
	}

	for _, page := range ordered {
		if err := a.assemblePage(doc, page, normalizer, ids); err != nil {
			return nil, err
		}
	}

	if len(normalizer.Palette()) > 0 {
		doc.Styles = normalizer.Palette()
	}

	if err := a.validate(doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// assemblePage appends one page's blocks, spans, tokens, tables, and
// edges to the document
func (a *Assembler) assemblePage(doc *model.Document, page PageResult, normalizer *styles.Normalizer, ids *idAllocator) error {
	doc.Pages = append(doc.Pages, model.Page{
		PageNumber: page.Number,
		Width:      page.Width,
		Height:     page.Height,
		Rotation:   page.Rotation,
		Unit:       "pt",
	})

	items := a.orderItems(page)

	pageBlocks := make([]model.Block, 0, len(items))
	var flowIDs []string

	for order, item := range items {
		var (
			block model.Block
			err   error
		)

		if item.region != nil {
			block, err = a.buildTableBlock(doc, page, item.region, order, normalizer, ids)
		} else {
			block, err = a.buildGeometryBlock(doc, page, item.geo, order, normalizer, ids)
		}
		if err != nil {
			return err
		}

		if inFlow(block.Type) {
			flowIDs = append(flowIDs, block.ID)
		}
		pageBlocks = append(pageBlocks, block)
	}

	a.nestCaptions(doc, pageBlocks)

	// next edges between reading-order-consecutive flow blocks on this page
	for i := 1; i < len(flowIDs); i++ {
		doc.ReadingGraph = append(doc.ReadingGraph, model.Edge{
			From:     flowIDs[i-1],
			To:       flowIDs[i],
			Relation: model.RelationNext,
		})
	}

	doc.Blocks = append(doc.Blocks, pageBlocks...)
	return nil
}

// orderItems merges geometry blocks and table regions into one dense
// reading order: main flow first (top to bottom, left to right, with a
// same-row band), then headers, then footers pinned after the flow
func (a *Assembler) orderItems(page PageResult) []pageItem {
	var flow, headers, footers []pageItem

	for i := range page.Blocks {
		b := &page.Blocks[i]
		item := pageItem{bbox: b.BBox, geo: b}
		switch b.Type {
		case model.BlockHeader:
			headers = append(headers, item)
		case model.BlockFooter, model.BlockPageNumber:
			footers = append(footers, item)
		default:
			flow = append(flow, item)
		}
	}
	for _, r := range page.Tables {
		flow = append(flow, pageItem{bbox: r.BBox, region: r})
	}

	a.sortItems(flow)
	a.sortItems(headers)
	a.sortItems(footers)

	items := make([]pageItem, 0, len(flow)+len(headers)+len(footers))
	items = append(items, flow...)
	items = append(items, headers...)
	items = append(items, footers...)
	return items
}

// sortItems orders items top to bottom with a left-to-right tie-break
// for items within the same visual row
func (a *Assembler) sortItems(items []pageItem) {
	sort.SliceStable(items, func(i, j int) bool {
		yDiff := items[i].bbox.Y0 - items[j].bbox.Y0
		if math.Abs(yDiff) > a.config.ReadingBand {
			return yDiff < 0
		}
		return items[i].bbox.X0 < items[j].bbox.X0
	})
}

// inFlow reports whether a block participates in the main reading flow
func inFlow(t model.BlockType) bool {
	switch t {
	case model.BlockHeader, model.BlockFooter, model.BlockPageNumber:
		return false
	}
	return true
}

// buildGeometryBlock converts a matched geometry block into its final
// form, deriving spans from contiguous same-style word runs and one
// token per word
func (a *Assembler) buildGeometryBlock(doc *model.Document, page PageResult, geo *layout.Block, order int, normalizer *styles.Normalizer, ids *idAllocator) (model.Block, error) {
	// The block box must be the union of its lines' boxes
	bbox := geo.BBox
	if len(geo.Lines) > 0 {
		bbox = geo.Lines[0].BBox
		for _, ln := range geo.Lines[1:] {
			bbox = bbox.Union(ln.BBox)
		}
	}
	if !bbox.IsValid() {
		return model.Block{}, fmt.Errorf("%w: block with invalid bbox on page %d", ErrInconsistent, page.Number)
	}

	styleID, err := normalizer.Intern(styles.FromFont(geo.FontName, geo.Size, geo.Color))
	if err != nil {
		return model.Block{}, err
	}

	blockID := ids.alloc("b", fmt.Sprintf("blk|%d|%s|%s", page.Number, bboxKey(bbox), geo.Text))
	tag := htmlTagFor(geo.Type)

	block := model.Block{
		ID:               blockID,
		Type:             geo.Type,
		Role:             geo.Role,
		Page:             page.Number,
		BBox:             bbox.Slice(),
		BBoxNorm:         normBBox(bbox, page.Width, page.Height),
		ReadingOrder:     order,
		Text:             geo.Text,
		StyleID:          styleID,
		HTML:             fmt.Sprintf("<%s>%s</%s>", tag, html.EscapeString(geo.Text), tag),
		HTMLTemplate:     fmt.Sprintf("<%s>{{text}}</%s>", tag, tag),
		Rhetoric:         geo.Rhetoric,
		RhetoricFeatures: geo.RhetoricFeatures,
	}

	if err := a.buildSpans(doc, page, blockID, geo, normalizer, ids); err != nil {
		return model.Block{}, err
	}

	return block, nil
}

// buildSpans regroups a block's words into contiguous same-style runs and
// emits one span per run and one token per word
func (a *Assembler) buildSpans(doc *model.Document, page PageResult, blockID string, geo *layout.Block, normalizer *styles.Normalizer, ids *idAllocator) error {
	if len(geo.Words) == 0 {
		return nil
	}

	runStart := 0
	runStyle := styles.Canonicalize(styles.FromFont(geo.Words[0].FontName, geo.Words[0].Size, geo.Words[0].Color))
	runIndex := 0

	flush := func(end int) error {
		words := geo.Words[runStart:end]

		styleID, err := normalizer.Intern(runStyle)
		if err != nil {
			return err
		}

		bbox := words[0].BBox
		texts := make([]string, len(words))
		for i, w := range words {
			bbox = bbox.Union(w.BBox)
			texts[i] = w.Text
		}

		spanID := ids.alloc("s", fmt.Sprintf("span|%s|%d", blockID, runIndex))
		doc.Spans = append(doc.Spans, model.Span{
			ID:       spanID,
			BlockID:  blockID,
			Text:     strings.Join(texts, " "),
			BBox:     bbox.Slice(),
			BBoxNorm: normBBox(bbox, page.Width, page.Height),
			StyleID:  styleID,
		})

		for _, w := range words {
			doc.Tokens = append(doc.Tokens, model.Token{
				Text:     w.Text,
				BBox:     w.BBox.Slice(),
				BBoxNorm: normBBox(w.BBox, page.Width, page.Height),
				BlockID:  blockID,
				SpanID:   spanID,
			})
		}

		runIndex++
		return nil
	}

	for i := 1; i < len(geo.Words); i++ {
		w := geo.Words[i]
		style := styles.Canonicalize(styles.FromFont(w.FontName, w.Size, w.Color))
		if style != runStyle {
			if err := flush(i); err != nil {
				return err
			}
			runStart = i
			runStyle = style
		}
	}
	return flush(len(geo.Words))
}

// buildTableBlock converts a table region into a block entry plus its
// structured table record
func (a *Assembler) buildTableBlock(doc *model.Document, page PageResult, region *tables.Region, order int, normalizer *styles.Normalizer, ids *idAllocator) (model.Block, error) {
	tableID := ids.alloc("t", fmt.Sprintf("tbl|%d|%s", page.Number, bboxKey(region.BBox)))

	tableStyle := a.dominantRegionStyle(region)
	tableStyleID, err := normalizer.Intern(tableStyle)
	if err != nil {
		return model.Block{}, err
	}

	table := model.Table{
		ID:   tableID,
		Page: page.Number,
		Rows: region.Rows,
		Cols: region.Cols,
		BBox: region.BBox.Slice(),
	}

	for _, cell := range region.Cells {
		cellStyle := tableStyle
		if cell.Populated {
			cellStyle = styles.FromFont(cell.FontName, cell.Size, cell.Color)
		}
		cellStyleID, err := normalizer.Intern(cellStyle)
		if err != nil {
			return model.Block{}, err
		}

		table.Cells = append(table.Cells, model.TableCell{
			Row:      cell.Row,
			Col:      cell.Col,
			RowSpan:  cell.RowSpan,
			ColSpan:  cell.ColSpan,
			Text:     cell.Text,
			BBox:     cell.BBox.Slice(),
			BBoxNorm: normBBox(cell.BBox, page.Width, page.Height),
			StyleID:  cellStyleID,
		})
	}

	doc.Tables = append(doc.Tables, table)

	return model.Block{
		ID:           tableID,
		Type:         model.BlockTable,
		Role:         model.RoleTable,
		Page:         page.Number,
		BBox:         region.BBox.Slice(),
		BBoxNorm:     normBBox(region.BBox, page.Width, page.Height),
		ReadingOrder: order,
		Text:         "[TABLE]",
		StyleID:      tableStyleID,
		HTML:         "<table></table>",
		HTMLTemplate: "<table>{{text}}</table>",
	}, nil
}

// dominantRegionStyle derives a table's representative style from its
// populated cells
func (a *Assembler) dominantRegionStyle(region *tables.Region) model.Style {
	counts := make(map[model.Style]int)
	for _, cell := range region.Cells {
		if cell.Populated {
			counts[styles.FromFont(cell.FontName, cell.Size, cell.Color)]++
		}
	}
	if len(counts) == 0 {
		return styles.FromFont("", 0, "")
	}

	var best model.Style
	bestCount := -1
	for s, n := range counts {
		if n > bestCount || (n == bestCount && lessStyle(s, best)) {
			best = s
			bestCount = n
		}
	}
	return best
}

func lessStyle(a, b model.Style) bool {
	if a.FontFamily != b.FontFamily {
		return a.FontFamily < b.FontFamily
	}
	return a.Size < b.Size
}

// nestCaptions links caption blocks to the table or figure directly above
// them, with bidirectional parent/children references and hierarchy edges
func (a *Assembler) nestCaptions(doc *model.Document, pageBlocks []model.Block) {
	for i := range pageBlocks {
		parent := &pageBlocks[i]
		if parent.Type != model.BlockTable && parent.Type != model.BlockFigure {
			continue
		}

		bestIdx := -1
		bestGap := a.config.CaptionMaxGap

		for j := range pageBlocks {
			if i == j {
				continue
			}
			cand := &pageBlocks[j]
			if cand.Parent != "" || cand.Type == model.BlockTable || cand.Type == model.BlockFigure {
				continue
			}
			if cand.Type != model.BlockCaption && !captionTextRe.MatchString(cand.Text) {
				continue
			}

			gap := cand.BBox[1] - parent.BBox[3] // candidate top minus parent bottom
			if gap < 0 || gap > a.config.CaptionMaxGap {
				continue
			}
			if horizontalOverlap(parent.BBox, cand.BBox) < a.config.CaptionMinOverlap {
				continue
			}
			if gap <= bestGap {
				bestGap = gap
				bestIdx = j
			}
		}

		if bestIdx < 0 {
			continue
		}

		caption := &pageBlocks[bestIdx]
		caption.Parent = parent.ID
		caption.Type = model.BlockCaption
		caption.Role = model.RoleCaption
		parent.Children = append(parent.Children, caption.ID)

		doc.ReadingGraph = append(doc.ReadingGraph,
			model.Edge{From: parent.ID, To: caption.ID, Relation: model.RelationChild},
			model.Edge{From: caption.ID, To: parent.ID, Relation: model.RelationParent},
			model.Edge{From: caption.ID, To: parent.ID, Relation: model.RelationCaptionOf},
		)
	}
}

// horizontalOverlap returns the shared X extent of two bbox slices as a
// fraction of the narrower box
func horizontalOverlap(a, b []float64) float64 {
	overlap := math.Min(a[2], b[2]) - math.Max(a[0], b[0])
	if overlap <= 0 {
		return 0
	}
	narrower := math.Min(a[2]-a[0], b[2]-b[0])
	if narrower <= 0 {
		return 0
	}
	return overlap / narrower
}

// validate checks the structural invariants of the assembled tree
func (a *Assembler) validate(doc *model.Document) error {
	// Dense per-page reading order
	perPage := make(map[int][]int)
	for _, b := range doc.Blocks {
		perPage[b.Page] = append(perPage[b.Page], b.ReadingOrder)
	}
	for page, orders := range perPage {
		sort.Ints(orders)
		for i, o := range orders {
			if o != i {
				return fmt.Errorf("%w: reading order on page %d is not a dense permutation", ErrInconsistent, page)
			}
		}
	}

	// Every style reference resolves
	for _, b := range doc.Blocks {
		if b.StyleID != "" {
			if _, ok := doc.Styles[b.StyleID]; !ok {
				return fmt.Errorf("%w: block %s references unknown style %s", ErrInconsistent, b.ID, b.StyleID)
			}
		}
	}
	for _, s := range doc.Spans {
		if _, ok := doc.Styles[s.StyleID]; !ok {
			return fmt.Errorf("%w: span %s references unknown style %s", ErrInconsistent, s.ID, s.StyleID)
		}
	}
	for _, t := range doc.Tables {
		for _, c := range t.Cells {
			if _, ok := doc.Styles[c.StyleID]; !ok {
				return fmt.Errorf("%w: table %s cell references unknown style %s", ErrInconsistent, t.ID, c.StyleID)
			}
		}
	}

	// Bidirectional parent/children
	byID := make(map[string]*model.Block, len(doc.Blocks))
	for i := range doc.Blocks {
		byID[doc.Blocks[i].ID] = &doc.Blocks[i]
	}
	for i := range doc.Blocks {
		b := &doc.Blocks[i]
		if b.Parent != "" {
			parent, ok := byID[b.Parent]
			if !ok || !containsString(parent.Children, b.ID) {
				return fmt.Errorf("%w: block %s has dangling parent %s", ErrInconsistent, b.ID, b.Parent)
			}
		}
		for _, child := range b.Children {
			c, ok := byID[child]
			if !ok || c.Parent != b.ID {
				return fmt.Errorf("%w: block %s has dangling child %s", ErrInconsistent, b.ID, child)
			}
		}
	}

	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// normBBox divides absolute coordinates by the page dimensions, rounded
// to 6 decimal places
func normBBox(b model.BBox, pageW, pageH float64) []float64 {
	if pageW <= 0 || pageH <= 0 {
		return []float64{0, 0, 0, 0}
	}
	return []float64{
		round6(b.X0 / pageW),
		round6(b.Y0 / pageH),
		round6(b.X1 / pageW),
		round6(b.Y1 / pageH),
	}
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// bboxKey renders a box for identifier derivation
func bboxKey(b model.BBox) string {
	return fmt.Sprintf("%.2f,%.2f,%.2f,%.2f", b.X0, b.Y0, b.X1, b.Y1)
}

// htmlTagFor maps a block type to its semantic HTML tag
func htmlTagFor(t model.BlockType) string {
	switch t {
	case model.BlockHeading:
		return "h2"
	case model.BlockListItem:
		return "li"
	case model.BlockTable:
		return "table"
	case model.BlockFigure:
		return "figure"
	case model.BlockCaption:
		return "figcaption"
	case model.BlockHeader:
		return "header"
	case model.BlockFooter:
		return "footer"
	case model.BlockPageNumber:
		return "span"
	case model.BlockCodeBlock:
		return "pre"
	default:
		return "p"
	}
}
