package tables

import (
	"testing"

	"github.com/tsawler/strata/model"
)

// makeHRule creates a horizontal rule segment at the given Y
func makeHRule(x0, x1, y float64) model.RuleSegment {
	return model.RuleSegment{
		Start: model.Point{X: x0, Y: y},
		End:   model.Point{X: x1, Y: y},
	}
}

// makeVRule creates a vertical rule segment at the given X
func makeVRule(x, y0, y1 float64) model.RuleSegment {
	return model.RuleSegment{
		Start: model.Point{X: x, Y: y0},
		End:   model.Point{X: x, Y: y1},
	}
}

// gridRules builds a full ruled grid spanning [100,400] x [100,250]
// with rows every 50pt and columns every 100pt: a 3x3 cell grid
func gridRules() []model.RuleSegment {
	var rules []model.RuleSegment
	for y := 100.0; y <= 250; y += 50 {
		rules = append(rules, makeHRule(100, 400, y))
	}
	for x := 100.0; x <= 400; x += 100 {
		rules = append(rules, makeVRule(x, 100, 250))
	}
	return rules
}

// makeCellChar places a character for table population tests
func makeCellChar(txt string, x0, y0, x1, y1 float64) model.Char {
	return model.Char{
		Text:     txt,
		BBox:     model.NewBBox(x0, y0, x1, y1),
		FontName: "Helvetica",
		Size:     10,
		Color:    "#000000",
	}
}

func TestExtractor_NoRules(t *testing.T) {
	regions := NewExtractor().Detect(nil, nil)
	if len(regions) != 0 {
		t.Errorf("Expected 0 regions without rules, got %d", len(regions))
	}
}

func TestExtractor_FullGrid(t *testing.T) {
	regions := NewExtractor().Detect(nil, gridRules())

	if len(regions) != 1 {
		t.Fatalf("Expected 1 region, got %d", len(regions))
	}
	r := regions[0]
	if r.Rows != 3 || r.Cols != 3 {
		t.Errorf("Expected 3x3 grid, got %dx%d", r.Rows, r.Cols)
	}
	if len(r.Cells) != 9 {
		t.Errorf("Expected 9 cells, got %d", len(r.Cells))
	}
	if r.BBox.X0 != 100 || r.BBox.Y0 != 100 || r.BBox.X1 != 400 || r.BBox.Y1 != 250 {
		t.Errorf("Unexpected region bbox %+v", r.BBox)
	}
}

func TestExtractor_TooFewBoundaries(t *testing.T) {
	// A single box has 2 horizontal and 2 vertical rules: a 1x1 grid,
	// below the minimum row and column counts
	rules := []model.RuleSegment{
		makeHRule(100, 400, 100),
		makeHRule(100, 400, 150),
		makeVRule(100, 100, 150),
		makeVRule(400, 100, 150),
	}
	regions := NewExtractor().Detect(nil, rules)

	if len(regions) != 0 {
		t.Errorf("Expected no region for a 1x1 box, got %d", len(regions))
	}
}

func TestExtractor_StrayRuleIgnored(t *testing.T) {
	// A horizontal rule far to the side crosses no vertical rules and
	// must not introduce a row boundary
	rules := append(gridRules(), makeHRule(500, 600, 175))
	regions := NewExtractor().Detect(nil, rules)

	if len(regions) != 1 {
		t.Fatalf("Expected 1 region, got %d", len(regions))
	}
	if regions[0].Rows != 3 {
		t.Errorf("Expected stray rule to be ignored, got %d rows", regions[0].Rows)
	}
}

func TestExtractor_CellPopulation(t *testing.T) {
	chars := []model.Char{
		// "Hi" in the top-left cell
		makeCellChar("H", 110, 110, 118, 122),
		makeCellChar("i", 119, 110, 123, 122),
		// "x" in the middle cell
		makeCellChar("x", 250, 170, 258, 182),
	}
	regions := NewExtractor().Detect(chars, gridRules())

	if len(regions) != 1 {
		t.Fatalf("Expected 1 region, got %d", len(regions))
	}
	r := regions[0]

	topLeft := findCell(r, 0, 0)
	if topLeft == nil || topLeft.Text != "Hi" {
		t.Errorf("Expected 'Hi' in cell (0,0), got %+v", topLeft)
	}
	if !topLeft.Populated {
		t.Error("Expected cell (0,0) to be populated")
	}
	middle := findCell(r, 1, 1)
	if middle == nil || middle.Text != "x" {
		t.Errorf("Expected 'x' in cell (1,1), got %+v", middle)
	}
	if empty := findCell(r, 2, 2); empty == nil || empty.Populated {
		t.Error("Expected cell (2,2) to exist and be empty")
	}
	if r.PopulatedCells() != 2 {
		t.Errorf("Expected 2 populated cells, got %d", r.PopulatedCells())
	}
}

func TestExtractor_CellTextWordGaps(t *testing.T) {
	chars := []model.Char{
		makeCellChar("a", 110, 110, 118, 122),
		// 8pt gap at 10pt size forces a space
		makeCellChar("b", 126, 110, 134, 122),
	}
	regions := NewExtractor().Detect(chars, gridRules())

	if len(regions) != 1 {
		t.Fatalf("Expected 1 region, got %d", len(regions))
	}
	cell := findCell(regions[0], 0, 0)
	if cell == nil || cell.Text != "a b" {
		t.Errorf("Expected 'a b', got %+v", cell)
	}
}

func TestExtractor_ColumnSpan(t *testing.T) {
	// A wide glyph anchored in cell (0,0) whose box crosses into the
	// second column
	chars := []model.Char{
		makeCellChar("w", 110, 110, 230, 122),
	}
	regions := NewExtractor().Detect(chars, gridRules())

	if len(regions) != 1 {
		t.Fatalf("Expected 1 region, got %d", len(regions))
	}
	r := regions[0]

	anchor := findCell(r, 0, 0)
	if anchor == nil {
		t.Fatal("Expected anchor cell at (0,0)")
	}
	if anchor.ColSpan != 2 {
		t.Errorf("Expected ColSpan 2, got %d", anchor.ColSpan)
	}
	if covered := findCell(r, 0, 1); covered != nil {
		t.Errorf("Expected covered cell (0,1) to be removed, got %+v", covered)
	}
	// 9 grid positions minus 1 covered
	if len(r.Cells) != 8 {
		t.Errorf("Expected 8 cells after span merge, got %d", len(r.Cells))
	}
}

func TestExtractor_DuplicateRulesSingleRegion(t *testing.T) {
	// The same grid drawn twice (e.g. border and fill strokes) must
	// yield one region
	rules := append(gridRules(), gridRules()...)
	regions := NewExtractor().Detect(nil, rules)

	if len(regions) != 1 {
		t.Errorf("Expected duplicate grids to dedupe to 1 region, got %d", len(regions))
	}
}

func TestExtractor_SeparateClustersSeparateTables(t *testing.T) {
	rules := gridRules()
	// Second grid 200pt below the first, past the cluster gap
	for y := 450.0; y <= 600; y += 50 {
		rules = append(rules, makeHRule(100, 400, y))
	}
	for x := 100.0; x <= 400; x += 100 {
		rules = append(rules, makeVRule(x, 450, 600))
	}

	regions := NewExtractor().Detect(nil, rules)
	if len(regions) != 2 {
		t.Errorf("Expected 2 regions for well-separated grids, got %d", len(regions))
	}
}

// findCell returns the region cell at the given grid position, or nil
func findCell(r *Region, row, col int) *Cell {
	for i := range r.Cells {
		if r.Cells[i].Row == row && r.Cells[i].Col == col {
			return &r.Cells[i]
		}
	}
	return nil
}
