package tables

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/strata/model"
)

// Cell is a single cell in a detected table region
type Cell struct {
	Row     int
	Col     int
	RowSpan int
	ColSpan int

	// Text is the assembled text of the characters whose centroids fall
	// inside the cell
	Text string

	// BBox is the cell's grid box
	BBox model.BBox

	// Populated reports whether any character landed in the cell
	Populated bool

	// FontName, Size, and Color describe the dominant style of the
	// cell's characters; zero values for empty cells
	FontName string
	Size     float64
	Color    string
}

// Region is a detected table region: a grid of cells with an overall
// bounding box. Regions are converted to document tables at assembly.
type Region struct {
	BBox  model.BBox
	Rows  int
	Cols  int
	Cells []Cell
}

// PopulatedCells returns the number of cells containing text
func (r *Region) PopulatedCells() int {
	n := 0
	for _, c := range r.Cells {
		if c.Populated {
			n++
		}
	}
	return n
}

// Config holds configuration for table detection
type Config struct {
	// MinRows is the minimum number of cell rows for a valid table
	// (default: 2)
	MinRows int

	// MinCols is the minimum number of cell columns for a valid table
	// (default: 2)
	MinCols int

	// AlignmentTolerance is the coordinate tolerance when clustering rule
	// positions into grid boundaries, in points (default: 2.0)
	AlignmentTolerance float64

	// ClusterGap is the vertical gap above which rule segments are split
	// into separate grid candidates, in points (default: 50.0)
	ClusterGap float64

	// MinCrossings is the number of perpendicular segments a rule must
	// intersect for its position to count as a grid boundary (default: 2)
	MinCrossings int

	// DedupOverlap is the bounding-box overlap ratio above which two
	// candidate regions are considered duplicates; the one with more
	// populated cells survives (default: 0.5)
	DedupOverlap float64

	// BlockOverlap is the fraction of a geometry block's area that must
	// be covered by a region before FilterBlocks drops the block
	// (default: 0.5)
	BlockOverlap float64
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		MinRows:            2,
		MinCols:            2,
		AlignmentTolerance: 2.0,
		ClusterGap:         50.0,
		MinCrossings:       2,
		DedupOverlap:       0.5,
		BlockOverlap:       0.5,
	}
}

// Extractor detects table regions from ruled-line geometry
type Extractor struct {
	config Config
}

// NewExtractor creates a table extractor with default configuration
func NewExtractor() *Extractor {
	return &Extractor{
		config: DefaultConfig(),
	}
}

// NewExtractorWithConfig creates a table extractor with custom configuration
func NewExtractorWithConfig(config Config) *Extractor {
	return &Extractor{
		config: config,
	}
}

// Detect finds table regions on one page. Rule segments are split into
// horizontal and vertical sets, grouped into spatially separate clusters,
// and each cluster's intersections become a candidate grid. Characters
// are assigned to cells by centroid; content crossing a grid boundary
// becomes a row or column span. Overlapping candidates are deduplicated
// before returning.
func (e *Extractor) Detect(chars []model.Char, rules []model.RuleSegment) []*Region {
	if len(rules) == 0 {
		return nil
	}

	var regions []*Region
	for _, cluster := range e.clusterRules(rules) {
		if region := e.detectInCluster(chars, cluster); region != nil {
			regions = append(regions, region)
		}
	}

	return e.dedupeRegions(regions)
}

// clusterRules groups rule segments into spatially separate candidates by
// vertical proximity. Segments more than ClusterGap apart start a new
// cluster.
func (e *Extractor) clusterRules(rules []model.RuleSegment) [][]model.RuleSegment {
	sorted := make([]model.RuleSegment, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return segmentTop(sorted[i]) < segmentTop(sorted[j])
	})

	var clusters [][]model.RuleSegment
	current := []model.RuleSegment{sorted[0]}
	currentBottom := segmentBottom(sorted[0])

	for _, s := range sorted[1:] {
		if segmentTop(s)-currentBottom > e.config.ClusterGap {
			clusters = append(clusters, current)
			current = nil
			currentBottom = math.Inf(-1)
		}
		current = append(current, s)
		currentBottom = math.Max(currentBottom, segmentBottom(s))
	}
	clusters = append(clusters, current)

	return clusters
}

// detectInCluster builds a grid from one cluster of rule segments and
// populates it with characters. Returns nil if no valid grid emerges.
func (e *Extractor) detectInCluster(chars []model.Char, rules []model.RuleSegment) *Region {
	tol := e.config.AlignmentTolerance

	var horiz, vert []model.RuleSegment
	for _, s := range rules {
		switch {
		case s.IsHorizontal(tol):
			horiz = append(horiz, s)
		case s.IsVertical(tol):
			vert = append(vert, s)
		}
	}

	rows := e.rowBoundaries(horiz, vert)
	if len(rows) < e.config.MinRows+1 {
		return nil
	}
	cols := e.colBoundaries(horiz, vert)
	if len(cols) < e.config.MinCols+1 {
		return nil
	}

	grid := &Grid{Rows: rows, Cols: cols}
	region := e.populate(grid, chars)
	e.mergeSpans(region, grid, chars)
	return region
}

// rowBoundaries clusters horizontal rule positions into row boundaries,
// keeping only rules that intersect enough vertical rules
func (e *Extractor) rowBoundaries(horiz, vert []model.RuleSegment) []float64 {
	var ys []float64
	for _, h := range horiz {
		if e.countCrossings(h, vert, true) >= e.config.MinCrossings {
			ys = append(ys, (h.Start.Y+h.End.Y)/2)
		}
	}
	return clusterValues(ys, e.config.AlignmentTolerance)
}

// colBoundaries clusters vertical rule positions into column boundaries,
// keeping only rules that intersect enough horizontal rules
func (e *Extractor) colBoundaries(horiz, vert []model.RuleSegment) []float64 {
	var xs []float64
	for _, v := range vert {
		if e.countCrossings(v, horiz, false) >= e.config.MinCrossings {
			xs = append(xs, (v.Start.X+v.End.X)/2)
		}
	}
	return clusterValues(xs, e.config.AlignmentTolerance)
}

// countCrossings counts perpendicular segments that intersect s within
// the alignment tolerance
func (e *Extractor) countCrossings(s model.RuleSegment, perpendicular []model.RuleSegment, sIsHorizontal bool) int {
	tol := e.config.AlignmentTolerance
	count := 0

	for _, p := range perpendicular {
		if sIsHorizontal {
			// s spans X at a fixed Y; p spans Y at a fixed X
			x := (p.Start.X + p.End.X) / 2
			y := (s.Start.Y + s.End.Y) / 2
			if x >= math.Min(s.Start.X, s.End.X)-tol && x <= math.Max(s.Start.X, s.End.X)+tol &&
				y >= math.Min(p.Start.Y, p.End.Y)-tol && y <= math.Max(p.Start.Y, p.End.Y)+tol {
				count++
			}
		} else {
			x := (s.Start.X + s.End.X) / 2
			y := (p.Start.Y + p.End.Y) / 2
			if y >= math.Min(s.Start.Y, s.End.Y)-tol && y <= math.Max(s.Start.Y, s.End.Y)+tol &&
				x >= math.Min(p.Start.X, p.End.X)-tol && x <= math.Max(p.Start.X, p.End.X)+tol {
				count++
			}
		}
	}

	return count
}

// populate builds the region's cells and assigns characters to the cell
// containing their centroid
func (e *Extractor) populate(grid *Grid, chars []model.Char) *Region {
	rows := grid.RowCount()
	cols := grid.ColCount()

	type cellContent struct {
		chars []model.Char
	}
	content := make([]cellContent, rows*cols)

	gridBox := grid.BBox()
	for _, c := range chars {
		center := c.BBox.Center()
		if !gridBox.Contains(center) {
			continue
		}
		r, col := grid.FindCell(center)
		if r >= 0 && col >= 0 {
			content[r*cols+col].chars = append(content[r*cols+col].chars, c)
		}
	}

	region := &Region{
		BBox: gridBox,
		Rows: rows,
		Cols: cols,
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cc := content[r*cols+c]
			cell := Cell{
				Row:       r,
				Col:       c,
				RowSpan:   1,
				ColSpan:   1,
				Text:      assembleCellText(cc.chars),
				BBox:      grid.CellBBox(r, c),
				Populated: len(cc.chars) > 0,
			}
			if len(cc.chars) > 0 {
				cell.FontName, cell.Size, cell.Color = dominantStyle(cc.chars)
			}
			region.Cells = append(region.Cells, cell)
		}
	}

	return region
}

// assembleCellText joins cell characters in page order, inserting spaces
// at word-sized gaps
func assembleCellText(chars []model.Char) string {
	if len(chars) == 0 {
		return ""
	}

	sorted := make([]model.Char, len(chars))
	copy(sorted, chars)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].BBox.Y0-sorted[j].BBox.Y0) > 1.0 {
			return sorted[i].BBox.Y0 < sorted[j].BBox.Y0
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	var sb strings.Builder
	for i, c := range sorted {
		if i > 0 {
			prev := sorted[i-1]
			gap := c.BBox.X0 - prev.BBox.X1
			if gap > c.Size*0.25 || math.Abs(c.BBox.Y0-prev.BBox.Y0) > 1.0 {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(c.Text)
	}
	return strings.TrimSpace(sb.String())
}

// dominantStyle returns the most frequent font, the average size, and
// the first character's color for a cell's characters
func dominantStyle(chars []model.Char) (font string, size float64, color string) {
	counts := make(map[string]int)
	sizeSum := 0.0
	for _, c := range chars {
		counts[c.FontName]++
		sizeSum += c.Size
	}

	best := ""
	bestCount := -1
	for k, n := range counts {
		if n > bestCount || (n == bestCount && k < best) {
			best = k
			bestCount = n
		}
	}

	return best, sizeSum / float64(len(chars)), chars[0].Color
}

// mergeSpans detects cells whose character content crosses grid
// boundaries and expands them into row/column spans; covered cells are
// removed from the region
func (e *Extractor) mergeSpans(region *Region, grid *Grid, chars []model.Char) {
	// Content bounding box per cell
	contentBox := make(map[int]model.BBox)
	cols := region.Cols
	gridBox := grid.BBox()

	for _, c := range chars {
		center := c.BBox.Center()
		if !gridBox.Contains(center) {
			continue
		}
		r, col := grid.FindCell(center)
		if r < 0 || col < 0 {
			continue
		}
		key := r*cols + col
		if box, ok := contentBox[key]; ok {
			contentBox[key] = box.Union(c.BBox)
		} else {
			contentBox[key] = c.BBox
		}
	}

	covered := make(map[int]bool)

	for i := range region.Cells {
		cell := &region.Cells[i]
		box, ok := contentBox[cell.Row*cols+cell.Col]
		if !ok || covered[cell.Row*cols+cell.Col] {
			continue
		}

		for r := cell.Row + 1; r < region.Rows; r++ {
			if box.Intersects(grid.CellBBox(r, cell.Col)) {
				cell.RowSpan = r - cell.Row + 1
			} else {
				break
			}
		}
		for c := cell.Col + 1; c < region.Cols; c++ {
			if box.Intersects(grid.CellBBox(cell.Row, c)) {
				cell.ColSpan = c - cell.Col + 1
			} else {
				break
			}
		}

		if cell.RowSpan > 1 || cell.ColSpan > 1 {
			for r := cell.Row; r < cell.Row+cell.RowSpan; r++ {
				for c := cell.Col; c < cell.Col+cell.ColSpan; c++ {
					if r == cell.Row && c == cell.Col {
						continue
					}
					covered[r*cols+c] = true
				}
			}
			cell.BBox = grid.CellBBox(cell.Row, cell.Col).
				Union(grid.CellBBox(cell.Row+cell.RowSpan-1, cell.Col+cell.ColSpan-1))
		}
	}

	if len(covered) == 0 {
		return
	}

	kept := region.Cells[:0]
	for _, cell := range region.Cells {
		if !covered[cell.Row*cols+cell.Col] {
			kept = append(kept, cell)
		}
	}
	region.Cells = kept
}

// dedupeRegions merges candidate regions whose bounding boxes overlap
// above the threshold, keeping the candidate with more populated cells
func (e *Extractor) dedupeRegions(regions []*Region) []*Region {
	if len(regions) <= 1 {
		return regions
	}

	dropped := make([]bool, len(regions))
	for i := 0; i < len(regions); i++ {
		if dropped[i] {
			continue
		}
		for j := i + 1; j < len(regions); j++ {
			if dropped[j] {
				continue
			}
			if regions[i].BBox.OverlapRatio(regions[j].BBox) > e.config.DedupOverlap {
				if regions[j].PopulatedCells() > regions[i].PopulatedCells() {
					dropped[i] = true
				} else {
					dropped[j] = true
				}
			}
			if dropped[i] {
				break
			}
		}
	}

	var kept []*Region
	for i, r := range regions {
		if !dropped[i] {
			kept = append(kept, r)
		}
	}
	return kept
}

func segmentTop(s model.RuleSegment) float64 {
	return math.Min(s.Start.Y, s.End.Y)
}

func segmentBottom(s model.RuleSegment) float64 {
	return math.Max(s.Start.Y, s.End.Y)
}
