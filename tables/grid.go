package tables

import (
	"sort"

	"github.com/tsawler/strata/model"
)

// Grid is a candidate cell grid built from intersecting rule segments.
// Row and column boundaries are stored in ascending coordinate order
// (y-down), so Rows[0] is the top edge and Cols[0] the left edge.
type Grid struct {
	// Rows are the horizontal boundary Y coordinates, ascending
	Rows []float64

	// Cols are the vertical boundary X coordinates, ascending
	Cols []float64
}

// RowCount returns the number of cell rows
func (g *Grid) RowCount() int {
	if len(g.Rows) < 2 {
		return 0
	}
	return len(g.Rows) - 1
}

// ColCount returns the number of cell columns
func (g *Grid) ColCount() int {
	if len(g.Cols) < 2 {
		return 0
	}
	return len(g.Cols) - 1
}

// BBox returns the overall bounding box of the grid
func (g *Grid) BBox() model.BBox {
	if g.RowCount() == 0 || g.ColCount() == 0 {
		return model.BBox{}
	}
	return model.BBox{
		X0: g.Cols[0],
		Y0: g.Rows[0],
		X1: g.Cols[len(g.Cols)-1],
		Y1: g.Rows[len(g.Rows)-1],
	}
}

// CellBBox returns the bounding box of the cell at the given position
func (g *Grid) CellBBox(row, col int) model.BBox {
	if row < 0 || row >= g.RowCount() || col < 0 || col >= g.ColCount() {
		return model.BBox{}
	}
	return model.BBox{
		X0: g.Cols[col],
		Y0: g.Rows[row],
		X1: g.Cols[col+1],
		Y1: g.Rows[row+1],
	}
}

// FindCell returns the row and column of the cell containing the point,
// or -1 for both if the point is outside the grid
func (g *Grid) FindCell(p model.Point) (row, col int) {
	row = -1
	col = -1

	for i := 0; i < g.RowCount(); i++ {
		if p.Y >= g.Rows[i] && p.Y <= g.Rows[i+1] {
			row = i
			break
		}
	}

	for i := 0; i < g.ColCount(); i++ {
		if p.X >= g.Cols[i] && p.X <= g.Cols[i+1] {
			col = i
			break
		}
	}

	return row, col
}

// clusterValues clusters nearby sorted values within the given tolerance,
// averaging values that fall within the tolerance of the cluster center
func clusterValues(values []float64, tolerance float64) []float64 {
	if len(values) == 0 {
		return nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	clustered := []float64{sorted[0]}
	for _, v := range sorted[1:] {
		if v-clustered[len(clustered)-1] > tolerance {
			clustered = append(clustered, v)
		} else {
			clustered[len(clustered)-1] = (clustered[len(clustered)-1] + v) / 2
		}
	}

	return clustered
}
