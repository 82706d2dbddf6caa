package picker

import (
	"math"

	"fyne.io/fyne/v2"
)

// GridMetrics is the derived geometry for one container width: square cells of
// CellSide separated by cellGap, with the leftover width split evenly between
// the two outer edges so every gap looks identical.
type GridMetrics struct {
	Columns    int
	CellSide   float32
	OuterInset float32
}

// Empty reports whether the container is too narrow to fit a single cell.
func (m GridMetrics) Empty() bool {
	return m.Columns == 0
}

// computeGridMetrics derives the grid geometry for a container width. Pure and
// deterministic; callers diff CellSide against the previous value to skip
// redundant relayouts.
func computeGridMetrics(containerWidth, minWidth, gap float32) GridMetrics {
	if minWidth <= 0 || containerWidth < minWidth {
		return GridMetrics{}
	}

	cols := int(containerWidth / minWidth)
	gaps := float32(cols-1) * gap
	side := float32(math.Floor(float64((containerWidth - gaps) / float32(cols))))
	inset := (containerWidth - gaps - float32(cols)*side) / 2

	return GridMetrics{Columns: cols, CellSide: side, OuterInset: inset}
}

// rowsFor returns how many rows count items occupy at the given metrics.
func (m GridMetrics) rowsFor(count int) int {
	if m.Columns < 1 || count <= 0 {
		return 0
	}
	return (count + m.Columns - 1) / m.Columns
}

// contentHeight is the total height of the laid-out grid, including the top
// and bottom insets.
func (m GridMetrics) contentHeight(count int) float32 {
	rows := m.rowsFor(count)
	if rows == 0 {
		return 0
	}
	return float32(rows)*m.CellSide + float32(rows-1)*cellGap + 2*m.OuterInset
}

// cellOrigin returns the top-left position of the cell at index.
func (m GridMetrics) cellOrigin(index int) fyne.Position {
	col := index % m.Columns
	row := index / m.Columns
	x := m.OuterInset + float32(col)*(m.CellSide+cellGap)
	y := m.OuterInset + float32(row)*(m.CellSide+cellGap)
	return fyne.NewPos(x, y)
}

// indexAt maps a point in grid-content coordinates to the cell under it.
// Points falling in a gap or inset miss: pointer imprecision near cell edges
// is expected and must not toggle a neighbour.
func (m GridMetrics) indexAt(p fyne.Position, count int) (int, bool) {
	if m.Columns < 1 || count <= 0 {
		return 0, false
	}

	step := m.CellSide + cellGap
	x := p.X - m.OuterInset
	y := p.Y - m.OuterInset
	if x < 0 || y < 0 {
		return 0, false
	}

	col := int(x / step)
	row := int(y / step)
	if col >= m.Columns {
		return 0, false
	}
	// Inside the cell, not the trailing gap.
	if x-float32(col)*step > m.CellSide || y-float32(row)*step > m.CellSide {
		return 0, false
	}

	index := row*m.Columns + col
	if index >= count {
		return 0, false
	}
	return index, true
}

// mediaGridLayout positions its objects as a wrap-around grid of square cells
// following GridMetrics. The metrics are recomputed from the width each pass;
// the session controller separately diffs CellSide to decide whether visible
// cells need refreshing.
type mediaGridLayout struct {
	metrics GridMetrics
}

var _ fyne.Layout = (*mediaGridLayout)(nil)

func (g *mediaGridLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	g.metrics = computeGridMetrics(size.Width, minCellWidth, cellGap)
	if g.metrics.Empty() {
		for _, o := range objects {
			o.Hide()
		}
		return
	}

	cell := fyne.NewSquareSize(g.metrics.CellSide)
	for i, o := range objects {
		o.Show()
		o.Resize(cell)
		o.Move(g.metrics.cellOrigin(i))
	}
}

func (g *mediaGridLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) == 0 {
		return fyne.NewSize(0, 0)
	}
	// Report the height of the current arrangement so the enclosing scroll
	// knows the full content range. Width stays at one minimum cell.
	m := g.metrics
	if m.Empty() {
		m = computeGridMetrics(minCellWidth, minCellWidth, cellGap)
	}
	return fyne.NewSize(minCellWidth, m.contentHeight(len(objects)))
}
