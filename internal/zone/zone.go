package zone

import "fmt"

// Zone is a cell of the screen grid.
type Zone struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Name string `json:"name"`
}

// Edges flags proximity to each screen edge.
type Edges struct {
	Left   bool `json:"left"`
	Right  bool `json:"right"`
	Top    bool `json:"top"`
	Bottom bool `json:"bottom"`
}

// Any reports whether any edge is close.
func (e Edges) Any() bool {
	return e.Left || e.Right || e.Top || e.Bottom
}

var gridNames = [3][3]string{
	{"TOP_LEFT", "TOP_CENTER", "TOP_RIGHT"},
	{"MIDDLE_LEFT", "MIDDLE_CENTER", "MIDDLE_RIGHT"},
	{"BOTTOM_LEFT", "BOTTOM_CENTER", "BOTTOM_RIGHT"},
}

// zoneName names 3x3 cells after their position and other grids by index.
func zoneName(row, col, rows, cols int) string {
	if rows == 3 && cols == 3 {
		return gridNames[row][col]
	}
	return fmt.Sprintf("ROW_%d_COL_%d", row, col)
}
