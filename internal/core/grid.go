package core

// Point identifies a single grid cell.
type Point struct {
	X int
	Y int
}

// MooreOffsets lists the 8 neighbor displacements (orthogonal + diagonal).
var MooreOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Grid describes the planet's cell topology: a row-major 2D lattice whose
// horizontal edges wrap (longitude) and whose vertical edges clamp (poles).
type Grid struct {
	W, H int
}

// NewGrid returns a grid with the given dimensions, forcing a 1x1 minimum.
func NewGrid(w, h int) Grid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return Grid{W: w, H: h}
}

// Len returns the number of cells.
func (g Grid) Len() int { return g.W * g.H }

// Index returns the linear slice index for coordinates (x, y).
func (g Grid) Index(x, y int) int { return y*g.W + x }

// Coords inverts Index.
func (g Grid) Coords(i int) (int, int) { return i % g.W, i / g.W }

// WrapX applies horizontal wrapping to an x coordinate.
func (g Grid) WrapX(x int) int { return (x%g.W + g.W) % g.W }

// Neighbor resolves the cell displaced by (dx, dy) from (x, y). The x axis
// wraps; stepping past a pole reports ok=false and the cell must be skipped.
func (g Grid) Neighbor(x, y, dx, dy int) (int, bool) {
	ny := y + dy
	if ny < 0 || ny >= g.H {
		return 0, false
	}
	return g.Index(g.WrapX(x+dx), ny), true
}

// Latitude maps a row to [-1, 1] with 0 at the equator.
func (g Grid) Latitude(y int) float64 {
	if g.H <= 1 {
		return 0
	}
	return 2*float64(y)/float64(g.H-1) - 1
}
