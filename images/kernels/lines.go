package kernels

import "github.com/pkg/errors"

// ErrInvalidGeometry reports a pixel buffer shorter than width*height.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Grid is a row-major view of width*height packed pixels.
// Pixel (x, y) lives at Pix[y*Width+x].
type Grid struct {
	Pix    []uint32
	Width  int
	Height int
}

// NewGrid validates the geometry of pix.
//
// Arguments:
//   - pix: the pixel buffer; it may be longer than width*height.
//   - width, height: grid dimensions, both > 0.
//
// Returns:
//   - Grid: a view over the first width*height pixels.
//   - error: ErrInvalidGeometry when pix is too short.
//
// Non-positive dimensions violate the caller contract and panic.
func NewGrid(pix []uint32, width, height int) (Grid, error) {
	if width <= 0 || height <= 0 {
		panic(errors.Errorf("kernels: non-positive grid dimensions %dx%d", width, height))
	}
	if len(pix)/width < height {
		return Grid{}, errors.Wrapf(ErrInvalidGeometry, "buffer holds %d pixels, %dx%d needs %d",
			len(pix), width, height, width*height)
	}
	return Grid{Pix: pix[:width*height], Width: width, Height: height}, nil
}

// Line is one row or column of a Grid.
type Line interface {
	Len() int
	At(i int) uint32
	Set(i int, p uint32)
}

// Row is a contiguous line.
type Row []uint32

// Len implements Line.
func (r Row) Len() int { return len(r) }

// At implements Line.
func (r Row) At(i int) uint32 { return r[i] }

// Set implements Line.
func (r Row) Set(i int, p uint32) { r[i] = p }

// Column is the strided line {x, x+width, x+2*width, ...} of a grid.
// Columns with different x never share an index, so distinct columns can be
// written concurrently.
type Column struct {
	pix    []uint32
	x      int
	stride int
	n      int
}

// Len implements Line.
func (c Column) Len() int { return c.n }

// Index maps the i-th element of the column to its buffer index.
func (c Column) Index(i int) int { return c.x + i*c.stride }

// At implements Line.
func (c Column) At(i int) uint32 { return c.pix[c.Index(i)] }

// Set implements Line.
func (c Column) Set(i int, p uint32) { c.pix[c.Index(i)] = p }

// Row returns row y.
func (g Grid) Row(y int) Row {
	return Row(g.Pix[y*g.Width : (y+1)*g.Width : (y+1)*g.Width])
}

// Column returns column x.
func (g Grid) Column(x int) Column {
	return Column{pix: g.Pix, x: x, stride: g.Width, n: g.Height}
}

// Rows partitions the grid into its Height rows.
func (g Grid) Rows() []Row {
	rows := make([]Row, g.Height)
	for y := range rows {
		rows[y] = g.Row(y)
	}
	return rows
}

// Columns partitions the grid into its Width columns. Every buffer index of
// the grid belongs to exactly one of them.
func (g Grid) Columns() []Column {
	cols := make([]Column, g.Width)
	for x := range cols {
		cols[x] = g.Column(x)
	}
	return cols
}
