package kernels

import (
	"sync"

	"github.com/pkg/errors"
)

// Options configures a blur.
type Options struct {
	Radius    int             // Blur radius (window size = 2*Radius + 1). Must be >= 1; values above MaxRadius are clamped.
	BlurAlpha bool            // Blur the alpha channel too. When false every pixel keeps its own alpha.
	Divisor   DivisorStrategy // How weighted sums are normalized.
	Update    WindowUpdate    // How the window sum is maintained.
	Pool      *Pool           // Optional storage reuse.
	Parallel  bool            // Process rows, then columns, on several goroutines.
}

// Blur applies StackBlur to pix in place: a horizontal pass over every row,
// then a vertical pass over every column. Pixels outside the window are
// replicated from the nearest edge.
//
// Arguments:
//   - pix: row-major packed 0xAARRGGBB pixels, len(pix) >= width*height.
//     Blurring gamma-encoded values darkens transitions; convert to linear first.
//   - width, height: grid dimensions, both > 0.
//   - opt: blur options; opt.Radius must be >= 1.
//
// Returns:
//   - error: ErrInvalidGeometry when pix is shorter than width*height. The
//     buffer is not touched in that case.
//
// A radius below 1 or a non-positive dimension is a programming error and panics.
func Blur(pix []uint32, width, height int, opt Options) error {
	g, err := NewGrid(pix, width, height)
	if err != nil {
		return err
	}
	p := newPass(opt)
	p.horizontal(g)
	p.vertical(g)
	return nil
}

// BlurHorizontal runs only the row pass of Blur.
func BlurHorizontal(pix []uint32, width, height int, opt Options) error {
	g, err := NewGrid(pix, width, height)
	if err != nil {
		return err
	}
	newPass(opt).horizontal(g)
	return nil
}

// BlurVertical runs only the column pass of Blur.
func BlurVertical(pix []uint32, width, height int, opt Options) error {
	g, err := NewGrid(pix, width, height)
	if err != nil {
		return err
	}
	newPass(opt).vertical(g)
	return nil
}

// pass holds what every line of one blur shares.
type pass struct {
	r   int
	div Divisor
	opt Options
}

func newPass(opt Options) pass {
	r := ClampRadius(opt.Radius)
	if r < 1 {
		panic(errors.Errorf("kernels: blur radius %d is below 1", opt.Radius))
	}
	return pass{r: r, div: opt.Divisor.ForRadius(r), opt: opt}
}

func (p pass) horizontal(g Grid) {
	p.run(g.Height, func(y int) Line { return g.Row(y) })
}

func (p pass) vertical(g Grid) {
	p.run(g.Width, func(x int) Line { return g.Column(x) })
}

// sweep blurs one line in place. The sample fed to Advance is always ahead of
// the write cursor, so it still holds its unblurred value.
func (p pass) sweep(w Window, line Line) {
	n := line.Len()
	last := n - 1
	w.Seed(line)
	for x := 0; x < n; x++ {
		line.Set(x, w.Output(line.At(x)))
		if x < last {
			w.Advance(line.At(min(x+p.r+1, last)))
		}
	}
}

// run sweeps lines [0, n). Lines never overlap, so chunks run without locks;
// run returns only after every line is done.
func (p pass) run(n int, line func(i int) Line) {
	task := func(start, end int) {
		buf := p.opt.Pool.getSamples(2*p.r + 1)
		defer p.opt.Pool.putSamples(buf)

		w := NewWindow(p.r, p.opt.Update, p.div, p.opt.BlurAlpha, *buf)
		for i := start; i < end; i++ {
			p.sweep(w, line(i))
		}
	}

	if !p.opt.Parallel || n < 4 {
		task(0, n)
		return
	}

	// Parallelize by splitting lines into chunks.
	chunk := chooseChunk(n)
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			task(s, e)
		}(start, end)
	}
	wg.Wait()
}

// chooseChunk picks a work chunk size that balances goroutine overhead and
// cache locality.
func chooseChunk(n int) int {
	switch {
	case n >= 2048:
		return 128
	case n >= 512:
		return 64
	default:
		return 32
	}
}
