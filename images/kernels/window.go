package kernels

import (
	"fmt"

	"github.com/pkg/errors"
)

// WindowUpdate selects how a Window maintains its weighted sum.
type WindowUpdate int

const (
	// UpdateIncremental tracks the sum with two half sums, O(1) per pixel.
	UpdateIncremental WindowUpdate = iota
	// UpdateRecompute evaluates the whole tent on every output, O(r) per pixel.
	UpdateRecompute
)

// String returns the flag spelling of the update strategy.
func (u WindowUpdate) String() string {
	switch u {
	case UpdateIncremental:
		return "incremental"
	case UpdateRecompute:
		return "recompute"
	default:
		return fmt.Sprintf("WindowUpdate(%d)", int(u))
	}
}

// ParseWindowUpdate is the inverse of String.
func ParseWindowUpdate(s string) (WindowUpdate, error) {
	switch s {
	case "incremental", "":
		return UpdateIncremental, nil
	case "recompute":
		return UpdateRecompute, nil
	default:
		return UpdateIncremental, errors.Errorf("unknown window update %q", s)
	}
}

// Window is the sliding stack of 2r+1 samples centered on the pixel being
// produced. Slot i, counted from the trailing edge, weighs min(i+1, 2r+1-i).
type Window interface {
	// Seed refills the window for a new line centered on its first pixel.
	// Positions before the line start replicate line.At(0); positions past the
	// end replicate the last pixel.
	Seed(line Line)
	// Output returns the blurred value for the current center. center is the
	// original pixel being replaced; its alpha is kept when alpha is not blurred.
	Output(center uint32) uint32
	// Advance drops the trailing sample and appends p at the leading edge.
	Advance(p uint32)
}

// NewWindow returns a window for radius r.
//
// Arguments:
//   - r: blur radius in [1, MaxRadius].
//   - update: sum maintenance strategy.
//   - div: divisor built for r.
//   - blurAlpha: whether the alpha channel is blurred.
//   - buf: optional backing storage; reused when it holds at least 2r+1 samples.
func NewWindow(r int, update WindowUpdate, div Divisor, blurAlpha bool, buf []uint32) Window {
	size := 2*r + 1
	if cap(buf) < size {
		buf = make([]uint32, size)
	}
	buf = buf[:size]

	if update == UpdateRecompute {
		return &tentWindow{r: r, div: div, blurAlpha: blurAlpha, samples: buf}
	}
	return &stackWindow{r: r, div: div, blurAlpha: blurAlpha, stack: buf}
}

// seedSamples writes the clamp-to-edge starting window of line into buf and
// calls visit for every slot.
func seedSamples(line Line, r int, buf []uint32, visit func(slot int, p uint32)) {
	n := line.Len()
	first := line.At(0)
	for i := 0; i <= r; i++ {
		buf[i] = first
		visit(i, first)
	}
	for i := 1; i <= r; i++ {
		p := line.At(min(i, n-1))
		buf[r+i] = p
		visit(r+i, p)
	}
}

func emit(div Divisor, blurAlpha bool, sum [4]uint32, center uint32) uint32 {
	var out [4]uint32
	for c := range sum {
		out[c] = div.Divide(sum[c])
	}
	if !blurAlpha {
		out[0] = center >> ChannelAlpha
	}
	return join(out)
}

// stackWindow is the classic StackBlur update. sumOut holds the trailing half
// including the center, sumIn the leading half excluding it. Stepping subtracts
// sumOut from the total, adds the new sumIn and moves the next sample across
// the center.
type stackWindow struct {
	r         int
	div       Divisor
	blurAlpha bool

	stack []uint32
	sp    int // center slot

	sum, sumIn, sumOut [4]uint32
}

func (w *stackWindow) Seed(line Line) {
	w.sum, w.sumIn, w.sumOut = [4]uint32{}, [4]uint32{}, [4]uint32{}
	seedSamples(line, w.r, w.stack, func(slot int, p uint32) {
		ch := split(p)
		weight := uint32(min(slot+1, len(w.stack)-slot))
		for c := range ch {
			w.sum[c] += ch[c] * weight
			if slot <= w.r {
				w.sumOut[c] += ch[c]
			} else {
				w.sumIn[c] += ch[c]
			}
		}
	})
	w.sp = w.r
}

func (w *stackWindow) Output(center uint32) uint32 {
	return emit(w.div, w.blurAlpha, w.sum, center)
}

func (w *stackWindow) Advance(p uint32) {
	size := len(w.stack)

	// The trailing slot sits r behind the center.
	tail := w.sp + size - w.r
	if tail >= size {
		tail -= size
	}
	leaving := split(w.stack[tail])
	w.stack[tail] = p
	entering := split(p)

	w.sp++
	if w.sp == size {
		w.sp = 0
	}
	center := split(w.stack[w.sp])

	for c := range w.sum {
		w.sum[c] -= w.sumOut[c]
		w.sumOut[c] -= leaving[c]
		w.sumIn[c] += entering[c]
		w.sum[c] += w.sumIn[c]
		w.sumOut[c] += center[c]
		w.sumIn[c] -= center[c]
	}
}

// tentWindow recomputes the full weighted sum for every output.
type tentWindow struct {
	r         int
	div       Divisor
	blurAlpha bool

	samples []uint32
	head    int // trailing slot
}

func (w *tentWindow) Seed(line Line) {
	w.head = 0
	seedSamples(line, w.r, w.samples, func(int, uint32) {})
}

func (w *tentWindow) Output(center uint32) uint32 {
	var sum [4]uint32
	n := len(w.samples)
	for i := 0; i < n; i++ {
		slot := w.head + i
		if slot >= n {
			slot -= n
		}
		ch := split(w.samples[slot])
		weight := uint32(min(i+1, n-i))
		for c := range ch {
			sum[c] += ch[c] * weight
		}
	}
	return emit(w.div, w.blurAlpha, sum, center)
}

func (w *tentWindow) Advance(p uint32) {
	w.samples[w.head] = p
	w.head++
	if w.head == len(w.samples) {
		w.head = 0
	}
}
