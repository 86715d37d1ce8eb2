package kernels

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	red   uint32 = 0xffff0000
	green uint32 = 0xff00ff00
	blue  uint32 = 0xff0000ff
)

func randomPixels(n int, seed int64) []uint32 {
	rng := rand.New(rand.NewSource(seed))
	pix := make([]uint32, n)
	for i := range pix {
		pix[i] = rng.Uint32()
	}
	return pix
}

// referenceLine blurs one line by evaluating the whole tent with clamped
// indices for every output.
func referenceLine(line []uint32, r int, blurAlpha bool) []uint32 {
	n := len(line)
	div := NewExactDivisor(r)
	out := make([]uint32, n)
	for x := 0; x < n; x++ {
		var sum [4]uint32
		for k := -r; k <= r; k++ {
			i := min(max(x+k, 0), n-1)
			weight := uint32(r + 1 - abs(k))
			ch := split(line[i])
			for c := range ch {
				sum[c] += ch[c] * weight
			}
		}
		out[x] = emit(div, blurAlpha, sum, line[x])
	}
	return out
}

func referenceBlur(pix []uint32, w, h, r int, blurAlpha bool) []uint32 {
	out := append([]uint32(nil), pix...)
	for y := 0; y < h; y++ {
		copy(out[y*w:(y+1)*w], referenceLine(out[y*w:(y+1)*w], r, blurAlpha))
	}
	col := make([]uint32, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = out[y*w+x]
		}
		for y, p := range referenceLine(col, r, blurAlpha) {
			out[y*w+x] = p
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func blurred(t testing.TB, pix []uint32, w, h int, opt Options) []uint32 {
	t.Helper()
	out := append([]uint32(nil), pix...)
	require.NoError(t, Blur(out, w, h, opt))
	return out
}

func TestPackExtract(t *testing.T) {
	p := Pack(0x12, 0x34, 0x56, 0x78)
	assert.Equal(t, uint32(0x12345678), p)
	assert.Equal(t, uint8(0x12), Extract(p, ChannelAlpha))
	assert.Equal(t, uint8(0x34), Extract(p, ChannelRed))
	assert.Equal(t, uint8(0x56), Extract(p, ChannelGreen))
	assert.Equal(t, uint8(0x78), Extract(p, ChannelBlue))

	for _, v := range randomPixels(64, 7) {
		got := Pack(Extract(v, ChannelAlpha), Extract(v, ChannelRed), Extract(v, ChannelGreen), Extract(v, ChannelBlue))
		assert.Equal(t, v, got)
	}
}

func TestBlurSinglePixelUnchanged(t *testing.T) {
	for _, r := range []int{1, 2, 15, MaxRadius} {
		for _, opt := range []Options{
			{Radius: r, BlurAlpha: true},
			{Radius: r, BlurAlpha: true, Divisor: DivideTable},
			{Radius: r, Update: UpdateRecompute},
		} {
			pix := []uint32{0x12345678}
			require.NoError(t, Blur(pix, 1, 1, opt))
			assert.Equal(t, uint32(0x12345678), pix[0], "radius %d", r)
		}
	}
}

func TestBlurUniformImage(t *testing.T) {
	sizes := [][2]int{{1, 1}, {3, 3}, {5, 1}, {1, 6}, {16, 9}, {7, 13}}
	for _, size := range sizes {
		for _, r := range []int{1, 2, 7, 60, MaxRadius} {
			for _, div := range []DivisorStrategy{DivideExact, DivideTable} {
				w, h := size[0], size[1]
				name := fmt.Sprintf("%dx%d/r%d/%s", w, h, r, div)
				t.Run(name, func(t *testing.T) {
					for _, p := range []uint32{0x12345678, 0xffffffff, 0x00000000, 0x80c04020} {
						pix := make([]uint32, w*h)
						for i := range pix {
							pix[i] = p
						}
						require.NoError(t, Blur(pix, w, h, Options{Radius: r, BlurAlpha: true, Divisor: div}))
						for i, got := range pix {
							require.Equal(t, p, got, "pixel %d", i)
						}
					}
				})
			}
		}
	}
}

func TestBlurChannelIndependence(t *testing.T) {
	const w, h = 11, 8
	rng := rand.New(rand.NewSource(3))
	pattern := make([]uint8, w*h)
	for i := range pattern {
		pattern[i] = uint8(rng.Intn(256))
	}

	mixed := make([]uint32, w*h)
	alone := make([]uint32, w*h)
	for i, v := range pattern {
		mixed[i] = Pack(0xff, v, 0x40, 0x90)
		alone[i] = Pack(0, v, 0, 0)
	}

	for _, r := range []int{1, 3, 9} {
		opt := Options{Radius: r, BlurAlpha: true}
		m := blurred(t, mixed, w, h, opt)
		a := blurred(t, alone, w, h, opt)
		for i := range m {
			assert.Equal(t, uint8(0xff), Extract(m[i], ChannelAlpha))
			assert.Equal(t, uint8(0x40), Extract(m[i], ChannelGreen))
			assert.Equal(t, uint8(0x90), Extract(m[i], ChannelBlue))
			assert.Equal(t, Extract(a[i], ChannelRed), Extract(m[i], ChannelRed), "radius %d pixel %d", r, i)
		}
	}
}

func TestDivisorStrategiesAgree(t *testing.T) {
	const w, h = 9, 6
	src := randomPixels(w*h, 11)

	for r := 1; r <= MaxRadius; r++ {
		exactH := append([]uint32(nil), src...)
		tableH := append([]uint32(nil), src...)
		require.NoError(t, BlurHorizontal(exactH, w, h, Options{Radius: r, BlurAlpha: true}))
		require.NoError(t, BlurHorizontal(tableH, w, h, Options{Radius: r, BlurAlpha: true, Divisor: DivideTable}))

		exact := blurred(t, src, w, h, Options{Radius: r, BlurAlpha: true})
		table := blurred(t, src, w, h, Options{Radius: r, BlurAlpha: true, Divisor: DivideTable})

		for i := range src {
			for _, c := range []Channel{ChannelAlpha, ChannelRed, ChannelGreen, ChannelBlue} {
				dh := int(Extract(tableH[i], c)) - int(Extract(exactH[i], c))
				require.True(t, dh >= 0 && dh <= 1, "radius %d pixel %d one pass diff %d", r, i, dh)

				d := int(Extract(table[i], c)) - int(Extract(exact[i], c))
				require.True(t, d >= 0 && d <= 2, "radius %d pixel %d diff %d", r, i, d)
			}
		}
	}
}

func TestTableDivisorNeverExceedsByte(t *testing.T) {
	for r := 0; r <= MaxRadius; r++ {
		top := 255 * WeightSum(r)
		assert.Equal(t, uint32(255), NewTableDivisor(r).Divide(top), "radius %d", r)
		assert.Equal(t, uint32(255), NewExactDivisor(r).Divide(top), "radius %d", r)
	}
}

func TestWindowUpdatesBitIdentical(t *testing.T) {
	sizes := [][2]int{{1, 1}, {2, 9}, {13, 7}, {40, 3}, {64, 64}}
	for _, size := range sizes {
		w, h := size[0], size[1]
		src := randomPixels(w*h, int64(w*h))
		for _, r := range []int{1, 2, 3, 8, 31, MaxRadius} {
			for _, div := range []DivisorStrategy{DivideExact, DivideTable} {
				for _, alpha := range []bool{true, false} {
					opt := Options{Radius: r, BlurAlpha: alpha, Divisor: div}
					incremental := blurred(t, src, w, h, opt)
					opt.Update = UpdateRecompute
					recomputed := blurred(t, src, w, h, opt)
					require.Equal(t, recomputed, incremental, "%dx%d radius %d %s alpha=%v", w, h, r, div, alpha)
				}
			}
		}
	}
}

func TestBlurGolden(t *testing.T) {
	pix := []uint32{
		red, green, green, red,
		green, red, blue, green,
		green, blue, red, green,
		red, green, green, red,
	}
	want := []uint32{
		0xff9f5f00, 0xff4f9f0f, 0xff3f9f1f, 0xff8f5f0f,
		0xff4f9f0f, 0xff5f5f3f, 0xff4f5f4f, 0xff3f9f1f,
		0xff3f9f1f, 0xff4f5f4f, 0xff5f5f3f, 0xff4f9f0f,
		0xff8f5f0f, 0xff3f9f1f, 0xff4f9f0f, 0xff9f5f00,
	}

	for _, opt := range []Options{
		{Radius: 1},
		{Radius: 1, BlurAlpha: true},
		{Radius: 1, Divisor: DivideTable},
		{Radius: 1, Update: UpdateRecompute},
		{Radius: 1, Parallel: true, Pool: &Pool{}},
	} {
		assert.Equal(t, want, blurred(t, pix, 4, 4, opt), "%+v", opt)
	}
}

func TestBlurMaxRadius(t *testing.T) {
	const w, h = 10, 10
	white := make([]uint32, w*h)
	for i := range white {
		white[i] = 0xffffffff
	}

	for _, r := range []int{MaxRadius, 255, 1000} {
		for _, div := range []DivisorStrategy{DivideExact, DivideTable} {
			got := blurred(t, white, w, h, Options{Radius: r, BlurAlpha: true, Divisor: div})
			assert.Equal(t, white, got, "radius %d %s", r, div)
		}
	}

	src := randomPixels(w*h, 5)
	got := blurred(t, src, w, h, Options{Radius: 1000, BlurAlpha: true})
	assert.Equal(t, referenceBlur(src, w, h, MaxRadius, true), got)
}

func TestBlurEdgeReplication(t *testing.T) {
	a, b, c := Pack(0xff, 200, 10, 0), Pack(0xff, 0, 100, 50), Pack(0xff, 30, 30, 250)
	row := []uint32{a, b, c}
	require.NoError(t, BlurHorizontal(row, 3, 1, Options{Radius: 5, BlurAlpha: true}))
	assert.Equal(t, referenceLine([]uint32{a, b, c}, 5, true), row)

	// Left of the row only A is seen, right of it only C: with radius 5 the
	// first output weighs A by 21, B by 5 and C by 10 (sum 36).
	want := Pack(0xff, uint8((200*21+0*5+30*10)/36), uint8((10*21+100*5+30*10)/36), uint8((0*21+50*5+250*10)/36))
	assert.Equal(t, want, row[0])

	for _, size := range [][2]int{{1, 7}, {3, 1}, {17, 5}, {6, 23}} {
		w, h := size[0], size[1]
		src := randomPixels(w*h, int64(w+h))
		for _, r := range []int{1, 4, 11} {
			for _, alpha := range []bool{true, false} {
				got := blurred(t, src, w, h, Options{Radius: r, BlurAlpha: alpha})
				assert.Equal(t, referenceBlur(src, w, h, r, alpha), got, "%dx%d radius %d", w, h, r)
			}
		}
	}
}

func TestBlurWithoutAlphaKeepsAlpha(t *testing.T) {
	const w, h = 12, 7
	src := randomPixels(w*h, 17)
	got := blurred(t, src, w, h, Options{Radius: 3})
	for i := range src {
		assert.Equal(t, Extract(src[i], ChannelAlpha), Extract(got[i], ChannelAlpha))
	}
}

func TestBlurParallelMatchesSequential(t *testing.T) {
	const w, h = 300, 130
	src := randomPixels(w*h, 23)
	pool := &Pool{}

	for _, r := range []int{1, 7, 40} {
		for _, update := range []WindowUpdate{UpdateIncremental, UpdateRecompute} {
			seq := blurred(t, src, w, h, Options{Radius: r, Update: update})
			par := blurred(t, src, w, h, Options{Radius: r, Update: update, Parallel: true, Pool: pool})
			require.Equal(t, seq, par, "radius %d %s", r, update)
		}
	}
}

func TestBlurLongerBufferTail(t *testing.T) {
	src := randomPixels(4*3+5, 29)
	got := blurred(t, src, 4, 3, Options{Radius: 2})
	assert.Equal(t, src[12:], got[12:], "pixels past width*height must not move")
	assert.Equal(t, referenceBlur(src[:12], 4, 3, 2, false), got[:12])
}

func TestBlurInvalidGeometry(t *testing.T) {
	src := randomPixels(11, 31)
	pix := append([]uint32(nil), src...)

	for _, fn := range []func([]uint32, int, int, Options) error{Blur, BlurHorizontal, BlurVertical} {
		err := fn(pix, 4, 3, Options{Radius: 1})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidGeometry)
		assert.Contains(t, err.Error(), "buffer holds 11 pixels")
	}
	assert.Equal(t, src, pix)
}

func TestBlurContractViolationsPanic(t *testing.T) {
	pix := make([]uint32, 4)
	assert.Panics(t, func() { _ = Blur(pix, 2, 2, Options{Radius: 0}) })
	assert.Panics(t, func() { _ = Blur(pix, 2, 2, Options{Radius: -3}) })
	assert.Panics(t, func() { _ = Blur(pix, 0, 2, Options{Radius: 1}) })
	assert.Panics(t, func() { _ = Blur(pix, 2, -1, Options{Radius: 1}) })
}

func TestGridPartitions(t *testing.T) {
	const w, h = 7, 5
	g, err := NewGrid(make([]uint32, w*h+3), w, h)
	require.NoError(t, err)
	assert.Len(t, g.Pix, w*h)

	seen := make([]int, w*h)
	cols := g.Columns()
	require.Len(t, cols, w)
	for x, col := range cols {
		require.Equal(t, h, col.Len())
		for i := 0; i < col.Len(); i++ {
			idx := col.Index(i)
			assert.Equal(t, x, idx%w)
			seen[idx]++
		}
	}
	for idx, n := range seen {
		assert.Equal(t, 1, n, "index %d", idx)
	}

	seen = make([]int, w*h)
	for y, row := range g.Rows() {
		row.Set(0, uint32(y))
		for x := range row {
			seen[y*w+x]++
		}
	}
	for idx, n := range seen {
		assert.Equal(t, 1, n, "index %d", idx)
	}
	assert.Equal(t, uint32(3), g.Column(0).At(3))
}

func TestParseStrategies(t *testing.T) {
	for _, s := range []DivisorStrategy{DivideExact, DivideTable} {
		got, err := ParseDivisorStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	for _, u := range []WindowUpdate{UpdateIncremental, UpdateRecompute} {
		got, err := ParseWindowUpdate(u.String())
		require.NoError(t, err)
		assert.Equal(t, u, got)
	}
	_, err := ParseDivisorStrategy("float")
	assert.Error(t, err)
	_, err = ParseWindowUpdate("lazy")
	assert.Error(t, err)
	assert.Equal(t, MaxRadius, ClampRadius(300))
	assert.Equal(t, 12, ClampRadius(12))
}

// FuzzBlur checks that arbitrary buffers never fault and that both window
// updates agree.
func FuzzBlur(f *testing.F) {
	f.Add([]byte{1, 2, 3, 4, 5, 6, 7, 8}, uint8(1), uint8(2))
	f.Add(make([]byte, 640*4), uint8(15), uint8(64))
	f.Fuzz(func(t *testing.T, data []byte, radius, width uint8) {
		n := len(data) / 4
		if n == 0 || radius == 0 || width == 0 {
			t.Skip()
		}
		w := min(int(width), n)
		h := n / w
		pix := make([]uint32, n)
		for i := range pix {
			pix[i] = uint32(data[i*4])<<24 | uint32(data[i*4+1])<<16 | uint32(data[i*4+2])<<8 | uint32(data[i*4+3])
		}

		opt := Options{Radius: int(radius), BlurAlpha: radius%2 == 0}
		incremental := blurred(t, pix, w, h, opt)
		opt.Update = UpdateRecompute
		recomputed := blurred(t, pix, w, h, opt)
		if !assert.Equal(t, recomputed, incremental) {
			t.FailNow()
		}
	})
}
