package benchmark

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-stackblur/images/kernels"
)

// Pattern names the synthetic content of a benchmark frame.
type Pattern string

const (
	// PatternNoise fills every channel with seeded random bytes.
	PatternNoise Pattern = "noise"
	// PatternGradient ramps red along x and green along y.
	PatternGradient Pattern = "gradient"
	// PatternCheckerboard alternates black and white 16px squares.
	PatternCheckerboard Pattern = "checkerboard"
	// PatternFlat is a single mid-gray color.
	PatternFlat Pattern = "flat"
)

// Patterns lists every supported pattern.
var Patterns = []Pattern{PatternNoise, PatternGradient, PatternCheckerboard, PatternFlat}

// FrameGenerator creates deterministic frames so runs are comparable.
type FrameGenerator struct {
	width  int
	height int
	seed   int64
}

// NewFrameGenerator creates a new frame generator with specified dimensions.
//
// Arguments:
// - width: Frame width in pixels.
// - height: Frame height in pixels.
//
// Returns:
// - A configured FrameGenerator instance.
func NewFrameGenerator(width, height int) *FrameGenerator {
	return &FrameGenerator{width: width, height: height, seed: 42}
}

// Generate returns a packed 0xAARRGGBB frame with the given pattern.
func (g *FrameGenerator) Generate(p Pattern) ([]uint32, error) {
	pix := make([]uint32, g.width*g.height)

	switch p {
	case PatternNoise, "":
		rng := rand.New(rand.NewSource(g.seed))
		for i := range pix {
			pix[i] = rng.Uint32()
		}
	case PatternGradient:
		for y := 0; y < g.height; y++ {
			for x := 0; x < g.width; x++ {
				r := uint8(x * 255 / max(g.width-1, 1))
				gr := uint8(y * 255 / max(g.height-1, 1))
				pix[y*g.width+x] = kernels.Pack(0xff, r, gr, 0x80)
			}
		}
	case PatternCheckerboard:
		for y := 0; y < g.height; y++ {
			for x := 0; x < g.width; x++ {
				var v uint8
				if (x/16+y/16)%2 == 0 {
					v = 0xff
				}
				pix[y*g.width+x] = kernels.Pack(0xff, v, v, v)
			}
		}
	case PatternFlat:
		gray := kernels.Pack(0xff, 0x80, 0x80, 0x80)
		for i := range pix {
			pix[i] = gray
		}
	default:
		return nil, errors.Errorf("unknown pattern %q", p)
	}
	return pix, nil
}
