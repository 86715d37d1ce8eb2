package kernels

import (
	"fmt"

	"github.com/pkg/errors"
)

// MaxRadius is the largest supported blur radius. The window then holds 509
// samples and a weighted channel sum stays below 255*65025.
const MaxRadius = 254

// ClampRadius limits r to MaxRadius. Values below 1 are returned unchanged.
func ClampRadius(r int) int {
	if r > MaxRadius {
		return MaxRadius
	}
	return r
}

// Divisor turns a weighted channel sum into an 8-bit channel value.
type Divisor interface {
	Divide(sum uint32) uint32
}

// DivisorStrategy selects the Divisor implementation used by a blur.
type DivisorStrategy int

const (
	// DivideExact divides every sum by r*(r+2)+1.
	DivideExact DivisorStrategy = iota
	// DivideTable multiplies and shifts with the StackBlur lookup tables.
	// Results are never below DivideExact and at most one level above it per pass.
	DivideTable
)

// String returns the flag spelling of the strategy.
func (s DivisorStrategy) String() string {
	switch s {
	case DivideExact:
		return "exact"
	case DivideTable:
		return "table"
	default:
		return fmt.Sprintf("DivisorStrategy(%d)", int(s))
	}
}

// ParseDivisorStrategy is the inverse of String.
func ParseDivisorStrategy(s string) (DivisorStrategy, error) {
	switch s {
	case "exact", "":
		return DivideExact, nil
	case "table":
		return DivideTable, nil
	default:
		return DivideExact, errors.Errorf("unknown divisor strategy %q", s)
	}
}

// ForRadius builds the divisor for radius r in [0, MaxRadius].
func (s DivisorStrategy) ForRadius(r int) Divisor {
	if s == DivideTable {
		return NewTableDivisor(r)
	}
	return NewExactDivisor(r)
}

// WeightSum returns r*(r+2)+1, the sum of the tent weights 1..r+1..1.
func WeightSum(r int) uint32 {
	return uint32(r*(r+2) + 1)
}

// ExactDivisor performs truncating integer division.
type ExactDivisor struct {
	d uint32
}

// NewExactDivisor returns the exact divisor for radius r.
func NewExactDivisor(r int) ExactDivisor {
	return ExactDivisor{d: WeightSum(r)}
}

// Divide implements Divisor.
func (e ExactDivisor) Divide(sum uint32) uint32 {
	return sum / e.d
}

// TableDivisor approximates division by a multiply and a right shift.
type TableDivisor struct {
	mul uint64
	shr uint
}

// NewTableDivisor returns the table divisor for radius r.
func NewTableDivisor(r int) TableDivisor {
	return TableDivisor{mul: uint64(mulTable[r]), shr: uint(shrTable[r])}
}

// Divide implements Divisor.
func (t TableDivisor) Divide(sum uint32) uint32 {
	v := (uint64(sum) * t.mul) >> t.shr
	if v > 0xff {
		return 0xff
	}
	return uint32(v)
}

// mulTable[r] / 2^shrTable[r] approximates 1 / (r+1)^2 from above.
var mulTable = [MaxRadius + 1]uint16{
	512, 512, 456, 512, 328, 456, 335, 512, 405, 328, 271, 456, 388, 335, 292, 512,
	454, 405, 364, 328, 298, 271, 496, 456, 420, 388, 360, 335, 312, 292, 273, 512,
	482, 454, 428, 405, 383, 364, 345, 328, 312, 298, 284, 271, 259, 496, 475, 456,
	437, 420, 404, 388, 374, 360, 347, 335, 323, 312, 302, 292, 282, 273, 265, 512,
	497, 482, 468, 454, 441, 428, 417, 405, 394, 383, 373, 364, 354, 345, 337, 328,
	320, 312, 305, 298, 291, 284, 278, 271, 265, 259, 507, 496, 485, 475, 465, 456,
	446, 437, 428, 420, 412, 404, 396, 388, 381, 374, 367, 360, 354, 347, 341, 335,
	329, 323, 318, 312, 307, 302, 297, 292, 287, 282, 278, 273, 269, 265, 261, 512,
	505, 497, 489, 482, 475, 468, 461, 454, 447, 441, 435, 428, 422, 417, 411, 405,
	399, 394, 389, 383, 378, 373, 368, 364, 359, 354, 350, 345, 341, 337, 332, 328,
	324, 320, 316, 312, 309, 305, 301, 298, 294, 291, 287, 284, 281, 278, 274, 271,
	268, 265, 262, 259, 257, 507, 501, 496, 491, 485, 480, 475, 470, 465, 460, 456,
	451, 446, 442, 437, 433, 428, 424, 420, 416, 412, 408, 404, 400, 396, 392, 388,
	385, 381, 377, 374, 370, 367, 363, 360, 357, 354, 350, 347, 344, 341, 338, 335,
	332, 329, 326, 323, 320, 318, 315, 312, 310, 307, 304, 302, 299, 297, 294, 292,
	289, 287, 285, 282, 280, 278, 275, 273, 271, 269, 267, 265, 263, 261, 259,
}

var shrTable = [MaxRadius + 1]uint8{
	9, 11, 12, 13, 13, 14, 14, 15, 15, 15, 15, 16, 16, 16, 16, 17, 17, 17, 17, 17, 17, 17, 18, 18,
	18, 18, 18, 18, 18, 18, 18, 19, 19, 19, 19, 19, 19, 19, 19, 19, 19, 19, 19, 19, 19, 20, 20, 20,
	20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 20, 21, 21, 21, 21, 21, 21, 21, 21, 21,
	21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 22, 22, 22, 22, 22, 22,
	22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22, 22,
	22, 22, 22, 22, 22, 22, 22, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23,
	23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23,
	23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 23, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
	24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24, 24,
}
