package images

import (
	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-stackblur/images/kernels"
)

// Lookup tables for 8-bit transfer functions, built once.
var (
	srgbToLinear [256]uint8
	linearToSRGB [256]uint8
)

func init() {
	for i := range 256 {
		x := float32(i) / 255
		srgbToLinear[i] = toByte(decodeGamma(x))
		linearToSRGB[i] = toByte(encodeGamma(x))
	}
}

// decodeGamma is the IEC 61966-2-1 sRGB electro-optical transfer function.
func decodeGamma(x float32) float32 {
	if x <= 0.04045 {
		return x / 12.92
	}
	return math32.Pow((x+0.055)/1.055, 2.4)
}

func encodeGamma(x float32) float32 {
	if x <= 0.0031308 {
		return x * 12.92
	}
	return 1.055*math32.Pow(x, 1/2.4) - 0.055
}

func toByte(v float32) uint8 {
	return uint8(math32.Min(math32.Max(v, 0), 1)*255 + 0.5)
}

// SRGBToLinear maps one gamma-encoded channel value to linear light.
func SRGBToLinear(c uint8) uint8 { return srgbToLinear[c] }

// LinearToSRGB maps one linear-light channel value back to sRGB.
func LinearToSRGB(c uint8) uint8 { return linearToSRGB[c] }

// ToLinear converts the color channels of packed pixels to linear light in
// place. Alpha is left as is.
//
// Blurring in linear light keeps edges between bright and dark areas from
// darkening. Eight bits of linear precision lose shadow detail; the round trip
// is not lossless.
func ToLinear(pix []uint32) {
	mapColor(pix, &srgbToLinear)
}

// ToSRGB is the inverse of ToLinear.
func ToSRGB(pix []uint32) {
	mapColor(pix, &linearToSRGB)
}

func mapColor(pix []uint32, lut *[256]uint8) {
	for i, p := range pix {
		pix[i] = kernels.Pack(
			kernels.Extract(p, kernels.ChannelAlpha),
			lut[kernels.Extract(p, kernels.ChannelRed)],
			lut[kernels.Extract(p, kernels.ChannelGreen)],
			lut[kernels.Extract(p, kernels.ChannelBlue)],
		)
	}
}
