package kernels

import (
	"image"

	"golang.org/x/image/draw"
)

// ToPixels packs src into row-major 0xAARRGGBB pixels with straight
// (non-premultiplied) alpha.
//
// Returns:
//   - pix: width*height packed pixels.
//   - width, height: the dimensions of src.Bounds().
func ToPixels(src image.Image) (pix []uint32, width, height int) {
	nrgba := toNRGBA(src)
	b := nrgba.Rect
	width, height = b.Dx(), b.Dy()
	pix = make([]uint32, width*height)
	for y := 0; y < height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
		for x := 0; x < width; x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			pix[y*width+x] = Pack(p[3], p[0], p[1], p[2])
		}
	}
	return pix, width, height
}

// FromPixels unpacks pix into a new image with bounds (0,0)-(width,height).
func FromPixels(pix []uint32, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	storePixels(dst, pix)
	return dst
}

// storePixels writes pix into dst, row by row, starting at dst.Rect.Min.
func storePixels(dst *image.NRGBA, pix []uint32) {
	width, height := dst.Rect.Dx(), dst.Rect.Dy()
	for y := 0; y < height; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+width*4]
		for x := 0; x < width; x++ {
			p := pix[y*width+x]
			o := row[x*4 : x*4+4 : x*4+4]
			o[0] = Extract(p, ChannelRed)
			o[1] = Extract(p, ChannelGreen)
			o[2] = Extract(p, ChannelBlue)
			o[3] = Extract(p, ChannelAlpha)
		}
	}
}

// toNRGBA returns src itself when it already is an *image.NRGBA and a
// converted copy otherwise.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

// BlurImage applies Blur to a copy of src.
//
// A radius below 1 returns an unblurred copy. The result keeps the bounds of
// src. If Options.Pool is provided, the output buffer may come from it.
func BlurImage(src image.Image, opt Options) (*image.NRGBA, error) {
	b := src.Bounds()
	dst := opt.Pool.GetNRGBA(b)
	if opt.Radius <= 0 || b.Empty() {
		draw.Draw(dst, b, src, b.Min, draw.Src)
		return dst, nil
	}

	pix, w, h := ToPixels(src)
	if err := Blur(pix, w, h, opt); err != nil {
		opt.Pool.PutNRGBA(dst)
		return nil, err
	}
	storePixels(dst, pix)
	return dst, nil
}

// BlurRegions blurs only the given regions by compositing from a blurred copy.
// This costs one full-frame blur plus a few rectangle copies.
// Regions are clipped to bounds; overlapping regions are handled naturally.
func BlurRegions(src image.Image, regions []image.Rectangle, opt Options) (*image.NRGBA, error) {
	blurred, err := BlurImage(src, opt)
	if err != nil {
		return nil, err
	}
	defer opt.Pool.PutNRGBA(blurred)

	b := src.Bounds()
	out := image.NewNRGBA(b)
	draw.Draw(out, b, src, b.Min, draw.Src)

	for _, r := range regions {
		r = r.Intersect(b)
		if r.Empty() {
			continue
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			srcOff := blurred.PixOffset(r.Min.X, y)
			dstOff := out.PixOffset(r.Min.X, y)
			n := r.Dx() * 4
			copy(out.Pix[dstOff:dstOff+n], blurred.Pix[srcOff:srcOff+n])
		}
	}
	return out, nil
}
