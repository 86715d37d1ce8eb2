package kernels

import (
	"image"
	"sync"
)

// Pool lets callers reuse window storage and output images across blurs,
// which keeps GC pressure flat when blurring video frames.
// A nil *Pool is valid and allocates on every call.
type Pool struct {
	nrgba   sync.Pool // *image.NRGBA
	samples sync.Pool // *[]uint32
}

// GetNRGBA returns an image with the given bounds. Its contents are undefined.
func (p *Pool) GetNRGBA(bounds image.Rectangle) *image.NRGBA {
	if p == nil {
		return image.NewNRGBA(bounds)
	}
	if v := p.nrgba.Get(); v != nil {
		img := v.(*image.NRGBA)
		if img.Rect == bounds {
			return img
		}
	}
	return image.NewNRGBA(bounds)
}

// PutNRGBA hands img back for reuse. The next writer fully overwrites it.
func (p *Pool) PutNRGBA(img *image.NRGBA) {
	if p == nil || img == nil {
		return
	}
	p.nrgba.Put(img)
}

func (p *Pool) getSamples(size int) *[]uint32 {
	if p != nil {
		if v := p.samples.Get(); v != nil {
			buf := v.(*[]uint32)
			if cap(*buf) >= size {
				return buf
			}
		}
	}
	buf := make([]uint32, size)
	return &buf
}

func (p *Pool) putSamples(buf *[]uint32) {
	if p == nil || buf == nil {
		return
	}
	p.samples.Put(buf)
}
