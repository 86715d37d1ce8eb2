package images

import (
	"image"

	"github.com/nfnt/resize"
)

// Fit downscales img so that neither side exceeds maxSize, keeping the aspect
// ratio. Images that already fit, and a maxSize of 0 or less, are returned
// unchanged.
//
// Arguments:
//   - img: The source image.
//   - maxSize: The largest allowed width and height in pixels.
//
// Returns:
//   - image.Image: The resized image, or img itself.
func Fit(img image.Image, maxSize int) image.Image {
	if maxSize <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxSize && b.Dy() <= maxSize {
		return img
	}
	return resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Lanczos3)
}
