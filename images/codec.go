package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
)

// DefaultQuality is used for lossy encoders when no quality is given.
const DefaultQuality = 90

// Decode reads one image of the given format from r.
//
// Arguments:
//   - r: The encoded image stream.
//   - format: The format of the stream.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: An error if the stream cannot be decoded.
func Decode(r io.Reader, format ImageFormat) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	switch format {
	case FormatJPEG:
		img, err = jpeg.Decode(r)
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatBMP:
		img, err = bmp.Decode(r)
	case FormatWebP:
		img, err = webp.Decode(r)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "decode %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", format)
	}
	return img, nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte, format ImageFormat) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}
	return Decode(bytes.NewReader(data), format)
}

// Encode writes img to w in the given format.
//
// Arguments:
//   - w: The destination.
//   - img: The image to encode.
//   - format: The output format.
//   - quality: JPEG/WebP quality in [1, 100]; 0 selects DefaultQuality. Ignored
//     by lossless formats.
//
// Returns:
//   - error: An error if encoding fails.
func Encode(w io.Writer, img image.Image, format ImageFormat, quality int) error {
	if quality <= 0 {
		quality = DefaultQuality
	}
	quality = min(quality, 100)

	var err error
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatWebP:
		err = webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "encode %q", format)
	}
	return errors.Wrapf(err, "failed to encode %s", format)
}
