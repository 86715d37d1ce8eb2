package images

import (
	"bytes"
	"image"
	"os"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-stackblur/images/kernels"
)

// Settings configures the decode, blur, encode pipeline.
type Settings struct {
	// Kernel options. A radius below 1 leaves pixels untouched.
	Options kernels.Options `json:"options" yaml:"options"`
	// Blur in linear light instead of on gamma-encoded values.
	Linear bool `json:"linear" yaml:"linear"`
	// Downscale so that neither side exceeds MaxSize before blurring. 0 disables.
	MaxSize int `json:"maxSize" yaml:"maxSize"`
	// Encoder quality for JPEG and WebP output.
	Quality int `json:"quality" yaml:"quality"`
}

// Blur runs the pixel part of the pipeline: fit, convert, blur, convert back.
//
// Arguments:
//   - img: The source image; it is not modified.
//   - s: The pipeline settings.
//
// Returns:
//   - *image.NRGBA: The blurred image with bounds starting at (0,0).
//   - error: An error if the blur fails.
func Blur(img image.Image, s Settings) (*image.NRGBA, error) {
	img = Fit(img, s.MaxSize)
	pix, w, h := kernels.ToPixels(img)
	if w == 0 || h == 0 || s.Options.Radius < 1 {
		return kernels.FromPixels(pix, w, h), nil
	}

	if s.Linear {
		ToLinear(pix)
	}
	if err := kernels.Blur(pix, w, h, s.Options); err != nil {
		return nil, errors.Wrap(err, "failed to blur")
	}
	if s.Linear {
		ToSRGB(pix)
	}
	return kernels.FromPixels(pix, w, h), nil
}

// BlurBytes decodes data, blurs it and encodes the result in the same format.
//
// Arguments:
//   - data: The encoded image.
//   - format: The format of data and of the result.
//   - s: The pipeline settings.
//
// Returns:
//   - []byte: The encoded blurred image.
//   - error: An error if any stage fails.
func BlurBytes(data []byte, format ImageFormat, s Settings) ([]byte, error) {
	img, err := DecodeBytes(data, format)
	if err != nil {
		return nil, err
	}
	out, err := Blur(img, s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, out, format, s.Quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BlurFile blurs the picture at in and writes it to out. Formats follow the
// file extensions, so this also converts between formats. in and out may be
// the same path; the input is fully read before out is written.
//
// Arguments:
//   - in: The source picture.
//   - out: The destination picture.
//   - s: The pipeline settings.
//
// Returns:
//   - error: An error if reading, decoding, blurring or writing fails.
func BlurFile(in, out string, s Settings) error {
	inFormat, err := FormatFromPath(in)
	if err != nil {
		return err
	}
	outFormat, err := FormatFromPath(out)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", in)
	}
	img, err := DecodeBytes(data, inFormat)
	if err != nil {
		return errors.Wrap(err, in)
	}
	blurred, err := Blur(img, s)
	if err != nil {
		return errors.Wrap(err, in)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, blurred, outFormat, s.Quality); err != nil {
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", out)
	}
	return nil
}
