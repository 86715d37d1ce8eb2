package images

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnsupportedFormat is returned when a file extension or format name has no
// codec.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ImageFormat represents supported image formats
type ImageFormat string

// ImageFormat constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
	// FormatBMP is the Windows bitmap format.
	FormatBMP ImageFormat = "bmp"
)

var extensions = map[string]ImageFormat{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".webp": FormatWebP,
	".bmp":  FormatBMP,
}

// FormatFromPath maps a file extension to its ImageFormat. The match is case
// insensitive.
//
// Arguments:
//   - path: The file path.
//
// Returns:
//   - ImageFormat: The format of the file.
//   - error: ErrUnsupportedFormat when the extension is not known.
func FormatFromPath(path string) (ImageFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", errors.Wrapf(ErrUnsupportedFormat, "extension %q", ext)
}

// ParseFormat validates a format name such as "png" or "jpg".
func ParseFormat(name string) (ImageFormat, error) {
	return FormatFromPath("." + name)
}
