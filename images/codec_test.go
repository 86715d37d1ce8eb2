package images

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want ImageFormat
	}{
		{"a.jpg", FormatJPEG},
		{"a.JPEG", FormatJPEG},
		{"dir/b.png", FormatPNG},
		{"c.webp", FormatWebP},
		{"d.Bmp", FormatBMP},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}

	_, err := FormatFromPath("notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = FormatFromPath("noext")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	f, err := ParseFormat("jpg")
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, f)
}

// TestCodecRoundTrip checks that every format decodes back to the encoded
// size, and that lossless formats keep the pixels.
func TestCodecRoundTrip(t *testing.T) {
	src := getTestImage(32, 16)

	for _, format := range []ImageFormat{FormatPNG, FormatBMP, FormatJPEG, FormatWebP} {
		t.Run(string(format), func(t *testing.T) {
			data := getEncoded(t, src, format)
			require.NotEmpty(t, data)

			img, err := DecodeBytes(data, format)
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 32, 16), img.Bounds())

			if format == FormatPNG || format == FormatBMP {
				for _, p := range []image.Point{{0, 0}, {31, 15}} {
					wr, wg, wb, _ := src.At(p.X, p.Y).RGBA()
					r, g, b, _ := img.At(p.X, p.Y).RGBA()
					assert.Equal(t, []uint32{wr >> 8, wg >> 8, wb >> 8}, []uint32{r >> 8, g >> 8, b >> 8})
				}
			}
		})
	}
}

func TestCodecErrors(t *testing.T) {
	_, err := DecodeBytes(nil, FormatPNG)
	assert.Error(t, err)

	_, err = DecodeBytes([]byte("not a png"), FormatPNG)
	assert.Error(t, err)

	_, err = Decode(bytes.NewReader([]byte{1}), ImageFormat("tiff"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	err = Encode(&bytes.Buffer{}, getTestImage(2, 2), ImageFormat("tiff"), 0)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
