package util

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-stackblur/images"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Format is the codec selected by the file extension.
	Format images.ImageFormat
	// Data is the raw bytes of the image file.
	Data []byte
	// Frame is the number in a "frame-<n>" file name, or -1.
	Frame int
}

// LoadDirectoryImageFiles reads all image files from a directory.
//
// Files with an unknown extension are logged and skipped; subdirectories are
// ignored. Extracted video frames ("frame-12.jpg") sort by frame number,
// everything else by name after them.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: Slice of ImageFile, each containing the raw bytes of an image file.
// - error: Error if loading fails.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", dir)
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		format, err := images.FormatFromPath(entry.Name())
		if err != nil {
			log.Printf("skipping %s: %v", entry.Name(), err)
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
		files = append(files, ImageFile{
			Path:   path,
			Format: format,
			Data:   data,
			Frame:  frameNumber(entry.Name()),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if (a.Frame < 0) != (b.Frame < 0) {
			return a.Frame >= 0
		}
		if a.Frame != b.Frame {
			return a.Frame < b.Frame
		}
		return a.Path < b.Path
	})

	return files, nil
}

func frameNumber(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	digits, ok := strings.CutPrefix(base, "frame-")
	if !ok {
		return -1
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return -1
	}
	return n
}
