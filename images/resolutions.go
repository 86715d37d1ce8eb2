// Package images decodes, blurs and encodes pictures. It also defines the
// common camera resolutions used to size benchmark frames.
package images

import (
	"fmt"
	"math"
	"sort"
)

// ResolutionType is the common name of a frame size.
type ResolutionType string

// Supported resolutions.
const (
	ResolutionTypeNHD      ResolutionType = "nHD"
	ResolutionTypeQHD540   ResolutionType = "qHD 540p"
	ResolutionTypeHD720p   ResolutionType = "HD 720p"
	ResolutionType1MP54    ResolutionType = "1MP (5:4)"
	ResolutionTypeFHD1080p ResolutionType = "Full HD 1080p"
	ResolutionTypeQHD1440p ResolutionType = "QHD 1440p"
	ResolutionType4MP169   ResolutionType = "4MP (16:9)"
	ResolutionType4KUHD    ResolutionType = "4K UHD"
	ResolutionType8KUHD    ResolutionType = "8K UHD"
)

// Pixels describes the exact dimensions of a resolution.
type Pixels struct {
	Width  int `json:"width"  yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Resolution is a named frame size.
type Resolution struct {
	Name   ResolutionType `json:"name"   yaml:"name"`
	Pixels Pixels         `json:"pixels" yaml:"pixels"`
	// Large enough that blurring it is slow; skipped by quick benchmark runs.
	Heavy bool `json:"heavy" yaml:"heavy"`
}

// GetMegaPixels returns the pixel count in millions, rounded to two decimal
// places (e.g. 2.07 for 1080p).
func (r Resolution) GetMegaPixels() float64 {
	if r.Pixels.Width <= 0 || r.Pixels.Height <= 0 {
		return 0.0
	}
	mp := float64(r.Pixels.Width*r.Pixels.Height) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// String returns a human-readable summary of the resolution.
func (r Resolution) String() string {
	return fmt.Sprintf("%s (%dx%d, %.2fMP)", r.Name, r.Pixels.Width, r.Pixels.Height, r.GetMegaPixels())
}

var resolutions = map[ResolutionType]Resolution{
	ResolutionTypeNHD:      {Name: ResolutionTypeNHD, Pixels: Pixels{Width: 640, Height: 360}},
	ResolutionTypeQHD540:   {Name: ResolutionTypeQHD540, Pixels: Pixels{Width: 960, Height: 540}},
	ResolutionTypeHD720p:   {Name: ResolutionTypeHD720p, Pixels: Pixels{Width: 1280, Height: 720}},
	ResolutionType1MP54:    {Name: ResolutionType1MP54, Pixels: Pixels{Width: 1280, Height: 1024}},
	ResolutionTypeFHD1080p: {Name: ResolutionTypeFHD1080p, Pixels: Pixels{Width: 1920, Height: 1080}},
	ResolutionTypeQHD1440p: {Name: ResolutionTypeQHD1440p, Pixels: Pixels{Width: 2560, Height: 1440}},
	ResolutionType4MP169:   {Name: ResolutionType4MP169, Pixels: Pixels{Width: 2688, Height: 1520}},
	ResolutionType4KUHD:    {Name: ResolutionType4KUHD, Pixels: Pixels{Width: 3840, Height: 2160}, Heavy: true},
	ResolutionType8KUHD:    {Name: ResolutionType8KUHD, Pixels: Pixels{Width: 7680, Height: 4320}, Heavy: true},
}

// GetAllResolutions returns every defined resolution, smallest first.
func GetAllResolutions() []Resolution {
	all := make([]Resolution, 0, len(resolutions))
	for _, res := range resolutions {
		all = append(all, res)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Pixels.Width*all[i].Pixels.Height < all[j].Pixels.Width*all[j].Pixels.Height
	})
	return all
}

// GetSupportedResolutions returns the resolutions that are not Heavy, smallest
// first.
func GetSupportedResolutions() []Resolution {
	var supported []Resolution
	for _, res := range GetAllResolutions() {
		if !res.Heavy {
			supported = append(supported, res)
		}
	}
	return supported
}

// GetResolutionByType retrieves a specific resolution by its type.
func GetResolutionByType(t ResolutionType) (Resolution, bool) {
	res, ok := resolutions[t]
	return res, ok
}

// GetHighestResolutionUnderDimensions returns the largest resolution that fits
// within width x height.
//
// Arguments:
//   - width: The maximum possible width of the image.
//   - height: The maximum possible height of the image.
//
// Returns:
//   - Resolution: The highest resolution that is under the given width and height.
//   - bool: True if a resolution was found, otherwise false.
func GetHighestResolutionUnderDimensions(width, height int) (Resolution, bool) {
	var highest Resolution
	var found bool

	for _, res := range GetAllResolutions() {
		if res.Pixels.Width <= width && res.Pixels.Height <= height {
			highest = res
			found = true
		}
	}
	return highest, found
}
