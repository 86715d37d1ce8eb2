package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResolution_GetMegaPixels performs table-driven tests on the GetMegaPixels method.
func TestResolution_GetMegaPixels(t *testing.T) {
	testCases := []struct {
		name     string
		res      Resolution
		expected float64
	}{
		{name: "Full HD 1080p", res: resolutions[ResolutionTypeFHD1080p], expected: 2.07},
		{name: "4K UHD", res: resolutions[ResolutionType4KUHD], expected: 8.29},
		{name: "1MP (5:4)", res: resolutions[ResolutionType1MP54], expected: 1.31},
		{name: "Zero Width", res: Resolution{Pixels: Pixels{Width: 0, Height: 1080}}, expected: 0.0},
		{name: "Negative Height", res: Resolution{Pixels: Pixels{Width: 1920, Height: -1}}, expected: 0.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.res.GetMegaPixels())
		})
	}
}

func TestResolutionLookups(t *testing.T) {
	all := GetAllResolutions()
	require.Len(t, all, len(resolutions))
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].GetMegaPixels(), all[i].GetMegaPixels())
	}
	for _, r := range GetSupportedResolutions() {
		assert.False(t, r.Heavy, r.String())
	}

	res, ok := GetResolutionByType(ResolutionTypeHD720p)
	require.True(t, ok)
	assert.Equal(t, "HD 720p (1280x720, 0.92MP)", res.String())

	_, ok = GetResolutionByType("VGA")
	assert.False(t, ok)

	res, ok = GetHighestResolutionUnderDimensions(2000, 1100)
	require.True(t, ok)
	assert.Equal(t, ResolutionTypeFHD1080p, res.Name)

	_, ok = GetHighestResolutionUnderDimensions(100, 100)
	assert.False(t, ok)
}
