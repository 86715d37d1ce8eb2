package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-stackblur/images"
	"github.com/nvr-ai/go-stackblur/images/kernels"
)

// DefaultRadii are the radii compared by the predefined scenario sets.
var DefaultRadii = []int{1, 4, 16, 64, 254}

// ScenarioBuilder helps build test scenarios with fluent API
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder creates a new scenario builder
func NewScenarioBuilder(name string) *ScenarioBuilder {
	res, _ := images.GetResolutionByType(images.ResolutionTypeHD720p)
	return &ScenarioBuilder{
		scenario: Scenario{
			Name:       name,
			Resolution: res,
			Pattern:    PatternNoise,
			Radius:     8,
			Iterations: 20,
			WarmupRuns: 2,
		},
	}
}

// WithResolution sets the frame size
func (sb *ScenarioBuilder) WithResolution(res images.Resolution) *ScenarioBuilder {
	sb.scenario.Resolution = res
	return sb
}

// WithSize sets a custom frame size
func (sb *ScenarioBuilder) WithSize(width, height int) *ScenarioBuilder {
	sb.scenario.Resolution = images.Resolution{
		Name:   images.ResolutionType(fmt.Sprintf("%dx%d", width, height)),
		Pixels: images.Pixels{Width: width, Height: height},
	}
	return sb
}

// WithPattern sets the frame content
func (sb *ScenarioBuilder) WithPattern(p Pattern) *ScenarioBuilder {
	sb.scenario.Pattern = p
	return sb
}

// WithRadius sets the blur radius
func (sb *ScenarioBuilder) WithRadius(r int) *ScenarioBuilder {
	sb.scenario.Radius = r
	return sb
}

// WithDivisor sets the divisor strategy
func (sb *ScenarioBuilder) WithDivisor(d kernels.DivisorStrategy) *ScenarioBuilder {
	sb.scenario.Divisor = d.String()
	return sb
}

// WithUpdate sets the window update strategy
func (sb *ScenarioBuilder) WithUpdate(u kernels.WindowUpdate) *ScenarioBuilder {
	sb.scenario.Update = u.String()
	return sb
}

// WithParallel toggles parallel line processing
func (sb *ScenarioBuilder) WithParallel(parallel bool) *ScenarioBuilder {
	sb.scenario.Parallel = parallel
	return sb
}

// WithBlurAlpha toggles blurring of the alpha channel
func (sb *ScenarioBuilder) WithBlurAlpha(blurAlpha bool) *ScenarioBuilder {
	sb.scenario.BlurAlpha = blurAlpha
	return sb
}

// WithIterations sets the number of test iterations
func (sb *ScenarioBuilder) WithIterations(iterations int) *ScenarioBuilder {
	sb.scenario.Iterations = iterations
	return sb
}

// WithWarmupRuns sets the number of warmup runs
func (sb *ScenarioBuilder) WithWarmupRuns(warmups int) *ScenarioBuilder {
	sb.scenario.WarmupRuns = warmups
	return sb
}

// Build returns the configured test scenario
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// ScenarioSet represents a collection of related test scenarios
type ScenarioSet struct {
	Name        string     `json:"name"        yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Scenarios   []Scenario `json:"scenarios"   yaml:"scenarios"`
}

// PredefinedScenarios contains common benchmark scenario sets
type PredefinedScenarios struct{}

// GetQuickScenarios returns a small set for smoke runs: 720p and 1080p noise
// at a small and a large radius, sequential and parallel.
func (ps *PredefinedScenarios) GetQuickScenarios() *ScenarioSet {
	var scenarios []Scenario

	for _, t := range []images.ResolutionType{images.ResolutionTypeHD720p, images.ResolutionTypeFHD1080p} {
		res, _ := images.GetResolutionByType(t)
		for _, r := range []int{4, 32} {
			for _, parallel := range []bool{false, true} {
				scenarios = append(scenarios, NewScenarioBuilder(scenarioName("quick", res, r, parallel)).
					WithResolution(res).
					WithRadius(r).
					WithParallel(parallel).
					WithIterations(10).
					WithWarmupRuns(1).
					Build())
			}
		}
	}

	return &ScenarioSet{
		Name:        "Quick Performance Test",
		Description: "Noise frames at 720p and 1080p, two radii, sequential and parallel",
		Scenarios:   scenarios,
	}
}

// GetComprehensiveScenarios crosses every supported resolution with
// DefaultRadii and both divisor strategies, always in parallel.
func (ps *PredefinedScenarios) GetComprehensiveScenarios() *ScenarioSet {
	var scenarios []Scenario

	for _, res := range images.GetSupportedResolutions() {
		for _, r := range DefaultRadii {
			for _, div := range []kernels.DivisorStrategy{kernels.DivideExact, kernels.DivideTable} {
				scenarios = append(scenarios, NewScenarioBuilder(scenarioName(div.String(), res, r, true)).
					WithResolution(res).
					WithRadius(r).
					WithDivisor(div).
					WithParallel(true).
					Build())
			}
		}
	}

	return &ScenarioSet{
		Name:        "Comprehensive Performance Test",
		Description: "All supported resolutions, default radii and both divisor strategies",
		Scenarios:   scenarios,
	}
}

// GetRadiusComparisonScenarios measures how cost grows with the radius at
// one resolution.
func (ps *PredefinedScenarios) GetRadiusComparisonScenarios(res images.Resolution, radii []int) *ScenarioSet {
	var scenarios []Scenario

	for _, r := range radii {
		scenarios = append(scenarios, NewScenarioBuilder(scenarioName("radius", res, r, false)).
			WithResolution(res).
			WithRadius(r).
			Build())
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Radius Comparison @ %s", res.Name),
		Description: fmt.Sprintf("Compares blur radii at %s", res),
		Scenarios:   scenarios,
	}
}

// GetStrategyComparisonScenarios compares every divisor and window update
// combination at one resolution and radius.
func (ps *PredefinedScenarios) GetStrategyComparisonScenarios(res images.Resolution, radius int) *ScenarioSet {
	var scenarios []Scenario

	for _, upd := range []kernels.WindowUpdate{kernels.UpdateIncremental, kernels.UpdateRecompute} {
		for _, div := range []kernels.DivisorStrategy{kernels.DivideExact, kernels.DivideTable} {
			name := fmt.Sprintf("%s_%s_%s", upd, div, scenarioName("", res, radius, false))
			scenarios = append(scenarios, NewScenarioBuilder(name).
				WithResolution(res).
				WithRadius(radius).
				WithDivisor(div).
				WithUpdate(upd).
				Build())
		}
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Strategy Comparison @ %s r=%d", res.Name, radius),
		Description: "Compares divisor and window update strategies",
		Scenarios:   scenarios,
	}
}

func scenarioName(prefix string, res images.Resolution, r int, parallel bool) string {
	name := fmt.Sprintf("%dx%d_r%d", res.Pixels.Width, res.Pixels.Height, r)
	if parallel {
		name += "_parallel"
	}
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

// SaveScenarioSet writes a scenario set as YAML, or as JSON when filename
// ends in .json.
func SaveScenarioSet(scenarioSet *ScenarioSet, filename string) error {
	var (
		data []byte
		err  error
	)
	if isJSON(filename) {
		data, err = json.MarshalIndent(scenarioSet, "", "  ")
	} else {
		data, err = yaml.Marshal(scenarioSet)
	}
	if err != nil {
		return errors.Wrap(err, "failed to marshal scenario set")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write scenario file")
	}
	return nil
}

// LoadScenarioSet loads a scenario set written by SaveScenarioSet and
// validates every scenario in it.
func LoadScenarioSet(filename string) (*ScenarioSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario file")
	}

	var scenarioSet ScenarioSet
	if isJSON(filename) {
		err = json.Unmarshal(data, &scenarioSet)
	} else {
		err = yaml.Unmarshal(data, &scenarioSet)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal scenario set")
	}

	for _, s := range scenarioSet.Scenarios {
		if err := s.Validate(); err != nil {
			return nil, errors.Wrap(err, filename)
		}
	}
	return &scenarioSet, nil
}

func isJSON(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".json")
}
