// Package benchmark measures blur throughput over synthetic frames.
package benchmark

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-stackblur/images"
	"github.com/nvr-ai/go-stackblur/images/kernels"
)

// Scenario defines a specific test configuration
type Scenario struct {
	Name       string            `json:"name"        yaml:"name"`
	Resolution images.Resolution `json:"resolution"  yaml:"resolution"`
	Pattern    Pattern           `json:"pattern"     yaml:"pattern"`
	Radius     int               `json:"radius"      yaml:"radius"`
	BlurAlpha  bool              `json:"blurAlpha"   yaml:"blurAlpha"`
	Divisor    string            `json:"divisor"     yaml:"divisor"`
	Update     string            `json:"update"      yaml:"update"`
	Parallel   bool              `json:"parallel"    yaml:"parallel"`
	Iterations int               `json:"iterations"  yaml:"iterations"`
	WarmupRuns int               `json:"warmupRuns"  yaml:"warmupRuns"`
}

// Options resolves the kernel options of the scenario.
//
// Arguments:
// - pool: Storage shared by every iteration, may be nil.
//
// Returns:
// - kernels.Options: The blur options.
// - error: If the divisor or update names are unknown.
func (s Scenario) Options(pool *kernels.Pool) (kernels.Options, error) {
	div, err := kernels.ParseDivisorStrategy(s.Divisor)
	if err != nil {
		return kernels.Options{}, errors.Wrapf(err, "scenario %s", s.Name)
	}
	upd, err := kernels.ParseWindowUpdate(s.Update)
	if err != nil {
		return kernels.Options{}, errors.Wrapf(err, "scenario %s", s.Name)
	}
	return kernels.Options{
		Radius:    s.Radius,
		BlurAlpha: s.BlurAlpha,
		Divisor:   div,
		Update:    upd,
		Pool:      pool,
		Parallel:  s.Parallel,
	}, nil
}

// Validate reports the first problem that would make the scenario unrunnable.
func (s Scenario) Validate() error {
	switch {
	case s.Name == "":
		return errors.New("scenario has no name")
	case s.Resolution.Pixels.Width <= 0 || s.Resolution.Pixels.Height <= 0:
		return errors.Errorf("scenario %s: invalid resolution %dx%d", s.Name,
			s.Resolution.Pixels.Width, s.Resolution.Pixels.Height)
	case s.Radius < 1:
		return errors.Errorf("scenario %s: radius %d is below 1", s.Name, s.Radius)
	case s.Iterations < 1:
		return errors.Errorf("scenario %s: needs at least one iteration", s.Name)
	}
	_, err := s.Options(nil)
	return err
}

// String returns a one-line description of the scenario.
func (s Scenario) String() string {
	mode := "sequential"
	if s.Parallel {
		mode = "parallel"
	}
	return fmt.Sprintf("%s: %dx%d %s r=%d divisor=%s update=%s %s",
		s.Name, s.Resolution.Pixels.Width, s.Resolution.Pixels.Height, s.Pattern,
		s.Radius, orDefault(s.Divisor, "exact"), orDefault(s.Update, "incremental"), mode)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
