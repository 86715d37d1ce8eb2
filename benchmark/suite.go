package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-stackblur/images/kernels"
	"github.com/nvr-ai/go-stackblur/profiler"
)

// Suite manages and executes benchmark scenarios
type Suite struct {
	scenarios []Scenario
	outputDir string
	pool      *kernels.Pool
	profiler  *profiler.RuntimeProfiler
	mu        sync.RWMutex
	results   []PerformanceMetrics
}

// NewSuiteArgs represents the arguments for creating a new benchmark suite.
type NewSuiteArgs struct {
	// OutputPath is where SaveResults writes; empty disables saving.
	OutputPath string `json:"outputPath" yaml:"outputPath"`
	// Profiler, if set, receives one timing per blurred frame.
	Profiler *profiler.RuntimeProfiler `json:"-" yaml:"-"`
}

// NewSuite creates a new benchmark suite.
//
// Arguments:
//   - args: The arguments for creating a new benchmark suite.
//
// Returns:
//   - *Suite: The benchmark suite.
func NewSuite(args NewSuiteArgs) *Suite {
	return &Suite{
		outputDir: args.OutputPath,
		pool:      &kernels.Pool{},
		profiler:  args.Profiler,
	}
}

// AddScenario adds a test scenario to the benchmark suite
func (bs *Suite) AddScenario(scenario Scenario) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.scenarios = append(bs.scenarios, scenario)
}

// Scenarios returns the queued scenarios.
func (bs *Suite) Scenarios() []Scenario {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return append([]Scenario(nil), bs.scenarios...)
}

// RunScenario executes a single benchmark scenario.
//
// Every iteration blurs a fresh copy of the same generated frame. The context
// is checked between iterations.
//
// Arguments:
//   - ctx: Cancels the run between frames.
//   - scenario: The scenario to run.
//
// Returns:
//   - *PerformanceMetrics: Timings and memory statistics.
//   - error: An invalid scenario or a cancelled context.
func (bs *Suite) RunScenario(ctx context.Context, scenario Scenario) (*PerformanceMetrics, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	opt, err := scenario.Options(bs.pool)
	if err != nil {
		return nil, err
	}

	w, h := scenario.Resolution.Pixels.Width, scenario.Resolution.Pixels.Height
	frame, err := NewFrameGenerator(w, h).Generate(scenario.Pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
	}
	work := make([]uint32, len(frame))

	blur := func() error {
		copy(work, frame)
		return kernels.Blur(work, w, h, opt)
	}

	for i := 0; i < scenario.WarmupRuns; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
		}
		if err := blur(); err != nil {
			return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
		}
	}

	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	metrics := &PerformanceMetrics{
		Scenario:   scenario,
		Timestamp:  time.Now(),
		Iterations: scenario.Iterations,
	}
	failures := 0

	for i := 0; i < scenario.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
		}

		var done func()
		if bs.profiler != nil {
			done = bs.profiler.StartOperation(scenario.Name)
		}
		start := time.Now()
		err := blur()
		d := time.Since(start)
		if done != nil {
			done()
		}

		if err != nil {
			failures++
			continue
		}
		metrics.TotalDuration += d
		if metrics.MinFrameDuration == 0 || d < metrics.MinFrameDuration {
			metrics.MinFrameDuration = d
		}
		metrics.MaxFrameDuration = max(metrics.MaxFrameDuration, d)
	}

	var endMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&endMem)

	if ok := scenario.Iterations - failures; ok > 0 && metrics.TotalDuration > 0 {
		metrics.AvgFrameDuration = metrics.TotalDuration / time.Duration(ok)
		metrics.FramesPerSecond = float64(ok) / metrics.TotalDuration.Seconds()
		metrics.MegapixelsPerSecond = metrics.FramesPerSecond * float64(w*h) / 1e6
	}
	metrics.ErrorRate = float64(failures) / float64(scenario.Iterations)
	metrics.MemoryStats = memoryDelta(&startMem, &endMem)
	metrics.CPUStats = currentCPU()

	if bs.profiler != nil {
		bs.profiler.RecordMetric("megapixels_per_second", metrics.MegapixelsPerSecond)
	}

	return metrics, nil
}

// Run executes all configured scenarios in order and saves the results.
// A failing scenario is logged and skipped; a cancelled context stops the run.
func (bs *Suite) Run(ctx context.Context) error {
	for _, scenario := range bs.Scenarios() {
		metrics, err := bs.RunScenario(ctx, scenario)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			log.Printf("Scenario %s failed: %v", scenario.Name, err)
			continue
		}

		bs.mu.Lock()
		bs.results = append(bs.results, *metrics)
		bs.mu.Unlock()

		log.Printf("Scenario %s completed: %.2f FPS, %.1f MP/s",
			scenario.Name, metrics.FramesPerSecond, metrics.MegapixelsPerSecond)
	}

	if bs.outputDir == "" {
		return nil
	}
	_, err := bs.SaveResults()
	return err
}

// SaveResults persists benchmark results as JSON plus a CSV summary.
//
// Returns:
//   - []string: The written file paths.
//   - error: If the directory or either file cannot be written.
func (bs *Suite) SaveResults() ([]string, error) {
	results := bs.GetResults()

	if err := os.MkdirAll(bs.outputDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	resultsFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_results_%s.json", timestamp))

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal results")
	}
	if err := os.WriteFile(resultsFile, data, 0o644); err != nil {
		return nil, errors.Wrap(err, "failed to write results file")
	}

	summaryFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_summary_%s.csv", timestamp))
	if err := saveSummaryCSV(summaryFile, results); err != nil {
		return nil, errors.Wrap(err, "failed to save summary CSV")
	}

	log.Printf("Results saved to: %s", resultsFile)
	log.Printf("Summary saved to: %s", summaryFile)
	return []string{resultsFile, summaryFile}, nil
}

func saveSummaryCSV(filename string, results []PerformanceMetrics) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	header := "Scenario,Resolution,Pattern,Radius,Divisor,Update,Parallel,FPS,MPx_per_s,Avg_Frame_ms,Total_Alloc_MB,Error_Rate\n"
	if _, err := file.WriteString(header); err != nil {
		return err
	}

	for _, r := range results {
		s := r.Scenario
		line := fmt.Sprintf("%s,%dx%d,%s,%d,%s,%s,%t,%.2f,%.2f,%.3f,%.2f,%.4f\n",
			s.Name,
			s.Resolution.Pixels.Width, s.Resolution.Pixels.Height,
			s.Pattern,
			s.Radius,
			orDefault(s.Divisor, "exact"),
			orDefault(s.Update, "incremental"),
			s.Parallel,
			r.FramesPerSecond,
			r.MegapixelsPerSecond,
			float64(r.AvgFrameDuration.Nanoseconds())/1e6,
			float64(r.MemoryStats.TotalAllocBytes)/(1024*1024),
			r.ErrorRate,
		)
		if _, err := file.WriteString(line); err != nil {
			return err
		}
	}

	return file.Close()
}

// GetResults returns all benchmark results
func (bs *Suite) GetResults() []PerformanceMetrics {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	results := make([]PerformanceMetrics, len(bs.results))
	copy(results, bs.results)
	return results
}
