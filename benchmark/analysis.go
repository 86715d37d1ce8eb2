package benchmark

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ToleranceConfig defines acceptable variance before a change is reported.
//
// Example:
//
//	config := &ToleranceConfig{
//	    ThroughputPercent: 10.0, // 10% fewer megapixels per second is acceptable.
//	    MemoryPercent:     15.0, // 15% more allocation is acceptable.
//	}
type ToleranceConfig struct {
	ThroughputPercent float64 `json:"throughput_percent" yaml:"throughput_percent"`
	MemoryPercent     float64 `json:"memory_percent"     yaml:"memory_percent"`
}

// NewDefaultToleranceConfig returns thresholds suited to noisy CI machines.
func NewDefaultToleranceConfig() *ToleranceConfig {
	return &ToleranceConfig{
		ThroughputPercent: 10.0,
		MemoryPercent:     15.0,
	}
}

// Comparison is the change of one scenario between two runs. Percentages are
// positive when the current run is faster or allocates more.
type Comparison struct {
	Scenario          string  `json:"scenario"`
	BaselineMPS       float64 `json:"baseline_mps"`
	CurrentMPS        float64 `json:"current_mps"`
	ThroughputPercent float64 `json:"throughput_percent"`
	MemoryPercent     float64 `json:"memory_percent"`
	Regression        bool    `json:"regression"`
	Improvement       bool    `json:"improvement"`
}

// Statistics summarizes a set of values.
type Statistics struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// AnalysisReport compares a run against a baseline run.
type AnalysisReport struct {
	Timestamp      time.Time    `json:"timestamp"`
	HasRegression  bool         `json:"has_regression"`
	HasImprovement bool         `json:"has_improvement"`
	Summary        string       `json:"summary"`
	Comparisons    []Comparison `json:"comparisons"`
	// Throughput is computed over ThroughputPercent of matched scenarios.
	Throughput Statistics `json:"throughput"`
	// Scenarios present in only one of the runs.
	Unmatched []string `json:"unmatched,omitempty"`
}

// LoadResults reads a results file written by Suite.SaveResults.
func LoadResults(path string) ([]PerformanceMetrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read results")
	}
	var results []PerformanceMetrics
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, errors.Wrapf(err, "failed to parse results %s", path)
	}
	return results, nil
}

// Compare matches scenarios by name and flags those outside tolerance.
//
// Arguments:
//   - baseline: Results of the reference run.
//   - current: Results of the run under test.
//   - tol: Thresholds; nil uses NewDefaultToleranceConfig.
//
// Returns:
//   - *AnalysisReport: Per-scenario comparisons, sorted by name.
func Compare(baseline, current []PerformanceMetrics, tol *ToleranceConfig) *AnalysisReport {
	if tol == nil {
		tol = NewDefaultToleranceConfig()
	}
	report := &AnalysisReport{Timestamp: time.Now()}

	base := make(map[string]PerformanceMetrics, len(baseline))
	for _, m := range baseline {
		base[m.Scenario.Name] = m
	}

	var deltas []float64
	seen := make(map[string]bool, len(current))
	for _, cur := range current {
		name := cur.Scenario.Name
		seen[name] = true
		prev, ok := base[name]
		if !ok {
			report.Unmatched = append(report.Unmatched, name)
			continue
		}

		c := Comparison{
			Scenario:          name,
			BaselineMPS:       prev.MegapixelsPerSecond,
			CurrentMPS:        cur.MegapixelsPerSecond,
			ThroughputPercent: percentChange(prev.MegapixelsPerSecond, cur.MegapixelsPerSecond),
			MemoryPercent: percentChange(float64(prev.MemoryStats.TotalAllocBytes),
				float64(cur.MemoryStats.TotalAllocBytes)),
		}
		if c.ThroughputPercent < -tol.ThroughputPercent || c.MemoryPercent > tol.MemoryPercent {
			c.Regression = true
			report.HasRegression = true
		} else if c.ThroughputPercent > tol.ThroughputPercent {
			c.Improvement = true
			report.HasImprovement = true
		}
		report.Comparisons = append(report.Comparisons, c)
		deltas = append(deltas, c.ThroughputPercent)
	}
	for name := range base {
		if !seen[name] {
			report.Unmatched = append(report.Unmatched, name)
		}
	}

	sort.Slice(report.Comparisons, func(i, j int) bool {
		return report.Comparisons[i].Scenario < report.Comparisons[j].Scenario
	})
	sort.Strings(report.Unmatched)
	report.Throughput = calculateStatistics(deltas)
	report.Summary = summarize(report, tol)
	return report
}

func summarize(report *AnalysisReport, tol *ToleranceConfig) string {
	var regressions, improvements []string
	for _, c := range report.Comparisons {
		switch {
		case c.Regression:
			regressions = append(regressions, fmt.Sprintf("%s (%+.1f%% MP/s, %+.1f%% alloc)",
				c.Scenario, c.ThroughputPercent, c.MemoryPercent))
		case c.Improvement:
			improvements = append(improvements, fmt.Sprintf("%s (%+.1f%% MP/s)", c.Scenario, c.ThroughputPercent))
		}
	}

	switch {
	case len(report.Comparisons) == 0:
		return "NO DATA: no scenario appears in both runs"
	case report.HasRegression:
		return "REGRESSION: " + strings.Join(regressions, "; ")
	case report.HasImprovement:
		return "IMPROVEMENT: " + strings.Join(improvements, "; ")
	default:
		return fmt.Sprintf("STABLE: throughput within %.1f%% tolerance", tol.ThroughputPercent)
	}
}

func percentChange(before, after float64) float64 {
	if before == 0 {
		return 0
	}
	return (after - before) / before * 100
}

func calculateStatistics(values []float64) Statistics {
	if len(values) == 0 {
		return Statistics{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	stats := Statistics{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
	}

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	stats.Mean = sum / float64(len(sorted))

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		stats.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		stats.Median = sorted[mid]
	}

	variance := 0.0
	for _, v := range sorted {
		variance += (v - stats.Mean) * (v - stats.Mean)
	}
	stats.StdDev = math.Sqrt(variance / float64(len(sorted)))

	return stats
}

// GenerateMarkdown renders the report as a Markdown table.
func (report *AnalysisReport) GenerateMarkdown() string {
	var sb strings.Builder

	sb.WriteString("# Benchmark Comparison\n\n")
	sb.WriteString(fmt.Sprintf("**Summary:** %s\n\n", report.Summary))
	sb.WriteString("| Scenario | Baseline MP/s | Current MP/s | Change | Alloc change | Status |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, c := range report.Comparisons {
		status := "stable"
		if c.Regression {
			status = "regression"
		} else if c.Improvement {
			status = "improvement"
		}
		sb.WriteString(fmt.Sprintf("| %s | %.1f | %.1f | %+.1f%% | %+.1f%% | %s |\n",
			c.Scenario, c.BaselineMPS, c.CurrentMPS, c.ThroughputPercent, c.MemoryPercent, status))
	}
	sb.WriteString(fmt.Sprintf("\nMean throughput change: %+.1f%% (median %+.1f%%, stddev %.1f)\n",
		report.Throughput.Mean, report.Throughput.Median, report.Throughput.StdDev))
	if len(report.Unmatched) > 0 {
		sb.WriteString(fmt.Sprintf("\nUnmatched scenarios: %s\n", strings.Join(report.Unmatched, ", ")))
	}
	return sb.String()
}
