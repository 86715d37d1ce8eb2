package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-stackblur/benchmark"
	"github.com/nvr-ai/go-stackblur/images"
	"github.com/nvr-ai/go-stackblur/profiler"
)

func main() {
	var (
		scenarioFile  = flag.String("scenarios", "", "Path to a YAML or JSON scenario file")
		outputDir     = flag.String("output", "./benchmark_results", "Output directory for results")
		quick         = flag.Bool("quick", false, "Run quick benchmark scenarios")
		comprehensive = flag.Bool("comprehensive", false, "Run comprehensive benchmark scenarios")
		radii         = flag.String("radii", "", "Comma-separated radii to compare at 1080p")
		strategies    = flag.Int("strategies", 0, "Compare divisor and update strategies at 1080p with this radius")
		report        = flag.Bool("report", false, "Print a profiler report at the end")
		cpuProfile    = flag.String("cpuprofile", "", "Write a CPU profile to this file")
		baseline      = flag.String("baseline", "", "Compare against a saved benchmark_results_*.json and fail on regression")
		timeout       = flag.Duration("timeout", 30*time.Minute, "Benchmark timeout duration")
	)
	flag.Parse()

	prof := profiler.NewRuntimeProfiler(profiler.ProfilingOptions{Output: os.Stdout})
	if *cpuProfile != "" {
		if err := prof.StartCPUProfile(*cpuProfile); err != nil {
			log.Fatalf("Failed to start CPU profile: %v", err)
		}
	}
	defer prof.Stop()

	suite := benchmark.NewSuite(benchmark.NewSuiteArgs{
		OutputPath: *outputDir,
		Profiler:   prof,
	})

	predefined := &benchmark.PredefinedScenarios{}
	hd, _ := images.GetResolutionByType(images.ResolutionTypeFHD1080p)

	add := func(set *benchmark.ScenarioSet) {
		for _, scenario := range set.Scenarios {
			suite.AddScenario(scenario)
		}
		fmt.Printf("Added %d scenarios from %q\n", len(set.Scenarios), set.Name)
	}

	if *scenarioFile != "" {
		set, err := benchmark.LoadScenarioSet(*scenarioFile)
		if err != nil {
			log.Fatalf("Failed to load scenario file: %v", err)
		}
		add(set)
	}
	if *quick {
		add(predefined.GetQuickScenarios())
	}
	if *comprehensive {
		add(predefined.GetComprehensiveScenarios())
	}
	if *radii != "" {
		list, err := parseRadii(*radii)
		if err != nil {
			log.Fatalf("Invalid -radii: %v", err)
		}
		add(predefined.GetRadiusComparisonScenarios(hd, list))
	}
	if *strategies > 0 {
		add(predefined.GetStrategyComparisonScenarios(hd, *strategies))
	}

	// If no specific scenarios requested, use quick by default
	if len(suite.Scenarios()) == 0 {
		add(predefined.GetQuickScenarios())
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Println("Starting benchmark execution...")
	start := time.Now()

	if err := suite.Run(ctx); err != nil {
		log.Printf("Benchmark execution failed: %v", err)
		prof.Stop()
		os.Exit(1)
	}

	fmt.Printf("Benchmark completed in %v\n", time.Since(start).Truncate(time.Millisecond))

	results := suite.GetResults()
	fmt.Printf("\n=== BENCHMARK RESULTS SUMMARY ===\n")
	fmt.Printf("Total scenarios: %d\n", len(results))
	fmt.Printf("Results saved to: %s\n", *outputDir)

	var best benchmark.PerformanceMetrics
	for _, result := range results {
		if result.MegapixelsPerSecond > best.MegapixelsPerSecond {
			best = result
		}
		fmt.Printf("  %s: %.2f FPS, %.1f MP/s (%.2f MB allocated)\n",
			result.Scenario.Name,
			result.FramesPerSecond,
			result.MegapixelsPerSecond,
			float64(result.MemoryStats.TotalAllocBytes)/(1024*1024))
	}
	if best.Scenario.Name != "" {
		fmt.Printf("\nBest throughput: %s (%.1f MP/s)\n", best.Scenario.Name, best.MegapixelsPerSecond)
	}

	if *report {
		prof.Report()
	}

	if *baseline != "" {
		previous, err := benchmark.LoadResults(*baseline)
		if err != nil {
			log.Printf("Failed to load baseline: %v", err)
			prof.Stop()
			os.Exit(1)
		}
		analysis := benchmark.Compare(previous, results, nil)
		fmt.Printf("\n%s", analysis.GenerateMarkdown())
		if analysis.HasRegression {
			prof.Stop()
			os.Exit(1)
		}
	}
}

func parseRadii(s string) ([]int, error) {
	var radii []int
	for _, field := range strings.Split(s, ",") {
		r, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, err
		}
		if r < 1 {
			return nil, errors.Errorf("radius %d is below 1", r)
		}
		radii = append(radii, r)
	}
	return radii, nil
}

func init() {
	flag.Usage = func() {
		name := filepath.Base(os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", name)
		fmt.Fprintf(os.Stderr, "Measures StackBlur throughput on synthetic frames.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -quick\n", name)
		fmt.Fprintf(os.Stderr, "  %s -radii 1,8,32,128 -strategies 16 -report\n", name)
		fmt.Fprintf(os.Stderr, "  %s -scenarios ./quick_scenarios.yaml -cpuprofile cpu.pprof\n", name)
		fmt.Fprintf(os.Stderr, "  %s -quick -baseline ./benchmark_results/benchmark_results_2025-01-01_00-00-00.json\n", name)
	}
}
