package main

import (
	"fmt"
	"log"

	"github.com/nvr-ai/go-stackblur/benchmark"
	"github.com/nvr-ai/go-stackblur/images"
)

// Example program to create and save benchmark scenarios
func main() {
	predefined := &benchmark.PredefinedScenarios{}

	quick := predefined.GetQuickScenarios()
	if err := benchmark.SaveScenarioSet(quick, "quick_scenarios.yaml"); err != nil {
		log.Fatalf("Failed to save quick scenarios: %v", err)
	}
	fmt.Printf("Saved %d quick scenarios\n", len(quick.Scenarios))

	comprehensive := predefined.GetComprehensiveScenarios()
	if err := benchmark.SaveScenarioSet(comprehensive, "comprehensive_scenarios.yaml"); err != nil {
		log.Fatalf("Failed to save comprehensive scenarios: %v", err)
	}
	fmt.Printf("Saved %d comprehensive scenarios\n", len(comprehensive.Scenarios))

	hd, _ := images.GetResolutionByType(images.ResolutionTypeFHD1080p)

	radii := predefined.GetRadiusComparisonScenarios(hd, benchmark.DefaultRadii)
	if err := benchmark.SaveScenarioSet(radii, "radius_scenarios.json"); err != nil {
		log.Fatalf("Failed to save radius scenarios: %v", err)
	}
	fmt.Printf("Saved %d radius scenarios\n", len(radii.Scenarios))

	strategies := predefined.GetStrategyComparisonScenarios(hd, 16)
	if err := benchmark.SaveScenarioSet(strategies, "strategy_scenarios.json"); err != nil {
		log.Fatalf("Failed to save strategy scenarios: %v", err)
	}
	fmt.Printf("Saved %d strategy scenarios\n", len(strategies.Scenarios))
}
