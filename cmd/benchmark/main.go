// ABOUTME: Command-line benchmark runner for the routing pipeline
// ABOUTME: Routes labeled fixtures offline and reports precision/recall per module

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/harper/cortex-standalone/benchmarks/routing"
)

func main() {
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable per-fixture output")
	minAccuracy := flag.Float64("min-accuracy", 0.85, "Fail below this module accuracy")
	flag.Parse()

	fmt.Println("========================================")
	fmt.Println("Cortex Routing Benchmarks")
	fmt.Println("========================================")
	fmt.Println()

	runner, err := routing.NewRunner(*verbose)
	if err != nil {
		log.Fatalf("Failed to create benchmark runner: %v", err)
	}
	defer runner.Close()

	fixtures := routing.AllFixtures()
	fmt.Printf("Routing %d labeled fixtures (offline, heuristic-only)...\n", len(fixtures))

	results, err := runner.Run(context.Background(), fixtures)
	if err != nil {
		log.Fatalf("Benchmark failed: %v", err)
	}

	report := routing.BuildReport(results)

	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")
	fmt.Printf("Module accuracy:  %.2f (%d/%d)\n", report.Accuracy(), report.ModuleCorrect, report.Total)
	fmt.Printf("Reflex agreement: %.2f (%d/%d)\n", report.ReflexAgreement(), report.ReflexCorrect, report.Total)
	fmt.Println()

	for _, module := range report.Modules() {
		stats := report.PerModule[module]
		fmt.Printf("%-14s precision %.2f  recall %.2f\n", module, stats.Precision(), stats.Recall())
	}

	if err := routing.ExportReport(report, *outputPath); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}
	fmt.Printf("\nResults written to %s\n", *outputPath)

	if report.Accuracy() < *minAccuracy {
		fmt.Printf("FAIL: accuracy %.2f below threshold %.2f\n", report.Accuracy(), *minAccuracy)
		os.Exit(1)
	}
}
