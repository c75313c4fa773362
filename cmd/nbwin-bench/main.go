// Package main provides nbwin-bench, a small harness that measures how
// long counter collection passes take on the current machine, sequentially
// and with the bounded fan-out the monitor uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/i978sukhoi/nbwin/internal/collect"
	"github.com/i978sukhoi/nbwin/internal/logging"
	"github.com/i978sukhoi/nbwin/internal/netif"
	"github.com/i978sukhoi/nbwin/internal/stats"
	"github.com/i978sukhoi/nbwin/internal/version"
)

func main() {
	iterations := flag.Int("iterations", 10, "Number of timed collection passes per strategy")
	sourceKind := flag.String("source", "auto", "Counter source: auto, gopsutil or procfs")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info().String())
		return
	}

	logging.SetupFromEnv()

	if err := run(context.Background(), *sourceKind, *iterations); err != nil {
		slog.Error("Benchmark failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, sourceKind string, iterations int) error {
	if iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", iterations)
	}

	source, err := netif.NewSource(sourceKind, stats.RealClock{})
	if err != nil {
		return fmt.Errorf("counter source: %w", err)
	}

	interfaces, err := source.ListInterfaces(ctx)
	if err != nil {
		return fmt.Errorf("interface discovery: %w", err)
	}
	if len(interfaces) == 0 {
		return fmt.Errorf("no network interfaces found")
	}

	fmt.Printf("nbwin collection benchmark\n")
	fmt.Printf("interfaces: %d, iterations: %d, source: %s\n\n", len(interfaces), iterations, sourceKind)

	sequential := timePasses(iterations, func() {
		for _, iface := range interfaces {
			if _, err := source.ReadCounters(ctx, iface.Index); err != nil {
				slog.Debug("Read failed", "interface", iface.Name, "error", err)
			}
		}
	})

	collector := collect.NewCollector(source)
	parallel := timePasses(iterations, func() {
		collector.Collect(ctx, interfaces)
	})

	printTiming("sequential", sequential)
	printTiming("parallel", parallel)

	if avg := summarize(parallel).avg; avg > 0 {
		fmt.Printf("\nspeedup: %.1fx\n", float64(summarize(sequential).avg)/float64(avg))
	}

	return nil
}

// timePasses runs one untimed warmup pass and then the timed iterations.
func timePasses(iterations int, pass func()) []time.Duration {
	pass()

	durations := make([]time.Duration, iterations)
	for i := 0; i < iterations; i++ {
		start := time.Now()
		pass()
		durations[i] = time.Since(start)
	}

	return durations
}

type timing struct {
	avg    time.Duration
	min    time.Duration
	max    time.Duration
	stddev time.Duration
}

func summarize(durations []time.Duration) timing {
	t := timing{min: durations[0], max: durations[0]}

	var sum time.Duration
	for _, d := range durations {
		sum += d
		if d < t.min {
			t.min = d
		}
		if d > t.max {
			t.max = d
		}
	}
	t.avg = sum / time.Duration(len(durations))

	var variance float64
	for _, d := range durations {
		delta := float64(d - t.avg)
		variance += delta * delta
	}
	t.stddev = time.Duration(math.Sqrt(variance / float64(len(durations))))

	return t
}

func printTiming(label string, durations []time.Duration) {
	t := summarize(durations)
	fmt.Printf("%-12s avg %9s   min %9s   max %9s   stddev %9s\n",
		label, formatMs(t.avg), formatMs(t.min), formatMs(t.max), formatMs(t.stddev))
}

func formatMs(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
}
