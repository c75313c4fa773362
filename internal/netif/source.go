package netif

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/i978sukhoi/nbwin/internal/stats"
)

// ErrNoInterfaces is returned when the platform's interface registry is
// reachable but contains no interfaces.
var ErrNoInterfaces = errors.New("no network interfaces found")

// ErrInterfaceGone is returned when an interface index can no longer be
// resolved or read.
var ErrInterfaceGone = errors.New("network interface no longer available")

// Source enumerates interfaces and reads their raw traffic counters.
// This interface allows for different implementations:
//   - GopsutilSource: cross-platform, backed by gopsutil (the default)
//   - ProcfsSource: Linux, reads /proc/net/dev and /sys/class/net directly
type Source interface {
	// ListInterfaces enumerates all interfaces known to the platform.
	ListInterfaces(ctx context.Context) ([]Interface, error)

	// ReadCounters reads the cumulative traffic counters for the
	// interface with the given index, stamping the snapshot with the
	// source's clock.
	ReadCounters(ctx context.Context, index int) (stats.CounterSnapshot, error)
}

// Ensure both sources implement the Source interface.
var (
	_ Source = (*GopsutilSource)(nil)
	_ Source = (*ProcfsSource)(nil)
)

// NewSource returns the counter source selected by name: "gopsutil" or
// "auto" for the cross-platform default, "procfs" for the Linux-native
// reader. An empty name behaves like "auto".
func NewSource(kind string, clock stats.Clock) (Source, error) {
	switch kind {
	case "", "auto", "gopsutil":
		return NewGopsutilSource(clock), nil
	case "procfs":
		if runtime.GOOS != "linux" {
			return nil, fmt.Errorf("counter source %q requires linux, running on %s", kind, runtime.GOOS)
		}
		return NewProcfsSource(clock), nil
	default:
		return nil, fmt.Errorf("unknown counter source %q", kind)
	}
}
