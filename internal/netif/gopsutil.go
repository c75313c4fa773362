package netif

import (
	"context"
	"fmt"
	"net"
	"sync"

	psnet "github.com/shirou/gopsutil/v3/net"

	"github.com/i978sukhoi/nbwin/internal/stats"
)

// GopsutilSource reads interface metadata and counters through gopsutil,
// which abstracts the platform differences (IP Helper on Windows, sysctl
// on the BSDs, procfs on Linux).
type GopsutilSource struct {
	clock stats.Clock

	mu    sync.RWMutex
	names map[int]string
}

// NewGopsutilSource returns a gopsutil-backed source. A nil clock falls
// back to the system clock.
func NewGopsutilSource(clock stats.Clock) *GopsutilSource {
	if clock == nil {
		clock = stats.RealClock{}
	}
	return &GopsutilSource{
		clock: clock,
		names: make(map[int]string),
	}
}

// ListInterfaces enumerates all interfaces and records the index-to-name
// mapping later counter reads resolve against.
func (s *GopsutilSource) ListInterfaces(ctx context.Context) ([]Interface, error) {
	list, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing network interfaces: %w", err)
	}
	if len(list) == 0 {
		return nil, ErrNoInterfaces
	}

	out := make([]Interface, 0, len(list))
	s.mu.Lock()
	for _, entry := range list {
		iface := Interface{
			Index: entry.Index,
			Name:  entry.Name,
			MAC:   entry.HardwareAddr,
		}
		for _, flag := range entry.Flags {
			switch flag {
			case "up":
				iface.Up = true
			case "loopback":
				iface.Loopback = true
			}
		}
		for _, addr := range entry.Addrs {
			if ip := parseInterfaceAddr(addr.Addr); ip != nil {
				iface.Addrs = append(iface.Addrs, ip)
			}
		}
		s.names[entry.Index] = entry.Name
		out = append(out, iface)
	}
	s.mu.Unlock()

	return out, nil
}

// ReadCounters reads the cumulative counters for one interface. gopsutil
// reports counters keyed by name, so the index is resolved through the
// mapping captured at discovery.
func (s *GopsutilSource) ReadCounters(ctx context.Context, index int) (stats.CounterSnapshot, error) {
	s.mu.RLock()
	name, ok := s.names[index]
	s.mu.RUnlock()
	if !ok {
		return stats.CounterSnapshot{}, fmt.Errorf("interface index %d: %w", index, ErrInterfaceGone)
	}

	counters, err := psnet.IOCountersWithContext(ctx, true)
	if err != nil {
		return stats.CounterSnapshot{}, fmt.Errorf("reading io counters for %s: %w", name, err)
	}

	for _, entry := range counters {
		if entry.Name != name {
			continue
		}
		return stats.CounterSnapshot{
			InterfaceIndex: index,
			BytesSent:      entry.BytesSent,
			BytesRecv:      entry.BytesRecv,
			PacketsSent:    entry.PacketsSent,
			PacketsRecv:    entry.PacketsRecv,
			ErrorsIn:       entry.Errin,
			ErrorsOut:      entry.Errout,
			CapturedAt:     s.clock.Now(),
		}, nil
	}

	return stats.CounterSnapshot{}, fmt.Errorf("interface %s (index %d): %w", name, index, ErrInterfaceGone)
}

// parseInterfaceAddr extracts the IP from an address string that may be
// in CIDR notation ("192.168.1.5/24") or bare.
func parseInterfaceAddr(addr string) net.IP {
	if ip, _, err := net.ParseCIDR(addr); err == nil {
		return ip
	}
	return net.ParseIP(addr)
}
