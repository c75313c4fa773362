package netif

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/i978sukhoi/nbwin/internal/stats"
)

// ProcfsSource reads counters straight from the kernel's /proc/net/dev
// table and link speeds from /sys/class/net. Interface identity comes
// from the standard library. Linux only.
type ProcfsSource struct {
	clock stats.Clock
	root  string

	mu    sync.RWMutex
	names map[int]string
}

// NewProcfsSource returns a procfs-backed source. A nil clock falls back
// to the system clock.
func NewProcfsSource(clock stats.Clock) *ProcfsSource {
	return newProcfsSource(clock, "/")
}

// newProcfsSource allows tests to point the source at a fake filesystem
// root.
func newProcfsSource(clock stats.Clock, root string) *ProcfsSource {
	if clock == nil {
		clock = stats.RealClock{}
	}
	return &ProcfsSource{
		clock: clock,
		root:  root,
		names: make(map[int]string),
	}
}

// ListInterfaces enumerates interfaces through the standard library and
// enriches them with the sysfs link speed where available.
func (s *ProcfsSource) ListInterfaces(ctx context.Context) ([]Interface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	list, err := net.Interfaces()
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
			Index:    entry.Index,
			Name:     entry.Name,
			MAC:      entry.HardwareAddr.String(),
			Up:       entry.Flags&net.FlagUp != 0,
			Loopback: entry.Flags&net.FlagLoopback != 0,
		}

		// speed is reported in Mbps; absent or -1 for interfaces that
		// have no meaningful link speed.
		if value, err := s.readSysfs(entry.Name, "speed"); err == nil {
			if mbps, err := strconv.ParseInt(value, 10, 64); err == nil && mbps > 0 {
				iface.SpeedBits = uint64(mbps) * 1_000_000
			}
		}

		if addrs, err := entry.Addrs(); err == nil {
			for _, addr := range addrs {
				var ip net.IP
				switch v := addr.(type) {
				case *net.IPNet:
					ip = v.IP
				case *net.IPAddr:
					ip = v.IP
				}
				if ip != nil {
					iface.Addrs = append(iface.Addrs, ip)
				}
			}
		}

		s.names[entry.Index] = entry.Name
		out = append(out, iface)
	}
	s.mu.Unlock()

	return out, nil
}

// ReadCounters parses the interface's row out of /proc/net/dev.
func (s *ProcfsSource) ReadCounters(ctx context.Context, index int) (stats.CounterSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return stats.CounterSnapshot{}, err
	}

	s.mu.RLock()
	name, ok := s.names[index]
	s.mu.RUnlock()
	if !ok {
		return stats.CounterSnapshot{}, fmt.Errorf("interface index %d: %w", index, ErrInterfaceGone)
	}

	path := filepath.Join(s.root, "proc/net/dev")
	data, err := os.ReadFile(path)
	if err != nil {
		return stats.CounterSnapshot{}, fmt.Errorf("reading %s: %w", path, err)
	}

	snapshot, err := parseNetDev(data, name)
	if err != nil {
		return stats.CounterSnapshot{}, err
	}
	snapshot.InterfaceIndex = index
	snapshot.CapturedAt = s.clock.Now()
	return snapshot, nil
}

// parseNetDev finds the named interface's row in /proc/net/dev content.
// Row format after the "name:" prefix: rx bytes, packets, errs, drop,
// fifo, frame, compressed, multicast, then the same eight for tx.
func parseNetDev(data []byte, name string) (stats.CounterSnapshot, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			// Header lines carry no colon-terminated interface name.
			continue
		}
		if strings.TrimSpace(line[:colon]) != name {
			continue
		}

		fields := strings.Fields(line[colon+1:])
		if len(fields) < 11 {
			return stats.CounterSnapshot{}, fmt.Errorf("malformed /proc/net/dev row for %s", name)
		}

		values := make([]uint64, 11)
		for i := range values {
			v, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				return stats.CounterSnapshot{}, fmt.Errorf("malformed counter %q for %s: %w", fields[i], name, err)
			}
			values[i] = v
		}

		return stats.CounterSnapshot{
			BytesRecv:   values[0],
			PacketsRecv: values[1],
			ErrorsIn:    values[2],
			BytesSent:   values[8],
			PacketsSent: values[9],
			ErrorsOut:   values[10],
		}, nil
	}

	return stats.CounterSnapshot{}, fmt.Errorf("interface %s not in /proc/net/dev: %w", name, ErrInterfaceGone)
}

// readSysfs reads one value file under sys/class/net. The path is
// validated to stay inside the sysfs network directory.
func (s *ProcfsSource) readSysfs(name, file string) (string, error) {
	base := filepath.Join(s.root, "sys/class/net")
	path := filepath.Clean(filepath.Join(base, name, file))
	if !strings.HasPrefix(path, base+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid sysfs path for interface %q", name)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path validated above
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
