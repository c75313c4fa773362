package ui

import (
	"fmt"
	"net"
	"strings"

	"github.com/i978sukhoi/nbwin/internal/netif"
	"github.com/i978sukhoi/nbwin/internal/stats"
)

// sparkBars are the eight block levels used by the rate graphs.
var sparkBars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as a fixed-width bar graph scaled against scale.
// The newest value sits at the right edge; missing history is padded with
// spaces on the left.
func Sparkline(values []float64, scale float64, width int) string {
	if width <= 0 {
		return ""
	}

	if len(values) > width {
		values = values[len(values)-width:]
	}

	var b strings.Builder
	for i := len(values); i < width; i++ {
		b.WriteByte(' ')
	}
	for _, value := range values {
		b.WriteRune(sparkBars[barLevel(value, scale)])
	}

	return b.String()
}

func barLevel(value, scale float64) int {
	if scale <= 0 || value <= 0 {
		return 0
	}

	level := int(value / scale * float64(len(sparkBars)))
	if level >= len(sparkBars) {
		level = len(sparkBars) - 1
	}

	return level
}

// Gauge renders a utilization bar like "█████░░░░░". The fraction is clamped
// to [0, 1].
func Gauge(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	filled := int(fraction*float64(width) + 0.5)

	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// RateSummary renders the numbers line under a rate graph.
// Layout: Curr: 1.5 MiB/s   Max: 2.2 MiB/s   Total: 4.3 GiB
func RateSummary(current, peak float64, total uint64) string {
	return fmt.Sprintf("Curr: %s   Max: %s   Total: %s",
		stats.FormatRate(current), stats.FormatRate(peak), stats.FormatBytes(total))
}

// HeaderText renders the two-line interface summary shown at the top of the
// dashboard. The public address is appended only when the caller decides it
// is worth showing.
func HeaderText(iface netif.Interface, position, count int, publicAddr string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[yellow::b]%s[-:-:-]", iface.DisplayName())
	if iface.Description != "" && iface.Description != iface.Name {
		fmt.Fprintf(&b, " (%s)", iface.Name)
	}
	fmt.Fprintf(&b, "  [%d/%d]", position+1, count)
	if iface.IsVirtual() {
		b.WriteString("  [fuchsia]virtual[-]")
	}
	b.WriteByte('\n')

	if addr := PrimaryAddr(iface.Addrs); addr != "" {
		fmt.Fprintf(&b, "IP: %s", addr)
		if publicAddr != "" {
			fmt.Fprintf(&b, " (public: %s)", publicAddr)
		}
	} else {
		b.WriteString("IP: none")
	}
	if iface.MAC != "" {
		fmt.Fprintf(&b, "   MAC: %s", iface.MAC)
	}
	if iface.SpeedBits > 0 {
		fmt.Fprintf(&b, "   Link: %s", stats.FormatBitRate(iface.SpeedBits))
	}

	return b.String()
}

// FooterText is the static key help line.
func FooterText() string {
	return "[::b]←/h[-:-:-] prev  [::b]→/l[-:-:-] next  [::b]space[-:-:-] refresh  " +
		"[::b]r[-:-:-] reset  [::b]i[-:-:-] interfaces  [::b]q[-:-:-] quit"
}

// PrimaryAddr picks the address shown for an interface, preferring IPv4.
func PrimaryAddr(addrs []net.IP) string {
	for _, addr := range addrs {
		if addr.To4() != nil {
			return addr.String()
		}
	}
	if len(addrs) > 0 {
		return addrs[0].String()
	}
	return ""
}

// InterfaceStatus renders the up/down column of the interface list.
func InterfaceStatus(iface netif.Interface) string {
	if iface.Up {
		return "UP"
	}
	return "DOWN"
}

// InterfaceKind classifies an interface for the interface list.
func InterfaceKind(iface netif.Interface) string {
	switch {
	case iface.Loopback:
		return "loopback"
	case iface.IsVirtual():
		return "virtual"
	default:
		return "physical"
	}
}

// JoinAddrs renders the address list column.
func JoinAddrs(addrs []net.IP) string {
	if len(addrs) == 0 {
		return "-"
	}

	parts := make([]string, len(addrs))
	for i, addr := range addrs {
		parts[i] = addr.String()
	}

	return strings.Join(parts, ", ")
}
