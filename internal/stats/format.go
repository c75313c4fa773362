package stats

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	// Binary unit multipliers (1024-based).
	kib = 1024
	mib = kib * 1024
	gib = mib * 1024
)

// FormatBytes formats a cumulative byte count using binary units
// (KiB, MiB, GiB, ...).
func FormatBytes(bytes uint64) string {
	return humanize.IBytes(bytes)
}

// FormatRate formats a bytes-per-second rate using binary units.
func FormatRate(bytesPerSec float64) string {
	switch {
	case bytesPerSec >= float64(gib):
		return fmt.Sprintf("%.1f GiB/s", bytesPerSec/float64(gib))
	case bytesPerSec >= float64(mib):
		return fmt.Sprintf("%.1f MiB/s", bytesPerSec/float64(mib))
	case bytesPerSec >= float64(kib):
		return fmt.Sprintf("%.1f KiB/s", bytesPerSec/float64(kib))
	default:
		return fmt.Sprintf("%.0f B/s", bytesPerSec)
	}
}

// FormatBitRate formats a bits-per-second value using decimal units,
// the convention for nominal link speeds.
func FormatBitRate(bitsPerSec uint64) string {
	switch {
	case bitsPerSec >= 1_000_000_000:
		return fmt.Sprintf("%.1f Gbps", float64(bitsPerSec)/1_000_000_000)
	case bitsPerSec >= 1_000_000:
		return fmt.Sprintf("%.1f Mbps", float64(bitsPerSec)/1_000_000)
	case bitsPerSec >= 1000:
		return fmt.Sprintf("%.1f Kbps", float64(bitsPerSec)/1000)
	default:
		return fmt.Sprintf("%d bps", bitsPerSec)
	}
}

// FormatDuration formats a duration in a human-readable format.
// Returns formats like "1h 23m 45s", "23m 45s", or "45s" depending on duration.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "0s"
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
