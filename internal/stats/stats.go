package stats

import "time"

// CounterSnapshot is one timestamped read of an interface's cumulative
// traffic counters.
type CounterSnapshot struct {
	// InterfaceIndex is the OS-assigned interface handle the counters
	// belong to. Stable for the lifetime of the process.
	InterfaceIndex int

	// BytesSent is the total bytes transmitted since boot or link-up.
	BytesSent uint64
	// BytesRecv is the total bytes received since boot or link-up.
	BytesRecv uint64

	// PacketsSent is the total packets transmitted.
	PacketsSent uint64
	// PacketsRecv is the total packets received.
	PacketsRecv uint64

	// ErrorsIn is the total inbound errors reported by the device.
	ErrorsIn uint64
	// ErrorsOut is the total outbound errors reported by the device.
	ErrorsOut uint64

	// CapturedAt is the monotonic capture time. Snapshots are only
	// comparable when captured by the same process run.
	CapturedAt time.Time
}

// NewBaseline returns a zero-counter snapshot stamped at the given time.
// It stands in for an interface whose initial read failed, so that the
// first successful read still has a previous snapshot to derive against.
func NewBaseline(index int, at time.Time) CounterSnapshot {
	return CounterSnapshot{InterfaceIndex: index, CapturedAt: at}
}

// BandwidthSample is an instantaneous rate pair derived from two
// snapshots of the same interface.
type BandwidthSample struct {
	// DownloadRate is the receive rate in bytes per second.
	DownloadRate float64
	// UploadRate is the transmit rate in bytes per second.
	UploadRate float64

	// TotalDownloaded is the absolute received-byte counter at the time
	// of the newer snapshot.
	TotalDownloaded uint64
	// TotalUploaded is the absolute transmitted-byte counter at the time
	// of the newer snapshot.
	TotalUploaded uint64
}
