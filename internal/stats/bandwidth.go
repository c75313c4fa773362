package stats

// Derive computes the bandwidth between two snapshots of the same
// interface. The boolean is false when no rate is computable: either
// capture timestamp is unset, or current does not strictly follow
// previous (duplicate sample or clock anomaly). A counter that decreased
// between snapshots (device reset, driver reload) is clamped to a zero
// delta — the reset interval under-reports instead of producing a
// negative or absurdly large rate.
func Derive(current, previous CounterSnapshot) (BandwidthSample, bool) {
	if current.CapturedAt.IsZero() || previous.CapturedAt.IsZero() {
		return BandwidthSample{}, false
	}

	elapsed := current.CapturedAt.Sub(previous.CapturedAt).Seconds()
	if elapsed <= 0 {
		return BandwidthSample{}, false
	}

	recvDelta := saturatingSub(current.BytesRecv, previous.BytesRecv)
	sentDelta := saturatingSub(current.BytesSent, previous.BytesSent)

	return BandwidthSample{
		DownloadRate:    float64(recvDelta) / elapsed,
		UploadRate:      float64(sentDelta) / elapsed,
		TotalDownloaded: current.BytesRecv,
		TotalUploaded:   current.BytesSent,
	}, true
}

// saturatingSub returns current-previous, floored at zero.
func saturatingSub(current, previous uint64) uint64 {
	if current < previous {
		return 0
	}
	return current - previous
}
