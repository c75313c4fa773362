// Package history holds the bounded rate time series used for graphing.
package history

import (
	"github.com/i978sukhoi/nbwin/internal/stats"
)

const (
	// DefaultCapacity is one sample per second over a one-minute window.
	DefaultCapacity = 60

	// DefaultFloor is the minimum graph scale in bytes/s. A non-zero
	// floor keeps an idle link from producing a degenerate scale.
	DefaultFloor = 1024 * 1024

	// DefaultHeadroom keeps the largest sample from pinning the top of
	// the graph scale.
	DefaultHeadroom = 1.1
)

// Window is a fixed-capacity FIFO time series of bandwidth samples for a
// single interface. It tracks a running maximum per direction for display
// scaling; the maximum resets only on Clear, never decays on its own.
//
// A Window is not safe for concurrent use.
type Window struct {
	capacity int
	floor    float64
	headroom float64

	download []float64
	upload   []float64

	maxDownload float64
	maxUpload   float64
}

// NewWindow returns an empty window. Non-positive arguments fall back to
// the package defaults.
func NewWindow(capacity int, floor, headroom float64) *Window {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if floor <= 0 {
		floor = DefaultFloor
	}
	if headroom <= 0 {
		headroom = DefaultHeadroom
	}
	return &Window{
		capacity:    capacity,
		floor:       floor,
		headroom:    headroom,
		download:    make([]float64, 0, capacity),
		upload:      make([]float64, 0, capacity),
		maxDownload: floor,
		maxUpload:   floor,
	}
}

// Append pushes the sample's rates onto both sequences, evicting the
// oldest entry when the window is full.
func (w *Window) Append(sample stats.BandwidthSample) {
	w.download = push(w.download, sample.DownloadRate, w.capacity)
	w.upload = push(w.upload, sample.UploadRate, w.capacity)

	if sample.DownloadRate > w.maxDownload {
		w.maxDownload = sample.DownloadRate
	}
	if sample.UploadRate > w.maxUpload {
		w.maxUpload = sample.UploadRate
	}
}

func push(series []float64, value float64, capacity int) []float64 {
	if len(series) == capacity {
		copy(series, series[1:])
		series = series[:len(series)-1]
	}
	return append(series, value)
}

// Clear empties both sequences and resets the running maxima to the
// configured floor.
func (w *Window) Clear() {
	w.download = w.download[:0]
	w.upload = w.upload[:0]
	w.maxDownload = w.floor
	w.maxUpload = w.floor
}

// Len returns the number of samples currently held.
func (w *Window) Len() int { return len(w.download) }

// Capacity returns the fixed capacity of the window.
func (w *Window) Capacity() int { return w.capacity }

// Download returns a copy of the download-rate sequence, oldest first.
func (w *Window) Download() []float64 {
	return append([]float64(nil), w.download...)
}

// Upload returns a copy of the upload-rate sequence, oldest first.
func (w *Window) Upload() []float64 {
	return append([]float64(nil), w.upload...)
}

// MaxDownload returns the largest download rate observed since the last
// Clear, scaled by the headroom multiplier.
func (w *Window) MaxDownload() float64 { return w.maxDownload * w.headroom }

// MaxUpload returns the largest upload rate observed since the last
// Clear, scaled by the headroom multiplier.
func (w *Window) MaxUpload() float64 { return w.maxUpload * w.headroom }

// PeakDownload returns the largest download rate observed since the last
// Clear, without the headroom multiplier.
func (w *Window) PeakDownload() float64 { return w.maxDownload }

// PeakUpload returns the largest upload rate observed since the last
// Clear, without the headroom multiplier.
func (w *Window) PeakUpload() float64 { return w.maxUpload }
