package uploader

import (
	"fmt"
	"sync"
	"time"
)

const (
	kib = 1024
	mib = 1024 * 1024
)

// FormatRate renders a transfer rate in bytes per second using binary scaling:
// below 1024 as B/s, below 1024^2 as KB/s, otherwise MB/s.
func FormatRate(bytesPerSec float64) string {
	switch {
	case bytesPerSec < kib:
		return fmt.Sprintf("%.0f B/s", bytesPerSec)
	case bytesPerSec < mib:
		return fmt.Sprintf("%.1f KB/s", bytesPerSec/kib)
	default:
		return fmt.Sprintf("%.1f MB/s", bytesPerSec/mib)
	}
}

// rateTracker computes an instantaneous transfer rate over a trailing window:
// bytes since the last sample divided by elapsed time since the last sample.
// Samples closer together than minInterval reuse the previous rate to avoid
// noisy output.
type rateTracker struct {
	mu          sync.Mutex
	minInterval time.Duration
	lastSample  time.Time
	lastBytes   int64
	rate        float64
	now         func() time.Time
}

func newRateTracker(minInterval time.Duration) *rateTracker {
	return &rateTracker{minInterval: minInterval, now: time.Now}
}

// Observe records the cumulative byte count and returns the current rate in
// bytes per second.
func (t *rateTracker) Observe(totalBytes int64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.lastSample.IsZero() {
		t.lastSample = now
		t.lastBytes = totalBytes
		return 0
	}

	elapsed := now.Sub(t.lastSample)
	if elapsed < t.minInterval {
		return t.rate
	}

	t.rate = float64(totalBytes-t.lastBytes) / elapsed.Seconds()
	t.lastSample = now
	t.lastBytes = totalBytes
	return t.rate
}
