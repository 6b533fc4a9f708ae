package uploader

import (
	"sync"
	"time"
)

// Status is the lifecycle state of one upload session.
type Status string

const (
	StatusUploading Status = "uploading"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusAborted   Status = "aborted"
)

// Progress is a snapshot of upload state surfaced to callers on every
// transition. Rate is in bytes per second; use FormatRate for display.
type Progress struct {
	BytesUploaded  int64
	TotalBytes     int64
	PartsCompleted int
	TotalParts     int
	Rate           float64
	Status         Status
}

// ProgressFunc receives progress snapshots. Callbacks fire synchronously from
// the uploading goroutines; implementations should return quickly.
type ProgressFunc func(Progress)

// session holds the client-side mutable state of one upload. It is mutated
// only through the transition methods below, and every transition notifies
// the subscriber.
type session struct {
	mu             sync.Mutex
	bytesUploaded  int64
	partsCompleted int
	totalParts     int
	totalBytes     int64
	status         Status
	tracker        *rateTracker
	notify         ProgressFunc
}

func newSession(totalBytes int64, totalParts int, notify ProgressFunc) *session {
	return &session{
		totalParts: totalParts,
		totalBytes: totalBytes,
		status:     StatusUploading,
		tracker:    newRateTracker(500 * time.Millisecond),
		notify:     notify,
	}
}

func (s *session) partSucceeded(partBytes int64) {
	s.mu.Lock()
	s.bytesUploaded += partBytes
	s.partsCompleted++
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

func (s *session) partFailed() {
	s.transition(StatusFailed)
}

func (s *session) completed() {
	s.transition(StatusCompleted)
}

func (s *session) aborted() {
	s.transition(StatusAborted)
}

func (s *session) transition(to Status) {
	s.mu.Lock()
	// Terminal states are sticky; a late part failure cannot resurrect an
	// already-aborted session.
	if s.status == StatusUploading {
		s.status = to
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

func (s *session) snapshot() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *session) snapshotLocked() Progress {
	return Progress{
		BytesUploaded:  s.bytesUploaded,
		TotalBytes:     s.totalBytes,
		PartsCompleted: s.partsCompleted,
		TotalParts:     s.totalParts,
		Rate:           s.tracker.Observe(s.bytesUploaded),
		Status:         s.status,
	}
}

func (s *session) publish(p Progress) {
	if s.notify != nil {
		s.notify(p)
	}
}
