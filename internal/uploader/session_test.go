package uploader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession_PartSucceededAccumulates(t *testing.T) {
	var snapshots []Progress
	sess := newSession(12*1024*1024, 3, func(p Progress) {
		snapshots = append(snapshots, p)
	})

	sess.partSucceeded(5 * 1024 * 1024)
	sess.partSucceeded(5 * 1024 * 1024)
	sess.partSucceeded(2 * 1024 * 1024)
	sess.completed()

	assert.Len(t, snapshots, 4)
	assert.Equal(t, int64(5*1024*1024), snapshots[0].BytesUploaded)
	assert.Equal(t, 1, snapshots[0].PartsCompleted)
	assert.Equal(t, StatusUploading, snapshots[0].Status)

	last := snapshots[3]
	assert.Equal(t, int64(12*1024*1024), last.BytesUploaded)
	assert.Equal(t, 3, last.PartsCompleted)
	assert.Equal(t, 3, last.TotalParts)
	assert.Equal(t, int64(12*1024*1024), last.TotalBytes)
	assert.Equal(t, StatusCompleted, last.Status)
}

func TestSession_FailureIsTerminal(t *testing.T) {
	sess := newSession(100, 2, nil)

	sess.partFailed()
	assert.Equal(t, StatusFailed, sess.snapshot().Status)

	// A straggler part finishing after failure does not change the state.
	sess.partSucceeded(50)
	assert.Equal(t, StatusFailed, sess.snapshot().Status)

	sess.completed()
	assert.Equal(t, StatusFailed, sess.snapshot().Status)
}

func TestSession_AbortIsTerminal(t *testing.T) {
	sess := newSession(100, 2, nil)

	sess.aborted()
	assert.Equal(t, StatusAborted, sess.snapshot().Status)

	// A late failure cannot resurrect or re-label an aborted session.
	sess.partFailed()
	assert.Equal(t, StatusAborted, sess.snapshot().Status)
}

func TestSession_NilCallbackIsSafe(t *testing.T) {
	sess := newSession(10, 1, nil)
	assert.NotPanics(t, func() {
		sess.partSucceeded(10)
		sess.completed()
	})
}
