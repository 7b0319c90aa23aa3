package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withFakeClock(t *testing.T, start time.Time) *time.Time {
	t.Helper()
	current := start
	old := timeNow
	timeNow = func() time.Time { return current }
	t.Cleanup(func() { timeNow = old })
	return &current
}

func TestEstimator_Sample(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := withFakeClock(t, start)

	e := NewEstimator(4 * 1024 * 1024) // 4 MiB

	// After 1 second, 1 MiB acknowledged: 1 MB/s, 3 MiB remaining => 3s.
	*clock = start.Add(time.Second)
	speed, eta := e.Sample(1024 * 1024)
	assert.InDelta(t, 1.0, speed, 0.01)
	assert.Equal(t, 3, eta)

	// After 2 seconds, all bytes acknowledged: ETA reaches zero.
	*clock = start.Add(2 * time.Second)
	speed, eta = e.Sample(4 * 1024 * 1024)
	assert.InDelta(t, 2.0, speed, 0.01)
	assert.Equal(t, 0, eta)
}

func TestEstimator_ZeroBeforeProgress(t *testing.T) {
	start := time.Now()
	clock := withFakeClock(t, start)

	e := NewEstimator(100)

	speed, eta := e.Sample(0)
	assert.Zero(t, speed)
	assert.Zero(t, eta)

	// No elapsed time yet.
	*clock = start
	speed, eta = e.Sample(50)
	assert.Zero(t, speed)
	assert.Zero(t, eta)
}

func TestBand(t *testing.T) {
	tests := []struct {
		name     string
		fraction float64
		lo, hi   float64
		want     float64
	}{
		{"start of encrypt band", 0, 0, 20, 0},
		{"middle of private-master band", 0.5, 20, 60, 40},
		{"end of shared-copy band", 1, 60, 100, 100},
		{"clamped below", -1, 20, 60, 20},
		{"clamped above", 2, 20, 60, 60},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Band(tc.fraction, tc.lo, tc.hi))
		})
	}
}
