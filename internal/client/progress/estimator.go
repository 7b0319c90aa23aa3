// Package progress derives advisory upload telemetry (percent, speed, ETA)
// from byte-acknowledgment callbacks and wall-clock sampling. It is fully
// decoupled from the cryptographic and transfer logic so it can be tested
// with synthetic timing.
package progress

import (
	"math"
	"time"
)

// timeNow is a test seam; replace it in tests to use synthetic clocks.
var timeNow = time.Now

// Estimator tracks one item's transfer rate from the moment it is created.
type Estimator struct {
	start      time.Time
	totalBytes int64
}

// NewEstimator starts the clock for an item of totalBytes.
func NewEstimator(totalBytes int64) *Estimator {
	return &Estimator{start: timeNow(), totalBytes: totalBytes}
}

// Sample converts the number of acknowledged bytes into a transfer speed in
// MB/s and a remaining-time estimate in whole seconds. Estimates before any
// time has elapsed or any bytes are acknowledged are zero.
func (e *Estimator) Sample(ackedBytes int64) (speedMBps float64, etaSeconds int) {
	elapsed := timeNow().Sub(e.start).Seconds()
	if elapsed <= 0 || ackedBytes <= 0 {
		return 0, 0
	}

	speedMBps = float64(ackedBytes) / (1024 * 1024) / elapsed

	remaining := e.totalBytes - ackedBytes
	if remaining <= 0 || speedMBps <= 0 {
		return round2(speedMBps), 0
	}

	etaSeconds = int(math.Ceil(float64(remaining) / (speedMBps * 1024 * 1024)))
	return round2(speedMBps), etaSeconds
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Band maps a sub-step fraction in [0,1] onto the [lo,hi] range of an
// item's overall progress. The orchestrator gives encryption the 0–20
// band, the private-master persist 20–60 and the shared-copy persist
// 60–100.
func Band(fraction, lo, hi float64) float64 {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return lo + fraction*(hi-lo)
}
