// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package limiter

import "time"

// intervalStats accumulates per-interval counters between probe
// boundaries.
type intervalStats struct {
	successes    uint64
	errors       uint64
	peakInflight uint64
	start        time.Time
	nextInterval time.Duration
}

func newIntervalStats(interval time.Duration) intervalStats {
	return intervalStats{
		start:        time.Now(),
		nextInterval: interval,
	}
}

// reset clears the counters and schedules the next interval boundary
// with +/-10% jitter, so replicas sharing the same nominal interval
// don't fall into lockstep.
func (s *intervalStats) reset(interval time.Duration, jitter jitterSource) {
	s.successes = 0
	s.errors = 0
	s.peakInflight = 0
	s.start = time.Now()
	factor := 0.9 + jitter.Float64()*0.2
	s.nextInterval = time.Duration(float64(interval) * factor)
}

func (s *intervalStats) elapsed() bool {
	return time.Since(s.start) >= s.nextInterval
}
