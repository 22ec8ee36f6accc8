// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package limiter

const (
	minErrorWindow = 100
	maxErrorWindow = 10_000
)

// rollingErrors is a fixed-capacity ring buffer of per-sample outcomes
// (error or not), used by the per-sample error brake. Resizing resets
// rather than remaps the ring: the window refills quickly under load, so
// the lost history is cheap to rebuild and the code stays simple.
type rollingErrors struct {
	window     []bool
	head       int
	count      int
	errorCount int
}

func newRollingErrors(size int) *rollingErrors {
	return &rollingErrors{window: make([]bool, size)}
}

// resizeForLimit scales the window to ~2x the current limit, clamped to
// [minErrorWindow, maxErrorWindow].
func (r *rollingErrors) resizeForLimit(limit uint64) {
	target := int(clampUint64(limit*2, minErrorWindow, maxErrorWindow))
	if target != len(r.window) {
		r.window = make([]bool, target)
		r.head = 0
		r.count = 0
		r.errorCount = 0
	}
}

func (r *rollingErrors) push(isError bool) {
	if r.count == len(r.window) {
		if r.window[r.head] {
			r.errorCount--
		}
	} else {
		r.count++
	}
	r.window[r.head] = isError
	if isError {
		r.errorCount++
	}
	r.head = (r.head + 1) % len(r.window)
}

func (r *rollingErrors) errorRate() float64 {
	if r.count == 0 {
		return 0
	}
	return float64(r.errorCount) / float64(r.count)
}

func (r *rollingErrors) reset() {
	for i := range r.window {
		r.window[i] = false
	}
	r.head = 0
	r.count = 0
	r.errorCount = 0
}
