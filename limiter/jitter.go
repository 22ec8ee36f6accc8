// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package limiter

import "math/rand/v2"

// jitterSource produces the randomness behind the adaptive controller's
// +/-10% interval jitter. It is a small seam of its own, separate from
// the committee preference shuffle's internal/sampler.Source, so interval
// jitter stays injectable without importing the sampler package for a
// single Float64 call.
type jitterSource interface {
	// Float64 returns a pseudo-random number in [0, 1).
	Float64() float64
}

type defaultJitterSource struct{}

func (defaultJitterSource) Float64() float64 { return rand.Float64() }
