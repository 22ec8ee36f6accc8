// Copyright (C) 2019-2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sampler

import "math/rand"

// uniform implements Uniform
type uniform struct {
	count int
	src   Source
}

// NewUniform creates a new uniform sampler seeded from a fresh
// non-deterministic source.
func NewUniform() Uniform {
	return &uniform{src: NewSource(rand.Int63())}
}

// NewDeterministicUniform creates a new uniform sampler seeded
// deterministically, for reproducible tests.
func NewDeterministicUniform(seed int64) Uniform {
	return &uniform{src: NewSource(seed)}
}

// Initialize sets the count
func (u *uniform) Initialize(count int) error {
	u.count = count
	return nil
}

// Sample returns a sample of indices
func (u *uniform) Sample(size int) ([]int, bool) {
	if size > u.count {
		return nil, false
	}

	indices := make([]int, size)
	selected := make(map[int]bool)

	for i := 0; i < size; i++ {
		for {
			idx := int(u.src.Uint64() % uint64(u.count))
			if !selected[idx] {
				indices[i] = idx
				selected[idx] = true
				break
			}
		}
	}

	return indices, true
}
