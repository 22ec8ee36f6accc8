// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sampler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniformSamplePermutesWithoutRepeats(t *testing.T) {
	u := NewDeterministicUniform(42)
	require.NoError(t, u.Initialize(5))

	indices, ok := u.Sample(5)
	require.True(t, ok)
	require.Len(t, indices, 5)

	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		require.False(t, seen[idx], "index %d sampled twice", idx)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 5)
		seen[idx] = true
	}
}

func TestUniformDeterministicSeedReproducesSequence(t *testing.T) {
	a := NewDeterministicUniform(7)
	require.NoError(t, a.Initialize(10))
	first, ok := a.Sample(10)
	require.True(t, ok)

	b := NewDeterministicUniform(7)
	require.NoError(t, b.Initialize(10))
	second, ok := b.Sample(10)
	require.True(t, ok)

	require.Equal(t, first, second)
}

func TestUniformSampleRejectsOversizedRequest(t *testing.T) {
	u := NewUniform()
	require.NoError(t, u.Initialize(3))

	_, ok := u.Sample(4)
	require.False(t, ok)
}
