// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildCommittee(t *testing.T, weights []uint64, blocklisted map[int]bool) (*Committee, []Member) {
	t.Helper()

	members := make([]Member, 0, len(weights))
	for i, w := range weights {
		m, _ := newTestMember(w, "http://authority")
		if blocklisted[i] {
			m.Blocklisted = true
			m.BaseURL = ""
		}
		members = append(members, m)
	}
	c, err := NewCommittee(members)
	require.NoError(t, err)
	return c, members
}

func TestNewCommitteeConstruction(t *testing.T) {
	t.Run("valid weights sum to total voting power", func(t *testing.T) {
		_, _ = buildCommittee(t, []uint64{2500, 2500, 2500, 2500}, nil)
	})

	t.Run("rejects mismatched total", func(t *testing.T) {
		m1, _ := newTestMember(5000, "http://a")
		m2, _ := newTestMember(4000, "http://b")
		_, err := NewCommittee([]Member{m1, m2})
		require.ErrorIs(t, err, ErrVotingPowerMismatch)
	})

	t.Run("rejects duplicate public key", func(t *testing.T) {
		m1, _ := newTestMember(5000, "http://a")
		m2 := m1
		m2.VotingPower = 5000
		_, err := NewCommittee([]Member{m1, m2})
		require.ErrorIs(t, err, ErrDuplicateMember)
	})

	t.Run("rejects missing base URL for active member", func(t *testing.T) {
		m1, _ := newTestMember(10_000, "")
		_, err := NewCommittee([]Member{m1})
		require.ErrorIs(t, err, ErrMissingBaseURL)
	})

	t.Run("allows missing base URL for blocklisted member", func(t *testing.T) {
		m1, _ := newTestMember(5000, "http://a")
		m2, _ := newTestMember(5000, "")
		m2.Blocklisted = true
		_, err := NewCommittee([]Member{m1, m2})
		require.NoError(t, err)
	})
}

func TestCommitteeActiveStakeAndBlocklist(t *testing.T) {
	c, members := buildCommittee(t, []uint64{3000, 3000, 4000}, map[int]bool{2: true})

	require.True(t, c.IsActiveMember(members[0].PublicKey))
	require.False(t, c.IsActiveMember(members[2].PublicKey))
	require.Equal(t, uint64(3000), c.ActiveStake(members[0].PublicKey))
	require.Equal(t, uint64(0), c.ActiveStake(members[2].PublicKey))
	require.Equal(t, uint64(4000), c.TotalBlocklistedStake())
}

func TestMinimalValiditySubsetSize(t *testing.T) {
	weights := []uint64{333, 666, 666, 999, 1000, 1000, 1000, 1002, 1112, 2222}
	c, _ := buildCommittee(t, weights, nil)

	threshold := DefaultValidityThreshold()
	size := c.MinimalValiditySubsetSize(threshold)

	// The two heaviest weights (2222, 1112) sum to 3334, short of a
	// two-thirds threshold of 6667; verify the size is consistent with a
	// greedy descending-weight walk over the full set.
	require.Greater(t, size, 2)
	require.LessOrEqual(t, size, len(weights))
}

func TestMinimalValiditySubsetSizeUnreachable(t *testing.T) {
	c, _ := buildCommittee(t, []uint64{5000, 5000}, map[int]bool{1: true})
	require.Equal(t, maxInt, c.MinimalValiditySubsetSize(DefaultValidityThreshold()))
}
