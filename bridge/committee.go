// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/luxfi/log"

	"github.com/luxfi/bridge/internal/bls"
)

// TotalVotingPower is the fixed total voting weight every committee must
// sum to. 10,000 stake units is the conventional unit chosen by the
// aggregator's original design.
const TotalVotingPower uint64 = 10_000

var (
	// ErrVotingPowerMismatch is returned by NewCommittee when member
	// weights do not sum to TotalVotingPower.
	ErrVotingPowerMismatch = errors.New("bridge: committee voting power does not sum to TotalVotingPower")
	// ErrDuplicateMember is returned by NewCommittee when two members
	// share a public key.
	ErrDuplicateMember = errors.New("bridge: duplicate committee member public key")
	// ErrMissingBaseURL is returned by NewCommittee when a non-blocklisted
	// member has no base URL to dial.
	ErrMissingBaseURL = errors.New("bridge: active committee member missing base URL")
)

// Member is a single bridge authority's committee entry.
type Member struct {
	PublicKey   bls.PublicKey
	VotingPower uint64
	BaseURL     string
	Blocklisted bool
}

// Committee is the immutable set of bridge authorities that may
// contribute signatures to a certified action. It is built once via
// NewCommittee and never mutated afterward.
type Committee struct {
	members map[bls.PublicKey]Member
	order   []bls.PublicKey // ascending public-key order, for deterministic iteration
}

// NewCommittee validates members and constructs an immutable Committee.
// Total voting power across all members (blocklisted or not) must equal
// TotalVotingPower; public keys must be unique; every non-blocklisted
// member must carry a base URL.
func NewCommittee(members []Member) (*Committee, error) {
	c := &Committee{
		members: make(map[bls.PublicKey]Member, len(members)),
		order:   make([]bls.PublicKey, 0, len(members)),
	}

	var total uint64
	for _, m := range members {
		if _, exists := c.members[m.PublicKey]; exists {
			return nil, ErrDuplicateMember
		}
		if !m.Blocklisted && m.BaseURL == "" {
			return nil, ErrMissingBaseURL
		}
		c.members[m.PublicKey] = m
		c.order = append(c.order, m.PublicKey)
		total += m.VotingPower
	}
	if total != TotalVotingPower {
		return nil, ErrVotingPowerMismatch
	}

	sort.Slice(c.order, func(i, j int) bool {
		return c.order[i].Less(c.order[j])
	})

	return c, nil
}

// DefaultValidityThreshold is two-thirds of TotalVotingPower, rounded up,
// the conventional approval threshold when an Action does not compute
// its own.
func DefaultValidityThreshold() uint64 {
	return (TotalVotingPower*2 + 2) / 3
}

// IsActiveMember reports whether k is a committee member and not
// blocklisted.
func (c *Committee) IsActiveMember(k bls.PublicKey) bool {
	m, ok := c.members[k]
	return ok && !m.Blocklisted
}

// Member returns the member entry for k, if present.
func (c *Committee) Member(k bls.PublicKey) (Member, bool) {
	m, ok := c.members[k]
	return m, ok
}

// ActiveStake returns k's voting power if it is an active (non-blocklisted)
// member, else zero.
func (c *Committee) ActiveStake(k bls.PublicKey) uint64 {
	m, ok := c.members[k]
	if !ok || m.Blocklisted {
		return 0
	}
	return m.VotingPower
}

// TotalBlocklistedStake sums the voting power of every blocklisted member.
func (c *Committee) TotalBlocklistedStake() uint64 {
	var total uint64
	for _, m := range c.members {
		if m.Blocklisted {
			total += m.VotingPower
		}
	}
	return total
}

// ActiveMembers returns every non-blocklisted member, in ascending
// public-key order.
func (c *Committee) ActiveMembers() []Member {
	out := make([]Member, 0, len(c.order))
	for _, k := range c.order {
		m := c.members[k]
		if !m.Blocklisted {
			out = append(out, m)
		}
	}
	return out
}

// MinimalValiditySubsetSize returns the smallest k such that the sum of
// the k largest active weights reaches threshold, ties broken by
// ascending public key. Returns math.MaxInt if the committee's total
// active stake cannot reach threshold.
func (c *Committee) MinimalValiditySubsetSize(threshold uint64) int {
	active := c.ActiveMembers()
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].VotingPower != active[j].VotingPower {
			return active[i].VotingPower > active[j].VotingPower
		}
		return active[i].PublicKey.Less(active[j].PublicKey)
	})

	var running uint64
	for i, m := range active {
		running += m.VotingPower
		if running >= threshold {
			return i + 1
		}
	}
	return maxInt
}

const maxInt = int(^uint(0) >> 1)

// ClientDialer constructs a BridgeClient for one committee member. It is
// supplied by the caller so the bridge package never embeds a transport.
type ClientDialer func(m Member) (BridgeClient, error)

// Clients dials every non-blocklisted committee member and returns the
// resulting client map. A member whose dial fails is logged and skipped
// rather than failing the whole call, mirroring how a real aggregator
// tolerates a handful of unreachable authorities at startup.
func (c *Committee) Clients(dial ClientDialer, logger log.Logger) map[bls.PublicKey]BridgeClient {
	clients := make(map[bls.PublicKey]BridgeClient, len(c.order))
	for _, m := range c.ActiveMembers() {
		client, err := dial(m)
		if err != nil {
			if logger != nil {
				logger.Warn("failed to construct bridge client for committee member",
					zap.Stringer("pubkey", m.PublicKey),
					zap.String("baseURL", m.BaseURL),
					zap.Error(err),
				)
			}
			continue
		}
		clients[m.PublicKey] = client
	}
	return clients
}
