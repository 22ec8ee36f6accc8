// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"sort"
	"time"

	"github.com/luxfi/math/set"

	"github.com/luxfi/bridge/internal/bls"
)

// bestEffortConfig enables the minimal-signer-subset search. It is
// present only when the certificate will be verified on a chain where
// signature count affects verification cost.
type bestEffortConfig struct {
	startTime           *time.Time
	timeout             time.Duration
	acceptableExtraSigs int
}

// DefaultBestEffortTimeout and DefaultAcceptableExtraSigs are the
// conventional best-effort defaults used by Aggregator when an action
// requests signer-count optimization.
const (
	DefaultBestEffortTimeout   = 2 * time.Second
	DefaultAcceptableExtraSigs = 3
)

// accumulator tracks one in-flight aggregation attempt. It is owned for
// the lifetime of a single RequestCommitteeSignatures call and discarded
// once the fan-out concludes; it is never accessed concurrently (the
// fan-out engine serializes reduce calls).
type accumulator struct {
	committee         *Committee
	action            Action
	validityThreshold uint64

	totalOKStake  uint64
	totalBadStake uint64
	sigs          map[bls.PublicKey]bls.Signature
	startTime     time.Time

	knownBestSigs set.Set[bls.PublicKey]
	bestEffort    *bestEffortConfig
}

func newAccumulator(committee *Committee, action Action, threshold uint64, bestEffort *bestEffortConfig) *accumulator {
	return &accumulator{
		committee:         committee,
		action:            action,
		validityThreshold: threshold,
		sigs:              make(map[bls.PublicKey]bls.Signature),
		startTime:         time.Now(),
		knownBestSigs:     set.NewSet[bls.PublicKey](0),
		bestEffort:        bestEffort,
	}
}

// handleVerifiedSignedAction folds one already-verified signature into
// the accumulator. It returns a non-nil CertifiedAction once quorum (or
// the best-effort acceptance condition) is reached, a nil result with a
// nil error to keep collecting, or a non-nil error for a signer that the
// reducer should treat as bad stake.
func (a *accumulator) handleVerifiedSignedAction(signer bls.PublicKey, stake uint64, sig bls.Signature) (*CertifiedAction, error) {
	if !a.committee.IsActiveMember(signer) {
		return nil, errInvalidBridgeAuthority
	}
	if stake != a.committee.ActiveStake(signer) {
		// The caller is expected to pass the committee's own recorded
		// weight for this signer; a mismatch means the caller and the
		// committee have diverged, which is a programming error, not a
		// recoverable aggregation outcome.
		panic("bridge: caller-supplied stake does not match committee member weight")
	}
	if _, exists := a.sigs[signer]; exists {
		return nil, errAuthoritySignatureDuplicate
	}

	a.sigs[signer] = sig
	a.totalOKStake += stake

	if a.totalOKStake < a.validityThreshold {
		return nil, nil
	}

	if a.bestEffort == nil {
		return a.certify(a.sigs), nil
	}

	subsetSize := a.committee.MinimalValiditySubsetSize(a.validityThreshold)
	topSigs, topKeys := a.topSigsByWeight()

	switch {
	case len(a.sigs) == subsetSize:
		return a.certify(topSigs), nil
	case a.bestEffort.startTime != nil && time.Since(*a.bestEffort.startTime) > a.bestEffort.timeout:
		return a.certify(topSigs), nil
	case len(a.sigs) <= subsetSize+a.bestEffort.acceptableExtraSigs && a.bestEffort.startTime == nil:
		return a.certify(topSigs), nil
	default:
		if a.bestEffort.startTime == nil {
			now := time.Now()
			a.bestEffort.startTime = &now
		}
		a.knownBestSigs = set.Of(topKeys...)
		return nil, nil
	}
}

// topSigsByWeight sorts current signers by descending committee weight,
// ties broken by ascending public key, and returns the prefix whose
// cumulative weight first reaches the validity threshold.
func (a *accumulator) topSigsByWeight() (map[bls.PublicKey]bls.Signature, []bls.PublicKey) {
	type entry struct {
		key    bls.PublicKey
		weight uint64
	}
	entries := make([]entry, 0, len(a.sigs))
	for k := range a.sigs {
		entries = append(entries, entry{key: k, weight: a.committee.ActiveStake(k)})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].weight != entries[j].weight {
			return entries[i].weight > entries[j].weight
		}
		return entries[i].key.Less(entries[j].key)
	})

	out := make(map[bls.PublicKey]bls.Signature, len(entries))
	keys := make([]bls.PublicKey, 0, len(entries))
	var running uint64
	for _, e := range entries {
		out[e.key] = a.sigs[e.key]
		keys = append(keys, e.key)
		running += e.weight
		if running >= a.validityThreshold {
			break
		}
	}
	return out, keys
}

func (a *accumulator) certify(sigs map[bls.PublicKey]bls.Signature) *CertifiedAction {
	copied := make(map[bls.PublicKey]bls.Signature, len(sigs))
	for k, v := range sigs {
		copied[k] = v
	}
	return &CertifiedAction{Action: a.action, Signatures: copied}
}

// addBadStake records w as stake that will never contribute a valid
// signature to this aggregation attempt.
func (a *accumulator) addBadStake(w uint64) {
	a.totalBadStake += w
}

// isTooManyError reports whether the remaining reachable stake can no
// longer reach the validity threshold, meaning the driver must abort.
func (a *accumulator) isTooManyError() bool {
	remaining := TotalVotingPower - a.totalBadStake - a.committee.TotalBlocklistedStake()
	return remaining < a.validityThreshold
}

// bestKnownCertificate constructs a certificate from knownBestSigs, the
// best minimal-weight subset discovered so far, for use when the overall
// fan-out times out in best-effort mode.
func (a *accumulator) bestKnownCertificate() (*CertifiedAction, bool) {
	if a.knownBestSigs.Len() == 0 {
		return nil, false
	}
	sigs := make(map[bls.PublicKey]bls.Signature, a.knownBestSigs.Len())
	for _, k := range a.knownBestSigs.List() {
		sigs[k] = a.sigs[k]
	}
	return a.certify(sigs), true
}
