// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import "fmt"

var (
	// errInvalidBridgeAuthority is returned internally by the accumulator
	// when a signature arrives from an unknown or blocklisted signer.
	// The reducer treats it as bad stake; it is never returned to the
	// caller of RequestCommitteeSignatures.
	errInvalidBridgeAuthority = invalidBridgeAuthorityError{}
	// errAuthoritySignatureDuplicate is returned internally when the same
	// authority contributes a second signature for one aggregation.
	errAuthoritySignatureDuplicate = authoritySignatureDuplicateError{}
)

type invalidBridgeAuthorityError struct{}

func (invalidBridgeAuthorityError) Error() string {
	return "bridge: signer is not an active committee member"
}

type authoritySignatureDuplicateError struct{}

func (authoritySignatureDuplicateError) Error() string {
	return "bridge: authority already contributed a signature"
}

// AggregationError is returned by RequestCommitteeSignatures when the
// fan-out concludes without reaching quorum and no best-known signer
// subset was available to fall back on.
type AggregationError struct {
	BadStake          uint64
	BlocklistedStake  uint64
	GoodStake         uint64
	ValidityThreshold uint64
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf(
		"bridge: too many errors aggregating signatures: good_stake=%d bad_stake=%d blocklisted_stake=%d threshold=%d",
		e.GoodStake, e.BadStake, e.BlocklistedStake, e.ValidityThreshold,
	)
}
