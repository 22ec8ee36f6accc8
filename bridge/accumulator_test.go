// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/bridge/internal/bls"
)

func TestHandleVerifiedSignedActionBasicQuorum(t *testing.T) {
	c, members := buildCommittee(t, []uint64{2500, 2500, 2500, 2500}, nil)
	threshold := DefaultValidityThreshold()
	acc := newAccumulator(c, &testAction{threshold: threshold}, threshold, nil)

	for i := 0; i < 2; i++ {
		cert, err := acc.handleVerifiedSignedAction(members[i].PublicKey, members[i].VotingPower, bls.Signature{})
		require.NoError(t, err)
		require.Nil(t, cert)
	}

	// third signer crosses two-thirds of 10000 (6667)
	cert, err := acc.handleVerifiedSignedAction(members[2].PublicKey, members[2].VotingPower, bls.Signature{})
	require.NoError(t, err)
	require.NotNil(t, cert)
	require.Len(t, cert.Signatures, 3)
	require.Equal(t, uint64(7500), acc.totalOKStake)
}

func TestHandleVerifiedSignedActionInvalidAuthority(t *testing.T) {
	c, _ := buildCommittee(t, []uint64{5000, 5000}, nil)
	stranger, _ := newTestMember(1, "http://stranger")

	acc := newAccumulator(c, &testAction{threshold: DefaultValidityThreshold()}, DefaultValidityThreshold(), nil)
	_, err := acc.handleVerifiedSignedAction(stranger.PublicKey, 1, bls.Signature{})
	require.ErrorIs(t, err, errInvalidBridgeAuthority)
}

func TestHandleVerifiedSignedActionBlocklistedAuthority(t *testing.T) {
	c, members := buildCommittee(t, []uint64{5000, 5000}, map[int]bool{1: true})
	acc := newAccumulator(c, &testAction{threshold: DefaultValidityThreshold()}, DefaultValidityThreshold(), nil)

	_, err := acc.handleVerifiedSignedAction(members[1].PublicKey, 0, bls.Signature{})
	require.ErrorIs(t, err, errInvalidBridgeAuthority)
}

func TestHandleVerifiedSignedActionDuplicateSigner(t *testing.T) {
	c, members := buildCommittee(t, []uint64{5000, 5000}, nil)
	acc := newAccumulator(c, &testAction{threshold: DefaultValidityThreshold()}, DefaultValidityThreshold(), nil)

	_, err := acc.handleVerifiedSignedAction(members[0].PublicKey, 5000, bls.Signature{})
	require.NoError(t, err)

	_, err = acc.handleVerifiedSignedAction(members[0].PublicKey, 5000, bls.Signature{})
	require.ErrorIs(t, err, errAuthoritySignatureDuplicate)
}

func TestAddBadStakeAndIsTooManyError(t *testing.T) {
	c, _ := buildCommittee(t, []uint64{2500, 2500, 2500, 2500}, nil)
	threshold := DefaultValidityThreshold() // 6667
	acc := newAccumulator(c, &testAction{threshold: threshold}, threshold, nil)

	acc.addBadStake(2500)
	require.False(t, acc.isTooManyError())

	acc.addBadStake(2500)
	// remaining reachable = 10000 - 5000 - 0 = 5000 < 6667
	require.True(t, acc.isTooManyError())
}

func TestBestEffortMinimalSubset(t *testing.T) {
	weights := []uint64{333, 666, 666, 999, 1000, 1000, 1000, 1002, 1112, 2222}
	c, members := buildCommittee(t, weights, nil)
	threshold := DefaultValidityThreshold()

	acc := newAccumulator(c, &testAction{threshold: threshold}, threshold, &bestEffortConfig{
		timeout:             10 * time.Millisecond,
		acceptableExtraSigs: 2,
	})

	// Sign in ascending-weight order (worst case for reaching the
	// minimal subset early) and require that the accumulator eventually
	// accepts at or before subsetSize+2 signers, honoring the
	// best-effort timeout if it must wait.
	var cert *CertifiedAction
	for i, m := range members {
		var err error
		cert, err = acc.handleVerifiedSignedAction(m.PublicKey, m.VotingPower, bls.Signature{})
		require.NoError(t, err)
		if cert != nil {
			require.LessOrEqual(t, i+1, len(weights))
			break
		}
		if acc.bestEffort.startTime != nil {
			// wait out the best-effort window so the next signature trips
			// the timeout-acceptance path
			time.Sleep(acc.bestEffort.timeout + time.Millisecond)
		}
	}

	require.NotNil(t, cert)
	subsetSize := c.MinimalValiditySubsetSize(threshold)
	require.LessOrEqual(t, cert.SignerCount(), subsetSize+2)
}

func TestBestKnownCertificateEmptyUntilTracked(t *testing.T) {
	c, _ := buildCommittee(t, []uint64{5000, 5000}, nil)
	acc := newAccumulator(c, &testAction{threshold: DefaultValidityThreshold()}, DefaultValidityThreshold(), nil)

	_, ok := acc.bestKnownCertificate()
	require.False(t, ok)
}
