// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/luxfi/log"

	"github.com/luxfi/bridge/internal/bls"
)

// DefaultAggregationTimeout is the overall deadline for one
// RequestCommitteeSignatures call.
const DefaultAggregationTimeout = 5 * time.Second

// Aggregator drives one committee's signature-collection attempts. It
// holds the immutable committee snapshot and the dialed client handles;
// it owns neither the transport nor the action schema.
type Aggregator struct {
	committee *Committee
	clients   map[bls.PublicKey]BridgeClient
	log       log.Logger

	bestEffortTimeout   time.Duration
	acceptableExtraSigs int
	aggregationTimeout  time.Duration
}

// Option configures an Aggregator at construction time.
type Option func(*Aggregator)

// WithBestEffortTimeout overrides the 2s default best-effort window.
func WithBestEffortTimeout(d time.Duration) Option {
	return func(a *Aggregator) { a.bestEffortTimeout = d }
}

// WithAcceptableExtraSigs overrides the default of 3 extra signers
// tolerated before the best-effort window must elapse.
func WithAcceptableExtraSigs(n int) Option {
	return func(a *Aggregator) { a.acceptableExtraSigs = n }
}

// WithAggregationTimeout overrides the 5s default overall fan-out
// deadline.
func WithAggregationTimeout(d time.Duration) Option {
	return func(a *Aggregator) { a.aggregationTimeout = d }
}

// NewAggregator builds an Aggregator for committee, dialing a client per
// active member via dial.
func NewAggregator(committee *Committee, dial ClientDialer, logger log.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		committee:           committee,
		clients:             committee.Clients(dial, logger),
		log:                 logger,
		bestEffortTimeout:   DefaultBestEffortTimeout,
		acceptableExtraSigs: DefaultAcceptableExtraSigs,
		aggregationTimeout:  DefaultAggregationTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RequestCommitteeSignatures runs one aggregation attempt for action: it
// fans the signing request out to every active committee member,
// accumulates verified signatures until quorum (or a best-effort
// acceptance condition) is reached, and either returns a certified
// action or an AggregationError detailing why quorum could not be
// reached.
func (a *Aggregator) RequestCommitteeSignatures(ctx context.Context, action Action) (*CertifiedAction, error) {
	shouldOptimize := action.Direction() == DirectionOutboundGasMetered

	var bestEffort *bestEffortConfig
	preference := PreferenceShuffled
	if shouldOptimize {
		bestEffort = &bestEffortConfig{
			timeout:             a.bestEffortTimeout,
			acceptableExtraSigs: a.acceptableExtraSigs,
		}
		preference = PreferenceWeighted
	}

	threshold := action.ApprovalThreshold()
	acc := newAccumulator(a.committee, action, threshold, bestEffort)

	requestSignature := func(ctx context.Context, key bls.PublicKey, client BridgeClient) (VerifiedSignedAction, error) {
		return client.RequestSignBridgeAction(ctx, action)
	}

	cert, err := QuorumMapThenReduce(
		ctx,
		a.committee,
		a.clients,
		preference,
		acc,
		requestSignature,
		a.reduce,
		a.aggregationTimeout,
	)
	if err == nil {
		return cert, nil
	}

	if best, ok := acc.bestKnownCertificate(); ok {
		if a.log != nil {
			a.log.Info("certified bridge action from best-known signer subset after fan-out ended before best-effort acceptance",
				zap.Int("signers", best.SignerCount()),
			)
		}
		return best, nil
	}

	return nil, &AggregationError{
		BadStake:          acc.totalBadStake,
		BlocklistedStake:  a.committee.TotalBlocklistedStake(),
		GoodStake:         acc.totalOKStake,
		ValidityThreshold: threshold,
	}
}

func (a *Aggregator) reduce(ctx context.Context, acc *accumulator, key bls.PublicKey, weight uint64, signed VerifiedSignedAction, err error) ReduceOutput[*accumulator, *CertifiedAction] {
	if err != nil {
		if a.log != nil {
			a.log.Warn("bridge client failed", zap.Stringer("authority", key), zap.Error(err))
		}
		acc.addBadStake(weight)
	} else {
		cert, handleErr := acc.handleVerifiedSignedAction(key, weight, signed.Signature)
		switch {
		case handleErr != nil:
			if a.log != nil {
				a.log.Warn("rejected bridge authority signature", zap.Stringer("authority", key), zap.Error(handleErr))
			}
			acc.addBadStake(weight)
		case cert != nil:
			return Success[*accumulator, *CertifiedAction](cert)
		}
	}

	if acc.isTooManyError() {
		return Failed[*accumulator, *CertifiedAction](acc)
	}
	return Continue[*accumulator, *CertifiedAction](acc)
}
