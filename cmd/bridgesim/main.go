// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command bridgesim drives both cores against synthetic load: a
// committee of mock validators for the bridge aggregator, and a
// synthetic request stream for the adaptive concurrency limiter. It is
// a demo/benchmark harness, not a production entrypoint — the
// committee membership, transport, and consensus feed are all
// fabricated in-process, consistent with spec.md's Non-goals excluding
// a wire protocol or CLI framework from the core.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/bridge/bridge"
	"github.com/luxfi/bridge/internal/bls"
	"github.com/luxfi/bridge/internal/testutil"
	"github.com/luxfi/bridge/limiter"
)

var logger = log.NewLogger("bridgesim")

func main() {
	members := flag.Int("members", 10, "committee size")
	rounds := flag.Int("rounds", 20, "number of bridge aggregation rounds to simulate")
	failRate := flag.Float64("fail-rate", 0.1, "probability that each validator is set to fail; a failing validator fails every round")
	gasMetered := flag.Bool("gas-metered", true, "simulate an outbound gas-metered action (enables best-effort mode)")
	limiterSamples := flag.Int("limiter-samples", 5000, "number of synthetic downstream completions to feed the limiter")
	limiterErrorRate := flag.Float64("limiter-error-rate", 0.01, "fraction of limiter samples reported as Dropped")
	seed := flag.Int64("seed", 0, "random seed (0 for time-based)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))
	logger.Info("starting bridgesim", "seed", *seed)

	fmt.Printf("\n=== Bridge Authority Aggregator ===\n")
	runAggregationRounds(rng, *members, *rounds, *failRate, *gasMetered)

	fmt.Printf("\n=== Adaptive Concurrency Limiter ===\n")
	runLimiterSimulation(rng, *limiterSamples, *limiterErrorRate)
}

// demoAction is a minimal bridge.Action for the simulator: chain
// identity is carried as an ids.ID (the teacher's chain/object
// identifier type) even though the aggregator core never reads it —
// only ApprovalThreshold and Direction are consulted (spec.md §3.2).
type demoAction struct {
	chainID   ids.ID
	threshold uint64
	direction bridge.Direction
	nonce     uint64
}

func (a *demoAction) ApprovalThreshold() uint64  { return a.threshold }
func (a *demoAction) Direction() bridge.Direction { return a.direction }

func runAggregationRounds(rng *rand.Rand, numMembers, rounds int, failRate float64, gasMetered bool) {
	memberList, cfgs := buildCommittee(rng, numMembers, failRate)
	committee, err := bridge.NewCommittee(memberList)
	if err != nil {
		logger.Error("failed to build committee", "error", err)
		os.Exit(1)
	}

	dial := func(m bridge.Member) (bridge.BridgeClient, error) {
		return &simClient{cfg: cfgs[m.PublicKey]}, nil
	}
	agg := bridge.NewAggregator(committee, dial, logger)

	direction := bridge.DirectionInboundGasMetered
	if gasMetered {
		direction = bridge.DirectionOutboundGasMetered
	}

	successes, bestEffortCerts, failures := 0, 0, 0
	var totalSigners int
	start := time.Now()
	for i := 0; i < rounds; i++ {
		action := &demoAction{
			chainID:   ids.GenerateTestID(),
			threshold: bridge.DefaultValidityThreshold(),
			direction: direction,
			nonce:     uint64(i),
		}
		cert, err := agg.RequestCommitteeSignatures(context.Background(), action)
		switch {
		case err != nil:
			failures++
			logger.Warn("aggregation round failed", "round", i, "error", err)
		case cert.SignerCount() < numMembers:
			bestEffortCerts++
			totalSigners += cert.SignerCount()
			successes++
		default:
			totalSigners += cert.SignerCount()
			successes++
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("Committee size:        %d\n", numMembers)
	fmt.Printf("Rounds:                %d\n", rounds)
	fmt.Printf("Simulated fail rate:   %.0f%%\n", failRate*100)
	fmt.Printf("Direction:             %v\n", direction)
	fmt.Printf("Certified:             %d/%d\n", successes, rounds)
	fmt.Printf("  of which partial:    %d\n", bestEffortCerts)
	fmt.Printf("Too-many-errors:       %d\n", failures)
	if successes > 0 {
		fmt.Printf("Average signer count:  %.1f\n", float64(totalSigners)/float64(successes))
	}
	fmt.Printf("Elapsed:               %s\n", elapsed)
}

func buildCommittee(rng *rand.Rand, n int, failRate float64) ([]bridge.Member, map[bls.PublicKey]simClientConfig) {
	weights := evenWeights(n)
	members := make([]bridge.Member, 0, n)
	cfgs := make(map[bls.PublicKey]simClientConfig, n)
	for i := 0; i < n; i++ {
		sk, err := bls.GenerateKey()
		if err != nil {
			logger.Error("failed to generate committee key", "error", err)
			os.Exit(1)
		}
		pk := sk.PublicKey()
		members = append(members, bridge.Member{
			PublicKey:   pk,
			VotingPower: weights[i],
			BaseURL:     fmt.Sprintf("sim://validator-%d", i),
		})
		cfgs[pk] = simClientConfig{
			secretKey: sk,
			fail:      rng.Float64() < failRate,
			delay:     time.Duration(rng.Intn(20)) * time.Millisecond,
		}
	}
	return members, cfgs
}

// evenWeights splits TotalVotingPower across n members as evenly as
// possible, assigning any remainder to the first members so the total
// always equals bridge.TotalVotingPower exactly.
func evenWeights(n int) []uint64 {
	base := bridge.TotalVotingPower / uint64(n)
	remainder := bridge.TotalVotingPower % uint64(n)
	weights := make([]uint64, n)
	for i := range weights {
		weights[i] = base
		if uint64(i) < remainder {
			weights[i]++
		}
	}
	return weights
}

type simClientConfig struct {
	secretKey *bls.SecretKey
	fail      bool
	delay     time.Duration
}

// simClient adapts testutil.MockBridgeClient to bridge.BridgeClient for
// the simulator, the same seam bridge's own tests use.
type simClient struct {
	cfg simClientConfig
}

func (c *simClient) RequestSignBridgeAction(ctx context.Context, action bridge.Action) (bridge.VerifiedSignedAction, error) {
	inner := testutil.NewMockBridgeClient(testutil.MockBridgeClientConfig{
		SecretKey: c.cfg.secretKey,
		Delay:     c.cfg.delay,
		Fail:      c.cfg.fail,
	})
	res, err := inner.RequestSignBridgeAction(ctx, simMessager{action: action})
	if err != nil {
		return bridge.VerifiedSignedAction{}, err
	}
	return bridge.VerifiedSignedAction{
		Action:    action,
		Signer:    res.Signer,
		Signature: res.Signature,
	}, nil
}

type simMessager struct {
	action bridge.Action
}

func (m simMessager) Message() []byte {
	da, ok := m.action.(*demoAction)
	if !ok {
		return []byte("bridgesim")
	}
	return da.chainID[:]
}

func runLimiterSimulation(rng *rand.Rand, samples int, errorRate float64) {
	cfg := limiter.DefaultConfig()
	cfg.InitialLimit = 4
	cfg.ProbeIntervalMS = 50 // shortened so the demo finishes quickly
	adaptive := limiter.New(cfg)

	registry := prometheus.NewRegistry()
	gaugeFunc := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "bridgesim_limiter_limit",
		Help: "Current adaptive concurrency limit, mirrored from limiter.Adaptive.Gauge().",
	}, func() float64 {
		return float64(adaptive.Gauge().Load())
	})
	if err := registry.Register(gaugeFunc); err != nil {
		logger.Error("failed to register limiter gauge", "error", err)
	}

	var limitTrace []uint64
	for i := 0; i < samples; i++ {
		outcome := limiter.Success
		if rng.Float64() < errorRate {
			outcome = limiter.Dropped
		}
		inflight := 1 + rng.Intn(int(adaptive.Gauge().Load())+1)
		limit := adaptive.Update(inflight, 0, outcome, time.Duration(rng.Intn(5))*time.Millisecond)
		if i%(samples/10+1) == 0 {
			limitTrace = append(limitTrace, limit)
		}
	}

	fmt.Printf("Samples fed:           %d\n", samples)
	fmt.Printf("Synthetic error rate:  %.1f%%\n", errorRate*100)
	fmt.Printf("Final limit:           %d\n", adaptive.Gauge().Load())
	fmt.Printf("Limit trace (decile):  %v\n", limitTrace)

	metrics, err := registry.Gather()
	if err != nil {
		logger.Error("failed to gather limiter metrics", "error", err)
		return
	}
	for _, mf := range metrics {
		if mf.GetName() == "bridgesim_limiter_limit" {
			fmt.Printf("Registered gauge value: %.0f\n", mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
}
