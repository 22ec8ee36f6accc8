// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package limiter implements an adaptive concurrency limit controller
// using BBR-style throughput probing, translated from the original
// Rust Adaptive algorithm (see the module's design notes) into a
// mutex-guarded Go state machine with an atomic, lock-free gauge for
// admission-side reads.
package limiter

import (
	"sync"
	"sync/atomic"
	"time"
)

func probeInterval(cfg Config) time.Duration {
	return time.Duration(cfg.ProbeIntervalMS) * time.Millisecond
}

// Adaptive is a LimitAlgorithm that grows and shrinks a concurrency
// limit by alternately probing for more throughput headroom (ProbeBW)
// and, at startup, doubling the limit until throughput stops growing
// (Startup). An always-on per-sample error brake backs off immediately
// on sustained errors regardless of phase.
type Adaptive struct {
	cfg    Config
	jitter jitterSource
	gauge  atomic.Uint64

	mu    sync.Mutex
	state adaptiveState
}

// New constructs an Adaptive controller starting at cfg.InitialLimit,
// clamped to [cfg.MinLimit, cfg.MaxLimit].
func New(cfg Config) *Adaptive {
	initial := clampUint64(cfg.InitialLimit, cfg.MinLimit, cfg.MaxLimit)
	a := &Adaptive{
		cfg:    cfg,
		jitter: defaultJitterSource{},
		state: adaptiveState{
			phase:         startupPhase(),
			stats:         newIntervalStats(probeInterval(cfg)),
			rollingErrors: newRollingErrors(minErrorWindow),
			limit:         initial,
		},
	}
	a.gauge.Store(initial)
	return a
}

// Update records the outcome of one completed downstream call and
// returns the current limit. It is safe to call concurrently from many
// goroutines; the critical section never suspends.
func (a *Adaptive) Update(inflight, delivered int, outcome Outcome, rtt time.Duration) uint64 {
	_ = delivered
	_ = rtt

	a.mu.Lock()
	defer a.mu.Unlock()

	a.state.recordSample(uint64(inflight), outcome)
	a.state.checkErrorBrake(a.cfg, &a.gauge)

	if a.state.stats.elapsed() {
		a.state.processInterval(a.cfg, &a.gauge, a.jitter)
	}

	return a.gauge.Load()
}

// Gauge returns the shared atomic limit cell. Admission callers may read
// it without taking Adaptive's lock.
func (a *Adaptive) Gauge() *atomic.Uint64 {
	return &a.gauge
}

// current is a test-only convenience wrapping Gauge().Load().
func (a *Adaptive) current() uint64 {
	return a.gauge.Load()
}

// forceInterval processes the current interval regardless of elapsed
// time, for deterministic tests.
func (a *Adaptive) forceInterval() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.processInterval(a.cfg, &a.gauge, a.jitter)
}

// forceIntervalWithThroughput processes the current interval using an
// explicit throughput value instead of one derived from elapsed wall
// time, so phase-transition tests don't depend on real timing.
func (a *Adaptive) forceIntervalWithThroughput(throughput float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state.stats.successes == 0 {
		return
	}
	a.state.applyInterval(a.cfg, &a.gauge, a.jitter, throughput)
}
