// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package limiter

// Config controls the adaptive concurrency limit algorithm. Every field
// has a default, so a zero-value Config is never used directly — callers
// start from DefaultConfig and override what they need.
type Config struct {
	// InitialLimit is the starting concurrency limit.
	InitialLimit uint64 `json:"initial-limit,omitempty" toml:"initial-limit"`
	// MinLimit is the floor: the limit never drops below this value.
	MinLimit uint64 `json:"min-limit,omitempty" toml:"min-limit"`
	// MaxLimit is the ceiling: the limit never exceeds this value.
	MaxLimit uint64 `json:"max-limit,omitempty" toml:"max-limit"`
	// ProbeIntervalMS is the nominal duration of each probe interval.
	ProbeIntervalMS uint64 `json:"probe-interval-ms,omitempty" toml:"probe-interval-ms"`

	// ThroughputEMAAlpha is the EMA smoothing weight for the current
	// interval (0..1). Lower values smooth more, at the cost of lag.
	ThroughputEMAAlpha float64 `json:"throughput-ema-alpha,omitempty" toml:"throughput-ema-alpha"`
	// ThroughputGrowthThreshold is the minimum ratio of the ProbeUp
	// interval's raw throughput to the pre-probe throughput EMA that lets
	// Cruise keep the higher limit after ProbeUp.
	ThroughputGrowthThreshold float64 `json:"throughput-growth-threshold,omitempty" toml:"throughput-growth-threshold"`

	// StartupGrowthFactor is the multiplicative growth applied each
	// Startup round.
	StartupGrowthFactor float64 `json:"startup-growth-factor,omitempty" toml:"startup-growth-factor"`
	// FullPipeThreshold is the minimum throughput EMA growth ratio that
	// counts as the pipe still filling during Startup.
	FullPipeThreshold float64 `json:"full-pipe-threshold,omitempty" toml:"full-pipe-threshold"`
	// FullPipeRounds is the number of consecutive stall rounds in
	// Startup before the pipe is declared full and Startup drains.
	FullPipeRounds uint64 `json:"full-pipe-rounds,omitempty" toml:"full-pipe-rounds"`
	// HeadroomFactor is applied when draining from Startup into ProbeBW:
	// limit * headroom_factor / startup_growth_factor.
	HeadroomFactor float64 `json:"headroom-factor,omitempty" toml:"headroom-factor"`

	// ProbeUpGain is the multiplicative gain applied when probing upward.
	ProbeUpGain float64 `json:"probe-up-gain,omitempty" toml:"probe-up-gain"`
	// ProbeBWIntervals is the number of Cruise intervals between probe
	// cycles.
	ProbeBWIntervals uint64 `json:"probe-bw-intervals,omitempty" toml:"probe-bw-intervals"`
	// ProbeDownMinThroughput is the minimum throughput fraction (of
	// pre-probe throughput) accepted when probing down.
	ProbeDownMinThroughput float64 `json:"probe-down-min-throughput,omitempty" toml:"probe-down-min-throughput"`

	// ErrorBackoffRatio is the multiplicative backoff applied by the
	// error brake.
	ErrorBackoffRatio float64 `json:"error-backoff-ratio,omitempty" toml:"error-backoff-ratio"`
	// ErrorRateThreshold is the error rate (fraction) that trips the
	// brake.
	ErrorRateThreshold float64 `json:"error-rate-threshold,omitempty" toml:"error-rate-threshold"`
}

// DefaultConfig returns the default Adaptive configuration, matching the
// spec's field table verbatim.
func DefaultConfig() Config {
	return Config{
		InitialLimit:              1,
		MinLimit:                  1,
		MaxLimit:                  100_000,
		ProbeIntervalMS:           1000,
		ThroughputEMAAlpha:        0.3,
		ThroughputGrowthThreshold: 1.10,
		StartupGrowthFactor:       2.0,
		FullPipeThreshold:         1.25,
		FullPipeRounds:            3,
		HeadroomFactor:            0.85,
		ProbeUpGain:               1.25,
		ProbeBWIntervals:          10,
		ProbeDownMinThroughput:    0.90,
		ErrorBackoffRatio:         0.5,
		ErrorRateThreshold:        0.05,
	}
}

func clampUint64(v, lo, hi uint64) uint64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
