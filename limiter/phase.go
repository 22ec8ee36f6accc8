// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package limiter

// phaseKind tags which variant of phase is active. Go has no sum types,
// so the outer phase and the ProbeBW sub-phase are each represented as a
// tagged struct: a kind discriminant plus the union of per-variant
// fields, mirroring the shape (not the syntax) of a Rust enum.
type phaseKind int

const (
	phaseStartup phaseKind = iota
	phaseProbeBW
)

type probeBWKind int

const (
	probeBWCruise probeBWKind = iota
	probeBWProbeUp
	probeBWProbeDown
)

// phase is the outer two-phase state: Startup or ProbeBW.
type phase struct {
	kind phaseKind

	// Startup fields.
	roundStartThroughput *float64
	stallCount           uint64

	// ProbeBW fields.
	probeBW probeBW
}

// probeBW is the inner three-phase state of ProbeBW: Cruise, ProbeUp, or
// ProbeDown.
type probeBW struct {
	kind probeBWKind

	// Cruise fields.
	intervalsSinceProbe uint64

	// ProbeUp fields.
	preProbeLimit      uint64
	startThroughputEMA float64

	// ProbeDown fields.
	preDownLimit          uint64
	preProbeThroughputEMA float64
}

func startupPhase() phase {
	return phase{kind: phaseStartup}
}

func cruisePhase(intervalsSinceProbe uint64) phase {
	return phase{
		kind: phaseProbeBW,
		probeBW: probeBW{
			kind:                probeBWCruise,
			intervalsSinceProbe: intervalsSinceProbe,
		},
	}
}

func probeUpPhase(preProbeLimit uint64, startThroughputEMA float64) phase {
	return phase{
		kind: phaseProbeBW,
		probeBW: probeBW{
			kind:               probeBWProbeUp,
			preProbeLimit:      preProbeLimit,
			startThroughputEMA: startThroughputEMA,
		},
	}
}

func probeDownPhase(preDownLimit uint64, preProbeThroughputEMA float64) phase {
	return phase{
		kind: phaseProbeBW,
		probeBW: probeBW{
			kind:                  probeBWProbeDown,
			preDownLimit:          preDownLimit,
			preProbeThroughputEMA: preProbeThroughputEMA,
		},
	}
}
