// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package limiter

import (
	"math"
	"sync/atomic"
	"time"
)

// adaptiveState is the mutable state guarded by Adaptive's mutex: the
// current phase, interval accumulator, rolling error window, throughput
// EMA, and the limit itself.
type adaptiveState struct {
	phase         phase
	stats         intervalStats
	rollingErrors *rollingErrors
	throughputEMA *float64
	limit         uint64
}

func (s *adaptiveState) recordSample(inflight uint64, outcome Outcome) {
	if inflight > s.stats.peakInflight {
		s.stats.peakInflight = inflight
	}
	s.rollingErrors.resizeForLimit(s.limit)

	switch outcome {
	case Success:
		s.stats.successes++
		s.rollingErrors.push(false)
	case Dropped:
		s.stats.errors++
		s.rollingErrors.push(true)
	case Ignore:
		s.rollingErrors.push(false)
	}
}

func (s *adaptiveState) checkErrorBrake(cfg Config, gauge *atomic.Uint64) {
	if s.rollingErrors.errorRate() <= cfg.ErrorRateThreshold {
		return
	}
	s.limit = clampUint64(
		uint64(math.Ceil(float64(s.limit)*cfg.ErrorBackoffRatio)),
		cfg.MinLimit, cfg.MaxLimit,
	)
	gauge.Store(s.limit)
	s.phase = cruisePhase(0)
	s.rollingErrors.reset()
}

// processInterval computes throughput from the interval's success count
// and elapsed wall-clock time, then delegates to applyInterval. It is a
// no-op when no successes were recorded in the interval — a quiet period
// extends the interval rather than being treated as a stall.
func (s *adaptiveState) processInterval(cfg Config, gauge *atomic.Uint64, jitter jitterSource) {
	if s.stats.successes == 0 {
		return
	}
	elapsedSecs := time.Since(s.stats.start).Seconds()
	if elapsedSecs <= 0 {
		return
	}
	throughput := float64(s.stats.successes) / elapsedSecs
	s.applyInterval(cfg, gauge, jitter, throughput)
}

// applyInterval runs the phase-specific decision logic for one probe
// interval given an explicit throughput value. Kept separate from
// processInterval so tests can inject a deterministic throughput instead
// of depending on wall-clock elapsed time.
func (s *adaptiveState) applyInterval(cfg Config, gauge *atomic.Uint64, jitter jitterSource, throughput float64) {
	prevEMA := s.throughputEMA

	var ema float64
	if prevEMA == nil {
		ema = throughput
	} else {
		ema = cfg.ThroughputEMAAlpha*throughput + (1-cfg.ThroughputEMAAlpha)*(*prevEMA)
	}
	s.throughputEMA = &ema

	underutilized := s.stats.peakInflight*2 < s.limit

	switch s.phase.kind {
	case phaseStartup:
		s.applyStartup(cfg, underutilized, ema)
	case phaseProbeBW:
		switch s.phase.probeBW.kind {
		case probeBWCruise:
			s.applyCruise(cfg, underutilized, ema)
		case probeBWProbeUp:
			s.applyProbeUp(cfg, throughput, ema)
		case probeBWProbeDown:
			s.applyProbeDown(cfg, throughput)
		}
	}

	s.limit = clampUint64(s.limit, cfg.MinLimit, cfg.MaxLimit)
	gauge.Store(s.limit)

	s.stats.reset(probeInterval(cfg), jitter)
}

func (s *adaptiveState) applyStartup(cfg Config, underutilized bool, ema float64) {
	if !underutilized {
		grew := true
		if s.phase.roundStartThroughput != nil && *s.phase.roundStartThroughput > 0 {
			grew = ema >= *s.phase.roundStartThroughput*cfg.FullPipeThreshold
		}
		s.phase.roundStartThroughput = &ema

		if grew {
			s.phase.stallCount = 0
			s.limit = uint64(math.Ceil(float64(s.limit) * cfg.StartupGrowthFactor))
		} else {
			s.phase.stallCount++
		}
	}

	if s.phase.stallCount >= cfg.FullPipeRounds {
		s.limit = uint64(math.Ceil(float64(s.limit) * cfg.HeadroomFactor / cfg.StartupGrowthFactor))
		s.phase = cruisePhase(0)
	}
}

func (s *adaptiveState) applyCruise(cfg Config, underutilized bool, ema float64) {
	n := s.phase.probeBW.intervalsSinceProbe
	if underutilized && n > 3 {
		s.limit = uint64(math.Ceil(float64(s.limit) * 0.95))
	}
	n++

	if !underutilized && n >= cfg.ProbeBWIntervals {
		preProbeLimit := s.limit
		s.limit = uint64(math.Ceil(float64(s.limit) * cfg.ProbeUpGain))
		s.phase = probeUpPhase(preProbeLimit, ema)
		return
	}
	s.phase = cruisePhase(n)
}

func (s *adaptiveState) applyProbeUp(cfg Config, throughput float64, ema float64) {
	start := s.phase.probeBW.startThroughputEMA
	switch {
	case throughput >= start*cfg.FullPipeThreshold:
		s.phase = phase{
			kind:                 phaseStartup,
			roundStartThroughput: &ema,
			stallCount:           0,
		}
	case throughput >= start*cfg.ThroughputGrowthThreshold:
		s.phase = cruisePhase(0)
	default:
		preProbeLimit := s.phase.probeBW.preProbeLimit
		s.limit = uint64(math.Ceil(float64(preProbeLimit) * 0.75))
		s.phase = probeDownPhase(preProbeLimit, start)
	}
}

func (s *adaptiveState) applyProbeDown(cfg Config, throughput float64) {
	pre := s.phase.probeBW.preProbeThroughputEMA
	if throughput < pre*cfg.ProbeDownMinThroughput {
		s.limit = s.phase.probeBW.preDownLimit
	}
	s.phase = cruisePhase(0)
}
