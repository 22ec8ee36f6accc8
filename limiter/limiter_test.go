// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package limiter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewClampsInitialLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialLimit = 1_000_000
	cfg.MaxLimit = 100

	a := New(cfg)
	require.Equal(t, uint64(100), a.current())
	require.Equal(t, uint64(100), a.Gauge().Load())
}

func TestGaugeReadableWithoutLock(t *testing.T) {
	a := New(DefaultConfig())
	g := a.Gauge()
	require.Equal(t, DefaultConfig().InitialLimit, g.Load())

	a.Update(1, 0, Success, 10*time.Millisecond)
	require.Equal(t, a.current(), g.Load())
}

// TestUpdateConcurrentSafe exercises Update from many goroutines at once
// (the "safe to call from many parallel threads" concurrency
// requirement). It only asserts the invariants, not any particular
// trajectory, since concurrent ordering isn't deterministic.
func TestUpdateConcurrentSafe(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialLimit = 50
	cfg.MinLimit = 1
	cfg.MaxLimit = 1000
	a := New(cfg)

	var wg sync.WaitGroup
	outcomes := []Outcome{Success, Success, Success, Dropped, Ignore}
	for g := 0; g < 20; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				a.Update(g+1, 0, outcomes[i%len(outcomes)], time.Millisecond)
			}
		}(g)
	}
	wg.Wait()

	got := a.current()
	require.GreaterOrEqual(t, got, cfg.MinLimit)
	require.LessOrEqual(t, got, cfg.MaxLimit)
	require.Equal(t, got, a.Gauge().Load())
}
