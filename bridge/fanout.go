// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/luxfi/bridge/internal/bls"
	"github.com/luxfi/bridge/internal/sampler"
)

// Preference selects the polling order the fan-out engine uses when
// issuing map calls to committee members. This is the Go-native
// rendering of a design that, in its original form, used the presence
// of an (always-empty) preferred-key set as a marker: any non-nil
// preference collapses to PreferenceWeighted here, so there is exactly
// one weighted behavior rather than a family of them keyed by set
// contents.
type Preference int

const (
	// PreferenceShuffled polls active members in descending voting-power
	// buckets, with members of equal weight in a fair-random order.
	PreferenceShuffled Preference = iota
	// PreferenceWeighted polls active members in descending voting-power
	// order, ties broken by ascending public key.
	PreferenceWeighted
)

var (
	// ErrFanoutTimeout is returned by QuorumMapThenReduce when the
	// deadline elapses, or every map call has completed, before the
	// reducer signals Success or Failed.
	ErrFanoutTimeout = errors.New("bridge: fan-out timed out before reaching quorum")
	// ErrFanoutFailed is returned by QuorumMapThenReduce when the reducer
	// itself signals Failed. The caller inspects whatever shared state it
	// passed as S (if S is a pointer type) to recover details.
	ErrFanoutFailed = errors.New("bridge: fan-out reducer signaled failure")
)

type reduceKind int

const (
	reduceContinue reduceKind = iota
	reduceSuccess
	reduceFailed
)

// ReduceOutput is the result of one reduceFn invocation: either Continue
// with updated state, Success with a final value, or Failed with the
// terminal state.
type ReduceOutput[S any, F any] struct {
	kind  reduceKind
	state S
	final F
}

// Continue keeps the fan-out running with updated accumulator state.
func Continue[S, F any](state S) ReduceOutput[S, F] {
	return ReduceOutput[S, F]{kind: reduceContinue, state: state}
}

// Success ends the fan-out immediately with a final value; outstanding
// map calls are abandoned.
func Success[S, F any](final F) ReduceOutput[S, F] {
	return ReduceOutput[S, F]{kind: reduceSuccess, final: final}
}

// Failed ends the fan-out immediately with a terminal state and no
// recoverable final value.
func Failed[S, F any](state S) ReduceOutput[S, F] {
	return ReduceOutput[S, F]{kind: reduceFailed, state: state}
}

type mapResult[T any] struct {
	key    bls.PublicKey
	weight uint64
	value  T
	err    error
}

// QuorumMapThenReduce issues mapFn once per active committee member
// concurrently, then serially folds each completion through reduceFn
// until it returns Success or Failed, or timeout elapses first.
//
// On Success, outstanding map calls are abandoned (their goroutines keep
// running to completion against ctx but their results are discarded).
// On timeout, or when every map call has completed without Success or
// Failed, ErrFanoutTimeout is returned with the zero F; the caller
// recovers the last accumulated state through S (if S is a pointer type)
// to attempt a partial recovery.
func QuorumMapThenReduce[S, T, F any](
	ctx context.Context,
	committee *Committee,
	clients map[bls.PublicKey]BridgeClient,
	preference Preference,
	initial S,
	mapFn func(ctx context.Context, key bls.PublicKey, client BridgeClient) (T, error),
	reduceFn func(ctx context.Context, state S, key bls.PublicKey, weight uint64, result T, err error) ReduceOutput[S, F],
	timeout time.Duration,
) (F, error) {
	var zeroF F

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	order := orderedKeys(committee, clients, preference)
	results := make(chan mapResult[T], len(order))

	for _, key := range order {
		key := key
		client := clients[key]
		weight := committee.ActiveStake(key)
		go func() {
			value, err := mapFn(ctx, key, client)
			select {
			case results <- mapResult[T]{key: key, weight: weight, value: value, err: err}:
			case <-ctx.Done():
			}
		}()
	}

	state := initial
	for range order {
		select {
		case res := <-results:
			out := reduceFn(ctx, state, res.key, res.weight, res.value, res.err)
			switch out.kind {
			case reduceSuccess:
				return out.final, nil
			case reduceFailed:
				return zeroF, ErrFanoutFailed
			default:
				state = out.state
			}
		case <-ctx.Done():
			return zeroF, ErrFanoutTimeout
		}
	}

	return zeroF, ErrFanoutTimeout
}

// orderedKeys computes the polling order for the fan-out's goroutine
// launch. The order only affects which completions are likely to arrive
// first under equal latency; slower/faster clients still complete
// whenever they complete.
func orderedKeys(committee *Committee, clients map[bls.PublicKey]BridgeClient, preference Preference) []bls.PublicKey {
	keys := make([]bls.PublicKey, 0, len(clients))
	for k := range clients {
		keys = append(keys, k)
	}

	switch preference {
	case PreferenceWeighted:
		sort.SliceStable(keys, func(i, j int) bool {
			wi, wj := committee.ActiveStake(keys[i]), committee.ActiveStake(keys[j])
			if wi != wj {
				return wi > wj
			}
			return keys[i].Less(keys[j])
		})
	default: // PreferenceShuffled
		keys = shuffleWithinWeightBuckets(committee, keys)
	}
	return keys
}

// shuffleWithinWeightBuckets implements the "shuffled by fair randomness
// then weight-ordered within buckets" polling order (spec.md §4.2): keys
// are grouped by identical active weight, buckets are ordered by
// descending weight, and each bucket is independently permuted with a
// fair-random source so higher-stake validators are still favored on
// average without always polling the same member first within a tier.
func shuffleWithinWeightBuckets(committee *Committee, keys []bls.PublicKey) []bls.PublicKey {
	buckets := make(map[uint64][]bls.PublicKey, len(keys))
	weights := make([]uint64, 0, len(keys))
	for _, k := range keys {
		w := committee.ActiveStake(k)
		if _, ok := buckets[w]; !ok {
			weights = append(weights, w)
		}
		buckets[w] = append(buckets[w], k)
	}
	sort.Slice(weights, func(i, j int) bool { return weights[i] > weights[j] })

	out := make([]bls.PublicKey, 0, len(keys))
	for _, w := range weights {
		out = append(out, shuffleBucket(buckets[w])...)
	}
	return out
}

// shuffleBucket returns a fair-random permutation of same-weight keys,
// sorted ascending by public key before permuting so the caller's
// original slice order never leaks into the result.
func shuffleBucket(bucket []bls.PublicKey) []bls.PublicKey {
	sort.Slice(bucket, func(i, j int) bool { return bucket[i].Less(bucket[j]) })
	if len(bucket) < 2 {
		return bucket
	}

	u := sampler.NewUniform()
	if err := u.Initialize(len(bucket)); err != nil {
		return bucket
	}
	idx, ok := u.Sample(len(bucket))
	if !ok {
		return bucket
	}

	out := make([]bls.PublicKey, len(bucket))
	for i, j := range idx {
		out[i] = bucket[j]
	}
	return out
}
