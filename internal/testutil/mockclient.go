// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package testutil provides in-memory bridge-client doubles for tests,
// grounded in the original aggregator's mock-handler test helpers:
// rather than spinning up real servers, each mock client returns a
// scripted response after a configurable delay.
package testutil

import (
	"context"
	"errors"
	"time"

	"github.com/luxfi/bridge/internal/bls"
)

// ErrMockSigningFailed is the error a MockBridgeClient returns when
// configured to fail.
var ErrMockSigningFailed = errors.New("testutil: mock bridge client configured to fail")

// MockBridgeClientConfig scripts one authority's mock response.
type MockBridgeClientConfig struct {
	SecretKey *bls.SecretKey
	Delay     time.Duration
	Fail      bool
}

// MockBridgeClient is an in-memory signer backed by a signing key, with
// an injectable delay and failure mode so tests can exercise
// timing-sensitive fan-out behavior deterministically. It does not
// implement bridge.BridgeClient itself; callers wrap it in a small
// adapter that does.
type MockBridgeClient struct {
	secretKey *bls.SecretKey
	delay     time.Duration
	fail      bool
}

// NewMockBridgeClient constructs a client from cfg.
func NewMockBridgeClient(cfg MockBridgeClientConfig) *MockBridgeClient {
	return &MockBridgeClient{
		secretKey: cfg.SecretKey,
		delay:     cfg.Delay,
		fail:      cfg.Fail,
	}
}

// RequestSignBridgeAction blocks for the configured delay (or until ctx
// is done), then either returns an error or a signature produced by
// signing the action's Message bytes with the configured secret key.
func (c *MockBridgeClient) RequestSignBridgeAction(ctx context.Context, action ActionMessager) (SignedResult, error) {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return SignedResult{}, ctx.Err()
		}
	}
	if c.fail {
		return SignedResult{}, ErrMockSigningFailed
	}

	msg := action.Message()
	sig := c.secretKey.Sign(msg)
	return SignedResult{
		Signer:    c.secretKey.PublicKey(),
		Signature: sig,
	}, nil
}

// ActionMessager is the minimal surface MockBridgeClient needs from an
// action to produce a deterministic signature: a stable byte
// representation to sign over.
type ActionMessager interface {
	Message() []byte
}

// SignedResult mirrors bridge.VerifiedSignedAction's signer/signature
// pair without importing the bridge package, keeping testutil reusable
// from bridge's own tests without an import cycle.
type SignedResult struct {
	Signer    bls.PublicKey
	Signature bls.Signature
}
