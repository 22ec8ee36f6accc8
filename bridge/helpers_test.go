// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"encoding/binary"

	"github.com/luxfi/bridge/internal/bls"
	"github.com/luxfi/bridge/internal/testutil"
)

// testAction is a minimal bridge.Action used across bridge package
// tests. It also implements testutil.ActionMessager so the mock client
// can sign it deterministically.
type testAction struct {
	threshold uint64
	direction Direction
	nonce     uint64
}

func (a *testAction) ApprovalThreshold() uint64 { return a.threshold }
func (a *testAction) Direction() Direction       { return a.direction }
func (a *testAction) Message() []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], a.nonce)
	return buf[:]
}

// mockClientAdapter adapts testutil.MockBridgeClient to bridge.BridgeClient.
type mockClientAdapter struct {
	inner *testutil.MockBridgeClient
}

func newMockClient(cfg testutil.MockBridgeClientConfig) BridgeClient {
	return &mockClientAdapter{inner: testutil.NewMockBridgeClient(cfg)}
}

func (m *mockClientAdapter) RequestSignBridgeAction(ctx context.Context, action Action) (VerifiedSignedAction, error) {
	msgAction, ok := action.(testutil.ActionMessager)
	if !ok {
		msgAction = &testAction{}
	}
	res, err := m.inner.RequestSignBridgeAction(ctx, msgAction)
	if err != nil {
		return VerifiedSignedAction{}, err
	}
	return VerifiedSignedAction{
		Action:    action,
		Signer:    res.Signer,
		Signature: res.Signature,
	}, nil
}

// newTestMember builds a committee Member with a freshly generated key
// and the given weight. baseURL is never dialed; tests wire members to
// in-process mock clients by public key (see dialerFromConfig).
func newTestMember(weight uint64, baseURL string) (Member, *bls.SecretKey) {
	sk, err := bls.GenerateKey()
	if err != nil {
		panic(err)
	}
	return Member{
		PublicKey:   sk.PublicKey(),
		VotingPower: weight,
		BaseURL:     baseURL,
	}, sk
}

// dialerFromConfig builds a ClientDialer that looks up a per-member mock
// client configuration by public key, defaulting to an immediate success
// for any member not explicitly configured.
func dialerFromConfig(cfgs map[bls.PublicKey]testutil.MockBridgeClientConfig) ClientDialer {
	return func(m Member) (BridgeClient, error) {
		cfg, ok := cfgs[m.PublicKey]
		if !ok {
			sk, err := bls.GenerateKey()
			if err != nil {
				return nil, err
			}
			cfg = testutil.MockBridgeClientConfig{SecretKey: sk}
		}
		return newMockClient(cfg), nil
	}
}
