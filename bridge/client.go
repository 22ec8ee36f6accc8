// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"

	"github.com/luxfi/bridge/internal/bls"
)

// BridgeClient requests a single bridge authority's signature over an
// action. Implementations own their own transport (HTTP, gRPC, in-memory
// for tests); the aggregator never constructs a wire request itself.
// Implementations MUST verify the returned signature before returning it
// to the caller — the accumulator trusts that verification already ran.
type BridgeClient interface {
	RequestSignBridgeAction(ctx context.Context, action Action) (VerifiedSignedAction, error)
}

// VerifiedSignedAction pairs an Action with one authority's signature.
// The zero value is never a valid signed action; callers receive it only
// through a successful BridgeClient call.
type VerifiedSignedAction struct {
	Action    Action
	Signer    bls.PublicKey
	Signature bls.Signature
}

// CertifiedAction pairs an Action with every contributing signature,
// keyed by signer so each authority appears at most once.
type CertifiedAction struct {
	Action     Action
	Signatures map[bls.PublicKey]bls.Signature
}

// SignerCount returns the number of distinct signers in the certificate.
func (c *CertifiedAction) SignerCount() int {
	return len(c.Signatures)
}
