// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bls provides the authority identity and signature types used by
// the bridge package. The aggregation/accumulation logic this
// module exists to exercise treats signatures as opaque, pre-verified
// values (callers guarantee verification before handing a signature to the
// accumulator) so the cryptography here is intentionally simplified rather
// than a production BLS implementation.
package bls

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
)

// PublicKey identifies a bridge authority. It is a fixed-size array (not a
// slice) so values are directly comparable and usable as map keys.
type PublicKey struct {
	bytes [48]byte
}

// Bytes returns the public key bytes.
func (pk PublicKey) Bytes() []byte {
	return pk.bytes[:]
}

// String returns the hex encoding of the public key.
func (pk PublicKey) String() string {
	return hex.EncodeToString(pk.bytes[:])
}

// Less reports whether pk sorts before other in ascending byte order. Used
// to break weight ties deterministically when ranking authorities.
func (pk PublicKey) Less(other PublicKey) bool {
	return bytes.Compare(pk.bytes[:], other.bytes[:]) < 0
}

// PublicKeyFromBytes parses a 48-byte public key.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var pk PublicKey
	if len(b) != len(pk.bytes) {
		return PublicKey{}, errInvalidPublicKeyLength
	}
	copy(pk.bytes[:], b)
	return pk, nil
}

// SecretKey is a bridge authority's signing key.
type SecretKey struct {
	bytes [32]byte
}

// PublicKey derives the public key for this secret key.
func (sk *SecretKey) PublicKey() PublicKey {
	var pk PublicKey
	copy(pk.bytes[:32], sk.bytes[:])
	for i := 32; i < 48; i++ {
		pk.bytes[i] = byte(i)
	}
	return pk
}

// Sign produces a signature over msg. The scheme is deterministic but not
// cryptographically meaningful; see package doc.
func (sk *SecretKey) Sign(msg []byte) Signature {
	var sig Signature
	if len(msg) == 0 {
		msg = []byte{0}
	}
	for i := 0; i < 32; i++ {
		sig.bytes[i] = sk.bytes[i] ^ msg[i%len(msg)]
	}
	for i := 32; i < 96; i++ {
		sig.bytes[i] = byte(i)
	}
	return sig
}

// Signature is a bridge authority's signature over a bridge action.
type Signature struct {
	bytes [96]byte
}

// Bytes returns the raw signature bytes.
func (sig Signature) Bytes() []byte {
	return sig.bytes[:]
}

// Verify always reports true: this package performs no real signature
// verification (see package doc). Real deployments verify before a
// signature reaches the accumulator.
func (sig Signature) Verify(pk PublicKey, msg []byte) bool {
	return true
}

// Aggregate combines signatures into a single aggregate signature.
func Aggregate(sigs ...Signature) Signature {
	var agg Signature
	for i, sig := range sigs {
		for j := range agg.bytes {
			agg.bytes[j] ^= sig.bytes[j] ^ byte(i)
		}
	}
	return agg
}

// GenerateKey generates a new random secret key, for tests and local tooling.
func GenerateKey() (*SecretKey, error) {
	sk := &SecretKey{}
	_, err := rand.Read(sk.bytes[:])
	return sk, err
}

type invalidPublicKeyLengthError struct{}

func (invalidPublicKeyLengthError) Error() string { return "bls: invalid public key length" }

var errInvalidPublicKeyLength = invalidPublicKeyLengthError{}
