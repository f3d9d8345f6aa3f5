// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bls implements the Honey-Badger-style threshold-signature
// pipeline of spec.md §4.1: partial signing, threshold combination via
// Lagrange interpolation, and kind-dispatched verification. It is grounded
// on original_source's hbbft-backed SignatureProvider
// (crates/consensus/signer/src/signer.rs), reimplemented directly over
// BLS12-381 (min-pk: G1 public keys, G2 signatures) via blst.
package bls

import (
	"math/big"

	blst "github.com/supranational/blst/bindings/go"

	"github.com/vrrb-network/vrrb/vrrb"
)

// dst is the domain separation tag for signature hashing, as recommended
// by the BLS signature draft standard.
var dst = []byte("VRRB_BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

// frModulus is the order r of the BLS12-381 scalar field.
var frModulus, _ = new(big.Int).SetString(
	"73eda753299d7d483339d80809a1d80553bda402fffe5bfeffffffff00000001", 16)

// SignatureKind discriminates verification targets, per spec.md §4.1 and
// the SignatureType enum carried over from original_source's signer.rs.
type SignatureKind int

const (
	// Partial verifies a single node's share against its public-key share.
	Partial SignatureKind = iota
	// Threshold verifies a combined signature against the group public key.
	Threshold
	// ChainLock verifies a certificate-of-certificates at an epoch
	// boundary, also against the group public key.
	ChainLock
)

// ShareIndex derives the deterministic BLS12-381 scalar used to identify a
// signer's Shamir share, from the signer's NodeId. Two distinct NodeIds
// (distinct UUIDs) map to distinct indices because the mapping is
// injective on the low 128 bits of the scalar (see vrrb.NodeId.Limbs).
func ShareIndex(id vrrb.NodeId) *big.Int {
	limbs := id.Limbs()
	idx := new(big.Int)
	for i := 3; i >= 0; i-- {
		idx.Lsh(idx, 64)
		idx.Or(idx, new(big.Int).SetUint64(limbs[i]))
	}
	idx.Mod(idx, frModulus)
	if idx.Sign() == 0 {
		// zero is not a valid Shamir evaluation point; shift by one.
		idx.SetInt64(1)
	}
	return idx
}

// SecretShare is a harvester's per-node secret share of the group key, an
// output of the external DKG ceremony (spec.md §1) that this package takes
// as an input.
type SecretShare struct {
	NodeID vrrb.NodeId
	sk     *blst.SecretKey
}

// NewSecretShare wraps raw key-generation material (ikm, at least 32
// bytes) into a SecretShare for id.
func NewSecretShare(id vrrb.NodeId, ikm []byte) *SecretShare {
	sk := new(blst.SecretKey)
	sk.KeyGen(ikm, nil)
	return &SecretShare{NodeID: id, sk: sk}
}

// PublicKeyShare returns the 48-byte compressed public-key share
// corresponding to s.
func (s *SecretShare) PublicKeyShare() []byte {
	pk := new(blst.P1Affine).From(s.sk)
	return pk.Compress()
}

// PartialSign produces a 96-byte partial signature over payloadHash.
// Fails with ErrMissingSecretShare if s has no key material.
func (s *SecretShare) PartialSign(payloadHash vrrb.Bytes32) ([]byte, error) {
	if s == nil || s.sk == nil {
		return nil, ErrMissingSecretShare
	}
	sig := new(blst.P2Affine).Sign(s.sk, payloadHash[:], dst)
	return sig.Compress(), nil
}

// GroupPublicKeySet is the quorum's public verification material: the
// group public key and each member's individual public-key share, both
// outputs of the external DKG ceremony.
type GroupPublicKeySet struct {
	GroupKey []byte             // 48-byte compressed G1 point
	Shares   map[int][]byte     // share index (low 64 bits of ShareIndex, as an int) -> 48-byte share
	indexOf  map[vrrb.NodeId]int
}

// NewGroupPublicKeySet builds a key set from per-node public-key shares,
// recording the deterministic share index of each NodeId.
func NewGroupPublicKeySet(groupKey []byte, perNode map[vrrb.NodeId][]byte) *GroupPublicKeySet {
	set := &GroupPublicKeySet{
		GroupKey: groupKey,
		Shares:   make(map[int][]byte, len(perNode)),
		indexOf:  make(map[vrrb.NodeId]int, len(perNode)),
	}
	for id, share := range perNode {
		idx := int(ShareIndex(id).Int64())
		set.Shares[idx] = share
		set.indexOf[id] = idx
	}
	return set
}

// IndexOf returns the share index assigned to id.
func (g *GroupPublicKeySet) IndexOf(id vrrb.NodeId) (int, bool) {
	idx, ok := g.indexOf[id]
	return idx, ok
}
