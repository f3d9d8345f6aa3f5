// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bls

import (
	"math/big"

	blst "github.com/supranational/blst/bindings/go"

	"github.com/vrrb-network/vrrb/vrrb"
)

// Signer is the node-local entry point for the threshold-signature
// pipeline, bundling the node's own secret share with the quorum's
// public verification material.
type Signer struct {
	Share    *SecretShare
	GroupSet *GroupPublicKeySet
}

// NewSigner builds a Signer. Either field may be nil: a node without a
// secret share can still Verify, and a node without a configured group set
// can still PartialSign.
func NewSigner(share *SecretShare, groupSet *GroupPublicKeySet) *Signer {
	return &Signer{Share: share, GroupSet: groupSet}
}

// PartialSign generates this node's partial signature over payloadHash.
func (s *Signer) PartialSign(payloadHash vrrb.Bytes32) ([]byte, error) {
	if s.Share == nil {
		return nil, ErrMissingSecretShare
	}
	return s.Share.PartialSign(payloadHash)
}

// Combine aggregates shares (keyed by signer index, spec.md §4.1) into a
// single 96-byte threshold signature once at least threshold shares are
// present. Malformed shares fail the whole combine with ErrCorruptShare;
// a short share set fails with ErrBelowThreshold.
func (s *Signer) Combine(threshold int, shares map[int][]byte) ([]byte, error) {
	if s.GroupSet == nil {
		return nil, ErrMissingGroupKey
	}
	if len(shares) < threshold {
		return nil, ErrBelowThreshold
	}

	indices := make([]int, 0, len(shares))
	points := make(map[int]*blst.P2Affine, len(shares))
	for idx, raw := range shares {
		if len(raw) != vrrb.SignatureShareSize {
			return nil, ErrCorruptShare
		}
		var p blst.P2Affine
		if p.Uncompress(raw) == nil {
			return nil, ErrCorruptShare
		}
		if !p.SigValidate(false) {
			return nil, ErrCorruptShare
		}
		indices = append(indices, idx)
		points[idx] = &p
	}

	var acc *blst.P2
	for _, idx := range indices {
		coeff := lagrangeCoefficient(idx, indices)
		var scalar blst.Scalar
		scalar.FromBEndian(leftPad32(coeff.Bytes()))

		term := new(blst.P2).FromAffine(points[idx])
		term = term.Mult(&scalar)

		if acc == nil {
			acc = term
		} else {
			acc = acc.Add(term)
		}
	}

	return acc.ToAffine().Compress(), nil
}

// Verify checks signature (a partial share, a combined threshold
// signature, or a chain-lock signature) over payloadHash for nodeIdx
// (only meaningful when kind == Partial).
func (s *Signer) Verify(nodeIdx int, payloadHash vrrb.Bytes32, signature []byte, kind SignatureKind) error {
	if s.GroupSet == nil {
		return ErrMissingGroupKey
	}
	if len(signature) != vrrb.SignatureSize {
		return ErrCorruptSignature
	}
	var sig blst.P2Affine
	if sig.Uncompress(signature) == nil {
		return ErrCorruptSignature
	}

	var pubBytes []byte
	switch kind {
	case Partial:
		share, ok := s.GroupSet.Shares[nodeIdx]
		if !ok {
			return ErrMissingGroupKey
		}
		pubBytes = share
	case Threshold, ChainLock:
		pubBytes = s.GroupSet.GroupKey
	default:
		return ErrCorruptSignature
	}

	var pub blst.P1Affine
	if pub.Uncompress(pubBytes) == nil {
		return ErrCorruptSignature
	}

	if !sig.Verify(true, &pub, true, payloadHash[:], dst) {
		return ErrInvalidSignature
	}
	return nil
}

// lagrangeCoefficient computes λ_i = Π_{j≠i} x_j·(x_j - x_i)^-1 mod r for
// the Shamir share set identified by indices, evaluated at x=0 (the secret
// point), exactly as hbbft's PublicKeySet::combine_signatures does.
func lagrangeCoefficient(i int, indices []int) *big.Int {
	xi := big.NewInt(int64(i))
	num := big.NewInt(1)
	den := big.NewInt(1)
	for _, j := range indices {
		if j == i {
			continue
		}
		xj := big.NewInt(int64(j))
		num.Mul(num, xj)
		num.Mod(num, frModulus)

		diff := new(big.Int).Sub(xj, xi)
		diff.Mod(diff, frModulus)
		den.Mul(den, diff)
		den.Mod(den, frModulus)
	}
	denInv := new(big.Int).ModInverse(den, frModulus)
	coeff := new(big.Int).Mul(num, denInv)
	coeff.Mod(coeff, frModulus)
	return coeff
}

func leftPad32(b []byte) []byte {
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}
