// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vrrb holds the value types and constants shared by every
// consensus-core package: block hashes, addresses, node identifiers and the
// numeric constants from the specification.
package vrrb

import (
	"encoding/hex"
	"fmt"

	"github.com/pborman/uuid"
)

// Bytes32 is a fixed-size 32-byte array, used for block hashes, claim
// hashes and trie roots.
type Bytes32 [32]byte

// Bytes returns the slice view of the array.
func (b Bytes32) Bytes() []byte { return b[:] }

// String returns the 0x-prefixed hex form.
func (b Bytes32) String() string {
	return "0x" + hex.EncodeToString(b[:])
}

// IsZero tells whether b is the zero value.
func (b Bytes32) IsZero() bool {
	return b == Bytes32{}
}

// BytesToBytes32 converts b, truncating or left-zero-padding as needed.
func BytesToBytes32(b []byte) (h Bytes32) {
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	copy(h[32-len(b):], b)
	return
}

// Address is a 20-byte account/node address.
type Address [20]byte

// Bytes returns the slice view of the array.
func (a Address) Bytes() []byte { return a[:] }

// String returns the 0x-prefixed hex form.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero tells whether a is the zero value.
func (a Address) IsZero() bool {
	return a == Address{}
}

// BytesToAddress converts b, truncating or left-zero-padding as needed.
func BytesToAddress(b []byte) (a Address) {
	if len(b) > 20 {
		b = b[len(b)-20:]
	}
	copy(a[20-len(b):], b)
	return
}

// NodeId is a validator's stable identity, a UUID as spec.md §9 requires
// for the threshold-signature share-index mapping to be well defined.
type NodeId uuid.UUID

// NewNodeId generates a fresh random NodeId.
func NewNodeId() NodeId {
	return NodeId(uuid.NewRandom())
}

// String returns the canonical UUID string form.
func (n NodeId) String() string {
	return uuid.UUID(n).String()
}

// ParseNodeId parses a canonical UUID string into a NodeId.
func ParseNodeId(s string) (NodeId, error) {
	u := uuid.Parse(s)
	if u == nil {
		return NodeId{}, fmt.Errorf("vrrb: invalid node id %q", s)
	}
	return NodeId(u), nil
}

// Limbs splits the NodeId's two 64-bit halves into the low two limbs of a
// 4-limb scalar representation, zero-filling the high two limbs. This is
// the injective NodeId->scalar mapping spec.md §9 requires of the
// threshold-signature share-index derivation (see package bls).
func (n NodeId) Limbs() [4]uint64 {
	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(n[i])
	}
	for i := 8; i < 16; i++ {
		lo = lo<<8 | uint64(n[i])
	}
	return [4]uint64{lo, hi, 0, 0}
}
