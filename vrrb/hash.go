// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vrrb

import (
	"crypto/sha256"
	"io"
)

// Sha256 hashes the concatenation of parts with SHA-256, as spec.md §3
// requires for Claim.hash and this repo uses throughout for consistency.
func Sha256(parts ...[]byte) (h Bytes32) {
	hasher := sha256.New()
	for _, p := range parts {
		hasher.Write(p)
	}
	hasher.Sum(h[:0])
	return
}

// Sha256Fn hashes whatever fn writes into the hasher, mirroring the
// teacher's Blake2bFn helper but over SHA-256.
func Sha256Fn(fn func(io.Writer)) (h Bytes32) {
	hasher := sha256.New()
	fn(hasher)
	hasher.Sum(h[:0])
	return
}
