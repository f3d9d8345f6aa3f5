// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vrrb

import "time"

// Numeric constants to preserve across implementations (spec.md §6).
const (
	// SignatureShareSize is the size in bytes of a BLS12-381 partial
	// signature share (compressed G2 point).
	SignatureShareSize = 96

	// SignatureSize is the size in bytes of a combined threshold
	// signature (compressed G2 point) - identical to SignatureShareSize.
	SignatureSize = 96

	// PublicKeyShareSize is the size in bytes of a BLS12-381 public-key
	// share (compressed G1 point).
	PublicKeyShareSize = 48

	// MaxProposalEntries bounds the total number of (txn+claim) entries a
	// single Proposal block may carry.
	MaxProposalEntries = 2000

	// EpochBlocks is the block-height window during which the quorum
	// roster is fixed.
	EpochBlocks = 30_000_000

	// CertificateCacheLimit bounds the number of in-flight certificate
	// collection entries held at once.
	CertificateCacheLimit = 5

	// CertificateCacheTTL is the time-to-live of a cache entry; an entry
	// older than this is marked expired when it is next accessed,
	// regardless of LRU order.
	CertificateCacheTTL = 30 * time.Minute

	// PullTxnBatchSize bounds how many transactions are pulled from the
	// mempool per request.
	PullTxnBatchSize = 100
)
