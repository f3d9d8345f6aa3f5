// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package certificate implements the Certificate Pipeline (C7): per-block
// partial-signature collection, threshold combine into a quorum
// Certificate, and a bounded LRU+TTL cache of in-flight rounds, per
// spec.md §4.7. The per-hash vote bookkeeping (a map keyed by signer,
// threshold-crossing commit) is grounded on the teacher's
// bft/vote_set.go; the cache is grounded on chain/cache.go's ARC wrapper,
// here given an explicit TTL check on access since the teacher's LRU has
// none.
package certificate

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/vrrb-network/vrrb/bls"
	"github.com/vrrb-network/vrrb/claim"
	"github.com/vrrb-network/vrrb/vrrb"
)

// Status is a round's lifecycle position.
type Status int

const (
	Open Status = iota
	Certified
	Expired
)

// Certificate is the quorum-signed attestation of a Convergence block.
type Certificate struct {
	Signature    []byte
	SignerIndex  []int
	RootHash     vrrb.Bytes32
	NextRootHash vrrb.Bytes32
	Inauguration []*claim.Claim // non-nil only at an epoch boundary
}

// ErrCorruptSignatureShare is returned when a submitted share has the wrong
// byte size, per spec.md §4.7.
var ErrCorruptSignatureShare = errors.New("certificate: corrupt signature share")

// ErrAlreadyCertified is returned by AddShare once a round has combined.
var ErrAlreadyCertified = errors.New("certificate: round already certified")

// ErrExpired is returned by AddShare for a round whose TTL has passed, and
// by Combine for a round that has expired or is no longer in the cache (a
// share for an evicted round opens a fresh round instead).
var ErrExpired = errors.New("certificate: round expired")

type share struct {
	signerIdx int
	partial   []byte
}

type round struct {
	mu        sync.Mutex
	status    Status
	shares    map[int]share
	threshold int
	expiresAt time.Time
}

// Pipeline collects per-block shares and combines them into Certificates.
type Pipeline struct {
	signer *bls.Signer

	mu    sync.Mutex
	cache *lru.Cache
	ttl   time.Duration
}

// New returns a Pipeline bounded to vrrb.CertificateCacheLimit rounds, each
// expiring vrrb.CertificateCacheTTL after creation.
func New(signer *bls.Signer) (*Pipeline, error) {
	cache, err := lru.New(vrrb.CertificateCacheLimit)
	if err != nil {
		return nil, err
	}
	return &Pipeline{signer: signer, cache: cache, ttl: vrrb.CertificateCacheTTL}, nil
}

func (p *Pipeline) roundFor(blockHash vrrb.Bytes32, threshold int) *round {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v, ok := p.cache.Get(blockHash); ok {
		r := v.(*round)
		if time.Now().After(r.expiresAt) {
			r.mu.Lock()
			r.status = Expired
			r.mu.Unlock()
		}
		return r
	}

	r := &round{
		status:    Open,
		shares:    make(map[int]share),
		threshold: threshold,
		expiresAt: time.Now().Add(p.ttl),
	}
	p.cache.Add(blockHash, r)
	return r
}

// AddShare records a harvester's partial signature over payloadHash (the
// block hash being certified), verifying it against the signer's
// registered public-key share before accepting it, per spec.md §4.7 step 2.
// It returns ok=true once the round crosses threshold, signalling the
// caller to call Combine.
func (p *Pipeline) AddShare(blockHash, payloadHash vrrb.Bytes32, signerIdx int, partial []byte, threshold int) (ok bool, err error) {
	if len(partial) != vrrb.SignatureShareSize {
		return false, ErrCorruptSignatureShare
	}

	r := p.roundFor(blockHash, threshold)

	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.status {
	case Certified:
		return false, ErrAlreadyCertified
	case Expired:
		return false, ErrExpired
	}

	if err := p.signer.Verify(signerIdx, payloadHash, partial, bls.Partial); err != nil {
		return false, nil // invalid shares are dropped, not an error to the caller
	}

	r.shares[signerIdx] = share{signerIdx: signerIdx, partial: partial}
	return len(r.shares) >= r.threshold, nil
}

// Combine forms the full threshold signature for blockHash once AddShare
// reports threshold crossed, and wraps it into a Certificate. rootHash and
// nextRootHash are copied from the Convergence header's txn_hash and the
// post-apply state-trie root, per spec.md §4.7 step 3. inauguration is
// non-nil only when the certified block crosses an epoch boundary.
func (p *Pipeline) Combine(blockHash vrrb.Bytes32, rootHash, nextRootHash vrrb.Bytes32, inauguration []*claim.Claim) (*Certificate, error) {
	p.mu.Lock()
	v, ok := p.cache.Get(blockHash)
	p.mu.Unlock()
	if !ok {
		return nil, ErrExpired
	}
	r := v.(*round)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == Expired {
		return nil, ErrExpired
	}
	if r.status == Certified {
		return nil, ErrAlreadyCertified
	}
	if len(r.shares) < r.threshold {
		return nil, errors.New("certificate: below threshold")
	}

	shares := make(map[int][]byte, len(r.shares))
	for idx, s := range r.shares {
		shares[idx] = s.partial
	}

	sig, err := p.signer.Combine(r.threshold, shares)
	if err != nil {
		return nil, errors.Wrap(err, "certificate: combine")
	}

	signerIdx := make([]int, 0, len(shares))
	for idx := range shares {
		signerIdx = append(signerIdx, idx)
	}

	r.status = Certified

	return &Certificate{
		Signature:    sig,
		SignerIndex:  signerIdx,
		RootHash:     rootHash,
		NextRootHash: nextRootHash,
		Inauguration: inauguration,
	}, nil
}

// Status reports a round's current lifecycle position, or Expired if the
// cache has never heard of blockHash (treated the same as an evicted round).
func (p *Pipeline) Status(blockHash vrrb.Bytes32) Status {
	p.mu.Lock()
	v, ok := p.cache.Get(blockHash)
	p.mu.Unlock()
	if !ok {
		return Expired
	}
	r := v.(*round)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}
