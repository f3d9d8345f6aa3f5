// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package dag implements the DAG Store (C4): the append-only store of
// Genesis, Proposal and Convergence blocks, with parent-edge and
// acyclicity enforcement and single-writer/multi-reader snapshot
// semantics, per spec.md §4.4. Grounded on the teacher's
// chain/repository.go (kv-store-backed head/props/data column separation,
// an atomic.Value best-block snapshot, a co.Signal new-block tick) and
// chain/cache.go (a bounded ARC cache wrapping every repeated lookup).
package dag

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vrrb-network/vrrb/block"
	"github.com/vrrb-network/vrrb/co"
	"github.com/vrrb-network/vrrb/kvstore"
	"github.com/vrrb-network/vrrb/vrrb"
)

// Kind discriminates the three block kinds a Store holds.
type Kind int

const (
	KindGenesis Kind = iota
	KindProposal
	KindConvergence
)

// Entry is one DAG node, tagged by Kind; exactly one of the block pointers
// is non-nil.
type Entry struct {
	Kind        Kind
	Hash        vrrb.Bytes32
	Genesis     *block.Genesis
	Proposal    *block.Proposal
	Convergence *block.Convergence
}

var (
	// ErrAlreadyGenesis is returned by AppendGenesis when the store already
	// has a root.
	ErrAlreadyGenesis = errors.New("dag: genesis already appended")
	// ErrNoGenesis is returned when an operation requires a root that has
	// not yet been appended.
	ErrNoGenesis = errors.New("dag: no genesis appended")
	// ErrUnknownParent is returned when a Proposal's RefHash names no
	// stored Genesis or Convergence, or when a Convergence ref that is an
	// open source cannot be read back as a stored Proposal.
	ErrUnknownParent = errors.New("dag: unknown parent hash")
	// ErrNotSource is returned by AppendConvergence when a ref is not a
	// currently open source: a Proposal already consolidated by a
	// different Convergence (a would-be cycle in the DAG's parent edges),
	// or a hash the store has never seen as a source.
	ErrNotSource = errors.New("dag: proposal is not an open source")
	// ErrNotFound is returned by Get when hash names no stored block.
	ErrNotFound = errors.New("dag: not found")
)

var dataBucket = kvstore.Bucket("dag.data.")

// Store is the DAG Store. It is safe for concurrent use: appends are
// serialized by mu (single-writer), while Get/Sources/Head take a
// consistent atomic snapshot of the current round (multi-reader).
type Store struct {
	mu    sync.Mutex
	data  kvstore.Store
	cache *lru.ARCCache

	genesisHash atomic.Value // vrrb.Bytes32

	// head is the hash of the latest Genesis or Convergence block - the
	// current round's parent that new Proposals extend.
	head atomic.Value // vrrb.Bytes32

	sourcesMu sync.RWMutex
	// sources are the hashes of Proposals extending head that have not yet
	// been consolidated by a Convergence.
	sources map[vrrb.Bytes32]struct{}

	// Tick fires after every successful append, the role the teacher's
	// chain.Repository.tick co.Signal plays for new-block notification.
	Tick co.Signal
}

// New opens an empty Store over data. AppendGenesis must be called before
// any other append.
func New(data kvstore.Store) (*Store, error) {
	cache, err := lru.NewARC(vrrb.CertificateCacheLimit * 64)
	if err != nil {
		return nil, err
	}
	return &Store{
		data:    dataBucket.NewStore(data),
		cache:   cache,
		sources: make(map[vrrb.Bytes32]struct{}),
	}, nil
}

// AppendGenesis installs g as the DAG's root. It must be called exactly
// once, before any Proposal or Convergence is appended.
func (s *Store) AppendGenesis(g *block.Genesis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.genesisHash.Load() != nil {
		return ErrAlreadyGenesis
	}

	hash := g.Header().Hash()
	if err := s.put(hash, Entry{Kind: KindGenesis, Hash: hash, Genesis: g}); err != nil {
		return err
	}
	s.genesisHash.Store(hash)
	s.head.Store(hash)
	s.Tick.Signal()
	return nil
}

// AppendProposal records p, failing with ErrUnknownParent if p.RefHash
// names no stored Genesis or Convergence.
func (s *Store) AppendProposal(p *block.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.genesisHash.Load() == nil {
		return ErrNoGenesis
	}

	parent, err := s.get(p.RefHash())
	if err != nil {
		return ErrUnknownParent
	}
	if parent.Kind != KindGenesis && parent.Kind != KindConvergence {
		return ErrUnknownParent
	}

	hash := p.Hash()
	if err := s.put(hash, Entry{Kind: KindProposal, Hash: hash, Proposal: p}); err != nil {
		return err
	}

	if p.RefHash() == s.head.Load().(vrrb.Bytes32) {
		s.sourcesMu.Lock()
		s.sources[hash] = struct{}{}
		s.sourcesMu.Unlock()
	}

	s.Tick.Signal()
	return nil
}

// AppendConvergence records c, consolidating every Proposal it
// references. Every ref must be a currently open source (a Proposal
// extending the current head that no prior Convergence has consumed);
// otherwise AppendConvergence fails and the DAG is left unchanged,
// enforcing acyclicity of the parent edges.
func (s *Store) AppendConvergence(c *block.Convergence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.genesisHash.Load() == nil {
		return ErrNoGenesis
	}

	refs := c.Header().RefHashes()

	s.sourcesMu.RLock()
	for _, ref := range refs {
		if _, ok := s.sources[ref]; !ok {
			s.sourcesMu.RUnlock()
			return ErrNotSource
		}
		if entry, err := s.get(ref); err != nil || entry.Kind != KindProposal {
			s.sourcesMu.RUnlock()
			return ErrUnknownParent
		}
	}
	s.sourcesMu.RUnlock()

	hash := c.Header().Hash()
	if err := s.put(hash, Entry{Kind: KindConvergence, Hash: hash, Convergence: c}); err != nil {
		return err
	}

	s.sourcesMu.Lock()
	for _, ref := range refs {
		delete(s.sources, ref)
	}
	s.sourcesMu.Unlock()

	s.head.Store(hash)
	s.Tick.Signal()
	return nil
}

// Get returns the entry stored under hash.
func (s *Store) Get(hash vrrb.Bytes32) (Entry, error) {
	return s.get(hash)
}

// Head returns the hash of the latest Genesis or Convergence block.
func (s *Store) Head() (vrrb.Bytes32, error) {
	v := s.head.Load()
	if v == nil {
		return vrrb.Bytes32{}, ErrNoGenesis
	}
	return v.(vrrb.Bytes32), nil
}

// Sources returns the hashes of Proposals extending Head that await
// consolidation by a Convergence - the candidate set package miner and
// package resolver consume each round.
func (s *Store) Sources() []vrrb.Bytes32 {
	s.sourcesMu.RLock()
	defer s.sourcesMu.RUnlock()
	out := make([]vrrb.Bytes32, 0, len(s.sources))
	for h := range s.sources {
		out = append(out, h)
	}
	return out
}

// entryWire is Entry's on-disk form: exactly one of the three block
// pointers is non-nil, selected by Kind.
type entryWire struct {
	Kind        uint8
	Genesis     *block.Genesis     `rlp:"nil"`
	Proposal    *block.Proposal    `rlp:"nil"`
	Convergence *block.Convergence `rlp:"nil"`
}

func (s *Store) get(hash vrrb.Bytes32) (Entry, error) {
	if v, ok := s.cache.Get(hash); ok {
		return v.(Entry), nil
	}

	raw, err := s.data.Get(hash[:])
	if err != nil {
		if s.data.IsNotFound(err) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}

	var wire entryWire
	if err := rlp.DecodeBytes(raw, &wire); err != nil {
		return Entry{}, errors.Wrap(err, "dag: decode entry")
	}
	entry := Entry{
		Kind:        Kind(wire.Kind),
		Hash:        hash,
		Genesis:     wire.Genesis,
		Proposal:    wire.Proposal,
		Convergence: wire.Convergence,
	}
	s.cache.Add(hash, entry)
	return entry, nil
}

func (s *Store) put(hash vrrb.Bytes32, entry Entry) error {
	wire := entryWire{
		Kind:        uint8(entry.Kind),
		Genesis:     entry.Genesis,
		Proposal:    entry.Proposal,
		Convergence: entry.Convergence,
	}
	raw, err := rlp.EncodeToBytes(&wire)
	if err != nil {
		return errors.Wrap(err, "dag: encode entry")
	}
	if err := s.data.Put(hash[:], raw); err != nil {
		return err
	}
	s.cache.Add(hash, entry)
	return nil
}
