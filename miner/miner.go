// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package miner implements the Miner / Convergence Builder (C6): the
// mine_convergence() state machine of spec.md §4.6, run by the claim
// elected on the current head's block seed. Grounded on the teacher's
// block/builder.go (speculative header assembly ahead of state-apply
// confirmation) and poa's election-then-build shape.
package miner

import (
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"github.com/vrrb-network/vrrb/block"
	"github.com/vrrb-network/vrrb/claim"
	"github.com/vrrb-network/vrrb/crypto"
	"github.com/vrrb-network/vrrb/dag"
	"github.com/vrrb-network/vrrb/resolver"
	"github.com/vrrb-network/vrrb/tx"
	"github.com/vrrb-network/vrrb/vrrb"
)

var log = log15.New("pkg", "miner")

// State is the miner's per-round election state machine, per spec.md §4.6:
// Idle -> Mining -> Emitted -> AwaitingCertificate -> Idle.
type State int

const (
	Idle State = iota
	Mining
	Emitted
	AwaitingCertificate
)

func (s State) String() string {
	switch s {
	case Mining:
		return "Mining"
	case Emitted:
		return "Emitted"
	case AwaitingCertificate:
		return "AwaitingCertificate"
	default:
		return "Idle"
	}
}

// ErrNotElected is returned by MineConvergence when self is not the winning
// claim for the current head's block seed.
var ErrNotElected = errors.New("miner: not elected for this head")

// RewardPolicy computes the reward schedule at an epoch boundary, the
// "utility-driven adjustment" spec.md §4.6 step 3 allows a miner to opt
// into. Returning delta=0 rolls the reward forward unchanged.
type RewardPolicy func(current block.Reward) (delta int64)

// Miner runs the Convergence-building state machine for one node.
type Miner struct {
	mu        sync.Mutex
	state     State
	dag       *dag.Store
	self      *claim.Claim
	sk        *crypto.PrivateKey
	reward    RewardPolicy
	roundTTL  time.Duration
}

// New returns a Miner for self, who owns sk, building onto store.
// reward may be nil, in which case the reward always rolls forward
// unchanged.
func New(store *dag.Store, self *claim.Claim, sk *crypto.PrivateKey, reward RewardPolicy) *Miner {
	if reward == nil {
		reward = func(block.Reward) int64 { return 0 }
	}
	return &Miner{dag: store, self: self, sk: sk, reward: reward, roundTTL: 15 * time.Second}
}

// State returns the miner's current state-machine position.
func (m *Miner) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsElected reports whether self wins election against seed among
// allClaims, per spec.md §3/§4.2: smallest election_result wins.
func IsElected(self *claim.Claim, seed uint64, allClaims []*claim.Claim) bool {
	best := self.ElectionResult(seed)
	for _, c := range allClaims {
		if c.Address == self.Address {
			continue
		}
		if c.ElectionResult(seed).Cmp(best) < 0 {
			return false
		}
	}
	return true
}

// MineConvergence runs spec.md §4.6's five steps: collect proposals
// extending the current head, resolve conflicts, compute the reward
// schedule, assemble and sign the header, and return the unattested
// Convergence (without a certificate). txnHash is the root the State
// Applier computes for this block, supplied by the caller since package
// miner does not itself apply state (spec.md §4.6 step 4: "computed
// speculatively at build time").
func (m *Miner) MineConvergence(seed, nextSeed uint64, pastTxns map[tx.Id]struct{}, txnHash vrrb.Bytes32, prevReward block.Reward, round, epoch, height uint64, timestamp uint64) (*block.Convergence, []resolver.Resolution, error) {
	m.mu.Lock()
	m.state = Mining
	m.mu.Unlock()

	sources := m.dag.Sources()
	var proposals []*block.Proposal
	for _, h := range sources {
		entry, err := m.dag.Get(h)
		if err != nil {
			return nil, nil, err
		}
		if entry.Kind == dag.KindProposal {
			proposals = append(proposals, entry.Proposal)
		}
	}

	resolutions := resolver.Resolve(proposals, seed, pastTxns)

	next := nextReward(prevReward, epoch, height, m.reward)

	txns := make(map[block.ProposalHash]block.TxnSet, len(resolutions))
	claims := make(map[block.ProposalHash]block.ClaimSet, len(resolutions))
	refs := make([]vrrb.Bytes32, 0, len(resolutions))
	var claimListHash vrrb.Bytes32
	claimParts := make([][]byte, 0)
	for _, r := range resolutions {
		ref := r.Proposal.Hash()
		refs = append(refs, ref)
		txns[ref] = r.Txns
		claims[ref] = r.Claims
		for h := range r.Claims {
			claimParts = append(claimParts, h[:])
		}
	}
	claimListHash = vrrb.Sha256(claimParts...)

	header, err := block.NewHeader(block.HeaderParams{
		RefHashes:       refs,
		Round:           round,
		Epoch:           epoch,
		BlockSeed:       seed,
		NextBlockSeed:   nextSeed,
		BlockHeight:     height,
		Timestamp:       timestamp,
		TxnHash:         txnHash,
		MinerClaim:      m.self,
		ClaimListHash:   claimListHash,
		BlockReward:     prevReward,
		NextBlockReward: next,
	}, m.sk)
	if err != nil {
		m.mu.Lock()
		m.state = Idle
		m.mu.Unlock()
		return nil, nil, errors.Wrap(err, "miner: sign header")
	}

	conv, err := block.ComposeConvergence(header, txns, claims)
	if err != nil {
		m.mu.Lock()
		m.state = Idle
		m.mu.Unlock()
		return nil, nil, errors.Wrap(err, "miner: compose convergence")
	}

	m.mu.Lock()
	m.state = Emitted
	m.mu.Unlock()
	log.Debug("mined convergence", "hash", header.Hash(), "proposals", len(refs))

	return conv, resolutions, nil
}

// AwaitCertificate transitions the miner into the window where it waits for
// the harvester quorum to certify the block it just emitted.
func (m *Miner) AwaitCertificate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = AwaitingCertificate
}

// Certified returns the miner to Idle once the emitted Convergence has been
// certified (or abandoned on round timeout), ready for the next election.
func (m *Miner) Certified() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Idle
}

// RoundTTL returns the configured round timeout. The Miner only stores
// it: no timer in this package abandons a round when it passes, and the
// state changes only through MineConvergence, AwaitCertificate and
// Certified.
func (m *Miner) RoundTTL() time.Duration {
	return m.roundTTL
}

func nextReward(prev block.Reward, epoch, height uint64, policy RewardPolicy) block.Reward {
	if height == 0 || height%vrrb.EpochBlocks != vrrb.EpochBlocks-1 {
		return prev
	}
	delta := policy(prev)
	amount := new(uint256.Int).Set(prev.Amount)
	if delta >= 0 {
		amount.Add(amount, uint256.NewInt(uint64(delta)))
	} else {
		sub := uint256.NewInt(uint64(-delta))
		if sub.Cmp(amount) >= 0 {
			amount = uint256.NewInt(0)
		} else {
			amount.Sub(amount, sub)
		}
	}
	return block.Reward{Epoch: epoch + 1, Amount: amount}
}
