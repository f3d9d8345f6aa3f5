// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Proposal implements the Proposal block kind of spec.md §3-4.3, adapted
// from the teacher's single-parent, single-signer Proposal (this file's
// prior content: parent/txsRoot/gasLimit header plus signature) into a
// round/epoch-scoped bundle of ordered transactions and claims authored by
// one harvester.
package block

import (
	"errors"
	"io"
	"sort"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vrrb-network/vrrb/claim"
	"github.com/vrrb-network/vrrb/crypto"
	"github.com/vrrb-network/vrrb/tx"
	"github.com/vrrb-network/vrrb/vrrb"
)

// ErrTooLarge is returned by BuildProposal when the combined txn+claim
// count exceeds vrrb.MaxProposalEntries, per spec.md §4.3.
var ErrTooLarge = errors.New("block: proposal exceeds MAX_PROPOSAL_ENTRIES")

// ClaimHash identifies a Claim within a Proposal's claims bundle.
type ClaimHash = vrrb.Bytes32

// Proposal is a set of candidate transactions and claims authored by one
// harvester for a given round, attached to a single parent.
type Proposal struct {
	body proposalBody

	cache struct {
		hash   atomic.Value
		signer atomic.Value
	}
}

type proposalBody struct {
	RefHash   vrrb.Bytes32
	Round     uint64
	Epoch     uint64
	Txns      *OrderedMap[tx.Id, *tx.Transaction]
	Claims    *OrderedMap[ClaimHash, *claim.Claim]
	From      *claim.Claim
	Signature []byte
}

// BuildProposal constructs a signed Proposal, failing with ErrTooLarge when
// the entry count exceeds vrrb.MaxProposalEntries (spec.md §4.3).
func BuildProposal(refHash vrrb.Bytes32, round, epoch uint64, txns *OrderedMap[tx.Id, *tx.Transaction], claims *OrderedMap[ClaimHash, *claim.Claim], from *claim.Claim, sk *crypto.PrivateKey) (*Proposal, error) {
	if txns.Len()+claims.Len() > vrrb.MaxProposalEntries {
		return nil, ErrTooLarge
	}

	p := &Proposal{body: proposalBody{
		RefHash: refHash,
		Round:   round,
		Epoch:   epoch,
		Txns:    txns,
		Claims:  claims,
		From:    from,
	}}

	sig, err := crypto.Sign(p.signingHash(), sk)
	if err != nil {
		return nil, err
	}
	p.body.Signature = sig
	return p, nil
}

// RefHash returns the parent (Convergence or Genesis) this proposal
// extends.
func (p *Proposal) RefHash() vrrb.Bytes32 { return p.body.RefHash }

// Round and Epoch are the proposal's consensus coordinates.
func (p *Proposal) Round() uint64 { return p.body.Round }
func (p *Proposal) Epoch() uint64 { return p.body.Epoch }

// Txns and Claims return the proposal's ordered entry bundles.
func (p *Proposal) Txns() *OrderedMap[tx.Id, *tx.Transaction]   { return p.body.Txns }
func (p *Proposal) Claims() *OrderedMap[ClaimHash, *claim.Claim] { return p.body.Claims }

// From returns the authoring harvester's claim.
func (p *Proposal) From() *claim.Claim { return p.body.From }

// Signature returns the proposal's signature.
func (p *Proposal) Signature() []byte { return append([]byte(nil), p.body.Signature...) }

// signingHash hashes (round, epoch, txns, claims, from) - everything but
// the signature, per spec.md §4.3.
func (p *Proposal) signingHash() vrrb.Bytes32 {
	return vrrb.Sha256Fn(func(w io.Writer) {
		rlp.Encode(w, []interface{}{
			p.body.Round,
			p.body.Epoch,
			encodeOrderedTxns(p.body.Txns),
			encodeOrderedClaims(p.body.Claims),
			p.body.From.Hash,
		})
	})
}

// Hash is H(round ‖ epoch ‖ txns ‖ claims ‖ from ‖ signature), per
// spec.md §3.
func (p *Proposal) Hash() (hash vrrb.Bytes32) {
	if cached := p.cache.hash.Load(); cached != nil {
		return cached.(vrrb.Bytes32)
	}
	defer func() { p.cache.hash.Store(hash) }()

	return vrrb.Sha256Fn(func(w io.Writer) {
		rlp.Encode(w, []interface{}{
			p.body.Round,
			p.body.Epoch,
			encodeOrderedTxns(p.body.Txns),
			encodeOrderedClaims(p.body.Claims),
			p.body.From.Hash,
			p.body.Signature,
		})
	})
}

// Signer recovers the address that produced the proposal's signature.
func (p *Proposal) Signer() (vrrb.Address, error) {
	if cached := p.cache.signer.Load(); cached != nil {
		return cached.(vrrb.Address), nil
	}
	pub, err := crypto.Recover(p.signingHash(), p.body.Signature)
	if err != nil {
		return vrrb.Address{}, err
	}
	addr := crypto.AddressOf(pub)
	p.cache.signer.Store(addr)
	return addr, nil
}

func encodeOrderedTxns(m *OrderedMap[tx.Id, *tx.Transaction]) [][]byte {
	out := make([][]byte, 0, m.Len())
	m.Each(func(id tx.Id, _ *tx.Transaction) {
		out = append(out, id[:])
	})
	return out
}

func encodeOrderedClaims(m *OrderedMap[ClaimHash, *claim.Claim]) [][]byte {
	out := make([][]byte, 0, m.Len())
	m.Each(func(h ClaimHash, _ *claim.Claim) {
		out = append(out, h[:])
	})
	return out
}

// SortByHash sorts proposals ascending by Hash, the lexicographic tie-break
// used by package resolver (spec.md §4.5 step 2).
func SortByHash(proposals []*Proposal) {
	sort.Slice(proposals, func(i, j int) bool {
		hi, hj := proposals[i].Hash(), proposals[j].Hash()
		for b := 0; b < len(hi); b++ {
			if hi[b] != hj[b] {
				return hi[b] < hj[b]
			}
		}
		return false
	})
}
