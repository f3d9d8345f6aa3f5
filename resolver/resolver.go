// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package resolver implements the Conflict Resolver (C5): a pure,
// side-effect-free function that, given a set of Proposals sharing a
// parent, assigns each conflicting transaction or claim to exactly one
// winning Proposal, per spec.md §4.5. Grounded on claim.ElectionResult (the
// same seed-driven ordering spec.md §4.2 uses for miner election) and the
// teacher's poa package, whose scheduling tests show the same
// sort-then-assign shape applied to proposer scheduling.
package resolver

import (
	"bytes"
	"sort"

	"github.com/vrrb-network/vrrb/block"
	"github.com/vrrb-network/vrrb/claim"
	"github.com/vrrb-network/vrrb/tx"
)

// Resolution is one Proposal's surviving entries after conflict resolution.
type Resolution struct {
	Proposal *block.Proposal
	Txns     block.TxnSet
	Claims   block.ClaimSet
}

// Resolve implements spec.md §4.5's algorithm:
//
//  1. Remove any transaction already settled in an ancestor round
//     (pastTxns) from every Proposal.
//  2. Order Proposals ascending by election_result(P.From, seed), breaking
//     ties lexicographically by Proposal hash.
//  3. Assign each conflicting entry to the first Proposal in that order
//     which contains it; non-conflicting entries keep their Proposal.
func Resolve(proposals []*block.Proposal, seed uint64, pastTxns map[tx.Id]struct{}) []Resolution {
	ordered := append([]*block.Proposal(nil), proposals...)
	sortByElection(ordered, seed)

	txnOwner := make(map[tx.Id]*block.Proposal)
	claimOwner := make(map[block.ClaimHash]*block.Proposal)

	for _, p := range ordered {
		p.Txns().Each(func(id tx.Id, _ *tx.Transaction) {
			if _, settled := pastTxns[id]; settled {
				return
			}
			if _, ok := txnOwner[id]; !ok {
				txnOwner[id] = p
			}
		})
		p.Claims().Each(func(h block.ClaimHash, _ *claim.Claim) {
			if _, ok := claimOwner[h]; !ok {
				claimOwner[h] = p
			}
		})
	}

	results := make([]Resolution, len(ordered))
	for i, p := range ordered {
		txns := make(block.TxnSet)
		p.Txns().Each(func(id tx.Id, _ *tx.Transaction) {
			if _, settled := pastTxns[id]; settled {
				return
			}
			if txnOwner[id] == p {
				txns[id] = struct{}{}
			}
		})

		claims := make(block.ClaimSet)
		p.Claims().Each(func(h block.ClaimHash, _ *claim.Claim) {
			if claimOwner[h] == p {
				claims[h] = struct{}{}
			}
		})

		results[i] = Resolution{Proposal: p, Txns: txns, Claims: claims}
	}
	return results
}

// sortByElection orders proposals ascending by election_result(P.From, seed),
// breaking ties lexicographically by Proposal hash (spec.md §4.5 step 2).
func sortByElection(proposals []*block.Proposal, seed uint64) {
	sort.SliceStable(proposals, func(i, j int) bool {
		pi, pj := proposals[i].From(), proposals[j].From()
		ri := claim.ElectionResult(pi.Hash, seed)
		rj := claim.ElectionResult(pj.Hash, seed)
		if cmp := ri.Cmp(rj); cmp != 0 {
			return cmp < 0
		}
		hi, hj := proposals[i].Hash(), proposals[j].Hash()
		return bytes.Compare(hi[:], hj[:]) < 0
	})
}
