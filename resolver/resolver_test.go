// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package resolver

import (
	"net"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrrb-network/vrrb/block"
	"github.com/vrrb-network/vrrb/claim"
	"github.com/vrrb-network/vrrb/crypto"
	"github.com/vrrb-network/vrrb/tx"
	"github.com/vrrb-network/vrrb/vrrb"
)

func newHarvester(t *testing.T) (*claim.Claim, *crypto.PrivateKey) {
	sk, err := crypto.GenerateKey()
	require.NoError(t, err)
	pub := &sk.PublicKey
	ip := net.ParseIP("10.0.0.1")
	hash := vrrb.Sha256(crypto.PublicKeyBytes(pub), []byte(ip.String()))
	sig, err := crypto.Sign(hash, sk)
	require.NoError(t, err)
	c, err := claim.New(pub, sig, vrrb.NewNodeId(), ip, claim.EligibilityValidator)
	require.NoError(t, err)
	return c, sk
}

func proposalWithTxn(t *testing.T, refHash vrrb.Bytes32, id tx.Id, from *claim.Claim, sk *crypto.PrivateKey) *block.Proposal {
	txns := block.NewOrderedMap[tx.Id, *tx.Transaction]()
	txn := tx.New(1, vrrb.Address{}, &sk.PublicKey, vrrb.Address{1}, "VRRB", uint256.NewInt(1), 0)
	txn = txn.WithSignature(nil)
	txns.Set(id, txn)
	p, err := block.BuildProposal(refHash, 1, 0, txns, block.NewOrderedMap[block.ClaimHash, *claim.Claim](), from, sk)
	require.NoError(t, err)
	return p
}

func TestResolveAssignsConflictToSingleWinner(t *testing.T) {
	refHash := vrrb.Bytes32{1}
	conflicting := tx.Id{9, 9, 9}

	from1, sk1 := newHarvester(t)
	from2, sk2 := newHarvester(t)

	p1 := proposalWithTxn(t, refHash, conflicting, from1, sk1)
	p2 := proposalWithTxn(t, refHash, conflicting, from2, sk2)

	results := Resolve([]*block.Proposal{p1, p2}, 7, nil)
	require.Len(t, results, 2)

	owners := 0
	for _, r := range results {
		if _, ok := r.Txns[conflicting]; ok {
			owners++
		}
	}
	assert.Equal(t, 1, owners, "exactly one proposal should keep the conflicting txn")
}

func TestResolveIsDeterministic(t *testing.T) {
	refHash := vrrb.Bytes32{1}
	conflicting := tx.Id{5, 5, 5}

	from1, sk1 := newHarvester(t)
	from2, sk2 := newHarvester(t)

	p1 := proposalWithTxn(t, refHash, conflicting, from1, sk1)
	p2 := proposalWithTxn(t, refHash, conflicting, from2, sk2)

	r1 := Resolve([]*block.Proposal{p1, p2}, 99, nil)
	r2 := Resolve([]*block.Proposal{p2, p1}, 99, nil)

	owner1 := ownerOf(r1, conflicting)
	owner2 := ownerOf(r2, conflicting)
	assert.Equal(t, owner1, owner2)
}

func TestResolveDropsPastRoundTxn(t *testing.T) {
	refHash := vrrb.Bytes32{1}
	settled := tx.Id{1, 2, 3}

	from, sk := newHarvester(t)
	p := proposalWithTxn(t, refHash, settled, from, sk)

	results := Resolve([]*block.Proposal{p}, 1, map[tx.Id]struct{}{settled: {}})
	require.Len(t, results, 1)
	assert.NotContains(t, results[0].Txns, settled)
}

func ownerOf(results []Resolution, id tx.Id) vrrb.Bytes32 {
	for _, r := range results {
		if _, ok := r.Txns[id]; ok {
			return r.Proposal.Hash()
		}
	}
	return vrrb.Bytes32{}
}
