// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package miner

import (
	"net"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrrb-network/vrrb/block"
	"github.com/vrrb-network/vrrb/claim"
	"github.com/vrrb-network/vrrb/crypto"
	"github.com/vrrb-network/vrrb/dag"
	"github.com/vrrb-network/vrrb/kvstore"
	"github.com/vrrb-network/vrrb/tx"
	"github.com/vrrb-network/vrrb/vrrb"
)

func newClaim(t *testing.T, ip string) (*claim.Claim, *crypto.PrivateKey) {
	sk, err := crypto.GenerateKey()
	require.NoError(t, err)
	pub := &sk.PublicKey
	addr := net.ParseIP(ip)
	hash := vrrb.Sha256(crypto.PublicKeyBytes(pub), []byte(addr.String()))
	sig, err := crypto.Sign(hash, sk)
	require.NoError(t, err)
	c, err := claim.New(pub, sig, vrrb.NewNodeId(), addr, claim.EligibilityMiner)
	require.NoError(t, err)
	return c, sk
}

func TestMineConvergenceNoProposals(t *testing.T) {
	store, err := dag.New(kvstore.NewMemory())
	require.NoError(t, err)

	genesisClaim, genSk := newClaim(t, "127.0.0.1")
	g, err := block.NewGenesis(block.GenesisParams{
		Timestamp:   1,
		BlockSeed:   1,
		Claims:      []*claim.Claim{genesisClaim},
		FirstReward: block.Reward{Amount: uint256.NewInt(50)},
	}, genSk)
	require.NoError(t, err)
	require.NoError(t, store.AppendGenesis(g))

	m := New(store, genesisClaim, genSk, nil)
	assert.Equal(t, Idle, m.State())

	conv, resolutions, err := m.MineConvergence(1, 2, nil, vrrb.Bytes32{}, block.Reward{Amount: uint256.NewInt(50)}, 1, 0, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, resolutions)
	assert.Empty(t, conv.Header().RefHashes())
	assert.Equal(t, Emitted, m.State())

	m.AwaitCertificate()
	assert.Equal(t, AwaitingCertificate, m.State())
	m.Certified()
	assert.Equal(t, Idle, m.State())
}

func TestMineConvergenceWithProposals(t *testing.T) {
	store, err := dag.New(kvstore.NewMemory())
	require.NoError(t, err)

	genesisClaim, genSk := newClaim(t, "127.0.0.1")
	g, err := block.NewGenesis(block.GenesisParams{
		Timestamp:   1,
		BlockSeed:   1,
		Claims:      []*claim.Claim{genesisClaim},
		FirstReward: block.Reward{Amount: uint256.NewInt(50)},
	}, genSk)
	require.NoError(t, err)
	require.NoError(t, store.AppendGenesis(g))

	head, err := store.Head()
	require.NoError(t, err)

	harvester, hSk := newClaim(t, "127.0.0.2")
	p, err := block.BuildProposal(head, 1, 0, block.NewOrderedMap[tx.Id, *tx.Transaction](), block.NewOrderedMap[block.ClaimHash, *claim.Claim](), harvester, hSk)
	require.NoError(t, err)
	require.NoError(t, store.AppendProposal(p))

	m := New(store, genesisClaim, genSk, nil)
	conv, resolutions, err := m.MineConvergence(1, 2, nil, vrrb.Bytes32{}, block.Reward{Amount: uint256.NewInt(50)}, 1, 0, 1, 2)
	require.NoError(t, err)
	require.Len(t, resolutions, 1)
	assert.Equal(t, []vrrb.Bytes32{p.Hash()}, conv.Header().RefHashes())

	require.NoError(t, store.AppendConvergence(conv))
}

func TestRewardRollsForwardOutsideEpochBoundary(t *testing.T) {
	prev := block.Reward{Epoch: 0, Amount: uint256.NewInt(100)}
	next := nextReward(prev, 0, 5, func(block.Reward) int64 { return 10 })
	assert.Equal(t, prev, next)
}

func TestRewardAdjustsAtEpochBoundary(t *testing.T) {
	prev := block.Reward{Epoch: 0, Amount: uint256.NewInt(100)}
	next := nextReward(prev, 0, vrrb.EpochBlocks-1, func(block.Reward) int64 { return 10 })
	assert.Equal(t, uint64(1), next.Epoch)
	assert.Equal(t, uint256.NewInt(110), next.Amount)
}
