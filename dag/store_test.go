// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package dag

import (
	"net"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrrb-network/vrrb/block"
	"github.com/vrrb-network/vrrb/claim"
	"github.com/vrrb-network/vrrb/crypto"
	"github.com/vrrb-network/vrrb/kvstore"
	"github.com/vrrb-network/vrrb/tx"
	"github.com/vrrb-network/vrrb/vrrb"
)

func newTestClaim(t *testing.T) (*claim.Claim, *crypto.PrivateKey) {
	sk, err := crypto.GenerateKey()
	require.NoError(t, err)
	pub := &sk.PublicKey
	ip := net.ParseIP("127.0.0.1")
	hash := vrrb.Sha256(crypto.PublicKeyBytes(pub), []byte(ip.String()))
	sig, err := crypto.Sign(hash, sk)
	require.NoError(t, err)
	c, err := claim.New(pub, sig, vrrb.NewNodeId(), ip, claim.EligibilityMiner)
	require.NoError(t, err)
	return c, sk
}

func newTestGenesis(t *testing.T) (*block.Genesis, *crypto.PrivateKey) {
	sk, err := crypto.GenerateKey()
	require.NoError(t, err)
	c, _ := newTestClaim(t)
	g, err := block.NewGenesis(block.GenesisParams{
		Timestamp:   1,
		BlockSeed:   42,
		Claims:      []*claim.Claim{c},
		FirstReward: block.Reward{Epoch: 0, Amount: uint256.NewInt(100)},
	}, sk)
	require.NoError(t, err)
	return g, sk
}

func TestAppendGenesisTwiceFails(t *testing.T) {
	s, err := New(kvstore.NewMemory())
	require.NoError(t, err)

	g, _ := newTestGenesis(t)
	require.NoError(t, s.AppendGenesis(g))
	assert.Equal(t, ErrAlreadyGenesis, s.AppendGenesis(g))
}

func TestAppendProposalUnknownParent(t *testing.T) {
	s, err := New(kvstore.NewMemory())
	require.NoError(t, err)
	g, _ := newTestGenesis(t)
	require.NoError(t, s.AppendGenesis(g))

	c, sk := newTestClaim(t)
	p, err := block.BuildProposal(vrrb.Bytes32{0xFF}, 1, 0, block.NewOrderedMap[tx.Id, *tx.Transaction](), block.NewOrderedMap[block.ClaimHash, *claim.Claim](), c, sk)
	require.NoError(t, err)

	assert.Equal(t, ErrUnknownParent, s.AppendProposal(p))
}

func TestAppendProposalThenConvergence(t *testing.T) {
	s, err := New(kvstore.NewMemory())
	require.NoError(t, err)
	g, _ := newTestGenesis(t)
	require.NoError(t, s.AppendGenesis(g))

	head, err := s.Head()
	require.NoError(t, err)
	assert.Equal(t, g.Header().Hash(), head)

	c, sk := newTestClaim(t)
	p, err := block.BuildProposal(head, 1, 0, block.NewOrderedMap[tx.Id, *tx.Transaction](), block.NewOrderedMap[block.ClaimHash, *claim.Claim](), c, sk)
	require.NoError(t, err)
	require.NoError(t, s.AppendProposal(p))

	sources := s.Sources()
	require.Len(t, sources, 1)
	assert.Equal(t, p.Hash(), sources[0])

	header, err := block.NewHeader(block.HeaderParams{
		RefHashes:     []vrrb.Bytes32{p.Hash()},
		Round:         1,
		Epoch:         0,
		BlockSeed:     43,
		NextBlockSeed: 44,
		BlockHeight:   1,
		Timestamp:     2,
		MinerClaim:    c,
		BlockReward:     block.Reward{Epoch: 0, Amount: uint256.NewInt(100)},
		NextBlockReward: block.Reward{Epoch: 0, Amount: uint256.NewInt(100)},
	}, sk)
	require.NoError(t, err)

	conv, err := block.ComposeConvergence(header, map[block.ProposalHash]block.TxnSet{p.Hash(): {}}, map[block.ProposalHash]block.ClaimSet{p.Hash(): {}})
	require.NoError(t, err)

	require.NoError(t, s.AppendConvergence(conv))
	assert.Empty(t, s.Sources())

	newHead, err := s.Head()
	require.NoError(t, err)
	assert.Equal(t, header.Hash(), newHead)

	entry, err := s.Get(p.Hash())
	require.NoError(t, err)
	assert.Equal(t, KindProposal, entry.Kind)
}

func TestAppendConvergenceRejectsUnknownSource(t *testing.T) {
	s, err := New(kvstore.NewMemory())
	require.NoError(t, err)
	g, sk := newTestGenesis(t)
	require.NoError(t, s.AppendGenesis(g))

	c, _ := newTestClaim(t)
	header, err := block.NewHeader(block.HeaderParams{
		RefHashes:       []vrrb.Bytes32{{0xAB}},
		Round:           1,
		BlockHeight:     1,
		MinerClaim:      c,
		BlockReward:     block.Reward{Amount: uint256.NewInt(0)},
		NextBlockReward: block.Reward{Amount: uint256.NewInt(0)},
	}, sk)
	require.NoError(t, err)

	conv, err := block.ComposeConvergence(header, map[block.ProposalHash]block.TxnSet{{0xAB}: {}}, map[block.ProposalHash]block.ClaimSet{{0xAB}: {}})
	require.NoError(t, err)

	assert.Equal(t, ErrNotSource, s.AppendConvergence(conv))
}
