// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

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

func newHarvesterClaim(t *testing.T, ip string) (*claim.Claim, *crypto.PrivateKey) {
	sk, err := crypto.GenerateKey()
	require.NoError(t, err)
	pub := &sk.PublicKey
	addr := net.ParseIP(ip)
	hash := vrrb.Sha256(crypto.PublicKeyBytes(pub), []byte(addr.String()))
	sig, err := crypto.Sign(hash, sk)
	require.NoError(t, err)
	c, err := claim.New(pub, sig, vrrb.NewNodeId(), addr, claim.EligibilityValidator)
	require.NoError(t, err)
	return c, sk
}

func newTransfer(t *testing.T, senderSk *crypto.PrivateKey, sender, receiver vrrb.Address, amount uint64, nonce uint64) *tx.Transaction {
	txn := tx.New(1, sender, &senderSk.PublicKey, receiver, "VRRB", uint256.NewInt(amount), nonce)
	sig, err := crypto.Sign(txn.SigningHash(), senderSk)
	require.NoError(t, err)
	return txn.WithSignature(sig)
}

func buildConvergence(t *testing.T, proposals []*block.Proposal) *block.Convergence {
	txns := make(map[block.ProposalHash]block.TxnSet, len(proposals))
	claims := make(map[block.ProposalHash]block.ClaimSet, len(proposals))
	refs := make([]vrrb.Bytes32, 0, len(proposals))
	for _, p := range proposals {
		ref := p.Hash()
		refs = append(refs, ref)
		set := make(block.TxnSet)
		p.Txns().Each(func(id tx.Id, _ *tx.Transaction) { set[id] = struct{}{} })
		txns[ref] = set
		claims[ref] = make(block.ClaimSet)
	}

	harvester, hSk := newHarvesterClaim(t, "10.1.1.1")
	header, err := block.NewHeader(block.HeaderParams{
		RefHashes:       refs,
		Round:           1,
		Epoch:           0,
		BlockSeed:       1,
		NextBlockSeed:   2,
		BlockHeight:     1,
		Timestamp:       2,
		TxnHash:         vrrb.Bytes32{},
		MinerClaim:      harvester,
		ClaimListHash:   vrrb.Bytes32{},
		BlockReward:     block.Reward{Amount: uint256.NewInt(50)},
		NextBlockReward: block.Reward{Amount: uint256.NewInt(50)},
	}, hSk)
	require.NoError(t, err)

	conv, err := block.ComposeConvergence(header, txns, claims)
	require.NoError(t, err)
	return conv
}

func TestApplyCreditsReceiverAndDebitsSender(t *testing.T) {
	trie := NewTrie()
	applier := NewApplier(trie, DefaultFeeSchedule, func() uint64 { return 5 })

	sender, senderSk := newHarvesterClaim(t, "10.0.0.1")
	receiver, _ := newHarvesterClaim(t, "10.0.0.2")

	// fund the sender so the 1000 debit does not overdraw it.
	funded := emptySnapshot()
	acc := NewAccount(sender.Address, 1)
	acc.Credits = uint256.NewInt(1000)
	acc.rehash()
	funded.accounts[sender.Address] = acc
	trie.current.Store(funded)

	txn := newTransfer(t, senderSk, sender.Address, receiver.Address, 1000, 1)
	txns := block.NewOrderedMap[tx.Id, *tx.Transaction]()
	txns.Set(txn.Id(), txn)

	p, err := block.BuildProposal(vrrb.Bytes32{1}, 1, 0, txns, block.NewOrderedMap[block.ClaimHash, *claim.Claim](), sender, senderSk)
	require.NoError(t, err)

	conv := buildConvergence(t, []*block.Proposal{p})

	roots, err := applier.Apply(conv, []*block.Proposal{p}, 5)
	require.NoError(t, err)
	assert.False(t, roots.StateRoot.IsZero())

	senderAcc := trie.Account(sender.Address)
	require.NotNil(t, senderAcc)
	assert.Equal(t, uint256.NewInt(1000), senderAcc.Debits)
	assert.Equal(t, uint64(1), senderAcc.Nonce)
	assert.Contains(t, senderAcc.Digests.Sent, txn.Id())

	receiverAcc := trie.Account(receiver.Address)
	require.NotNil(t, receiverAcc)
	assert.Equal(t, uint256.NewInt(1000), receiverAcc.Credits)
	assert.Contains(t, receiverAcc.Digests.Recv, txn.Id())
}

func TestApplyRejectsOverdraft(t *testing.T) {
	trie := NewTrie()
	applier := NewApplier(trie, DefaultFeeSchedule, func() uint64 { return 1 })

	sender, senderSk := newHarvesterClaim(t, "10.0.0.3")
	receiver, _ := newHarvesterClaim(t, "10.0.0.4")

	// sender has never received anything, so any debit overdraws it.
	txn := newTransfer(t, senderSk, sender.Address, receiver.Address, 10, 1)
	txns := block.NewOrderedMap[tx.Id, *tx.Transaction]()
	txns.Set(txn.Id(), txn)

	p, err := block.BuildProposal(vrrb.Bytes32{1}, 1, 0, txns, block.NewOrderedMap[block.ClaimHash, *claim.Claim](), sender, senderSk)
	require.NoError(t, err)

	conv := buildConvergence(t, []*block.Proposal{p})

	_, err = applier.Apply(conv, []*block.Proposal{p}, 1)
	assert.ErrorIs(t, err, ErrOverdrawn)

	assert.Nil(t, trie.Account(sender.Address), "failed apply must not leak into the published snapshot")
}

func TestConsolidateFoldsAcrossTransactions(t *testing.T) {
	addr := vrrb.Address{1}
	updates := []StateUpdate{
		{Address: addr, CreditDelta: uint256.NewInt(10), DebitDelta: uint256.NewInt(0), Nonce: 1, StakeAmount: uint256.NewInt(0)},
		{Address: addr, CreditDelta: uint256.NewInt(5), DebitDelta: uint256.NewInt(2), Nonce: 3, StakeAmount: uint256.NewInt(0)},
	}
	out := consolidate(updates)
	got := out[addr]
	assert.Equal(t, uint256.NewInt(15), got.CreditDelta)
	assert.Equal(t, uint256.NewInt(2), got.DebitDelta)
	assert.Equal(t, uint64(3), got.Nonce)
}
