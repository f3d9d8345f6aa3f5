// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"net"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrrb-network/vrrb/bls"
	"github.com/vrrb-network/vrrb/block"
	"github.com/vrrb-network/vrrb/certificate"
	"github.com/vrrb-network/vrrb/claim"
	"github.com/vrrb-network/vrrb/crypto"
	"github.com/vrrb-network/vrrb/dag"
	"github.com/vrrb-network/vrrb/kvstore"
	"github.com/vrrb-network/vrrb/miner"
	"github.com/vrrb-network/vrrb/state"
	"github.com/vrrb-network/vrrb/tx"
	"github.com/vrrb-network/vrrb/vrrb"
)

func newClaim(t *testing.T, ip string, eligibility claim.Eligibility) (*claim.Claim, *crypto.PrivateKey) {
	sk, err := crypto.GenerateKey()
	require.NoError(t, err)
	pub := &sk.PublicKey
	addr := net.ParseIP(ip)
	hash := vrrb.Sha256(crypto.PublicKeyBytes(pub), []byte(addr.String()))
	sig, err := crypto.Sign(hash, sk)
	require.NoError(t, err)
	c, err := claim.New(pub, sig, vrrb.NewNodeId(), addr, eligibility)
	require.NoError(t, err)
	return c, sk
}

func newQuorum(t *testing.T, n int) (*bls.Signer, []*bls.SecretShare, []int) {
	shares := make([]*bls.SecretShare, n)
	perNode := make(map[vrrb.NodeId][]byte, n)
	ids := make([]vrrb.NodeId, n)
	for i := 0; i < n; i++ {
		id := vrrb.NewNodeId()
		ikm := make([]byte, 32)
		copy(ikm, []byte{byte(i + 1)})
		s := bls.NewSecretShare(id, ikm)
		shares[i] = s
		ids[i] = id
		perNode[id] = s.PublicKeyShare()
	}
	groupSet := bls.NewGroupPublicKeySet([]byte("group-key-placeholder"), perNode)
	indices := make([]int, n)
	for i, id := range ids {
		idx, ok := groupSet.IndexOf(id)
		require.True(t, ok)
		indices[i] = idx
	}
	return bls.NewSigner(nil, groupSet), shares, indices
}

type fixture struct {
	orc       *Orchestrator
	dag       *dag.Store
	harvester *claim.Claim
	hSk       *crypto.PrivateKey
	shares    []*bls.SecretShare
	indices   []int
	emitted   []Event
}

func newFixture(t *testing.T) *fixture {
	store, err := dag.New(kvstore.NewMemory())
	require.NoError(t, err)

	genesisClaim, genSk := newClaim(t, "127.0.0.1", claim.EligibilityMiner)
	g, err := block.NewGenesis(block.GenesisParams{
		Timestamp:   1,
		BlockSeed:   1,
		Claims:      []*claim.Claim{genesisClaim},
		FirstReward: block.Reward{Amount: uint256.NewInt(50)},
	}, genSk)
	require.NoError(t, err)
	require.NoError(t, store.AppendGenesis(g))

	harvester, hSk := newClaim(t, "127.0.0.2", claim.EligibilityValidator)

	signer, shares, indices := newQuorum(t, 3)
	certs, err := certificate.New(signer)
	require.NoError(t, err)

	trie := state.NewTrie()
	applier := state.NewApplier(trie, state.DefaultFeeSchedule, func() uint64 { return 1 })
	mn := miner.New(store, genesisClaim, genSk, nil)

	f := &fixture{dag: store, harvester: harvester, hSk: hSk, shares: shares, indices: indices}
	f.orc = New(Config{
		Role:    RoleContext{Type: NodeValidator, Quorum: QuorumHarvester},
		DAG:     store,
		Certs:   certs,
		Miner:   mn,
		Applier: applier,
		Trie:    trie,
		Signer:  bls.NewSigner(shares[0], signer.GroupSet),
		Self:    harvester,
		SK:      hSk,
		NodeIdx: indices[0],
		Mempool: NewMempool(),
		Emit:    func(ev Event) { f.emitted = append(f.emitted, ev) },
	})
	return f
}

func TestDispatchTxnValidatedAdmitsToMempool(t *testing.T) {
	f := newFixture(t)
	sk, err := crypto.GenerateKey()
	require.NoError(t, err)
	txn := tx.New(1, crypto.AddressOf(&sk.PublicKey), &sk.PublicKey, f.harvester.Address, "VRRB", uint256.NewInt(5), 0)
	sig, err := crypto.Sign(txn.SigningHash(), sk)
	require.NoError(t, err)
	txn = txn.WithSignature(sig)

	require.NoError(t, f.orc.Dispatch(TxnValidated{Txn: txn}))
	assert.Equal(t, 1, f.orc.mempool.Drain().Len())
}

func TestDispatchMineProposalBlockRejectsWrongRole(t *testing.T) {
	f := newFixture(t)
	f.orc.role = RoleContext{Type: NodeMiner}
	head, err := f.dag.Head()
	require.NoError(t, err)

	err = f.orc.Dispatch(MineProposalBlock{RefHash: head, Round: 1, Claim: f.harvester})
	assert.Equal(t, ErrWrongNodeType, err)
}

func TestDispatchMineProposalBlockAppendsProposal(t *testing.T) {
	f := newFixture(t)
	head, err := f.dag.Head()
	require.NoError(t, err)

	require.NoError(t, f.orc.Dispatch(MineProposalBlock{RefHash: head, Round: 1, Claim: f.harvester}))
	assert.Equal(t, 1, len(f.dag.Sources()))
}

func TestDispatchSignConvergenceBlockEmitsPartialSign(t *testing.T) {
	f := newFixture(t)
	conv, _, err := f.orc.miner.MineConvergence(1, 2, nil, vrrb.Bytes32{}, block.Reward{Amount: uint256.NewInt(50)}, 1, 0, 1, 2)
	require.NoError(t, err)

	require.NoError(t, f.orc.Dispatch(SignConvergenceBlock{Block: conv}))
	require.Len(t, f.emitted, 1)
	sent, ok := f.emitted[0].(SendPeerConvergenceBlockSign)
	assert.True(t, ok)
	assert.Equal(t, conv.Header().Hash(), sent.BlockHash)
}

func TestDispatchPeerConvergenceBlockSignAppliesAndCertifies(t *testing.T) {
	f := newFixture(t)
	head, err := f.dag.Head()
	require.NoError(t, err)

	require.NoError(t, f.orc.Dispatch(MineProposalBlock{RefHash: head, Round: 1, Claim: f.harvester}))
	sources := f.dag.Sources()
	require.Len(t, sources, 1)

	mn := f.orc.miner
	conv, _, err := mn.MineConvergence(1, 2, nil, vrrb.Bytes32{}, block.Reward{Amount: uint256.NewInt(50)}, 1, 0, 1, 2)
	require.NoError(t, err)
	require.NoError(t, f.dag.AppendConvergence(conv))

	blockHash := conv.Header().Hash()
	payloadHash := blockHash

	var crossed bool
	for i := 0; i < 2; i++ {
		partial, err := f.shares[i].PartialSign(payloadHash)
		require.NoError(t, err)
		err = f.orc.Dispatch(PeerConvergenceBlockSign{
			NodeIdx:     f.indices[i],
			BlockHash:   blockHash,
			PayloadHash: payloadHash,
			PartialSig:  partial,
			Threshold:   2,
		})
		require.NoError(t, err)
		if i == 1 {
			crossed = true
		}
	}
	assert.True(t, crossed)

	require.Len(t, f.emitted, 1)
	created, ok := f.emitted[0].(BlockCertificateCreated)
	require.True(t, ok)
	assert.Equal(t, blockHash, created.BlockHash)
	assert.Equal(t, certificate.Certified, f.orc.certs.Status(blockHash))
}

func TestDispatchUnknownEventErrors(t *testing.T) {
	f := newFixture(t)
	err := f.orc.Dispatch(struct{ Event }{})
	assert.Error(t, err)
}

func TestStopHaltsRun(t *testing.T) {
	f := newFixture(t)
	f.orc.Run()
	f.orc.Send(Stop{})
	f.orc.Wait()
}
