// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"net"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrrb-network/vrrb/block"
	"github.com/vrrb-network/vrrb/claim"
	"github.com/vrrb-network/vrrb/crypto"
	"github.com/vrrb-network/vrrb/genesis"
	"github.com/vrrb-network/vrrb/vrrb"
)

func newBootstrapClaim(t *testing.T, ip string) *claim.Claim {
	sk, err := crypto.GenerateKey()
	require.NoError(t, err)
	pub := &sk.PublicKey
	addr := net.ParseIP(ip)
	hash := vrrb.Sha256(crypto.PublicKeyBytes(pub), []byte(addr.String()))
	sig, err := crypto.Sign(hash, sk)
	require.NoError(t, err)
	c, err := claim.New(pub, sig, vrrb.NewNodeId(), addr, claim.EligibilityMiner)
	require.NoError(t, err)
	return c
}

func TestBuildProducesSignedVestingTable(t *testing.T) {
	treasurySk, err := crypto.GenerateKey()
	require.NoError(t, err)

	miner := newBootstrapClaim(t, "127.0.0.1")
	receiver := vrrb.Address{1, 2, 3}

	b := &genesis.Builder{
		Timestamp: 1700000000,
		BlockSeed: 42,
		Vesting: []genesis.VestingEntry{
			{Receiver: receiver, Amount: uint256.NewInt(1000)},
		},
		Claims:      []*claim.Claim{miner},
		FirstReward: block.Reward{Epoch: 0, Amount: uint256.NewInt(50)},
	}

	g, err := b.Build(treasurySk)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), g.Header().BlockSeed())
	assert.NotEqual(t, vrrb.Bytes32{}, g.Header().TxnHash())
}

func TestBuildRequiresAtLeastOneClaim(t *testing.T) {
	treasurySk, err := crypto.GenerateKey()
	require.NoError(t, err)

	b := &genesis.Builder{
		Timestamp:   1,
		BlockSeed:   1,
		FirstReward: block.Reward{Amount: uint256.NewInt(1)},
	}
	_, err = b.Build(treasurySk)
	assert.Equal(t, genesis.ErrNoClaims, err)
}
