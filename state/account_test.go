// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrrb-network/vrrb/vrrb"
)

func TestNewAccountIsZeroBalance(t *testing.T) {
	addr := vrrb.Address{1, 2, 3}
	acc := NewAccount(addr, 100)
	assert.Equal(t, addr, acc.Address)
	assert.Equal(t, uint256.NewInt(0), acc.Credits)
	assert.Equal(t, uint256.NewInt(0), acc.Debits)
	assert.Equal(t, uint64(100), acc.CreatedAt)
	assert.False(t, acc.Hash.IsZero(), "hash is derived on construction")
}

func TestAccountApplyRehashesOnMutation(t *testing.T) {
	acc := NewAccount(vrrb.Address{9}, 1)
	before := acc.Hash

	err := acc.apply(StateUpdate{
		CreditDelta: uint256.NewInt(50),
		DebitDelta:  uint256.NewInt(0),
		Nonce:       1,
		RecvIds:     nil,
	}, 2)
	require.NoError(t, err)

	assert.NotEqual(t, before, acc.Hash, "hash must change after a mutation")
	assert.Equal(t, uint256.NewInt(50), acc.Credits)
	assert.Equal(t, uint64(2), acc.UpdatedAt)
}

func TestAccountApplyRejectsOverdraft(t *testing.T) {
	acc := NewAccount(vrrb.Address{3}, 1)
	err := acc.apply(StateUpdate{
		CreditDelta: uint256.NewInt(0),
		DebitDelta:  uint256.NewInt(1),
	}, 1)
	assert.ErrorIs(t, err, ErrOverdrawn)
}

func TestAccountCloneIsIndependent(t *testing.T) {
	acc := NewAccount(vrrb.Address{4}, 1)
	require.NoError(t, acc.apply(StateUpdate{
		CreditDelta: uint256.NewInt(10),
		DebitDelta:  uint256.NewInt(0),
	}, 1))

	cpy := acc.Clone()
	require.NoError(t, cpy.apply(StateUpdate{
		CreditDelta: uint256.NewInt(5),
		DebitDelta:  uint256.NewInt(0),
	}, 2))

	assert.Equal(t, uint256.NewInt(10), acc.Credits, "original must not observe the clone's mutation")
	assert.Equal(t, uint256.NewInt(15), cpy.Credits)
}

func TestAccountRLPRoundTrip(t *testing.T) {
	acc := NewAccount(vrrb.Address{7}, 1)
	require.NoError(t, acc.apply(StateUpdate{
		CreditDelta: uint256.NewInt(42),
		DebitDelta:  uint256.NewInt(0),
		Nonce:       3,
	}, 2))

	var buf bytes.Buffer
	require.NoError(t, rlp.Encode(&buf, acc))

	var out Account
	require.NoError(t, rlp.Decode(&buf, &out))

	assert.Equal(t, acc.Address, out.Address)
	assert.Equal(t, acc.Nonce, out.Nonce)
	assert.Equal(t, acc.Credits, out.Credits)
	assert.Equal(t, acc.Hash, out.Hash)
}
