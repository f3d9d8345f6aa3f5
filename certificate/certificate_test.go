// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package certificate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrrb-network/vrrb/bls"
	"github.com/vrrb-network/vrrb/vrrb"
)

// newQuorum builds n BLS secret shares plus a GroupPublicKeySet binding
// each share's public counterpart to its deterministic share index, and a
// Signer with no secret share of its own (a pure collector/combiner, the
// role package certificate plays).
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

func TestAddShareRejectsWrongLength(t *testing.T) {
	signer, _, _ := newQuorum(t, 3)
	p, err := New(signer)
	require.NoError(t, err)

	ok, err := p.AddShare(vrrb.Bytes32{1}, vrrb.Bytes32{2}, 0, []byte("too-short"), 2)
	assert.False(t, ok)
	assert.Equal(t, ErrCorruptSignatureShare, err)
}

func TestAddShareDropsInvalidShare(t *testing.T) {
	signer, _, indices := newQuorum(t, 3)
	p, err := New(signer)
	require.NoError(t, err)

	garbage := make([]byte, vrrb.SignatureShareSize)
	ok, err := p.AddShare(vrrb.Bytes32{1}, vrrb.Bytes32{2}, indices[0], garbage, 2)
	assert.False(t, ok)
	assert.NoError(t, err, "an invalid share is dropped, not an error to the caller")
}

func TestAddShareCrossesThresholdThenCombine(t *testing.T) {
	signer, shares, indices := newQuorum(t, 3)
	p, err := New(signer)
	require.NoError(t, err)

	blockHash := vrrb.Bytes32{9}
	payloadHash := vrrb.Bytes32{7}
	threshold := 2

	var crossed bool
	for i := 0; i < 2; i++ {
		partial, err := shares[i].PartialSign(payloadHash)
		require.NoError(t, err)
		ok, err := p.AddShare(blockHash, payloadHash, indices[i], partial, threshold)
		require.NoError(t, err)
		if ok {
			crossed = true
		}
	}
	assert.True(t, crossed, "round should cross threshold on the second share")
	assert.Equal(t, Open, p.Status(blockHash))

	rootHash := vrrb.Bytes32{1, 1}
	nextRootHash := vrrb.Bytes32{2, 2}
	cert, err := p.Combine(blockHash, rootHash, nextRootHash, nil)
	require.NoError(t, err)
	assert.Len(t, cert.Signature, vrrb.SignatureShareSize)
	assert.ElementsMatch(t, indices[:2], cert.SignerIndex)
	assert.Equal(t, rootHash, cert.RootHash)
	assert.Equal(t, nextRootHash, cert.NextRootHash)
	assert.Equal(t, Certified, p.Status(blockHash))

	partial, err := shares[2].PartialSign(payloadHash)
	require.NoError(t, err)
	_, err = p.AddShare(blockHash, payloadHash, indices[2], partial, threshold)
	assert.Equal(t, ErrAlreadyCertified, err)
}

func TestCombineBelowThresholdFails(t *testing.T) {
	signer, shares, indices := newQuorum(t, 3)
	p, err := New(signer)
	require.NoError(t, err)

	blockHash := vrrb.Bytes32{3}
	payloadHash := vrrb.Bytes32{4}
	partial, err := shares[0].PartialSign(payloadHash)
	require.NoError(t, err)
	_, err = p.AddShare(blockHash, payloadHash, indices[0], partial, 2)
	require.NoError(t, err)

	_, err = p.Combine(blockHash, vrrb.Bytes32{}, vrrb.Bytes32{}, nil)
	assert.Error(t, err)
}

func TestRoundExpires(t *testing.T) {
	signer, shares, indices := newQuorum(t, 2)
	p, err := New(signer)
	require.NoError(t, err)
	p.ttl = 10 * time.Millisecond

	blockHash := vrrb.Bytes32{5}
	payloadHash := vrrb.Bytes32{6}
	partial, err := shares[0].PartialSign(payloadHash)
	require.NoError(t, err)
	_, err = p.AddShare(blockHash, payloadHash, indices[0], partial, 2)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	partial2, err := shares[1].PartialSign(payloadHash)
	require.NoError(t, err)
	_, err = p.AddShare(blockHash, payloadHash, indices[1], partial2, 2)
	assert.Equal(t, ErrExpired, err)

	assert.Equal(t, Expired, p.Status(blockHash))
}

func TestStatusUnknownRoundIsExpired(t *testing.T) {
	signer, _, _ := newQuorum(t, 1)
	p, err := New(signer)
	require.NoError(t, err)
	assert.Equal(t, Expired, p.Status(vrrb.Bytes32{42}))
}
