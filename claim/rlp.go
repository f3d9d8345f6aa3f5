// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package claim

import (
	"io"
	"net"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/vrrb-network/vrrb/crypto"
	"github.com/vrrb-network/vrrb/vrrb"
)

type claimBody struct {
	PublicKey   []byte
	Address     vrrb.Address
	IPAddress   []byte
	Signature   []byte
	NodeID      []byte
	Hash        vrrb.Bytes32
	Eligibility uint8
	Stake       []byte
	StakeTxns   []StakeTxn
}

// EncodeRLP implements rlp.Encoder, storing the public key and IP address
// in their wire-transmissible byte forms (RLP has no notion of ecdsa.PublicKey
// or net.IP).
func (c *Claim) EncodeRLP(w io.Writer) error {
	nodeID := append([]byte(nil), c.NodeID[:]...)

	stake := c.stake
	if stake == nil {
		stake = uint256.NewInt(0)
	}

	return rlp.Encode(w, &claimBody{
		PublicKey:   crypto.PublicKeyBytes(c.PublicKey),
		Address:     c.Address,
		IPAddress:   []byte(c.IPAddress),
		Signature:   c.Signature,
		NodeID:      nodeID,
		Hash:        c.Hash,
		Eligibility: uint8(c.Eligibility),
		Stake:       stake.Bytes(),
		StakeTxns:   c.stakeTxns,
	})
}

// DecodeRLP implements rlp.Decoder.
func (c *Claim) DecodeRLP(s *rlp.Stream) error {
	var body claimBody
	if err := s.Decode(&body); err != nil {
		return err
	}

	pub, err := crypto.ParsePublicKey(body.PublicKey)
	if err != nil {
		return err
	}

	*c = Claim{
		PublicKey:   pub,
		Address:     body.Address,
		IPAddress:   net.IP(body.IPAddress),
		Signature:   body.Signature,
		NodeID:      vrrb.NodeId(body.NodeID[:]),
		Hash:        body.Hash,
		Eligibility: Eligibility(body.Eligibility),
		stake:       new(uint256.Int).SetBytes(body.Stake),
		stakeTxns:   body.StakeTxns,
	}
	return nil
}
