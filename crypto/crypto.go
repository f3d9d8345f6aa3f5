// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package crypto wraps the ECDSA primitives used for claim and block
// signatures. It is a thin layer over go-ethereum/crypto, the same
// secp256k1-backed library the teacher uses for header/proposal signing.
package crypto

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vrrb-network/vrrb/vrrb"
)

// PrivateKey is a node's signing key.
type PrivateKey = ecdsa.PrivateKey

// PublicKey is the public counterpart of a PrivateKey.
type PublicKey = ecdsa.PublicKey

// GenerateKey creates a fresh secp256k1 key pair.
func GenerateKey() (*PrivateKey, error) {
	return crypto.GenerateKey()
}

// PublicKeyBytes returns the uncompressed 65-byte encoding of pub.
func PublicKeyBytes(pub *PublicKey) []byte {
	return crypto.FromECDSAPub(pub)
}

// ParsePublicKey parses the uncompressed 65-byte encoding produced by
// PublicKeyBytes.
func ParsePublicKey(b []byte) (*PublicKey, error) {
	return crypto.UnmarshalPubkey(b)
}

// AddressOf derives the 20-byte address from a public key.
func AddressOf(pub *PublicKey) vrrb.Address {
	return vrrb.Address(crypto.PubkeyToAddress(*pub))
}

// Sign produces a recoverable signature over digest (which must be 32
// bytes) using sk.
func Sign(digest vrrb.Bytes32, sk *PrivateKey) ([]byte, error) {
	return crypto.Sign(digest[:], sk)
}

// Recover recovers the public key that produced sig over digest.
func Recover(digest vrrb.Bytes32, sig []byte) (*PublicKey, error) {
	return crypto.SigToPub(digest[:], sig)
}

// Verify checks that sig over digest was produced by pub.
func Verify(digest vrrb.Bytes32, sig []byte, pub *PublicKey) bool {
	recovered, err := Recover(digest, sig)
	if err != nil {
		return false
	}
	return AddressOf(recovered) == AddressOf(pub)
}
