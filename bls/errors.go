// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bls

import "errors"

// Error taxonomy for the threshold-signature pipeline, per spec.md §7.
var (
	ErrMissingSecretShare = errors.New("bls: node has no secret share")
	ErrBelowThreshold     = errors.New("bls: share set smaller than threshold")
	ErrCorruptShare       = errors.New("bls: malformed or undeserializable share")
	ErrMissingGroupKey    = errors.New("bls: no group public-key set configured")
	ErrCorruptSignature   = errors.New("bls: malformed signature")
	ErrInvalidSignature   = errors.New("bls: signature does not verify")
)
