// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kvstore is the opaque byte-addressed persistent store spec.md §4.8
// assumes underneath the state/claim/transaction tries and the DAG block
// store. Modeled on the teacher's kv.Getter/Putter split (see the teacher's
// kv/bucket_test.go, whose non-test sources were not retrieved), backed by
// github.com/syndtr/goleveldb for disk persistence.
package kvstore

import "errors"

// ErrNotFound is returned by Get when the key is absent (Delete of an
// absent key succeeds).
var ErrNotFound = errors.New("kvstore: not found")

// Getter reads values by key.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
}

// Putter writes and removes values by key.
type Putter interface {
	Put(key, value []byte) error
	Delete(key []byte) error
}

// Store is a Getter and Putter that can classify not-found errors and open
// write batches.
type Store interface {
	Getter
	Putter
	IsNotFound(err error) bool
	NewBatch() Batch
	Close() error
}

// Batch buffers a set of mutations for atomic application.
type Batch interface {
	Putter
	Write() error
	Len() int
}
