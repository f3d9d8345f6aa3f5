// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kvstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStores(t *testing.T) {
	mem, err := NewMem()
	assert.NoError(t, err)
	defer mem.Close()

	stores := []Store{NewMemory(), mem}

	for _, s := range stores {
		key, value := []byte("k1"), []byte("v1")

		assert.NoError(t, s.Put(key, value))

		got, err := s.Get(key)
		assert.NoError(t, err)
		assert.Equal(t, value, got)

		has, err := s.Has(key)
		assert.NoError(t, err)
		assert.True(t, has)

		assert.NoError(t, s.Delete(key))

		_, err = s.Get(key)
		assert.True(t, s.IsNotFound(err))
	}
}

func TestBatch(t *testing.T) {
	s := NewMemory()
	batch := s.NewBatch()
	assert.NoError(t, batch.Put([]byte("a"), []byte("1")))
	assert.NoError(t, batch.Put([]byte("b"), []byte("2")))
	assert.Equal(t, 2, batch.Len())
	assert.NoError(t, batch.Write())

	got, err := s.Get([]byte("a"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("1"), got)
}

func TestBucket(t *testing.T) {
	s := NewMemory()
	a := Bucket("a.").NewStore(s)
	b := Bucket("b.").NewStore(s)

	assert.NoError(t, a.Put([]byte("k"), []byte("from-a")))
	assert.NoError(t, b.Put([]byte("k"), []byte("from-b")))

	got, err := a.Get([]byte("k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("from-a"), got)

	got, err = b.Get([]byte("k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("from-b"), got)
}
