// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kvstore

// Bucket namespaces keys under a common prefix within a single Store, so
// several key families can share one physical store; package dag keeps its
// blocks under the "dag.data." bucket.
type Bucket string

func (b Bucket) key(k []byte) []byte {
	if len(b) == 0 {
		return k
	}
	out := make([]byte, len(b)+len(k))
	copy(out, b)
	copy(out[len(b):], k)
	return out
}

// NewGetter returns g scoped to this bucket.
func (b Bucket) NewGetter(g Getter) Getter {
	return &bucketGetter{b, g}
}

// NewPutter returns p scoped to this bucket.
func (b Bucket) NewPutter(p Putter) Putter {
	return &bucketPutter{b, p}
}

// NewStore returns s scoped to this bucket. Batches opened against it are
// also scoped.
func (b Bucket) NewStore(s Store) Store {
	return &bucketStore{b, s}
}

type bucketGetter struct {
	b Bucket
	g Getter
}

func (bg *bucketGetter) Get(k []byte) ([]byte, error) { return bg.g.Get(bg.b.key(k)) }
func (bg *bucketGetter) Has(k []byte) (bool, error)   { return bg.g.Has(bg.b.key(k)) }

type bucketPutter struct {
	b Bucket
	p Putter
}

func (bp *bucketPutter) Put(k, v []byte) error { return bp.p.Put(bp.b.key(k), v) }
func (bp *bucketPutter) Delete(k []byte) error { return bp.p.Delete(bp.b.key(k)) }

type bucketStore struct {
	b Bucket
	s Store
}

func (bs *bucketStore) Get(k []byte) ([]byte, error) { return bs.s.Get(bs.b.key(k)) }
func (bs *bucketStore) Has(k []byte) (bool, error)   { return bs.s.Has(bs.b.key(k)) }
func (bs *bucketStore) Put(k, v []byte) error        { return bs.s.Put(bs.b.key(k), v) }
func (bs *bucketStore) Delete(k []byte) error         { return bs.s.Delete(bs.b.key(k)) }
func (bs *bucketStore) IsNotFound(err error) bool    { return bs.s.IsNotFound(err) }
func (bs *bucketStore) Close() error                 { return bs.s.Close() }
func (bs *bucketStore) NewBatch() Batch {
	return &bucketBatch{bs.b, bs.s.NewBatch()}
}

type bucketBatch struct {
	b Bucket
	batch Batch
}

func (bb *bucketBatch) Put(k, v []byte) error { return bb.batch.Put(bb.b.key(k), v) }
func (bb *bucketBatch) Delete(k []byte) error { return bb.batch.Delete(bb.b.key(k)) }
func (bb *bucketBatch) Write() error          { return bb.batch.Write() }
func (bb *bucketBatch) Len() int              { return bb.batch.Len() }
