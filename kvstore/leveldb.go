// Copyright (c) 2026 The Vrrb developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kvstore

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// LevelDB is a disk-backed Store over goleveldb, the durable store the
// teacher's chain/repository.go and state/ packages assume underneath
// (surfaced there through muxdb; this repo talks to goleveldb directly,
// since muxdb's own trie-multiplexing layer was not retrieved).
type LevelDB struct {
	db *leveldb.DB
}

// Options configures cache and open-file budgets, mirroring the teacher's
// lvldb.Options.
type Options struct {
	CacheSize    int // MiB
	OpenFilesCacheCapacity int
}

// New opens (or creates) a LevelDB store at path.
func New(path string, opts Options) (*LevelDB, error) {
	o := &opt.Options{}
	if opts.CacheSize > 0 {
		o.BlockCacheCapacity = opts.CacheSize * opt.MiB
	}
	if opts.OpenFilesCacheCapacity > 0 {
		o.OpenFilesCacheCapacity = opts.OpenFilesCacheCapacity
	}
	db, err := leveldb.OpenFile(path, o)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

// NewMem opens an in-memory goleveldb instance, used by tests that need
// goleveldb's exact semantics without touching disk.
func NewMem() (*LevelDB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (l *LevelDB) Has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

func (l *LevelDB) Put(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

func (l *LevelDB) Delete(key []byte) error {
	return l.db.Delete(key, nil)
}

func (l *LevelDB) IsNotFound(err error) bool {
	return err == ErrNotFound || err == leveldb.ErrNotFound
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

func (l *LevelDB) NewBatch() Batch {
	return &levelBatch{db: l.db, batch: new(leveldb.Batch)}
}

type levelBatch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *levelBatch) Put(key, value []byte) error {
	b.batch.Put(key, value)
	return nil
}

func (b *levelBatch) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *levelBatch) Len() int { return b.batch.Len() }

func (b *levelBatch) Write() error {
	return b.db.Write(b.batch, nil)
}
