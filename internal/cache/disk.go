package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// DiskCache persists file results in BadgerDB so they survive between
// check runs.
type DiskCache struct {
	db  *badger.DB
	ttl time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewDiskCache opens or creates a cache in dir. A ttl of zero keeps
// entries forever.
func NewDiskCache(dir string, ttl time.Duration) (*DiskCache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable BadgerDB logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening cache %s: %w", dir, err)
	}
	return &DiskCache{db: db, ttl: ttl}, nil
}

func (c *DiskCache) Get(key string) (*Entry, bool) {
	var entry Entry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		// Unreadable entries count as misses and are rebuilt.
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &entry, true
}

func (c *DiskCache) Set(key string, entry *Entry) {
	if entry == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_ = c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
}

func (c *DiskCache) Delete(key string) {
	_ = c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (c *DiskCache) Clear() {
	_ = c.db.DropAll()
}

func (c *DiskCache) Stats() Stats {
	entries := 0
	_ = c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			entries++
		}
		return nil
	})
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: entries,
	}
}

// Close flushes and closes the database. Value log garbage collection runs
// first so a long-lived cache does not grow without bound.
func (c *DiskCache) Close() error {
	for {
		if err := c.db.RunValueLogGC(0.5); err != nil {
			if !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) {
				_ = c.db.Close()
				return fmt.Errorf("cache gc: %w", err)
			}
			break
		}
	}
	return c.db.Close()
}

var _ Cache = (*DiskCache)(nil)
