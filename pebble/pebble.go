// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"errors"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	_ database.KeyValueReaderWriterDeleter = (*Database)(nil)
	_ database.Batcher                     = (*Database)(nil)
	_ database.Batch                       = (*batch)(nil)
)

type Config struct {
	CacheSize             int    `json:"cacheSize" yaml:"cacheSize"`
	BytesPerSync          int    `json:"bytesPerSync" yaml:"bytesPerSync"`
	MemTableSize          uint64 `json:"memTableSize" yaml:"memTableSize"`
	MaxOpenFiles          int    `json:"maxOpenFiles" yaml:"maxOpenFiles"`
	ConcurrentCompactions int    `json:"concurrentCompactions" yaml:"concurrentCompactions"`
	Sync                  bool   `json:"sync" yaml:"sync"`
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:             256 * units.MiB,
		BytesPerSync:          1 * units.MiB,
		MemTableSize:          32 * units.MiB,
		MaxOpenFiles:          4_096,
		ConcurrentCompactions: 1,
		Sync:                  true,
	}
}

// Database is a [database.KeyValueReaderWriterDeleter] backed by pebble.
// Batches are applied atomically.
type Database struct {
	db      *pebble.DB
	metrics *metrics

	writeOpts *pebble.WriteOptions

	closing   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New opens (or creates) a database at [file]. The returned registry
// contains the database metrics, prefixed with [namespace].
func New(file string, namespace string, cfg Config) (*Database, *prometheus.Registry, error) {
	registry, metrics, err := newMetrics(namespace)
	if err != nil {
		return nil, nil, err
	}
	d := &Database{
		metrics:   metrics,
		writeOpts: &pebble.WriteOptions{Sync: cfg.Sync},
		closing:   make(chan struct{}),
	}
	opts := &pebble.Options{
		Cache:                    pebble.NewCache(int64(cfg.CacheSize)),
		BytesPerSync:             cfg.BytesPerSync,
		MemTableSize:             cfg.MemTableSize,
		MaxOpenFiles:             cfg.MaxOpenFiles,
		MaxConcurrentCompactions: func() int { return cfg.ConcurrentCompactions },
	}
	opts.EventListener = &pebble.EventListener{
		CompactionBegin: d.onCompactionBegin,
		CompactionEnd:   d.onCompactionEnd,
		WriteStallBegin: d.onWriteStallBegin,
		WriteStallEnd:   d.onWriteStallEnd,
	}
	db, err := pebble.Open(file, opts)
	if err != nil {
		return nil, nil, err
	}
	d.db = db
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.collectMetrics()
	}()
	return d, registry, nil
}

func (db *Database) Has(key []byte) (bool, error) {
	_, err := db.Get(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, database.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Get returns a copy of the value stored at [key] or
// [database.ErrNotFound].
func (db *Database) Get(key []byte) ([]byte, error) {
	start := db.metrics.now()
	defer db.metrics.observeGet(start)

	v, closer, err := db.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	value := make([]byte, len(v))
	copy(value, v)
	return value, closer.Close()
}

func (db *Database) Put(key []byte, value []byte) error {
	return db.db.Set(key, value, db.writeOpts)
}

func (db *Database) Delete(key []byte) error {
	return db.db.Delete(key, db.writeOpts)
}

func (db *Database) NewBatch() database.Batch {
	return &batch{db: db}
}

func (db *Database) Close() error {
	var err error
	db.closeOnce.Do(func() {
		close(db.closing)
		db.wg.Wait()
		err = db.db.Close()
	})
	return err
}

// batch buffers operations in memory and applies them in a single pebble
// batch on [batch.Write].
type batch struct {
	database.BatchOps

	db *Database
}

func (b *batch) Write() error {
	start := b.db.metrics.now()
	defer b.db.metrics.observeWrite(start)

	pb := b.db.db.NewBatch()
	defer pb.Close()

	for _, op := range b.Ops {
		var err error
		if op.Delete {
			err = pb.Delete(op.Key, nil)
		} else {
			err = pb.Set(op.Key, op.Value, nil)
		}
		if err != nil {
			return err
		}
	}
	return pb.Commit(b.db.writeOpts)
}

func (b *batch) Inner() database.Batch {
	return b
}
