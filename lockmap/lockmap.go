// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package lockmap provides per-key reader/writer locks that are created on
// demand and released once no goroutine holds or waits on them.
package lockmap

import (
	"sync"

	"github.com/ava-labs/vaultvm/state"
)

type holderLock struct {
	holders int
	mu      sync.RWMutex
}

type Lockmap struct {
	l sync.Mutex
	m map[string]*holderLock
}

func New(initSize int) *Lockmap {
	return &Lockmap{
		m: make(map[string]*holderLock, initSize),
	}
}

func (l *Lockmap) Lock(key string) {
	l.lock(key, true)
}

func (l *Lockmap) Unlock(key string) {
	l.unlock(key, true)
}

func (l *Lockmap) RLock(key string) {
	l.lock(key, false)
}

func (l *Lockmap) RUnlock(key string) {
	l.unlock(key, false)
}

func (l *Lockmap) lock(key string, write bool) {
	l.l.Lock()
	hl, ok := l.m[key]
	if !ok {
		hl = &holderLock{}
		l.m[key] = hl
	}
	hl.holders++
	l.l.Unlock()

	if write {
		hl.mu.Lock()
	} else {
		hl.mu.RLock()
	}
}

func (l *Lockmap) unlock(key string, write bool) {
	l.l.Lock()
	defer l.l.Unlock()

	hl, ok := l.m[key]
	if !ok {
		panic("lockmap: unlock of unlocked key")
	}
	hl.holders--
	if hl.holders == 0 {
		delete(l.m, key)
	}
	if write {
		hl.mu.Unlock()
	} else {
		hl.mu.RUnlock()
	}
}

// LockKeys acquires every key of [k] in sorted order. Keys that may be
// modified are locked exclusively and read-only keys are shared. The
// returned function releases them.
func (l *Lockmap) LockKeys(k state.Keys) func() {
	sorted := k.Sorted()
	for _, key := range sorted {
		if isWrite(k[key]) {
			l.Lock(key)
		} else {
			l.RLock(key)
		}
	}
	return func() {
		for i := len(sorted) - 1; i >= 0; i-- {
			key := sorted[i]
			if isWrite(k[key]) {
				l.Unlock(key)
			} else {
				l.RUnlock(key)
			}
		}
	}
}

func isWrite(p state.Permissions) bool {
	return p.Has(state.Write) || p.Has(state.Allocate)
}

// Locks returns the number of keys currently held or waited on.
func (l *Lockmap) Locks() int {
	l.l.Lock()
	defer l.l.Unlock()

	return len(l.m)
}
