// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emap

import (
	"container/heap"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/set"
)

type bucket struct {
	t     int64    // Timestamp
	items []ids.ID // Array of AvalancheGo ids
}

type bucketHeap []*bucket

func (h bucketHeap) Len() int           { return len(h) }
func (h bucketHeap) Less(i, j int) bool { return h[i].t < h[j].t }
func (h bucketHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *bucketHeap) Push(x any)        { *h = append(*h, x.(*bucket)) }

func (h *bucketHeap) Pop() any {
	old := *h
	n := len(old)
	b := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return b
}

// Item defines an interface accepted by EMap
type Item interface {
	ID() ids.ID    // method for returning an id of the item
	Expiry() int64 // method for returing this items timestamp
}

// A EMap implements an eviction map that stores the ids of items until
// their expiry passes. The type [T] must implement the Item interface.
type EMap[T Item] struct {
	mu sync.RWMutex

	bh    bucketHeap
	seen  set.Set[ids.ID]   // Stores a set of unique tx ids
	times map[int64]*bucket // Uses timestamp as keys to map to buckets of ids.
}

// NewEMap returns a pointer to a instance of an empty EMap struct.
func NewEMap[T Item]() *EMap[T] {
	return &EMap[T]{
		seen:  set.Set[ids.ID]{},
		times: make(map[int64]*bucket),
	}
}

// Add adds a list of items to the EMap.
func (e *EMap[T]) Add(items []T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, item := range items {
		e.add(item.ID(), item.Expiry())
	}
}

func (e *EMap[T]) add(id ids.ID, t int64) {
	if e.seen.Contains(id) {
		return
	}
	e.seen.Add(id)

	if b, ok := e.times[t]; ok {
		b.items = append(b.items, id)
		return
	}
	b := &bucket{
		t:     t,
		items: []ids.ID{id},
	}
	e.times[t] = b
	heap.Push(&e.bh, b)
}

// SetMin removes all items with an expiry lower than [t] and returns
// their ids.
func (e *EMap[T]) SetMin(t int64) []ids.ID {
	e.mu.Lock()
	defer e.mu.Unlock()

	evicted := []ids.ID{}
	for len(e.bh) > 0 && e.bh[0].t < t {
		b := heap.Pop(&e.bh).(*bucket)
		for _, id := range b.items {
			e.seen.Remove(id)
			evicted = append(evicted, id)
		}
		delete(e.times, b.t)
	}
	return evicted
}

// Any returns true if any items have been seen by EMap.
func (e *EMap[T]) Any(items []T) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, item := range items {
		if e.seen.Contains(item.ID()) {
			return true
		}
	}
	return false
}

// Len returns the number of tracked items.
func (e *EMap[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.seen.Len()
}
