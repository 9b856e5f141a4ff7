// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"sync"

	"github.com/ava-labs/avalanchego/utils/set"
)

// Connections is a concurrent set of websocket clients. The server keeps
// one for every live client and subscribers keep one per filter.
type Connections struct {
	lock  sync.RWMutex
	conns set.Set[*Connection]
}

func NewConnections() *Connections {
	return &Connections{}
}

func (c *Connections) Add(conn *Connection) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.conns.Add(conn)
}

func (c *Connections) Remove(conn *Connection) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.conns.Remove(conn)
}

func (c *Connections) Has(conn *Connection) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.conns.Contains(conn)
}

// Conns returns a snapshot of the set.
func (c *Connections) Conns() []*Connection {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.conns.List()
}

// Drain empties the set and returns what it held.
func (c *Connections) Drain() []*Connection {
	c.lock.Lock()
	defer c.lock.Unlock()

	conns := c.conns.List()
	c.conns = set.Set[*Connection]{}
	return conns
}

func (c *Connections) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.conns.Len()
}

// Peek returns an arbitrary connection of the set.
func (c *Connections) Peek() (*Connection, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.conns.Peek()
}
