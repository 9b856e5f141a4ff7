// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"sort"
	"strings"
)

const (
	Read     Permissions = 1
	Allocate             = 1<<1 | Read
	Write                = 1<<2 | Read

	None Permissions = 0
	All              = Read | Allocate | Write
)

// Keys is the set of state keys a transaction may touch and the
// permissions it holds on each.
type Keys map[string]Permissions

// Permissions are the operations allowed on a key.
type Permissions byte

// Add unions [permission] into the permissions of [name] so that a later
// declaration never narrows an earlier one.
func (k Keys) Add(name string, permission Permissions) {
	k[name] |= permission
}

// Union adds every key of [other] to [k].
func (k Keys) Union(other Keys) {
	for name, permission := range other {
		k.Add(name, permission)
	}
}

// Sorted returns the keys of [k] in byte order. Locks are acquired in this
// order.
func (k Keys) Sorted() []string {
	names := make([]string, 0, len(k))
	for name := range k {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has returns true if [p] has all the permissions that are contained in require
func (p Permissions) Has(require Permissions) bool {
	return require&^p == 0
}

func (p Permissions) String() string {
	switch p {
	case None:
		return "none"
	case All:
		return "all"
	}
	var parts []string
	if p.Has(Read) {
		parts = append(parts, "read")
	}
	if p.Has(Allocate) {
		parts = append(parts, "allocate")
	}
	if p.Has(Write) {
		parts = append(parts, "write")
	}
	return strings.Join(parts, "|")
}
