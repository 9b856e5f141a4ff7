// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "fmt"

// Typed is implemented by every object that is serialized behind a one
// byte type prefix.
type Typed interface {
	GetTypeID() uint8
}

type decoder[T Typed] func(*Packer) (T, error)

// TypeParser maps type ids to the functions that unmarshal them.
type TypeParser[T Typed] struct {
	typeToIndex    map[string]uint8
	indexToDecoder map[uint8]decoder[T]
}

func NewTypeParser[T Typed]() *TypeParser[T] {
	return &TypeParser[T]{
		typeToIndex:    map[string]uint8{},
		indexToDecoder: map[uint8]decoder[T]{},
	}
}

// Register adds [o] to the parser under the id returned by its
// GetTypeID. Registering the same type or id twice returns
// [ErrDuplicateItem].
func (p *TypeParser[T]) Register(o T, f func(*Packer) (T, error)) error {
	k := fmt.Sprintf("%T", o)
	if _, ok := p.typeToIndex[k]; ok {
		return ErrDuplicateItem
	}
	index := o.GetTypeID()
	if _, ok := p.indexToDecoder[index]; ok {
		return ErrDuplicateItem
	}
	p.typeToIndex[k] = index
	p.indexToDecoder[index] = f
	return nil
}

func (p *TypeParser[T]) LookupType(o T) (uint8, bool) {
	index, ok := p.typeToIndex[fmt.Sprintf("%T", o)]
	return index, ok
}

func (p *TypeParser[T]) LookupIndex(index uint8) (func(*Packer) (T, error), bool) {
	f, ok := p.indexToDecoder[index]
	return f, ok
}
