// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type blah interface {
	Typed
	Bark() string
}

type blah1 struct{}

func (*blah1) Bark() string { return "blah1" }

func (*blah1) GetTypeID() uint8 { return 0 }

type blah2 struct{}

func (*blah2) Bark() string { return "blah2" }

func (*blah2) GetTypeID() uint8 { return 1 }

type blahDuplicate struct{}

func (*blahDuplicate) Bark() string { return "dup" }

func (*blahDuplicate) GetTypeID() uint8 { return 1 }

var errBlah = errors.New("blah")

func TestTypeParser(t *testing.T) {
	tp := NewTypeParser[blah]()

	t.Run("empty parser", func(t *testing.T) {
		require := require.New(t)
		_, ok := tp.LookupIndex(0)
		require.False(ok)
		_, ok = tp.LookupType(&blah1{})
		require.False(ok)
	})

	t.Run("populated parser", func(t *testing.T) {
		require := require.New(t)
		require.NoError(tp.Register(&blah1{}, func(*Packer) (blah, error) { return &blah1{}, nil }))
		require.NoError(tp.Register(&blah2{}, func(*Packer) (blah, error) { return nil, errBlah }))

		index, ok := tp.LookupType(&blah2{})
		require.True(ok)
		require.Equal(uint8(1), index)

		f, ok := tp.LookupIndex(0)
		require.True(ok)
		res, err := f(nil)
		require.NoError(err)
		require.Equal("blah1", res.Bark())

		f, ok = tp.LookupIndex(1)
		require.True(ok)
		_, err = f(nil)
		require.ErrorIs(err, errBlah)
	})

	t.Run("duplicate item", func(t *testing.T) {
		require := require.New(t)
		err := tp.Register(&blah1{}, func(*Packer) (blah, error) { return &blah1{}, nil })
		require.ErrorIs(err, ErrDuplicateItem)
		err = tp.Register(&blahDuplicate{}, func(*Packer) (blah, error) { return &blahDuplicate{}, nil })
		require.ErrorIs(err, ErrDuplicateItem)
	})
}
