// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package event

import (
	"context"
	"errors"
	"sync"
)

var (
	_ Subscription[struct{}]        = (*SubscriptionFunc[struct{}])(nil)
	_ SubscriptionFactory[struct{}] = (*SubscriptionFuncFactory[struct{}])(nil)
)

// SubscriptionFactory returns an instance of a concrete Subscription
type SubscriptionFactory[T any] interface {
	New() (Subscription[T], error)
}

// Subscription defines how to consume events
type Subscription[T any] interface {
	// Accept returns fatal errors
	Accept(ctx context.Context, t T) error
	// Close returns fatal errors
	Close() error
}

type SubscriptionFuncFactory[T any] struct {
	AcceptF func(ctx context.Context, t T) error
}

func (s SubscriptionFuncFactory[T]) New() (Subscription[T], error) {
	return SubscriptionFunc[T](s), nil
}

type SubscriptionFunc[T any] struct {
	AcceptF func(ctx context.Context, t T) error
}

func (s SubscriptionFunc[T]) Accept(ctx context.Context, t T) error {
	return s.AcceptF(ctx, t)
}

func (SubscriptionFunc[_]) Close() error {
	return nil
}

func NotifyAll[T any](ctx context.Context, e T, subs ...Subscription[T]) error {
	var errs []error
	for _, sub := range subs {
		if err := sub.Accept(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Hub is a set of subscriptions that can change while events are being
// delivered. Subscriptions added with [Hub.Subscribe] are closed when they
// are removed.
type Hub[T any] struct {
	l      sync.RWMutex
	nextID uint64
	subs   map[uint64]Subscription[T]
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[uint64]Subscription[T])}
}

// Subscribe adds [sub] and returns a function that removes and closes it.
func (h *Hub[T]) Subscribe(sub Subscription[T]) func() error {
	h.l.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = sub
	h.l.Unlock()

	var once sync.Once
	return func() error {
		var err error
		once.Do(func() {
			h.l.Lock()
			delete(h.subs, id)
			h.l.Unlock()
			err = sub.Close()
		})
		return err
	}
}

// Accept delivers [t] to every current subscription.
func (h *Hub[T]) Accept(ctx context.Context, t T) error {
	h.l.RLock()
	subs := make([]Subscription[T], 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.l.RUnlock()

	return NotifyAll(ctx, t, subs...)
}

// Len returns the number of subscriptions.
func (h *Hub[T]) Len() int {
	h.l.RLock()
	defer h.l.RUnlock()

	return len(h.subs)
}

// Close removes and closes every subscription.
func (h *Hub[T]) Close() error {
	h.l.Lock()
	subs := h.subs
	h.subs = make(map[uint64]Subscription[T])
	h.l.Unlock()

	var errs []error
	for _, sub := range subs {
		if err := sub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
