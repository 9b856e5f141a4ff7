// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/crypto"
	"github.com/ava-labs/vaultvm/crypto/ed25519"
)

var _ chain.Auth = (*ED25519)(nil)

const ED25519Size = ed25519.PublicKeyLen + ed25519.SignatureLen

// ED25519 authorizes a transaction with the signature of the account whose
// public key is the actor address.
type ED25519 struct {
	Signer    ed25519.PublicKey `json:"signer"`
	Signature ed25519.Signature `json:"signature"`
}

func (*ED25519) GetTypeID() uint8 {
	return ED25519ID
}

func (d *ED25519) Verify(_ context.Context, msg []byte) error {
	if !ed25519.Verify(msg, d.Signer, d.Signature) {
		return crypto.ErrInvalidSignature
	}
	return nil
}

func (d *ED25519) Actor() codec.Address {
	return codec.Address(d.Signer)
}

func (*ED25519) Size() int {
	return ED25519Size
}

func (d *ED25519) Marshal(p *codec.Packer) {
	p.PackFixedBytes(d.Signer[:])
	p.PackFixedBytes(d.Signature[:])
}

func UnmarshalED25519(p *codec.Packer) (chain.Auth, error) {
	var d ED25519
	signer := d.Signer[:] // avoid allocating additional memory
	p.UnpackFixedBytes(ed25519.PublicKeyLen, &signer)
	signature := d.Signature[:] // avoid allocating additional memory
	p.UnpackFixedBytes(ed25519.SignatureLen, &signature)
	return &d, p.Err()
}

var _ chain.AuthFactory = (*ED25519Factory)(nil)

type ED25519Factory struct {
	priv ed25519.PrivateKey
}

func NewED25519Factory(priv ed25519.PrivateKey) *ED25519Factory {
	return &ED25519Factory{priv}
}

func (d *ED25519Factory) Sign(msg []byte) (chain.Auth, error) {
	sig := ed25519.Sign(msg, d.priv)
	return &ED25519{Signer: d.priv.PublicKey(), Signature: sig}, nil
}

func (d *ED25519Factory) Address() codec.Address {
	return NewED25519Address(d.priv.PublicKey())
}

func NewED25519Address(pk ed25519.PublicKey) codec.Address {
	return codec.Address(pk)
}

var _ chain.AuthBatchVerifier = (*ED25519Batch)(nil)

// ED25519Batch verifies many signatures at once. Small batches fall back to
// individual verification.
type ED25519Batch struct {
	batchSize  int
	total      int
	totalTasks int

	counter      int
	totalCounter int
	batch        *ed25519.Batch
}

// NewED25519Batch returns a verifier that will receive [total] signatures
// and verifies them in [cores] batches.
func NewED25519Batch(cores int, total int) *ED25519Batch {
	batchSize := max(total/max(cores, 1), ed25519.MinBatchSize)
	return &ED25519Batch{
		batchSize:  batchSize,
		total:      total,
		totalTasks: (total + batchSize - 1) / batchSize,
	}
}

func (b *ED25519Batch) Add(msg []byte, rauth chain.Auth) func() error {
	auth, ok := rauth.(*ED25519)
	if !ok {
		return func() error { return chain.ErrAuthFailed }
	}
	if b.batch == nil {
		b.batch = ed25519.NewBatch(b.batchSize)
	}
	b.batch.Add(msg, auth.Signer, auth.Signature)
	b.counter++
	b.totalCounter++
	if b.counter == b.batchSize {
		last := b.batch
		b.counter = 0
		if b.totalCounter < b.total {
			// don't create a new batch if we are done
			b.batch = ed25519.NewBatch(b.batchSize)
		} else {
			b.batch = nil
		}
		return last.VerifyAsync()
	}
	return nil
}

func (b *ED25519Batch) Done() []func() error {
	if b.batch == nil {
		return nil
	}
	return []func() error{b.batch.VerifyAsync()}
}

// Tasks is the number of verification functions [Add] and [Done] return
// across the whole batch.
func (b *ED25519Batch) Tasks() int {
	return b.totalTasks
}
