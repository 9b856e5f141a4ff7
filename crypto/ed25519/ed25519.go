// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"crypto/ed25519"
	"os"

	"github.com/hdevalence/ed25519consensus"
	"github.com/mr-tron/base58"

	"github.com/ava-labs/vaultvm/crypto"
)

type (
	PublicKey  [ed25519.PublicKeySize]byte
	PrivateKey [ed25519.PrivateKeySize]byte
	Signature  [ed25519.SignatureSize]byte
)

// We use the ZIP-215 specification for ed25519 signature
// verification (https://zips.z.cash/zip-0215) because it provides
// an explicit validity criteria for signatures and supports batch
// verification.
const (
	PublicKeyLen  = ed25519.PublicKeySize
	PrivateKeyLen = ed25519.PrivateKeySize
	// PrivateKeySeedLen is defined because ed25519.PrivateKey
	// is formatted as privateKey = seed|publicKey.
	PrivateKeySeedLen = ed25519.SeedSize
	SignatureLen      = ed25519.SignatureSize

	MinBatchSize = 4
)

var (
	EmptyPublicKey  = [ed25519.PublicKeySize]byte{}
	EmptyPrivateKey = [ed25519.PrivateKeySize]byte{}
	EmptySignature  = [ed25519.SignatureSize]byte{}
)

// GeneratePrivateKey returns a Ed25519 PrivateKey.
func GeneratePrivateKey() (PrivateKey, error) {
	_, k, err := ed25519.GenerateKey(nil)
	if err != nil {
		return EmptyPrivateKey, err
	}
	return PrivateKey(k), nil
}

// PublicKey returns a PublicKey associated with the Ed25519 PrivateKey p.
// The PublicKey is the last 32 bytes of p.
func (p PrivateKey) PublicKey() PublicKey {
	return PublicKey(p[PrivateKeySeedLen:])
}

// String returns the base58 keypair encoding used by wallet files.
func (p PrivateKey) String() string {
	return base58.Encode(p[:])
}

// ParsePrivateKey decodes a base58 keypair and checks that its public half
// matches its seed.
func ParsePrivateKey(s string) (PrivateKey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return EmptyPrivateKey, err
	}
	return toPrivateKey(b)
}

// Save writes [p] to [filename] with owner-only permissions.
func (p PrivateKey) Save(filename string) error {
	return os.WriteFile(filename, []byte(p.String()), 0o600)
}

// LoadKey reads a key written by [PrivateKey.Save].
func LoadKey(filename string) (PrivateKey, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return EmptyPrivateKey, err
	}
	return ParsePrivateKey(string(b))
}

func toPrivateKey(b []byte) (PrivateKey, error) {
	if len(b) != PrivateKeyLen {
		return EmptyPrivateKey, crypto.ErrInvalidPrivateKey
	}
	expected := ed25519.NewKeyFromSeed(b[:PrivateKeySeedLen])
	if !expected.Equal(ed25519.PrivateKey(b)) {
		return EmptyPrivateKey, crypto.ErrInvalidPrivateKey
	}
	return PrivateKey(b), nil
}

// Sign returns a valid signature for msg using pk.
func Sign(msg []byte, pk PrivateKey) Signature {
	sig := ed25519.Sign(pk[:], msg)
	return Signature(sig)
}

// Verify returns whether s is a valid signature of msg by p.
func Verify(msg []byte, p PublicKey, s Signature) bool {
	return ed25519consensus.Verify(p[:], msg, s[:])
}

type Batch struct {
	bv ed25519consensus.BatchVerifier
}

func NewBatch(size int) *Batch {
	return &Batch{bv: ed25519consensus.NewPreallocatedBatchVerifier(size)}
}

func (b *Batch) Add(msg []byte, p PublicKey, s Signature) {
	b.bv.Add(p[:], msg, s[:])
}

func (b *Batch) Verify() bool {
	return b.bv.Verify()
}

func (b *Batch) VerifyAsync() func() error {
	return func() error {
		if !b.Verify() {
			return crypto.ErrInvalidSignature
		}
		return nil
	}
}
