// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrExists      = errors.New("record already exists")
	ErrRecordFull  = errors.New("record capacity exceeded")
	ErrInvalidHex  = errors.New("invalid hex encoding")
	ErrInvalidSize = errors.New("invalid length")
)

const KeySize = 32

// Address locates a record in the store.
type Address [KeySize]byte

// Key is an identity's public key.
type Key [KeySize]byte

func (a Address) String() string { return hex.EncodeToString(a[:]) }

func (a Address) IsZero() bool { return a == Address{} }

func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAddress decodes the 64-character hex form produced by String.
func ParseAddress(s string) (Address, error) {
	var a Address
	if err := decodeFixed(a[:], s); err != nil {
		return Address{}, fmt.Errorf("parse address: %w", err)
	}
	return a, nil
}

func (k Key) String() string { return hex.EncodeToString(k[:]) }

func (k Key) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func ParseKey(s string) (Key, error) {
	var k Key
	if err := decodeFixed(k[:], s); err != nil {
		return Key{}, fmt.Errorf("parse key: %w", err)
	}
	return k, nil
}

func decodeFixed(dst []byte, s string) error {
	if len(s) != hex.EncodedLen(len(dst)) {
		return ErrInvalidSize
	}
	if _, err := hex.Decode(dst, []byte(s)); err != nil {
		return ErrInvalidHex
	}
	return nil
}

// Tx is the view of the store handed to an Atomically callback.
// Writes become visible to other transactions only when the callback
// returns nil.
type Tx interface {
	Get(ctx context.Context, addr Address) ([]byte, error)
	// Create allocates a record whose size can never exceed capacity.
	Create(ctx context.Context, addr Address, capacity int, data []byte) error
	Put(ctx context.Context, addr Address, data []byte) error
}

// Store is a keyed record store with all-or-nothing transactions.
// Transactions are applied one at a time.
type Store interface {
	Get(ctx context.Context, addr Address) ([]byte, error)
	Atomically(ctx context.Context, fn func(tx Tx) error) error
}
