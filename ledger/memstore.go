// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"sync"
)

type memRecord struct {
	data     []byte
	capacity int
}

// MemStore is an in-process Store. Transactions hold the store mutex for
// their whole duration and stage writes until the callback succeeds.
type MemStore struct {
	mu      sync.Mutex
	records map[Address]memRecord
}

func NewMemStore() *MemStore {
	return &MemStore{records: make(map[Address]memRecord)}
}

func (s *MemStore) Get(ctx context.Context, addr Address) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[addr]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(rec.data), nil
}

func (s *MemStore) Atomically(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{committed: s.records, staged: make(map[Address]memRecord)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for addr, rec := range tx.staged {
		s.records[addr] = rec
	}
	return nil
}

// Len reports the number of committed records.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type memTx struct {
	committed map[Address]memRecord
	staged    map[Address]memRecord
}

func (tx *memTx) lookup(addr Address) (memRecord, bool) {
	if rec, ok := tx.staged[addr]; ok {
		return rec, true
	}
	rec, ok := tx.committed[addr]
	return rec, ok
}

func (tx *memTx) Get(ctx context.Context, addr Address) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, ok := tx.lookup(addr)
	if !ok {
		return nil, ErrNotFound
	}
	return clone(rec.data), nil
}

func (tx *memTx) Create(ctx context.Context, addr Address, capacity int, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := tx.lookup(addr); ok {
		return ErrExists
	}
	if len(data) > capacity {
		return ErrRecordFull
	}
	tx.staged[addr] = memRecord{data: clone(data), capacity: capacity}
	return nil
}

func (tx *memTx) Put(ctx context.Context, addr Address, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec, ok := tx.lookup(addr)
	if !ok {
		return ErrNotFound
	}
	if len(data) > rec.capacity {
		return ErrRecordFull
	}
	tx.staged[addr] = memRecord{data: clone(data), capacity: rec.capacity}
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
