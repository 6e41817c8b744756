// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"context"
	"errors"
	"fmt"

	"github.com/kasiabeben10/poll-app/ledger"
)

var (
	registrySeed = []byte("registry")
	pollSeed     = []byte("poll")
)

// RegistryAddress is where owner's registry record lives.
func (e *Engine) RegistryAddress(owner ledger.Key) (ledger.Address, uint8) {
	return e.deriver.Derive(registrySeed, owner[:])
}

// PollAddressAt is the address of the poll with the given zero-based
// index under a registry. It does not check that the poll exists.
func (e *Engine) PollAddressAt(registry ledger.Address, index uint32) (ledger.Address, uint8) {
	return e.deriver.Derive(pollSeed, registry[:], ledger.U32Seed(index))
}

// Register creates owner's registry record with a zero poll count.
// If the record already exists it is returned with ErrAlreadyRegistered.
func (e *Engine) Register(ctx context.Context, owner ledger.Key) (*Registry, ledger.Address, error) {
	addr, bump := e.RegistryAddress(owner)

	var reg *Registry
	err := e.store.Atomically(ctx, func(tx ledger.Tx) error {
		existing, err := loadRegistry(ctx, tx, addr)
		if err == nil {
			reg = existing
			return ErrAlreadyRegistered
		}
		if !errors.Is(err, ErrUserNotInitialized) {
			return err
		}

		fresh := &Registry{Owner: owner, Bump: bump}
		data, err := fresh.MarshalBinary()
		if err != nil {
			return err
		}
		if err := tx.Create(ctx, addr, RegistrySpace, data); err != nil {
			if errors.Is(err, ledger.ErrExists) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("failed to create registry %s: %w", addr, err)
		}
		reg = fresh
		return nil
	})
	if errors.Is(err, ErrAlreadyRegistered) {
		if reg == nil {
			// Lost a creation race with another writer of the same store
			existing, loadErr := e.GetRegistry(ctx, owner)
			if loadErr != nil {
				return nil, addr, loadErr
			}
			reg = existing
		}
		return reg, addr, err
	}
	if err != nil {
		return nil, addr, err
	}
	return reg, addr, nil
}

// GetRegistry loads owner's registry record.
func (e *Engine) GetRegistry(ctx context.Context, owner ledger.Key) (*Registry, error) {
	addr, _ := e.RegistryAddress(owner)
	reg, err := loadRegistry(ctx, e.store, addr)
	if err != nil {
		return nil, err
	}
	if reg.Owner != owner {
		return nil, ErrUserNotInitialized
	}
	return reg, nil
}

func (e *Engine) PollCount(ctx context.Context, owner ledger.Key) (uint32, error) {
	reg, err := e.GetRegistry(ctx, owner)
	if err != nil {
		return 0, err
	}
	return reg.PollCount, nil
}

// PollAddress locates owner's poll number index, which must be below the
// owner's poll count.
func (e *Engine) PollAddress(ctx context.Context, owner ledger.Key, index uint32) (ledger.Address, error) {
	count, err := e.PollCount(ctx, owner)
	if err != nil {
		return ledger.Address{}, err
	}
	if index >= count {
		return ledger.Address{}, fmt.Errorf("%w: owner has %d polls, index %d", ErrPollNotFound, count, index)
	}
	regAddr, _ := e.RegistryAddress(owner)
	addr, _ := e.PollAddressAt(regAddr, index)
	return addr, nil
}

// ListPolls returns the addresses of all of owner's polls in creation order.
func (e *Engine) ListPolls(ctx context.Context, owner ledger.Key) ([]ledger.Address, error) {
	count, err := e.PollCount(ctx, owner)
	if err != nil {
		return nil, err
	}

	regAddr, _ := e.RegistryAddress(owner)
	addrs := make([]ledger.Address, 0, count)
	for i := uint32(0); i < count; i++ {
		addr, _ := e.PollAddressAt(regAddr, i)
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

func loadRegistry(ctx context.Context, g getter, addr ledger.Address) (*Registry, error) {
	data, err := g.Get(ctx, addr)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, ErrUserNotInitialized
	}
	if err != nil {
		return nil, err
	}

	var reg Registry
	if err := reg.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("failed to decode registry %s: %w", addr, err)
	}
	return &reg, nil
}

func putRegistry(ctx context.Context, tx ledger.Tx, addr ledger.Address, reg *Registry) error {
	data, err := reg.MarshalBinary()
	if err != nil {
		return err
	}
	if err := tx.Put(ctx, addr, data); err != nil {
		return fmt.Errorf("failed to update registry %s: %w", addr, err)
	}
	return nil
}
