// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger provides the record store the poll program runs against.

# Records

A record is an opaque byte string stored at an Address. Its capacity is
fixed when it is created; a later Put that would grow it past that
capacity fails with ErrRecordFull.

# Transactions

All writes go through Atomically:

	err := store.Atomically(ctx, func(tx ledger.Tx) error {
		data, err := tx.Get(ctx, addr)
		...
		return tx.Put(ctx, addr, data)
	})

If the callback returns an error nothing it wrote is kept. Transactions
are applied one at a time, so a read-check-write sequence inside one
callback cannot interleave with another.

Two implementations exist:

  - MemStore: mutex-guarded map, used by tests and embedded callers
  - SQLStore: the record table of a SQLite or PostgreSQL database

# Addresses

Deriver maps seeds to addresses deterministically:

	d := ledger.NewDeriver("poll_app")
	addr, bump := d.Derive([]byte("registry"), owner[:])

Addresses and keys encode as 64-character lowercase hex, including in JSON.
*/
package ledger
