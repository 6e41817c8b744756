// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kasiabeben10/poll-app/db"
)

// SQLStore keeps records in the record table. Transactions are serialized
// in-process and each one runs inside a single SQL transaction.
type SQLStore struct {
	db      *sql.DB
	dialect db.Dialect
	mu      sync.Mutex
}

func NewSQLStore(conn *sql.DB, dialect db.Dialect) *SQLStore {
	return &SQLStore{db: conn, dialect: dialect}
}

func (s *SQLStore) Get(ctx context.Context, addr Address) ([]byte, error) {
	return getRecord(ctx, s.db, s.dialect, addr)
}

func (s *SQLStore) Atomically(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var opts *sql.TxOptions
	if s.dialect == db.Postgres {
		// Other processes may share the database
		opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}

	sqlTx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&sqlStoreTx{tx: sqlTx, dialect: s.dialect}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getRecord(ctx context.Context, q queryer, dialect db.Dialect, addr Address) ([]byte, error) {
	var data []byte
	err := q.QueryRowContext(ctx, dialect.Rebind(`
		SELECT data FROM record WHERE address = $1
	`), addr.String()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record %s: %w", addr, err)
	}
	return data, nil
}

type sqlStoreTx struct {
	tx      *sql.Tx
	dialect db.Dialect
}

func (t *sqlStoreTx) Get(ctx context.Context, addr Address) ([]byte, error) {
	return getRecord(ctx, t.tx, t.dialect, addr)
}

func (t *sqlStoreTx) capacity(ctx context.Context, addr Address) (int, error) {
	var capacity int
	err := t.tx.QueryRowContext(ctx, t.dialect.Rebind(`
		SELECT capacity FROM record WHERE address = $1
	`), addr.String()).Scan(&capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query record %s: %w", addr, err)
	}
	return capacity, nil
}

func (t *sqlStoreTx) Create(ctx context.Context, addr Address, capacity int, data []byte) error {
	_, err := t.capacity(ctx, addr)
	if err == nil {
		return ErrExists
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	if len(data) > capacity {
		return ErrRecordFull
	}

	_, err = t.tx.ExecContext(ctx, t.dialect.Rebind(`
		INSERT INTO record (address, capacity, data, updated_at)
		VALUES ($1, $2, $3, $4)
	`), addr.String(), capacity, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert record %s: %w", addr, err)
	}
	return nil
}

func (t *sqlStoreTx) Put(ctx context.Context, addr Address, data []byte) error {
	capacity, err := t.capacity(ctx, addr)
	if err != nil {
		return err
	}
	if len(data) > capacity {
		return ErrRecordFull
	}

	_, err = t.tx.ExecContext(ctx, t.dialect.Rebind(`
		UPDATE record SET data = $1, updated_at = $2 WHERE address = $3
	`), data, time.Now().Unix(), addr.String())
	if err != nil {
		return fmt.Errorf("failed to update record %s: %w", addr, err)
	}
	return nil
}
