// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package feed

import (
	"context"
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasiabeben10/poll-app/db"
	"github.com/kasiabeben10/poll-app/ledger"
	"github.com/kasiabeben10/poll-app/poll"
)

func setup(t *testing.T) *Store {
	t.Helper()
	conn, err := db.Open(db.SQLite, filepath.Join(t.TempDir(), "feed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.CreateSchema(conn, db.SQLite))
	return NewStore(conn, db.SQLite)
}

func key(name string) ledger.Key {
	return ledger.Key(sha256.Sum256([]byte(name)))
}

func TestVoteCastAndList(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	pollA := ledger.Address(key("poll-a"))
	pollB := ledger.Address(key("poll-b"))

	events := []poll.VoteEvent{
		{ID: "e2", Identity: key("v2"), Poll: pollA, OptionIndex: 1, Timestamp: 200},
		{ID: "e1", Identity: key("v1"), Poll: pollA, OptionIndex: 0, Timestamp: 100},
		{ID: "e3", Identity: key("v3"), Poll: pollB, OptionIndex: 4, Timestamp: 150},
	}
	for _, ev := range events {
		require.NoError(t, s.VoteCast(ctx, ev))
	}
	// Redelivery is ignored
	require.NoError(t, s.VoteCast(ctx, events[0]))

	got, err := s.List(ctx, pollA, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, events[1], got[0])
	assert.Equal(t, events[0], got[1])

	got, err = s.List(ctx, pollA, 0, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)

	got, err = s.List(ctx, pollA, 1, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "e2", got[0].ID)

	got, err = s.List(ctx, pollA, 2, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.List(ctx, pollA, -5, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.List(ctx, ledger.Address(key("none")), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)

	counts, err := s.CountByOption(ctx, pollA)
	require.NoError(t, err)
	assert.Equal(t, map[uint8]int{0: 1, 1: 1}, counts)
}

func TestEngineFeed(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	clock := poll.NewManualClock(time.Unix(1_700_000_000, 0))
	engine := poll.NewEngine(ledger.NewMemStore(), poll.Config{ProgramID: "feed_test", Clock: clock, Events: s})

	owner := key("owner")
	_, _, err := engine.Register(ctx, owner)
	require.NoError(t, err)
	addr, _, err := engine.CreatePoll(ctx, owner, "Q?", []string{"A", "B"}, 0)
	require.NoError(t, err)

	for i, v := range []string{"v1", "v2", "v3"} {
		clock.Advance(time.Second)
		_, err := engine.CastVote(ctx, addr, key(v), uint8(i%2))
		require.NoError(t, err)
	}
	_, err = engine.CastVote(ctx, addr, key("v1"), 1)
	require.ErrorIs(t, err, poll.ErrAlreadyVoted)

	got, err := s.List(ctx, addr, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, key("v1"), got[0].Identity)
	assert.Equal(t, key("v3"), got[2].Identity)

	counts, err := s.CountByOption(ctx, addr)
	require.NoError(t, err)
	res, err := engine.Results(ctx, addr)
	require.NoError(t, err)
	for i, o := range res.Options {
		assert.Equal(t, int(o.Votes), counts[uint8(i)])
	}
}

func TestListPagesPastMaxLimit(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	addr := ledger.Address(key("busy"))

	total := MaxLimit + 20
	for i := 0; i < total; i++ {
		require.NoError(t, s.VoteCast(ctx, poll.VoteEvent{
			ID:        fmt.Sprintf("ev-%04d", i),
			Identity:  key(fmt.Sprintf("voter-%d", i)),
			Poll:      addr,
			Timestamp: int64(i),
		}))
	}

	first, err := s.List(ctx, addr, 0, MaxLimit)
	require.NoError(t, err)
	require.Len(t, first, MaxLimit)

	rest, err := s.List(ctx, addr, MaxLimit, MaxLimit)
	require.NoError(t, err)
	require.Len(t, rest, 20)
	assert.Equal(t, fmt.Sprintf("ev-%04d", MaxLimit), rest[0].ID)
	assert.Equal(t, fmt.Sprintf("ev-%04d", total-1), rest[19].ID)
}
