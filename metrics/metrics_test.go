// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasiabeben10/poll-app/poll"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New("poll_app", reg)
	require.NoError(t, err)

	m.Registered()
	m.PollCreated()
	m.PollCreated()
	require.NoError(t, m.VoteCast(context.Background(), poll.VoteEvent{}))
	m.Rejected("vote", poll.ErrAlreadyVoted)
	m.Rejected("vote", poll.ErrAlreadyVoted)
	m.Rejected("vote", errors.New("disk on fire"))
	m.ObserveRequest("POST", 201, 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.pollsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.votesCast))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rejections.WithLabelValues("vote", "AlreadyVoted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("vote", "Internal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "201")))
}

func TestDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New("poll_app", reg)
	require.NoError(t, err)

	_, err = New("poll_app", reg)
	assert.Error(t, err)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Registered()
		m.PollCreated()
		_ = m.VoteCast(context.Background(), poll.VoteEvent{})
		m.Rejected("vote", poll.ErrPollClosed)
		m.ObserveRequest("GET", 200, time.Second)
	})
}
