// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kasiabeben10/poll-app/poll"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registrations prometheus.Counter
	pollsCreated  prometheus.Counter
	votesCast     prometheus.Counter
	rejections    *prometheus.CounterVec
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates the collectors under namespace and registers them.
func New(namespace string, registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Number of identities registered",
		}),
		pollsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_created_total",
			Help:      "Number of polls created",
		}),
		votesCast: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Number of votes committed",
		}),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejections_total",
				Help:      "Number of operations rejected by the poll program, by error code",
			},
			[]string{"operation", "code"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Number of HTTP requests served",
			},
			[]string{"method", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Time spent serving HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}

	err := errors.Join(
		registerer.Register(m.registrations),
		registerer.Register(m.pollsCreated),
		registerer.Register(m.votesCast),
		registerer.Register(m.rejections),
		registerer.Register(m.requests),
		registerer.Register(m.latency),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) Registered() {
	if m != nil {
		m.registrations.Inc()
	}
}

func (m *Metrics) PollCreated() {
	if m != nil {
		m.pollsCreated.Inc()
	}
}

// VoteCast counts a committed vote. It lets Metrics sit in the engine's
// event sink chain.
func (m *Metrics) VoteCast(_ context.Context, _ poll.VoteEvent) error {
	if m != nil {
		m.votesCast.Inc()
	}
	return nil
}

// Rejected counts an operation the poll program refused. Errors outside
// the program's taxonomy are counted as "Internal".
func (m *Metrics) Rejected(operation string, err error) {
	if m == nil {
		return
	}
	code := poll.Code(err)
	if code == "" {
		code = "Internal"
	}
	m.rejections.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method).Observe(elapsed.Seconds())
}
