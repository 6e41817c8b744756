// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kasiabeben10/poll-app/auth"
	"github.com/kasiabeben10/poll-app/ledger"
	"github.com/kasiabeben10/poll-app/models"
	"github.com/kasiabeben10/poll-app/poll"
)

const (
	DefaultServer   = "http://localhost:3318"
	DefaultRetries  = 3
	DefaultBackoff  = 250 * time.Millisecond
	maxResponseBody = 1 << 20
)

// ErrNoKeypair is returned by calls that must be signed when the client
// was built without a keypair.
var ErrNoKeypair = errors.New("client has no keypair")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%d)", e.Code, e.Message, e.Status)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// Is matches the poll program error the server reported, so callers can
// write errors.Is(err, poll.ErrAlreadyVoted).
func (e *APIError) Is(target error) bool {
	return e.Code != "" && poll.Code(target) == e.Code
}

// Temporary reports whether repeating the request may succeed.
func (e *APIError) Temporary() bool {
	return e.Status >= 500
}

type Client struct {
	baseURL string
	http    *http.Client
	keypair *auth.Keypair
	retries int
	backoff time.Duration
	now     func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithKeypair signs mutating requests as kp.
func WithKeypair(kp auth.Keypair) Option {
	return func(c *Client) { c.keypair = &kp }
}

// WithRetries sets how often a failed request is repeated and the delay
// before the first repeat. The delay doubles on every further attempt.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retries = n
		c.backoff = backoff
	}
}

// WithClock sets the time source for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		retries: DefaultRetries,
		backoff: DefaultBackoff,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Identity is the public key requests are signed with.
func (c *Client) Identity() (ledger.Key, error) {
	if c.keypair == nil {
		return ledger.Key{}, ErrNoKeypair
	}
	return c.keypair.Public, nil
}

// Register creates the caller's registry. Registering twice is not an
// error; the response reports Created false.
func (c *Client) Register(ctx context.Context) (models.RegisterResponse, error) {
	var resp models.RegisterResponse
	err := c.do(ctx, http.MethodPost, "/registry", nil, true, &resp)
	return resp, err
}

func (c *Client) Registry(ctx context.Context, owner ledger.Key) (models.RegistryResponse, error) {
	var resp models.RegistryResponse
	err := c.do(ctx, http.MethodGet, "/registry/"+owner.String(), nil, false, &resp)
	return resp, err
}

func (c *Client) ListPolls(ctx context.Context, owner ledger.Key) (models.PollListResponse, error) {
	var resp models.PollListResponse
	err := c.do(ctx, http.MethodGet, "/registry/"+owner.String()+"/polls", nil, false, &resp)
	return resp, err
}

func (c *Client) PollByIndex(ctx context.Context, owner ledger.Key, index uint32) (models.Poll, error) {
	var resp models.Poll
	path := "/registry/" + owner.String() + "/polls/" + strconv.FormatUint(uint64(index), 10)
	err := c.do(ctx, http.MethodGet, path, nil, false, &resp)
	return resp, err
}

// CreatePoll creates a poll owned by the caller. duration is in whole
// seconds; 0 never closes.
func (c *Client) CreatePoll(ctx context.Context, question string, options []string, duration int64) (models.CreatePollResponse, error) {
	var resp models.CreatePollResponse
	body := models.CreatePollRequest{Question: question, Options: options, Duration: duration}
	err := c.do(ctx, http.MethodPost, "/polls", body, true, &resp)
	return resp, err
}

func (c *Client) Poll(ctx context.Context, addr ledger.Address) (models.Poll, error) {
	var resp models.Poll
	err := c.do(ctx, http.MethodGet, "/polls/"+addr.String(), nil, false, &resp)
	return resp, err
}

// Vote casts the caller's vote. A retried vote whose first attempt had
// committed fails with poll.ErrAlreadyVoted.
func (c *Client) Vote(ctx context.Context, addr ledger.Address, option int) (models.CastVoteResponse, error) {
	var resp models.CastVoteResponse
	body := models.CastVoteRequest{OptionIndex: &option}
	err := c.do(ctx, http.MethodPost, "/polls/"+addr.String()+"/votes", body, true, &resp)
	return resp, err
}

func (c *Client) Results(ctx context.Context, addr ledger.Address) (poll.Results, error) {
	var resp poll.Results
	err := c.do(ctx, http.MethodGet, "/polls/"+addr.String()+"/results", nil, false, &resp)
	return resp, err
}

func (c *Client) Winner(ctx context.Context, addr ledger.Address) (poll.Winner, error) {
	var resp poll.Winner
	err := c.do(ctx, http.MethodGet, "/polls/"+addr.String()+"/winner", nil, false, &resp)
	return resp, err
}

// Events lists the poll's vote events, oldest first, starting after the
// first offset. limit <= 0 uses the server's default.
func (c *Client) Events(ctx context.Context, addr ledger.Address, offset, limit int) (models.EventsResponse, error) {
	var resp models.EventsResponse
	path := "/polls/" + addr.String() + "/events"
	query := url.Values{}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	err := c.do(ctx, http.MethodGet, path, nil, false, &resp)
	return resp, err
}

// do sends the request, repeating it on network errors and 5xx responses.
// Signed requests are re-signed on every attempt.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, signed bool, out interface{}) error {
	if signed && c.keypair == nil {
		return ErrNoKeypair
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	delay := c.backoff
	for attempt := 0; ; attempt++ {
		err := c.attempt(ctx, method, path, payload, signed, out)
		if err == nil || attempt >= c.retries || !retryable(ctx, err) {
			return err
		}

		slog.Debug("retrying request", "method", method, "path", path, "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, signed bool, out interface{}) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if signed {
		if err := auth.SignRequest(req, *c.keypair, c.now()); err != nil {
			return err
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var body models.ErrorResponse
		if json.Unmarshal(data, &body) == nil {
			apiErr.Code = body.Code
			if body.Message != "" {
				apiErr.Message = body.Message
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
