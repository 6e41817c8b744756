// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/kasiabeben10/poll-app/auth"
	"github.com/kasiabeben10/poll-app/cliparse"
	"github.com/kasiabeben10/poll-app/db"
	"github.com/kasiabeben10/poll-app/feed"
	"github.com/kasiabeben10/poll-app/ledger"
	"github.com/kasiabeben10/poll-app/poll"
)

// Epoch is the clock start of every test environment
var Epoch = time.Unix(1_700_000_000, 0)

// SetupTestDB creates a fresh SQLite database with the full schema in a
// temporary directory. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.SQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.SQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "file:test.db",
		DatabaseType: "sqlite",
		ProgramID:    "poll_app_test",
		MaxVoters:    cliparse.DefaultMaxVoters,
		MaxClockSkew: cliparse.DefaultMaxClockSkew,
	}
}

// Env is an engine over a SQL-backed store with a manual clock and an
// event feed.
type Env struct {
	DB     *sql.DB
	Store  *ledger.SQLStore
	Feed   *feed.Store
	Clock  *poll.ManualClock
	Engine *poll.Engine
	Config cliparse.Config
}

func NewEnv(t *testing.T) *Env {
	t.Helper()
	return NewEnvWithConfig(t, GetTestConfig())
}

func NewEnvWithConfig(t *testing.T, cfg cliparse.Config) *Env {
	t.Helper()

	conn := SetupTestDB(t)
	env := &Env{
		DB:     conn,
		Store:  ledger.NewSQLStore(conn, db.SQLite),
		Feed:   feed.NewStore(conn, db.SQLite),
		Clock:  poll.NewManualClock(Epoch),
		Config: cfg,
	}
	env.Engine = poll.NewEngine(env.Store, poll.Config{
		ProgramID: cfg.ProgramID,
		MaxVoters: cfg.MaxVoters,
		Clock:     env.Clock,
		Events:    env.Feed,
	})
	return env
}

// Keypair returns a deterministic identity for n.
func Keypair(t *testing.T, n byte) auth.Keypair {
	t.Helper()

	kp, err := auth.KeypairFromSeed(bytes.Repeat([]byte{n}, 32))
	if err != nil {
		t.Fatalf("Failed to derive keypair: %v", err)
	}
	return kp
}

// Register registers kp and fails the test on error.
func (e *Env) Register(t *testing.T, kp auth.Keypair) {
	t.Helper()

	if _, _, err := e.Engine.Register(t.Context(), kp.Public); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
}

// CreateTestPoll registers kp if needed and creates a poll.
func (e *Env) CreateTestPoll(t *testing.T, kp auth.Keypair, options []string, duration int64) ledger.Address {
	t.Helper()

	if _, _, err := e.Engine.Register(t.Context(), kp.Public); err != nil && !errors.Is(err, poll.ErrAlreadyRegistered) {
		t.Fatalf("Failed to register: %v", err)
	}
	addr, _, err := e.Engine.CreatePoll(t.Context(), kp.Public, "Test Poll", options, duration)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return addr
}

// CastTestVote casts a vote and fails the test on error.
func (e *Env) CastTestVote(t *testing.T, addr ledger.Address, kp auth.Keypair, option uint8) {
	t.Helper()

	if _, err := e.Engine.CastVote(t.Context(), addr, kp.Public, option); err != nil {
		t.Fatalf("Failed to cast test vote: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeSignedRequest creates an HTTP test request signed by kp at now
func MakeSignedRequest(t *testing.T, kp auth.Keypair, now time.Time, method, path string, body interface{}) *http.Request {
	t.Helper()

	req := MakeRequest(method, path, body, nil)
	if err := auth.SignRequest(req, kp, now); err != nil {
		t.Fatalf("Failed to sign request: %v", err)
	}
	return req
}

// AsIdentity attaches a verified signer to req, as RequireSignature does
func AsIdentity(req *http.Request, kp auth.Keypair) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), kp.Public))
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
