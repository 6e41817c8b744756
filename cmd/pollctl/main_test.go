// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kasiabeben10/poll-app/router"
	"github.com/kasiabeben10/poll-app/testutil"
)

type harness struct {
	t      *testing.T
	server string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	env := testutil.NewEnv(t)
	// pollctl signs with the wall clock
	env.Clock.Set(time.Now())
	srv := httptest.NewServer(router.NewRouter(router.Services{Engine: env.Engine, Feed: env.Feed}, env.Config))
	t.Cleanup(srv.Close)
	return &harness{t: t, server: srv.URL}
}

// pollctl runs the CLI as the identity stored in keyfile
func (h *harness) pollctl(keyfile string, args ...string) (string, string, int) {
	h.t.Helper()

	var stdout, stderr bytes.Buffer
	full := append([]string{"--server", h.server, "--keypair", keyfile}, args...)
	code := run(h.t.Context(), full, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func (h *harness) mustRun(keyfile string, args ...string) string {
	h.t.Helper()

	stdout, stderr, code := h.pollctl(keyfile, args...)
	if code != 0 {
		h.t.Fatalf("pollctl %v: exit %d, stderr: %s", args, code, stderr)
	}
	return stdout
}

func TestPollctlWorkflow(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	alice := filepath.Join(dir, "alice.json")
	bob := filepath.Join(dir, "bob.json")

	out := h.mustRun(alice, "keygen")
	if !strings.Contains(out, "Identity: ") {
		t.Errorf("keygen output missing identity: %s", out)
	}
	h.mustRun(bob, "keygen")

	if out := h.mustRun(alice, "init-user"); !strings.HasPrefix(out, "Registered ") {
		t.Errorf("Unexpected init-user output: %s", out)
	}
	if out := h.mustRun(alice, "init-user"); !strings.Contains(out, "Already registered") {
		t.Errorf("Unexpected repeat init-user output: %s", out)
	}

	out = h.mustRun(alice, "create-poll", "--duration", "1h", "Lunch?", "Pizza", "Soup", "Salad")
	if !strings.Contains(out, "Created poll #0") || !strings.Contains(out, "closes 59 minutes from now") && !strings.Contains(out, "closes 1 hour from now") {
		t.Errorf("Unexpected create-poll output: %s", out)
	}
	addr := strings.Fields(strings.SplitN(out, " at ", 2)[1])[0]

	// Alice votes on her own poll by index, Bob by address
	if out := h.mustRun(alice, "vote", "0", "1"); !strings.Contains(out, `Voted for "Soup" (1 vote now)`) {
		t.Errorf("Unexpected vote output: %s", out)
	}
	h.mustRun(bob, "vote", addr, "1")

	_, stderr, code := h.pollctl(bob, "vote", addr, "2")
	if code != 1 || !strings.Contains(stderr, "AlreadyVoted") {
		t.Errorf("Expected AlreadyVoted failure, got exit %d: %s", code, stderr)
	}

	out = h.mustRun(bob, "view-poll", addr)
	for _, want := range []string{"Question: Lunch?", "1: Soup - 2 votes", "Total voters: 2 of 10", "Status: open"} {
		if !strings.Contains(out, want) {
			t.Errorf("view-poll output missing %q:\n%s", want, out)
		}
	}

	out = h.mustRun(alice, "results", "0")
	if !strings.Contains(out, "1: Soup - 2 votes (100%)") || !strings.Contains(out, "Total: 2 votes") {
		t.Errorf("Unexpected results output:\n%s", out)
	}

	out = h.mustRun(bob, "get-winner", addr)
	if !strings.Contains(out, "Winning options (2 votes):\n- Soup\n") {
		t.Errorf("Unexpected get-winner output:\n%s", out)
	}

	out = h.mustRun(alice, "my-polls")
	if !strings.Contains(out, "#0 "+addr+` "Lunch?" [open, 2 votes]`) {
		t.Errorf("Unexpected my-polls output:\n%s", out)
	}
}

func TestPollctlErrors(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	key := filepath.Join(dir, "id.json")

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no command", nil, 2, "Usage"},
		{"unknown command", []string{"launch"}, 2, "Unknown command"},
		{"missing keypair", []string{"init-user"}, 1, "run pollctl keygen first"},
		{"bad poll reference", []string{"view-poll", "nope"}, 2, "neither an address nor an index"},
		{"bad option index", []string{"vote", "0", "first"}, 2, "not a number"},
		{"bad duration", []string{"create-poll", "--duration", "soon", "Q", "A", "B"}, 2, "invalid duration"},
		{"create-poll without question", []string{"create-poll"}, 2, "needs a question"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := h.pollctl(key, tt.args...)
			if code != tt.wantCode {
				t.Errorf("Expected exit %d, got %d", tt.wantCode, code)
			}
			if !strings.Contains(stderr, tt.wantErr) {
				t.Errorf("Expected stderr to contain %q, got: %s", tt.wantErr, stderr)
			}
		})
	}
}

func TestPollctlUnregistered(t *testing.T) {
	h := newHarness(t)
	key := filepath.Join(t.TempDir(), "id.json")
	h.mustRun(key, "keygen")

	_, stderr, code := h.pollctl(key, "create-poll", "Q", "A", "B")
	if code != 1 || !strings.Contains(stderr, "UserNotInitialized") {
		t.Errorf("Expected UserNotInitialized, got exit %d: %s", code, stderr)
	}

	_, stderr, code = h.pollctl(key, "create-poll", "Q", "A")
	if code != 1 {
		t.Errorf("Expected exit 1, got %d: %s", code, stderr)
	}

	if out := h.mustRun(key, "init-user"); !strings.HasPrefix(out, "Registered ") {
		t.Errorf("Unexpected init-user output: %s", out)
	}
	if out := h.mustRun(key, "my-polls"); out != "No polls yet\n" {
		t.Errorf("Unexpected my-polls output: %q", out)
	}
}

func TestKeygenKeepsExistingKey(t *testing.T) {
	h := newHarness(t)
	key := filepath.Join(t.TempDir(), "id.json")

	first := h.mustRun(key, "keygen")
	_, stderr, code := h.pollctl(key, "keygen")
	if code != 1 || !strings.Contains(stderr, "already exists") {
		t.Errorf("Expected refusal to replace keypair, got exit %d: %s", code, stderr)
	}

	second := h.mustRun(key, "keygen", "--force")
	if first == second {
		t.Error("keygen --force did not create a new identity")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"0", 0, false},
		{"90", 90, false},
		{"1h30m", 5400, false},
		{"-1", -1, false},
		{"1.5s", 0, true},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		got, err := parseDuration(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDuration(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
