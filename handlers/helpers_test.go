// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kasiabeben10/poll-app/auth"
	"github.com/kasiabeben10/poll-app/ledger"
	"github.com/kasiabeben10/poll-app/models"
	"github.com/kasiabeben10/poll-app/testutil"
)

// containsJSONArray reports whether body has key holding an array
func containsJSONArray(body, key string) bool {
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return false
	}
	raw, ok := m[key]
	return ok && len(raw) > 0 && raw[0] == '['
}

// voteRequest builds a vote by kp for option, bypassing signature checks
func voteRequest(addr ledger.Address, kp auth.Keypair, option int) *http.Request {
	req := testutil.MakeRequest("POST", "/polls/"+addr.String()+"/votes", models.CastVoteRequest{OptionIndex: &option}, nil)
	req.SetPathValue("address", addr.String())
	return testutil.AsIdentity(req, kp)
}

func assertCode(t *testing.T, w *httptest.ResponseRecorder, code string) {
	t.Helper()

	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Code != code {
		t.Errorf("Expected code %q, got %q (message %q)", code, resp.Code, resp.Message)
	}
}
