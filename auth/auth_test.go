// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

var now = time.Unix(1_700_000_000, 0)

func testKeypair(t *testing.T, b byte) Keypair {
	t.Helper()
	kp, err := KeypairFromSeed(bytes.Repeat([]byte{b}, 32))
	if err != nil {
		t.Fatalf("KeypairFromSeed() error = %v", err)
	}
	return kp
}

func signedRequest(t *testing.T, kp Keypair, method, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if err := SignRequest(req, kp, now); err != nil {
		t.Fatalf("SignRequest() error = %v", err)
	}
	return req
}

func TestGenerateKeypair(t *testing.T) {
	kp1, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error = %v", err)
	}
	kp2, _ := GenerateKeypair()
	if kp1.Public == kp2.Public {
		t.Error("GenerateKeypair() produced duplicate keys (extremely unlikely)")
	}
	if len(kp1.Private) != 64 {
		t.Errorf("private key length = %d, want 64", len(kp1.Private))
	}
}

func TestKeypairFromSeed(t *testing.T) {
	a := testKeypair(t, 1)
	b := testKeypair(t, 1)
	if a.Public != b.Public {
		t.Error("same seed produced different keys")
	}

	if _, err := KeypairFromSeed([]byte("short")); !errors.Is(err, ErrInvalidKeypair) {
		t.Errorf("KeypairFromSeed(short) error = %v, want ErrInvalidKeypair", err)
	}
}

func TestKeypairJSON(t *testing.T) {
	kp := testKeypair(t, 7)

	data, err := json.Marshal(kp)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("keypair JSON is not an object: %v", err)
	}
	if fields["public_key"] != kp.Public.String() {
		t.Errorf("public_key = %q, want %q", fields["public_key"], kp.Public.String())
	}
	if len(fields["private_key"]) != 128 {
		t.Errorf("private_key length = %d, want 128", len(fields["private_key"]))
	}

	var decoded Keypair
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Public != kp.Public || !bytes.Equal(decoded.Private, kp.Private) {
		t.Error("keypair did not round-trip")
	}

	// Public key from another keypair
	other := testKeypair(t, 8)
	fields["public_key"] = other.Public.String()
	bad, _ := json.Marshal(fields)
	if err := json.Unmarshal(bad, &decoded); !errors.Is(err, ErrInvalidKeypair) {
		t.Errorf("mismatched keypair error = %v, want ErrInvalidKeypair", err)
	}

	if err := json.Unmarshal([]byte(`{"public_key":"00","private_key":"zz"}`), &decoded); !errors.Is(err, ErrInvalidKeypair) {
		t.Errorf("malformed keypair error = %v, want ErrInvalidKeypair", err)
	}
}

func TestSigningPayload(t *testing.T) {
	got := string(SigningPayload("POST", "/polls", 42, nil))
	want := "POST\n/polls\n42\ne3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("SigningPayload() = %q, want %q", got, want)
	}
}

func TestVerifyRequest(t *testing.T) {
	kp := testKeypair(t, 3)

	req := signedRequest(t, kp, "POST", "/polls", `{"question":"Q?"}`)
	key, err := VerifyRequest(req, now, DefaultMaxSkew)
	if err != nil {
		t.Fatalf("VerifyRequest() error = %v", err)
	}
	if key != kp.Public {
		t.Errorf("VerifyRequest() key = %s, want %s", key, kp.Public)
	}

	// Body is still readable by the handler
	body, _ := io.ReadAll(req.Body)
	if string(body) != `{"question":"Q?"}` {
		t.Errorf("body after verify = %q", body)
	}
}

func TestVerifyRequest_Rejections(t *testing.T) {
	kp := testKeypair(t, 4)
	other := testKeypair(t, 5)

	tests := []struct {
		name    string
		mutate  func(r *http.Request)
		at      time.Time
		wantErr error
	}{
		{
			name:    "missing headers",
			mutate:  func(r *http.Request) { r.Header.Del(HeaderSignature) },
			at:      now,
			wantErr: ErrMissingSignature,
		},
		{
			name:    "bad identity",
			mutate:  func(r *http.Request) { r.Header.Set(HeaderIdentity, "nothex") },
			at:      now,
			wantErr: ErrInvalidIdentity,
		},
		{
			name:    "other identity",
			mutate:  func(r *http.Request) { r.Header.Set(HeaderIdentity, other.Public.String()) },
			at:      now,
			wantErr: ErrInvalidSignature,
		},
		{
			name:    "tampered body",
			mutate:  func(r *http.Request) { r.Body = io.NopCloser(bytes.NewBufferString(`{"question":"X"}`)) },
			at:      now,
			wantErr: ErrInvalidSignature,
		},
		{
			name:    "tampered path",
			mutate:  func(r *http.Request) { r.URL.Path = "/registry" },
			at:      now,
			wantErr: ErrInvalidSignature,
		},
		{
			name: "tampered timestamp",
			mutate: func(r *http.Request) {
				r.Header.Set(HeaderTimestamp, strconv.FormatInt(now.Unix()+1, 10))
			},
			at:      now,
			wantErr: ErrInvalidSignature,
		},
		{
			name:    "garbage signature",
			mutate:  func(r *http.Request) { r.Header.Set(HeaderSignature, "abcd") },
			at:      now,
			wantErr: ErrInvalidSignature,
		},
		{
			name:    "stale",
			mutate:  func(r *http.Request) {},
			at:      now.Add(DefaultMaxSkew + time.Second),
			wantErr: ErrStaleTimestamp,
		},
		{
			name:    "from the future",
			mutate:  func(r *http.Request) {},
			at:      now.Add(-DefaultMaxSkew - time.Second),
			wantErr: ErrStaleTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := signedRequest(t, kp, "POST", "/polls", `{"question":"Q?"}`)
			tt.mutate(req)

			_, err := VerifyRequest(req, tt.at, DefaultMaxSkew)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("VerifyRequest() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIdentityContext(t *testing.T) {
	if _, ok := IdentityFrom(context.Background()); ok {
		t.Error("IdentityFrom() on empty context reported an identity")
	}

	kp := testKeypair(t, 6)
	ctx := WithIdentity(context.Background(), kp.Public)
	got, ok := IdentityFrom(ctx)
	if !ok || got != kp.Public {
		t.Errorf("IdentityFrom() = %s, %v", got, ok)
	}
}
