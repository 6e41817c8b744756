// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/kasiabeben10/poll-app/ledger"
)

const (
	HeaderIdentity  = "X-Identity"
	HeaderTimestamp = "X-Timestamp"
	HeaderSignature = "X-Signature"

	DefaultMaxSkew = 5 * time.Minute
)

var (
	ErrMissingSignature = errors.New("missing signature headers")
	ErrInvalidIdentity  = errors.New("invalid identity key")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrStaleTimestamp   = errors.New("timestamp outside allowed skew")
	ErrInvalidKeypair   = errors.New("invalid keypair")
)

// Keypair is an ed25519 signing identity. Public is the identity key the
// poll program sees.
type Keypair struct {
	Public  ledger.Key
	Private ed25519.PrivateKey
}

// GenerateKeypair creates a fresh random identity
func GenerateKeypair() (Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Keypair{}, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return newKeypair(pub, priv), nil
}

// KeypairFromSeed derives the identity for a 32-byte seed.
func KeypairFromSeed(seed []byte) (Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return Keypair{}, fmt.Errorf("%w: seed must be %d bytes", ErrInvalidKeypair, ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return newKeypair(priv.Public().(ed25519.PublicKey), priv), nil
}

func newKeypair(pub ed25519.PublicKey, priv ed25519.PrivateKey) Keypair {
	var k ledger.Key
	copy(k[:], pub)
	return Keypair{Public: k, Private: priv}
}

type keypairJSON struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

func (kp Keypair) MarshalJSON() ([]byte, error) {
	return json.Marshal(keypairJSON{
		PublicKey:  kp.Public.String(),
		PrivateKey: hex.EncodeToString(kp.Private),
	})
}

// UnmarshalJSON rejects files whose public key does not match the
// private key.
func (kp *Keypair) UnmarshalJSON(data []byte) error {
	var raw keypairJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	priv, err := hex.DecodeString(raw.PrivateKey)
	if err != nil || len(priv) != ed25519.PrivateKeySize {
		return fmt.Errorf("%w: private key must be %d hex-encoded bytes", ErrInvalidKeypair, ed25519.PrivateKeySize)
	}
	pub, err := ledger.ParseKey(raw.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKeypair, err)
	}

	derived := newKeypair(ed25519.PrivateKey(priv).Public().(ed25519.PublicKey), priv)
	if derived.Public != pub {
		return fmt.Errorf("%w: public key does not match private key", ErrInvalidKeypair)
	}
	*kp = derived
	return nil
}

// SigningPayload is the message a request signature covers:
// METHOD\nPATH\nTIMESTAMP\nhex(sha256(body)).
func SigningPayload(method, path string, timestamp int64, body []byte) []byte {
	sum := sha256.Sum256(body)
	return []byte(method + "\n" + path + "\n" + strconv.FormatInt(timestamp, 10) + "\n" + hex.EncodeToString(sum[:]))
}

// SignRequest sets the identity, timestamp and signature headers on req.
// The body is read and replaced so req can still be sent.
func SignRequest(req *http.Request, kp Keypair, now time.Time) error {
	body, err := readBody(req)
	if err != nil {
		return err
	}

	ts := now.Unix()
	sig := ed25519.Sign(kp.Private, SigningPayload(req.Method, req.URL.Path, ts, body))

	req.Header.Set(HeaderIdentity, kp.Public.String())
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(HeaderSignature, hex.EncodeToString(sig))
	return nil
}

// VerifyRequest checks the signature headers of r and returns the signer.
func VerifyRequest(r *http.Request, now time.Time, maxSkew time.Duration) (ledger.Key, error) {
	identity := r.Header.Get(HeaderIdentity)
	tsHeader := r.Header.Get(HeaderTimestamp)
	sigHeader := r.Header.Get(HeaderSignature)
	if identity == "" || tsHeader == "" || sigHeader == "" {
		return ledger.Key{}, ErrMissingSignature
	}

	key, err := ledger.ParseKey(identity)
	if err != nil {
		return ledger.Key{}, fmt.Errorf("%w: %w", ErrInvalidIdentity, err)
	}

	ts, err := strconv.ParseInt(tsHeader, 10, 64)
	if err != nil {
		return ledger.Key{}, fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
	}
	if skew := now.Sub(time.Unix(ts, 0)).Abs(); skew > maxSkew {
		return ledger.Key{}, ErrStaleTimestamp
	}

	sig, err := hex.DecodeString(sigHeader)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return ledger.Key{}, ErrInvalidSignature
	}

	body, err := readBody(r)
	if err != nil {
		return ledger.Key{}, err
	}
	if !ed25519.Verify(ed25519.PublicKey(key[:]), SigningPayload(r.Method, r.URL.Path, ts, body), sig) {
		return ledger.Key{}, ErrInvalidSignature
	}
	return key, nil
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

type identityKey struct{}

// WithIdentity stores the verified signer in ctx.
func WithIdentity(ctx context.Context, key ledger.Key) context.Context {
	return context.WithValue(ctx, identityKey{}, key)
}

// IdentityFrom returns the signer stored by WithIdentity.
func IdentityFrom(ctx context.Context) (ledger.Key, bool) {
	key, ok := ctx.Value(identityKey{}).(ledger.Key)
	return key, ok
}
