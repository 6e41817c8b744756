// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/kasiabeben10/poll-app/ledger"
)

const CommitmentSize = sha256.Size

// Commitment marks that one identity has voted on one poll without
// storing the identity in the voter set.
type Commitment [CommitmentSize]byte

func (c Commitment) String() string { return hex.EncodeToString(c[:]) }

// NewCommitment returns SHA256(SHA256(identity) || SHA256(seed)).
//
// The seed comes from the public creation time, so anyone can recompute
// an identity's commitment for a poll. It detects replays; it does not
// hide who voted.
func NewCommitment(identity ledger.Key, seed [SeedSize]byte) Commitment {
	idHash := sha256.Sum256(identity[:])
	seedHash := sha256.Sum256(seed[:])

	h := sha256.New()
	h.Write(idHash[:])
	h.Write(seedHash[:])

	var c Commitment
	copy(c[:], h.Sum(nil))
	return c
}

// SeedFromTime derives a poll seed from its creation timestamp.
func SeedFromTime(createdAt int64) [SeedSize]byte {
	var seed [SeedSize]byte
	binary.LittleEndian.PutUint64(seed[:], uint64(createdAt))
	return seed
}
