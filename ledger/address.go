// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
)

const addressMarker = "ProgramDerivedAddress"

// Deriver computes deterministic record addresses within one program namespace.
type Deriver struct {
	namespace []byte
}

func NewDeriver(programID string) Deriver {
	return Deriver{namespace: []byte(programID)}
}

// Derive hashes the namespace and the length-prefixed seeds together with
// a bump byte, starting at 255 and walking down until the digest is not
// the reserved zero address. The same seeds always yield the same
// address and bump.
func (d Deriver) Derive(seeds ...[]byte) (Address, uint8) {
	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		writeSeed(h, d.namespace)
		for _, seed := range seeds {
			writeSeed(h, seed)
		}
		h.Write([]byte{byte(bump)})
		h.Write([]byte(addressMarker))

		var addr Address
		copy(addr[:], h.Sum(nil))
		if !addr.IsZero() {
			return addr, uint8(bump)
		}
	}
	panic("ledger: no valid bump for seeds")
}

func writeSeed(h hash.Hash, seed []byte) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(seed)))
	h.Write(n[:])
	h.Write(seed)
}

// U32Seed encodes an index the way seeds carry counters.
func U32Seed(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}
