// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveDeterministic(t *testing.T) {
	d := NewDeriver("poll_app")
	owner := Key{1, 2, 3}

	a1, bump1 := d.Derive([]byte("registry"), owner[:])
	a2, bump2 := d.Derive([]byte("registry"), owner[:])
	assert.Equal(t, a1, a2)
	assert.Equal(t, bump1, bump2)
	assert.False(t, a1.IsZero())
}

func TestDeriveDistinct(t *testing.T) {
	d := NewDeriver("poll_app")
	registry, _ := d.Derive([]byte("registry"), []byte{9})

	seen := make(map[Address]uint32)
	for i := uint32(0); i < 100; i++ {
		a, _ := d.Derive([]byte("poll"), registry[:], U32Seed(i))
		if prev, ok := seen[a]; ok {
			t.Fatalf("index %d collides with index %d", i, prev)
		}
		seen[a] = i
	}

	// Seed boundaries are length-prefixed, so moving bytes between seeds changes the address
	ab, _ := d.Derive([]byte("ab"), []byte("c"))
	abc, _ := d.Derive([]byte("a"), []byte("bc"))
	assert.NotEqual(t, ab, abc)

	other, _ := NewDeriver("other_program").Derive([]byte("registry"), []byte{9})
	assert.NotEqual(t, registry, other, "namespaces must not share addresses")
}

func TestAddressText(t *testing.T) {
	a, _ := NewDeriver("poll_app").Derive([]byte("x"))

	parsed, err := ParseAddress(a.String())
	require.NoError(t, err)
	assert.Equal(t, a, parsed)

	_, err = ParseAddress("abc")
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = ParseAddress(string(make([]byte, 64)))
	assert.ErrorIs(t, err, ErrInvalidHex)

	raw, err := json.Marshal(struct {
		Addr Address `json:"addr"`
		Key  Key     `json:"key"`
	}{a, Key{0xff}})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"addr":"`+a.String()+`"`)
	assert.Contains(t, string(raw), `"key":"ff00`)

	var back struct {
		Addr Address `json:"addr"`
		Key  Key     `json:"key"`
	}
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, a, back.Addr)
	assert.Equal(t, Key{0xff}, back.Key)
}
