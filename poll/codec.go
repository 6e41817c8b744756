// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/kasiabeben10/poll-app/ledger"
)

const discriminatorSize = 8

var (
	registryDiscriminator = discriminator("Registry")
	pollDiscriminator     = discriminator("Poll")
)

// discriminator tags each record with its kind so a registry can never be
// decoded as a poll or the other way round.
func discriminator(name string) [discriminatorSize]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var d [discriminatorSize]byte
	copy(d[:], sum[:discriminatorSize])
	return d
}

// MarshalBinary encodes the registry as
// [discriminator][owner: 32][poll_count: u32][bump: u8].
func (r *Registry) MarshalBinary() ([]byte, error) {
	e := encoder{buf: make([]byte, 0, RegistrySpace)}
	e.raw(registryDiscriminator[:])
	e.raw(r.Owner[:])
	e.u32(r.PollCount)
	e.u8(r.Bump)
	return e.buf, nil
}

func (r *Registry) UnmarshalBinary(data []byte) error {
	d := decoder{buf: data}
	if err := d.expect(registryDiscriminator); err != nil {
		return err
	}

	var out Registry
	copy(out.Owner[:], d.take(ledger.KeySize))
	out.PollCount = d.u32()
	out.Bump = d.u8()
	if err := d.finish(); err != nil {
		return err
	}
	*r = out
	return nil
}

// MarshalBinary encodes the poll little-endian with u32 length prefixes:
// question, options, votes, voters, created_at, duration, voter_count,
// seed, bump, creator, index, capacity.
func (p *Poll) MarshalBinary() ([]byte, error) {
	if len(p.Votes) != len(p.Options) {
		return nil, fmt.Errorf("%w: %d votes for %d options", ErrCorruptRecord, len(p.Votes), len(p.Options))
	}
	if int(p.VoterCount) != len(p.Voters) {
		return nil, fmt.Errorf("%w: voter_count %d with %d voters", ErrCorruptRecord, p.VoterCount, len(p.Voters))
	}
	if p.VoterCount > p.Capacity {
		return nil, fmt.Errorf("%w: %d voters over capacity %d", ErrCorruptRecord, p.VoterCount, p.Capacity)
	}

	e := encoder{buf: make([]byte, 0, SpaceFor(p.Question, p.Options, len(p.Voters)))}
	e.raw(pollDiscriminator[:])
	e.str(p.Question)
	e.u32(uint32(len(p.Options)))
	for _, o := range p.Options {
		e.str(o)
	}
	e.u32(uint32(len(p.Votes)))
	for _, v := range p.Votes {
		e.u32(v)
	}
	e.u32(uint32(len(p.Voters)))
	for _, c := range p.Voters {
		e.raw(c[:])
	}
	e.i64(p.CreatedAt)
	e.i64(p.Duration)
	e.u32(p.VoterCount)
	e.raw(p.Seed[:])
	e.u8(p.Bump)
	e.raw(p.Creator[:])
	e.u32(p.Index)
	e.u32(p.Capacity)
	return e.buf, nil
}

func (p *Poll) UnmarshalBinary(data []byte) error {
	d := decoder{buf: data}
	if err := d.expect(pollDiscriminator); err != nil {
		return err
	}

	var out Poll
	out.Question = d.str()

	n := d.count(4)
	out.Options = make([]string, 0, n)
	for i := 0; i < n; i++ {
		out.Options = append(out.Options, d.str())
	}

	n = d.count(4)
	out.Votes = make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		out.Votes = append(out.Votes, d.u32())
	}

	n = d.count(CommitmentSize)
	out.Voters = make([]Commitment, 0, n)
	for i := 0; i < n; i++ {
		var c Commitment
		copy(c[:], d.take(CommitmentSize))
		out.Voters = append(out.Voters, c)
	}

	out.CreatedAt = d.i64()
	out.Duration = d.i64()
	out.VoterCount = d.u32()
	copy(out.Seed[:], d.take(SeedSize))
	out.Bump = d.u8()
	copy(out.Creator[:], d.take(ledger.KeySize))
	out.Index = d.u32()
	out.Capacity = d.u32()
	if err := d.finish(); err != nil {
		return err
	}

	if len(out.Votes) != len(out.Options) || int(out.VoterCount) != len(out.Voters) || out.VoterCount > out.Capacity {
		return fmt.Errorf("%w: inconsistent counts", ErrCorruptRecord)
	}
	*p = out
	return nil
}

type encoder struct {
	buf []byte
}

func (e *encoder) raw(b []byte) { e.buf = append(e.buf, b...) }
func (e *encoder) u8(v uint8)   { e.buf = append(e.buf, v) }
func (e *encoder) u32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }
func (e *encoder) i64(v int64)  { e.buf = binary.LittleEndian.AppendUint64(e.buf, uint64(v)) }

func (e *encoder) str(s string) {
	e.u32(uint32(len(s)))
	e.buf = append(e.buf, s...)
}

// decoder reads from buf; the first short read sets err and every later
// read returns zero values.
type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return make([]byte, n)
	}
	if n < 0 || len(d.buf)-d.off < n {
		d.err = fmt.Errorf("%w: truncated at offset %d", ErrCorruptRecord, d.off)
		return make([]byte, n)
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) u8() uint8   { return d.take(1)[0] }
func (d *decoder) u32() uint32 { return binary.LittleEndian.Uint32(d.take(4)) }
func (d *decoder) i64() int64  { return int64(binary.LittleEndian.Uint64(d.take(8))) }

func (d *decoder) str() string {
	n := d.u32()
	if d.err == nil && int(n) > len(d.buf)-d.off {
		d.err = fmt.Errorf("%w: string length %d at offset %d", ErrCorruptRecord, n, d.off)
	}
	if d.err != nil {
		return ""
	}
	return string(d.take(int(n)))
}

// count reads a list length and rejects lengths the remaining bytes
// cannot hold at minSize bytes per element.
func (d *decoder) count(minSize int) int {
	n := d.u32()
	if d.err == nil && int(n) > (len(d.buf)-d.off)/minSize {
		d.err = fmt.Errorf("%w: list length %d at offset %d", ErrCorruptRecord, n, d.off)
	}
	if d.err != nil {
		return 0
	}
	return int(n)
}

func (d *decoder) expect(disc [discriminatorSize]byte) error {
	if len(d.buf) < discriminatorSize {
		return fmt.Errorf("%w: record too short", ErrCorruptRecord)
	}
	if [discriminatorSize]byte(d.buf[:discriminatorSize]) != disc {
		return ErrWrongRecordKind
	}
	d.off = discriminatorSize
	return nil
}

func (d *decoder) finish() error {
	if d.err != nil {
		return d.err
	}
	if d.off != len(d.buf) {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorruptRecord, len(d.buf)-d.off)
	}
	return nil
}
