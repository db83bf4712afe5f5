// Package ident generates time-ordered unique row identifiers.
//
// IDs are RFC 4122 version 1 UUIDs built from a per-generator random node
// value and an advancing clock sequence, rendered as strings so downstream
// stores never coerce them to numbers. Unlike a package-global source, a
// Generator is explicitly constructed and passed around, so tests can pin the
// node, sequence, and clock.
package ident

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Offset in 100ns ticks between the UUID epoch (1582-10-15) and the Unix
// epoch (1970-01-01).
const gregorianToUnix = 122192928000000000

// Generator produces unique identifier strings for one process run.
type Generator struct {
	mu   sync.Mutex
	node [6]byte
	seq  uint16
	now  func() time.Time
}

// NewRandom returns a Generator with a random node value and a random
// starting clock sequence.
func NewRandom() *Generator {
	var node [6]byte
	var seqBytes [2]byte
	rand.Read(node[:])
	rand.Read(seqBytes[:])
	seq := binary.BigEndian.Uint16(seqBytes[:]) & 0x3FFF
	return New(node, seq, time.Now)
}

// New returns a Generator with the given node, starting clock sequence, and
// clock. Intended for tests that need deterministic output.
func New(node [6]byte, seq uint16, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{node: node, seq: seq & 0x3FFF, now: now}
}

// Next returns the next identifier. The clock sequence advances on every
// call, so IDs are unique within a run even when the clock does not move.
func (g *Generator) Next() string {
	g.mu.Lock()
	g.seq = (g.seq + 1) & 0x3FFF
	seq := g.seq
	g.mu.Unlock()

	ts := uint64(g.now().UnixNano()/100) + gregorianToUnix

	var u uuid.UUID
	binary.BigEndian.PutUint32(u[0:], uint32(ts))                            // time_low
	binary.BigEndian.PutUint16(u[4:], uint16(ts>>32))                        // time_mid
	binary.BigEndian.PutUint16(u[6:], uint16(ts>>48)&0x0FFF|0x1000)         // time_hi_and_version (v1)
	binary.BigEndian.PutUint16(u[8:], seq&0x3FFF|0x8000)                    // clock_seq (RFC 4122 variant)
	copy(u[10:], g.node[:])

	return u.String()
}
