package id

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math"
	"sync"
	"time"
)

// Size is the length of an ID in bytes.
const Size = 16

// ErrInvalid is returned by Parse for strings that are not 32 hex characters.
var ErrInvalid = errors.New("id: invalid identifier")

// ID is [8 bytes unix ms][8 bytes sequence], big-endian.
type ID [Size]byte

func (i ID) String() string { return hex.EncodeToString(i[:]) }

// IsZero reports whether i is the zero ID.
func (i ID) IsZero() bool { return i == ID{} }

// Time returns the millisecond timestamp embedded in i.
func (i ID) Time() time.Time {
	return time.UnixMilli(int64(binary.BigEndian.Uint64(i[:8])))
}

// Compare orders IDs by creation; it is plain byte order.
func (i ID) Compare(other ID) int { return bytes.Compare(i[:], other[:]) }

// Parse decodes the hex form produced by String.
func Parse(s string) (ID, error) {
	var out ID
	if hex.DecodedLen(len(s)) != Size {
		return out, ErrInvalid
	}
	if _, err := hex.Decode(out[:], []byte(s)); err != nil {
		return ID{}, ErrInvalid
	}
	return out, nil
}

// Valid reports whether s parses as an ID.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Generator hands out strictly increasing IDs. When the clock stalls or runs
// backwards it keeps the last millisecond and bumps the sequence; a sequence
// overflow borrows the next millisecond.
type Generator struct {
	now func() time.Time

	mu     sync.Mutex
	lastMs int64
	seq    uint64
}

// NewGenerator returns a Generator reading time from now, or the wall clock
// when now is nil.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Next returns the next ID.
func (g *Generator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	switch {
	case ms > g.lastMs:
		g.seq = 0
	case g.seq == math.MaxUint64:
		ms = g.lastMs + 1
		g.seq = 0
	default:
		ms = g.lastMs
		g.seq++
	}
	g.lastMs = ms

	var out ID
	binary.BigEndian.PutUint64(out[:8], uint64(ms))
	binary.BigEndian.PutUint64(out[8:], g.seq)
	return out
}

var defaultGen = NewGenerator(nil)

// NewString returns the hex form of the next process-wide ID.
func NewString() string { return defaultGen.Next().String() }
