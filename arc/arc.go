// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package arc implements the packed state transition table used for FSM
// coverage.
//
// A table is a single byte buffer: a 7 byte header followed by fixed size
// entries. The header holds, in order, the state width (uint16 LE), the number
// of allocated entries (uint16 LE), the number of used entries (uint16 LE) and
// a flags byte (bit 0: the set of legal transitions is known).
//
// Each entry is a little-endian bit field of (5 + 2*width) bits, padded to a
// whole number of bytes:
//
//	bit 0          hit in the forward direction
//	bit 1          hit in the reverse direction
//	bit 2          bidirectional
//	bit 3          "to" state not unique
//	bit 4          "from" state not unique
//	[5, 5+w)       "to" state
//	[5+w, 5+2w)    "from" state
//
// Entries only ever gain bits: a transition goes from absent to forward only
// to bidirectional, and hit bits are never cleared.
//
package arc

import (
	"bytes"
	"encoding/binary"

	"github.com/db47h/covered/vector"
	"github.com/pkg/errors"
)

// ErrMismatch is returned when merging tables of different state widths.
//
var ErrMismatch = errors.New("arc table width mismatch")

// MaxWidth is the maximum state width of a table.
//
const MaxWidth = 4096

const (
	headerSize = 7

	offWidth = 0
	offAlloc = 2
	offUsed  = 4
	offSuppl = 6

	supplKnown = 1
)

// entry flag bits
const (
	hitF = 1 << iota
	hitR
	bidir
	notUniqueTo
	notUniqueFrom

	flagBits  = 5
	flagsMask = 0x1f
)

// An Arc is an FSM state transition table.
//
type Arc struct {
	buf []byte
}

// New returns an empty table for states of the given width with room for
// width entries. It panics if width is not in [1, MaxWidth].
//
func New(width int) *Arc {
	if width <= 0 || width > MaxWidth {
		panic(errors.Errorf("invalid arc state width %d", width))
	}
	a := &Arc{}
	a.buf = make([]byte, headerSize+width*entrySize(width))
	a.put16(offWidth, width)
	a.put16(offAlloc, width)
	return a
}

func entrySize(width int) int {
	return (flagBits + 2*width + 7) / 8
}

func (a *Arc) get16(off int) int {
	return int(binary.LittleEndian.Uint16(a.buf[off:]))
}

func (a *Arc) put16(off, v int) {
	binary.LittleEndian.PutUint16(a.buf[off:], uint16(v))
}

// Width returns the state width.
//
func (a *Arc) Width() int { return a.get16(offWidth) }

// Len returns the number of entries in the table.
//
func (a *Arc) Len() int { return a.get16(offUsed) }

// Cap returns the number of allocated entries.
//
func (a *Arc) Cap() int { return a.get16(offAlloc) }

// Known returns true if the set of legal transitions has been declared.
//
func (a *Arc) Known() bool { return a.buf[offSuppl]&supplKnown != 0 }

func (a *Arc) entry(i int) []byte {
	sz := entrySize(a.Width())
	off := headerSize + i*sz
	return a.buf[off : off+sz : off+sz]
}

func getBit(e []byte, i int) byte {
	return (e[i>>3] >> uint(i&7)) & 1
}

func setBit(e []byte, i int, b byte) {
	m := byte(1) << uint(i&7)
	if b != 0 {
		e[i>>3] |= m
	} else {
		e[i>>3] &^= m
	}
}

// encode builds an entry for from -> to with clear flags.
func (a *Arc) encode(from, to *vector.Vector) []byte {
	w := a.Width()
	e := make([]byte, entrySize(w))
	for i := 0; i < w; i++ {
		var t, f vector.Bit
		if i < to.Width {
			t = to.At(i)
		}
		if i < from.Width {
			f = from.At(i)
		}
		setBit(e, flagBits+i, byte(t))
		setBit(e, flagBits+w+i, byte(f))
	}
	return e
}

// sameStates compares the state bits of two entries.
func sameStates(x, y []byte) bool {
	if x[0]&^flagsMask != y[0]&^flagsMask {
		return false
	}
	return bytes.Equal(x[1:], y[1:])
}

// Match kinds returned by find.
const (
	forward = iota
	reverse
	none
)

// find looks for the transition from -> to. It returns the entry index and
// whether the entry was found as from -> to (forward) or to -> from
// (reverse).
func (a *Arc) find(from, to *vector.Vector) (int, int) {
	fe, re := a.encode(from, to), a.encode(to, from)
	for i, n := 0, a.Len(); i < n; i++ {
		e := a.entry(i)
		if sameStates(e, fe) {
			return i, forward
		}
		if sameStates(e, re) {
			return i, reverse
		}
	}
	return -1, none
}

func (a *Arc) grow() {
	w := a.Width()
	alloc := a.Cap() + w
	if alloc > 0xffff {
		alloc = 0xffff
	}
	if alloc == a.Cap() {
		panic(errors.Errorf("arc table full (%d entries)", alloc))
	}
	buf := make([]byte, headerSize+alloc*entrySize(w))
	copy(buf, a.buf)
	a.buf = buf
	a.put16(offAlloc, alloc)
}

// Add records the transition from -> to. If hit is false, the transition is
// only declared as legal and the table is marked as known. Add does nothing
// if either state holds an X or Z bit. States are truncated or zero-extended
// to the table width.
//
// A transition already present as to -> from makes that entry bidirectional.
//
func (a *Arc) Add(from, to *vector.Vector, hit bool) {
	if from.IsUnknown() || to.IsUnknown() {
		return
	}
	if !hit {
		a.buf[offSuppl] |= supplKnown
	}
	var h byte
	if hit {
		h = 1
	}
	switch i, m := a.find(from, to); m {
	case forward:
		a.entry(i)[0] |= h * hitF
	case reverse:
		a.entry(i)[0] |= bidir | h*hitR
	default:
		n := a.Len()
		if n == a.Cap() {
			a.grow()
		}
		e := a.entry(n)
		copy(e, a.encode(from, to))
		e[0] |= h * hitF
		a.put16(offUsed, n+1)
	}
}

// state returns the bits of the from (side 1) or to (side 0) state of entry
// e packed into bytes.
func (a *Arc) state(e []byte, side int) []byte {
	w := a.Width()
	s := make([]byte, (w+7)/8)
	off := flagBits + side*w
	for i := 0; i < w; i++ {
		setBit(s, i, getBit(e, off+i))
	}
	return s
}

func (a *Arc) stateVector(e []byte, side int) *vector.Vector {
	w := a.Width()
	v := vector.New(w, 0)
	off := flagBits + side*w
	for i := 0; i < w; i++ {
		v.SetBit(i, vector.Bit(getBit(e, off+i)))
	}
	return v
}

// distinct counts distinct states by pairwise comparison. If hitOnly is set,
// only states of entries hit in either direction are considered. Otherwise
// the not unique bits of all entries are updated.
func (a *Arc) distinct(hitOnly bool) int {
	var seen [][]byte
	count := 0
	for i, n := 0, a.Len(); i < n; i++ {
		e := a.entry(i)
		if hitOnly && e[0]&(hitF|hitR) == 0 {
			continue
		}
		for side := 0; side < 2; side++ {
			s := a.state(e, side)
			unique := true
			for _, p := range seen {
				if bytes.Equal(p, s) {
					unique = false
					break
				}
			}
			if !hitOnly {
				bit := byte(notUniqueTo)
				if side == 1 {
					bit = notUniqueFrom
				}
				if unique {
					e[0] &^= bit
				} else {
					e[0] |= bit
				}
			}
			if unique {
				seen = append(seen, s)
				count++
			}
		}
	}
	return count
}

// StateHits returns the number of distinct states that took part in a hit
// transition.
//
func (a *Arc) StateHits() int {
	return a.distinct(true)
}

// StateTotal returns the number of distinct states in the table.
//
func (a *Arc) StateTotal() int {
	return a.distinct(false)
}

// TransitionHits returns the number of transitions hit, counting each
// direction of a bidirectional entry.
//
func (a *Arc) TransitionHits() int {
	n := 0
	for i := 0; i < a.Len(); i++ {
		e := a.entry(i)
		n += int(e[0]&hitF) + int(e[0]&hitR)>>1
	}
	return n
}

// TransitionTotal returns the number of transitions in the table, counting
// bidirectional entries twice.
//
func (a *Arc) TransitionTotal() int {
	n := a.Len()
	for i := 0; i < a.Len(); i++ {
		if a.entry(i)[0]&bidir != 0 {
			n++
		}
	}
	return n
}

// Stats returns the state and transition hit counts and totals. Totals are
// -1 unless the legal transitions have been declared.
//
func (a *Arc) Stats() (stateHits, stateTotal, arcHits, arcTotal int) {
	stateHits, arcHits = a.StateHits(), a.TransitionHits()
	stateTotal, arcTotal = -1, -1
	if a.Known() {
		stateTotal, arcTotal = a.StateTotal(), a.TransitionTotal()
	}
	return
}

// Entry is a decoded table entry.
//
type Entry struct {
	From, To   *vector.Vector
	HitForward bool
	HitReverse bool
	Bidir      bool
}

// Entries returns all entries of the table.
//
func (a *Arc) Entries() []Entry {
	es := make([]Entry, a.Len())
	for i := range es {
		e := a.entry(i)
		es[i] = Entry{
			From:       a.stateVector(e, 1),
			To:         a.stateVector(e, 0),
			HitForward: e[0]&hitF != 0,
			HitReverse: e[0]&hitR != 0,
			Bidir:      e[0]&bidir != 0,
		}
	}
	return es
}
