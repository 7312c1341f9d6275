// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package vector implements packed 4-state (0, 1, X, Z) bit vectors with
// per-bit toggle history, and the primitive operations expression evaluation
// is built upon.
//
// Bits are stored four to a Nibble. Each bit carries its 2-bit logic value,
// a 0->1 toggle flag, a 1->0 toggle flag and an assigned flag. Toggle flags
// are only ever set, never cleared, for the lifetime of a vector.
//
package vector

import (
	"github.com/pkg/errors"
)

// Errors returned by vector operations.
//
var (
	// ErrUnknown is returned when converting a vector holding X or Z bits
	// to an integer.
	ErrUnknown = errors.New("unknown bit value in integer conversion")
	// ErrMismatch is returned when merging vectors of different geometry.
	ErrMismatch = errors.New("vector geometry mismatch")
	// ErrWidth is returned when a vector width read from a database record
	// or a literal is not in [1, MaxWidth].
	ErrWidth = errors.New("invalid vector width")
)

// MaxWidth is the maximum width of a vector read from a database record or
// a number literal.
//
const MaxWidth = 1 << 16

// Bit is a 4-state logic value.
//
type Bit uint8

// Logic values.
//
const (
	V0 Bit = iota
	V1
	VX
	VZ
)

// Unknown returns true if b is X or Z.
//
func (b Bit) Unknown() bool { return b >= VX }

func (b Bit) String() string { return "01xz"[b&3 : b&3+1] }

// A Nibble holds four bits of a vector:
//
//	[7:0]   logic values, 2 bits per bit (00=0, 01=1, 10=X, 11=Z)
//	[11:8]  toggled 0->1
//	[15:12] toggled 1->0
//	[19:16] assigned
//
type Nibble uint32

const (
	tog01Shift    = 8
	tog10Shift    = 12
	assignedShift = 16

	// ValueMask selects the logic values of a Nibble.
	ValueMask Nibble = 0xff
	// MetaMask selects the toggle and assigned flags of a Nibble.
	MetaMask Nibble = 0xfff00
	// ToggleMask selects the toggle flags of a Nibble.
	ToggleMask Nibble = 0xff00
)

// Bit returns the logic value of bit i (0-3).
//
func (n Nibble) Bit(i int) Bit { return Bit(n>>(2*uint(i))) & 3 }

// Toggled01 returns true if bit i has toggled from 0 to 1.
//
func (n Nibble) Toggled01(i int) bool { return n&(1<<(tog01Shift+uint(i))) != 0 }

// Toggled10 returns true if bit i has toggled from 1 to 0.
//
func (n Nibble) Toggled10(i int) bool { return n&(1<<(tog10Shift+uint(i))) != 0 }

// Assigned returns true if bit i has been assigned a value.
//
func (n Nibble) Assigned(i int) bool { return n&(1<<(assignedShift+uint(i))) != 0 }

// Vector is a packed 4-state vector. Bit positions used by BitVal and
// SetValue are absolute: they range over [LSB, LSB+Width).
//
type Vector struct {
	Width int
	LSB   int
	Value []Nibble
}

// New returns a zero vector of the given width whose least significant bit
// is addressed as lsb. It panics if width <= 0.
//
func New(width, lsb int) *Vector {
	if width <= 0 {
		panic(errors.Errorf("invalid vector width %d", width))
	}
	return &Vector{Width: width, LSB: lsb, Value: make([]Nibble, (width+3)/4)}
}

// At returns the value of bit i, counting from 0 at the least significant
// bit regardless of LSB.
//
func (v *Vector) At(i int) Bit {
	return v.Value[i>>2].Bit(i & 3)
}

// BitVal returns the value of the bit at absolute position pos.
//
func (v *Vector) BitVal(pos int) Bit {
	return v.At(pos - v.LSB)
}

// at returns bit i or 0 past the end of v.
func (v *Vector) at(i int) Bit {
	if i >= v.Width {
		return V0
	}
	return v.At(i)
}

// put writes a raw value without touching the history flags.
func (v *Vector) put(i int, b Bit) {
	n := &v.Value[i>>2]
	s := 2 * uint(i&3)
	*n = *n&^(3<<s) | Nibble(b&3)<<s
}

// set assigns b to bit i and updates the toggle history. It returns true if
// the value changed.
func (v *Vector) set(i int, b Bit) bool {
	n := &v.Value[i>>2]
	j := uint(i & 3)
	old := n.Bit(int(j))
	if n.Assigned(int(j)) {
		switch {
		case old == V0 && b == V1:
			*n |= 1 << (tog01Shift + j)
		case old == V1 && b == V0:
			*n |= 1 << (tog10Shift + j)
		}
	}
	*n = *n&^(3<<(2*j)) | Nibble(b&3)<<(2*j) | 1<<(assignedShift+j)
	return old != b
}

// SetBit sets bit i of v to b and updates its toggle history. It returns true
// if the value changed.
//
func (v *Vector) SetBit(i int, b Bit) bool {
	return v.set(i, b)
}

// SetValue copies count bits from src, starting at bit index from, into v
// starting at absolute position to. Toggle flags are updated for every
// overwritten bit that had already been assigned. It returns true if any bit
// changed value.
//
func (v *Vector) SetValue(src []Nibble, count, from, to int) (bool, error) {
	if count < 0 || to < v.LSB || to+count > v.LSB+v.Width {
		return false, errors.Errorf("bit range [%d:%d] out of vector range [%d:%d]", to+count-1, to, v.LSB+v.Width-1, v.LSB)
	}
	if from < 0 || from+count > len(src)*4 {
		return false, errors.Errorf("source range [%d:%d] out of source size %d", from+count-1, from, len(src)*4)
	}
	changed := false
	for i := 0; i < count; i++ {
		s := from + i
		if v.set(to-v.LSB+i, src[s>>2].Bit(s&3)) {
			changed = true
		}
	}
	return changed, nil
}

// Assign copies the values of src into v, bit 0 to bit 0, zero-extending or
// truncating as necessary.
//
func (v *Vector) Assign(src *Vector) bool {
	changed := false
	for i := 0; i < v.Width; i++ {
		if v.set(i, src.at(i)) {
			changed = true
		}
	}
	return changed
}

// Fill sets all bits of v to b.
//
func (v *Vector) Fill(b Bit) bool {
	changed := false
	for i := 0; i < v.Width; i++ {
		if v.set(i, b) {
			changed = true
		}
	}
	return changed
}

// Clone returns a copy of v, history included.
//
func (v *Vector) Clone() *Vector {
	c := &Vector{Width: v.Width, LSB: v.LSB, Value: make([]Nibble, len(v.Value))}
	copy(c.Value, v.Value)
	return c
}

// IsUnknown returns true if any bit of v is X or Z.
//
func (v *Vector) IsUnknown() bool {
	for i := 0; i < v.Width; i++ {
		if v.At(i).Unknown() {
			return true
		}
	}
	return false
}

// Equal returns true if v and w have the same width and logic values.
//
func (v *Vector) Equal(w *Vector) bool {
	if v.Width != w.Width {
		return false
	}
	for i := 0; i < v.Width; i++ {
		if v.At(i) != w.At(i) {
			return false
		}
	}
	return true
}

// ToInt returns the integer value of the low 32 bits of v. It fails with
// ErrUnknown if any of these bits is X or Z.
//
func (v *Vector) ToInt() (int, error) {
	n := v.Width
	if n > 32 {
		n = 32
	}
	var r uint32
	for i := n - 1; i >= 0; i-- {
		b := v.At(i)
		if b.Unknown() {
			return 0, errors.Wrapf(ErrUnknown, "bit %d is %v", i+v.LSB, b)
		}
		r = r<<1 | uint32(b)
	}
	return int(r), nil
}

// FromInt sets v to x, truncated or zero-extended to the width of v.
//
func (v *Vector) FromInt(x uint64) bool {
	changed := false
	for i := 0; i < v.Width; i++ {
		b := V0
		if i < 64 {
			b = Bit(x>>uint(i)) & 1
		}
		if v.set(i, b) {
			changed = true
		}
	}
	return changed
}

// Toggles returns the number of bits of v that have toggled from 0 to 1 and
// from 1 to 0.
//
func (v *Vector) Toggles() (t01, t10 int) {
	for i := 0; i < v.Width; i++ {
		n := v.Value[i>>2]
		if n.Toggled01(i & 3) {
			t01++
		}
		if n.Toggled10(i & 3) {
			t10++
		}
	}
	return t01, t10
}

// Merge merges the toggle history of in into base. Both vectors must have the
// same width and lsb. Logic values and assigned flags of base are left
// untouched.
//
func Merge(base, in *Vector) error {
	if base.Width != in.Width || base.LSB != in.LSB {
		return errors.Wrapf(ErrMismatch, "[%d:%d] vs [%d:%d]",
			base.LSB+base.Width-1, base.LSB, in.LSB+in.Width-1, in.LSB)
	}
	for i := range base.Value {
		base.Value[i] |= in.Value[i] & ToggleMask
	}
	return nil
}
