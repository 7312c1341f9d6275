// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vector

// An OpTable is a 2-input 4-state truth table indexed by a<<2 | b.
//
type OpTable [16]Bit

// Truth tables for bitwise operators. Z inputs behave as X.
//
var (
	AndTable  = OpTable{0, 0, 0, 0, 0, 1, 2, 2, 0, 2, 2, 2, 0, 2, 2, 2}
	OrTable   = OpTable{0, 1, 2, 2, 1, 1, 1, 1, 2, 1, 2, 2, 2, 1, 2, 2}
	XorTable  = OpTable{0, 1, 2, 2, 1, 0, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2}
	NandTable = OpTable{1, 1, 1, 1, 1, 0, 2, 2, 1, 2, 2, 2, 1, 2, 2, 2}
	NorTable  = OpTable{1, 0, 2, 2, 0, 0, 0, 0, 2, 0, 2, 2, 2, 0, 2, 2}
	NxorTable = OpTable{1, 0, 2, 2, 0, 1, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2}
)

// Apply returns the table entry for a and b.
//
func (t *OpTable) Apply(a, b Bit) Bit { return t[a<<2|b] }

func not(b Bit) Bit {
	switch b {
	case V0:
		return V1
	case V1:
		return V0
	}
	return VX
}

// BitwiseOp sets v to a op b, where op is given by table t. The shorter
// operand is zero-extended.
//
func (v *Vector) BitwiseOp(a, b *Vector, t *OpTable) bool {
	changed := false
	for i := 0; i < v.Width; i++ {
		if v.set(i, t.Apply(a.at(i), b.at(i))) {
			changed = true
		}
	}
	return changed
}

// Reduce folds t over all bits of src, from bit 0 up. A leading Z is read
// as X.
//
func Reduce(src *Vector, t *OpTable) Bit {
	r := src.At(0)
	if r == VZ {
		r = VX
	}
	for i := 1; i < src.Width; i++ {
		r = t.Apply(r, src.At(i))
	}
	return r
}

// UnaryOp sets v to the reduction of src by t, negated if invert is true.
// The reduction NAND of src is UnaryOp(src, &AndTable, true).
//
func (v *Vector) UnaryOp(src *Vector, t *OpTable, invert bool) bool {
	r := Reduce(src, t)
	if invert {
		r = not(r)
	}
	return v.SetScalar(r)
}

// SetScalar sets bit 0 of v to b and clears all other bits.
//
func (v *Vector) SetScalar(b Bit) bool {
	changed := v.set(0, b)
	for i := 1; i < v.Width; i++ {
		if v.set(i, V0) {
			changed = true
		}
	}
	return changed
}

// Invert sets v to the bitwise negation of src. Bits past the end of src are
// read as 0.
//
func (v *Vector) Invert(src *Vector) bool {
	changed := false
	for i := 0; i < v.Width; i++ {
		if v.set(i, not(src.at(i))) {
			changed = true
		}
	}
	return changed
}

// CompMode selects the comparison performed by Compare.
//
type CompMode int

// Comparison modes. CEQ and CNE compare X and Z bits literally. CXEQ treats X
// and Z bits of either operand as matching anything, CZEQ only Z bits.
//
const (
	LT CompMode = iota
	GT
	LE
	GE
	EQ
	NE
	CEQ
	CNE
	CXEQ
	CZEQ
)

func b2bit(b bool) Bit {
	if b {
		return V1
	}
	return V0
}

// Compare sets v to the 1-bit result of comparing l and r.
//
// Relational modes yield X whenever an operand holds an X or Z bit. EQ and NE
// yield a known result when two known bits differ, X otherwise if any bit is
// unknown. Case modes never yield X.
//
func (v *Vector) Compare(l, r *Vector, mode CompMode) bool {
	w := l.Width
	if r.Width > w {
		w = r.Width
	}
	var res Bit
	switch mode {
	case CEQ, CNE:
		eq := true
		for i := 0; i < w && eq; i++ {
			eq = l.at(i) == r.at(i)
		}
		res = b2bit(eq == (mode == CEQ))
	case CXEQ, CZEQ:
		eq := true
		for i := 0; i < w && eq; i++ {
			a, b := l.at(i), r.at(i)
			if mode == CXEQ {
				eq = a == b || a.Unknown() || b.Unknown()
			} else {
				eq = a == b || a == VZ || b == VZ
			}
		}
		res = b2bit(eq)
	case EQ, NE:
		res = V1
		for i := 0; i < w; i++ {
			a, b := l.at(i), r.at(i)
			if a.Unknown() || b.Unknown() {
				res = VX
			} else if a != b {
				res = V0
				break
			}
		}
		if mode == NE {
			res = not(res)
		}
	default:
		if l.IsUnknown() || r.IsUnknown() {
			res = VX
			break
		}
		cmp := 0
		for i := w - 1; i >= 0 && cmp == 0; i-- {
			a, b := l.at(i), r.at(i)
			if a > b {
				cmp = 1
			} else if a < b {
				cmp = -1
			}
		}
		switch mode {
		case LT:
			res = b2bit(cmp < 0)
		case GT:
			res = b2bit(cmp > 0)
		case LE:
			res = b2bit(cmp <= 0)
		case GE:
			res = b2bit(cmp >= 0)
		}
	}
	return v.SetScalar(res)
}

// add performs a ripple-carry addition of l and r (inverted if inv) with the
// given carry in. Once an X or Z bit is consumed, the current and all higher
// result bits are X.
func (v *Vector) add(l, r *Vector, inv bool, carry Bit) bool {
	changed := false
	for i := 0; i < v.Width; i++ {
		a, b := l.at(i), r.at(i)
		if inv {
			b = not(b)
		}
		var s Bit
		if carry == VX || a.Unknown() || b.Unknown() {
			s, carry = VX, VX
		} else {
			s = a ^ b ^ carry
			carry = a&b | carry&(a^b)
		}
		if v.set(i, s) {
			changed = true
		}
	}
	return changed
}

// Add sets v to l + r, truncated to the width of v.
//
func (v *Vector) Add(l, r *Vector) bool {
	return v.add(l, r, false, V0)
}

// Subtract sets v to l - r, computed as l + ^r + 1 at the width of v.
//
func (v *Vector) Subtract(l, r *Vector) bool {
	return v.add(l, r, true, V1)
}

// isInt returns true if all bits of v are known and v == n.
func (v *Vector) isInt(n uint64) bool {
	for i := 0; i < v.Width; i++ {
		b := v.At(i)
		if b.Unknown() {
			return false
		}
		var e Bit
		if i < 64 {
			e = Bit(n>>uint(i)) & 1
		}
		if b != e {
			return false
		}
	}
	return true
}

// Multiply sets v to l * r. A zero operand yields 0 and an operand equal to 1
// yields the other operand, even if it is unknown. Otherwise any X or Z bit
// yields an all X result.
//
func (v *Vector) Multiply(l, r *Vector) bool {
	switch {
	case l.isInt(0) || r.isInt(0):
		return v.FromInt(0)
	case l.isInt(1):
		return v.Assign(r)
	case r.isInt(1):
		return v.Assign(l)
	case Reduce(selfXor(l), &OrTable) != V0 || Reduce(selfXor(r), &OrTable) != V0:
		return v.Fill(VX)
	}
	a, _ := l.ToInt()
	b, _ := r.ToInt()
	return v.FromInt(uint64(uint32(a)) * uint64(uint32(b)))
}

// selfXor returns src ^ src, which is 0 for known bits and X for unknown ones.
func selfXor(src *Vector) *Vector {
	x := New(src.Width, 0)
	x.BitwiseOp(src, src, &XorTable)
	return x
}

// LShift sets v to l shifted left by r bits. An unknown shift amount yields
// all X; vacated bits are zero-filled.
//
func (v *Vector) LShift(l, r *Vector) bool {
	return v.shift(l, r, true)
}

// RShift sets v to l shifted right by r bits. An unknown shift amount yields
// all X; vacated bits are zero-filled.
//
func (v *Vector) RShift(l, r *Vector) bool {
	return v.shift(l, r, false)
}

func (v *Vector) shift(l, r *Vector, left bool) bool {
	n, err := r.ToInt()
	if err != nil {
		return v.Fill(VX)
	}
	changed := false
	for i := 0; i < v.Width; i++ {
		j := i + n
		if left {
			j = i - n
		}
		b := V0
		if j >= 0 && j < l.Width && n < v.Width {
			b = l.At(j)
		}
		if v.set(i, b) {
			changed = true
		}
	}
	return changed
}

// Combine sets v to the bitwise merge of a and b used for an unknown ternary
// condition: bits where a and b agree keep their value, others become X.
//
func (v *Vector) Combine(a, b *Vector) bool {
	changed := false
	for i := 0; i < v.Width; i++ {
		x, y := a.at(i), b.at(i)
		r := x
		if x != y || x == VZ {
			r = VX
		}
		if v.set(i, r) {
			changed = true
		}
	}
	return changed
}
