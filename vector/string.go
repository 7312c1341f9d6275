// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vector

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/db47h/covered/internal/hdl"
	"github.com/pkg/errors"
)

// Base is the radix used to format vectors.
//
type Base byte

// Supported radices.
//
const (
	Binary  Base = 'b'
	Octal   Base = 'o'
	Decimal Base = 'd'
	Hex     Base = 'h'
)

const digits = "0123456789abcdef"

// String returns v as a sized binary Verilog literal.
//
func (v *Vector) String() string {
	return v.Format(Binary)
}

// Format returns v as a sized Verilog literal in the given base.
//
// Octal and hex digits covering only Z bits print as z, digits covering any
// other unknown bit as x. Decimal output of a vector holding unknown bits is
// a single x (or z if all bits are Z).
//
func (v *Vector) Format(base Base) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(v.Width))
	b.WriteByte('\'')
	b.WriteByte(byte(base))
	switch base {
	case Decimal:
		b.WriteString(v.decimal())
	case Octal:
		v.group(&b, 3)
	case Hex:
		v.group(&b, 4)
	default:
		for i := v.Width - 1; i >= 0; i-- {
			b.WriteString(v.At(i).String())
		}
	}
	return b.String()
}

func (v *Vector) group(b *strings.Builder, bits int) {
	n := (v.Width + bits - 1) / bits
	for d := n - 1; d >= 0; d-- {
		var val, x, z int
		for j := 0; j < bits; j++ {
			switch bit := v.at(d*bits + j); bit {
			case VX:
				x++
			case VZ:
				z++
			default:
				val |= int(bit) << uint(j)
			}
		}
		switch {
		case x == 0 && z == 0:
			b.WriteByte(digits[val])
		case z == min(bits, v.Width-d*bits):
			b.WriteByte('z')
		default:
			b.WriteByte('x')
		}
	}
}

func (v *Vector) decimal() string {
	x, z := 0, 0
	for i := 0; i < v.Width; i++ {
		switch v.At(i) {
		case VX:
			x++
		case VZ:
			z++
		}
	}
	switch {
	case z == v.Width:
		return "z"
	case x+z > 0:
		return "x"
	}
	n := new(big.Int)
	for i := 0; i < v.Width; i++ {
		if v.At(i) == V1 {
			n.SetBit(n, i, 1)
		}
	}
	return n.String()
}

// Parse returns the vector for a Verilog number literal such as 8'hff,
// 4'b01xz, 'o17, 12'd_1_0 or 42. Unsized literals are 32 bits wide. Literals
// are truncated or extended to their width; an X or Z most significant digit
// is extended with X or Z bits.
//
func Parse(s string) (*Vector, error) {
	n, err := hdl.ParseNumber(s)
	if err != nil {
		return nil, err
	}
	v, err := FromNum(n)
	return v, errors.Wrapf(err, "in %q", s)
}

// FromNum returns the vector for a lexed number literal.
//
func FromNum(n hdl.Num) (*Vector, error) {
	var err error
	width := n.Width
	if width == 0 {
		width = 32
	}
	if width < 0 || width > MaxWidth {
		return nil, errors.Wrapf(ErrWidth, "%d", width)
	}
	var bits []Bit // lsb first
	switch n.Base {
	case 'd':
		bits, err = decBits(n.Digits)
		if err != nil {
			return nil, err
		}
	default:
		per := map[byte]int{'b': 1, 'o': 3, 'h': 4}[n.Base]
		if per == 0 {
			return nil, errors.Errorf("invalid base %q", n.Base)
		}
		for i := len(n.Digits) - 1; i >= 0; i-- {
			c := n.Digits[i]
			var fill Bit
			val := -1
			switch c {
			case 'x':
				fill = VX
			case 'z', '?':
				fill = VZ
			default:
				val = strings.IndexByte(digits, c)
				if val < 0 || val >= 1<<uint(per) {
					return nil, errors.Errorf("invalid digit %q for base %c", c, n.Base)
				}
			}
			for j := 0; j < per; j++ {
				if val < 0 {
					bits = append(bits, fill)
				} else {
					bits = append(bits, Bit(val>>uint(j))&1)
				}
			}
		}
	}
	if len(bits) == 0 {
		return nil, errors.New("missing digits")
	}
	ext := V0
	if msb := bits[len(bits)-1]; msb.Unknown() {
		ext = msb
	}
	v := New(width, 0)
	for i := 0; i < width; i++ {
		b := ext
		if i < len(bits) {
			b = bits[i]
		}
		v.put(i, b)
	}
	return v, nil
}

func decBits(d string) ([]Bit, error) {
	switch d {
	case "x":
		return []Bit{VX}, nil
	case "z", "?":
		return []Bit{VZ}, nil
	}
	n, ok := new(big.Int).SetString(d, 10)
	if !ok {
		return nil, errors.Errorf("invalid decimal digits %q", d)
	}
	bits := make([]Bit, n.BitLen()+1)
	for i := range bits {
		bits[i] = Bit(n.Bit(i))
	}
	return bits, nil
}

// MustParse is like Parse but panics on error.
//
func MustParse(s string) *Vector {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}
