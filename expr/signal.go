// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package expr

import (
	"github.com/db47h/covered/vector"
	"github.com/pkg/errors"
)

// A Signal is a named design net or register. Its value vector accumulates
// toggle coverage.
//
type Signal struct {
	Name  string
	Value *vector.Vector
	// Exprs lists the expressions referencing the signal.
	Exprs []*Expr
}

// NewSignal returns a new signal of the given width and lsb. The signal is
// initially all X.
//
func NewSignal(name string, width, lsb int) *Signal {
	v := vector.New(width, lsb)
	for i := 0; i < width; i++ {
		v.Value[i>>2] |= vector.Nibble(vector.VX) << uint(2*(i&3))
	}
	return &Signal{Name: name, Value: v}
}

// Attach binds reference expression e to s.
//
// Sig expressions share the value vector of s. Select expressions get their
// own vector sized after the selection.
//
func (s *Signal) Attach(e *Expr) error {
	switch e.Op {
	case Sig:
		e.Value = s.Value
	case SbitSel:
		e.Value = vector.New(1, 0)
	case MbitSel:
		if e.Left == nil || e.Right == nil || e.Left.Value == nil || e.Right.Value == nil {
			return errors.Errorf("%v: missing part select bounds", e)
		}
		msb, err := e.Left.Value.ToInt()
		if err != nil {
			return errors.Wrapf(err, "%v: part select msb", e)
		}
		lsb, err := e.Right.Value.ToInt()
		if err != nil {
			return errors.Wrapf(err, "%v: part select lsb", e)
		}
		if msb < lsb {
			return errors.Errorf("%v: reversed part select [%d:%d]", e, msb, lsb)
		}
		e.Value = vector.New(msb-lsb+1, 0)
		e.sel = Selection{LSB: lsb, Width: msb - lsb + 1, Known: true}
	default:
		return errors.Errorf("%v: not a signal reference", e)
	}
	e.Sig = s
	s.Exprs = append(s.Exprs, e)
	return nil
}

// Set assigns v to s, zero-extended or truncated to the width of s. It
// returns true if any bit of s changed value.
//
func (s *Signal) Set(v *vector.Vector) bool {
	return s.Value.Assign(v)
}

// SetBits assigns the low bits of v to the bits [lsb, lsb+width) of s,
// lsb being an absolute bit position. It returns true if any bit changed.
//
func (s *Signal) SetBits(v *vector.Vector, lsb, width int) (bool, error) {
	src := v
	if v.Width < width {
		src = vector.New(width, 0)
		src.Assign(v)
	}
	return s.Value.SetValue(src.Value, width, 0, lsb)
}
