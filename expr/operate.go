// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package expr

import (
	"github.com/db47h/covered/vector"
	"github.com/pkg/errors"
)

type opFunc func(e *Expr, n Notifier) (bool, error)

var opTable [opCount]opFunc

func init() {
	opTable = [opCount]opFunc{
		Static:   opNone,
		Param:    opNone,
		Sig:      opSig,
		Xor:      bitwise(&vector.XorTable),
		And:      bitwise(&vector.AndTable),
		Or:       bitwise(&vector.OrTable),
		Nand:     bitwise(&vector.NandTable),
		Nor:      bitwise(&vector.NorTable),
		Nxor:     bitwise(&vector.NxorTable),
		Multiply: binary((*vector.Vector).Multiply),
		Add:      binary((*vector.Vector).Add),
		Subtract: binary((*vector.Vector).Subtract),
		Lshift:   binary((*vector.Vector).LShift),
		Rshift:   binary((*vector.Vector).RShift),
		Divide:   opDivide,
		Mod:      opDivide,
		Lt:       compare(vector.LT),
		Gt:       compare(vector.GT),
		Le:       compare(vector.LE),
		Ge:       compare(vector.GE),
		Eq:       compare(vector.EQ),
		Ne:       compare(vector.NE),
		Ceq:      compare(vector.CEQ),
		Cne:      compare(vector.CNE),
		Case:     compare(vector.CEQ),
		Casex:    compare(vector.CXEQ),
		Casez:    compare(vector.CZEQ),
		Lor:      logical(&vector.OrTable),
		Land:     logical(&vector.AndTable),
		Cond:     opCond,
		CondSel:  opCondSel,
		Uinv:     opInvert,
		Uand:     unary(&vector.AndTable, false),
		Uor:      unary(&vector.OrTable, false),
		Uxor:     unary(&vector.XorTable, false),
		Unand:    unary(&vector.AndTable, true),
		Unor:     unary(&vector.OrTable, true),
		Unxor:    unary(&vector.XorTable, true),
		Unot:     unary(&vector.OrTable, true),
		SbitSel:  opSbitSel,
		MbitSel:  opMbitSel,
		Expand:   opExpand,
		Concat:   opConcat,
		List:     opList,
		Pedge:    edge(func(last, b vector.Bit) bool { return last == vector.V0 || b == vector.V1 }),
		Nedge:    edge(func(last, b vector.Bit) bool { return last == vector.V1 || b == vector.V0 }),
		Aedge:    edge(func(last, b vector.Bit) bool { return true }),
		Eor:      opEor,
		Delay:    opTrue,
		Default:  opTrue,
		Assign:   opAssign,
		Bassign:  opAssign,
		Nassign:  opAssign,
	}
}

// Operate recomputes the value of e from its children. Assignments write
// their target signal and report it to n.
//
// After each evaluation, the expression is flagged as having been observed
// true or false depending on the OR reduction of its value, and its FSM
// recorder, if any, is called. Assignments call their recorder before
// writing their target.
//
func (e *Expr) Operate(n Notifier) (bool, error) {
	if !e.Op.Valid() || opTable[e.Op] == nil {
		return false, errors.Wrapf(ErrUnknownOp, "%v", e)
	}
	if e.Value == nil {
		return false, errors.Errorf("%v: unbound expression", e)
	}
	changed, err := opTable[e.Op](e, n)
	if err != nil {
		return false, errors.Wrapf(err, "%v", e)
	}
	switch vector.Reduce(e.Value, &vector.OrTable) {
	case vector.V1:
		e.Flags |= WasTrue
	case vector.V0:
		e.Flags |= WasFalse
	}
	if e.FSM != nil && !e.Op.IsAssign() {
		e.FSM.Record()
	}
	return changed, nil
}

func opNone(e *Expr, n Notifier) (bool, error) { return false, nil }

// opSig has nothing to compute: the value vector is shared with the signal.
func opSig(e *Expr, n Notifier) (bool, error) { return true, nil }

func opTrue(e *Expr, n Notifier) (bool, error) {
	return e.Value.SetScalar(vector.V1), nil
}

func bitwise(t *vector.OpTable) opFunc {
	return func(e *Expr, n Notifier) (bool, error) {
		return e.Value.BitwiseOp(e.Left.Value, e.Right.Value, t), nil
	}
}

func binary(f func(v, l, r *vector.Vector) bool) opFunc {
	return func(e *Expr, n Notifier) (bool, error) {
		return f(e.Value, e.Left.Value, e.Right.Value), nil
	}
}

func compare(mode vector.CompMode) opFunc {
	return func(e *Expr, n Notifier) (bool, error) {
		return e.Value.Compare(e.Left.Value, e.Right.Value, mode), nil
	}
}

func unary(t *vector.OpTable, invert bool) opFunc {
	return func(e *Expr, n Notifier) (bool, error) {
		return e.Value.UnaryOp(e.Right.Value, t, invert), nil
	}
}

func logical(t *vector.OpTable) opFunc {
	return func(e *Expr, n Notifier) (bool, error) {
		l := vector.Reduce(e.Left.Value, &vector.OrTable)
		r := vector.Reduce(e.Right.Value, &vector.OrTable)
		return e.Value.SetScalar(t.Apply(l, r)), nil
	}
}

// opDivide implements Divide and Mod on the low 32 bits of both operands. A
// wider divisor with only high bits set exceeds any such dividend.
func opDivide(e *Expr, n Notifier) (bool, error) {
	l, r := e.Left.Value, e.Right.Value
	if l.IsUnknown() || r.IsUnknown() {
		return e.Value.Fill(vector.VX), nil
	}
	if vector.Reduce(r, &vector.OrTable) == vector.V0 {
		return false, ErrDivideByZero
	}
	a, _ := l.ToInt()
	b, _ := r.ToInt()
	if b == 0 {
		if e.Op == Mod {
			return e.Value.FromInt(uint64(uint32(a))), nil
		}
		return e.Value.FromInt(0), nil
	}
	if e.Op == Mod {
		return e.Value.FromInt(uint64(uint32(a) % uint32(b))), nil
	}
	return e.Value.FromInt(uint64(uint32(a) / uint32(b))), nil
}

func opInvert(e *Expr, n Notifier) (bool, error) {
	return e.Value.Invert(e.Right.Value), nil
}

func opCond(e *Expr, n Notifier) (bool, error) {
	return e.Value.Assign(e.Right.Value), nil
}

// opCondSel selects one of its children from the condition held by the
// left child of its parent.
func opCondSel(e *Expr, n Notifier) (bool, error) {
	if e.Parent == nil || e.Parent.Op != Cond {
		return false, errors.New("COND_SEL without COND parent")
	}
	switch vector.Reduce(e.Parent.Left.Value, &vector.OrTable) {
	case vector.V1:
		return e.Value.Assign(e.Left.Value), nil
	case vector.V0:
		return e.Value.Assign(e.Right.Value), nil
	}
	return e.Value.Combine(e.Left.Value, e.Right.Value), nil
}

// selectBit updates the selection of a SbitSel node from its index.
func (e *Expr) selectBit() Selection {
	idx, err := e.Left.Value.ToInt()
	if err != nil {
		e.sel = Selection{LSB: -1, Width: 1}
	} else {
		e.sel = Selection{LSB: idx, Width: 1, Known: true}
	}
	return e.sel
}

func opSbitSel(e *Expr, n Notifier) (bool, error) {
	sv := e.Sig.Value
	s := e.selectBit()
	if !s.Known || s.LSB < sv.LSB || s.LSB >= sv.LSB+sv.Width {
		return e.Value.SetScalar(vector.VX), nil
	}
	return e.Value.SetScalar(sv.BitVal(s.LSB)), nil
}

func opMbitSel(e *Expr, n Notifier) (bool, error) {
	sv := e.Sig.Value
	changed := false
	for i := 0; i < e.Value.Width; i++ {
		b := vector.VX
		if p := e.sel.LSB + i; p >= sv.LSB && p < sv.LSB+sv.Width {
			b = sv.BitVal(p)
		}
		if e.Value.SetBit(i, b) {
			changed = true
		}
	}
	return changed, nil
}

func opExpand(e *Expr, n Notifier) (bool, error) {
	r := e.Right.Value
	if cnt, err := e.Left.Value.ToInt(); err != nil || cnt*r.Width != e.Value.Width {
		return e.Value.Fill(vector.VX), nil
	}
	changed := false
	for i := 0; i < e.Value.Width; i++ {
		if e.Value.SetBit(i, r.At(i%r.Width)) {
			changed = true
		}
	}
	return changed, nil
}

func opConcat(e *Expr, n Notifier) (bool, error) {
	return e.Value.Assign(e.Right.Value), nil
}

// opList places the left child above the right one.
func opList(e *Expr, n Notifier) (bool, error) {
	l, r := e.Left.Value, e.Right.Value
	changed := false
	for i := 0; i < e.Value.Width; i++ {
		b := vector.V0
		switch {
		case i < r.Width:
			b = r.At(i)
		case i-r.Width < l.Width:
			b = l.At(i - r.Width)
		}
		if e.Value.SetBit(i, b) {
			changed = true
		}
	}
	return changed, nil
}

func edge(hit func(last, b vector.Bit) bool) opFunc {
	return func(e *Expr, n Notifier) (bool, error) {
		b := e.Right.Value.At(0)
		r := vector.V0
		if e.last != b && hit(e.last, b) {
			r = vector.V1
		}
		e.last = b
		return e.Value.SetScalar(r), nil
	}
}

func opEor(e *Expr, n Notifier) (bool, error) {
	return e.Value.SetScalar(vector.OrTable.Apply(e.Left.Value.At(0), e.Right.Value.At(0))), nil
}

// opAssign writes the value of the right child to the signal referenced by
// the left child.
func opAssign(e *Expr, n Notifier) (bool, error) {
	changed := e.Value.Assign(e.Right.Value)
	lhs := e.Left
	if lhs == nil || lhs.Sig == nil {
		return false, errors.New("assignment target is not a signal")
	}
	if e.FSM != nil {
		e.FSM.Record()
	}
	var (
		sc  bool
		err error
	)
	switch lhs.Op {
	case Sig:
		sc = lhs.Sig.Set(e.Value)
	case SbitSel:
		s := lhs.selectBit()
		sv := lhs.Sig.Value
		if !s.Known || s.LSB < sv.LSB || s.LSB >= sv.LSB+sv.Width {
			// the write is lost
			return changed, nil
		}
		sc, err = lhs.Sig.SetBits(e.Value, s.LSB, 1)
	case MbitSel:
		s := lhs.sel
		sv := lhs.Sig.Value
		lo, hi := max(s.LSB, sv.LSB), min(s.LSB+s.Width, sv.LSB+sv.Width)
		if lo >= hi {
			return changed, nil
		}
		src := vector.New(s.Width, 0)
		src.Assign(e.Value)
		sc, err = sv.SetValue(src.Value, hi-lo, lo-s.LSB, lo)
	}
	if err != nil {
		return false, err
	}
	if sc && n != nil {
		if err = n.SignalChanged(lhs.Sig); err != nil {
			return false, err
		}
	}
	return changed, nil
}
