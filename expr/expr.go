// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package expr implements Verilog expression trees over 4-state vectors.
//
// An Expr is a node holding an opcode, a value vector and links to its
// children and parent. Leaves are constants or references to a Signal, whose
// value vector they share (or select from). Operate recomputes the value of a
// node from the current values of its children and records the coverage
// information used by line and combinational coverage reports.
//
package expr

import (
	"fmt"

	"github.com/db47h/covered/vector"
	"github.com/pkg/errors"
)

// Errors returned by expression evaluation and merging.
//
var (
	ErrDivideByZero = errors.New("division by zero")
	ErrUnknownOp    = errors.New("unknown expression opcode")
	ErrMismatch     = errors.New("expression mismatch")
)

// Flags holds the supplemental bits of an expression. The low 7 bits of the
// persisted value hold the opcode.
//
type Flags uint32

// Expression flags.
//
const (
	Root           Flags = 1 << (7 + iota) // root of an expression tree
	StmtHead                               // first statement of a statement tree
	LeftChanged                            // left subtree changed since last evaluation
	RightChanged                           // right subtree changed since last evaluation
	WasTrue                                // value observed non-zero
	WasFalse                               // value observed zero
	Executed                               // root statement executed
	StmtContinuous                         // continuous assignment
	StmtStop                               // loop head, ends a statement tree walk
	StmtWait                               // statement waits for its expression

	opMask Flags = 0x7f

	// Changed is the set of dirty flags.
	Changed = LeftChanged | RightChanged
	// MergeMask is the set of flags ORed together when merging databases.
	MergeMask = WasTrue | WasFalse | Executed
	// dbMask is the set of flags written to the database.
	dbMask = ^(opMask | Changed)
)

// A Recorder is notified each time the expression it is attached to is
// evaluated.
//
type Recorder interface {
	Record()
}

// A Notifier is told about signal values changed by assignments.
//
type Notifier interface {
	SignalChanged(s *Signal) error
}

// Expr is an expression tree node.
//
type Expr struct {
	ID    int
	Op    Op
	Line  int
	Flags Flags
	// Value is nil for signal references until bound to a signal.
	Value  *vector.Vector
	Left   *Expr
	Right  *Expr
	Parent *Expr
	// Sig is the referenced signal for Sig, SbitSel and MbitSel nodes.
	Sig *Signal
	// FSM, if not nil, is called after each evaluation.
	FSM Recorder

	sel  Selection
	last vector.Bit // last seen value for edge operators
}

// Selection describes the bits of a signal selected by a SbitSel or MbitSel
// expression. Known is false if the index could not be determined during the
// last evaluation, in which case LSB is -1.
//
type Selection struct {
	LSB   int
	Width int
	Known bool
}

func link(e *Expr) *Expr {
	if e.Left != nil {
		e.Left.Parent = e
	}
	if e.Right != nil {
		e.Right.Parent = e
	}
	e.last = vector.VX
	return e
}

// New returns a new expression node. Its value vector is sized from the
// operand values according to the opcode. It panics if op is not a valid
// non-reference opcode, or if a required child is missing.
//
func New(op Op, left, right *Expr, id, line int) *Expr {
	if !op.Valid() || op.IsRef() {
		panic(errors.Errorf("expr.New: invalid opcode %v", op))
	}
	e := link(&Expr{ID: id, Op: op, Line: line, Left: left, Right: right})
	w, err := e.width()
	if err == nil && w > vector.MaxWidth {
		err = errors.Wrapf(vector.ErrWidth, "%d", w)
	}
	if err != nil {
		panic(errors.Wrapf(err, "expr.New %v", e))
	}
	e.Value = vector.New(w, 0)
	if !op.IsAssign() && !op.IsEvent() {
		e.Value.Fill(vector.VX)
	}
	return e
}

// NewStatic returns a constant expression holding v.
//
func NewStatic(v *vector.Vector, id, line int) *Expr {
	return link(&Expr{ID: id, Op: Static, Line: line, Value: v})
}

// NewParam returns a parameter expression holding v.
//
func NewParam(v *vector.Vector, id, line int) *Expr {
	return link(&Expr{ID: id, Op: Param, Line: line, Value: v})
}

// NewRef returns a new reference to signal sig. For SbitSel, left is the
// index expression. For MbitSel, left and right are the constant msb and lsb
// expressions.
//
func NewRef(op Op, sig *Signal, left, right *Expr, id, line int) *Expr {
	if !op.IsRef() {
		panic(errors.Errorf("expr.NewRef: invalid opcode %v", op))
	}
	e := link(&Expr{ID: id, Op: op, Line: line, Left: left, Right: right})
	if err := sig.Attach(e); err != nil {
		panic(err)
	}
	return e
}

func (e *Expr) need(l, r bool) error {
	if l && e.Left == nil || l && e.Left.Value == nil {
		return errors.New("missing left operand")
	}
	if r && e.Right == nil || r && e.Right.Value == nil {
		return errors.New("missing right operand")
	}
	return nil
}

// width computes the width of e from its children.
func (e *Expr) width() (int, error) {
	op := e.Op
	switch {
	case op.IsUnary():
		if err := e.need(false, true); err != nil {
			return 0, err
		}
	case op.IsAssign():
		if err := e.need(true, true); err != nil {
			return 0, err
		}
		return e.Left.Value.Width, nil
	case op == Default:
	default:
		if err := e.need(true, true); err != nil {
			return 0, err
		}
	}
	switch op {
	case Xor, Divide, Mod, Add, Subtract, And, Or, Nand, Nor, Nxor, CondSel:
		return max(e.Left.Value.Width, e.Right.Value.Width), nil
	case Multiply:
		return e.Left.Value.Width + e.Right.Value.Width, nil
	case Lshift, Rshift:
		return e.Left.Value.Width, nil
	case Uinv, Concat, Cond:
		return e.Right.Value.Width, nil
	case List:
		return e.Left.Value.Width + e.Right.Value.Width, nil
	case Expand:
		n, err := e.Left.Value.ToInt()
		if err != nil || n <= 0 {
			return 0, errors.New("replication count must be a known positive constant")
		}
		return n * e.Right.Value.Width, nil
	}
	return 1, nil
}

// IsRoot returns true if e is the root of its tree.
//
func (e *Expr) IsRoot() bool { return e.Parent == nil }

// Selection returns the bits selected by a SbitSel or MbitSel expression
// during the last evaluation.
//
func (e *Expr) Selection() Selection { return e.sel }

// Walk calls fn for every node of the tree rooted at e, children first.
//
func (e *Expr) Walk(fn func(*Expr) error) error {
	if e == nil {
		return nil
	}
	if err := e.Left.Walk(fn); err != nil {
		return err
	}
	if err := e.Right.Walk(fn); err != nil {
		return err
	}
	return fn(e)
}

// True returns true if bit 0 of the value of e is 1.
//
func (e *Expr) True() bool {
	return e.Value != nil && e.Value.At(0) == vector.V1
}

func (e *Expr) String() string {
	if e.Sig != nil {
		return fmt.Sprintf("%v(%s)#%d@%d", e.Op, e.Sig.Name, e.ID, e.Line)
	}
	return fmt.Sprintf("%v#%d@%d", e.Op, e.ID, e.Line)
}

// Merge merges the coverage information of in into base. Both expressions
// must have the same id, opcode and line.
//
func Merge(base, in *Expr) error {
	if base.ID != in.ID || base.Op != in.Op || base.Line != in.Line {
		return errors.Wrapf(ErrMismatch, "%v vs %v", base, in)
	}
	if !base.Op.IsRef() && base.Value != nil && in.Value != nil {
		if err := vector.Merge(base.Value, in.Value); err != nil {
			return errors.Wrapf(err, "expression %v", base)
		}
	}
	base.Flags |= in.Flags & MergeMask
	return nil
}
