// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package vlib provides a builder for design modules and a library of
// reusable blocks built with it.
//
// Expression constructors panic on malformed trees, like expr.New does.
// Errors related to the module itself (unknown or duplicate signals,
// invalid FSMs) are collected and returned by Builder.Module.
//
package vlib

import (
	"github.com/db47h/covered"
	"github.com/db47h/covered/expr"
	"github.com/db47h/covered/vector"
	"github.com/pkg/errors"
)

// A Builder builds a single module.
//
type Builder struct {
	m    *covered.Module
	line int
	err  error
}

// New returns a builder for a new module.
//
func New(name, file string) *Builder {
	return &Builder{m: covered.NewModule(name, file), line: 1}
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Module returns the module built so far and the first error encountered.
//
func (b *Builder) Module() (*covered.Module, error) {
	if b.err != nil {
		return nil, errors.Wrapf(b.err, "module %s", b.m.Name)
	}
	return b.m, nil
}

// At sets the source line of subsequently created nodes.
//
func (b *Builder) At(line int) *Builder {
	b.line = line
	return b
}

// Wire declares a signal of the given width with lsb 0.
//
func (b *Builder) Wire(name string, width int) *expr.Signal {
	return b.Vector(name, width, 0)
}

// Vector declares a signal of the given width and lsb.
//
func (b *Builder) Vector(name string, width, lsb int) *expr.Signal {
	s := expr.NewSignal(name, width, lsb)
	if err := b.m.AddSignal(s); err != nil {
		b.fail(err)
	}
	return s
}

func (b *Builder) signal(name string) *expr.Signal {
	s := b.m.Signal(name)
	if s == nil {
		b.fail(errors.Errorf("undeclared signal %s", name))
		s = expr.NewSignal(name, 1, 0)
	}
	return s
}

// Sig returns a new reference to the named signal.
//
func (b *Builder) Sig(name string) *expr.Expr {
	return expr.NewRef(expr.Sig, b.signal(name), nil, nil, b.m.NextID(), b.line)
}

// Bit returns a single bit select name[idx].
//
func (b *Builder) Bit(name string, idx *expr.Expr) *expr.Expr {
	return expr.NewRef(expr.SbitSel, b.signal(name), idx, nil, b.m.NextID(), b.line)
}

// Part returns a part select name[msb:lsb].
//
func (b *Builder) Part(name string, msb, lsb int) *expr.Expr {
	return expr.NewRef(expr.MbitSel, b.signal(name), b.Int(msb), b.Int(lsb), b.m.NextID(), b.line)
}

// Const returns a constant expression for a Verilog literal. It panics if
// lit is not a valid literal.
//
func (b *Builder) Const(lit string) *expr.Expr {
	return expr.NewStatic(vector.MustParse(lit), b.m.NextID(), b.line)
}

// Int returns a 32 bits constant expression.
//
func (b *Builder) Int(n int) *expr.Expr {
	v := vector.New(32, 0)
	v.FromInt(uint64(n))
	return expr.NewStatic(v, b.m.NextID(), b.line)
}

// Param returns a parameter expression for a Verilog literal.
//
func (b *Builder) Param(lit string) *expr.Expr {
	return expr.NewParam(vector.MustParse(lit), b.m.NextID(), b.line)
}

// Op returns a binary operation.
//
func (b *Builder) Op(op expr.Op, l, r *expr.Expr) *expr.Expr {
	return expr.New(op, l, r, b.m.NextID(), b.line)
}

// Unary returns a unary operation.
//
func (b *Builder) Unary(op expr.Op, r *expr.Expr) *expr.Expr {
	return expr.New(op, nil, r, b.m.NextID(), b.line)
}

// Ternary returns c ? t : f.
//
func (b *Builder) Ternary(c, t, f *expr.Expr) *expr.Expr {
	return b.Op(expr.Cond, c, b.Op(expr.CondSel, t, f))
}

// Concat returns {e0, e1, ...}, e0 being the most significant part.
//
func (b *Builder) Concat(es ...*expr.Expr) *expr.Expr {
	if len(es) == 0 {
		panic("vlib.Concat: empty list")
	}
	l := es[len(es)-1]
	for i := len(es) - 2; i >= 0; i-- {
		l = b.Op(expr.List, es[i], l)
	}
	return b.Unary(expr.Concat, l)
}

// Repeat returns {n{e}}.
//
func (b *Builder) Repeat(n int, e *expr.Expr) *expr.Expr {
	return b.Op(expr.Expand, b.Int(n), e)
}

// Posedge returns @(posedge name).
//
func (b *Builder) Posedge(name string) *expr.Expr { return b.Unary(expr.Pedge, b.Sig(name)) }

// Negedge returns @(negedge name).
//
func (b *Builder) Negedge(name string) *expr.Expr { return b.Unary(expr.Nedge, b.Sig(name)) }

// Change returns @(name).
//
func (b *Builder) Change(name string) *expr.Expr { return b.Unary(expr.Aedge, b.Sig(name)) }

// Events returns the event list e0 or e1 or ...
//
func (b *Builder) Events(es ...*expr.Expr) *expr.Expr {
	if len(es) == 0 {
		panic("vlib.Events: empty list")
	}
	l := es[0]
	for _, e := range es[1:] {
		l = b.Op(expr.Eor, l, e)
	}
	return l
}

// clone returns a deep copy of e with fresh ids.
func (b *Builder) clone(e *expr.Expr) *expr.Expr {
	if e == nil {
		return nil
	}
	l, r := b.clone(e.Left), b.clone(e.Right)
	id := b.m.NextID()
	switch {
	case e.Op.IsRef():
		return expr.NewRef(e.Op, e.Sig, l, r, id, e.Line)
	case e.Op == expr.Static:
		return expr.NewStatic(e.Value.Clone(), id, e.Line)
	case e.Op == expr.Param:
		return expr.NewParam(e.Value.Clone(), id, e.Line)
	}
	return expr.New(e.Op, l, r, id, e.Line)
}
