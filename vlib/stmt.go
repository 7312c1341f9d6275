// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vlib

import (
	"github.com/db47h/covered"
	"github.com/db47h/covered/expr"
	"github.com/pkg/errors"
)

type side int

const (
	onTrue side = 1 << iota
	onFalse
	onBoth = onTrue | onFalse
)

type tail struct {
	s    *covered.Statement
	side side
}

// A Frag is a fragment of a statement graph: its first statement and the
// statement exits not yet linked to a successor.
//
type Frag struct {
	first *covered.Statement
	tails []tail
}

// Stmt returns the first statement of f.
//
func (f Frag) Stmt() *covered.Statement { return f.first }

// Expr returns the root expression of the first statement of f.
//
func (f Frag) Expr() *expr.Expr {
	if f.first == nil {
		return nil
	}
	return f.first.Expr
}

// Empty returns true if f has no statements.
//
func (f Frag) Empty() bool { return f.first == nil }

func (f Frag) link(to *covered.Statement) {
	for _, t := range f.tails {
		if t.side&onTrue != 0 {
			t.s.NextTrue = to
		}
		if t.side&onFalse != 0 {
			t.s.NextFalse = to
		}
	}
}

func (b *Builder) stmt(e *expr.Expr) *covered.Statement {
	s := covered.NewStatement(e, 0)
	if err := b.m.AddStatement(s); err != nil {
		b.fail(err)
	}
	return s
}

func (b *Builder) single(e *expr.Expr) Frag {
	s := b.stmt(e)
	return Frag{first: s, tails: []tail{{s, onBoth}}}
}

func (b *Builder) assign(op expr.Op, lhs, rhs *expr.Expr) *expr.Expr {
	return b.Op(op, lhs, rhs)
}

// Set returns the blocking assignment lhs = rhs.
//
func (b *Builder) Set(lhs, rhs *expr.Expr) Frag {
	return b.single(b.assign(expr.Bassign, lhs, rhs))
}

// SetNB returns the non-blocking assignment lhs <= rhs.
//
func (b *Builder) SetNB(lhs, rhs *expr.Expr) Frag {
	return b.single(b.assign(expr.Nassign, lhs, rhs))
}

// Wait returns a statement that pauses its process until e is true. e is
// usually an event expression.
//
func (b *Builder) Wait(e *expr.Expr) Frag {
	s := b.stmt(e)
	s.Expr.Flags |= expr.StmtWait
	return Frag{first: s, tails: []tail{{s, onTrue}}}
}

// Delay returns the delay statement #n.
//
func (b *Builder) Delay(n int) Frag {
	return b.single(b.Unary(expr.Delay, b.Int(n)))
}

// Seq chains fragments. Empty fragments are skipped.
//
func (b *Builder) Seq(fs ...Frag) Frag {
	var r Frag
	for _, f := range fs {
		if f.Empty() {
			continue
		}
		if r.Empty() {
			r = f
			continue
		}
		r.link(f.first)
		r.tails = f.tails
	}
	return r
}

// If returns if (cond) then else els. els may be empty.
//
func (b *Builder) If(cond *expr.Expr, then, els Frag) Frag {
	s := b.stmt(cond)
	f := Frag{first: s}
	branch := func(br Frag, sd side) {
		if br.Empty() {
			f.tails = append(f.tails, tail{s, sd})
			return
		}
		if sd == onTrue {
			s.NextTrue = br.first
		} else {
			s.NextFalse = br.first
		}
		f.tails = append(f.tails, br.tails...)
	}
	branch(then, onTrue)
	branch(els, onFalse)
	return f
}

// A CaseItem is a case statement alternative. A nil Value denotes the
// default alternative.
//
type CaseItem struct {
	Value *expr.Expr
	Body  Frag
}

// Case returns a case statement over sel. op selects the comparison (Case,
// Casex or Casez). Each item compares a copy of sel. The default item, if
// any, must come last.
//
func (b *Builder) Case(op expr.Op, sel *expr.Expr, items ...CaseItem) Frag {
	var (
		f    Frag
		prev *covered.Statement
	)
	for i, it := range items {
		var e *expr.Expr
		if it.Value == nil {
			e = b.Op(expr.Default, nil, nil)
		} else {
			s := sel
			if i > 0 {
				s = b.clone(sel)
			}
			e = b.Op(op, s, it.Value)
		}
		s := b.stmt(e)
		if prev == nil {
			f.first = s
		} else {
			prev.NextFalse = s
		}
		prev = s
		if it.Body.Empty() {
			f.tails = append(f.tails, tail{s, onTrue})
		} else {
			s.NextTrue = it.Body.first
			f.tails = append(f.tails, it.Body.tails...)
		}
		if it.Value == nil {
			s.NextFalse = s.NextTrue
			return f
		}
	}
	if prev != nil {
		f.tails = append(f.tails, tail{prev, onFalse})
	}
	return f
}

// Always makes body a process that loops forever. The first statement of
// body is usually a Wait on an event.
//
func (b *Builder) Always(body Frag) *covered.Statement {
	if body.Empty() {
		return nil
	}
	body.first.Expr.Flags |= expr.StmtHead | expr.StmtStop
	body.link(body.first)
	return body.first
}

// Initial makes body a process that runs once.
//
func (b *Builder) Initial(body Frag) *covered.Statement {
	if body.Empty() {
		return nil
	}
	body.first.Expr.Flags |= expr.StmtHead
	return body.first
}

// Assign adds the continuous assignment lhs = rhs.
//
func (b *Builder) Assign(lhs, rhs *expr.Expr) *covered.Statement {
	s := b.stmt(b.assign(expr.Assign, lhs, rhs))
	s.Expr.Flags |= expr.StmtHead | expr.StmtContinuous
	return s
}

// FSM declares the state machine of the state signal, with next state
// given by the assignment starting fragment to. Legal transitions are given
// as pairs of state literals.
//
func (b *Builder) FSM(state string, to Frag, legal ...[2]string) *covered.FSM {
	if to.Empty() {
		b.fail(errors.Errorf("FSM %s: missing next state assignment", state))
		return nil
	}
	from := b.Sig(state)
	if err := b.m.AddExpr(from); err != nil {
		b.fail(err)
		return nil
	}
	f, err := covered.NewFSM(from, to.Expr())
	if err != nil {
		b.fail(err)
		return nil
	}
	for _, t := range legal {
		if err = f.AddTransition(t[0], t[1]); err != nil {
			b.fail(err)
			return nil
		}
	}
	if err = b.m.AddFSM(f); err != nil {
		b.fail(err)
		return nil
	}
	return f
}
