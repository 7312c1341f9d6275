// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package covered

import (
	"github.com/db47h/covered/expr"
)

// A Statement is a node of a statement graph. After its expression has been
// evaluated, execution continues with NextTrue or NextFalse depending on
// bit 0 of the expression value.
//
// The statement kind is held in the flags of its root expression:
// expr.StmtHead marks the first statement of a process, expr.StmtStop the
// loop point of an always block, expr.StmtContinuous a continuous assignment
// and expr.StmtWait an event control that pauses the process while false.
//
type Statement struct {
	Expr      *expr.Expr
	NextTrue  *Statement
	NextFalse *Statement

	// simulation state
	armed      bool
	queued     bool
	prev, next *Statement
}

// NewStatement returns a new statement for root expression e with the given
// kind flags.
//
func NewStatement(e *expr.Expr, flags expr.Flags) *Statement {
	e.Flags |= expr.Root | flags
	return &Statement{Expr: e}
}

func (s *Statement) is(f expr.Flags) bool { return s.Expr.Flags&f != 0 }

// Head returns true if s is the first statement of a process.
//
func (s *Statement) Head() bool { return s.is(expr.StmtHead) }

// Executed returns true if s has been executed at least once.
//
func (s *Statement) Executed() bool { return s.is(expr.Executed) }

func (s *Statement) String() string {
	return s.Expr.String()
}
