// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package covered

import (
	"github.com/db47h/covered/expr"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrNoConvergence is returned by Simulate when a timestep runs more
// statement walks than allowed.
//
var ErrNoConvergence = errors.New("simulation does not converge")

// DefaultMaxIterations is the default limit of statement walks per timestep.
//
const DefaultMaxIterations = 100000

// An Option configures a Simulator.
//
type Option func(*Simulator)

// WithLogger sets the logger used to trace the simulation.
//
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Simulator) { s.log = l }
}

// WithMaxIterations sets the maximum number of statement walks per timestep.
// Values <= 0 select DefaultMaxIterations.
//
func WithMaxIterations(n int) Option {
	return func(s *Simulator) {
		if n <= 0 {
			n = DefaultMaxIterations
		}
		s.maxIter = n
	}
}

// Simulator runs the statements of a design.
//
// Statements are scheduled through a pending queue. Signal changes mark the
// expressions depending on them as changed and queue the statements owning
// these expressions if they are waiting for a change. Simulate drains the
// queue once per timestep.
//
type Simulator struct {
	design  *Design
	log     logrus.FieldLogger
	maxIter int

	head, tail *Statement
	owner      map[*expr.Expr]*Statement
	statics    []*expr.Expr
	started    bool
	time       uint64
	walks      int
}

// NewSimulator returns a new simulator for design d. All process heads are
// queued for the first timestep.
//
func NewSimulator(d *Design, opts ...Option) (*Simulator, error) {
	s := &Simulator{
		design:  d,
		log:     logrus.StandardLogger(),
		maxIter: DefaultMaxIterations,
		owner:   make(map[*expr.Expr]*Statement),
	}
	for _, o := range opts {
		o(s)
	}
	for _, m := range d.Modules {
		for _, st := range m.Stmts {
			if o, ok := s.owner[st.Expr]; ok && o != st {
				return nil, errors.Errorf("module %s: expression %v owned by two statements", m.Name, st.Expr)
			}
			s.owner[st.Expr] = st
			st.armed, st.queued, st.prev, st.next = false, false, nil, nil
		}
		for _, e := range m.Exprs {
			if e.Op == expr.Static || e.Op == expr.Param {
				s.statics = append(s.statics, e)
			}
		}
	}
	for _, m := range d.Modules {
		for _, st := range m.Stmts {
			if st.Head() {
				st.armed = true
				s.enqueue(st)
			}
		}
	}
	return s, nil
}

// Time returns the number of timesteps simulated so far.
//
func (s *Simulator) Time() uint64 { return s.time }

// Pending returns the statements currently queued, in queue order.
//
func (s *Simulator) Pending() []*Statement {
	var l []*Statement
	for st := s.head; st != nil; st = st.next {
		l = append(l, st)
	}
	return l
}

func (s *Simulator) enqueue(st *Statement) {
	st.queued = true
	st.prev, st.next = s.tail, nil
	if s.tail != nil {
		s.tail.next = st
	} else {
		s.head = st
	}
	s.tail = st
}

func (s *Simulator) unlink(st *Statement) {
	if st.prev != nil {
		st.prev.next = st.next
	} else {
		s.head = st.next
	}
	if st.next != nil {
		st.next.prev = st.prev
	} else {
		s.tail = st.prev
	}
	st.prev, st.next, st.queued = nil, nil, false
}

// replace puts n in place of old in the queue.
func (s *Simulator) replace(old, n *Statement) {
	if n.queued {
		s.unlink(old)
		return
	}
	n.prev, n.next, n.queued = old.prev, old.next, true
	if n.prev != nil {
		n.prev.next = n
	} else {
		s.head = n
	}
	if n.next != nil {
		n.next.prev = n
	} else {
		s.tail = n
	}
	old.prev, old.next, old.queued = nil, nil, false
}

// SignalChanged marks all expressions bound to sig as changed. Assignment
// targets are skipped.
//
func (s *Simulator) SignalChanged(sig *expr.Signal) error {
	for _, e := range sig.Exprs {
		if p := e.Parent; p != nil && p.Op.IsAssign() && p.Left == e {
			continue
		}
		if err := s.ExprChanged(e); err != nil {
			return err
		}
	}
	return nil
}

// ExprChanged updates e then walks from e up to its root, flagging on each
// ancestor the side the change comes from. Both sides of a Cond are flagged.
// The walk stops at the first ancestor with both sides already flagged. When
// the root is reached, its statement is queued if it is waiting for a change.
//
func (s *Simulator) ExprChanged(e *expr.Expr) error {
	if _, err := e.Operate(s); err != nil {
		return err
	}
	for p := e.Parent; p != nil; e, p = p, p.Parent {
		if p.Flags&expr.Changed == expr.Changed {
			return nil
		}
		switch {
		case p.Op == expr.Cond:
			p.Flags |= expr.Changed
		case p.Left == e:
			p.Flags |= expr.LeftChanged
		default:
			p.Flags |= expr.RightChanged
		}
	}
	if st := s.owner[e]; st != nil && st.armed && !st.queued {
		s.enqueue(st)
	}
	return nil
}

// Expression evaluates the changed parts of the tree rooted at e and returns
// true if the value of e changed. In a continuous context, only nodes with a
// changed child are recomputed.
//
func (s *Simulator) Expression(e *expr.Expr, continuous bool) (bool, error) {
	if e == nil {
		return false, nil
	}
	lc := e.Flags&expr.LeftChanged != 0
	rc := e.Flags&expr.RightChanged != 0
	if lc || e.Op.AlwaysEvalLeft() {
		e.Flags &^= expr.LeftChanged
		if _, err := s.Expression(e.Left, continuous); err != nil {
			return false, err
		}
	}
	if rc || e.Op.AlwaysEvalRight() {
		e.Flags &^= expr.RightChanged
		if _, err := s.Expression(e.Right, continuous); err != nil {
			return false, err
		}
	}
	if lc || rc || !continuous || e.Op == expr.CondSel {
		return e.Operate(s)
	}
	return false, nil
}

// arm makes st wait for changes. Changes flagged while the statement was not
// waiting are consumed.
func (s *Simulator) arm(st *Statement) error {
	st.armed = true
	if st.Expr.Flags&expr.Changed != 0 {
		_, err := s.Expression(st.Expr, st.is(expr.StmtContinuous))
		return err
	}
	return nil
}

// Statement walks the statement graph from st. It returns the statement the
// walk paused on, or nil if the walk is over.
//
// A walk pauses on a wait statement whose expression is false, and is over
// when it reaches a statement without successor, a loop point or after a
// continuous assignment.
//
func (s *Simulator) Statement(st *Statement) (*Statement, error) {
	st.armed = false
	for {
		root := st.Expr
		cont := st.is(expr.StmtContinuous)
		if _, err := s.Expression(root, cont); err != nil {
			return nil, errors.Wrapf(err, "statement %v", st)
		}
		root.Flags |= expr.Executed
		s.log.WithFields(logrus.Fields{
			"time":  s.time,
			"stmt":  st,
			"value": root.Value,
		}).Trace("execute")
		if cont {
			st.armed = true
			return nil, nil
		}
		taken := root.True()
		next := st.NextFalse
		if taken {
			next = st.NextTrue
		}
		switch {
		case st.is(expr.StmtWait) && !taken:
			st.armed = true
			return st, nil
		case next == nil:
			return nil, nil
		case next.is(expr.StmtStop):
			return nil, s.arm(next)
		}
		st = next
	}
}

// Simulate runs all pending statements for one timestep. Statements queued
// while the queue is drained run in the same timestep.
//
func (s *Simulator) Simulate() error {
	if !s.started {
		s.started = true
		for _, e := range s.statics {
			if err := s.ExprChanged(e); err != nil {
				return err
			}
		}
	}
	s.walks = 0
	for st := s.head; st != nil; {
		if s.walks++; s.walks > s.maxIter {
			return errors.Wrapf(ErrNoConvergence, "time %d: %d statement walks", s.time, s.maxIter)
		}
		n, err := s.Statement(st)
		if err != nil {
			return err
		}
		next := st.next
		switch {
		case n == nil:
			s.unlink(st)
		case n != st:
			s.replace(st, n)
		}
		st = next
	}
	s.log.WithFields(logrus.Fields{"time": s.time, "walks": s.walks}).Debug("timestep done")
	s.time++
	return nil
}
