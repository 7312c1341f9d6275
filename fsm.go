// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package covered

import (
	"github.com/db47h/covered/arc"
	"github.com/db47h/covered/expr"
	"github.com/db47h/covered/vector"
	"github.com/pkg/errors"
)

// An FSM tracks the transitions of a state variable. From holds the current
// state and To the next state, usually the assignment to the state variable.
// Each evaluation of To records the transition From -> To.
//
type FSM struct {
	From *expr.Expr
	To   *expr.Expr
	Arcs *arc.Arc
}

// NewFSM returns a new FSM and attaches it to the To expression.
//
func NewFSM(from, to *expr.Expr) (*FSM, error) {
	if from.Value == nil || to.Value == nil {
		return nil, errors.Errorf("FSM %v -> %v: unbound state expression", from, to)
	}
	if from.Value.Width != to.Value.Width {
		return nil, errors.Errorf("FSM %v -> %v: state width mismatch (%d vs %d)", from, to, from.Value.Width, to.Value.Width)
	}
	if to.FSM != nil {
		return nil, errors.Errorf("FSM %v -> %v: output expression already attached", from, to)
	}
	if w := to.Value.Width; w > arc.MaxWidth {
		return nil, errors.Errorf("FSM %v -> %v: state width %d too large", from, to, w)
	}
	f := &FSM{From: from, To: to, Arcs: arc.New(to.Value.Width)}
	to.FSM = f
	return f, nil
}

// Record adds the current transition to the arc table.
//
func (f *FSM) Record() {
	f.Arcs.Add(f.From.Value, f.To.Value, true)
}

// AddTransition declares a legal transition between two state literals.
//
func (f *FSM) AddTransition(from, to string) error {
	fv, err := vector.Parse(from)
	if err != nil {
		return err
	}
	tv, err := vector.Parse(to)
	if err != nil {
		return err
	}
	if fv.IsUnknown() || tv.IsUnknown() {
		return errors.Errorf("FSM transition %s -> %s: unknown state", from, to)
	}
	f.Arcs.Add(fv, tv, false)
	return nil
}
