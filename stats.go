// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package covered

import "github.com/db47h/covered/expr"

// Summary holds coverage counters.
//
// FSM totals are -1 when the legal transitions of at least one FSM have not
// been declared.
//
type Summary struct {
	Lines    int // statements
	LinesHit int // statements executed

	Bits     int // signal bits
	Toggle01 int // bits toggled from 0 to 1
	Toggle10 int // bits toggled from 1 to 0

	Combs    int // measurable expressions
	CombsHit int // measurable expressions observed both true and false

	States    int
	StatesHit int
	Arcs      int
	ArcsHit   int
}

func addTotal(a, b int) int {
	if a < 0 || b < 0 {
		return -1
	}
	return a + b
}

// Add adds the counters of o to s.
//
func (s *Summary) Add(o Summary) {
	s.Lines += o.Lines
	s.LinesHit += o.LinesHit
	s.Bits += o.Bits
	s.Toggle01 += o.Toggle01
	s.Toggle10 += o.Toggle10
	s.Combs += o.Combs
	s.CombsHit += o.CombsHit
	s.States = addTotal(s.States, o.States)
	s.StatesHit += o.StatesHit
	s.Arcs = addTotal(s.Arcs, o.Arcs)
	s.ArcsHit += o.ArcsHit
}

// Summary returns the coverage counters of m.
//
func (m *Module) Summary() Summary {
	var s Summary
	for _, st := range m.Stmts {
		s.Lines++
		if st.Executed() {
			s.LinesHit++
		}
	}
	for _, sig := range m.Signals {
		s.Bits += sig.Value.Width
		t01, t10 := sig.Value.Toggles()
		s.Toggle01 += t01
		s.Toggle10 += t10
	}
	for _, e := range m.Exprs {
		if !e.Op.Measurable() {
			continue
		}
		s.Combs++
		if e.Flags&(expr.WasTrue|expr.WasFalse) == expr.WasTrue|expr.WasFalse {
			s.CombsHit++
		}
	}
	for _, f := range m.FSMs {
		sh, st, ah, at := f.Arcs.Stats()
		s.StatesHit += sh
		s.States = addTotal(s.States, st)
		s.ArcsHit += ah
		s.Arcs = addTotal(s.Arcs, at)
	}
	return s
}

// Summary returns the coverage counters of all modules in d.
//
func (d *Design) Summary() Summary {
	var s Summary
	for _, m := range d.Modules {
		s.Add(m.Summary())
	}
	return s
}
