// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package covered

import (
	"bufio"
	"io"
	"strings"

	"github.com/db47h/covered/expr"
	"github.com/db47h/covered/internal/hdl"
	"github.com/db47h/covered/vector"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// A Change sets a signal to a new value.
//
type Change struct {
	Signal string
	Value  *vector.Vector
	Line   int
}

// A Step is the set of changes applied at a given time.
//
type Step struct {
	Time    uint64
	Changes []Change
}

// Stimulus is a sequence of timesteps.
//
type Stimulus struct {
	Steps []Step
}

// ReadStimulus reads a stimulus file. Each line is either a timestep marker
// "@<time>", a signal assignment "<signal>=<literal>", blank, or a comment
// starting with '#'. Times must be strictly increasing. Assignments before
// the first marker belong to time 0.
//
//	# reset
//	@0
//	rst = 1
//	clk = 1'b0
//	@5
//	top.clk = 1'b1
//
func ReadStimulus(r io.Reader) (*Stimulus, error) {
	var st Stimulus
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		in := sc.Text()
		if err := st.parseLine(in, n); err != nil {
			return nil, errors.Wrapf(err, "line %d", n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read stimulus")
	}
	return &st, nil
}

func (st *Stimulus) step() *Step {
	if len(st.Steps) == 0 {
		st.Steps = append(st.Steps, Step{})
	}
	return &st.Steps[len(st.Steps)-1]
}

func (st *Stimulus) parseLine(in string, line int) error {
	l := hdl.Lexer(in)
	i := l.Lex()
	switch i.Type {
	case hdl.EOF:
		return nil
	case hdl.At:
		i = l.Lex()
		if i.Type != hdl.Int {
			return hdl.Error(in, i.Pos, "expected time")
		}
		t := uint64(i.Value.(int))
		switch n := len(st.Steps); {
		case n == 1 && t == 0 && st.Steps[0].Time == 0:
			// changes before the first marker already belong to time 0
		case n > 0 && t <= st.Steps[n-1].Time:
			return hdl.Error(in, i.Pos, "time must be increasing")
		default:
			st.Steps = append(st.Steps, Step{Time: t})
		}
	case hdl.Ident:
		name := i.Value.(string)
		if i = l.Lex(); i.Type != hdl.Equal {
			return hdl.Error(in, i.Pos, "expected '='")
		}
		i = l.Lex()
		var (
			v   *vector.Vector
			err error
		)
		switch i.Type {
		case hdl.Number:
			v, err = vector.FromNum(i.Value.(hdl.Num))
		case hdl.Int:
			v, err = vector.Parse(i.String())
		default:
			return hdl.Error(in, i.Pos, "expected value")
		}
		if err != nil {
			return hdl.Error(in, i.Pos, err.Error())
		}
		s := st.step()
		s.Changes = append(s.Changes, Change{Signal: name, Value: v, Line: line})
	default:
		return hdl.Error(in, i.Pos, "expected '@' or signal name")
	}
	if i = l.Lex(); i.Type != hdl.EOF {
		return hdl.Error(in, i.Pos, "unexpected "+i.String())
	}
	return nil
}

// LookupSignal returns the signal with the given name. Names are either
// "module.signal" or a bare signal name, searched in all modules in order.
//
func (d *Design) LookupSignal(name string) *expr.Signal {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		if m := d.Module(name[:i]); m != nil {
			return m.Signal(name[i+1:])
		}
		return nil
	}
	for _, m := range d.Modules {
		if s := m.Signal(name); s != nil {
			return s
		}
	}
	return nil
}

// Run applies each step of st to the design and simulates one timestep per
// step.
//
func (s *Simulator) Run(st *Stimulus) error {
	for _, step := range st.Steps {
		for _, c := range step.Changes {
			sig := s.design.LookupSignal(c.Signal)
			if sig == nil {
				return errors.Errorf("stimulus line %d: unknown signal %q", c.Line, c.Signal)
			}
			if sig.Set(c.Value) {
				if err := s.SignalChanged(sig); err != nil {
					return err
				}
			}
		}
		s.log.WithFields(logrus.Fields{"time": step.Time, "changes": len(step.Changes)}).Debug("step")
		if err := s.Simulate(); err != nil {
			return errors.Wrapf(err, "stimulus time %d", step.Time)
		}
	}
	return nil
}
