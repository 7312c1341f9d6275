// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package covered

import (
	"github.com/db47h/covered/expr"
	"github.com/pkg/errors"
)

// A Module holds the signals, expressions, statements and FSMs of a design
// module.
//
type Module struct {
	Name string
	File string

	Signals []*expr.Signal
	// Exprs lists all expressions, children before their parent.
	Exprs []*expr.Expr
	Stmts []*Statement
	FSMs  []*FSM

	sigs   map[string]*expr.Signal
	exprs  map[int]*expr.Expr
	stmts  map[*expr.Expr]*Statement
	nextID int
}

// NewModule returns a new empty module.
//
func NewModule(name, file string) *Module {
	return &Module{
		Name:   name,
		File:   file,
		sigs:   make(map[string]*expr.Signal),
		exprs:  make(map[int]*expr.Expr),
		stmts:  make(map[*expr.Expr]*Statement),
		nextID: 1,
	}
}

// NextID allocates a new expression id.
//
func (m *Module) NextID() int {
	id := m.nextID
	m.nextID++
	return id
}

// AddSignal adds signal s to the module. Signal names must be unique.
//
func (m *Module) AddSignal(s *expr.Signal) error {
	if _, ok := m.sigs[s.Name]; ok {
		return errors.Errorf("module %s: signal %s redefined", m.Name, s.Name)
	}
	m.sigs[s.Name] = s
	m.Signals = append(m.Signals, s)
	return nil
}

// Signal returns the signal with the given name or nil if not found.
//
func (m *Module) Signal(name string) *expr.Signal {
	return m.sigs[name]
}

// AddExpr adds all the nodes of the tree rooted at e that are not yet known
// to the module. Expression ids must be unique within the module.
//
func (m *Module) AddExpr(e *expr.Expr) error {
	return e.Walk(func(e *expr.Expr) error {
		if x, ok := m.exprs[e.ID]; ok {
			if x == e {
				return nil
			}
			return errors.Errorf("module %s: duplicate expression id %d", m.Name, e.ID)
		}
		m.exprs[e.ID] = e
		m.Exprs = append(m.Exprs, e)
		if e.ID >= m.nextID {
			m.nextID = e.ID + 1
		}
		return nil
	})
}

// Expr returns the expression with the given id.
//
func (m *Module) Expr(id int) (*expr.Expr, bool) {
	e, ok := m.exprs[id]
	return e, ok
}

// AddStatement adds s and its expression tree to the module.
//
func (m *Module) AddStatement(s *Statement) error {
	if !s.Expr.IsRoot() {
		return errors.Errorf("module %s: statement expression %v is not a root", m.Name, s.Expr)
	}
	if _, ok := m.stmts[s.Expr]; ok {
		return errors.Errorf("module %s: duplicate statement %v", m.Name, s.Expr)
	}
	if err := m.AddExpr(s.Expr); err != nil {
		return err
	}
	m.stmts[s.Expr] = s
	m.Stmts = append(m.Stmts, s)
	return nil
}

// Statement returns the statement owning the root expression e.
//
func (m *Module) Statement(e *expr.Expr) *Statement {
	return m.stmts[e]
}

// AddFSM adds f to the module.
//
func (m *Module) AddFSM(f *FSM) error {
	for _, e := range []*expr.Expr{f.From, f.To} {
		if x, ok := m.exprs[e.ID]; !ok || x != e {
			return errors.Errorf("module %s: FSM expression %v not in module", m.Name, e)
		}
	}
	m.FSMs = append(m.FSMs, f)
	return nil
}

// A Design is a set of modules.
//
type Design struct {
	Modules []*Module
	byName  map[string]*Module
}

// NewDesign returns a new design with the given modules.
//
func NewDesign(modules ...*Module) (*Design, error) {
	d := &Design{byName: make(map[string]*Module)}
	for _, m := range modules {
		if err := d.AddModule(m); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// AddModule adds m to the design. Module names must be unique.
//
func (d *Design) AddModule(m *Module) error {
	if _, ok := d.byName[m.Name]; ok {
		return errors.Errorf("module %s redefined", m.Name)
	}
	d.byName[m.Name] = m
	d.Modules = append(d.Modules, m)
	return nil
}

// Module returns the module with the given name or nil if not found.
//
func (d *Design) Module(name string) *Module {
	return d.byName[name]
}
