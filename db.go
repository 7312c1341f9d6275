// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package covered

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/db47h/covered/arc"
	"github.com/db47h/covered/expr"
	"github.com/db47h/covered/internal/cdd"
	"github.com/db47h/covered/vector"
	"github.com/pkg/errors"
)

// ErrDesignMismatch is returned when merging databases of different designs.
//
var ErrDesignMismatch = errors.New("design mismatch")

// maxLine is the maximum length of a database record.
const maxLine = 16 << 20

// Fingerprint returns a hash of the structure of d: modules, signal
// geometry, expression trees, statement graphs and FSMs. Coverage data does
// not contribute to it.
//
func (d *Design) Fingerprint() uint64 {
	h := xxhash.New()
	for _, m := range d.Modules {
		fmt.Fprintf(h, "m %s %s\n", m.Name, m.File)
		for _, s := range m.Signals {
			fmt.Fprintf(h, "s %s %d %d", s.Name, s.Value.Width, s.Value.LSB)
			for _, e := range s.Exprs {
				fmt.Fprintf(h, " %d", e.ID)
			}
			h.WriteString("\n")
		}
		for _, e := range m.Exprs {
			fmt.Fprintf(h, "e %d %d %d %d %d\n", e.ID, e.Op, e.Line, exprID(e.Left), exprID(e.Right))
		}
		for _, s := range m.Stmts {
			fmt.Fprintf(h, "t %d %d %d %x\n", s.Expr.ID, stmtID(s.NextTrue), stmtID(s.NextFalse),
				s.Expr.Flags&(expr.StmtHead|expr.StmtStop|expr.StmtWait|expr.StmtContinuous))
		}
		for _, f := range m.FSMs {
			fmt.Fprintf(h, "f %d %d %d\n", f.From.ID, f.To.ID, f.Arcs.Width())
		}
	}
	return h.Sum64()
}

func exprID(e *expr.Expr) int {
	if e == nil {
		return 0
	}
	return e.ID
}

func stmtID(s *Statement) int {
	if s == nil {
		return 0
	}
	return s.Expr.ID
}

// Write writes d to w in database format. If valueOnly is true, vectors are
// written without their toggle history.
//
func (d *Design) Write(w io.Writer, valueOnly bool) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d %x\n", cdd.TypeInfo, cdd.Version, d.Fingerprint())
	for _, m := range d.Modules {
		if err := m.write(bw, valueOnly); err != nil {
			return err
		}
	}
	return errors.Wrap(bw.Flush(), "write database")
}

func (m *Module) write(w io.Writer, valueOnly bool) error {
	if _, err := fmt.Fprintf(w, "%d %s %s\n", cdd.TypeModule, m.Name, m.File); err != nil {
		return errors.Wrap(err, "write module")
	}
	for _, e := range m.Exprs {
		if err := e.DBWrite(w, m.Name, valueOnly); err != nil {
			return err
		}
	}
	for _, s := range m.Signals {
		if err := s.DBWrite(w, m.Name, valueOnly); err != nil {
			return err
		}
	}
	for _, s := range m.Stmts {
		if _, err := fmt.Fprintf(w, "%d %d %s %d %d\n", cdd.TypeStatement, s.Expr.ID, m.Name, stmtID(s.NextTrue), stmtID(s.NextFalse)); err != nil {
			return errors.Wrap(err, "write statement")
		}
	}
	for _, f := range m.FSMs {
		if _, err := fmt.Fprintf(w, "%d %d %d 1 ", cdd.TypeFSM, f.From.ID, f.To.ID); err != nil {
			return errors.Wrap(err, "write FSM")
		}
		if err := f.Arcs.DBWrite(w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return errors.Wrap(err, "write FSM")
		}
	}
	return nil
}

type link struct {
	s    *Statement
	t, f int
}

type reader struct {
	d     *Design
	m     *Module
	links []link
	fp    uint64
	info  bool
}

// Read reads a design database.
//
func Read(r io.Reader) (*Design, error) {
	d, _ := NewDesign()
	rd := &reader{d: d}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := rd.record(line); err != nil {
			return nil, errors.Wrapf(err, "line %d", n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read database")
	}
	if !rd.info {
		return nil, errors.New("missing database info record")
	}
	if err := rd.endModule(); err != nil {
		return nil, err
	}
	if fp := d.Fingerprint(); fp != rd.fp {
		return nil, errors.Errorf("design fingerprint mismatch: %x, expected %x", fp, rd.fp)
	}
	return d, nil
}

func (rd *reader) record(line string) error {
	f := cdd.Split(line)
	typ, err := f.Int()
	if err != nil {
		return err
	}
	if typ == cdd.TypeInfo {
		return rd.readInfo(f)
	}
	if !rd.info {
		return f.Errorf("missing database info record")
	}
	if typ == cdd.TypeModule {
		return rd.readModule(f)
	}
	if rd.m == nil {
		return f.Errorf("record outside of module")
	}
	switch typ {
	case cdd.TypeExpression:
		e, scope, err := expr.DBRead(f, rd.m.Expr)
		if err != nil {
			return err
		}
		if err = rd.checkScope(f, scope); err != nil {
			return err
		}
		return rd.m.AddExpr(e)
	case cdd.TypeSignal:
		s, scope, err := expr.DBReadSignal(f, rd.m.Expr)
		if err != nil {
			return err
		}
		if err = rd.checkScope(f, scope); err != nil {
			return err
		}
		return rd.m.AddSignal(s)
	case cdd.TypeStatement:
		return rd.readStatement(f)
	case cdd.TypeFSM:
		return rd.readFSM(f)
	}
	return f.Errorf("unknown record type %d", typ)
}

func (rd *reader) checkScope(f *cdd.Fields, scope string) error {
	if scope != rd.m.Name {
		return f.Errorf("scope %s in module %s", scope, rd.m.Name)
	}
	return nil
}

func (rd *reader) readInfo(f *cdd.Fields) error {
	if rd.info {
		return f.Errorf("duplicate info record")
	}
	v, err := f.Int()
	if err != nil {
		return err
	}
	if v != cdd.Version {
		return f.Errorf("unsupported database version %d", v)
	}
	s, err := f.Next()
	if err != nil {
		return err
	}
	if _, err = fmt.Sscanf(s, "%x", &rd.fp); err != nil {
		return f.Errorf("invalid fingerprint %q", s)
	}
	rd.info = true
	return nil
}

func (rd *reader) readModule(f *cdd.Fields) error {
	if err := rd.endModule(); err != nil {
		return err
	}
	name, err := f.Next()
	if err != nil {
		return err
	}
	file, err := f.Next()
	if err != nil {
		return err
	}
	rd.m = NewModule(name, file)
	return rd.d.AddModule(rd.m)
}

func (rd *reader) readStatement(f *cdd.Fields) error {
	var ids [3]int
	for i := range ids {
		var err error
		if ids[i], err = f.Int(); err != nil {
			return err
		}
		if i == 0 {
			scope, err := f.Next()
			if err != nil {
				return err
			}
			if err = rd.checkScope(f, scope); err != nil {
				return err
			}
		}
	}
	e, ok := rd.m.Expr(ids[0])
	if !ok {
		return f.Errorf("statement expression %d not defined", ids[0])
	}
	s := NewStatement(e, 0)
	if err := rd.m.AddStatement(s); err != nil {
		return err
	}
	rd.links = append(rd.links, link{s, ids[1], ids[2]})
	return nil
}

// endModule links the statements of the current module.
func (rd *reader) endModule() error {
	if rd.m == nil {
		return nil
	}
	get := func(id int) (*Statement, error) {
		if id == 0 {
			return nil, nil
		}
		e, ok := rd.m.Expr(id)
		if !ok || rd.m.Statement(e) == nil {
			return nil, errors.Errorf("module %s: statement %d not defined", rd.m.Name, id)
		}
		return rd.m.Statement(e), nil
	}
	for _, l := range rd.links {
		var err error
		if l.s.NextTrue, err = get(l.t); err != nil {
			return err
		}
		if l.s.NextFalse, err = get(l.f); err != nil {
			return err
		}
	}
	rd.links = rd.links[:0]
	return nil
}

func (rd *reader) readFSM(f *cdd.Fields) error {
	var es [2]*expr.Expr
	for i := range es {
		id, err := f.Int()
		if err != nil {
			return err
		}
		var ok bool
		if es[i], ok = rd.m.Expr(id); !ok {
			return f.Errorf("FSM expression %d not defined", id)
		}
	}
	table, err := f.Int()
	if err != nil {
		return err
	}
	fsm, err := NewFSM(es[0], es[1])
	if err != nil {
		return f.Errorf("%v", err)
	}
	if table != 0 {
		s, err := f.Next()
		if err != nil {
			return err
		}
		a, err := arc.DBRead(s)
		if err != nil {
			return f.Errorf("%v", err)
		}
		if a.Width() != fsm.Arcs.Width() {
			return f.Errorf("arc table width %d for state width %d", a.Width(), fsm.Arcs.Width())
		}
		fsm.Arcs = a
	}
	if !f.Done() {
		return f.Errorf("trailing fields")
	}
	return rd.m.AddFSM(fsm)
}

// Merge merges the coverage data of in into d. Both designs must have the
// same structure.
//
func (d *Design) Merge(in *Design) error {
	if d.Fingerprint() != in.Fingerprint() {
		return errors.Wrap(ErrDesignMismatch, "fingerprints differ")
	}
	for _, im := range in.Modules {
		m := d.Module(im.Name)
		if m == nil {
			return errors.Wrapf(ErrDesignMismatch, "module %s", im.Name)
		}
		if err := m.merge(im); err != nil {
			return errors.Wrapf(err, "module %s", m.Name)
		}
	}
	return nil
}

func (m *Module) merge(in *Module) error {
	if len(m.Exprs) != len(in.Exprs) || len(m.Signals) != len(in.Signals) || len(m.FSMs) != len(in.FSMs) {
		return ErrDesignMismatch
	}
	for i, e := range in.Exprs {
		if err := expr.Merge(m.Exprs[i], e); err != nil {
			return err
		}
	}
	for i, s := range in.Signals {
		if m.Signals[i].Name != s.Name {
			return errors.Wrapf(ErrDesignMismatch, "signal %s vs %s", m.Signals[i].Name, s.Name)
		}
		if err := vector.Merge(m.Signals[i].Value, s.Value); err != nil {
			return errors.Wrapf(err, "signal %s", s.Name)
		}
	}
	for i, f := range in.FSMs {
		if err := m.FSMs[i].Arcs.Merge(f.Arcs); err != nil {
			return err
		}
	}
	return nil
}
