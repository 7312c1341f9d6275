// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package expr

import (
	"fmt"
	"io"

	"github.com/db47h/covered/internal/cdd"
	"github.com/db47h/covered/vector"
	"github.com/pkg/errors"
)

// A LookupFn returns the already parsed expression with the given id.
//
type LookupFn func(id int) (*Expr, bool)

func exprID(e *Expr) int {
	if e == nil {
		return 0
	}
	return e.ID
}

// DBWrite writes e as an expression record:
//
//	2 <id> <scope> <line> <suppl> <right-id> <left-id> [<vector>]
//
// The value vector is omitted for signal references. Children must be
// written before their parent.
//
func (e *Expr) DBWrite(w io.Writer, scope string, valueOnly bool) error {
	suppl := uint32(e.Op) | uint32(e.Flags&dbMask)
	_, err := fmt.Fprintf(w, "%d %d %s %d %x %d %d", cdd.TypeExpression, e.ID, scope, e.Line, suppl, exprID(e.Right), exprID(e.Left))
	if err == nil && !e.Op.IsRef() {
		if _, err = io.WriteString(w, " "); err == nil {
			err = e.Value.DBWrite(w, valueOnly)
		}
	}
	if err == nil {
		_, err = io.WriteString(w, "\n")
	}
	return errors.Wrapf(err, "write expression %v", e)
}

// DBRead reads an expression record from f, the record type having already
// been consumed. Children are resolved with lookup and must have been read
// before. It returns the expression and its scope.
//
func DBRead(f *cdd.Fields, lookup LookupFn) (*Expr, string, error) {
	id, err := f.Int()
	if err != nil {
		return nil, "", err
	}
	scope, err := f.Next()
	if err != nil {
		return nil, "", err
	}
	line, err := f.Int()
	if err != nil {
		return nil, "", err
	}
	suppl, err := f.Hex()
	if err != nil {
		return nil, "", err
	}
	op := Op(Flags(suppl) & opMask)
	if !op.Valid() {
		return nil, "", f.Errorf("%v", errors.Wrapf(ErrUnknownOp, "opcode %d", op))
	}
	if id <= 0 {
		return nil, "", f.Errorf("invalid expression id %d", id)
	}
	e := &Expr{ID: id, Op: op, Line: line, Flags: Flags(suppl) & dbMask}
	for _, c := range []**Expr{&e.Right, &e.Left} {
		cid, err := f.Int()
		if err != nil {
			return nil, "", err
		}
		if cid == 0 {
			continue
		}
		child, ok := lookup(cid)
		if !ok {
			return nil, "", f.Errorf("expression %d: child %d not defined", id, cid)
		}
		if child.Parent != nil {
			return nil, "", f.Errorf("expression %d: child %d already has a parent", id, cid)
		}
		*c = child
	}
	if !op.IsRef() {
		if e.Value, err = vector.DBRead(f); err != nil {
			return nil, "", err
		}
	}
	if !f.Done() {
		return nil, "", f.Errorf("trailing fields")
	}
	return link(e), scope, nil
}

// DBWrite writes s as a signal record:
//
//	1 <name> <scope> <vector> [<expr-id>...]
//
func (s *Signal) DBWrite(w io.Writer, scope string, valueOnly bool) error {
	_, err := fmt.Fprintf(w, "%d %s %s ", cdd.TypeSignal, s.Name, scope)
	if err == nil {
		err = s.Value.DBWrite(w, valueOnly)
	}
	for _, e := range s.Exprs {
		if err != nil {
			break
		}
		_, err = fmt.Fprintf(w, " %d", e.ID)
	}
	if err == nil {
		_, err = io.WriteString(w, "\n")
	}
	return errors.Wrapf(err, "write signal %s", s.Name)
}

// DBReadSignal reads a signal record from f, the record type having already
// been consumed, and binds the listed expressions to it. It returns the
// signal and its scope.
//
func DBReadSignal(f *cdd.Fields, lookup LookupFn) (*Signal, string, error) {
	name, err := f.Next()
	if err != nil {
		return nil, "", err
	}
	scope, err := f.Next()
	if err != nil {
		return nil, "", err
	}
	v, err := vector.DBRead(f)
	if err != nil {
		return nil, "", err
	}
	s := &Signal{Name: name, Value: v}
	for !f.Done() {
		id, err := f.Int()
		if err != nil {
			return nil, "", err
		}
		e, ok := lookup(id)
		if !ok {
			return nil, "", f.Errorf("signal %s: expression %d not defined", name, id)
		}
		if e.Sig != nil {
			return nil, "", f.Errorf("signal %s: expression %d already bound to %s", name, id, e.Sig.Name)
		}
		if err = s.Attach(e); err != nil {
			return nil, "", f.Errorf("%v", err)
		}
	}
	return s, scope, nil
}
