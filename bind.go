// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package covered

import (
	"reflect"
	"strings"

	"github.com/db47h/covered/expr"
	"github.com/db47h/covered/vector"
	"github.com/pkg/errors"
)

var (
	signalType = reflect.TypeOf((*expr.Signal)(nil))
	vectorType = reflect.TypeOf((*vector.Vector)(nil))
)

// Bind sets the fields of the struct pointed to by v to the signals of m.
//
// Fields to bind are identified by a `sig` tag. By default, the signal name
// is the field name in lowercase. A specific name can be given in the tag:
// `sig:"data_in"`. Fields must be of type *expr.Signal, or *vector.Vector to
// bind the signal value.
//
//	var io struct {
//		Clk   *expr.Signal  `sig:""`
//		State *vector.Vector `sig:"state_q"`
//	}
//	err := covered.Bind(m, &io)
//
func Bind(m *Module, v interface{}) error {
	pv := reflect.ValueOf(v)
	if pv.Kind() != reflect.Ptr || pv.Elem().Kind() != reflect.Struct {
		return errors.Errorf("Bind: unsupported type %T", v)
	}
	e := pv.Elem()
	typ := e.Type()
	n := typ.NumField()
	for i := 0; i < n; i++ {
		f := typ.Field(i)
		tag, ok := f.Tag.Lookup("sig")
		if !ok {
			continue
		}
		name := strings.ToLower(f.Name)
		if tag != "" {
			name = tag
		}
		s := m.Signal(name)
		if s == nil {
			return errors.Errorf("Bind: no signal %q in module %s for field %q", name, m.Name, f.Name)
		}
		fv := e.Field(i)
		if !fv.CanSet() {
			return errors.Errorf("Bind: field %q in %q is not settable", f.Name, typ.Name())
		}
		switch f.Type {
		case signalType:
			fv.Set(reflect.ValueOf(s))
		case vectorType:
			fv.Set(reflect.ValueOf(s.Value))
		default:
			return errors.Errorf("Bind: unsupported type %q for field %q in %q", f.Type, f.Name, typ.Name())
		}
	}
	return nil
}
