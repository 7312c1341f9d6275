// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package cdd holds the record types of the coverage database and a field
// reader shared by the record parsers.
//
package cdd

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Record types. The type is always the first field of a database line.
//
const (
	TypeSignal     = 1
	TypeExpression = 2
	TypeModule     = 3
	TypeStatement  = 4
	TypeInfo       = 5
	TypeFSM        = 6
)

// Version is the database format version written in the info record.
//
const Version = 1

// Fields reads whitespace separated fields from a database line.
//
type Fields struct {
	line string
	f    []string
	i    int
}

// Split splits line into fields.
//
func Split(line string) *Fields {
	return &Fields{line: line, f: strings.Fields(line)}
}

// Done returns true if all fields have been consumed.
//
func (f *Fields) Done() bool {
	return f.i >= len(f.f)
}

// Len returns the number of fields left.
//
func (f *Fields) Len() int {
	return len(f.f) - f.i
}

// Next returns the next field.
//
func (f *Fields) Next() (string, error) {
	if f.Done() {
		return "", f.Errorf("unexpected end of record")
	}
	s := f.f[f.i]
	f.i++
	return s, nil
}

// Int returns the next field as a decimal integer.
//
func (f *Fields) Int() (int, error) {
	s, err := f.Next()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, f.Errorf("field %d: invalid integer %q", f.i, s)
	}
	return n, nil
}

// Hex returns the next field as an unsigned hexadecimal integer.
//
func (f *Fields) Hex() (uint32, error) {
	s, err := f.Next()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, f.Errorf("field %d: invalid hex value %q", f.i, s)
	}
	return uint32(n), nil
}

// Errorf returns an error annotated with the record being parsed.
//
func (f *Fields) Errorf(format string, args ...interface{}) error {
	return errors.Wrapf(errors.Errorf(format, args...), "record %q", f.line)
}
