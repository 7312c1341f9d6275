// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package covtest provides utility functions for testing expressions and
// designs.
//
package covtest

import (
	"math/rand"
	"testing"
	"time"

	"github.com/db47h/covered/expr"
	"github.com/db47h/covered/vector"
)

// Iterations is the number of random operand pairs tried by CompareOp.
//
var Iterations = 200

// RandVector returns a random vector of width w. If xz is true, bits are
// randomly drawn from 0, 1, X and Z; otherwise only 0 and 1.
//
func RandVector(r *rand.Rand, w int, xz bool) *vector.Vector {
	v := vector.New(w, 0)
	n := 2
	if xz {
		n = 4
	}
	for i := 0; i < w; i++ {
		v.SetBit(i, vector.Bit(r.Intn(n)))
	}
	return v
}

// Eval evaluates the binary (or unary if l is empty) expression op on the
// given literals and returns the resulting value.
//
func Eval(t testing.TB, op expr.Op, l, r string) *vector.Vector {
	t.Helper()
	var le, re *expr.Expr
	if l != "" {
		le = expr.NewStatic(vector.MustParse(l), 1, 0)
	}
	if r != "" {
		re = expr.NewStatic(vector.MustParse(r), 2, 0)
	}
	e := expr.New(op, le, re, 3, 0)
	if _, err := e.Operate(nil); err != nil {
		t.Fatal(err)
	}
	return e.Value
}

// CompareOp evaluates op on random known operands of widths lw and rw (at
// most 32 bits each) and compares the result with ref. Results are truncated
// to the width of the expression. Zero divisors are replaced by 1.
//
func CompareOp(t *testing.T, op expr.Op, lw, rw int, ref func(l, r uint64) uint64) {
	t.Helper()

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	l := expr.NewStatic(vector.New(lw, 0), 1, 0)
	r := expr.NewStatic(vector.New(rw, 0), 2, 0)
	e := expr.New(op, l, r, 3, 0)
	w := e.Value.Width
	mask := ^uint64(0)
	if w < 64 {
		mask = 1<<uint(w) - 1
	}
	for i := 0; i < Iterations; i++ {
		a := rnd.Uint64() & (1<<uint(lw) - 1)
		b := rnd.Uint64() & (1<<uint(rw) - 1)
		if b == 0 && (op == expr.Divide || op == expr.Mod) {
			b = 1
		}
		l.Value.FromInt(a)
		r.Value.FromInt(b)
		if _, err := e.Operate(nil); err != nil {
			t.Fatalf("%v(%d, %d): %v", op, a, b, err)
		}
		want := ref(a, b) & mask
		got, err := toUint(e.Value)
		if err != nil {
			t.Fatalf("%v(%d, %d): %v", op, a, b, err)
		}
		if got != want {
			t.Fatalf("%v(%d, %d) = %d, expected %d", op, a, b, got, want)
		}
	}
}

func toUint(v *vector.Vector) (uint64, error) {
	var n uint64
	for i := v.Width - 1; i >= 0; i-- {
		b := v.At(i)
		if b.Unknown() {
			return 0, vector.ErrUnknown
		}
		if i < 64 {
			n |= uint64(b) << uint(i)
		}
	}
	return n, nil
}
