// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package expr_test

import (
	"testing"

	"github.com/db47h/covered/covtest"
	"github.com/db47h/covered/expr"
	"github.com/db47h/covered/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func TestOperate_compare(t *testing.T) {
	data := []struct {
		op     expr.Op
		lw, rw int
		ref    func(l, r uint64) uint64
	}{
		{expr.Add, 8, 8, func(l, r uint64) uint64 { return l + r }},
		{expr.Add, 12, 5, func(l, r uint64) uint64 { return l + r }},
		{expr.Subtract, 8, 8, func(l, r uint64) uint64 { return l - r }},
		{expr.Multiply, 8, 8, func(l, r uint64) uint64 { return l * r }},
		{expr.Multiply, 16, 3, func(l, r uint64) uint64 { return l * r }},
		{expr.Divide, 16, 8, func(l, r uint64) uint64 { return l / r }},
		{expr.Mod, 16, 8, func(l, r uint64) uint64 { return l % r }},
		{expr.And, 8, 8, func(l, r uint64) uint64 { return l & r }},
		{expr.Or, 8, 6, func(l, r uint64) uint64 { return l | r }},
		{expr.Xor, 8, 8, func(l, r uint64) uint64 { return l ^ r }},
		{expr.Nand, 8, 8, func(l, r uint64) uint64 { return ^(l & r) }},
		{expr.Nor, 8, 8, func(l, r uint64) uint64 { return ^(l | r) }},
		{expr.Nxor, 8, 8, func(l, r uint64) uint64 { return ^(l ^ r) }},
		{expr.Lshift, 16, 4, func(l, r uint64) uint64 { return l << r }},
		{expr.Rshift, 16, 4, func(l, r uint64) uint64 { return l >> r }},
		{expr.Lt, 8, 8, func(l, r uint64) uint64 { return b2u(l < r) }},
		{expr.Gt, 4, 4, func(l, r uint64) uint64 { return b2u(l > r) }},
		{expr.Le, 4, 4, func(l, r uint64) uint64 { return b2u(l <= r) }},
		{expr.Ge, 4, 4, func(l, r uint64) uint64 { return b2u(l >= r) }},
		{expr.Eq, 3, 3, func(l, r uint64) uint64 { return b2u(l == r) }},
		{expr.Ne, 3, 3, func(l, r uint64) uint64 { return b2u(l != r) }},
		{expr.Ceq, 3, 3, func(l, r uint64) uint64 { return b2u(l == r) }},
		{expr.Cne, 3, 3, func(l, r uint64) uint64 { return b2u(l != r) }},
		{expr.Lor, 2, 2, func(l, r uint64) uint64 { return b2u(l != 0 || r != 0) }},
		{expr.Land, 2, 2, func(l, r uint64) uint64 { return b2u(l != 0 && r != 0) }},
		{expr.List, 5, 7, func(l, r uint64) uint64 { return l<<7 | r }},
	}
	for _, d := range data {
		d := d
		t.Run(d.op.String(), func(t *testing.T) {
			covtest.CompareOp(t, d.op, d.lw, d.rw, d.ref)
		})
	}
}

func TestOperate_literals(t *testing.T) {
	data := []struct {
		op   expr.Op
		l, r string
		res  string
	}{
		{expr.And, "4'b0000", "4'b000x", "4'b0000"},
		{expr.And, "4'b0010", "4'b00z0", "4'b00x0"},
		{expr.Multiply, "4'bx01x", "4'b0101", "8'bxxxxxxxx"},
		{expr.Uor, "", "4'bxxxx", "1'bx"},
		{expr.Uor, "", "4'b0000", "1'b0"},
		{expr.Uor, "", "4'b0010", "1'b1"},
		{expr.Uand, "", "4'b1111", "1'b1"},
		{expr.Unand, "", "4'b1111", "1'b0"},
		{expr.Uxor, "", "4'b0111", "1'b1"},
		{expr.Unxor, "", "4'b0111", "1'b0"},
		{expr.Unor, "", "4'b0000", "1'b1"},
		{expr.Unot, "", "4'b0000", "1'b1"},
		{expr.Unot, "", "4'b0100", "1'b0"},
		{expr.Unot, "", "4'b0x00", "1'bx"},
		{expr.Uinv, "", "4'b01xz", "4'b10xx"},
		{expr.Land, "4'b0100", "2'b01", "1'b1"},
		{expr.Land, "4'b0000", "2'bx1", "1'b0"},
		{expr.Lor, "4'b0000", "1'bx", "1'bx"},
		{expr.Lor, "4'b0x00", "1'b1", "1'b1"},
		{expr.Eq, "4'b1x00", "4'b1000", "1'bx"},
		{expr.Ceq, "4'b1x00", "4'b1x00", "1'b1"},
		{expr.Expand, "2", "2'b10", "4'b1010"},
		{expr.Expand, "3", "1'bz", "3'bzzz"},
		{expr.List, "2'b11", "3'b0x1", "5'b110x1"},
		{expr.Concat, "", "3'b101", "3'b101"},
		{expr.Case, "4'b1010", "4'b1010", "1'b1"},
		{expr.Case, "4'b1010", "4'b1x10", "1'b0"},
		{expr.Casex, "4'b1010", "4'b1x1x", "1'b1"},
		{expr.Casez, "4'b1010", "4'b1z10", "1'b1"},
		{expr.Casez, "4'b1010", "4'b1x10", "1'b0"},
		{expr.Divide, "8'd7", "8'bx", "8'bxxxxxxxx"},
		{expr.Mod, "8'd7", "8'd3", "8'b00000001"},
		{expr.Divide, "8'd200", "4'd7", "8'b00011100"},
		{expr.Lshift, "4'b0011", "2'bx0", "4'bxxxx"},
		{expr.Rshift, "4'b1100", "8'd9", "4'b0000"},
		{expr.Delay, "", "8'd5", "1'b1"},
		{expr.Default, "", "", "1'b1"},
	}
	for _, d := range data {
		v := covtest.Eval(t, d.op, d.l, d.r)
		assert.Equal(t, d.res, v.String(), "%v(%s, %s)", d.op, d.l, d.r)
	}
}

func TestOperate_divideByZero(t *testing.T) {
	for _, op := range []expr.Op{expr.Divide, expr.Mod} {
		l := expr.NewStatic(vector.MustParse("8'd12"), 1, 0)
		r := expr.NewStatic(vector.MustParse("8'd0"), 2, 0)
		e := expr.New(op, l, r, 3, 0)
		_, err := e.Operate(nil)
		assert.ErrorIs(t, err, expr.ErrDivideByZero)
	}
}

func TestOperate_wideDivisor(t *testing.T) {
	data := []struct {
		op  expr.Op
		res int
	}{
		{expr.Divide, 0},
		{expr.Mod, 12},
	}
	for _, d := range data {
		l := expr.NewStatic(vector.MustParse("8'd12"), 1, 0)
		r := expr.NewStatic(vector.MustParse("40'h1_0000_0000"), 2, 0)
		e := expr.New(d.op, l, r, 3, 0)
		_, err := e.Operate(nil)
		require.NoError(t, err)
		n, err := e.Value.ToInt()
		require.NoError(t, err)
		assert.Equal(t, d.res, n, "%v", d.op)
	}

	l := expr.NewStatic(vector.MustParse("8'd12"), 1, 0)
	r := expr.NewStatic(vector.MustParse("40'h0"), 2, 0)
	_, err := expr.New(expr.Divide, l, r, 3, 0).Operate(nil)
	assert.ErrorIs(t, err, expr.ErrDivideByZero)
}

func TestOperate_unknownOp(t *testing.T) {
	e := &expr.Expr{Op: expr.Op(100), Value: vector.New(1, 0)}
	_, err := e.Operate(nil)
	assert.ErrorIs(t, err, expr.ErrUnknownOp)
}

func TestNew_width(t *testing.T) {
	s := func(w int) *expr.Expr { return expr.NewStatic(vector.New(w, 0), 0, 0) }
	data := []struct {
		op   expr.Op
		l, r *expr.Expr
		w    int
	}{
		{expr.Add, s(3), s(7), 7},
		{expr.Subtract, s(9), s(2), 9},
		{expr.And, s(4), s(4), 4},
		{expr.Multiply, s(4), s(5), 9},
		{expr.Lshift, s(6), s(32), 6},
		{expr.Lt, s(8), s(8), 1},
		{expr.Land, s(8), s(8), 1},
		{expr.Uand, nil, s(8), 1},
		{expr.Uinv, nil, s(8), 8},
		{expr.List, s(3), s(5), 8},
		{expr.Concat, nil, s(5), 5},
		{expr.Pedge, nil, s(1), 1},
		{expr.Eor, s(1), s(1), 1},
	}
	for _, d := range data {
		e := expr.New(d.op, d.l, d.r, 0, 0)
		assert.Equal(t, d.w, e.Value.Width, "%v", d.op)
	}
	assert.Panics(t, func() { expr.New(expr.Add, s(1), nil, 0, 0) })
	assert.Panics(t, func() { expr.New(expr.Sig, nil, nil, 0, 0) })
	assert.Panics(t, func() { expr.New(expr.Expand, expr.NewStatic(vector.MustParse("4'bx"), 0, 0), s(2), 0, 0) })
	assert.Panics(t, func() { expr.New(expr.Expand, expr.NewStatic(vector.MustParse("32'hffff_ffff"), 0, 0), s(2), 0, 0) })
}

func TestCond(t *testing.T) {
	c := expr.NewSignal("c", 1, 0)
	a := expr.NewSignal("a", 4, 0)
	b := expr.NewSignal("b", 4, 0)
	sel := expr.New(expr.CondSel,
		expr.NewRef(expr.Sig, a, nil, nil, 2, 1),
		expr.NewRef(expr.Sig, b, nil, nil, 3, 1), 4, 1)
	cond := expr.New(expr.Cond, expr.NewRef(expr.Sig, c, nil, nil, 1, 1), sel, 5, 1)
	assert.Equal(t, cond, sel.Parent)
	a.Set(vector.MustParse("4'b1100"))
	b.Set(vector.MustParse("4'b1010"))

	eval := func(cv string) string {
		c.Set(vector.MustParse(cv))
		_, err := sel.Operate(nil)
		require.NoError(t, err)
		_, err = cond.Operate(nil)
		require.NoError(t, err)
		return cond.Value.String()
	}
	assert.Equal(t, "4'b1100", eval("1'b1"))
	assert.Equal(t, "4'b1010", eval("1'b0"))
	assert.Equal(t, "4'b1xx0", eval("1'bx"))
}

func TestSbitSel(t *testing.T) {
	s := expr.NewSignal("s", 8, 4)
	s.Set(vector.MustParse("8'b1001_0110"))
	idx := expr.NewStatic(vector.New(8, 0), 1, 0)
	e := expr.NewRef(expr.SbitSel, s, idx, nil, 2, 0)
	require.Equal(t, []*expr.Expr{e}, s.Exprs)

	for i := 4; i < 12; i++ {
		idx.Value.FromInt(uint64(i))
		_, err := e.Operate(nil)
		require.NoError(t, err)
		assert.Equal(t, s.Value.BitVal(i), e.Value.At(0), "s[%d]", i)
		assert.Equal(t, expr.Selection{LSB: i, Width: 1, Known: true}, e.Selection())
	}

	idx.Value.FromInt(2)
	_, err := e.Operate(nil)
	require.NoError(t, err)
	assert.Equal(t, vector.VX, e.Value.At(0))

	idx.Value.Assign(vector.MustParse("8'b0000010x"))
	_, err = e.Operate(nil)
	require.NoError(t, err)
	assert.Equal(t, vector.VX, e.Value.At(0))
	assert.Equal(t, expr.Selection{LSB: -1, Width: 1}, e.Selection())
}

func TestMbitSel(t *testing.T) {
	s := expr.NewSignal("s", 8, 4)
	s.Set(vector.MustParse("8'b1001_0110"))
	e := expr.NewRef(expr.MbitSel, s,
		expr.NewStatic(vector.MustParse("9"), 1, 0),
		expr.NewStatic(vector.MustParse("6"), 2, 0), 3, 0)
	require.Equal(t, 4, e.Value.Width)
	_, err := e.Operate(nil)
	require.NoError(t, err)
	// bits [9:6] of s are bits [5:2] of the literal
	assert.Equal(t, "4'b0101", e.Value.String())

	assert.Panics(t, func() {
		expr.NewRef(expr.MbitSel, s,
			expr.NewStatic(vector.MustParse("2"), 1, 0),
			expr.NewStatic(vector.MustParse("6"), 2, 0), 3, 0)
	})
}

func TestEdges(t *testing.T) {
	seq := []string{"1'b0", "1'b1", "1'b1", "1'b0", "1'bx", "1'b1"}
	data := []struct {
		op  expr.Op
		res string
	}{
		{expr.Pedge, "010011"},
		{expr.Nedge, "100100"},
		{expr.Aedge, "110111"},
	}
	for _, d := range data {
		clk := expr.NewSignal("clk", 1, 0)
		e := expr.New(d.op, nil, expr.NewRef(expr.Sig, clk, nil, nil, 1, 0), 2, 0)
		res := ""
		for _, v := range seq {
			clk.Set(vector.MustParse(v))
			_, err := e.Operate(nil)
			require.NoError(t, err)
			res += e.Value.At(0).String()
		}
		assert.Equal(t, d.res, res, "%v", d.op)
	}
}

type notifier []*expr.Signal

func (n *notifier) SignalChanged(s *expr.Signal) error {
	*n = append(*n, s)
	return nil
}

func TestAssign(t *testing.T) {
	a := expr.NewSignal("a", 4, 0)
	b := expr.NewSignal("b", 4, 0)
	e := expr.New(expr.Bassign,
		expr.NewRef(expr.Sig, a, nil, nil, 1, 0),
		expr.NewRef(expr.Sig, b, nil, nil, 2, 0), 3, 0)
	b.Set(vector.MustParse("4'b0110"))

	var n notifier
	_, err := e.Operate(&n)
	require.NoError(t, err)
	assert.Equal(t, "4'b0110", a.Value.String())
	assert.Equal(t, notifier{a}, n)

	_, err = e.Operate(&n)
	require.NoError(t, err)
	assert.Len(t, n, 1)
}

func TestAssign_select(t *testing.T) {
	a := expr.NewSignal("a", 4, 0)
	a.Set(vector.MustParse("4'b0000"))
	idx := expr.NewStatic(vector.MustParse("3"), 1, 0)
	e := expr.New(expr.Nassign,
		expr.NewRef(expr.SbitSel, a, idx, nil, 2, 0),
		expr.NewStatic(vector.MustParse("1'b1"), 3, 0), 4, 0)
	var n notifier
	_, err := e.Operate(&n)
	require.NoError(t, err)
	assert.Equal(t, "4'b1000", a.Value.String())
	assert.Equal(t, expr.Selection{LSB: 3, Width: 1, Known: true}, e.Left.Selection())

	idx.Value.Assign(vector.MustParse("32'bx"))
	e.Right.Value.FromInt(0)
	_, err = e.Operate(&n)
	require.NoError(t, err)
	assert.Equal(t, "4'b1000", a.Value.String())
	assert.Len(t, n, 1)
	assert.False(t, e.Left.Selection().Known)

	m := expr.New(expr.Assign,
		expr.NewRef(expr.MbitSel, a,
			expr.NewStatic(vector.MustParse("2"), 5, 0),
			expr.NewStatic(vector.MustParse("1"), 6, 0), 7, 0),
		expr.NewStatic(vector.MustParse("2'b11"), 8, 0), 9, 0)
	_, err = m.Operate(&n)
	require.NoError(t, err)
	assert.Equal(t, "4'b1110", a.Value.String())
	assert.Len(t, n, 2)
}

type counter int

func (c *counter) Record() { *c++ }

func TestOperate_flags(t *testing.T) {
	r := expr.NewStatic(vector.New(4, 0), 1, 0)
	e := expr.New(expr.Uor, nil, r, 2, 0)
	var c counter
	e.FSM = &c

	r.Value.Fill(vector.VX)
	_, err := e.Operate(nil)
	require.NoError(t, err)
	assert.Zero(t, e.Flags&(expr.WasTrue|expr.WasFalse))

	r.Value.FromInt(0)
	_, err = e.Operate(nil)
	require.NoError(t, err)
	assert.Equal(t, expr.WasFalse, e.Flags&(expr.WasTrue|expr.WasFalse))

	r.Value.FromInt(4)
	_, err = e.Operate(nil)
	require.NoError(t, err)
	assert.Equal(t, expr.WasTrue|expr.WasFalse, e.Flags&(expr.WasTrue|expr.WasFalse))
	assert.Equal(t, counter(3), c)
}

func TestMerge(t *testing.T) {
	base := expr.New(expr.Uor, nil, expr.NewStatic(vector.New(4, 0), 1, 0), 2, 7)
	in := expr.New(expr.Uor, nil, expr.NewStatic(vector.New(4, 0), 1, 0), 2, 7)
	base.Flags |= expr.WasTrue | expr.Root
	in.Flags |= expr.WasFalse | expr.Executed | expr.LeftChanged
	require.NoError(t, expr.Merge(base, in))
	assert.Equal(t, expr.Root|expr.WasTrue|expr.WasFalse|expr.Executed, base.Flags)

	other := expr.New(expr.Uand, nil, expr.NewStatic(vector.New(4, 0), 1, 0), 2, 7)
	assert.ErrorIs(t, expr.Merge(base, other), expr.ErrMismatch)
	other = expr.New(expr.Uor, nil, expr.NewStatic(vector.New(4, 0), 1, 0), 2, 8)
	assert.ErrorIs(t, expr.Merge(base, other), expr.ErrMismatch)
	other = expr.New(expr.Uor, nil, expr.NewStatic(vector.New(4, 0), 1, 0), 3, 7)
	assert.ErrorIs(t, expr.Merge(base, other), expr.ErrMismatch)
}
