// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vlib_test

import (
	"strings"
	"testing"

	"github.com/db47h/covered"
	"github.com/db47h/covered/covtest"
	"github.com/db47h/covered/expr"
	"github.com/db47h/covered/vector"
	"github.com/db47h/covered/vlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, b *vlib.Builder) *covered.Design {
	t.Helper()
	m, err := b.Module()
	require.NoError(t, err)
	d, err := covered.NewDesign(m)
	require.NoError(t, err)
	return d
}

func TestMux(t *testing.T) {
	b := vlib.New("mux", "mux.v")
	b.Wire("sel", 1)
	b.Wire("a", 4)
	b.Wire("b", 4)
	b.Wire("out", 4)
	vlib.Mux(b, "sel", "a", "b", "out")
	d := build(t, b)
	sim, err := covered.NewSimulator(d)
	require.NoError(t, err)

	data := []struct {
		stim, out string
	}{
		{"a=4'd3\nb=4'd5\nsel=1", "4'b0011"},
		{"@1\nsel=0", "4'b0101"},
		{"@2\nb=4'd6", "4'b0110"},
		{"@3\nsel=1'bx", "4'b0x1x"},
	}
	for _, td := range data {
		st, err := covered.ReadStimulus(strings.NewReader(td.stim))
		require.NoError(t, err)
		require.NoError(t, sim.Run(st))
		assert.Equal(t, td.out, covtest.Value(t, d, "out"), td.stim)
	}
}

func TestGates(t *testing.T) {
	b := vlib.New("gates", "gates.v")
	for _, n := range []string{"a", "b", "c", "and", "or", "xor", "nota"} {
		b.Wire(n, 1)
	}
	vlib.Gate(b, expr.And, "and", "a", "b", "c")
	vlib.Gate(b, expr.Or, "or", "a", "b", "c")
	vlib.Gate(b, expr.Xor, "xor", "a", "b", "c")
	vlib.Not(b, "a", "nota")
	d := build(t, b)
	sim, err := covered.NewSimulator(d)
	require.NoError(t, err)

	step := 0
	for i := 0; i < 8; i++ {
		a, bb, c := i&1, i>>1&1, i>>2&1
		st := &covered.Stimulus{Steps: []covered.Step{{Time: uint64(step), Changes: []covered.Change{
			{Signal: "a", Value: bit(a)},
			{Signal: "b", Value: bit(bb)},
			{Signal: "c", Value: bit(c)},
		}}}}
		step++
		require.NoError(t, sim.Run(st))
		assert.Equal(t, bit(a&bb&c).String(), covtest.Value(t, d, "and"), "%d", i)
		assert.Equal(t, bit(a|bb|c).String(), covtest.Value(t, d, "or"), "%d", i)
		assert.Equal(t, bit(a^bb^c).String(), covtest.Value(t, d, "xor"), "%d", i)
		assert.Equal(t, bit(a^1).String(), covtest.Value(t, d, "nota"), "%d", i)
	}
	s := d.Summary()
	assert.Equal(t, s.Combs, s.CombsHit)
}

func bit(b int) *vector.Vector {
	v := vector.New(1, 0)
	v.FromInt(uint64(b))
	return v
}

func TestBuilder_selects(t *testing.T) {
	b := vlib.New("sel", "sel.v")
	b.Wire("a", 2)
	b.Wire("b", 4)
	b.Wire("i", 2)
	b.Wire("y", 5)
	b.Wire("z", 4)
	b.Wire("w", 1)
	b.Assign(b.Sig("y"), b.Concat(b.Sig("a"), b.Part("b", 1, 0), b.Const("1'b1")))
	b.Assign(b.Sig("z"), b.Repeat(2, b.Sig("a")))
	b.Assign(b.Sig("w"), b.Bit("b", b.Sig("i")))
	d := build(t, b)
	sim := covtest.Run(t, d, "a=2'b10\nb=4'b0110\ni=2")
	assert.Equal(t, "5'b10101", covtest.Value(t, d, "y"))
	assert.Equal(t, "4'b1010", covtest.Value(t, d, "z"))
	assert.Equal(t, "1'b1", covtest.Value(t, d, "w"))

	for _, td := range []struct{ stim, w string }{
		{"@1\ni=0", "1'b0"},
		{"@2\ni=1'bx", "1'bx"},
		{"@3\ni=1\nb=4'b0010", "1'b1"},
	} {
		st, err := covered.ReadStimulus(strings.NewReader(td.stim))
		require.NoError(t, err)
		require.NoError(t, sim.Run(st))
		assert.Equal(t, td.w, covtest.Value(t, d, "w"), td.stim)
	}
}

func TestBuilder_casez(t *testing.T) {
	b := vlib.New("dec", "dec.v")
	b.Wire("op", 4)
	b.Wire("y", 2)
	b.Always(b.Seq(
		b.Wait(b.Events(b.Change("op"))),
		b.Case(expr.Casez, b.Sig("op"),
			vlib.CaseItem{Value: b.Const("4'b1???"), Body: b.Set(b.Sig("y"), b.Const("2'd3"))},
			vlib.CaseItem{Value: b.Const("4'b01??"), Body: b.Set(b.Sig("y"), b.Const("2'd2"))},
			vlib.CaseItem{Value: b.Const("4'b001?")},
		),
	))
	d := build(t, b)
	sim, err := covered.NewSimulator(d)
	require.NoError(t, err)
	for _, td := range []struct{ stim, y string }{
		{"op=4'b1010", "2'b11"},
		{"@1\nop=4'b0111", "2'b10"},
		{"@2\nop=4'b0010", "2'b10"},
		{"@3\nop=4'b1101", "2'b11"},
	} {
		st, err := covered.ReadStimulus(strings.NewReader(td.stim))
		require.NoError(t, err)
		require.NoError(t, sim.Run(st))
		assert.Equal(t, td.y, covtest.Value(t, d, "y"), td.stim)
	}
}

func TestBuilder_errors(t *testing.T) {
	b := vlib.New("top", "top.v")
	b.Wire("a", 1)
	b.Wire("a", 2)
	_, err := b.Module()
	assert.Error(t, err, "duplicate signal")

	b = vlib.New("top", "top.v")
	b.Wire("a", 1)
	b.Assign(b.Sig("a"), b.Sig("nope"))
	_, err = b.Module()
	assert.Error(t, err, "undeclared signal")

	b = vlib.New("top", "top.v")
	b.Wire("s", 2)
	assert.Nil(t, b.FSM("s", vlib.Frag{}))
	_, err = b.Module()
	assert.Error(t, err, "empty FSM")

	assert.Panics(t, func() { b.Const("junk") })
	assert.Panics(t, func() { b.Concat() })
}

func TestBuilder_lines(t *testing.T) {
	b := vlib.New("top", "top.v")
	b.Wire("a", 1)
	e := b.At(12).Sig("a")
	assert.Equal(t, 12, e.Line)
	f := b.At(14).Set(b.Sig("a"), b.Const("1'b0"))
	assert.Equal(t, 14, f.Expr().Line)
	assert.False(t, f.Empty())
	assert.Same(t, f.Stmt().Expr, f.Expr())
}
