// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vlib

import (
	"github.com/db47h/covered"
	"github.com/db47h/covered/expr"
)

// Gate adds a continuous assignment of a bitwise operation over the inputs.
//
//	assign out = in0 op in1 op ...
//
func Gate(b *Builder, op expr.Op, out string, in ...string) *covered.Statement {
	if len(in) == 0 {
		panic("vlib.Gate: no inputs")
	}
	e := b.Sig(in[0])
	for _, n := range in[1:] {
		e = b.Op(op, e, b.Sig(n))
	}
	return b.Assign(b.Sig(out), e)
}

// Not adds assign out = ~in.
//
func Not(b *Builder, in, out string) *covered.Statement {
	return b.Assign(b.Sig(out), b.Unary(expr.Uinv, b.Sig(in)))
}

// Mux adds a 2 to 1 multiplexer.
//
//	assign out = sel ? a : b
//
func Mux(b *Builder, sel, a, bb, out string) *covered.Statement {
	return b.Assign(b.Sig(out), b.Ternary(b.Sig(sel), b.Sig(a), b.Sig(bb)))
}

// DFF adds a clocked data flip flop.
//
//	always @(posedge clk) q <= d
//
func DFF(b *Builder, clk, d, q string) *covered.Statement {
	return b.Always(b.Seq(
		b.Wait(b.Posedge(clk)),
		b.SetNB(b.Sig(q), b.Sig(d)),
	))
}

// Counter adds a counter with synchronous reset.
//
//	always @(posedge clk)
//		if (rst) q <= 0;
//		else q <= q + 1;
//
func Counter(b *Builder, clk, rst, q string) *covered.Statement {
	return b.Always(b.Seq(
		b.Wait(b.Posedge(clk)),
		b.If(b.Sig(rst),
			b.SetNB(b.Sig(q), b.Int(0)),
			b.SetNB(b.Sig(q), b.Op(expr.Add, b.Sig(q), b.Int(1))),
		),
	))
}
