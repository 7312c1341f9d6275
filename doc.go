// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package covered is the core of a Verilog code coverage tool.

A design is made of modules holding signals, expression trees, statement
graphs and finite state machines. The Simulator runs the statements of a
design against a stimulus and records coverage as a side effect of
evaluation:

	- line coverage: the Executed flag of statement expressions
	- toggle coverage: the toggle history of signal values
	- combinational coverage: the WasTrue and WasFalse flags of expressions
	- FSM coverage: the transition tables of state machines

Designs are saved to and loaded from coverage databases with Design.Write and
Read. Databases produced by several runs of the same design are combined with
Design.Merge.

Sub-packages:

	vector: 4-state bit vectors with toggle history
	expr:   expression trees and their evaluation
	arc:    FSM state transition tables
	vlib:   a module builder and a library of common blocks

A simple flip flop:

	b := vlib.New("top", "top.v")
	b.Wire("clk", 1)
	b.Wire("d", 1)
	b.Wire("q", 1)
	vlib.DFF(b, "clk", "d", "q")
	m, err := b.Module()
	// handle err
	d, err := covered.NewDesign(m)
	// handle err
	sim, err := covered.NewSimulator(d)
	// handle err
	st, err := covered.ReadStimulus(strings.NewReader("@0\nclk=0\nd=1\n@1\nclk=1\n"))
	// handle err
	err = sim.Run(st)

*/
package covered
