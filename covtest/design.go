// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package covtest

import (
	"strings"
	"testing"

	"github.com/db47h/covered"
)

// Run builds a simulator for design d, runs the stimulus text through it and
// returns the simulator. It fails the test on error.
//
func Run(t testing.TB, d *covered.Design, stim string, opts ...covered.Option) *covered.Simulator {
	t.Helper()
	sim, err := covered.NewSimulator(d, opts...)
	if err != nil {
		t.Fatal(err)
	}
	st, err := covered.ReadStimulus(strings.NewReader(stim))
	if err != nil {
		t.Fatal(err)
	}
	if err = sim.Run(st); err != nil {
		t.Fatalf("%+v", err)
	}
	return sim
}

// Value returns the value of the named signal of d as a binary literal.
//
func Value(t testing.TB, d *covered.Design, name string) string {
	t.Helper()
	s := d.LookupSignal(name)
	if s == nil {
		t.Fatalf("no signal %s", name)
	}
	return s.Value.String()
}
