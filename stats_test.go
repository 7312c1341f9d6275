// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package covered_test

import (
	"testing"

	"github.com/db47h/covered"
	"github.com/stretchr/testify/assert"
)

func TestSummary_Add(t *testing.T) {
	a := covered.Summary{Lines: 2, LinesHit: 1, States: 4, StatesHit: 2, Arcs: 5, ArcsHit: 3}
	a.Add(covered.Summary{Lines: 3, LinesHit: 3, Bits: 8, Toggle01: 2, States: -1, StatesHit: 1, Arcs: -1, ArcsHit: 1})
	assert.Equal(t, covered.Summary{Lines: 5, LinesHit: 4, Bits: 8, Toggle01: 2, States: -1, StatesHit: 3, Arcs: -1, ArcsHit: 4}, a)

	a.Add(covered.Summary{States: 2, Arcs: 2})
	assert.Equal(t, -1, a.States, "unknown totals are sticky")
	assert.Equal(t, -1, a.Arcs)
}

func TestDesign_Summary(t *testing.T) {
	d, err := covered.NewDesign(dff(t).Modules[0], counter(t).Modules[0])
	if err != nil {
		t.Fatal(err)
	}
	s := d.Summary()
	assert.Equal(t, 6, s.Lines)
	assert.Equal(t, 0, s.LinesHit)
	assert.Equal(t, 3+6, s.Bits)
	assert.Equal(t, 0, s.States)
	assert.Equal(t, 0, s.Arcs)

	_, err = covered.NewDesign(dff(t).Modules[0], dff(t).Modules[0])
	assert.Error(t, err, "duplicate module")
}
