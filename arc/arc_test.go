// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package arc_test

import (
	"strings"
	"testing"

	"github.com/db47h/covered/arc"
	"github.com/db47h/covered/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func st(w int, n uint64) *vector.Vector {
	v := vector.New(w, 0)
	v.FromInt(n)
	return v
}

func dump(t *testing.T, a *arc.Arc) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, a.DBWrite(&b))
	return b.String()
}

func TestNew(t *testing.T) {
	assert.Panics(t, func() { arc.New(0) })
	assert.Panics(t, func() { arc.New(arc.MaxWidth + 1) })
	a := arc.New(3)
	assert.Equal(t, 3, a.Width())
	assert.Equal(t, 3, a.Cap())
	assert.Equal(t, 0, a.Len())
	assert.False(t, a.Known())
	// 7 byte header, 3 entries of 2 bytes each
	assert.Equal(t, "03,03"+strings.Repeat(",", 10), dump(t, a))
}

func TestAdd_idempotent(t *testing.T) {
	a := arc.New(4)
	a.Add(st(4, 1), st(4, 2), true)
	once := dump(t, a)
	a.Add(st(4, 1), st(4, 2), true)
	assert.Equal(t, once, dump(t, a))
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, a.TransitionHits())
}

func TestAdd_bidirectional(t *testing.T) {
	a := arc.New(2)
	a.Add(st(2, 1), st(2, 2), true)
	a.Add(st(2, 2), st(2, 1), true)
	require.Equal(t, 1, a.Len())
	es := a.Entries()
	assert.True(t, es[0].Bidir)
	assert.True(t, es[0].HitForward)
	assert.True(t, es[0].HitReverse)
	assert.Equal(t, "2'b01", es[0].From.String())
	assert.Equal(t, "2'b10", es[0].To.String())
	assert.Equal(t, 2, a.StateTotal())
	assert.Equal(t, 2, a.TransitionTotal())
	assert.Equal(t, 2, a.TransitionHits())
	assert.Equal(t, 2, a.StateHits())
}

func TestAdd_unknown(t *testing.T) {
	a := arc.New(2)
	a.Add(vector.MustParse("2'b1x"), st(2, 0), true)
	a.Add(st(2, 0), vector.MustParse("2'bz0"), false)
	assert.Equal(t, 0, a.Len())
	assert.False(t, a.Known())
}

func TestAdd_grow(t *testing.T) {
	a := arc.New(3)
	for i := uint64(0); i < 8; i++ {
		a.Add(st(3, i), st(3, (i+1)&7), true)
	}
	assert.Equal(t, 8, a.Len())
	assert.Equal(t, 9, a.Cap())
	assert.Equal(t, 8, a.StateTotal())
	assert.Equal(t, 8, a.TransitionTotal())
	for i, e := range a.Entries() {
		n, err := e.From.ToInt()
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
}

func TestStats(t *testing.T) {
	a := arc.New(2)
	// declared transitions
	a.Add(st(2, 0), st(2, 1), false)
	a.Add(st(2, 1), st(2, 2), false)
	a.Add(st(2, 2), st(2, 0), false)
	a.Add(st(2, 2), st(2, 3), false)
	sh, stot, ah, atot := a.Stats()
	assert.Equal(t, []int{0, 4, 0, 4}, []int{sh, stot, ah, atot})

	a.Add(st(2, 0), st(2, 1), true)
	a.Add(st(2, 1), st(2, 2), true)
	a.Add(st(2, 1), st(2, 0), true)
	sh, stot, ah, atot = a.Stats()
	assert.Equal(t, []int{3, 4, 3, 5}, []int{sh, stot, ah, atot})

	b := arc.New(2)
	b.Add(st(2, 0), st(2, 1), true)
	sh, stot, ah, atot = b.Stats()
	assert.Equal(t, []int{2, -1, 1, -1}, []int{sh, stot, ah, atot})
	assert.Equal(t, 2, b.StateTotal())
	assert.Equal(t, 1, b.TransitionTotal())
}

func TestDB(t *testing.T) {
	a := arc.New(4)
	a.Add(st(4, 3), st(4, 12), true)
	a.Add(st(4, 12), st(4, 3), false)
	a.Add(st(4, 12), st(4, 5), true)
	s := dump(t, a)
	r, err := arc.DBRead(s)
	require.NoError(t, err)
	assert.Equal(t, s, dump(t, r))
	assert.Equal(t, a.Entries(), r.Entries())
	assert.True(t, r.Known())
}

func TestDBRead_errors(t *testing.T) {
	for _, s := range []string{
		"",
		"01,01,,",
		"01,01,,,0",
		"01,01,,,,zz",
		",,01,,,,,",     // width 0
		"01,01,,02,,,,", // used > allocated
		"01,01,,,,,,,",  // extra byte
		"01,01,,,,02,",  // bad flags
	} {
		_, err := arc.DBRead(s)
		assert.Error(t, err, "%q", s)
	}
}

func TestMerge(t *testing.T) {
	a := arc.New(3)
	a.Add(st(3, 0), st(3, 1), true)
	a.Add(st(3, 1), st(3, 2), false)

	b := arc.New(3)
	b.Add(st(3, 2), st(3, 1), true)
	b.Add(st(3, 1), st(3, 2), false)
	b.Add(st(3, 0), st(3, 1), true)
	b.Add(st(3, 5), st(3, 6), true)

	require.NoError(t, a.Merge(b))
	es := a.Entries()
	require.Len(t, es, 3)
	assert.Equal(t, arc.Entry{From: st(3, 0), To: st(3, 1), HitForward: true}, strip(es[0]))
	assert.Equal(t, arc.Entry{From: st(3, 1), To: st(3, 2), HitReverse: true, Bidir: true}, strip(es[1]))
	assert.Equal(t, arc.Entry{From: st(3, 5), To: st(3, 6), HitForward: true}, strip(es[2]))
	assert.True(t, a.Known())

	assert.ErrorIs(t, a.Merge(arc.New(4)), arc.ErrMismatch)
}

// strip drops the vector history so that entries compare by value.
func strip(e arc.Entry) arc.Entry {
	f, t := vector.New(e.From.Width, 0), vector.New(e.To.Width, 0)
	n, _ := e.From.ToInt()
	f.FromInt(uint64(n))
	n, _ = e.To.ToInt()
	t.FromInt(uint64(n))
	e.From, e.To = f, t
	return e
}
