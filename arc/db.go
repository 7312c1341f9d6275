// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package arc

import (
	"io"
	"strconv"
	"strings"

	"github.com/db47h/covered/vector"
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/pkg/errors"
)

// DBWrite writes the whole table buffer as a hex dump: two hex digits per
// byte, or a single ',' for a zero byte.
//
func (a *Arc) DBWrite(w io.Writer) error {
	var b strings.Builder
	b.Grow(2 * len(a.buf))
	for _, c := range a.buf {
		if c == 0 {
			b.WriteByte(',')
			continue
		}
		if c < 0x10 {
			b.WriteByte('0')
		}
		b.WriteString(strconv.FormatUint(uint64(c), 16))
	}
	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "write arc table")
}

// DBRead decodes a table dumped by DBWrite.
//
func DBRead(s string) (*Arc, error) {
	buf := make([]byte, 0, len(s)/2)
	for i := 0; i < len(s); {
		if s[i] == ',' {
			buf = append(buf, 0)
			i++
			continue
		}
		if i+2 > len(s) {
			return nil, errors.Errorf("arc table: truncated byte at offset %d", i)
		}
		c, err := strconv.ParseUint(s[i:i+2], 16, 8)
		if err != nil {
			return nil, errors.Errorf("arc table: invalid byte %q at offset %d", s[i:i+2], i)
		}
		buf = append(buf, byte(c))
		i += 2
	}
	if len(buf) < headerSize {
		return nil, errors.Errorf("arc table: short header (%d bytes)", len(buf))
	}
	a := &Arc{buf: buf}
	w, alloc, used := a.Width(), a.Cap(), a.Len()
	switch {
	case w <= 0 || w > MaxWidth:
		return nil, errors.Errorf("arc table: invalid state width %d", w)
	case used > alloc:
		return nil, errors.Errorf("arc table: %d entries used out of %d", used, alloc)
	case len(buf) != headerSize+alloc*entrySize(w):
		return nil, errors.Errorf("arc table: size %d does not match %d entries of width %d", len(buf), alloc, w)
	case buf[offSuppl]&^supplKnown != 0:
		return nil, errors.Errorf("arc table: invalid flags %#x", buf[offSuppl])
	}
	return a, nil
}

// Merge adds all transitions of in to a. Entries of in are converted to their
// state literals and replayed through Add. Both tables must have the same
// state width.
//
func (a *Arc) Merge(in *Arc) error {
	if a.Width() != in.Width() {
		return errors.Wrapf(ErrMismatch, "width %d vs %d", a.Width(), in.Width())
	}
	if in.Known() {
		a.buf[offSuppl] |= supplKnown
	}
	cache, err := simplelru.NewLRU[string, *vector.Vector](64, nil)
	if err != nil {
		return errors.Wrap(err, "merge")
	}
	state := func(v *vector.Vector) (*vector.Vector, error) {
		s := v.Format(vector.Hex)
		if p, ok := cache.Get(s); ok {
			return p, nil
		}
		p, err := vector.Parse(s)
		if err != nil {
			return nil, err
		}
		cache.Add(s, p)
		return p, nil
	}
	for _, e := range in.Entries() {
		from, err := state(e.From)
		if err != nil {
			return err
		}
		to, err := state(e.To)
		if err != nil {
			return err
		}
		a.Add(from, to, e.HitForward)
		if e.Bidir {
			a.Add(to, from, e.HitReverse)
		}
	}
	return nil
}
