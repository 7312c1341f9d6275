// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package vector

import (
	"io"
	"strconv"
	"strings"

	"github.com/db47h/covered/internal/cdd"
	"github.com/pkg/errors"
)

// DBWrite writes v as a vector record: <width> <lsb> <hex>[,<hex>...]. If
// valueOnly is true, toggle and assigned flags are omitted.
//
func (v *Vector) DBWrite(w io.Writer, valueOnly bool) error {
	var b strings.Builder
	b.WriteString(strconv.Itoa(v.Width))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(v.LSB))
	b.WriteByte(' ')
	for i, n := range v.Value {
		if i > 0 {
			b.WriteByte(',')
		}
		if valueOnly {
			n &= ValueMask
		}
		b.WriteString(strconv.FormatUint(uint64(n), 16))
	}
	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "write vector")
}

// DBRead reads a vector record from f.
//
func DBRead(f *cdd.Fields) (*Vector, error) {
	width, err := f.Int()
	if err != nil {
		return nil, err
	}
	lsb, err := f.Int()
	if err != nil {
		return nil, err
	}
	if width <= 0 || width > MaxWidth {
		return nil, f.Errorf("%v", errors.Wrapf(ErrWidth, "%d", width))
	}
	s, err := f.Next()
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s, ",")
	if n := (width + 3) / 4; len(parts) != n {
		return nil, f.Errorf("vector of width %d needs %d nibbles, got %d", width, n, len(parts))
	}
	v := New(width, lsb)
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 16, 32)
		if err != nil || Nibble(n)&^(ValueMask|MetaMask) != 0 {
			return nil, f.Errorf("invalid nibble %q", p)
		}
		v.Value[i] = Nibble(n)
	}
	return v, nil
}
