// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hdl lexes the small subset of Verilog syntax used by vector
// literals and stimulus files.
//
package hdl

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/db47h/covered/internal/lex"
	"github.com/pkg/errors"
)

// Tokens
const (
	EOF lex.Type = lex.EOF
	Raw lex.Type = iota
	Ident
	Int
	Number
	Equal
	At
)

// A Num is a lexed Verilog number literal.
//
// Width is 0 for unsized literals. Digits holds the digits with separators
// removed, most significant first, lower-cased.
//
type Num struct {
	Width  int
	Signed bool
	Base   byte
	Digits string
}

// Lexer returns a new lexer for literals and stimulus lines.
//
func Lexer(input string) lex.Interface {
	return lex.New(input, lexInit)
}

func lexInit(l *lex.Lexer) lex.StateFn {
	r := l.Next()
	switch {
	case r == lex.EOF:
		return lexEOF
	case unicode.IsSpace(r):
		l.AcceptWhile(unicode.IsSpace)
	case unicode.IsLetter(r) || r == '_' || r == '\\':
		return lexIdent
	case r == '=':
		l.Emit(Equal, "=")
	case r == '@':
		l.Emit(At, "@")
	case r == '#':
		// comment until end of input
		l.AcceptWhile(func(r rune) bool { return true })
	case '0' <= r && r <= '9':
		return lexNumber
	case r == '\'':
		l.Backup()
		return lexBased(0)
	default:
		l.Emit(Raw, string(r))
		return lexEOF
	}
	return nil
}

func isIdent(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' || r == '.'
}

func lexIdent(l *lex.Lexer) lex.StateFn {
	var buf strings.Builder
	buf.Grow(8)
	buf.WriteRune(l.Current())
	r := l.Next()
	for isIdent(r) {
		buf.WriteRune(r)
		r = l.Next()
	}
	l.Backup()
	l.Emit(Ident, buf.String())
	return nil
}

func lexNumber(l *lex.Lexer) lex.StateFn {
	var buf strings.Builder
	buf.WriteRune(l.Current())
	r := l.Next()
	for '0' <= r && r <= '9' || r == '_' {
		if r != '_' {
			buf.WriteRune(r)
		}
		r = l.Next()
	}
	l.Backup()
	if r == '\'' {
		w, err := strconv.Atoi(buf.String())
		if err != nil || w <= 0 {
			l.Emit(Raw, buf.String())
			return lexEOF
		}
		return lexBased(w)
	}
	i, err := strconv.Atoi(buf.String())
	if err != nil {
		l.Emit(Raw, buf.String())
		return lexEOF
	}
	l.Emit(Int, i)
	return nil
}

// lexBased lexes the 'base digits part of a literal.
//
func lexBased(width int) lex.StateFn {
	return func(l *lex.Lexer) lex.StateFn {
		l.Next() // '
		n := Num{Width: width}
		r := l.Next()
		if r == 's' || r == 'S' {
			n.Signed = true
			r = l.Next()
		}
		switch unicode.ToLower(r) {
		case 'b', 'o', 'd', 'h':
			n.Base = byte(unicode.ToLower(r))
		default:
			l.Emit(Raw, "'"+string(r))
			return lexEOF
		}
		var buf strings.Builder
		for r = l.Next(); isDigit(r); r = l.Next() {
			if r != '_' {
				buf.WriteRune(unicode.ToLower(r))
			}
		}
		l.Backup()
		if buf.Len() == 0 {
			l.Emit(Raw, "missing digits")
			return lexEOF
		}
		n.Digits = buf.String()
		l.Emit(Number, n)
		return nil
	}
}

func isDigit(r rune) bool {
	switch {
	case '0' <= r && r <= '9', 'a' <= r && r <= 'f', 'A' <= r && r <= 'F':
		return true
	}
	switch r {
	case 'x', 'X', 'z', 'Z', '?', '_':
		return true
	}
	return false
}

// lexEOF places the lexer in End-Of-File state.
// Once in this state, the lexer will only emit EOF.
//
func lexEOF(l *lex.Lexer) lex.StateFn {
	l.Emit(lex.EOF, "end of input")
	return lexEOF
}

// ParseNumber parses a single Verilog number literal. Plain integers are
// returned as unsized decimal literals.
//
func ParseNumber(s string) (Num, error) {
	l := Lexer(s)
	i := l.Lex()
	var n Num
	switch i.Type {
	case Number:
		n = i.Value.(Num)
	case Int:
		n = Num{Base: 'd', Digits: strconv.Itoa(i.Value.(int))}
	default:
		return Num{}, Error(s, i.Pos, "expected number")
	}
	if e := l.Lex(); e.Type != EOF {
		return Num{}, Error(s, e.Pos, "unexpected "+e.String())
	}
	return n, nil
}

// Error returns a parse error for input in at position pos.
//
func Error(in string, pos lex.Pos, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, pos+1, msg)
}
