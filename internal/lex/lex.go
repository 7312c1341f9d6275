// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package lex provides a small state-function based lexer.
//
// A lexer is driven by StateFn functions. Each call to Lex runs state
// functions until one of them emits an Item.
//
package lex

import (
	"fmt"
	"unicode/utf8"
)

// Type is the type of a lexed item.
//
type Type int

// EOF is both the item type emitted at end of input and the rune returned by
// Next when the input is exhausted.
//
const EOF = -1

// Pos is a byte offset in the input.
//
type Pos int

// Item is a lexed token.
//
type Item struct {
	Type  Type
	Pos   Pos
	Value interface{}
}

func (i Item) String() string {
	if i.Type == EOF {
		return "EOF"
	}
	return fmt.Sprintf("%v", i.Value)
}

// Interface is implemented by lexers.
//
type Interface interface {
	Lex() Item
}

// A StateFn is a lexer state. It returns the next state or nil to restart
// from the initial state.
//
type StateFn func(l *Lexer) StateFn

// Lexer holds the lexer state.
//
type Lexer struct {
	input string
	init  StateFn
	state StateFn
	items []Item
	pos   int // position after current rune
	start int // start of current rune
	width int
	cur   rune
	tok   int // start of current token
}

// New returns a new lexer over input, starting in state init.
//
func New(input string, init StateFn) *Lexer {
	return &Lexer{input: input, init: init}
}

// Lex returns the next item.
//
func (l *Lexer) Lex() Item {
	for len(l.items) == 0 {
		if l.state == nil {
			l.state = l.init
			l.tok = l.pos
		}
		l.state = l.state(l)
	}
	i := l.items[0]
	l.items = l.items[1:]
	return i
}

// Next returns the next rune in the input or EOF.
//
func (l *Lexer) Next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		l.start = l.pos
		l.cur = EOF
		return EOF
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.start = l.pos
	l.pos += w
	l.width = w
	l.cur = r
	return r
}

// Current returns the last rune returned by Next.
//
func (l *Lexer) Current() rune {
	return l.cur
}

// Backup steps back one rune. It can only be called once per call to Next.
//
func (l *Lexer) Backup() {
	l.pos -= l.width
	l.width = 0
}

// Peek returns the next rune without consuming it.
//
func (l *Lexer) Peek() rune {
	r := l.Next()
	l.Backup()
	return r
}

// AcceptWhile consumes runes while f returns true.
//
func (l *Lexer) AcceptWhile(f func(r rune) bool) {
	for r := l.Next(); r != EOF && f(r); r = l.Next() {
	}
	l.Backup()
}

// Emit emits an item of type t with value v. The item position is the start
// of the current token.
//
func (l *Lexer) Emit(t Type, v interface{}) {
	l.items = append(l.items, Item{Type: t, Pos: Pos(l.tok), Value: v})
}
