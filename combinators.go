/*
* Copyright (c) 2020 Ashley Jeffs
*
* Permission is hereby granted, free of charge, to any person obtaining a copy
* of this software and associated documentation files (the "Software"), to deal
* in the Software without restriction, including without limitation the rights
* to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
* copies of the Software, and to permit persons to whom the Software is
* furnished to do so, subject to the following conditions:
*
* The above copyright notice and this permission notice shall be included in
* all copies or substantial portions of the Software.
*
* THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
* IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
* FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
* AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
* LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
* OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
* THE SOFTWARE.
 */
/*
*
* k6 - a next-generation load testing tool
* Copyright (C) 2021 Load Impact
*
* This program is free software: you can redistribute it and/or modify
* it under the terms of the GNU Affero General Public License as
* published by the Free Software Foundation, either version 3 of the
* License, or (at your option) any later version.
*
* This program is distributed in the hope that it will be useful,
* but WITHOUT ANY WARRANTY; without even the implied warranty of
* MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
* GNU Affero General Public License for more details.
*
* You should have received a copy of the GNU Affero General Public License
* along with this program.  If not, see <http://www.gnu.org/licenses/>.
*
 */

// Package combinant implements the calling convention every compiled clause
// obeys: (input, accumulator, context, position) -> success | failure. This
// file defines that contract's vocabulary - Context, Position, Token, Acc,
// State and Success - plus the Parser handle returned by Compile.
package combinant

import (
	"bytes"
)

// Context carries caller-supplied key/value state through a parse. It is
// immutable from a clause's point of view: TraverseOps that want to modify
// it return a new Context rather than mutating this one in place.
type Context struct {
	values map[string]any
}

// NewContext returns an empty Context.
func NewContext() Context {
	return Context{}
}

// With returns a copy of c with key bound to value.
func (c Context) With(key string, value any) Context {
	values := make(map[string]any, len(c.values)+1)
	for k, v := range c.values {
		values[k] = v
	}
	values[key] = value
	return Context{values: values}
}

// Value returns the value bound to key, and whether it was present.
func (c Context) Value(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Position tracks where in the original input a clause is operating, for
// error reporting and line-aware combinators.
type Position struct {
	// Offset is the byte offset from the start of the original input.
	Offset int
	// Line is the 1-based line number, counting '\n' bytes consumed so far.
	Line int
	// Col is the 1-based column on Line.
	Col int
}

// advance returns the Position reached after consuming n bytes of in
// starting at p.
func advance(p Position, in []byte, n int) Position {
	for i := 0; i < n; i++ {
		if in[i] == '\n' {
			p.Line++
			p.Col = 1
		} else {
			p.Col++
		}
		p.Offset++
	}
	return p
}

// Token is one unit of output a clause emits into the accumulator. Leaf
// nodes emit codepoints or literal byte runs; TraverseNode rewrites the
// tokens its Inner program produced into whatever shape the caller wants
// (a parsed int, a string, a custom struct boxed as Token).
type Token = any

// Acc is the parse accumulator: a persistent, reverse-ordered cons list.
// Appending a token is an O(1) operation that conses a new head; Acc is
// never mutated once built, so the same tail can be shared across several
// extensions (e.g. one per Choice alternative) without copying. It is
// materialized into a forward-ordered slice only at traversal boundaries
// and when Parse returns (see slice and toSlice), which is where the O(n)
// reversal cost is paid.
type Acc struct {
	head Token
	tail *Acc
	len  int
}

// Len reports how many tokens are in the accumulator.
func (a *Acc) Len() int {
	if a == nil {
		return 0
	}
	return a.len
}

// push returns a new Acc with tok consed onto the head of a.
func (a *Acc) push(tok Token) *Acc {
	n := 1
	if a != nil {
		n = a.len + 1
	}
	return &Acc{head: tok, tail: a, len: n}
}

// slice materializes the last n tokens pushed onto a, in the order they
// were pushed (oldest first). It is the one place the reversal happens.
func (a *Acc) slice(n int) []Token {
	out := make([]Token, n)
	cur := a
	for i := n - 1; i >= 0; i-- {
		out[i] = cur.head
		cur = cur.tail
	}
	return out
}

// toSlice materializes the whole accumulator, oldest first.
func (a *Acc) toSlice() []Token {
	return a.slice(a.Len())
}

// State is the full mutable-by-copy state a clause threads through a parse:
// the remaining input, the accumulator built so far, the caller Context,
// and the current Position. Clauses never mutate a State in place; they
// return a new one.
type State struct {
	Input []byte
	Acc   *Acc
	Ctx   Context
	Pos   Position
}

// consume returns the State reached after matching n bytes emitting toks.
func (s State) consume(n int, toks ...Token) State {
	next := State{
		Input: s.Input[n:],
		Acc:   s.Acc,
		Ctx:   s.Ctx,
		Pos:   advance(s.Pos, s.Input, n),
	}
	for _, t := range toks {
		next.Acc = next.Acc.push(t)
	}
	return next
}

// Success is the positive outcome of running a clause: the State reached
// after the match.
type Success struct {
	State State
}

// clause is the compiled, recursion-free form every Node lowers to. It is
// never exported: callers only ever see the Parser wrapper built by
// Compile.
type clause func(s State) (Success, *Failure)

// Parser is a compiled, ready-to-run program. It is immutable and safe for
// concurrent use by multiple goroutines, same as the Program (IR) and
// clause it was built from.
type Parser struct {
	name     string
	program  Program
	run      clause
	exported bool
}

// Name returns the name the Parser was compiled with, or "" if anonymous.
func (p *Parser) Name() string {
	return p.name
}

// Exported reports whether the Parser was compiled with
// WithExportCombinator, i.e. whether it is meant to be callable from
// other definitions via Parsec rather than only as a direct entry point.
func (p *Parser) Exported() bool {
	return p.exported
}

// IR returns the Program this Parser was compiled from, for introspection
// or for driving Generate. The Program is kept only when the Parser was
// compiled with WithExportMetadata; otherwise IR returns an empty Program.
func (p *Parser) IR() Program {
	return p.program
}

// ParseOption configures a single Parse call.
type ParseOption func(*parseConfig)

type parseConfig struct {
	ctx Context
}

// WithContext seeds the Context a Parse call starts with.
func WithContext(ctx Context) ParseOption {
	return func(c *parseConfig) {
		c.ctx = ctx
	}
}

// Result is the outcome of a successful Parse: the tokens produced (oldest
// first), the unconsumed remainder, the Context reached, the Position
// reached, and how many bytes of the original input were consumed getting
// there. Consumed always equals len(input) - len(Rest), and Pos.Offset -
// initial Pos.Offset (always zero, for a top-level Parse call).
type Result struct {
	Tokens   []Token
	Rest     []byte
	Ctx      Context
	Pos      Position
	Consumed int
}

// Parse runs p against input from offset zero. On success it returns a
// Result carrying the tokens produced, the unconsumed remainder, the final
// Context and Position, and the number of bytes consumed. On failure it
// returns a zero Tokens slice alongside a *Failure, whose own Rest/Ctx/Pos
// describe the state at the point of failure - not the original input.
func (p *Parser) Parse(input []byte, opts ...ParseOption) (Result, error) {
	cfg := parseConfig{ctx: NewContext()}
	for _, opt := range opts {
		opt(&cfg)
	}

	start := State{Input: input, Ctx: cfg.ctx, Pos: Position{Line: 1, Col: 1}}
	ok, err := p.run(start)
	if err != nil {
		err.Consumed = len(input) - len(err.Rest)
		return Result{Rest: err.Rest, Ctx: err.Ctx, Pos: err.Pos, Consumed: err.Consumed}, err
	}

	return Result{
		Tokens:   ok.State.Acc.toSlice(),
		Rest:     ok.State.Input,
		Ctx:      ok.State.Ctx,
		Pos:      ok.State.Pos,
		Consumed: len(input) - len(ok.State.Input),
	}, nil
}

// ParseString is a convenience wrapper around Parse for textual input.
func (p *Parser) ParseString(input string, opts ...ParseOption) (Result, error) {
	return p.Parse([]byte(input), opts...)
}

// hasPrefix reports whether in begins with prefix, without allocating.
func hasPrefix(in, prefix []byte) bool {
	return bytes.HasPrefix(in, prefix)
}
