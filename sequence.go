package combinant

import "fmt"

// Label replaces the failure reason produced inside inner with
// "expected " + text, provided the failure occurred at inner's entry
// offset (i.e. inner failed before consuming any input; a failure further
// into a fused bound prefix keeps its own reason).
func Label(inner Program, text string) (Program, error) {
	if inner.Empty() {
		return Program{}, NewBuildError("label body must be non-empty")
	}
	return Empty().then(LabelNode{Inner: inner, Text: text}), nil
}

// Traverse rewrites, after inner succeeds, the tokens it produced (in
// forward production order) and/or the context, by applying ops in
// order. Phase selects whether ops observe the position from before
// (PhasePre) or after (PhasePost) inner ran.
func Traverse(inner Program, phase Phase, ops ...TraverseOp) (Program, error) {
	if inner.Empty() {
		return Program{}, NewBuildError("traverse body must be non-empty")
	}
	return Empty().then(TraverseNode{Inner: inner, Phase: phase, Ops: ops}), nil
}

// TraverseConstant ignores whatever inner's tokens were and substitutes a
// fixed token list, mutating context normally via ops. Nested
// TraverseConstant nodes are logically coalescible since only the
// outermost one's Constant value is ever observed (adjacent ones in a Seq
// each emit their own Constant); combinant does not special-case
// the coalescing at build time since the compiler already runs each in
// O(1) regardless.
func TraverseConstant(inner Program, constant []Token, ops ...TraverseOp) (Program, error) {
	return Empty().then(TraverseNode{Inner: inner, Phase: PhaseConstant, Constant: constant, Ops: ops}), nil
}

// Lookahead builds a zero-width assertion: positive requires inner to
// succeed, negative requires it to fail. Neither consumes input or
// mutates acc/ctx/position on the successful branch.
func Lookahead(inner Program, sense Sense) (Program, error) {
	if inner.Empty() {
		return Program{}, NewBuildError("lookahead body must be non-empty")
	}
	return Empty().then(LookaheadNode{Inner: inner, Sense: sense}), nil
}

// LookaheadNot is the common case of a negative lookahead: "fail if inner
// would match here", used to bound a repeat before a closing delimiter.
func LookaheadNot(inner Program) Program {
	p, err := Lookahead(inner, SenseNegative)
	if err != nil {
		panic(err)
	}
	return p
}

// Eventually discards bytes one at a time until inner matches, or fails
// at end of input.
func Eventually(inner Program) (Program, error) {
	if inner.Empty() {
		return Program{}, NewBuildError("eventually body must be non-empty")
	}
	return Empty().then(EventuallyNode{Inner: inner}), nil
}

// Parsec calls out to another combinator compiled in the same Module.
func Parsec(name string) Program {
	return Empty().then(ParsecNode{Target: Target{Name: name}})
}

// ParsecModule calls out to a combinator compiled in a different, named
// Module (see NewModule). The target Module is looked up when the calling
// definition is compiled, so it must already be registered by then; if it
// is not, every call fails at parse time as an undefined combinator. The
// target definition itself is looked up on each call and may be compiled
// later. Module.Link does not check cross-module targets.
func ParsecModule(module, name string) Program {
	return Empty().then(ParsecNode{Target: Target{Module: module, Name: name}})
}

// Wrap is the derived combinator wrap(inner): replaces inner's tokens
// with exactly one token, a slice holding all of them in production
// order.
func Wrap(inner Program) (Program, error) {
	return Traverse(inner, PhasePost, func(rest []byte, produced []Token, ctx Context, pos Position) ([]Token, Context, error) {
		return []Token{append([]Token(nil), produced...)}, ctx, nil
	})
}

// Tag is the derived combinator tag(inner, t): replaces inner's tokens
// with one token pairing t with all of them, in production order.
func Tag(inner Program, t string) (Program, error) {
	return Traverse(inner, PhasePost, func(rest []byte, produced []Token, ctx Context, pos Position) ([]Token, Context, error) {
		return []Token{NewTagged(t, append([]Token(nil), produced...))}, ctx, nil
	})
}

// UnwrapAndTag is the derived combinator unwrap_and_tag(inner, t): asserts
// inner produced exactly one token and pairs t with that single value,
// failing the parse (never panicking) if the count is anything else -
// the decided resolution of spec's open question on this combinator.
func UnwrapAndTag(inner Program, t string) (Program, error) {
	return Traverse(inner, PhasePost, func(rest []byte, produced []Token, ctx Context, pos Position) ([]Token, Context, error) {
		if len(produced) != 1 {
			return nil, ctx, fmt.Errorf("unwrap_and_tag requires exactly one token, got %d", len(produced))
		}
		return []Token{NewTagged(t, produced[0])}, ctx, nil
	})
}

// Ignore is the derived combinator ignore(inner): discards all tokens
// inner produced.
func Ignore(inner Program) (Program, error) {
	return TraverseConstant(inner, nil)
}

// Replace is the derived combinator replace(inner, v): discards inner's
// tokens and substitutes a single fixed value.
func Replace(inner Program, v Token) (Program, error) {
	return TraverseConstant(inner, []Token{v})
}

// ByteOffsetOf is the derived combinator byte_offset(inner): pairs
// inner's tokens (in production order) with the position observed after
// inner ran.
func ByteOffsetOf(inner Program) (Program, error) {
	return Traverse(inner, PhasePost, func(rest []byte, produced []Token, ctx Context, pos Position) ([]Token, Context, error) {
		return []Token{NewPairContainer(append([]Token(nil), produced...), pos.Offset)}, ctx, nil
	})
}

// LineOf is the derived combinator line(inner): pairs inner's tokens
// (in production order) with the line observed after inner ran.
func LineOf(inner Program) (Program, error) {
	return Traverse(inner, PhasePost, func(rest []byte, produced []Token, ctx Context, pos Position) ([]Token, Context, error) {
		return []Token{NewPairContainer(append([]Token(nil), produced...), pos.Line)}, ctx, nil
	})
}
