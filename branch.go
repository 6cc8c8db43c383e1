package combinant

import "github.com/coregx/ahocorasick"

// Choice builds an unweighted choice node: the first alternative that
// succeeds wins. At least two alternatives are required.
func Choice(alternatives ...Program) (Program, error) {
	return ChoiceWeighted(nil, alternatives...)
}

// ChoiceWeighted builds a choice node whose weights are consulted only by
// Generate; parse-time behavior (first-match-wins) is unaffected by
// weights. Pass a nil weights slice for an unweighted choice.
func ChoiceWeighted(weights []int, alternatives ...Program) (Program, error) {
	if len(alternatives) < 2 {
		return Program{}, NewBuildError("choice requires at least 2 alternatives")
	}
	if weights != nil && len(weights) != len(alternatives) {
		return Program{}, NewBuildError("choice weights must match the number of alternatives")
	}
	for _, w := range weights {
		if w <= 0 {
			return Program{}, NewBuildError("choice weights must be positive")
		}
	}
	return Empty().then(ChoiceNode{Alternatives: alternatives, Weights: weights}), nil
}

// Optional is the derived combinator optional(x) = choice([x, empty]).
func Optional(x Program) Program {
	p, err := Choice(x, Empty())
	if err != nil {
		// Choice only fails on arity/weight mismatches, neither of which
		// this fixed two-alternative call can produce.
		panic(err)
	}
	return p
}

// compileChoice lowers a ChoiceNode to a cascade of alternatives sharing
// a common entry offset: no alternative after one that has consumed past
// the entry offset is tried (see compileChoice's commit check below).
func compileChoice(mod *Module, n ChoiceNode) (clause, error) {
	clauses := make([]clause, len(n.Alternatives))
	for i, alt := range n.Alternatives {
		c, err := compileProgram(mod, alt.nodes)
		if err != nil {
			return nil, err
		}
		clauses[i] = c
	}

	dispatch := buildLiteralDispatch(n.Alternatives)

	return func(s State) (Success, *Failure) {
		entryOffset := s.Pos.Offset

		if dispatch != nil && !dispatch.automaton.IsMatch(s.Input) {
			return Success{}, &Failure{
				Kind:   "choice",
				Reason: "no alternative matched",
				Rest:   s.Input,
				Ctx:    s.Ctx,
				Pos:    s.Pos,
			}
		}

		var last *Failure
		for _, c := range clauses {
			ok, f := c(s)
			if f == nil {
				return ok, nil
			}
			if f.Pos.Offset != entryOffset {
				// Committed: a later sub-combinator consumed input past
				// the choice's entry before failing. No cross-alternative
				// backtracking past a commit.
				return Success{}, f
			}
			last = f
		}
		if last == nil {
			last = &Failure{Kind: "choice", Reason: "no alternatives", Rest: s.Input, Ctx: s.Ctx, Pos: s.Pos}
		}
		return Success{}, last
	}, nil
}

// literalDispatchThreshold is the alternative count above which the
// literal-choice fast path is worth the automaton build cost, mirroring
// coregex's >32-literal threshold for switching strategies; combinant
// uses a lower bar since the alternatives here are user grammar literals
// rather than generated regex literal sets.
const literalDispatchThreshold = 8

// literalDispatch wraps an Aho-Corasick automaton used as a cheap
// prefilter ahead of the normal cascading-alternatives dispatch: if none
// of the literal alternatives occur anywhere in the input, the whole
// choice can fail immediately without running any alternative's clause.
// It deliberately does not try to use the automaton's match to pick a
// single winning alternative directly (that would require trusting which
// pattern index matched, and the confirmed API surface here only reports
// match span, not originating pattern), so the cascade afterwards still
// runs in declared order and preserves exact choice semantics.
type literalDispatch struct {
	automaton *ahocorasick.Automaton
}

// buildLiteralDispatch builds a literalDispatch when every alternative is
// exactly a single literal string node and there are enough of them to
// be worth it; otherwise it returns nil and the cascade runs unaided.
func buildLiteralDispatch(alts []Program) *literalDispatch {
	if len(alts) <= literalDispatchThreshold {
		return nil
	}

	b := ahocorasick.NewBuilder()
	for _, a := range alts {
		if len(a.nodes) != 1 {
			return nil
		}
		sn, ok := a.nodes[0].(StringNode)
		if !ok || len(sn.Bytes) == 0 {
			return nil
		}
		b.AddPattern(sn.Bytes)
	}

	automaton, err := b.Build()
	if err != nil {
		return nil
	}
	return &literalDispatch{automaton: automaton}
}
