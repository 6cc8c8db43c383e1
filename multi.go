package combinant

// RepeatOption configures a Repeat build call.
type RepeatOption func(*RepeatNode)

// WithWhile attaches a repeat-while callback: after each successful
// iteration, while is consulted with the input remaining, context and
// position, and decides whether to continue.
func WithWhile(while WhileFunc) RepeatOption {
	return func(n *RepeatNode) { n.While = while }
}

// WithGenTimesFixed fixes how many repetitions Generate draws.
func WithGenTimesFixed(n int) RepeatOption {
	return func(node *RepeatNode) { node.GenTimes = GenTimes{Has: true, Fixed: n} }
}

// WithGenTimesRange bounds how many repetitions Generate draws.
func WithGenTimesRange(min, max int) RepeatOption {
	return func(node *RepeatNode) { node.GenTimes = GenTimes{Has: true, IsRange: true, Min: min, Max: max} }
}

// Repeat builds a node matching inner zero or more times, stopping when
// inner fails or the optional while callback (see WithWhile) returns
// false. inner must be non-empty: an always-empty-match body would repeat
// forever, mirroring the teacher's Many0/Many1 infinite-loop guard. The
// compiled loop also fails the repeat at run time when an iteration
// succeeds without consuming input.
func Repeat(inner Program, opts ...RepeatOption) (Program, error) {
	if inner.Empty() {
		return Program{}, NewBuildError("repeat body must be non-empty")
	}
	n := RepeatNode{Inner: inner}
	for _, opt := range opts {
		opt(&n)
	}
	return Empty().then(n), nil
}

// Times builds a node matching inner up to max times, exiting early on
// inner failure. Combined with a mandatory prefix built from Seq, this
// expresses a min/max repeat count (§4.1's times(max) role).
func Times(inner Program, max int) (Program, error) {
	if inner.Empty() {
		return Program{}, NewBuildError("times body must be non-empty")
	}
	if max < 0 {
		return Program{}, NewBuildError("times max must be non-negative")
	}
	return Empty().then(TimesNode{Inner: inner, Max: max}), nil
}

// Duplicate is the derived combinator duplicate(x, n): x repeated exactly
// n times in sequence (§8's duplicate invariant).
func Duplicate(x Program, n int) (Program, error) {
	if n < 0 {
		return Program{}, NewBuildError("duplicate count must be non-negative")
	}
	programs := make([]Program, n)
	for i := range programs {
		programs[i] = x
	}
	return Seq(programs...), nil
}

// compileRepeat lowers a RepeatNode to a loop stage: try inner, and on
// success consult While (defaulting to unconditional continue); zero
// matches is success, matching the teacher's Many0.
func compileRepeat(mod *Module, n RepeatNode) (clause, error) {
	inner, err := compileProgram(mod, n.Inner.nodes)
	if err != nil {
		return nil, err
	}
	while := n.While

	return func(s State) (Success, *Failure) {
		cur := s
		for {
			ok, f := inner(cur)
			if f != nil {
				return Success{State: cur}, nil
			}

			// Checking for infinite loops: if nothing was consumed, inner
			// would make the loop go around forever (even if it pushed
			// tokens, it would push them again on every pass), exactly the
			// hazard Many0/Many1 guard against.
			if len(ok.State.Input) == len(cur.Input) {
				return Success{}, &Failure{Kind: "repeat", Reason: "repeat body matched without consuming input", Rest: cur.Input, Ctx: cur.Ctx, Pos: cur.Pos}
			}

			if while != nil {
				cont, newCtx := while(ok.State.Input, ok.State.Ctx, ok.State.Pos)
				ok.State.Ctx = newCtx
				if !cont {
					return ok, nil
				}
			}

			cur = ok.State
		}
	}, nil
}

// compileTimes lowers a TimesNode to the same loop as compileRepeat, with
// an additional compile-time counter that ends the loop successfully once
// it reaches zero.
func compileTimes(mod *Module, n TimesNode) (clause, error) {
	inner, err := compileProgram(mod, n.Inner.nodes)
	if err != nil {
		return nil, err
	}

	return func(s State) (Success, *Failure) {
		cur := s
		for i := 0; i < n.Max; i++ {
			ok, f := inner(cur)
			if f != nil {
				return Success{State: cur}, nil
			}
			if len(ok.State.Input) == len(cur.Input) && ok.State.Acc.Len() == cur.Acc.Len() {
				return Success{State: cur}, nil
			}
			cur = ok.State
		}
		return Success{State: cur}, nil
	}, nil
}
