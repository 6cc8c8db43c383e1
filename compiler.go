package combinant

import (
	"fmt"
	"log"
	"os"
	"unicode/utf8"
)

// CompileOption configures a single Compile call.
type CompileOption func(*compileConfig)

type compileConfig struct {
	inline           bool
	debug            bool
	exportCombinator bool
	exportMetadata   bool
	visibility       Visibility
	module           *Module
}

// WithInline sets the inline build option. Compile does not read it: the
// clauses it builds are the same with or without this option, and no
// redirect stage is removed.
func WithInline() CompileOption {
	return func(c *compileConfig) { c.inline = true }
}

// WithDebug emits the compiled clause plan to standard error.
func WithDebug() CompileOption {
	return func(c *compileConfig) { c.debug = true }
}

// WithExportCombinator marks the resulting Parser as exported, as reported
// by Parser.Exported. Parsec resolution does not consult the mark: every
// definition compiled in a Module is reachable via Parsec from its
// siblings.
func WithExportCombinator() CompileOption {
	return func(c *compileConfig) { c.exportCombinator = true }
}

// WithExportMetadata retains the Program on the built Parser so Generate
// and third-party introspection can walk it.
func WithExportMetadata() CompileOption {
	return func(c *compileConfig) { c.exportMetadata = true }
}

// WithPublic marks a Module.Compile definition as a usable entry point in
// its own right, not just a Parsec target for sibling definitions. It has
// no effect on a freestanding Compile call that isn't bound to a Module.
func WithPublic() CompileOption {
	return func(c *compileConfig) { c.visibility = Public }
}

// WithInternal marks a Module.Compile definition reachable only via Parsec
// from sibling definitions. This is the default, so WithInternal only
// matters to override an earlier WithPublic in the same opts list.
func WithInternal() CompileOption {
	return func(c *compileConfig) { c.visibility = Internal }
}

// withModule binds the Module a Compile call resolves Parsec targets
// against. Set internally by Module.Compile.
func withModule(m *Module) CompileOption {
	return func(c *compileConfig) { c.module = m }
}

var debugLog = log.New(os.Stderr, "combinant: ", 0)

// Compile lowers p to a ready-to-run Parser. It is the sole entry point
// from the IR into the Runtime Contract.
func Compile(name string, p Program, opts ...CompileOption) (*Parser, error) {
	cfg := compileConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	mod := cfg.module
	if mod == nil {
		mod = newModule("")
	}

	run, err := compileProgram(mod, p.nodes)
	if err != nil {
		return nil, err
	}

	if cfg.debug {
		debugLog.Printf("compiled %q: %s", name, planString(p.nodes))
	}

	program := Program{}
	if cfg.exportMetadata {
		program = p
	}

	return &Parser{name: name, program: program, run: run, exported: cfg.exportCombinator}, nil
}

// validateEOSPlacement enforces that eos, if present, appears only as the
// final node of a program. compileProgram calls this on every nested
// Inner it compiles, not just the top-level program Compile was given,
// so an eos misplaced inside a Label/Traverse/Repeat/etc. body is caught
// the same way as one misplaced at the top level.
func validateEOSPlacement(nodes []Node) error {
	for i, n := range nodes {
		if _, ok := n.(EOSNode); ok && i != len(nodes)-1 {
			return NewBuildError("eos may only appear at the logical end of a program")
		}
	}
	return nil
}

// planString renders, on a single line, one bracketed entry per fused run
// of bound nodes (by node index range) or per other node (by its Go type),
// for the debug option.
func planString(nodes []Node) string {
	s := ""
	i := 0
	for i < len(nodes) {
		if isBound(nodes[i]) {
			j := i
			for j < len(nodes) && isBound(nodes[j]) {
				j++
			}
			s += fmt.Sprintf("[fused %d..%d] ", i, j-1)
			i = j
			continue
		}
		s += fmt.Sprintf("[%T] ", nodes[i])
		i++
	}
	return s
}

// chain composes two clauses so that b only runs if a succeeds.
func chain(a, b clause) clause {
	return func(s State) (Success, *Failure) {
		ok, f := a(s)
		if f != nil {
			return Success{}, f
		}
		return b(ok.State)
	}
}

// compileProgram lowers a logical-order node slice into a single clause,
// fusing contiguous runs of bound nodes into one matcher each.
func compileProgram(mod *Module, nodes []Node) (clause, error) {
	if err := validateEOSPlacement(nodes); err != nil {
		return nil, err
	}

	var run clause = func(s State) (Success, *Failure) {
		return Success{State: s}, nil
	}

	i := 0
	for i < len(nodes) {
		if isBound(nodes[i]) {
			j := i
			for j < len(nodes) && isBound(nodes[j]) {
				j++
			}
			c, err := compileBoundRun(nodes[i:j])
			if err != nil {
				return nil, err
			}
			run = chain(run, c)
			i = j
			continue
		}

		c, err := compileNode(mod, nodes[i])
		if err != nil {
			return nil, err
		}
		run = chain(run, c)
		i++
	}

	return run, nil
}

// compileNode dispatches a single non-bound node to its compiler.
func compileNode(mod *Module, n Node) (clause, error) {
	switch node := n.(type) {
	case LabelNode:
		return compileLabel(mod, node)
	case TraverseNode:
		return compileTraverseNode(mod, node)
	case ChoiceNode:
		return compileChoice(mod, node)
	case RepeatNode:
		return compileRepeat(mod, node)
	case TimesNode:
		return compileTimes(mod, node)
	case LookaheadNode:
		return compileLookahead(mod, node)
	case EventuallyNode:
		return compileEventually(mod, node)
	case ParsecNode:
		return compileParsec(mod, node)
	default:
		return nil, NewBuildError(fmt.Sprintf("combinant: unknown node type %T", n))
	}
}

// --- bound-run fusion ---

// compileBoundRun fuses a contiguous run of BinSegmentNode/StringNode/
// BytesNode/EOSNode values into one matcher clause: the performance core
// of the compiler, per the teacher's emphasis on avoiding per-node
// overhead in the hot path.
func compileBoundRun(nodes []Node) (clause, error) {
	matchers := make([]func(in []byte) (n int, toks []Token, reason string, ok bool), len(nodes))
	for i, n := range nodes {
		m, err := boundMatcher(n)
		if err != nil {
			return nil, err
		}
		matchers[i] = m
	}

	return func(s State) (Success, *Failure) {
		in := s.Input
		pos := s.Pos
		var toks []Token
		total := 0
		for _, m := range matchers {
			n, produced, reason, ok := m(in)
			if !ok {
				return Success{}, &Failure{
					Kind:     "bound",
					Reason:   reason,
					Rest:     in,
					Ctx:      s.Ctx,
					Pos:      pos,
					Consumed: total,
				}
			}
			toks = append(toks, produced...)
			pos = advance(pos, in, n)
			in = in[n:]
			total += n
		}
		return Success{State: s.consume(total, toks...)}, nil
	}, nil
}

// boundMatcher returns a function testing whether in begins with a match
// for n, and if so how many bytes it consumed and what tokens it emitted.
func boundMatcher(n Node) (func(in []byte) (int, []Token, string, bool), error) {
	switch node := n.(type) {
	case BinSegmentNode:
		return matchBinSegment(node), nil
	case StringNode:
		return matchString(node), nil
	case BytesNode:
		if node.N < 1 {
			return nil, NewBuildError("bytes(n) requires n >= 1")
		}
		return matchBytesN(node), nil
	case EOSNode:
		return matchEOS(), nil
	default:
		return nil, NewBuildError(fmt.Sprintf("combinant: %T is not a bound node", n))
	}
}

func matchString(n StringNode) func([]byte) (int, []Token, string, bool) {
	return func(in []byte) (int, []Token, string, bool) {
		if !hasPrefix(in, n.Bytes) {
			return 0, nil, fmt.Sprintf("expected a string %q", string(n.Bytes)), false
		}
		return len(n.Bytes), []Token{string(n.Bytes)}, "", true
	}
}

func matchBytesN(n BytesNode) func([]byte) (int, []Token, string, bool) {
	return func(in []byte) (int, []Token, string, bool) {
		if len(in) < n.N {
			return 0, nil, fmt.Sprintf("expected %d bytes", n.N), false
		}
		raw := make([]byte, n.N)
		copy(raw, in[:n.N])
		return n.N, []Token{raw}, "", true
	}
}

func matchEOS() func([]byte) (int, []Token, string, bool) {
	return func(in []byte) (int, []Token, string, bool) {
		if len(in) != 0 {
			return 0, nil, "expected end of string", false
		}
		return 0, nil, "", true
	}
}

func matchBinSegment(n BinSegmentNode) func([]byte) (int, []Token, string, bool) {
	reason := describeBinSegment(n)
	return func(in []byte) (int, []Token, string, bool) {
		cp, size, ok := decodeCodepoint(in, n.Modifier)
		if !ok {
			return 0, nil, reason, false
		}
		if !rangeAllowed(n, cp) {
			return 0, nil, reason, false
		}
		return size, []Token{cp}, "", true
	}
}

// decodeCodepoint reads one unit of input according to modifier, returning
// its codepoint value and the number of bytes it occupied.
func decodeCodepoint(in []byte, mod Modifier) (rune, int, bool) {
	switch mod {
	case ModifierInteger:
		if len(in) < 1 {
			return 0, 0, false
		}
		return rune(in[0]), 1, true
	case ModifierUTF8:
		if len(in) == 0 {
			return 0, 0, false
		}
		r, size := utf8.DecodeRune(in)
		if r == utf8.RuneError && size <= 1 {
			return 0, 0, false
		}
		return r, size, true
	case ModifierUTF16:
		if len(in) < 2 {
			return 0, 0, false
		}
		return rune(in[0])<<8 | rune(in[1]), 2, true
	case ModifierUTF32:
		if len(in) < 4 {
			return 0, 0, false
		}
		r := rune(in[0])<<24 | rune(in[1])<<16 | rune(in[2])<<8 | rune(in[3])
		return r, 4, true
	default:
		return 0, 0, false
	}
}

func rangeAllowed(n BinSegmentNode, cp rune) bool {
	if len(n.Inclusive) > 0 && !rangeMember(n.Inclusive, cp) {
		return false
	}
	if rangeMember(n.Exclusive, cp) {
		return false
	}
	return true
}

func rangeMember(ranges []Range, cp rune) bool {
	for _, r := range ranges {
		if cp >= r.Lo && cp <= r.Hi {
			return true
		}
	}
	return false
}

func describeBinSegment(n BinSegmentNode) string {
	if len(n.Inclusive) == 1 {
		r := n.Inclusive[0]
		if r.Lo == r.Hi {
			return fmt.Sprintf("character %q", r.Lo)
		}
		return fmt.Sprintf("character in the range %q to %q", r.Lo, r.Hi)
	}
	if len(n.Inclusive) == 0 {
		return "any character"
	}
	return "character in the allowed set"
}

// --- maybe-bound / unbound node compilers ---

func compileLabel(mod *Module, n LabelNode) (clause, error) {
	if n.Inner.Empty() {
		return nil, NewBuildError("label body must be non-empty")
	}
	inner, err := compileProgram(mod, n.Inner.nodes)
	if err != nil {
		return nil, err
	}
	return func(s State) (Success, *Failure) {
		ok, f := inner(s)
		if f == nil {
			return ok, nil
		}
		if f.Pos.Offset == s.Pos.Offset {
			replaced := *f
			replaced.Reason = "expected " + n.Text
			return Success{}, &replaced
		}
		return Success{}, f
	}, nil
}

func compileTraverseNode(mod *Module, n TraverseNode) (clause, error) {
	if n.Inner.Empty() && n.Phase != PhaseConstant {
		return nil, NewBuildError("traverse body must be non-empty")
	}
	inner, err := compileProgram(mod, n.Inner.nodes)
	if err != nil {
		return nil, err
	}
	return func(s State) (Success, *Failure) {
		base := s.Acc
		ok, f := inner(s)
		if f != nil {
			return Success{}, f
		}

		var produced []Token
		pos := ok.State.Pos
		switch n.Phase {
		case PhaseConstant:
			produced = append([]Token(nil), n.Constant...)
		case PhasePre:
			produced = ok.State.Acc.slice(ok.State.Acc.Len() - base.Len())
			pos = s.Pos
		default: // PhasePost
			produced = ok.State.Acc.slice(ok.State.Acc.Len() - base.Len())
		}

		rest := ok.State.Input
		ctx := ok.State.Ctx
		for _, op := range n.Ops {
			var err error
			produced, ctx, err = op(rest, produced, ctx, pos)
			if err != nil {
				return Success{}, &Failure{
					Kind:     "traverse",
					Reason:   err.Error(),
					Rest:     rest,
					Ctx:      ctx,
					Pos:      pos,
					Consumed: ok.State.Pos.Offset - s.Pos.Offset,
				}
			}
		}

		acc := base
		for _, t := range produced {
			acc = acc.push(t)
		}
		return Success{State: State{Input: rest, Acc: acc, Ctx: ctx, Pos: ok.State.Pos}}, nil
	}, nil
}

func compileLookahead(mod *Module, n LookaheadNode) (clause, error) {
	if n.Inner.Empty() {
		return nil, NewBuildError("lookahead body must be non-empty")
	}
	inner, err := compileProgram(mod, n.Inner.nodes)
	if err != nil {
		return nil, err
	}
	return func(s State) (Success, *Failure) {
		_, f := inner(s)
		switch n.Sense {
		case SensePositive:
			if f != nil {
				return Success{}, f
			}
			return Success{State: s}, nil
		default: // SenseNegative
			if f == nil {
				return Success{}, &Failure{Kind: "lookahead", Reason: "unexpected input", Rest: s.Input, Ctx: s.Ctx, Pos: s.Pos}
			}
			return Success{State: s}, nil
		}
	}, nil
}

func compileEventually(mod *Module, n EventuallyNode) (clause, error) {
	if n.Inner.Empty() {
		return nil, NewBuildError("eventually body must be non-empty")
	}
	inner, err := compileProgram(mod, n.Inner.nodes)
	if err != nil {
		return nil, err
	}
	return func(s State) (Success, *Failure) {
		cur := s
		for {
			ok, f := inner(cur)
			if f == nil {
				return ok, nil
			}
			if len(cur.Input) == 0 {
				return Success{}, &Failure{Kind: "eventually", Reason: "expected match eventually", Rest: cur.Input, Ctx: cur.Ctx, Pos: cur.Pos}
			}
			cur = cur.consume(1)
		}
	}, nil
}

func compileParsec(mod *Module, n ParsecNode) (clause, error) {
	target := mod.resolve(n.Target)
	return func(s State) (Success, *Failure) {
		p := target.get()
		if p == nil {
			return Success{}, &Failure{Kind: "parsec", Reason: fmt.Sprintf("undefined combinator %q", n.Target.Name), Rest: s.Input, Ctx: s.Ctx, Pos: s.Pos}
		}
		return p.run(s)
	}, nil
}
