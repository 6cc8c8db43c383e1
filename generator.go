package combinant

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"unicode/utf8"
)

// GenOption configures a single Generate call.
type GenOption func(*genConfig)

type genConfig struct {
	module *Module
}

// WithGenModule records m on the Generate call. Generate does not read it:
// cross-module Parsec targets are looked up, for their exported Program
// metadata (compiled with WithExportMetadata), in the registry of modules
// created by NewModule with a non-empty name, whether or not this option
// is given.
func WithGenModule(m *Module) GenOption {
	return func(c *genConfig) { c.module = m }
}

// Generate walks p and emits cryptographically-random bytes compatible
// with the grammar it describes. It offers no guarantee of round-tripping
// when user traverses perform validation, or when a program contains
// overlapping choice alternatives.
func Generate(p Program, opts ...GenOption) ([]byte, error) {
	cfg := genConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return genProgram(p, &cfg)
}

func genProgram(p Program, cfg *genConfig) ([]byte, error) {
	var out []byte
	for _, n := range p.nodes {
		b, err := generateNode(n, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

func generateNode(n Node, cfg *genConfig) ([]byte, error) {
	switch node := n.(type) {
	case StringNode:
		return node.Bytes, nil
	case BytesNode:
		return randomBytes(node.N)
	case EOSNode:
		return nil, nil
	case BinSegmentNode:
		return genBinSegment(node)
	case LabelNode:
		return genProgram(node.Inner, cfg)
	case TraverseNode:
		// A traverse rewrites the token shape a body produces, not the
		// bytes it consumed; the generator only needs to reproduce those
		// bytes, so Constant's substitute token list is irrelevant here.
		return genProgram(node.Inner, cfg)
	case ChoiceNode:
		i, err := pickChoice(node)
		if err != nil {
			return nil, err
		}
		return genProgram(node.Alternatives[i], cfg)
	case RepeatNode:
		count, err := drawGenTimes(node.GenTimes)
		if err != nil {
			return nil, err
		}
		var out []byte
		for i := 0; i < count; i++ {
			b, err := genProgram(node.Inner, cfg)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		return out, nil
	case TimesNode:
		count, err := randIntn(node.Max + 1)
		if err != nil {
			return nil, err
		}
		var out []byte
		for i := 0; i < count; i++ {
			b, err := genProgram(node.Inner, cfg)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		return out, nil
	case LookaheadNode:
		return nil, nil
	case EventuallyNode:
		// Decided open question: emit inner immediately with no random
		// discard-able prefix, matching the source convention exactly
		// rather than attempting true language membership.
		return genProgram(node.Inner, cfg)
	case ParsecNode:
		return genParsec(node, cfg)
	default:
		return nil, fmt.Errorf("generate: unknown node type %T", n)
	}
}

// genParsec resolves a cross-module Parsec target's exported metadata and
// recurses into it. A local (unqualified) target is rejected: the
// generator has no way to reach an IR that lives only inside a not-yet-
// built Parser's closure, matching spec's requirement that the generator
// needs a reachable IR.
func genParsec(n ParsecNode, cfg *genConfig) ([]byte, error) {
	if n.Target.Module == "" {
		return nil, fmt.Errorf("generate: local parsec target %q is not reachable without a module-qualified target", n.Target.Name)
	}

	registryMu.RLock()
	mod, ok := registry[n.Target.Module]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("generate: unknown module %q", n.Target.Module)
	}

	parser, _, ok := mod.Lookup(n.Target.Name)
	if !ok || parser == nil {
		return nil, fmt.Errorf("generate: parsec target %q not compiled in module %q", n.Target.Name, n.Target.Module)
	}
	if parser.IR().Empty() {
		return nil, fmt.Errorf("generate: parsec target %q was not compiled with WithExportMetadata", n.Target.Name)
	}

	return genProgram(parser.IR(), cfg)
}

// genBinSegment draws a random codepoint from the union of inclusive
// ranges (or 0..=255 if empty), rejecting draws that fall in an exclusive
// range, then encodes it per modifier.
func genBinSegment(n BinSegmentNode) ([]byte, error) {
	ranges := n.Inclusive
	if len(ranges) == 0 {
		ranges = []Range{{Lo: 0, Hi: 255}}
	}

	for attempt := 0; attempt < 1000; attempt++ {
		cp, err := pickFromRanges(ranges)
		if err != nil {
			return nil, err
		}
		if rangeMember(n.Exclusive, cp) {
			continue
		}
		return encodeCodepoint(cp, n.Modifier)
	}
	return nil, fmt.Errorf("generate: could not draw a codepoint outside all exclusions")
}

// pickFromRanges draws a codepoint uniformly from the union of ranges
// using crypto/rand, weighting each range by its span.
func pickFromRanges(ranges []Range) (rune, error) {
	total := big.NewInt(0)
	spans := make([]*big.Int, len(ranges))
	for i, r := range ranges {
		spans[i] = big.NewInt(int64(r.Hi-r.Lo) + 1)
		total.Add(total, spans[i])
	}

	idx, err := rand.Int(rand.Reader, total)
	if err != nil {
		return 0, err
	}
	for i, span := range spans {
		if idx.Cmp(span) < 0 {
			return ranges[i].Lo + rune(idx.Int64()), nil
		}
		idx.Sub(idx, span)
	}
	return 0, fmt.Errorf("generate: range selection exhausted its span")
}

func encodeCodepoint(cp rune, mod Modifier) ([]byte, error) {
	switch mod {
	case ModifierInteger:
		return []byte{byte(cp)}, nil
	case ModifierUTF8:
		buf := make([]byte, utf8.RuneLen(cp))
		utf8.EncodeRune(buf, cp)
		return buf, nil
	case ModifierUTF16:
		return []byte{byte(cp >> 8), byte(cp)}, nil
	case ModifierUTF32:
		return []byte{byte(cp >> 24), byte(cp >> 16), byte(cp >> 8), byte(cp)}, nil
	default:
		return nil, fmt.Errorf("generate: unknown modifier %v", mod)
	}
}

func randomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// randIntn draws a cryptographically-random integer in [0, n).
func randIntn(n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// drawGenTimes decides how many repetitions Generate draws for a repeat
// node, per its GenTimes configuration (fixed, range, or the default
// 0..=3).
func drawGenTimes(g GenTimes) (int, error) {
	if !g.Has {
		return randIntn(4)
	}
	if !g.IsRange {
		return g.Fixed, nil
	}
	n, err := randIntn(g.Max - g.Min + 1)
	if err != nil {
		return 0, err
	}
	return g.Min + n, nil
}

// pickChoice draws which alternative Generate recurses into: uniform if
// unweighted, weighted otherwise.
func pickChoice(n ChoiceNode) (int, error) {
	if n.Weights == nil {
		return randIntn(len(n.Alternatives))
	}
	total := 0
	for _, w := range n.Weights {
		total += w
	}
	r, err := randIntn(total)
	if err != nil {
		return 0, err
	}
	for i, w := range n.Weights {
		if r < w {
			return i, nil
		}
		r -= w
	}
	return len(n.Alternatives) - 1, nil
}
