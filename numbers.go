package combinant

import (
	"fmt"
	"unicode/utf8"
)

// foldDigits folds a forward-ordered run of ASCII-digit tokens into the
// integer they spell, acc[0]*10^(n-1) + ... + acc[n-1] for a run of
// length n. The same fold serves both the fixed-n and the min/max
// variable-length integer builders: the formula is length-agnostic, so
// both apply it through a PhasePost traverse over however many digits
// actually matched.
func foldDigits(produced []Token) (int, error) {
	n := 0
	for _, t := range produced {
		r, ok := t.(rune)
		if !ok {
			return 0, fmt.Errorf("integer: unexpected token type %T", t)
		}
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("integer: non-digit codepoint %q", r)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

// foldString concatenates a forward-ordered run of codepoint tokens into
// a string.
func foldString(produced []Token) (string, error) {
	var buf []byte
	for _, t := range produced {
		r, ok := t.(rune)
		if !ok {
			return "", fmt.Errorf("string: unexpected token type %T", t)
		}
		buf = utf8.AppendRune(buf, r)
	}
	return string(buf), nil
}

func foldDigitsOp(rest []byte, produced []Token, ctx Context, pos Position) ([]Token, Context, error) {
	v, err := foldDigits(produced)
	if err != nil {
		return nil, ctx, err
	}
	return []Token{v}, ctx, nil
}

func foldStringOp(rest []byte, produced []Token, ctx Context, pos Position) ([]Token, Context, error) {
	v, err := foldString(produced)
	if err != nil {
		return nil, ctx, err
	}
	return []Token{v}, ctx, nil
}

// Integer is the derived combinator integer(n): exactly n ASCII digits,
// folded into one int token.
func Integer(n int) (Program, error) {
	if n <= 0 {
		return Program{}, NewBuildError("integer(n) requires n > 0")
	}
	digits, err := Duplicate(AsciiDigit(), n)
	if err != nil {
		return Program{}, err
	}
	return Traverse(digits, PhasePost, foldDigitsOp)
}

// IntegerRange is the derived combinator integer(min, max): min mandatory
// digits followed by up to (max-min) optional digits, folded into one int
// token using however many digits actually matched.
func IntegerRange(min, max int) (Program, error) {
	if min < 0 || max < min {
		return Program{}, NewBuildError("integer(min, max) requires 0 <= min <= max")
	}
	mandatory, err := Duplicate(AsciiDigit(), min)
	if err != nil {
		return Program{}, err
	}
	if max == min {
		return Traverse(mandatory, PhasePost, foldDigitsOp)
	}
	optional, err := Times(AsciiDigit(), max-min)
	if err != nil {
		return Program{}, err
	}
	return Traverse(Seq(mandatory, optional), PhasePost, foldDigitsOp)
}

// AsciiString is the derived combinator ascii_string(n): exactly n ASCII
// bytes, concatenated into one string token.
func AsciiString(n int) (Program, error) {
	if n <= 0 {
		return Program{}, NewBuildError("ascii_string(n) requires n > 0")
	}
	run, err := Duplicate(AsciiChar(0, 127), n)
	if err != nil {
		return Program{}, err
	}
	return Traverse(run, PhasePost, foldStringOp)
}

// AsciiStringRange is the derived combinator ascii_string(min, max).
func AsciiStringRange(min, max int) (Program, error) {
	if min < 0 || max < min {
		return Program{}, NewBuildError("ascii_string(min, max) requires 0 <= min <= max")
	}
	mandatory, err := Duplicate(AsciiChar(0, 127), min)
	if err != nil {
		return Program{}, err
	}
	if max == min {
		return Traverse(mandatory, PhasePost, foldStringOp)
	}
	optional, err := Times(AsciiChar(0, 127), max-min)
	if err != nil {
		return Program{}, err
	}
	return Traverse(Seq(mandatory, optional), PhasePost, foldStringOp)
}

// Utf8String is the derived combinator utf8_string(exclusions, n):
// exactly n UTF-8 codepoints excluding any in exclusions, concatenated
// into one string token.
func Utf8String(exclusions []Range, n int) (Program, error) {
	if n <= 0 {
		return Program{}, NewBuildError("utf8_string(exclusions, n) requires n > 0")
	}
	char, err := BinSegment(nil, exclusions, ModifierUTF8)
	if err != nil {
		return Program{}, err
	}
	run, err := Duplicate(char, n)
	if err != nil {
		return Program{}, err
	}
	return Traverse(run, PhasePost, foldStringOp)
}

// Utf8StringRange is the derived combinator utf8_string(exclusions, min,
// max).
func Utf8StringRange(exclusions []Range, min, max int) (Program, error) {
	if min < 0 || max < min {
		return Program{}, NewBuildError("utf8_string(exclusions, min, max) requires 0 <= min <= max")
	}
	char, err := BinSegment(nil, exclusions, ModifierUTF8)
	if err != nil {
		return Program{}, err
	}
	mandatory, err := Duplicate(char, min)
	if err != nil {
		return Program{}, err
	}
	if max == min {
		return Traverse(mandatory, PhasePost, foldStringOp)
	}
	optional, err := Times(char, max-min)
	if err != nil {
		return Program{}, err
	}
	return Traverse(Seq(mandatory, optional), PhasePost, foldStringOp)
}
