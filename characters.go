package combinant

// BinSegment builds a leaf node matching one codepoint drawn from the
// union of inclusive ranges and present in none of the exclusive ranges,
// decoded according to modifier. An empty inclusive list means "any
// codepoint" (subject to exclusions).
func BinSegment(inclusive, exclusive []Range, modifier Modifier) (Program, error) {
	for _, r := range inclusive {
		if r.Lo > r.Hi {
			return Program{}, NewBuildError("inclusive range has Lo > Hi")
		}
	}
	for _, r := range exclusive {
		if r.Lo > r.Hi {
			return Program{}, NewBuildError("exclusive range has Lo > Hi")
		}
	}
	return Empty().then(BinSegmentNode{Inclusive: inclusive, Exclusive: exclusive, Modifier: modifier}), nil
}

// AsciiChar matches a single byte in the inclusive range [lo, hi].
func AsciiChar(lo, hi byte) Program {
	p, err := BinSegment([]Range{{Lo: rune(lo), Hi: rune(hi)}}, nil, ModifierInteger)
	if err != nil {
		panic(err)
	}
	return p
}

// AsciiDigit matches a single ASCII digit, '0'..'9'.
func AsciiDigit() Program {
	return AsciiChar('0', '9')
}

// AsciiAlpha matches a single ASCII letter, 'a'..'z' or 'A'..'Z'.
func AsciiAlpha() Program {
	p, err := BinSegment([]Range{{Lo: 'a', Hi: 'z'}, {Lo: 'A', Hi: 'Z'}}, nil, ModifierInteger)
	if err != nil {
		panic(err)
	}
	return p
}

// AsciiAlphaNumeric matches a single ASCII letter or digit.
func AsciiAlphaNumeric() Program {
	p, err := BinSegment([]Range{{Lo: 'a', Hi: 'z'}, {Lo: 'A', Hi: 'Z'}, {Lo: '0', Hi: '9'}}, nil, ModifierInteger)
	if err != nil {
		panic(err)
	}
	return p
}

// AnyByte matches any single byte.
func AnyByte() Program {
	p, err := BinSegment(nil, nil, ModifierInteger)
	if err != nil {
		panic(err)
	}
	return p
}

// AnyRune matches any single UTF-8 codepoint.
func AnyRune() Program {
	p, err := BinSegment(nil, nil, ModifierUTF8)
	if err != nil {
		panic(err)
	}
	return p
}

// Utf8Char matches a single UTF-8 codepoint in the inclusive range
// [lo, hi].
func Utf8Char(lo, hi rune) Program {
	p, err := BinSegment([]Range{{Lo: lo, Hi: hi}}, nil, ModifierUTF8)
	if err != nil {
		panic(err)
	}
	return p
}

// LF matches a line feed byte.
func LF() Program {
	return AsciiChar('\n', '\n')
}

// CR matches a carriage return byte.
func CR() Program {
	return AsciiChar('\r', '\r')
}

// CRLF matches the two-byte sequence "\r\n".
func CRLF() Program {
	return Str("\r\n")
}

// Space matches a single space byte.
func Space() Program {
	return AsciiChar(' ', ' ')
}

// Tab matches a single tab byte.
func Tab() Program {
	return AsciiChar('\t', '\t')
}
