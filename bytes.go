package combinant

// Str matches a literal byte sequence exactly, emitting it as a single
// string token.
func Str(s string) Program {
	return Empty().then(StringNode{Bytes: []byte(s)})
}

// Bytes matches a literal byte sequence exactly, emitting it as a single
// string token, the same as Str. b is copied, so later changes to b do
// not affect the Program.
func Bytes(b []byte) Program {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Empty().then(StringNode{Bytes: cp})
}

// BytesN matches any n raw bytes (n >= 1), emitting them as a single
// []byte token.
func BytesN(n int) (Program, error) {
	if n < 1 {
		return Program{}, NewBuildError("bytes(n) requires n >= 1")
	}
	return Empty().then(BytesNode{N: n}), nil
}

// EOS asserts the input is fully consumed. It may only appear at the
// logical end of a program; Compile rejects it anywhere else.
func EOS() Program {
	return Empty().then(EOSNode{})
}
