package combinant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	t.Parallel()

	body, err := Label(Seq(AsciiDigit(), AsciiAlpha()), "digit followed by lowercase")
	require.NoError(t, err)
	parser, err := Compile("label", body)
	require.NoError(t, err)

	_, err = parser.ParseString("a1")
	require.Error(t, err)
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "expected digit followed by lowercase", failure.Reason)
}

func TestLabelOnlyAppliesAtEntryOffset(t *testing.T) {
	t.Parallel()

	// The second digit fails after the first one committed, so the label
	// must not replace the failure reason (the failure is past the
	// label's entry offset).
	body, err := Label(Seq(AsciiDigit(), AsciiDigit()), "two digits")
	require.NoError(t, err)
	parser, err := Compile("label", body)
	require.NoError(t, err)

	_, err = parser.ParseString("1a")
	require.Error(t, err)
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.NotEqual(t, "expected two digits", failure.Reason)
}

func TestWrap(t *testing.T) {
	t.Parallel()

	inner := Seq(AsciiDigit(), AsciiDigit())
	wrapped, err := Wrap(inner)
	require.NoError(t, err)

	innerParser, err := Compile("inner", inner)
	require.NoError(t, err)
	wrappedParser, err := Compile("wrapped", wrapped)
	require.NoError(t, err)

	innerRes, err := innerParser.ParseString("12")
	require.NoError(t, err)

	wrappedRes, err := wrappedParser.ParseString("12")
	require.NoError(t, err)

	require.Len(t, wrappedRes.Tokens, 1)
	assert.Equal(t, innerRes.Tokens, wrappedRes.Tokens[0])
}

func TestTag(t *testing.T) {
	t.Parallel()

	tagged, err := Tag(AsciiDigit(), "digit")
	require.NoError(t, err)
	parser, err := Compile("tag", tagged)
	require.NoError(t, err)

	res, err := parser.ParseString("7")
	require.NoError(t, err)
	require.Len(t, res.Tokens, 1)
	assert.Equal(t, Tagged{Tag: "digit", Value: []Token{rune('7')}}, res.Tokens[0])
}

func TestUnwrapAndTag(t *testing.T) {
	t.Parallel()

	tagged, err := UnwrapAndTag(AsciiDigit(), "digit")
	require.NoError(t, err)
	parser, err := Compile("unwrap-tag", tagged)
	require.NoError(t, err)

	res, err := parser.ParseString("7")
	require.NoError(t, err)
	require.Len(t, res.Tokens, 1)
	assert.Equal(t, Tagged{Tag: "digit", Value: rune('7')}, res.Tokens[0])
}

func TestUnwrapAndTagFailsOnNonSingletonAccumulator(t *testing.T) {
	t.Parallel()

	tagged, err := UnwrapAndTag(Seq(AsciiDigit(), AsciiDigit()), "pair")
	require.NoError(t, err)
	parser, err := Compile("unwrap-tag-bad", tagged)
	require.NoError(t, err)

	_, err = parser.ParseString("12")
	require.Error(t, err)
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "traverse", failure.Kind)
}

func TestIgnore(t *testing.T) {
	t.Parallel()

	ignored, err := Ignore(Seq(AsciiDigit(), AsciiDigit()))
	require.NoError(t, err)
	parser, err := Compile("ignore", ignored)
	require.NoError(t, err)

	res, err := parser.ParseString("12x")
	require.NoError(t, err)
	assert.Empty(t, res.Tokens)
	assert.Equal(t, "x", string(res.Rest))
}

func TestReplace(t *testing.T) {
	t.Parallel()

	replaced, err := Replace(AsciiDigit(), "digit-seen")
	require.NoError(t, err)
	parser, err := Compile("replace", replaced)
	require.NoError(t, err)

	res, err := parser.ParseString("9")
	require.NoError(t, err)
	assert.Equal(t, []Token{"digit-seen"}, res.Tokens)
}

func TestByteOffsetOf(t *testing.T) {
	t.Parallel()

	offsetOf, err := ByteOffsetOf(Seq(AsciiDigit(), AsciiDigit()))
	require.NoError(t, err)
	parser, err := Compile("byte-offset", offsetOf)
	require.NoError(t, err)

	res, err := parser.ParseString("12")
	require.NoError(t, err)
	require.Len(t, res.Tokens, 1)
	pair := res.Tokens[0].(PairContainer[[]Token, int])
	assert.Equal(t, 2, pair.Right)
}

func TestLookaheadPositive(t *testing.T) {
	t.Parallel()

	body, err := Lookahead(Str("ab"), SensePositive)
	require.NoError(t, err)
	parser, err := Compile("lookahead-pos", body)
	require.NoError(t, err)

	res, err := parser.ParseString("abc")
	require.NoError(t, err)
	assert.Empty(t, res.Tokens)
	assert.Equal(t, "abc", string(res.Rest))

	_, err = parser.ParseString("xyz")
	assert.Error(t, err)
}

func TestLookaheadNegative(t *testing.T) {
	t.Parallel()

	body := LookaheadNot(Str("</"))
	parser, err := Compile("lookahead-neg", body)
	require.NoError(t, err)

	res, err := parser.ParseString("bar</foo>")
	require.NoError(t, err)
	assert.Equal(t, "bar</foo>", string(res.Rest))

	_, err = parser.ParseString("</foo>")
	assert.Error(t, err)
}

func TestEventually(t *testing.T) {
	t.Parallel()

	body, err := Eventually(Str("X"))
	require.NoError(t, err)
	parser, err := Compile("eventually", body)
	require.NoError(t, err)

	res, err := parser.ParseString("abcXdef")
	require.NoError(t, err)
	assert.Equal(t, []Token{"X"}, res.Tokens)
	assert.Equal(t, "def", string(res.Rest))

	_, err = parser.ParseString("abc")
	assert.Error(t, err)
}
