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

package combinant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRecursiveTagSoup exercises concrete scenario 5: a recursive
// XML-ish grammar built entirely from a Module so the self-reference
// resolves through Parsec.
func TestRecursiveTagSoup(t *testing.T) {
	t.Parallel()

	mod := newModule("tagsoup")

	textChar, err := BinSegment(nil, []Range{{Lo: '<', Hi: '<'}}, ModifierUTF8)
	require.NoError(t, err)
	textRun, err := Repeat(textChar)
	require.NoError(t, err)
	text, err := Traverse(textRun, PhasePost, foldStringOp)
	require.NoError(t, err)

	openAngle, err := Ignore(Str("<"))
	require.NoError(t, err)
	closeAngle, err := Ignore(Str(">"))
	require.NoError(t, err)
	closeTagStart, err := Ignore(Str("</"))
	require.NoError(t, err)
	threeAsciiChars, err := AsciiString(3)
	require.NoError(t, err)

	opening := Seq(openAngle, threeAsciiChars, closeAngle)
	closing := Seq(closeTagStart, threeAsciiChars, closeAngle)

	branch, err := Choice(Parsec("tag"), text)
	require.NoError(t, err)

	body, err := Repeat(Seq(LookaheadNot(Str("</")), branch))
	require.NoError(t, err)

	element, err := Wrap(Seq(opening, body, closing))
	require.NoError(t, err)

	_, err = mod.Compile("tag", element, WithPublic(), WithExportMetadata())
	require.NoError(t, err)
	require.NoError(t, mod.Link())

	parser, _, ok := mod.Lookup("tag")
	require.True(t, ok)

	res, err := parser.Parse([]byte("<foo>bar</foo>"))
	require.NoError(t, err)
	assert.Equal(t, "", string(res.Rest))
	require.Len(t, res.Tokens, 1)

	flat := res.Tokens[0].([]Token)
	assert.Equal(t, []Token{"foo", "bar", "foo"}, flat)
}

func TestModuleLinkFailsOnUndefinedParsec(t *testing.T) {
	t.Parallel()

	mod := newModule("broken")
	_, err := mod.Compile("entry", Parsec("missing"), WithPublic())
	require.NoError(t, err)

	err = mod.Link()
	assert.Error(t, err)
	var buildErr *BuildError
	assert.ErrorAs(t, err, &buildErr)
}

func TestGenerateStringNode(t *testing.T) {
	t.Parallel()

	out, err := Generate(Str("hello"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), out)
}

func TestGenerateRoundTripsThroughParse(t *testing.T) {
	t.Parallel()

	body, err := Repeat(AsciiChar('a', 'z'))
	require.NoError(t, err)
	parser, err := Compile("roundtrip", body, WithExportMetadata())
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		out, err := Generate(parser.IR())
		require.NoError(t, err)

		res, err := parser.Parse(out)
		require.NoError(t, err)
		assert.Empty(t, res.Rest)
	}
}

func TestGenerateBinSegmentRespectsExclusions(t *testing.T) {
	t.Parallel()

	node, err := BinSegment([]Range{{Lo: 'a', Hi: 'd'}}, []Range{{Lo: 'b', Hi: 'c'}}, ModifierInteger)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		out, err := Generate(node)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Contains(t, []byte{'a', 'd'}, out[0])
	}
}

func TestGenerateChoicePicksAnAlternative(t *testing.T) {
	t.Parallel()

	choice, err := Choice(Str("a"), Str("b"), Str("c"))
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		out, err := Generate(choice)
		require.NoError(t, err)
		seen[string(out)] = true
	}
	for _, s := range []string{"a", "b", "c"} {
		assert.Contains(t, seen, s)
	}
}

// TestPositionMonotonicity exercises the universal invariant that offsets
// observed at successive traverse boundaries within one parse never
// decrease.
func TestPositionMonotonicity(t *testing.T) {
	t.Parallel()

	var offsets []int
	record := func(rest []byte, produced []Token, ctx Context, pos Position) ([]Token, Context, error) {
		offsets = append(offsets, pos.Offset)
		return produced, ctx, nil
	}

	step1, err := Traverse(AsciiDigit(), PhasePost, record)
	require.NoError(t, err)
	step2, err := Traverse(AsciiDigit(), PhasePost, record)
	require.NoError(t, err)

	parser, err := Compile("monotonic", Seq(step1, step2))
	require.NoError(t, err)

	_, err = parser.Parse([]byte("12"))
	require.NoError(t, err)

	require.Len(t, offsets, 2)
	assert.LessOrEqual(t, offsets[0], offsets[1])
}

func TestConsumedBytesMatchesOffsetDelta(t *testing.T) {
	t.Parallel()

	body, err := Repeat(AsciiAlpha())
	require.NoError(t, err)
	parser, err := Compile("consumed", body)
	require.NoError(t, err)

	input := []byte("abcdef123")
	res, err := parser.Parse(input)
	require.NoError(t, err)

	assert.Equal(t, len(input)-len(res.Rest), res.Consumed)
	assert.Equal(t, 6, res.Consumed)
	assert.Len(t, res.Tokens, 6)
}

func TestBuildErrorUnwraps(t *testing.T) {
	t.Parallel()

	inner := NewBuildError("inner cause")
	wrapped := WrapBuildError("outer", inner)

	assert.ErrorIs(t, wrapped, inner)
	assert.Contains(t, wrapped.Error(), "outer")
	assert.Contains(t, wrapped.Error(), "inner cause")
}

func TestContextThreadsThroughTraverse(t *testing.T) {
	t.Parallel()

	setFlag := func(rest []byte, produced []Token, ctx Context, pos Position) ([]Token, Context, error) {
		return produced, ctx.With("seen", true), nil
	}

	body, err := Traverse(AsciiDigit(), PhasePost, setFlag)
	require.NoError(t, err)
	parser, err := Compile("ctx", body)
	require.NoError(t, err)

	res, err := parser.Parse([]byte("5"), WithContext(NewContext()))
	require.NoError(t, err)

	seen, ok := res.Ctx.Value("seen")
	require.True(t, ok)
	assert.Equal(t, true, seen)
}
