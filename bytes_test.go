package combinant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStr(t *testing.T) {
	t.Parallel()

	parser, err := Compile("str", Str("T"))
	require.NoError(t, err)

	res, err := parser.ParseString("T")
	require.NoError(t, err)
	assert.Equal(t, []Token{"T"}, res.Tokens)
	assert.Equal(t, "", string(res.Rest))

	_, err = parser.ParseString("not T")
	require.Error(t, err)
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, failure.Reason, `expected a string "T"`)
	assert.Equal(t, 0, failure.Pos.Offset)
}

func TestBytesN(t *testing.T) {
	t.Parallel()

	body, err := BytesN(3)
	require.NoError(t, err)
	parser, err := Compile("bytesn", body)
	require.NoError(t, err)

	res, err := parser.ParseString("abcdef")
	require.NoError(t, err)
	require.Len(t, res.Tokens, 1)
	assert.Equal(t, []byte("abc"), res.Tokens[0])
	assert.Equal(t, "def", string(res.Rest))

	_, err = parser.ParseString("ab")
	assert.Error(t, err)
}

func TestBytesNRejectsNonPositiveN(t *testing.T) {
	t.Parallel()

	_, err := BytesN(0)
	assert.Error(t, err)
}

func TestEOS(t *testing.T) {
	t.Parallel()

	chunk, err := Utf8String(nil, 2)
	require.NoError(t, err)
	repeated, err := Repeat(chunk)
	require.NoError(t, err)
	parser, err := Compile("eos", Seq(repeated, EOS()))
	require.NoError(t, err)

	res, err := parser.ParseString("hi")
	require.NoError(t, err)
	assert.Equal(t, []Token{"hi"}, res.Tokens)
	assert.Equal(t, "", string(res.Rest))

	_, err = parser.ParseString("hello")
	require.Error(t, err)
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "expected end of string", failure.Reason)
	assert.Equal(t, "o", string(failure.Rest))
	assert.Equal(t, 4, failure.Pos.Offset)
}

func TestEOSMustBeAtLogicalEnd(t *testing.T) {
	t.Parallel()

	body := Seq(EOS(), Str("hi"))
	_, err := Compile("bad-eos", body)
	require.Error(t, err)
	var buildErr *BuildError
	assert.ErrorAs(t, err, &buildErr)
}

// TestEOSMustBeAtLogicalEndWhenNested checks that a misplaced eos is
// caught even when it's buried inside a Label/Traverse/Repeat body
// rather than at the top level of the compiled program.
func TestEOSMustBeAtLogicalEndWhenNested(t *testing.T) {
	t.Parallel()

	misplaced := Seq(EOS(), Str("hi"))
	labeled, err := Label(misplaced, "bad")
	require.NoError(t, err)

	_, err = Compile("bad-eos-nested", labeled)
	require.Error(t, err)
	var buildErr *BuildError
	assert.ErrorAs(t, err, &buildErr)
}
