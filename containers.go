package combinant

// PairContainer allows returning a pair of results from a combinator.
// Used by ByteOffsetOf/LineOf to pair a traverse's tokens with the
// position observed alongside them.
type PairContainer[L, R any] struct {
	Left  L
	Right R
}

// NewPairContainer instantiates a new PairContainer.
func NewPairContainer[L, R any](left L, right R) PairContainer[L, R] {
	return PairContainer[L, R]{
		Left:  left,
		Right: right,
	}
}

// Tagged pairs a name with the value(s) a tag/unwrap_and_tag combinator
// produced.
type Tagged struct {
	Tag   string
	Value any
}

// NewTagged instantiates a new Tagged token.
func NewTagged(tag string, value any) Tagged {
	return Tagged{Tag: tag, Value: value}
}
