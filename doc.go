// Package combinant builds recognizers for byte/UTF-8 streams by
// composing a small set of combinators into a combinator program (an
// immutable Program value), compiling that program into a chain of
// recognizer clauses with Compile, and running the result with Parse.
//
// A Program is built from leaf nodes (BinSegment, Str, BytesN, EOS) and
// combinators over them (Choice, Repeat, Times, Lookahead, Eventually,
// Label, Traverse, Parsec), plus the derived operations spelled out
// directly in terms of those primitives: Optional, Integer, AsciiString,
// Utf8String, Wrap, Tag, UnwrapAndTag, Ignore, Replace, ByteOffsetOf,
// LineOf, Duplicate.
//
// Compile lowers a Program to a *Parser. The compiler fuses any
// contiguous run of statically-sized nodes into a single pattern match
// (bound-prefix fusion) and, for large literal choices, can dispatch
// through an Aho-Corasick automaton ahead of the usual cascade.
//
// Generate walks a Program (typically a compiled Parser's exported IR,
// see WithExportMetadata) and produces a random byte string the grammar
// accepts, using crypto/rand throughout.
//
// Module provides a named parser table so combinators can call each
// other, including recursively, via Parsec.
package combinant
