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
/*
*
* k6 - a next-generation load testing tool
* Copyright (C) 2021 Load Impact
*
* This program is free software: you can redistribute it and/or modify
* it under the terms of the GNU Affero General Public License as
* published by the Free Software Foundation, either version 3 of the
* License, or (at your option) any later version.
*
* This program is distributed in the hope that it will be useful,
* but WITHOUT ANY WARRANTY; without even the implied warranty of
* MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
* GNU Affero General Public License for more details.
*
* You should have received a copy of the GNU Affero General Public License
* along with this program.  If not, see <http://www.gnu.org/licenses/>.
*
 */

package combinant

import (
	"fmt"
)

// BuildError reports that a builder call was given arguments that can
// never produce a valid Program: an empty body where one is disallowed, an
// invalid range, a mismatched weight list, and so on. BuildErrors are
// returned immediately from the offending builder call, from Compile for
// problems only visible in a whole program (an eos before the logical
// end), or from Module.Link for cross-definition problems (an undefined
// parsec target) — they never surface once a Parser has been built.
type BuildError struct {
	Reason string
	Err    error
}

// NewBuildError creates a BuildError carrying a human-readable reason.
func NewBuildError(reason string) *BuildError {
	return &BuildError{Reason: reason}
}

// WrapBuildError creates a BuildError that wraps an underlying cause.
func WrapBuildError(reason string, err error) *BuildError {
	return &BuildError{Reason: reason, Err: err}
}

// Error returns a human readable error string.
func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

// Unwrap returns the underlying cause, or nil.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// Failure is the result of a parse that did not succeed. It carries enough
// of the runtime State to let a caller report a precise, position-aware
// error, or resume analysis at the point of failure.
type Failure struct {
	// Kind classifies where the failure originated: "bound" (a leaf node
	// or eos in a fused run), "eventually", "traverse", "lookahead",
	// "choice", "repeat", or "parsec". A Label keeps the Kind of the
	// failure whose Reason it replaces.
	Kind string
	// Reason is the human-readable explanation, e.g. "expected end of
	// string", or "expected " + a label's text.
	Reason string
	// Rest is the unconsumed input at the point of failure.
	Rest []byte
	// Ctx is the context as of the point of failure.
	Ctx Context
	// Pos is the position at the point of failure.
	Pos Position
	// Consumed is the number of bytes consumed before the failure,
	// relative to the enclosing Parse call's initial offset.
	Consumed int
}

// Error returns a human readable, position-qualified error string.
func (f *Failure) Error() string {
	return fmt.Sprintf("%s (line %d, offset %d)", f.Reason, f.Pos.Line, f.Pos.Offset)
}

// IsFatal reports whether the failure is fatal. It always returns true and
// combinant itself never consults it: the choice/commit rule (see
// compileChoice) decides whether sibling alternatives are tried by
// comparing a failure's position to the choice's entry offset rather than
// by a flag on the failure itself. It exists so callers that wrap a
// Failure in their own error type can mirror the teacher's Error.IsFatal
// check.
func (f *Failure) IsFatal() bool {
	return true
}
