// This file is part of sal8 - https://github.com/db47h/sal8
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package asm

import (
	"bytes"
	"text/scanner"

	"github.com/pkg/errors"
)

// Compile error kinds. Every *Error wraps one of these.
var (
	ErrSyntax          = errors.New("syntax error")
	ErrDuplicateLabel  = errors.New("duplicate label")
	ErrUnresolvedLabel = errors.New("unresolved label")
	ErrInvalidRegister = errors.New("invalid register")
	ErrProgramTooLarge = errors.New("program too large")
)

// maxErrors is the maximum number of errors reported by a single compilation.
const maxErrors = 10

// Error is a compile error at a given position in the source.
type Error struct {
	Pos  scanner.Position
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return e.Pos.String() + ": " + e.Kind.Error() + ": " + e.Msg
	}
	return e.Kind.Error() + ": " + e.Msg
}

// Cause returns the error kind, for use with errors.Cause.
func (e *Error) Cause() error { return e.Kind }

// Unwrap returns the error kind, for use with errors.Is.
func (e *Error) Unwrap() error { return e.Kind }

// ErrAsm is the error type returned by Compile. It contains up to 10 errors in
// the order they were found.
type ErrAsm []*Error

func (e ErrAsm) Error() string {
	var b bytes.Buffer
	for n, err := range e {
		if n > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

// Is returns true if any of the errors in the list matches target.
func (e ErrAsm) Is(target error) bool {
	for _, err := range e {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (e *ErrAsm) add(pos scanner.Position, kind error, msg string) {
	if len(*e) < maxErrors {
		*e = append(*e, &Error{pos, kind, msg})
	}
}

func (e ErrAsm) full() bool {
	return len(e) >= maxErrors
}
