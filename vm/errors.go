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

package vm

import (
	"fmt"

	"github.com/pkg/errors"
)

// Runtime error kinds. A *RuntimeError returned by Instance.Run wraps one of
// these, or an error returned by an I/O hook.
var (
	ErrStackOverflow        = errors.New("stack overflow")
	ErrStackUnderflow       = errors.New("stack underflow")
	ErrInvalidRegister      = errors.New("invalid register")
	ErrInvalidOpcode        = errors.New("invalid opcode")
	ErrTruncatedInstruction = errors.New("truncated instruction")
	ErrInvalidBranchTarget  = errors.New("invalid branch target")
	ErrDivisionByZero       = errors.New("division by zero")
	ErrEndOfInput           = errors.New("end of input")
)

// RuntimeError describes a fault that aborted a Run. The instruction at PC had
// no effect on the VM state.
type RuntimeError struct {
	PC  int    // offset of the faulting instruction
	Op  Opcode // its opcode
	Err error  // the fault
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("@pc=%d (%s): %v", e.PC, e.Op, e.Err)
}

// Cause returns the underlying fault, for use with errors.Cause.
func (e *RuntimeError) Cause() error { return e.Err }

// Unwrap returns the underlying fault, for use with errors.Is.
func (e *RuntimeError) Unwrap() error { return e.Err }

// Format implements fmt.Formatter. The %+v verb includes the stack trace of
// the underlying error if it has one.
func (e *RuntimeError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "@pc=%d (%s): %+v", e.PC, e.Op, e.Err)
		return
	}
	fmt.Fprint(s, e.Error())
}

func (i *Instance) fault(op Opcode, err error) error {
	return &RuntimeError{PC: i.pc, Op: op, Err: err}
}
