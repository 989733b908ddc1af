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
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
)

// InHandler is the function prototype for input hooks. It returns the next
// input byte, or io.EOF once the input is exhausted. Any other error is
// reported as is by the VM.
type InHandler func() (byte, error)

// OutHandler is the function prototype for output and error hooks. Each call
// receives a chunk of text produced by a single instruction.
type OutHandler func(text string) error

// IO holds the input, output and error hooks used by a VM instance or a
// compiler. Hooks that are not set default to os.Stdin, os.Stdout and
// os.Stderr respectively.
//
// The zero value is ready to use.
type IO struct {
	in     InHandler
	out    OutHandler
	err    OutHandler
	inputs *multiReader
}

// RedirectIn sets the input hook. A nil handler restores the default.
func (p *IO) RedirectIn(h InHandler) {
	p.in = h
	p.inputs = nil
}

// RedirectOut sets the output hook. A nil handler restores the default.
func (p *IO) RedirectOut(h OutHandler) {
	p.out = h
}

// RedirectErr sets the error hook. A nil handler restores the default.
func (p *IO) RedirectErr(h OutHandler) {
	p.err = h
}

// PushInput sets r as the current input. When r reaches EOF, the previously
// pushed reader will be used. Pushing a reader replaces any hook set with
// RedirectIn.
func (p *IO) PushInput(r io.Reader) {
	if p.inputs == nil {
		p.inputs = new(multiReader)
		p.in = p.inputs.ReadByte
	}
	p.inputs.pushReader(r)
}

var stdin io.ByteReader

// ReadInput calls the input hook.
func (p *IO) ReadInput() (byte, error) {
	if p.in != nil {
		return p.in()
	}
	if stdin == nil {
		stdin = bufio.NewReader(os.Stdin)
	}
	return stdin.ReadByte()
}

// WriteOutput calls the output hook.
func (p *IO) WriteOutput(text string) error {
	if p.out != nil {
		return p.out(text)
	}
	_, err := io.WriteString(os.Stdout, text)
	return errors.Wrap(err, "write to stdout failed")
}

// WriteError calls the error hook.
func (p *IO) WriteError(text string) error {
	if p.err != nil {
		return p.err(text)
	}
	_, err := io.WriteString(os.Stderr, text)
	return errors.Wrap(err, "write to stderr failed")
}
