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
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/db47h/sal8/internal/sali"
	"github.com/db47h/sal8/vm"
	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("sal8.asm")

// Compiler translates SAL-8 assembly into clusters. A Compiler can be reused
// for any number of compilations, but is not safe for concurrent use.
//
// Diagnostics are written to the compiler's error hook; the optional summary
// enabled with Verbose goes to the output hook. See vm.IO.
type Compiler struct {
	vm.IO
	regCount int
	b        vm.Builder
	labels   *labelTable
	verbose  bool
}

// Option interface
type Option func(*Compiler) error

// Output configures the output hook to write to w.
func Output(w io.Writer) Option {
	return func(c *Compiler) error { c.RedirectOut(vm.WriterOutput(w)); return nil }
}

// OutputHandler sets the output hook.
func OutputHandler(h vm.OutHandler) Option {
	return func(c *Compiler) error { c.RedirectOut(h); return nil }
}

// ErrorOutput configures the error hook to write to w.
func ErrorOutput(w io.Writer) Option {
	return func(c *Compiler) error { c.RedirectErr(vm.WriterOutput(w)); return nil }
}

// ErrorHandler sets the error hook.
func ErrorHandler(h vm.OutHandler) Option {
	return func(c *Compiler) error { c.RedirectErr(h); return nil }
}

// Verbose enables a one line summary written to the output hook after each
// successful compilation.
func Verbose(v bool) Option {
	return func(c *Compiler) error { c.verbose = v; return nil }
}

// SetOptions sets the provided options.
func (c *Compiler) SetOptions(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// New returns a new compiler for a VM with registerCount registers. Register
// operands are checked against that count.
func New(registerCount int, opts ...Option) (*Compiler, error) {
	if registerCount < 1 || registerCount > vm.MaxRegisterCount {
		return nil, errors.Errorf("register count %d out of range [1:%d]", registerCount, vm.MaxRegisterCount)
	}
	c := &Compiler{
		regCount: registerCount,
		labels:   newLabelTable(),
	}
	if err := c.SetOptions(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// RegisterCount returns the number of registers programs are compiled for.
func (c *Compiler) RegisterCount() int {
	return c.regCount
}

// Compile compiles the assembly read from r and returns the resulting cluster.
//
// The name parameter is used only in error messages to name the source of the
// error. If the io.Reader is a file, name should be the file name.
//
// On failure, no cluster is returned, each diagnostic is written to the error
// hook and the returned error is an ErrAsm with up to 10 entries. In either
// case, the compiler is ready for a new compilation.
func (c *Compiler) Compile(name string, r io.Reader) (*vm.Cluster, error) {
	defer c.Clean()
	p := newParser(name, r)
	stmts := p.parse()
	errs := p.errs
	if len(errs) == 0 {
		c.emit(stmts, &errs)
	}
	if len(errs) > 0 {
		for _, e := range errs {
			c.WriteError(e.Error() + "\n")
		}
		log.Debugf("%s: compilation failed with %d error(s)", name, len(errs))
		return nil, errs
	}
	cl := c.b.Cluster()
	log.Debugf("%s: compiled %d instructions, %d bytes", name, cl.InstructionCount(), cl.Len())
	if c.verbose {
		c.WriteOutput(fmt.Sprintf("%s: %d instructions, %d bytes\n", name, cl.InstructionCount(), cl.Len()))
	}
	return cl, nil
}

// CompileString compiles the given source. Positions in errors are reported
// with an empty file name.
func (c *Compiler) CompileString(src string) (*vm.Cluster, error) {
	return c.Compile("", strings.NewReader(src))
}

// Clean discards any partially built code and all label definitions.
func (c *Compiler) Clean() {
	c.b.Reset()
	c.labels.reset()
}

// Assemble compiles assembly read from the supplied io.Reader for a VM with
// the default register count and returns the resulting cluster. Diagnostics
// are only reported through the returned error.
//
// The returned error, if not nil, can safely be cast to an ErrAsm value that
// will contain up to 10 entries.
func Assemble(name string, r io.Reader) (*vm.Cluster, error) {
	c, err := New(vm.DefaultRegisterCount, ErrorHandler(vm.DiscardOutput))
	if err != nil {
		return nil, err
	}
	return c.Compile(name, r)
}

// Disassemble writes a disassembly of the instruction at position pc in code
// to the specified io.Writer and returns the position of the next instruction
// and any write error. Invalid or truncated instructions are written as "???"
// followed by the offending byte.
func Disassemble(code []byte, pc int, w io.Writer) (next int, err error) {
	ew := sali.NewErrWriter(w)
	op := vm.Opcode(code[pc])
	sz := op.Size()
	if sz == 0 || pc+sz > len(code) {
		fmt.Fprintf(ew, "??? 0x%02x", code[pc])
		return pc + 1, ew.Err
	}
	io.WriteString(ew, op.Name())
	p := pc + 1
	for n, arg := range op.Operands() {
		if n == 0 {
			io.WriteString(ew, " ")
		} else {
			io.WriteString(ew, ", ")
		}
		switch arg {
		case vm.Reg:
			io.WriteString(ew, "r"+strconv.Itoa(int(code[p])))
		case vm.Imm:
			io.WriteString(ew, strconv.Itoa(int(code[p])))
		case vm.Addr:
			io.WriteString(ew, strconv.Itoa(int(code[p])|int(code[p+1])<<8))
		}
		p += arg.Size()
	}
	return p, ew.Err
}

// DisassembleAll writes a disassembly of the whole cluster to the specified
// io.Writer, one instruction per line preceded by its offset. It will return
// any write error.
func DisassembleAll(c *vm.Cluster, w io.Writer) error {
	ew := sali.NewErrWriter(w)
	code := c.Bytes()
	for pc := 0; pc < len(code); {
		fmt.Fprintf(ew, "% 6d\t", pc)
		pc, _ = Disassemble(code, pc, ew)
		ew.Write([]byte{'\n'})
		if ew.Err != nil {
			return ew.Err
		}
	}
	return nil
}
