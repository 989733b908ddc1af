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
	"io"

	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
)

// Default VM sizes.
const (
	DefaultRegisterCount = 4
	DefaultStackCapacity = 8
)

// MaxRegisterCount and MaxStackCapacity are the upper bounds for VM sizes.
// Register operands are single bytes, hence the 256 register limit.
const (
	MaxRegisterCount = 256
	MaxStackCapacity = 256
)

var log = commonlog.GetLogger("sal8.vm")

// Instance represents a SAL-8 VM instance.
type Instance struct {
	IO
	cluster  *Cluster
	code     []byte
	pc       int
	regs     []byte
	stack    stack
	cmp      byte
	insCount int64
}

// Option interface
type Option func(*Instance) error

// Input pushes the given reader on top of the input stack.
func Input(r io.Reader) Option {
	return func(i *Instance) error { i.PushInput(r); return nil }
}

// InputHandler sets the input hook.
func InputHandler(h InHandler) Option {
	return func(i *Instance) error { i.RedirectIn(h); return nil }
}

// Output configures the output hook to write to w.
func Output(w io.Writer) Option {
	return func(i *Instance) error { i.RedirectOut(WriterOutput(w)); return nil }
}

// OutputHandler sets the output hook.
func OutputHandler(h OutHandler) Option {
	return func(i *Instance) error { i.RedirectOut(h); return nil }
}

// ErrorOutput configures the error hook to write to w.
func ErrorOutput(w io.Writer) Option {
	return func(i *Instance) error { i.RedirectErr(WriterOutput(w)); return nil }
}

// ErrorHandler sets the error hook.
func ErrorHandler(h OutHandler) Option {
	return func(i *Instance) error { i.RedirectErr(h); return nil }
}

// Program loads the given cluster. See Instance.Load.
func Program(c *Cluster) Option {
	return func(i *Instance) error { i.Load(c); return nil }
}

// SetOptions sets the provided options.
func (i *Instance) SetOptions(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return err
		}
	}
	return nil
}

// New creates a new SAL-8 Virtual Machine instance with registerCount
// registers and an evaluation stack that can hold up to stackCapacity values.
// Both sizes are fixed for the lifetime of the instance.
//
// Options will be set by calling SetOptions.
func New(registerCount, stackCapacity int, opts ...Option) (*Instance, error) {
	if registerCount < 1 || registerCount > MaxRegisterCount {
		return nil, errors.Errorf("register count %d out of range [1:%d]", registerCount, MaxRegisterCount)
	}
	if stackCapacity < 1 || stackCapacity > MaxStackCapacity {
		return nil, errors.Errorf("stack capacity %d out of range [1:%d]", stackCapacity, MaxStackCapacity)
	}
	i := &Instance{
		regs:  make([]byte, registerCount),
		stack: newStack(stackCapacity),
	}
	if err := i.SetOptions(opts...); err != nil {
		return nil, err
	}
	return i, nil
}

// Load replaces the loaded program with c. The program counter is reset to 0
// and the instruction counter is cleared. Registers, stack and comparison flag
// are left as is; use Reset to clear them.
//
// The cluster is not copied. Since clusters are immutable, the same cluster
// may be loaded in several instances.
func (i *Instance) Load(c *Cluster) {
	i.cluster = c
	i.code = nil
	if c != nil {
		i.code = c.code
	}
	i.pc = 0
	i.insCount = 0
	log.Debugf("loaded cluster: %d bytes, %d instructions", c.Len(), c.InstructionCount())
}

// Reset clears registers, stack and comparison flag and rewinds the program
// counter. The loaded cluster is kept.
func (i *Instance) Reset() {
	for n := range i.regs {
		i.regs[n] = 0
	}
	i.stack.reset()
	i.cmp = 0
	i.pc = 0
	i.insCount = 0
}

// Finished returns true if there is nothing left to execute. This is always
// the case if no cluster has been loaded.
func (i *Instance) Finished() bool {
	return i.pc >= len(i.code)
}

// Cluster returns the loaded cluster.
func (i *Instance) Cluster() *Cluster {
	return i.cluster
}

// PC returns the program counter, i.e. the byte offset of the next instruction
// to execute.
func (i *Instance) PC() int {
	return i.pc
}

// InstructionIndex returns the index of the next instruction to execute in the
// loaded cluster.
func (i *Instance) InstructionIndex() int {
	return i.cluster.InstructionIndex(i.pc)
}

// InstructionCount returns the total number of instructions in the loaded
// cluster.
func (i *Instance) InstructionCount() int {
	return i.cluster.InstructionCount()
}

// Executed returns the number of instructions executed since the last call to
// Load or Reset.
func (i *Instance) Executed() int64 {
	return i.insCount
}

// RegisterCount returns the number of registers.
func (i *Instance) RegisterCount() int {
	return len(i.regs)
}

// Register returns the value of register idx.
func (i *Instance) Register(idx int) (byte, error) {
	if idx < 0 || idx >= len(i.regs) {
		return 0, errors.Wrapf(ErrInvalidRegister, "r%d", idx)
	}
	return i.regs[idx], nil
}

// SetRegister sets the value of register idx.
func (i *Instance) SetRegister(idx int, v byte) error {
	if idx < 0 || idx >= len(i.regs) {
		return errors.Wrapf(ErrInvalidRegister, "r%d", idx)
	}
	i.regs[idx] = v
	return nil
}

// Registers returns a copy of the register file.
func (i *Instance) Registers() []byte {
	t := make([]byte, len(i.regs))
	copy(t, i.regs)
	return t
}

// Cmp returns the value of the comparison flag.
func (i *Instance) Cmp() byte {
	return i.cmp
}

// StackSize returns the number of values on the stack.
func (i *Instance) StackSize() int {
	return i.stack.sp
}

// StackCapacity returns the maximum number of values the stack can hold.
func (i *Instance) StackCapacity() int {
	return len(i.stack.data)
}

// StackValue returns the value of stack slot idx, slot 0 being the bottom of
// the stack.
func (i *Instance) StackValue(idx int) (byte, error) {
	if idx < 0 || idx >= i.stack.sp {
		return 0, errors.Errorf("stack slot %d out of range [0:%d]", idx, i.stack.sp)
	}
	return i.stack.data[idx], nil
}

// Data returns the stack content, bottom first. Note that value changes will
// be reflected in the instance's stack, but re-slicing will not affect it. To
// add/remove values on the stack, use the Push and Pop functions.
func (i *Instance) Data() []byte {
	return i.stack.data[:i.stack.sp]
}

// Push pushes v on top of the stack.
func (i *Instance) Push(v byte) error {
	return i.stack.push(v)
}

// Pop pops the value on top of the stack and returns it.
func (i *Instance) Pop() (byte, error) {
	return i.stack.pop()
}
