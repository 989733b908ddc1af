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
	"encoding/binary"
	"sort"

	"github.com/pkg/errors"
)

// MaxClusterSize is the largest cluster that branch instructions can address.
const MaxClusterSize = 0xFFFF

// ErrClusterTooLarge is returned by a Builder when emitted code would grow
// beyond MaxClusterSize bytes.
var ErrClusterTooLarge = errors.New("cluster too large")

const minBuilderCap = 64

// Builder is a growable bytecode buffer used while compiling. Bytes are
// appended at the end; already written address operands can be overwritten in
// place with PatchAddr.
//
// A Builder's zero value is ready to use.
type Builder struct {
	code []byte
}

// Len returns the number of bytes written so far, i.e. the offset of the next
// byte to be written.
func (b *Builder) Len() int { return len(b.code) }

// Cap returns the allocated capacity of the underlying buffer.
func (b *Builder) Cap() int { return cap(b.code) }

func (b *Builder) grow(n int) error {
	need := len(b.code) + n
	if need > MaxClusterSize {
		return ErrClusterTooLarge
	}
	if need <= cap(b.code) {
		return nil
	}
	c := cap(b.code) * 2
	if c < minBuilderCap {
		c = minBuilderCap
	}
	for c < need {
		c *= 2
	}
	t := make([]byte, len(b.code), c)
	copy(t, b.code)
	b.code = t
	return nil
}

// Emit appends an instruction for opcode op followed by the given operand
// bytes. The number of operand bytes must match the encoded size of op, with
// address operands already split in two little endian bytes.
func (b *Builder) Emit(op Opcode, operands ...byte) error {
	if !op.Valid() {
		return errors.Errorf("invalid opcode %d", op)
	}
	if len(operands)+1 != op.Size() {
		return errors.Errorf("%s: expected %d operand bytes, got %d", op, op.Size()-1, len(operands))
	}
	if err := b.grow(len(operands) + 1); err != nil {
		return err
	}
	b.code = append(b.code, byte(op))
	b.code = append(b.code, operands...)
	return nil
}

// PatchAddr overwrites the two address bytes at offset at with addr.
func (b *Builder) PatchAddr(at int, addr int) error {
	if at < 0 || at+2 > len(b.code) {
		return errors.Errorf("patch offset %d out of range [0:%d]", at, len(b.code))
	}
	if addr < 0 || addr > MaxClusterSize {
		return errors.Wrapf(ErrClusterTooLarge, "address %d", addr)
	}
	binary.LittleEndian.PutUint16(b.code[at:], uint16(addr))
	return nil
}

// Reset discards the builder's content. The allocated buffer is kept for
// reuse.
func (b *Builder) Reset() {
	b.code = b.code[:0]
}

// Cluster freezes the builder's content into a Cluster. The builder forgets
// about the buffer and can be used for a new program.
func (b *Builder) Cluster() *Cluster {
	c := newCluster(b.code[:len(b.code):len(b.code)])
	b.code = nil
	return c
}

// AddrBytes splits addr into the two little endian bytes expected by
// Builder.Emit for address operands.
func AddrBytes(addr int) (lo, hi byte) {
	return byte(addr), byte(addr >> 8)
}

// Cluster is a compiled, immutable program.
type Cluster struct {
	code []byte
	offs []int // start offset of each decodable instruction
}

// NewCluster returns a new Cluster with a copy of the given bytecode. The
// code is not validated: invalid instructions are reported by the VM when
// executed.
func NewCluster(code []byte) *Cluster {
	t := make([]byte, len(code))
	copy(t, code)
	return newCluster(t)
}

func newCluster(code []byte) *Cluster {
	c := &Cluster{code: code}
	for pc := 0; pc < len(code); {
		sz := Opcode(code[pc]).Size()
		if sz == 0 || pc+sz > len(code) {
			break
		}
		c.offs = append(c.offs, pc)
		pc += sz
	}
	return c
}

// Len returns the size of the cluster in bytes.
func (c *Cluster) Len() int {
	if c == nil {
		return 0
	}
	return len(c.code)
}

// Bytes returns a copy of the cluster's bytecode.
func (c *Cluster) Bytes() []byte {
	if c == nil {
		return nil
	}
	t := make([]byte, len(c.code))
	copy(t, c.code)
	return t
}

// InstructionCount returns the number of instructions in the cluster. If the
// cluster contains invalid code, only the instructions preceding it are
// counted.
func (c *Cluster) InstructionCount() int {
	if c == nil {
		return 0
	}
	return len(c.offs)
}

// InstructionIndex returns the index of the instruction starting at byte
// offset pc. If pc is not the start of an instruction, the index of the
// instruction containing it is returned. Offsets at or past the last
// decodable instruction return InstructionCount().
func (c *Cluster) InstructionIndex(pc int) int {
	if c == nil || pc <= 0 || len(c.offs) == 0 {
		return 0
	}
	n := sort.SearchInts(c.offs, pc)
	if n < len(c.offs) && c.offs[n] == pc {
		return n
	}
	if n == len(c.offs) {
		last := c.offs[n-1]
		if pc >= last+Opcode(c.code[last]).Size() {
			return n
		}
	}
	return n - 1
}

// Offset returns the byte offset of the n-th instruction.
func (c *Cluster) Offset(n int) (int, bool) {
	if c == nil || n < 0 || n >= len(c.offs) {
		return 0, false
	}
	return c.offs[n], true
}

// ValidTarget returns true if pc is an acceptable branch target: either the
// start of a decodable instruction or the end of the cluster.
func (c *Cluster) ValidTarget(pc int) bool {
	if pc == c.Len() {
		return true
	}
	if c == nil || pc < 0 || pc > len(c.code) {
		return false
	}
	n := sort.SearchInts(c.offs, pc)
	return n < len(c.offs) && c.offs[n] == pc
}
