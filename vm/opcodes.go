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

// Opcode identifies a VM instruction. It is always the first byte of an
// encoded instruction.
type Opcode byte

// SAL-8 Virtual Machine Opcodes.
//
// Mnemonics with both a register and an immediate source operand have one
// opcode per form: the R suffix takes a register, the I suffix an immediate
// value.
const (
	OpNop Opcode = iota
	OpHalt
	OpMovR
	OpMovI
	OpAddR
	OpAddI
	OpSubR
	OpSubI
	OpMulR
	OpMulI
	OpDivR
	OpDivI
	OpModR
	OpModI
	OpAndR
	OpAndI
	OpOrR
	OpOrI
	OpXorR
	OpXorI
	OpShlR
	OpShlI
	OpShrR
	OpShrI
	OpNot
	OpInc
	OpDec
	OpPushR
	OpPushI
	OpPop
	OpPeek
	OpDrop
	OpCmpR
	OpCmpI
	OpJmp
	OpJe
	OpJne
	OpJl
	OpJle
	OpJg
	OpJge
	OpIn
	OpOutR
	OpOutI
	OpOutcR
	OpOutcI
	OpErrR
	OpErrI
	OpErrcR
	OpErrcI
	opCount
)

// Operand is the kind of an instruction operand.
type Operand byte

// Operand kinds.
const (
	Reg  Operand = iota + 1 // register index, 1 byte
	Imm                     // immediate value, 1 byte
	Addr                    // branch target, 2 bytes little endian
)

// Size returns the encoded size of the operand in bytes.
func (o Operand) Size() int {
	if o == Addr {
		return 2
	}
	return 1
}

func (o Operand) String() string {
	switch o {
	case Reg:
		return "register"
	case Imm:
		return "immediate"
	case Addr:
		return "label"
	}
	return "invalid"
}

type opInfo struct {
	name string
	args []Operand
	size int
}

var (
	argNone = []Operand{}
	argR    = []Operand{Reg}
	argI    = []Operand{Imm}
	argRR   = []Operand{Reg, Reg}
	argRI   = []Operand{Reg, Imm}
	argA    = []Operand{Addr}
)

var opcodes = [opCount]opInfo{
	OpNop:   {name: "nop", args: argNone},
	OpHalt:  {name: "halt", args: argNone},
	OpMovR:  {name: "mov", args: argRR},
	OpMovI:  {name: "mov", args: argRI},
	OpAddR:  {name: "add", args: argRR},
	OpAddI:  {name: "add", args: argRI},
	OpSubR:  {name: "sub", args: argRR},
	OpSubI:  {name: "sub", args: argRI},
	OpMulR:  {name: "mul", args: argRR},
	OpMulI:  {name: "mul", args: argRI},
	OpDivR:  {name: "div", args: argRR},
	OpDivI:  {name: "div", args: argRI},
	OpModR:  {name: "mod", args: argRR},
	OpModI:  {name: "mod", args: argRI},
	OpAndR:  {name: "and", args: argRR},
	OpAndI:  {name: "and", args: argRI},
	OpOrR:   {name: "or", args: argRR},
	OpOrI:   {name: "or", args: argRI},
	OpXorR:  {name: "xor", args: argRR},
	OpXorI:  {name: "xor", args: argRI},
	OpShlR:  {name: "shl", args: argRR},
	OpShlI:  {name: "shl", args: argRI},
	OpShrR:  {name: "shr", args: argRR},
	OpShrI:  {name: "shr", args: argRI},
	OpNot:   {name: "not", args: argR},
	OpInc:   {name: "inc", args: argR},
	OpDec:   {name: "dec", args: argR},
	OpPushR: {name: "push", args: argR},
	OpPushI: {name: "push", args: argI},
	OpPop:   {name: "pop", args: argR},
	OpPeek:  {name: "peek", args: argR},
	OpDrop:  {name: "drop", args: argNone},
	OpCmpR:  {name: "cmp", args: argRR},
	OpCmpI:  {name: "cmp", args: argRI},
	OpJmp:   {name: "jmp", args: argA},
	OpJe:    {name: "je", args: argA},
	OpJne:   {name: "jne", args: argA},
	OpJl:    {name: "jl", args: argA},
	OpJle:   {name: "jle", args: argA},
	OpJg:    {name: "jg", args: argA},
	OpJge:   {name: "jge", args: argA},
	OpIn:    {name: "in", args: argR},
	OpOutR:  {name: "out", args: argR},
	OpOutI:  {name: "out", args: argI},
	OpOutcR: {name: "outc", args: argR},
	OpOutcI: {name: "outc", args: argI},
	OpErrR:  {name: "err", args: argR},
	OpErrI:  {name: "err", args: argI},
	OpErrcR: {name: "errc", args: argR},
	OpErrcI: {name: "errc", args: argI},
}

func init() {
	for op := range opcodes {
		info := &opcodes[op]
		info.size = 1
		for _, arg := range info.args {
			info.size += arg.Size()
		}
	}
}

// Valid returns true if op is a known opcode.
func (op Opcode) Valid() bool {
	return op < opCount
}

// Name returns the assembler mnemonic for op. Register and immediate forms
// share the same mnemonic.
func (op Opcode) Name() string {
	if !op.Valid() {
		return ""
	}
	return opcodes[op].name
}

func (op Opcode) String() string {
	if !op.Valid() {
		return "???"
	}
	return opcodes[op].name
}

// Operands returns the kinds of the operands following op. The returned slice
// must not be modified.
func (op Opcode) Operands() []Operand {
	if !op.Valid() {
		return nil
	}
	return opcodes[op].args
}

// Size returns the encoded size of an instruction starting with op, including
// the opcode byte itself, or 0 for an invalid opcode.
func (op Opcode) Size() int {
	if !op.Valid() {
		return 0
	}
	return opcodes[op].size
}

// IsBranch returns true if op sets the PC to its address operand.
func (op Opcode) IsBranch() bool {
	return op >= OpJmp && op <= OpJge
}

// Opcodes returns all valid opcodes in numerical order.
func Opcodes() []Opcode {
	ops := make([]Opcode, opCount)
	for n := range ops {
		ops[n] = Opcode(n)
	}
	return ops
}

// Comparison flag values set by the cmp instruction.
const (
	CmpLess    byte = 1 << iota // lhs < rhs
	CmpEqual                    // lhs == rhs
	CmpGreater                  // lhs > rhs
)

func compare(lhs, rhs byte) byte {
	switch {
	case lhs < rhs:
		return CmpLess
	case lhs > rhs:
		return CmpGreater
	}
	return CmpEqual
}

// taken reports whether a conditional branch is taken for flag value cmp.
func taken(op Opcode, cmp byte) bool {
	switch op {
	case OpJmp:
		return true
	case OpJe:
		return cmp&CmpEqual != 0
	case OpJne:
		return cmp&CmpEqual == 0
	case OpJl:
		return cmp&CmpLess != 0
	case OpJle:
		return cmp&(CmpLess|CmpEqual) != 0
	case OpJg:
		return cmp&CmpGreater != 0
	case OpJge:
		return cmp&(CmpGreater|CmpEqual) != 0
	}
	return false
}
