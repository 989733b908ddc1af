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
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// decode validates the instruction at the current PC: opcode, operand bytes,
// register indices and branch target. On success, operands that are register
// indices are guaranteed to be valid.
func (i *Instance) decode() (Opcode, error) {
	op := Opcode(i.code[i.pc])
	sz := op.Size()
	if sz == 0 {
		return op, ErrInvalidOpcode
	}
	if i.pc+sz > len(i.code) {
		return op, ErrTruncatedInstruction
	}
	p := i.pc + 1
	for _, arg := range op.Operands() {
		switch arg {
		case Reg:
			if int(i.code[p]) >= len(i.regs) {
				return op, errors.Wrapf(ErrInvalidRegister, "r%d", i.code[p])
			}
		case Addr:
			if t := i.addr(p); !i.cluster.ValidTarget(t) {
				return op, errors.Wrapf(ErrInvalidBranchTarget, "%d", t)
			}
		}
		p += arg.Size()
	}
	return op, nil
}

func (i *Instance) addr(p int) int {
	return int(binary.LittleEndian.Uint16(i.code[p:]))
}

// src returns the value of the second operand of a two operand instruction,
// be it a register or an immediate value.
func (i *Instance) src(op Opcode) byte {
	v := i.code[i.pc+2]
	if op.Operands()[1] == Reg {
		return i.regs[v]
	}
	return v
}

// val returns the value of the only operand of a one operand instruction.
func (i *Instance) val(op Opcode) byte {
	v := i.code[i.pc+1]
	if op.Operands()[0] == Reg {
		return i.regs[v]
	}
	return v
}

// Run executes up to n instructions of the loaded cluster, or until the end of
// the cluster is reached if n <= 0. Run returns early without error when the
// program finishes.
//
// If an error occurs, it will be of type *RuntimeError, and the PC will point
// to the instruction that triggered the error. A faulting instruction does not
// modify the VM state, so the host can fix the cause (e.g. feed more input)
// and call Run again.
//
// Calling Run(n) repeatedly until Finished returns true executes exactly the
// same instructions as a single call to Run(0).
func (i *Instance) Run(n int) (err error) {
	defer func() {
		if e := recover(); e != nil {
			switch e := e.(type) {
			case error:
				err = errors.Wrapf(e, "Recovered error @pc=%d/%d, stack %d/%d", i.pc, len(i.code), i.stack.sp, len(i.stack.data))
			default:
				panic(e)
			}
		}
	}()
	for steps := 0; i.pc < len(i.code) && (n <= 0 || steps < n); steps++ {
		op, err := i.decode()
		if err != nil {
			return i.fault(op, err)
		}
		switch op {
		case OpNop:
			i.pc++
		case OpHalt:
			i.pc = len(i.code)
		case OpMovR, OpMovI:
			i.regs[i.code[i.pc+1]] = i.src(op)
			i.pc += 3
		case OpAddR, OpAddI:
			i.regs[i.code[i.pc+1]] += i.src(op)
			i.pc += 3
		case OpSubR, OpSubI:
			i.regs[i.code[i.pc+1]] -= i.src(op)
			i.pc += 3
		case OpMulR, OpMulI:
			i.regs[i.code[i.pc+1]] *= i.src(op)
			i.pc += 3
		case OpDivR, OpDivI:
			rhs := i.src(op)
			if rhs == 0 {
				return i.fault(op, ErrDivisionByZero)
			}
			i.regs[i.code[i.pc+1]] /= rhs
			i.pc += 3
		case OpModR, OpModI:
			rhs := i.src(op)
			if rhs == 0 {
				return i.fault(op, ErrDivisionByZero)
			}
			i.regs[i.code[i.pc+1]] %= rhs
			i.pc += 3
		case OpAndR, OpAndI:
			i.regs[i.code[i.pc+1]] &= i.src(op)
			i.pc += 3
		case OpOrR, OpOrI:
			i.regs[i.code[i.pc+1]] |= i.src(op)
			i.pc += 3
		case OpXorR, OpXorI:
			i.regs[i.code[i.pc+1]] ^= i.src(op)
			i.pc += 3
		case OpShlR, OpShlI:
			i.regs[i.code[i.pc+1]] <<= i.src(op)
			i.pc += 3
		case OpShrR, OpShrI:
			i.regs[i.code[i.pc+1]] >>= i.src(op)
			i.pc += 3
		case OpNot:
			d := i.code[i.pc+1]
			i.regs[d] = ^i.regs[d]
			i.pc += 2
		case OpInc:
			i.regs[i.code[i.pc+1]]++
			i.pc += 2
		case OpDec:
			i.regs[i.code[i.pc+1]]--
			i.pc += 2
		case OpPushR, OpPushI:
			if err = i.stack.push(i.val(op)); err != nil {
				return i.fault(op, err)
			}
			i.pc += 2
		case OpPop:
			v, err := i.stack.pop()
			if err != nil {
				return i.fault(op, err)
			}
			i.regs[i.code[i.pc+1]] = v
			i.pc += 2
		case OpPeek:
			v, err := i.stack.peek()
			if err != nil {
				return i.fault(op, err)
			}
			i.regs[i.code[i.pc+1]] = v
			i.pc += 2
		case OpDrop:
			if _, err = i.stack.pop(); err != nil {
				return i.fault(op, err)
			}
			i.pc++
		case OpCmpR, OpCmpI:
			i.cmp = compare(i.regs[i.code[i.pc+1]], i.src(op))
			i.pc += 3
		case OpJmp, OpJe, OpJne, OpJl, OpJle, OpJg, OpJge:
			if taken(op, i.cmp) {
				i.pc = i.addr(i.pc + 1)
			} else {
				i.pc += 3
			}
		case OpIn:
			v, err := i.ReadInput()
			if err != nil {
				if errors.Cause(err) == io.EOF {
					err = ErrEndOfInput
				}
				return i.fault(op, err)
			}
			i.regs[i.code[i.pc+1]] = v
			i.pc += 2
		case OpOutR, OpOutI:
			if err = i.WriteOutput(strconv.Itoa(int(i.val(op)))); err != nil {
				return i.fault(op, err)
			}
			i.pc += 2
		case OpOutcR, OpOutcI:
			if err = i.WriteOutput(string([]byte{i.val(op)})); err != nil {
				return i.fault(op, err)
			}
			i.pc += 2
		case OpErrR, OpErrI:
			if err = i.WriteError(strconv.Itoa(int(i.val(op)))); err != nil {
				return i.fault(op, err)
			}
			i.pc += 2
		case OpErrcR, OpErrcI:
			if err = i.WriteError(string([]byte{i.val(op)})); err != nil {
				return i.fault(op, err)
			}
			i.pc += 2
		default:
			return i.fault(op, ErrInvalidOpcode)
		}
		i.insCount++
	}
	return nil
}
