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
	"strconv"

	"github.com/db47h/sal8/vm"
	"github.com/pkg/errors"
)

// emit generates code for the given statements into c.b. Errors are
// accumulated in errs.
func (c *Compiler) emit(stmts []statement, errs *ErrAsm) {
	var args [3]byte
	for _, st := range stmts {
		if errs.full() {
			return
		}
		if st.label != "" {
			if err := c.labels.define(st.label, c.b.Len(), st.pos); err != nil {
				*errs = append(*errs, err)
			}
		}
		if !st.inst {
			continue
		}
		ops := args[:0]
		ok := true
		for _, arg := range st.args {
			switch arg.kind {
			case vm.Reg:
				if arg.val >= c.regCount {
					errs.add(arg.pos, ErrInvalidRegister, "r"+strconv.Itoa(arg.val)+" (register count is "+strconv.Itoa(c.regCount)+")")
					ok = false
				}
				ops = append(ops, byte(arg.val))
			case vm.Imm:
				ops = append(ops, byte(arg.val))
			case vm.Addr:
				// +1 for the opcode byte
				site := c.b.Len() + 1 + len(ops)
				lo, hi := vm.AddrBytes(c.labels.reference(arg.label, site, arg.pos))
				ops = append(ops, lo, hi)
			}
		}
		if !ok {
			continue
		}
		if err := c.b.Emit(st.op, ops...); err != nil {
			if errors.Is(err, vm.ErrClusterTooLarge) {
				errs.add(st.pos, ErrProgramTooLarge, "code exceeds "+strconv.Itoa(vm.MaxClusterSize)+" bytes")
				return
			}
			errs.add(st.pos, ErrSyntax, err.Error())
		}
	}
	if len(*errs) == 0 {
		c.labels.finalize(&c.b, errs)
	}
}
