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

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/db47h/sal8/asm"
	"github.com/db47h/sal8/internal/sali"
	"github.com/db47h/sal8/vm"
)

func dumpSlice(w io.Writer, a []byte) {
	for n, v := range a {
		if n > 0 {
			w.Write([]byte{' '})
		}
		io.WriteString(w, strconv.Itoa(int(v)))
	}
}

func cmpString(cmp byte) string {
	switch cmp {
	case vm.CmpLess:
		return "<"
	case vm.CmpEqual:
		return "="
	case vm.CmpGreater:
		return ">"
	}
	return "-"
}

// dumpVM writes the VM state to the specified io.Writer: program counter,
// registers, comparison flag and stack (bottom first).
func dumpVM(i *vm.Instance, w io.Writer) error {
	ew := sali.NewErrWriter(w)
	fmt.Fprintf(ew, "PC:    %d/%d (instruction %d/%d)", i.PC(), i.Cluster().Len(), i.InstructionIndex(), i.InstructionCount())
	if !i.Finished() {
		io.WriteString(ew, " ")
		asm.Disassemble(i.Cluster().Bytes(), i.PC(), ew)
	}
	io.WriteString(ew, "\nRegs:  ")
	dumpSlice(ew, i.Registers())
	io.WriteString(ew, "\nCmp:   ")
	io.WriteString(ew, cmpString(i.Cmp()))
	fmt.Fprintf(ew, "\nStack: %d/%d [", i.StackSize(), i.StackCapacity())
	dumpSlice(ew, i.Data())
	io.WriteString(ew, "]\n")
	return ew.Err
}
