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

// Package vm implements the SAL-8 virtual machine.
//
// A VM Instance has a fixed number of byte registers, a bounded evaluation
// stack of bytes and a single comparison flag. It executes a Cluster, the
// immutable bytecode produced by the assembler in package
// github.com/db47h/sal8/asm (or built by hand with a Builder).
//
// Execution can be bounded: Run(n) returns after n instructions, which allows
// a host to interleave several VMs or to limit the time spent in scripts on
// each tick. Run(0) runs until the program finishes or faults. Between two
// calls to Run, the whole VM state (PC, registers, stack and flag) can be
// inspected or modified.
//
// Input and output go through three hooks (input, output and error) that
// default to the process' standard streams. See IO.
//
// Instruction encoding
//
// Every instruction starts with an Opcode byte, followed by its operands:
// register indices and immediate values take one byte, branch targets take
// two bytes (little endian offset from the start of the cluster). The size of
// an instruction is determined by its opcode alone (see Opcode.Size).
//
// Runtime faults
//
// Before executing an instruction, the VM checks its opcode, its register
// operands against the register count, its branch target and any stack or
// input requirement. If a check fails, Run returns a *RuntimeError and the
// instruction has no effect: the PC still points to it.
//
// Loading a new cluster with Load rewinds the PC but leaves registers, stack
// and comparison flag untouched. Use Reset to clear them.
package vm
