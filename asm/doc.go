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

// Package asm provides a compiler and a disassembler for SAL-8 VM code.
//
// Source is line oriented. Each line has the form
//
//	[label:] [mnemonic [operand {, operand}]] [; comment]
//
// Comments start with ';' or '#' and run to the end of the line. Mnemonics
// are case insensitive, labels are case sensitive.
//
// Operands:
//
//	r0 ... r255	register. Must be below the register count given to New.
//	42, 0x2a, 'a'	immediate value: a Go integer or character literal in the range [0:255].
//	loop		label. Labels may be used before they are defined.
//
// Label names start with a letter, '_' or '.', followed by letters, digits,
// '_' or '.'. Names of the form r<digits> are reserved for registers.
//
// Supported instructions (d: destination register, s: register or immediate,
// L: label):
//
//	asm		description
//	---		-----------
//	nop		no-op
//	halt		stop execution
//	mov d, s	d = s
//	add d, s	d = d + s (modulo 256)
//	sub d, s	d = d - s (modulo 256)
//	mul d, s	d = d * s (modulo 256)
//	div d, s	d = d / s, faults if s is 0
//	mod d, s	d = d % s, faults if s is 0
//	and d, s	d = d & s
//	or d, s		d = d | s
//	xor d, s	d = d ^ s
//	shl d, s	d = d << s
//	shr d, s	d = d >> s
//	not d		d = ^d
//	inc d		d = d + 1
//	dec d		d = d - 1
//	push s		push s on the stack
//	pop d		pop the top of the stack into d
//	peek d		copy the top of the stack into d
//	drop		discard the top of the stack
//	cmp d, s	compare d to s (unsigned) and set the comparison flag
//	jmp L		jump to L
//	je L		jump to L if equal (alias jz)
//	jne L		jump to L if not equal (alias jnz)
//	jl L		jump to L if less
//	jle L		jump to L if less or equal
//	jg L		jump to L if greater
//	jge L		jump to L if greater or equal
//	in d		read one byte from the input hook into d
//	out s		write s as a decimal number to the output hook
//	outc s		write s as a single byte to the output hook
//	err s		write s as a decimal number to the error hook
//	errc s		write s as a single byte to the error hook
//
// Conditional jumps test the flag set by the last cmp. Before any cmp, no
// condition holds: only jne is taken.
//
// Example:
//
//	; print the digits 0 to 9
//		mov r0, '0'
//	loop:	outc r0
//		inc r0
//		cmp r0, '9'
//		jle loop
//		outc '\n'
package asm
