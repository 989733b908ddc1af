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

package asm_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/db47h/sal8/asm"
	"github.com/db47h/sal8/vm"
)

func compile(t *testing.T, src string, opts ...asm.Option) *vm.Cluster {
	t.Helper()
	c, err := asm.New(vm.DefaultRegisterCount, append([]asm.Option{asm.ErrorHandler(vm.DiscardOutput)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	cl, err := c.Compile("test", strings.NewReader(src))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return cl
}

func compileErr(t *testing.T, src string) asm.ErrAsm {
	t.Helper()
	c, err := asm.New(vm.DefaultRegisterCount, asm.ErrorHandler(vm.DiscardOutput))
	if err != nil {
		t.Fatal(err)
	}
	cl, err := c.Compile("test", strings.NewReader(src))
	if err == nil {
		t.Fatalf("expected error, got cluster %v", cl.Bytes())
	}
	if cl != nil {
		t.Fatal("cluster returned on error")
	}
	errs, ok := err.(asm.ErrAsm)
	if !ok {
		t.Fatalf("expected asm.ErrAsm, got %T", err)
	}
	return errs
}

func assertCode(t *testing.T, name string, expected []byte, cl *vm.Cluster) {
	t.Helper()
	if got := cl.Bytes(); !bytes.Equal(expected, got) {
		t.Errorf("%s: expected %v, got %v", name, expected, got)
	}
}

var codeTests = [...]struct {
	name string
	src  string
	code []byte
}{
	{"empty", "", []byte{}},
	{"comments", "; nothing\n# nothing either\n\n", []byte{}},
	{"nop", "nop", []byte{byte(vm.OpNop)}},
	{"movI", "mov r0, 5", []byte{byte(vm.OpMovI), 0, 5}},
	{"movR", "MOV r1, R0", []byte{byte(vm.OpMovR), 1, 0}},
	{"hex", "add r3, 0xff", []byte{byte(vm.OpAddI), 3, 255}},
	{"char", "outc 'A' ; comment", []byte{byte(vm.OpOutcI), 65}},
	{"escape", `errc '\n'`, []byte{byte(vm.OpErrcI), 10}},
	{"push", "push r2\npush 7", []byte{byte(vm.OpPushR), 2, byte(vm.OpPushI), 7}},
	{"stack", "pop r0\npeek r1\ndrop", []byte{byte(vm.OpPop), 0, byte(vm.OpPeek), 1, byte(vm.OpDrop)}},
	{"unary", "not r0\ninc r1\ndec r2\nin r3", []byte{byte(vm.OpNot), 0, byte(vm.OpInc), 1, byte(vm.OpDec), 2, byte(vm.OpIn), 3}},
	{"backward", "loop: dec r0\njne loop", []byte{byte(vm.OpDec), 0, byte(vm.OpJne), 0, 0}},
	{"forward", "jmp end\nmov r0, 1\nend: halt", []byte{byte(vm.OpJmp), 6, 0, byte(vm.OpMovI), 0, 1, byte(vm.OpHalt)}},
	{"labelOnly", "jz end\nend:", []byte{byte(vm.OpJe), 3, 0}},
	{"labelChars", "_a.b1:\njmp _a.b1", []byte{byte(vm.OpJmp), 0, 0}},
	{"twoLabels", "a:\nb: nop\njmp a\njmp b", []byte{byte(vm.OpNop), byte(vm.OpJmp), 0, 0, byte(vm.OpJmp), 0, 0}},
}

func TestCompile(t *testing.T) {
	for _, test := range codeTests {
		t.Run(test.name, func(t *testing.T) {
			assertCode(t, test.name, test.code, compile(t, test.src))
		})
	}
}

func TestCompile_deterministic(t *testing.T) {
	src := "start: mov r0, 3\nloop: outc '*'\ndec r0\ncmp r0, 0\njne loop\njmp done\ndone: halt"
	c, err := asm.New(4)
	if err != nil {
		t.Fatal(err)
	}
	c1, err := c.CompileString(src)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := c.CompileString(src)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(c1.Bytes(), c2.Bytes()) {
		t.Fatalf("compilations differ:\n%v\n%v", c1.Bytes(), c2.Bytes())
	}
}

var errTests = [...]struct {
	name string
	src  string
	kind error
	line int
}{
	{"unknownInstruction", "nop\nfoo r0", asm.ErrSyntax, 2},
	{"immediateRange", "mov r0, 256", asm.ErrSyntax, 1},
	{"negative", "push -1", asm.ErrSyntax, 1},
	{"missingOperand", "mov r0", asm.ErrSyntax, 1},
	{"extraOperand", "inc r0, r1", asm.ErrSyntax, 1},
	{"wrongKind", "pop 3", asm.ErrSyntax, 1},
	{"danglingComma", "mov r0,", asm.ErrSyntax, 1},
	{"missingComma", "mov r0 1", asm.ErrSyntax, 1},
	{"registerLabel", "r1: nop", asm.ErrSyntax, 1},
	{"registerRange", "mov r256, 0", asm.ErrSyntax, 1},
	{"badChar", "outc 'ab'", asm.ErrSyntax, 1},
	{"invalidRegister", "nop\nmov r4, 1", asm.ErrInvalidRegister, 2},
	{"duplicateLabel", "a: nop\na: nop", asm.ErrDuplicateLabel, 2},
	{"unresolvedLabel", "nop\n\njmp nowhere", asm.ErrUnresolvedLabel, 3},
	{"caseSensitiveLabel", "Loop: nop\njmp loop", asm.ErrUnresolvedLabel, 2},
}

func TestCompile_errors(t *testing.T) {
	for _, test := range errTests {
		t.Run(test.name, func(t *testing.T) {
			errs := compileErr(t, test.src)
			if !errors.Is(errs, test.kind) {
				t.Fatalf("expected %v, got %v", test.kind, errs)
			}
			if errs[0].Pos.Line != test.line {
				t.Errorf("expected error on line %d, got %v", test.line, errs[0])
			}
			if errs[0].Pos.Filename != "test" {
				t.Errorf("bad file name in %v", errs[0])
			}
		})
	}
}

func TestCompile_errorLimit(t *testing.T) {
	errs := compileErr(t, strings.Repeat("foo\n", 20))
	if len(errs) != 10 {
		t.Fatalf("expected 10 errors, got %d", len(errs))
	}
}

func TestCompile_badCharReportedOnce(t *testing.T) {
	errs := compileErr(t, "outc 'ab'\nnop")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d:\n%v", len(errs), errs)
	}
	if errs[0].Pos.Line != 1 || errs[0].Pos.Column != 6 {
		t.Errorf("bad error position in %v", errs[0])
	}
}

func TestCompile_tooLarge(t *testing.T) {
	errs := compileErr(t, strings.Repeat("mov r0, 1\n", vm.MaxClusterSize/3+1))
	if !errors.Is(errs, asm.ErrProgramTooLarge) {
		t.Fatalf("expected %v, got %v", asm.ErrProgramTooLarge, errs)
	}
}

func TestCompile_diagnostics(t *testing.T) {
	var eb, ob bytes.Buffer
	c, err := asm.New(4, asm.ErrorOutput(&eb), asm.Output(&ob), asm.Verbose(true))
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Compile("prog", strings.NewReader("nop\nfoo\njmp bar\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	expected := "prog:2:1: syntax error: unknown instruction \"foo\"\n"
	if got := eb.String(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
	if ob.Len() != 0 {
		t.Errorf("unexpected output %q", ob.String())
	}

	eb.Reset()
	if _, err = c.Compile("prog", strings.NewReader("mov r0, 1\nhalt\n")); err != nil {
		t.Fatal(err)
	}
	if eb.Len() != 0 {
		t.Errorf("unexpected diagnostics %q", eb.String())
	}
	expected = "prog: 2 instructions, 4 bytes\n"
	if got := ob.String(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

// A failed compilation must not leak labels or code into the next one.
func TestCompiler_Clean(t *testing.T) {
	c, err := asm.New(4, asm.ErrorHandler(vm.DiscardOutput))
	if err != nil {
		t.Fatal(err)
	}
	if _, err = c.CompileString("a: nop\nnop\nmov r9, 1"); err == nil {
		t.Fatal("expected error")
	}
	cl, err := c.CompileString("jmp a\na: halt")
	if err != nil {
		t.Fatal(err)
	}
	assertCode(t, "after error", []byte{byte(vm.OpJmp), 3, 0, byte(vm.OpHalt)}, cl)

	c.Clean()
	cl, err = c.CompileString("halt")
	if err != nil {
		t.Fatal(err)
	}
	assertCode(t, "after Clean", []byte{byte(vm.OpHalt)}, cl)
}

func TestNew(t *testing.T) {
	for _, n := range []int{0, -1, 257} {
		if _, err := asm.New(n); err == nil {
			t.Errorf("New(%d): expected error", n)
		}
	}
	c, err := asm.New(256)
	if err != nil {
		t.Fatal(err)
	}
	if c.RegisterCount() != 256 {
		t.Fatalf("expected 256 registers, got %d", c.RegisterCount())
	}
	if _, err = c.CompileString("mov r255, r128"); err != nil {
		t.Fatal(err)
	}
}

func TestAssemble(t *testing.T) {
	cl, err := asm.Assemble("test", strings.NewReader("mov r3, 1"))
	if err != nil {
		t.Fatal(err)
	}
	assertCode(t, "Assemble", []byte{byte(vm.OpMovI), 3, 1}, cl)
	if _, err = asm.Assemble("test", strings.NewReader("mov r4, 1")); !errors.Is(err, asm.ErrInvalidRegister) {
		t.Fatalf("expected %v, got %v", asm.ErrInvalidRegister, err)
	}
}

func TestDisassemble(t *testing.T) {
	code := []byte{0xff, byte(vm.OpCmpR), 1, 2, byte(vm.OpJge), 0x34, 0x12, byte(vm.OpJmp), 1}
	expected := []string{"??? 0xff", "cmp r1, r2", "jge 4660", "??? 0x22", "halt"}
	var b bytes.Buffer
	var got []string
	for pc := 0; pc < len(code); {
		b.Reset()
		next, err := asm.Disassemble(code, pc, &b)
		if err != nil {
			t.Fatal(err)
		}
		if next <= pc {
			t.Fatalf("Disassemble did not advance at pc %d", pc)
		}
		got = append(got, b.String())
		pc = next
	}
	if strings.Join(got, "|") != strings.Join(expected, "|") {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}
