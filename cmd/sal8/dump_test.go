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
	"bytes"
	"testing"

	"github.com/db47h/sal8/asm"
	"github.com/db47h/sal8/vm"
)

func TestDumpVM(t *testing.T) {
	c, err := asm.New(8)
	if err != nil {
		t.Fatal(err)
	}
	cl, err := c.CompileString("mov r1, 7\npush 3\ncmp r1, 9\npop r4\n")
	if err != nil {
		t.Fatal(err)
	}
	i, err := vm.New(4, 8, vm.Program(cl))
	if err != nil {
		t.Fatal(err)
	}
	if err = i.Run(3); err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err = dumpVM(i, &b); err != nil {
		t.Fatal(err)
	}
	expected := "PC:    8/10 (instruction 3/4) pop r4\n" +
		"Regs:  0 7 0 0\n" +
		"Cmp:   <\n" +
		"Stack: 1/8 [3]\n"
	if b.String() != expected {
		t.Fatalf("expected:\n%s\ngot:\n%s", expected, b.String())
	}
}
