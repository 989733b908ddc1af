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

package vm_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/db47h/sal8/vm"
	"github.com/pkg/errors"
)

func TestVM_In(t *testing.T) {
	i := setup(t, "in", "in r0\nin r1", vm.InputHandler(vm.BytesInput('a')))
	assertFault(t, i.Run(0), vm.ErrEndOfInput, 2)
	if !bytes.Equal(C{'a', 0, 0, 0}, i.Registers()) {
		t.Fatalf("bad registers %v", i.Registers())
	}
	// feed more input and resume
	i.PushInput(strings.NewReader("b"))
	if err := i.Run(0); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(C{'a', 'b', 0, 0}, i.Registers()) {
		t.Fatalf("bad registers %v", i.Registers())
	}
}

func TestVM_In_wrappedEOF(t *testing.T) {
	h := func() (byte, error) { return 0, errors.Wrap(io.EOF, "console closed") }
	i := setup(t, "in", "mov r1, 1\nin r0", vm.InputHandler(h))
	assertFault(t, i.Run(0), vm.ErrEndOfInput, 3)
	if !bytes.Equal(C{0, 1, 0, 0}, i.Registers()) {
		t.Fatalf("bad registers %v", i.Registers())
	}
}

func TestVM_Out(t *testing.T) {
	var out, errOut bytes.Buffer
	i := setup(t, "out", "mov r1, 200\nout 42\noutc 'x'\nout r1\nerr 7\nerrc '!'\nerrc r0\noutc '\\n'",
		vm.Output(&out), vm.ErrorOutput(&errOut))
	if err := i.Run(0); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "42x200\n" {
		t.Errorf("bad output %q", got)
	}
	if got := errOut.String(); got != "7!\x00" {
		t.Errorf("bad error output %q", got)
	}
}

func TestVM_hookError(t *testing.T) {
	errHook := errors.New("hook failed")
	var texts []string
	h := func(text string) error {
		if len(texts) == 1 {
			return errHook
		}
		texts = append(texts, text)
		return nil
	}
	i := setup(t, "hook", "out 1\nout 2\nout 3", vm.OutputHandler(h))
	assertFault(t, i.Run(0), errHook, 2)
	if len(texts) != 1 || texts[0] != "1" {
		t.Fatalf("bad output %q", texts)
	}
	errIn := errors.New("no input")
	i = setup(t, "inhook", "in r0", vm.InputHandler(func() (byte, error) { return 0, errIn }))
	assertFault(t, i.Run(0), errIn, 0)
}

type closer struct {
	io.Reader
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return nil
}

func Test_multireader(t *testing.T) {
	var p vm.IO
	first := &closer{Reader: strings.NewReader("c")}
	p.PushInput(first)
	p.PushInput(strings.NewReader("ab"))
	var b []byte
	for {
		v, err := p.ReadInput()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		b = append(b, v)
	}
	if string(b) != "abc" {
		t.Fatalf("expected %q, got %q", "abc", b)
	}
	if !first.closed {
		t.Fatal("exhausted reader not closed")
	}
	// RedirectIn replaces the input stack
	p.PushInput(strings.NewReader("x"))
	p.RedirectIn(vm.BytesInput('y'))
	if v, _ := p.ReadInput(); v != 'y' {
		t.Fatalf("expected 'y', got %q", v)
	}
}

// onlyReader hides any other method of the wrapped reader.
type onlyReader struct{ r io.Reader }

func (o onlyReader) Read(p []byte) (int, error) { return o.r.Read(p) }

func TestReaderInput(t *testing.T) {
	src := strings.NewReader("xyz")
	in := vm.ReaderInput(onlyReader{src})
	if v, err := in(); err != nil || v != 'x' {
		t.Fatalf("got %q, %v", v, err)
	}
	// unbuffered: only one byte consumed
	assertEqualI(t, "remaining", 2, src.Len())

	in = vm.ReaderInput(nil)
	if _, err := in(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}

	in = vm.BufferedReaderInput(strings.NewReader("q"))
	if v, err := in(); err != nil || v != 'q' {
		t.Fatalf("got %q, %v", v, err)
	}
	if _, err := in(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
