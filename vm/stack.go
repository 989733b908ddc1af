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

// stack is a fixed capacity LIFO of bytes. sp is both the current size and
// the index of the next free slot.
type stack struct {
	data []byte
	sp   int
}

func newStack(capacity int) stack {
	return stack{data: make([]byte, capacity)}
}

func (s *stack) full() bool  { return s.sp == len(s.data) }
func (s *stack) empty() bool { return s.sp == 0 }

func (s *stack) push(v byte) error {
	if s.full() {
		return ErrStackOverflow
	}
	s.data[s.sp] = v
	s.sp++
	return nil
}

func (s *stack) pop() (byte, error) {
	if s.empty() {
		return 0, ErrStackUnderflow
	}
	s.sp--
	return s.data[s.sp], nil
}

func (s *stack) peek() (byte, error) {
	if s.empty() {
		return 0, ErrStackUnderflow
	}
	return s.data[s.sp-1], nil
}

func (s *stack) reset() {
	for n := range s.data[:s.sp] {
		s.data[n] = 0
	}
	s.sp = 0
}
