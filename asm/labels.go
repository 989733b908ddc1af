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
	"text/scanner"

	"github.com/db47h/sal8/vm"
)

type labelSite struct {
	pos     scanner.Position
	address int
}

type label struct {
	labelSite
	defined bool
}

type labelUse struct {
	labelSite
	name string
}

// labelTable maps label names to their address. References to labels that
// are not yet defined are recorded and patched when the table is finalized.
type labelTable struct {
	labels map[string]*label
	uses   []labelUse
}

func newLabelTable() *labelTable {
	return &labelTable{labels: make(map[string]*label)}
}

// define records the address of label name.
func (t *labelTable) define(name string, address int, pos scanner.Position) *Error {
	if l, ok := t.labels[name]; ok {
		return &Error{pos, ErrDuplicateLabel, name + ", previous definition here: " + l.pos.String()}
	}
	t.labels[name] = &label{labelSite{pos, address}, true}
	return nil
}

// lookup returns the address of label name if it is defined.
func (t *labelTable) lookup(name string) (int, bool) {
	if l, ok := t.labels[name]; ok {
		return l.address, true
	}
	return 0, false
}

// reference returns the address of label name if it is already defined.
// Otherwise, address is recorded as a use site to patch once the label gets
// defined, and 0 is returned as a placeholder.
func (t *labelTable) reference(name string, address int, pos scanner.Position) int {
	if a, ok := t.lookup(name); ok {
		return a
	}
	t.uses = append(t.uses, labelUse{labelSite{pos, address}, name})
	return 0
}

// pending returns the number of unresolved use sites.
func (t *labelTable) pending() int {
	return len(t.uses)
}

// finalize patches all recorded use sites in b. Any use site whose label was
// never defined is reported as an error.
func (t *labelTable) finalize(b *vm.Builder, errs *ErrAsm) {
	for _, u := range t.uses {
		a, ok := t.lookup(u.name)
		if !ok {
			errs.add(u.pos, ErrUnresolvedLabel, u.name)
			continue
		}
		if err := b.PatchAddr(u.address, a); err != nil {
			errs.add(u.pos, ErrProgramTooLarge, err.Error())
		}
	}
	t.uses = t.uses[:0]
}

func (t *labelTable) reset() {
	for k := range t.labels {
		delete(t.labels, k)
	}
	t.uses = t.uses[:0]
}
