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
	"io"
	"strconv"
	"strings"
	"text/scanner"
	"unicode"

	"github.com/db47h/sal8/vm"
)

// mnemonics maps assembler mnemonics to the opcodes of their different forms.
var mnemonics = make(map[string][]vm.Opcode)

var aliases = map[string]string{
	"jz":  "je",
	"jnz": "jne",
}

func init() {
	for _, op := range vm.Opcodes() {
		mnemonics[op.Name()] = append(mnemonics[op.Name()], op)
	}
	for alias, name := range aliases {
		mnemonics[alias] = mnemonics[name]
	}
}

func isIdentRune(ch rune, i int) bool {
	return ch == '_' || ch == '.' || unicode.IsLetter(ch) || unicode.IsDigit(ch) && i > 0
}

// register returns the register index for names of the form r<digits>.
func register(s string) (int, bool) {
	if len(s) < 2 || s[0] != 'r' && s[0] != 'R' {
		return 0, false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return vm.MaxRegisterCount, true
	}
	return n, true
}

type operand struct {
	kind  vm.Operand
	val   int
	label string
	pos   scanner.Position
}

// statement is a single source line: an optional label definition followed by
// an optional instruction.
type statement struct {
	pos   scanner.Position
	label string
	op    vm.Opcode
	inst  bool
	args  []operand
}

type token struct {
	tok  rune
	text string
	pos  scanner.Position
	bad  bool // already reported by the scanner
}

type parser struct {
	s       scanner.Scanner
	errs    ErrAsm
	stmts   []statement
	line    []token
	scanErr bool
}

func newParser(name string, r io.Reader) *parser {
	p := new(parser)
	p.s.Init(r)
	p.s.Filename = name
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanChars
	p.s.Whitespace = 1<<'\t' | 1<<'\r' | 1<<' '
	p.s.IsIdentRune = isIdentRune
	p.s.Error = func(s *scanner.Scanner, msg string) {
		pos := s.Position
		if !pos.IsValid() {
			pos = s.Pos()
		}
		p.errs.add(pos, ErrSyntax, msg)
		p.scanErr = true
	}
	return p
}

func (p *parser) scan() rune {
	p.scanErr = false
	return p.s.Scan()
}

func (p *parser) error(pos scanner.Position, msg string) {
	p.errs.add(pos, ErrSyntax, msg)
}

// parse scans the whole source and returns the resulting statements. Parsing
// stops after too many errors.
func (p *parser) parse() []statement {
	for tok := p.scan(); !p.errs.full(); tok = p.scan() {
		switch tok {
		case ';', '#':
			// comment: skip to end of line
			for ch := p.s.Peek(); ch != '\n' && ch != scanner.EOF; ch = p.s.Peek() {
				p.s.Next()
			}
		case '\n', scanner.EOF:
			p.parseLine()
			p.line = p.line[:0]
			if tok == scanner.EOF {
				return p.stmts
			}
		default:
			p.line = append(p.line, token{tok, p.s.TokenText(), p.s.Position, p.scanErr})
		}
	}
	return p.stmts
}

func (p *parser) parseLine() {
	toks := p.line
	if len(toks) == 0 {
		return
	}
	st := statement{pos: toks[0].pos}
	if len(toks) >= 2 && toks[0].tok == scanner.Ident && toks[1].tok == ':' {
		if _, ok := register(toks[0].text); ok {
			p.error(toks[0].pos, "register name used as label: "+toks[0].text)
			return
		}
		st.label = toks[0].text
		toks = toks[2:]
	}
	if len(toks) > 0 {
		if !p.parseInstruction(&st, toks) {
			return
		}
	}
	p.stmts = append(p.stmts, st)
}

func (p *parser) parseInstruction(st *statement, toks []token) bool {
	t := toks[0]
	if t.tok != scanner.Ident {
		p.error(t.pos, "expected instruction, got "+strconv.Quote(t.text))
		return false
	}
	name := strings.ToLower(t.text)
	forms, ok := mnemonics[name]
	if !ok {
		p.error(t.pos, "unknown instruction "+strconv.Quote(t.text))
		return false
	}
	st.pos = t.pos
	toks = toks[1:]
	for len(toks) > 0 {
		arg, ok := p.parseOperand(toks[0])
		if !ok {
			return false
		}
		st.args = append(st.args, arg)
		toks = toks[1:]
		if len(toks) == 0 {
			break
		}
		if toks[0].tok != ',' {
			p.error(toks[0].pos, "expected ',', got "+strconv.Quote(toks[0].text))
			return false
		}
		toks = toks[1:]
		if len(toks) == 0 {
			p.error(t.pos, "missing operand after ','")
			return false
		}
	}
	for _, op := range forms {
		if match(op, st.args) {
			st.op = op
			st.inst = true
			return true
		}
	}
	p.error(t.pos, "bad operands for "+name+", expected "+formsString(name, forms))
	return false
}

func (p *parser) parseOperand(t token) (operand, bool) {
	arg := operand{pos: t.pos}
	if t.bad {
		return arg, false
	}
	switch t.tok {
	case scanner.Ident:
		if n, ok := register(t.text); ok {
			if n >= vm.MaxRegisterCount {
				p.error(t.pos, "register index out of range: "+t.text)
				return arg, false
			}
			arg.kind, arg.val = vm.Reg, n
			return arg, true
		}
		arg.kind, arg.label = vm.Addr, t.text
		return arg, true
	case scanner.Int:
		n, err := strconv.ParseUint(t.text, 0, 8)
		if err != nil {
			if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
				p.error(t.pos, "value out of range [0:255]: "+t.text)
			} else {
				p.error(t.pos, "invalid number: "+t.text)
			}
			return arg, false
		}
		arg.kind, arg.val = vm.Imm, int(n)
		return arg, true
	case scanner.Char:
		s, err := strconv.Unquote(t.text)
		if err != nil {
			p.error(t.pos, "invalid character literal: "+t.text)
			return arg, false
		}
		r := []rune(s)
		if len(r) != 1 || r[0] > 0xFF {
			p.error(t.pos, "value out of range [0:255]: "+t.text)
			return arg, false
		}
		arg.kind, arg.val = vm.Imm, int(r[0])
		return arg, true
	case '-':
		p.error(t.pos, "negative values are not supported")
	default:
		p.error(t.pos, "unexpected "+strconv.Quote(t.text))
	}
	return arg, false
}

func match(op vm.Opcode, args []operand) bool {
	kinds := op.Operands()
	if len(kinds) != len(args) {
		return false
	}
	for n, k := range kinds {
		if args[n].kind != k {
			return false
		}
	}
	return true
}

func formsString(name string, forms []vm.Opcode) string {
	var b strings.Builder
	for n, op := range forms {
		if n > 0 {
			b.WriteString(" or ")
		}
		b.WriteString(strconv.Quote(strings.TrimSpace(name + " " + kindsString(op.Operands()))))
	}
	return b.String()
}

func kindsString(kinds []vm.Operand) string {
	s := make([]string, len(kinds))
	for n, k := range kinds {
		s[n] = k.String()
	}
	return strings.Join(s, ", ")
}
