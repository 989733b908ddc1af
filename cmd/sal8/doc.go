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

// The sal8 command line tool compiles and runs SAL-8 programs. It is a
// showcase for the packages github.com/db47h/sal8/asm and
// github.com/db47h/sal8/vm.
//
// Usage:
//
//	sal8 [flags] file
//
// file is either an assembly source file or a cluster previously compiled
// with -c. Compiled clusters are recognized by their content, not by their
// extension.
//
// Flags:
//
//	-c
//		  compile only, do not run
//	-config filename
//		  load settings from TOML file filename
//	-debug
//		  enable debug diagnostics
//	-disasm
//		  print a disassembly of the program instead of running it
//	-dump
//		  dump VM state upon exit
//	-noraw
//		  disable raw terminal IO
//	-o filename
//		  filename of the compiled cluster (default: source file name with .sal8c extension)
//	-registers int
//		  number of VM registers (default 4)
//	-stack int
//		  VM stack capacity (default 8)
//	-steps int
//		  maximum number of instructions per run slice (0: unbounded)
//	-trace
//		  print each instruction to stderr before executing it
//	-v int
//		  log verbosity
//	-with filename
//		  Add filename to the input list (can be specified multiple times)
//
// -registers: the compiler rejects programs using registers above this count.
// The same count is used to run the program, and must therefore match the
// count used to compile a cluster loaded from a file.
//
// -steps: the program is run by slices of at most that many instructions.
// The result is the same as an unbounded run; with -v 2, the VM state is
// logged after each slice.
//
// -with: the specified files are fed to the program as input before stdin, in
// order of appearance on the command line.
//
// -noraw: upon startup, sal8 switches the terminal to raw mode unless stdin
// has been redirected, so that the "in" instruction gets every keystroke.
// This flag disables this behavior. In raw mode, CTRL-D signals the end of
// input.
//
// -debug: will print a full stacktrace and the VM state should the program
// fail.
//
// Configuration file:
//
// Settings can also be read from a TOML file given with -config. Flags given
// on the command line take precedence. Example:
//
//	registers = 16
//	stack = 32
//	steps = 1000
//	raw = false
//	verbosity = 1
//	trace = false
package main
