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
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/db47h/sal8/asm"
	"github.com/db47h/sal8/vm"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("sal8")

// ClusterExt is the file extension of compiled clusters.
const ClusterExt = ".sal8c"

type fileList []string

func (f *fileList) String() string     { return strings.Join(*f, ",") }
func (f *fileList) Set(s string) error { *f = append(*f, s); return nil }
func (f *fileList) Get() interface{}   { return *f }

var (
	noRawIO     bool
	debug       bool
	dump        bool
	compileOnly bool
	disasm      bool
	outFileName string
	configFile  string
)

// console is the bottom reader of the VM input stack. Pending output is
// flushed before reading so that prompts show up. In raw tty mode, CTRL-D
// must be handled here since the terminal no longer does it.
type console struct {
	in    vm.InHandler
	raw   bool
	flush func() error
}

func newConsole(r io.Reader, raw bool, flush func() error) *console {
	return &console{vm.ReaderInput(r), raw, flush}
}

func (c *console) ReadByte() (byte, error) {
	if err := c.flush(); err != nil {
		return 0, err
	}
	b, err := c.in()
	if err == nil && c.raw && b == 4 {
		return 0, io.EOF
	}
	return b, err
}

func (c *console) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, err := c.ReadByte()
	if err != nil {
		return 0, err
	}
	p[0] = b
	return 1, nil
}

// hookWriter adapts an output hook to io.Writer.
type hookWriter vm.OutHandler

func (h hookWriter) Write(p []byte) (int, error) {
	if err := h(string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func setupIO(cfg *config) (raw bool, tearDown func()) {
	if !cfg.Raw || !isatty.IsTerminal(os.Stdin.Fd()) {
		return false, nil
	}
	tearDown, err := setRawIO()
	if err != nil {
		log.Infof("raw terminal IO disabled: %v", err)
		return false, nil
	}
	return true, tearDown
}

// loadCluster compiles the source file fileName, or decodes it if it is a
// compiled cluster.
func loadCluster(fileName string, cfg *config) (*vm.Cluster, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "open failed")
	}
	if vm.IsClusterFile(data) {
		log.Infof("loading cluster %s", fileName)
		return vm.UnmarshalCluster(data)
	}
	c, err := asm.New(cfg.Registers, asm.ErrorOutput(os.Stderr))
	if err != nil {
		return nil, err
	}
	cl, err := c.Compile(fileName, bytes.NewReader(data))
	if err != nil {
		if errs, ok := err.(asm.ErrAsm); ok {
			// diagnostics have already been written to stderr
			return nil, errors.Errorf("%s: compilation failed with %d error(s)", fileName, len(errs))
		}
		return nil, err
	}
	return cl, nil
}

// run executes the program, at most steps instructions per call to Run. If
// trace is not nil, each instruction is disassembled to it before execution.
func run(i *vm.Instance, steps int, trace io.Writer) error {
	if trace != nil {
		steps = 1
	}
	code := i.Cluster().Bytes()
	for ticks := 1; !i.Finished(); ticks++ {
		if trace != nil {
			fmt.Fprintf(trace, "% 6d\t", i.PC())
			asm.Disassemble(code, i.PC(), trace)
			io.WriteString(trace, "\n")
		}
		if err := i.Run(steps); err != nil {
			return err
		}
		if steps > 0 && trace == nil {
			log.Debugf("tick %d: pc=%d, %d instructions executed", ticks, i.PC(), i.Executed())
		}
	}
	return nil
}

func atExit(i *vm.Instance, err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\n%+v\n", err)
	if i != nil {
		dumpVM(i, os.Stderr)
	}
	os.Exit(1)
}

func main() {
	// check exit condition
	var err error
	var i *vm.Instance

	stdout := bufio.NewWriter(os.Stdout)

	// flush output, catch and log errors
	defer func() {
		stdout.Flush()
		if err == nil && dump && i != nil {
			err = dumpVM(i, os.Stdout)
		}
		atExit(i, err)
	}()

	var withFiles fileList
	cfg := defaultConfig()
	f := cfg

	flag.StringVar(&configFile, "config", "", "load settings from TOML file `filename`")
	flag.IntVar(&f.Registers, "registers", cfg.Registers, "number of VM registers")
	flag.IntVar(&f.Stack, "stack", cfg.Stack, "VM stack capacity")
	flag.IntVar(&f.Steps, "steps", cfg.Steps, "maximum number of instructions per run slice (0: unbounded)")
	flag.BoolVar(&f.Trace, "trace", cfg.Trace, "print each instruction to stderr before executing it")
	flag.IntVar(&f.Verbosity, "v", cfg.Verbosity, "log verbosity")
	flag.BoolVar(&compileOnly, "c", false, "compile only, do not run")
	flag.StringVar(&outFileName, "o", "", "`filename` of the compiled cluster (default: source file name with "+ClusterExt+" extension)")
	flag.BoolVar(&disasm, "disasm", false, "print a disassembly of the program instead of running it")
	flag.BoolVar(&dump, "dump", false, "dump VM state upon exit")
	flag.Var(&withFiles, "with", "Add `filename` to the input list (can be specified multiple times)")
	flag.BoolVar(&noRawIO, "noraw", false, "disable raw terminal IO")
	flag.BoolVar(&debug, "debug", false, "enable debug diagnostics")

	flag.Parse()

	if configFile != "" {
		if err = cfg.load(configFile); err != nil {
			return
		}
	}
	cfg.merge(flag.CommandLine, &f, noRawIO)
	if debug && cfg.Verbosity < 2 {
		cfg.Verbosity = 2
	}
	commonlog.Configure(cfg.Verbosity, nil)

	if flag.NArg() != 1 {
		flag.Usage()
		err = errors.New("expected exactly one source or cluster file")
		return
	}
	fileName := flag.Arg(0)

	c, err := loadCluster(fileName, &cfg)
	if err != nil {
		return
	}

	if compileOnly {
		if outFileName == "" {
			outFileName = strings.TrimSuffix(fileName, filepath.Ext(fileName)) + ClusterExt
		}
		if err = vm.Save(outFileName, c); err == nil {
			log.Infof("saved %s: %d bytes", outFileName, c.Len())
		}
		return
	}
	if disasm {
		err = asm.DisassembleAll(c, stdout)
		return
	}

	// try to switch the terminal to raw mode.
	rawtty, ioTearDownFn := setupIO(&cfg)
	if ioTearDownFn != nil {
		defer ioTearDownFn()
	}

	var stdin io.Reader = os.Stdin
	if !rawtty {
		stdin = bufio.NewReader(os.Stdin)
	}
	opts := []vm.Option{
		vm.Program(c),
		vm.Input(newConsole(stdin, rawtty, stdout.Flush)),
	}
	// -with files are pushed in reverse order so that they are read in order
	// of appearance on the command line, then stdin.
	for n := len(withFiles) - 1; n >= 0; n-- {
		var wf *os.File
		if wf, err = os.Open(withFiles[n]); err != nil {
			return
		}
		defer wf.Close()
		opts = append(opts, vm.Input(bufio.NewReader(wf)))
	}
	errOut := func(text string) error {
		if err := stdout.Flush(); err != nil {
			return err
		}
		_, err := io.WriteString(os.Stderr, text)
		return err
	}
	opts = append(opts, vm.Output(stdout), vm.ErrorHandler(errOut))
	i, err = vm.New(cfg.Registers, cfg.Stack, opts...)
	if err != nil {
		return
	}

	var trace io.Writer
	if cfg.Trace {
		trace = hookWriter(errOut)
	}
	err = run(i, cfg.Steps, trace)
}
