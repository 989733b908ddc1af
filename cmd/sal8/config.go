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
	"flag"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/db47h/sal8/vm"
	"github.com/pkg/errors"
)

// config holds the settings that can be given either in a configuration file
// or on the command line. Explicit flags take precedence over the file.
type config struct {
	Registers int  `toml:"registers"`
	Stack     int  `toml:"stack"`
	Steps     int  `toml:"steps"`
	Raw       bool `toml:"raw"`
	Verbosity int  `toml:"verbosity"`
	Trace     bool `toml:"trace"`
}

func defaultConfig() config {
	return config{
		Registers: vm.DefaultRegisterCount,
		Stack:     vm.DefaultStackCapacity,
		Raw:       true,
	}
}

// load reads fileName into c. Keys not present in the file keep their
// current value.
func (c *config) load(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return errors.Wrap(err, "config")
	}
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return errors.Wrap(err, fileName)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return errors.Errorf("%s: unknown configuration key %q", fileName, keys[0].String())
	}
	return nil
}

// merge copies into c the values of the flags in fs that were explicitly
// set on the command line.
func (c *config) merge(fs *flag.FlagSet, f *config, noRaw bool) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "registers":
			c.Registers = f.Registers
		case "stack":
			c.Stack = f.Stack
		case "steps":
			c.Steps = f.Steps
		case "v":
			c.Verbosity = f.Verbosity
		case "trace":
			c.Trace = f.Trace
		case "noraw":
			c.Raw = !noRaw
		}
	})
}
