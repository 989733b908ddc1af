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
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "sal8.toml")
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestConfig_load(t *testing.T) {
	c := defaultConfig()
	if err := c.load(writeConfig(t, "registers = 16\nraw = false\n")); err != nil {
		t.Fatal(err)
	}
	expected := defaultConfig()
	expected.Registers = 16
	expected.Raw = false
	if c != expected {
		t.Fatalf("expected %+v, got %+v", expected, c)
	}

	if err := c.load(writeConfig(t, "regs = 16\n")); err == nil {
		t.Error("expected error for unknown key")
	}
	if err := c.load(writeConfig(t, "registers = \"many\"\n")); err == nil {
		t.Error("expected error for bad value")
	}
	if err := c.load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestConfig_merge(t *testing.T) {
	c := defaultConfig()
	if err := c.load(writeConfig(t, "registers = 16\nstack = 32\nsteps = 10\n")); err != nil {
		t.Fatal(err)
	}
	var f config
	var noRaw bool
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.IntVar(&f.Registers, "registers", 4, "")
	fs.IntVar(&f.Stack, "stack", 8, "")
	fs.BoolVar(&noRaw, "noraw", false, "")
	if err := fs.Parse([]string{"-stack", "64", "-noraw"}); err != nil {
		t.Fatal(err)
	}
	c.merge(fs, &f, noRaw)
	if c.Registers != 16 || c.Stack != 64 || c.Steps != 10 || c.Raw {
		t.Fatalf("bad merged config %+v", c)
	}
}
