// Copyright 2025 The HDX Authors
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

// Package hdxlower lowers wire packages to a process design kit.
package hdxlower

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"

	"github.com/hdx-org/hdx/pdk/asap7"
	"github.com/hdx-org/hdx/wire"
)

var (
	in     = flag.String("in", "", "path of the wire package to lower")
	out    = flag.String("out", "", "path to write the lowered package to (standard output if empty)")
	target = flag.String("pdk", asap7.Name, "name of the PDK to lower the package to")
)

// Compiler lowers a wire package to a technology.
type Compiler func(*wire.Package) (*wire.Package, error)

// Compilers maps PDK names to their lowering entry point.
var Compilers = map[string]Compiler{
	asap7.Name: asap7.Compile,
}

func compiler(name string) (Compiler, error) {
	comp, ok := Compilers[name]
	if !ok {
		names := maps.Keys(Compilers)
		slices.Sort(names)
		return nil, errors.Errorf("no compiler for PDK %q: available PDKs are %s", name, strings.Join(names, ", "))
	}
	return comp, nil
}

// LowerPackage lowers a wire package to the PDK of the given name.
func LowerPackage(pkg *wire.Package, name string) (*wire.Package, error) {
	comp, err := compiler(name)
	if err != nil {
		return nil, err
	}
	return comp(pkg)
}

func write(stdout io.Writer, pkg *wire.Package) error {
	if *out == "" {
		return wire.Encode(stdout, pkg)
	}
	f, err := os.Create(*out)
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	defer f.Close()
	if err := wire.Encode(f, pkg); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s: package %s, %d modules\n", *out, pkg.Name, len(pkg.Modules))
	return nil
}

// Lower reads the wire package selected by the flags, lowers it to the
// selected PDK, and writes the result to the output selected by the flags.
func Lower(stdout io.Writer) error {
	if *in == "" {
		return errors.New("no input package: please use --in to select a wire package file")
	}
	f, err := os.Open(*in)
	if err != nil {
		return errors.Wrap(err, "opening input package")
	}
	defer f.Close()
	pkg, err := wire.Decode(f)
	if err != nil {
		return errors.Wrapf(err, "reading %s", *in)
	}
	lowered, err := LowerPackage(pkg, *target)
	if err != nil {
		return errors.Wrapf(err, "lowering %s", *in)
	}
	return write(stdout, lowered)
}
