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

package asap7

import (
	"github.com/hdx-org/hdx/circuit"
	"github.com/hdx-org/hdx/elab"
	"github.com/hdx-org/hdx/wire"
)

// Compile lowers a serialized package to the ASAP7 technology: the
// package is rebuilt in memory, every module is walked by one
// [Walker] run, and the result is reserialized under the same package
// name.
func Compile(pkg *wire.Package) (*wire.Package, error) {
	ms, err := wire.Import(pkg)
	if err != nil {
		return nil, err
	}
	tops := make([]circuit.Elabable, len(ms))
	for i, m := range ms {
		tops[i] = m
	}
	lowered, err := elab.RunAll(nil, NewWalker(), tops)
	if err != nil {
		return nil, err
	}
	for i, m := range lowered {
		tops[i] = m
	}
	return wire.Export(nil, pkg.Name, tops...)
}
