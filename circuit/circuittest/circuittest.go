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

// Package circuittest provides circuit fixtures shared by tests across
// the repository. Modules built here carry the circuittest namespace.
package circuittest

import (
	"testing"

	"github.com/hdx-org/hdx/circuit"
	"github.com/hdx-org/hdx/primitives"
)

// MosCall binds params to the portable MOS device and fails the test
// on a binding error.
func MosCall(tb testing.TB, params primitives.MosParams) *circuit.PrimitiveCall {
	tb.Helper()
	call, err := primitives.Mos.Call(params)
	if err != nil {
		tb.Fatalf("Call: %+v", err)
	}
	return call
}

// Diamond returns a hierarchy in which two modules share a leaf: top
// instantiates left and right, and both instantiate the same leaf.
func Diamond() (top, leaf *circuit.Module) {
	leaf = circuit.NewModule("leaf")
	left := circuit.NewModule("left")
	left.NewInstance("u0", leaf)
	right := circuit.NewModule("right")
	right.NewInstance("u0", leaf)
	top = circuit.NewModule("top")
	top.NewInstance("u0", left)
	top.NewInstance("u1", right)
	return top, leaf
}

// Inverter builds a CMOS inverter on portable devices.
func Inverter(tb testing.TB) *circuit.Module {
	tb.Helper()
	inv := circuit.NewModule("inv")
	in := inv.AddPort(circuit.NewPort("in", 1, circuit.Input))
	out := inv.AddPort(circuit.NewPort("out", 1, circuit.Output))
	vdd := inv.AddPort(circuit.NewPort("vdd", 1, circuit.Inout))
	vss := inv.AddPort(circuit.NewPort("vss", 1, circuit.Inout))

	np := primitives.DefaultMosParams()
	np.W = circuit.Some(420)
	pp := primitives.DefaultMosParams()
	pp.Tp = primitives.PMOS
	pp.W = circuit.Some(840)

	inv.NewInstance("xn", MosCall(tb, np)).
		Connect("d", out).Connect("g", in).Connect("s", vss).Connect("b", vss)
	inv.NewInstance("xp", MosCall(tb, pp)).
		Connect("d", out).Connect("g", in).Connect("s", vdd).Connect("b", vdd)
	return inv
}
