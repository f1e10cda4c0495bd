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

// Package primitives is the catalog of built-in, technology-portable
// devices: MOS transistors, diodes, resistors, capacitors, inductors,
// and net-ties. Technology lowering (see the pdk packages) substitutes
// instances of these devices with process-specific external modules.
package primitives

import (
	"github.com/hdx-org/hdx/circuit"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Domain is the qualified-name domain under which primitive devices
// are serialized.
const Domain = "hdx.primitives"

// MosType distinguishes N-channel from P-channel transistors.
type MosType string

const (
	// NMOS is the N-channel transistor type.
	NMOS MosType = "nmos"
	// PMOS is the P-channel transistor type.
	PMOS MosType = "pmos"
)

// MosVth is a technology-portable threshold-voltage class. Lowering
// selects a process device variant from it.
type MosVth string

const (
	// VthStd is the standard (regular) threshold class.
	VthStd MosVth = "std"
	// VthLow is the low threshold class.
	VthLow MosVth = "low"
	// VthSuperLow is the super-low threshold class.
	VthSuperLow MosVth = "slvt"
	// VthSram is the SRAM-optimized threshold class.
	VthSram MosVth = "sram"
)

// MosParams parameterize a [Mos] transistor.
type MosParams struct {
	// W is the transistor width in resolution units.
	W circuit.Opt[int] `param:"w"`

	// L is the transistor length in resolution units.
	L circuit.Opt[int] `param:"l"`

	// NSer is the number of series fingers.
	NSer int `param:"nser"`

	// NPar is the number of parallel fingers.
	NPar int `param:"npar"`

	// Tp is the transistor type.
	Tp MosType `param:"tp"`

	// Vth is the threshold-voltage class.
	Vth MosVth `param:"vth"`
}

var _ circuit.Validator = MosParams{}

// DefaultMosParams returns the catalog defaults: a single-finger,
// standard-threshold NMOS with unset dimensions.
func DefaultMosParams() MosParams {
	return MosParams{NSer: 1, NPar: 1, Tp: NMOS, Vth: VthStd}
}

// Validate reports all invalid field values.
func (p MosParams) Validate() error {
	var errs error
	if w, ok := p.W.Get(); ok && w <= 0 {
		errs = multierr.Append(errs, errors.Errorf("invalid width %d", w))
	}
	if l, ok := p.L.Get(); ok && l <= 0 {
		errs = multierr.Append(errs, errors.Errorf("invalid length %d", l))
	}
	if p.NSer <= 0 {
		errs = multierr.Append(errs, errors.Errorf("invalid number of series fingers %d", p.NSer))
	}
	if p.NPar <= 0 {
		errs = multierr.Append(errs, errors.Errorf("invalid number of parallel fingers %d", p.NPar))
	}
	switch p.Tp {
	case NMOS, PMOS:
	default:
		errs = multierr.Append(errs, errors.Errorf("invalid transistor type %q", p.Tp))
	}
	switch p.Vth {
	case VthStd, VthLow, VthSuperLow, VthSram:
	default:
		errs = multierr.Append(errs, errors.Errorf("invalid threshold class %q", p.Vth))
	}
	return errs
}

// DiodeParams parameterize a [Diode].
type DiodeParams struct {
	// W is the diode width in resolution units.
	W circuit.Opt[int] `param:"w"`

	// L is the diode length in resolution units.
	L circuit.Opt[int] `param:"l"`
}

// ResistorParams parameterize a [Resistor].
type ResistorParams struct {
	// R is the resistance in ohms.
	R float64 `param:"r"`
}

// CapacitorParams parameterize a [Capacitor].
type CapacitorParams struct {
	// C is the capacitance in farads.
	C float64 `param:"c"`
}

// InductorParams parameterize an [Inductor].
type InductorParams struct {
	// L is the inductance in henries.
	L float64 `param:"l"`
}

// ShortParams parameterize a [Short].
type ShortParams struct {
	// Layer is the metal layer of the tie.
	Layer circuit.Opt[int] `param:"layer"`

	// W is the tie width in resolution units.
	W circuit.Opt[int] `param:"w"`

	// L is the tie length in resolution units.
	L circuit.Opt[int] `param:"l"`
}

// The built-in device catalog. Leaf-level definitions typically
// supplied by simulators or device fabricators rather than by users.
var (
	// Mos is the four-terminal MOS transistor: drain, gate, source, bulk.
	Mos = mustPrimitive("Mos", "MOS transistor", devicePorts("d", "g", "s", "b"), MosParams{})

	// Diode is the two-terminal junction diode.
	Diode = mustPrimitive("Diode", "Diode", devicePorts("p", "n"), DiodeParams{})

	// Resistor is the ideal two-terminal resistor.
	Resistor = mustPrimitive("Resistor", "Resistor", devicePorts("p", "n"), ResistorParams{})

	// Capacitor is the ideal two-terminal capacitor.
	Capacitor = mustPrimitive("Capacitor", "Capacitor", devicePorts("p", "n"), CapacitorParams{})

	// Inductor is the ideal two-terminal inductor.
	Inductor = mustPrimitive("Inductor", "Inductor", devicePorts("p", "n"), InductorParams{})

	// Short is a short-circuit net-tie.
	Short = mustPrimitive("Short", "Short-circuit net-tie", devicePorts("p", "n"), ShortParams{})
)

var catalog = map[string]*circuit.Primitive{
	Mos.Name:       Mos,
	Diode.Name:     Diode,
	Resistor.Name:  Resistor,
	Capacitor.Name: Capacitor,
	Inductor.Name:  Inductor,
	Short.Name:     Short,
}

// ByName returns the catalog device of the given name.
func ByName(name string) (*circuit.Primitive, bool) {
	prim, ok := catalog[name]
	return prim, ok
}

// devicePorts builds single-bit, direction-less ports named names.
func devicePorts(names ...string) []*circuit.Signal {
	ports := make([]*circuit.Signal, len(names))
	for i, name := range names {
		ports[i] = circuit.NewPort(name, 1, circuit.NoDir)
	}
	return ports
}

func mustPrimitive(name, desc string, ports []*circuit.Signal, params any) *circuit.Primitive {
	prim, err := circuit.NewPrimitive(name, desc, ports, params)
	if err != nil {
		panic(err)
	}
	return prim
}
