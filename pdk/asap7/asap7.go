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

// Package asap7 lowers portable circuits to the ASAP7 predictive
// technology.
//
// The ASAP7 kit models exactly eight core devices, the transistors
// {n,p}mos_{rvt,lvt,slvt,sram}, provided as BSIM-CMG model definitions
// rather than subcircuits. [Modules] declares their interfaces;
// [Walker] is the elaboration pass substituting portable Mos devices
// with them; [Compile] applies the substitution to a serialized
// package.
package asap7

import (
	"sync"

	"github.com/hdx-org/hdx/circuit"
	"github.com/hdx-org/hdx/primitives"
)

// Name is the PDK name the technology registers under.
const Name = "asap7"

// MosKey selects a transistor variant: the device type and threshold
// class the technology encodes in distinct modules.
type MosKey struct {
	Tp  primitives.MosType
	Vth primitives.MosVth
}

var (
	mosTypePrefixes = map[primitives.MosType]string{
		primitives.NMOS: "n",
		primitives.PMOS: "p",
	}
	mosVthSuffixes = map[primitives.MosVth]string{
		primitives.VthStd:      "rvt",
		primitives.VthLow:      "lvt",
		primitives.VthSuperLow: "slvt",
		primitives.VthSram:     "sram",
	}
)

var (
	mosOnce    sync.Once
	mosModules map[MosKey]*circuit.ExternalModule
)

// Modules returns the technology's core transistor interfaces, keyed
// by the variant each implements. The table is built once and shared;
// callers must not mutate it.
func Modules() map[MosKey]*circuit.ExternalModule {
	mosOnce.Do(func() {
		mosModules = make(map[MosKey]*circuit.ExternalModule, len(mosTypePrefixes)*len(mosVthSuffixes))
		for tp, prefix := range mosTypePrefixes {
			for vth, suffix := range mosVthSuffixes {
				name := prefix + "mos_" + suffix
				mod, err := circuit.NewExternalModule(Name, name, "ASAP7 core Mos "+name, mosPorts())
				if err != nil {
					panic(err)
				}
				mosModules[MosKey{Tp: tp, Vth: vth}] = mod
			}
		}
	})
	return mosModules
}

// mosPorts returns a fresh copy of the portable Mos terminals.
func mosPorts() []*circuit.Signal {
	prim := primitives.Mos.Ports()
	ports := make([]*circuit.Signal, len(prim))
	for i, p := range prim {
		ports[i] = circuit.NewPort(p.Name(), p.Width(), p.Dir())
	}
	return ports
}
