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

// Package pdk is the shared support layer for process-design-kit
// adapters: process corners, model-library includes, site-specific
// installation data, and the process-level registry of installed
// PDKs. The adapters themselves live in subpackages (see asap7) and
// implement lowering as elaboration passes.
package pdk

import (
	"github.com/hdx-org/hdx/base/sync"
	"github.com/pkg/errors"
)

// Corner identifies a broad device-level process corner.
type Corner uint8

const (
	// Typical is the nominal process corner.
	Typical Corner = iota
	// Fast is the fast device corner.
	Fast
	// Slow is the slow device corner.
	Slow
)

// String returns the conventional short corner name.
func (c Corner) String() string {
	switch c {
	case Typical:
		return "typ"
	case Fast:
		return "fast"
	case Slow:
		return "slow"
	}
	return "invalid"
}

// CmosCorner identifies a paired NMOS/PMOS process corner.
type CmosCorner uint8

const (
	// TT is typical NMOS, typical PMOS.
	TT CmosCorner = iota
	// FF is fast NMOS, fast PMOS.
	FF
	// SS is slow NMOS, slow PMOS.
	SS
	// SF is slow NMOS, fast PMOS.
	SF
	// FS is fast NMOS, slow PMOS.
	FS
)

// String returns the conventional two-letter corner code.
func (c CmosCorner) String() string {
	switch c {
	case TT:
		return "tt"
	case FF:
		return "ff"
	case SS:
		return "ss"
	case SF:
		return "sf"
	case FS:
		return "fs"
	}
	return "invalid"
}

// Split returns the per-device corners the CMOS corner pairs.
func (c CmosCorner) Split() (nmos, pmos Corner) {
	switch c {
	case FF:
		return Fast, Fast
	case SS:
		return Slow, Slow
	case SF:
		return Slow, Fast
	case FS:
		return Fast, Slow
	}
	return Typical, Typical
}

// Lib points at one section of a simulation model library.
type Lib struct {
	// Path of the model library file.
	Path string

	// Section of the library to include.
	Section string
}

// Installation is the site-specific data of an installed PDK: where
// its model libraries live and which library sections implement which
// corners. Each PDK package defines its own concrete type; [Config]
// is a ready-made implementation loaded from a YAML file.
type Installation interface {
	// Include returns the model library include for a process corner.
	Include(corner Corner) (Lib, error)
}

// installs is the process-level table of installed PDKs, keyed by PDK
// name. Write-once per name in practice; the map only synchronizes
// registration against lookup.
var installs = sync.Map[string, Installation]{}

// Register makes inst available process-wide under the PDK name.
// Registering a name twice replaces the earlier installation.
func Register(name string, inst Installation) {
	installs.Store(name, inst)
}

// Find returns the installation registered under the PDK name.
func Find(name string) (Installation, error) {
	inst, ok := installs.Load(name)
	if !ok {
		return nil, errors.Errorf("no installation registered for PDK %q", name)
	}
	return inst, nil
}
