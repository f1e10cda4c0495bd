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
	"slices"
	"strings"

	"github.com/hdx-org/hdx/base/ordered"
	"github.com/hdx-org/hdx/circuit"
	"github.com/hdx-org/hdx/elab"
	"github.com/hdx-org/hdx/primitives"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

// ErrNoTechModule reports a primitive device the technology does not
// implement.
var ErrNoTechModule = errors.New("no ASAP7 module for primitive")

// Walker is the elaboration pass lowering portable primitive devices
// to ASAP7 modules. A Walker carries the substitution cache of one
// lowering run: substitutions are memoized by parameter value, so
// equal-parameter device calls anywhere in the hierarchy share one
// substituted call.
type Walker struct {
	elab.Base

	mos      map[MosKey]*circuit.ExternalModule
	mosCalls map[primitives.MosParams]*circuit.ExternalModuleCall
}

var _ elab.Pass = (*Walker)(nil)

// NewWalker returns a walker over the technology's module table.
func NewWalker() *Walker {
	return &Walker{
		mos:      Modules(),
		mosCalls: make(map[primitives.MosParams]*circuit.ExternalModuleCall),
	}
}

// PassName implements [elab.Pass].
func (*Walker) PassName() string { return "asap7-lowering" }

// PrimitiveCall substitutes a Mos device call with the technology
// module implementing its variant. Any other device is an error: the
// technology implements transistors only.
func (w *Walker) PrimitiveCall(e *elab.Elaborator, call *circuit.PrimitiveCall) (circuit.Instantiable, error) {
	if call.Prim != primitives.Mos {
		return nil, errors.Wrapf(ErrNoTechModule, "device %s: ASAP7 implements %s", call.Prim.Name, w.variants())
	}
	params, ok := call.Params.(primitives.MosParams)
	if !ok {
		return nil, errors.Wrapf(ErrNoTechModule, "device %s carries %T parameters", call.Prim.Name, call.Params)
	}
	return w.mosCall(params)
}

// mosCall returns the substituted call for a transistor of the given
// parameters.
func (w *Walker) mosCall(params primitives.MosParams) (*circuit.ExternalModuleCall, error) {
	if call, ok := w.mosCalls[params]; ok {
		return call, nil
	}
	mod, ok := w.mos[MosKey{Tp: params.Tp, Vth: params.Vth}]
	if !ok {
		return nil, errors.Wrapf(ErrNoTechModule, "no %s transistor of threshold class %q: ASAP7 implements %s", params.Tp, params.Vth, w.variants())
	}
	call := mod.Call(lowerMosParams(params))
	w.mosCalls[params] = call
	return call, nil
}

// lowerMosParams translates portable transistor parameters for a
// technology module. The type and threshold-class fields collapse
// into the module variant and are dropped; dimensions and finger
// counts pass through, unset dimensions omitted.
func lowerMosParams(params primitives.MosParams) *ordered.Map[string, any] {
	lowered := ordered.NewMap[string, any]()
	if w, ok := params.W.Get(); ok {
		lowered.Store("w", w)
	}
	if l, ok := params.L.Get(); ok {
		lowered.Store("l", l)
	}
	lowered.Store("nser", params.NSer)
	lowered.Store("npar", params.NPar)
	return lowered
}

// variants lists the technology's module names for error reports.
func (w *Walker) variants() string {
	mods := maps.Values(w.mos)
	names := make([]string, len(mods))
	for i, mod := range mods {
		names[i] = mod.Name
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}
