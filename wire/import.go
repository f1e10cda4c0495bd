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

package wire

import (
	"maps"
	"slices"
	"strings"

	"github.com/hdx-org/hdx/base/ordered"
	"github.com/hdx-org/hdx/circuit"
	"github.com/hdx-org/hdx/primitives"
	"github.com/pkg/errors"
)

// ErrBadReference reports a serialized reference to something the
// package never defines.
var ErrBadReference = errors.New("invalid reference")

// importer resolves serialized references while a package is rebuilt.
type importer struct {
	pkg        *Package
	modules    map[QualifiedName]*circuit.Module
	extModules map[string]*circuit.ExternalModule
}

// Import rebuilds the in-memory module graph pkg serializes, in
// package order. Since packages are dependency-ordered, every
// instance reference resolves to a module rebuilt earlier in the
// list; a forward or dangling reference is an error.
func Import(pkg *Package) ([]*circuit.Module, error) {
	imp := &importer{
		pkg:        pkg,
		modules:    make(map[QualifiedName]*circuit.Module, len(pkg.Modules)),
		extModules: make(map[string]*circuit.ExternalModule, len(pkg.ExtModules)),
	}
	for _, wem := range pkg.ExtModules {
		em, err := importExtModule(wem)
		if err != nil {
			return nil, errors.Wrapf(err, "external module %s", wem.Name)
		}
		imp.extModules[wem.Name.Name] = em
	}
	ms := make([]*circuit.Module, 0, len(pkg.Modules))
	for _, wm := range pkg.Modules {
		m, err := imp.module(wm)
		if err != nil {
			return nil, errors.Wrapf(err, "module %s", wm.Name)
		}
		ms = append(ms, m)
	}
	return ms, nil
}

// module rebuilds one serialized module definition.
func (imp *importer) module(wm *Module) (*circuit.Module, error) {
	namespace, name := splitQualified(wm.Name.Name)
	m := circuit.NewModule(name)
	m.Namespace = namespace
	for _, wp := range wm.Ports {
		if wp.Signal == nil {
			return nil, errors.Wrap(ErrBadReference, "port without a signal")
		}
		m.AddPort(circuit.NewPort(wp.Signal.Name, int(wp.Signal.Width), importDir(wp.Direction)))
	}
	for _, ws := range wm.Signals {
		m.AddSignal(circuit.NewSignal(ws.Name, int(ws.Width)))
	}
	for _, wi := range wm.Instances {
		if err := imp.instance(m, wi); err != nil {
			return nil, errors.Wrapf(err, "instance %s", wi.Name)
		}
	}
	imp.modules[wm.Name] = m
	return m, nil
}

// importExtModule rebuilds a foreign-module interface.
func importExtModule(wem *ExternalModule) (*circuit.ExternalModule, error) {
	ports := make([]*circuit.Signal, 0, len(wem.Ports))
	for _, wp := range wem.Ports {
		if wp.Signal == nil {
			return nil, errors.Wrap(ErrBadReference, "port without a signal")
		}
		ports = append(ports, circuit.NewPort(wp.Signal.Name, int(wp.Signal.Width), importDir(wp.Direction)))
	}
	return circuit.NewExternalModule("", wem.Name.Name, "", ports)
}

// instance rebuilds one serialized instance inside m.
func (imp *importer) instance(m *circuit.Module, wi *Instance) error {
	of, err := imp.target(wi)
	if err != nil {
		return err
	}
	inst := m.NewInstance(wi.Name, of)
	inst.MarkElaborated()
	// Wire connection maps are unordered; rebuild them sorted by port
	// name so imports are deterministic.
	for _, port := range slices.Sorted(maps.Keys(wi.Connections)) {
		conn, err := imp.conn(m, wi.Connections[port])
		if err != nil {
			return errors.Wrapf(err, "connection %q", port)
		}
		inst.Connect(port, conn)
	}
	return nil
}

// target resolves an instance reference: first against the package's
// own modules, then the built-in primitive catalog, then the foreign
// modules under the blank domain.
func (imp *importer) target(wi *Instance) (circuit.Instantiable, error) {
	qn := wi.Module.QN
	if m, ok := imp.modules[qn]; ok {
		return m, nil
	}
	if qn.Domain == primitives.Domain {
		return importPrimitiveCall(qn.Name, wi.Parameters)
	}
	if em, ok := imp.extModules[qn.Name]; ok && qn.Domain == "" {
		params := ordered.NewMap[string, any]()
		for _, name := range slices.Sorted(maps.Keys(wi.Parameters)) {
			value, err := importParamValue(wi.Parameters[name])
			if err != nil {
				return nil, errors.Wrapf(err, "parameter %q", name)
			}
			params.Store(name, value)
		}
		return em.Call(params), nil
	}
	return nil, errors.Wrapf(ErrBadReference, "no module %s in package %s", qn, imp.pkg.Name)
}

// importPrimitiveCall rebinds serialized parameters to a catalog
// device.
func importPrimitiveCall(name string, params map[string]*ParamValue) (circuit.Instantiable, error) {
	prim, ok := primitives.ByName(name)
	if !ok {
		return nil, errors.Wrapf(ErrBadReference, "no primitive %s", name)
	}
	values := make(map[string]any, len(params))
	for pname, pv := range params {
		value, err := importParamValue(pv)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %q", pname)
		}
		values[pname] = value
	}
	bound, err := circuit.BindParams(prim.ParamType(), values)
	if err != nil {
		return nil, errors.Wrapf(err, "primitive %s", prim.Name)
	}
	return prim.Call(bound)
}

// importParamValue unwraps a wire parameter oneof.
func importParamValue(pv *ParamValue) (any, error) {
	switch {
	case pv == nil:
		return nil, errors.Wrap(ErrParamType, "empty parameter value")
	case pv.Integer != nil:
		return *pv.Integer, nil
	case pv.Double != nil:
		return *pv.Double, nil
	case pv.Str != nil:
		return *pv.Str, nil
	}
	return nil, errors.Wrap(ErrParamType, "empty parameter value")
}

// conn rebuilds a connection expression against m's signals.
func (imp *importer) conn(m *circuit.Module, wc *Connection) (circuit.Conn, error) {
	switch {
	case wc == nil:
		return nil, errors.Wrap(ErrConnType, "missing connection")
	case wc.Sig != nil:
		sig, ok := m.SignalByName(wc.Sig.Name)
		if !ok {
			return nil, errors.Wrapf(ErrBadReference, "no signal %q in module %s", wc.Sig.Name, m.Name)
		}
		return sig, nil
	case wc.Slice != nil:
		sig, ok := m.SignalByName(wc.Slice.Signal)
		if !ok {
			return nil, errors.Wrapf(ErrBadReference, "no signal %q in module %s", wc.Slice.Signal, m.Name)
		}
		return circuit.NewSlice(sig, int(wc.Slice.Bot), int(wc.Slice.Top))
	case wc.Concat != nil:
		parts := make([]circuit.Conn, 0, len(wc.Concat.Parts))
		for _, wp := range wc.Concat.Parts {
			part, err := imp.conn(m, wp)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		}
		return circuit.NewConcat(parts...)
	}
	return nil, errors.Wrap(ErrConnType, "empty connection")
}

// importDir maps a wire direction back onto the graph's enumeration.
func importDir(dir Dir) circuit.Dir {
	switch dir {
	case DirInput:
		return circuit.Input
	case DirOutput:
		return circuit.Output
	case DirInout:
		return circuit.Inout
	}
	return circuit.NoDir
}

// splitQualified splits a serialized "<namespace>.<name>" module name.
// A name with no namespace comes back whole.
func splitQualified(qualified string) (namespace, name string) {
	i := strings.LastIndexByte(qualified, '.')
	if i < 0 {
		return "", qualified
	}
	return qualified[:i], qualified[i+1:]
}
