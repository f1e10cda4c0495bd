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
	"reflect"

	"github.com/hdx-org/hdx/base/stringseq"
	"github.com/hdx-org/hdx/circuit"
	"github.com/hdx-org/hdx/elab"
	"github.com/hdx-org/hdx/primitives"
	"github.com/pkg/errors"
)

// Errors reported by serialization, wrapped with positional context.
var (
	// ErrNameCollision reports two distinct modules computing the same
	// qualified name.
	ErrNameCollision = errors.New("module name collision")

	// ErrBundleExport reports a module still carrying bundle
	// instances, which have no serialized form.
	ErrBundleExport = errors.New("bundle instances cannot be serialized")

	// ErrArrayExport reports a module still carrying instance arrays;
	// arrays must be flattened before serialization.
	ErrArrayExport = errors.New("instance arrays cannot be serialized")

	// ErrParamType reports a parameter value with no wire
	// representation.
	ErrParamType = errors.New("invalid parameter type")

	// ErrConnType reports a connection with no wire representation.
	ErrConnType = errors.New("invalid connection")
)

// exporter owns the caches of one export run: serialized modules by
// identity, qualified names for collision detection, and foreign
// modules by identity.
type exporter struct {
	pkg         *Package
	modules     map[*circuit.Module]*Module
	moduleNames map[QualifiedName]bool
	extModules  map[*circuit.ExternalModule]*ExternalModule
}

// Export elaborates every top and serializes it, along with every
// module it depends on, into one package named domain. Modules are
// emitted in dependency order: a child always precedes the parents
// that instantiate it. A nil ctx uses the elaboration defaults.
func Export(ctx *elab.Context, domain string, tops ...circuit.Elabable) (*Package, error) {
	x := &exporter{
		pkg:         &Package{Name: domain},
		modules:     make(map[*circuit.Module]*Module),
		moduleNames: make(map[QualifiedName]bool),
		extModules:  make(map[*circuit.ExternalModule]*ExternalModule),
	}
	for _, top := range tops {
		m, err := elab.Elaborate(ctx, top)
		if err != nil {
			return nil, err
		}
		if _, err := x.module(m); err != nil {
			return nil, err
		}
	}
	return x.pkg, nil
}

// module serializes m and, depth-first, every module it instantiates.
// Memoized by m's identity: a module shared by several parents is
// serialized once.
func (x *exporter) module(m *circuit.Module) (*Module, error) {
	if done, ok := x.modules[m]; ok {
		return done, nil
	}
	if m.Bundles().Size() > 0 {
		return nil, errors.Wrapf(ErrBundleExport, "module %s carries %s", m.Name, stringseq.JoinQuoted(m.Bundles().Keys(), ", "))
	}
	if m.Arrays().Size() > 0 {
		return nil, errors.Wrapf(ErrArrayExport, "module %s carries %s", m.Name, stringseq.JoinQuoted(m.Arrays().Keys(), ", "))
	}
	// The identity cache above missed, so a name hit here is a second,
	// distinct module computing the same qualified name.
	qn := QualifiedName{Domain: x.pkg.Name, Name: m.QualifiedName()}
	if _, ok := x.moduleNames[qn]; ok {
		return nil, errors.Wrapf(ErrNameCollision, "cannot serialize module %s: name %s already taken (was a generator result left unnamed?)", m.Name, qn)
	}
	wm := &Module{Name: qn}
	for port := range m.Ports().Values() {
		wm.Ports = append(wm.Ports, exportPort(port))
	}
	for sig := range m.Signals().Values() {
		wm.Signals = append(wm.Signals, &Signal{Name: sig.Name(), Width: int64(sig.Width())})
	}
	for inst := range m.Instances().Values() {
		wi, err := x.instance(inst)
		if err != nil {
			return nil, errors.Wrapf(err, "instance %s of module %s", inst.Name, m.Name)
		}
		wm.Instances = append(wm.Instances, wi)
	}
	x.modules[m] = wm
	x.moduleNames[qn] = true
	x.pkg.Modules = append(x.pkg.Modules, wm)
	return wm, nil
}

// extModule serializes a foreign module interface, memoized by
// identity. Foreign modules live under a blank domain, outside the
// dependency-ordered module list.
func (x *exporter) extModule(em *circuit.ExternalModule) (*ExternalModule, error) {
	if done, ok := x.extModules[em]; ok {
		return done, nil
	}
	wm := &ExternalModule{Name: QualifiedName{Name: em.Name}}
	for _, port := range em.Ports() {
		wm.Ports = append(wm.Ports, exportPort(port))
	}
	x.extModules[em] = wm
	x.pkg.ExtModules = append(x.pkg.ExtModules, wm)
	return wm, nil
}

// instance serializes inst: a reference to its (depth-first exported)
// target, its parameters, and its connections.
func (x *exporter) instance(inst *circuit.Instance) (*Instance, error) {
	wi := &Instance{Name: inst.Name}
	switch of := inst.Of.(type) {
	case *circuit.Module:
		wm, err := x.module(of)
		if err != nil {
			return nil, err
		}
		wi.Module = Reference{QN: wm.Name}
	case *circuit.PrimitiveCall:
		wi.Module = Reference{QN: QualifiedName{Domain: primitives.Domain, Name: of.Prim.Name}}
		fields, err := circuit.ParamFields(of.Params)
		if err != nil {
			return nil, err
		}
		wi.Parameters, err = exportParamFields(fields)
		if err != nil {
			return nil, err
		}
	case *circuit.ExternalModuleCall:
		if _, err := x.extModule(of.Mod); err != nil {
			return nil, err
		}
		wi.Module = Reference{QN: QualifiedName{Name: of.Mod.Name}}
		params := make(map[string]*ParamValue, of.Params.Size())
		for name, value := range of.Params.Iter() {
			pv, err := exportParamValue(value)
			if err != nil {
				return nil, errors.Wrapf(err, "parameter %q", name)
			}
			if pv == nil {
				continue
			}
			params[name] = pv
		}
		if len(params) > 0 {
			wi.Parameters = params
		}
	case *circuit.GeneratorCall:
		return nil, errors.Wrapf(elab.ErrGeneratorCall, "cannot serialize %s", of)
	case nil:
		return nil, errors.Wrap(elab.ErrUnresolvedTarget, "cannot serialize")
	}
	if inst.Conns().Size() > 0 {
		wi.Connections = make(map[string]*Connection, inst.Conns().Size())
		for port, conn := range inst.Conns().Iter() {
			wc, err := exportConn(conn)
			if err != nil {
				return nil, errors.Wrapf(err, "connection %q", port)
			}
			wi.Connections[port] = wc
		}
	}
	return wi, nil
}

// exportParamFields translates flattened parameter fields into the
// wire parameter map. Unset fields are omitted entirely, never
// encoded as nulls.
func exportParamFields(fields []circuit.ParamField) (map[string]*ParamValue, error) {
	params := make(map[string]*ParamValue, len(fields))
	for _, field := range fields {
		pv, err := exportParamValue(field.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %q", field.Name)
		}
		if pv == nil {
			continue
		}
		params[field.Name] = pv
	}
	if len(params) == 0 {
		return nil, nil
	}
	return params, nil
}

// exportParamValue translates one parameter value: integers to the
// integer variant, floats to the double variant, text to the string
// variant. A nil value means unset and translates to nil.
func exportParamValue(value any) (*ParamValue, error) {
	if value == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(int64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Double(rv.Float()), nil
	case reflect.String:
		return Str(rv.String()), nil
	}
	return nil, errors.Wrapf(ErrParamType, "%T value %v", value, value)
}

// exportPort serializes a port signal with its direction.
func exportPort(port *circuit.Signal) *Port {
	return &Port{
		Direction: exportDir(port.Dir()),
		Signal:    &Signal{Name: port.Name(), Width: int64(port.Width())},
	}
}

// exportDir maps the graph's direction enumeration onto the wire's.
func exportDir(dir circuit.Dir) Dir {
	switch dir {
	case circuit.Input:
		return DirInput
	case circuit.Output:
		return DirOutput
	case circuit.Inout:
		return DirInout
	}
	return DirNone
}

// exportConn serializes a connection expression, recursing through
// concatenations.
func exportConn(conn circuit.Conn) (*Connection, error) {
	switch c := conn.(type) {
	case *circuit.Signal:
		return &Connection{Sig: &Signal{Name: c.Name(), Width: int64(c.Width())}}, nil
	case *circuit.Slice:
		return &Connection{Slice: &Slice{
			Signal: c.Signal().Name(),
			Bot:    int64(c.Bot()),
			Top:    int64(c.Top()),
		}}, nil
	case *circuit.Concat:
		concat := &Concat{}
		for _, part := range c.Parts() {
			wp, err := exportConn(part)
			if err != nil {
				return nil, err
			}
			concat.Parts = append(concat.Parts, wp)
		}
		return &Connection{Concat: concat}, nil
	case nil:
		return nil, errors.Wrap(ErrConnType, "nil connection")
	}
	return nil, errors.Wrapf(ErrConnType, "%T", conn)
}
