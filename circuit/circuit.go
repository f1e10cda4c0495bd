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

// Package circuit is the HDX circuit intermediate representation (IR) graph.
//
// A circuit is described as a hierarchy of [Module] definitions. A Module
// owns ports, internal signals, and named [Instance]s of other targets:
// child Modules, built-in devices ([PrimitiveCall]), foreign modules
// ([ExternalModuleCall]), or unexpanded generator invocations
// ([GeneratorCall]). The closed set of instance targets is [Instantiable].
//
// Graph nodes are identified by pointer. Elaboration and export cache
// their per-node results keyed by that identity, so a Module instantiated
// many times is processed exactly once.
//
// Modules are mutable while a design is being authored. Once elaborated
// (see the elab package) they are treated as immutable.
package circuit

import (
	"fmt"
	"runtime"
	"strings"

	hdxfmt "github.com/hdx-org/hdx/base/fmt"
	"github.com/hdx-org/hdx/base/iter"
	"github.com/hdx-org/hdx/base/ordered"
	"github.com/hdx-org/hdx/base/stringseq"
)

// Module is a named, hierarchical circuit definition.
//
// Name and Namespace may be assigned freely before elaboration:
// an anonymous Module cannot be elaborated, and the pair
// (Namespace, Name) must be unique among all modules serialized into
// one wire package.
type Module struct {
	// Name of the module. Required by elaboration.
	Name string

	// Namespace the module originates from. Defaults to the short
	// package name of the NewModule caller and qualifies the module
	// name at export time.
	Namespace string

	ports     *ordered.Map[string, *Signal]
	signals   *ordered.Map[string, *Signal]
	instances *ordered.Map[string, *Instance]
	arrays    *ordered.Map[string, *InstanceArray]
	bundles   *ordered.Map[string, *BundleInstance]
}

var (
	_ Instantiable = (*Module)(nil)
	_ Elabable     = (*Module)(nil)
)

// NewModule returns a new empty module. Its namespace is the short
// package name of the caller.
func NewModule(name string) *Module {
	return &Module{
		Name:      name,
		Namespace: callerNamespace(),
		ports:     ordered.NewMap[string, *Signal](),
		signals:   ordered.NewMap[string, *Signal](),
		instances: ordered.NewMap[string, *Instance](),
		arrays:    ordered.NewMap[string, *InstanceArray](),
		bundles:   ordered.NewMap[string, *BundleInstance](),
	}
}

func (*Module) instantiable() {}

func (*Module) elabable() {}

// QualifiedName returns the module name qualified by its namespace,
// the form under which the module is serialized.
func (m *Module) QualifiedName() string {
	return m.Namespace + "." + m.Name
}

// AddPort declares a signal as a port of the module and returns it.
// The signal's visibility is forced to [VisPort]. A port with the same
// name replaces the previous one.
func (m *Module) AddPort(s *Signal) *Signal {
	s.vis = VisPort
	m.ports.Store(s.name, s)
	return s
}

// AddSignal declares an internal signal of the module and returns it.
func (m *Module) AddSignal(s *Signal) *Signal {
	m.signals.Store(s.name, s)
	return s
}

// NewInstance creates an instance of target of, owned by this module,
// and returns it for connection.
func (m *Module) NewInstance(name string, of Instantiable) *Instance {
	inst := &Instance{
		Name:  name,
		Of:    of,
		conns: ordered.NewMap[string, Conn](),
	}
	m.instances.Store(name, inst)
	return inst
}

// NewInstanceArray creates an n-fold replicated instance of target of,
// owned by this module, and returns it for connection.
func (m *Module) NewInstanceArray(name string, of Instantiable, n int) *InstanceArray {
	arr := &InstanceArray{
		Name:  name,
		Of:    of,
		N:     n,
		conns: ordered.NewMap[string, Conn](),
	}
	m.arrays.Store(name, arr)
	return arr
}

// NewBundleInstance attaches an instance of bundle b to the module.
// Bundles are an authoring aid: the serializer rejects modules still
// carrying them.
func (m *Module) NewBundleInstance(name string, of *Bundle) *BundleInstance {
	bi := &BundleInstance{Name: name, Of: of}
	m.bundles.Store(name, bi)
	return bi
}

// Ports returns the module ports in declaration order.
func (m *Module) Ports() *ordered.Map[string, *Signal] { return m.ports }

// Signals returns the module-internal signals in declaration order.
func (m *Module) Signals() *ordered.Map[string, *Signal] { return m.signals }

// Instances returns the module instances in declaration order.
func (m *Module) Instances() *ordered.Map[string, *Instance] { return m.instances }

// Arrays returns the module instance arrays in declaration order.
func (m *Module) Arrays() *ordered.Map[string, *InstanceArray] { return m.arrays }

// Bundles returns the module bundle instances in declaration order.
func (m *Module) Bundles() *ordered.Map[string, *BundleInstance] { return m.bundles }

// SignalByName resolves a name against the module's ports, then its
// internal signals.
func (m *Module) SignalByName(name string) (*Signal, bool) {
	if s, ok := m.ports.Load(name); ok {
		return s, true
	}
	return m.signals.Load(name)
}

// Names returns the set of all attribute names declared in the module:
// ports, signals, instances, arrays, and bundles. Passes use it as the
// avoid-set when synthesizing new attribute names.
func (m *Module) Names() map[string]bool {
	names := make(map[string]bool)
	for name := range iter.All(
		m.ports.Keys(),
		m.signals.Keys(),
		m.instances.Keys(),
		m.arrays.Keys(),
		m.bundles.Keys(),
	) {
		names[name] = true
	}
	return names
}

// String returns a multi-line summary of the module.
func (m *Module) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s:\n", m.QualifiedName())
	var body strings.Builder
	if m.ports.Size() > 0 {
		fmt.Fprintf(&body, "ports: %s\n", stringseq.JoinStringer(m.ports.Values(), ", "))
	}
	if m.signals.Size() > 0 {
		fmt.Fprintf(&body, "signals: %s\n", stringseq.JoinStringer(m.signals.Values(), ", "))
	}
	if m.instances.Size() > 0 {
		fmt.Fprintf(&body, "instances: %s\n", stringseq.JoinStringer(m.instances.Values(), ", "))
	}
	if m.arrays.Size() > 0 {
		fmt.Fprintf(&body, "arrays: %s\n", stringseq.JoinStringer(m.arrays.Values(), ", "))
	}
	if m.bundles.Size() > 0 {
		fmt.Fprintf(&body, "bundles: %s\n", stringseq.Join(m.bundles.Keys(), ", "))
	}
	b.WriteString(hdxfmt.Indent(body.String()))
	return b.String()
}

// callerNamespace returns the short package name two frames up the
// call stack: the package calling NewModule or NewGenerator.
func callerNamespace() string {
	pc, _, _, ok := runtime.Caller(2)
	if !ok {
		return ""
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}
	return packageOf(fn.Name())
}

// packageOf extracts the short package name from a fully-qualified
// function name such as "github.com/hdx-org/hdx/examples/inverter.Build".
func packageOf(fn string) string {
	if i := strings.LastIndexByte(fn, '/'); i >= 0 {
		fn = fn[i+1:]
	}
	if i := strings.IndexByte(fn, '.'); i >= 0 {
		fn = fn[:i]
	}
	return fn
}
