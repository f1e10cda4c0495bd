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

// Package elab resolves declaratively-built circuit hierarchies into
// fully-defined module graphs.
//
// The package provides one traversal framework, the [Elaborator], and
// a set of passes built on it. The framework owns hierarchy descent,
// identity-keyed caching, and error reporting; a [Pass] customizes it
// by implementing a handful of hooks. The [Elaborator] visits every
// node of the graph exactly once per run: a module instantiated many
// times is processed on first encounter and served from the cache
// afterwards, which both bounds the traversal on heavily-shared
// hierarchies and guarantees each node's one-time state transition.
//
// [Elaborate] runs the standard pipeline: generator expansion, array
// flattening, connection checks. [Run] runs a single pass, which is
// how technology-lowering walkers (see the pdk packages) plug in.
package elab

import (
	"slices"

	"github.com/hdx-org/hdx/circuit"
	"github.com/pkg/errors"
)

// Errors reported by elaboration, wrapped with positional context.
var (
	// ErrInvalidTop reports an elaboration entry point invoked without
	// a usable top node.
	ErrInvalidTop = errors.New("invalid elaboration top")

	// ErrAnonymousModule reports a module that cannot be elaborated
	// for lack of a name.
	ErrAnonymousModule = errors.New("anonymous module")

	// ErrUnresolvedTarget reports an instance whose target was never
	// defined.
	ErrUnresolvedTarget = errors.New("unresolved instance target")

	// ErrGeneratorCall reports a generator call reaching a pass other
	// than the generator pass.
	ErrGeneratorCall = errors.New("unexpanded generator call")
)

// Pass is the hook set a concrete elaboration pass implements. The
// [Elaborator] drives the traversal and consults the pass at each kind
// of node; whatever a hook returns replaces the node in its parent.
// Embed [Base] for the default behavior and override selectively.
type Pass interface {
	// PassName identifies the pass in error reports.
	PassName() string

	// Module post-processes a module. It runs only after every child
	// instance of the module has been elaborated.
	Module(e *Elaborator, m *circuit.Module) (*circuit.Module, error)

	// PrimitiveCall processes an instance target that is a primitive
	// device call.
	PrimitiveCall(e *Elaborator, call *circuit.PrimitiveCall) (circuit.Instantiable, error)

	// ExternalModuleCall processes an instance target that is a
	// foreign module call.
	ExternalModuleCall(e *Elaborator, call *circuit.ExternalModuleCall) (circuit.Instantiable, error)

	// GeneratorCall processes an instance target that is an
	// unexpanded generator call.
	GeneratorCall(e *Elaborator, call *circuit.GeneratorCall) (circuit.Instantiable, error)
}

// Base provides the default hook behavior: modules, primitive calls,
// and external module calls pass through unmodified, and generator
// calls are an error. All passes but the generator pass must reject
// generator calls: generator expansion completes before any other
// pass runs.
type Base struct{}

// Module returns m unmodified.
func (Base) Module(e *Elaborator, m *circuit.Module) (*circuit.Module, error) {
	return m, nil
}

// PrimitiveCall returns call unmodified.
func (Base) PrimitiveCall(e *Elaborator, call *circuit.PrimitiveCall) (circuit.Instantiable, error) {
	return call, nil
}

// ExternalModuleCall returns call unmodified.
func (Base) ExternalModuleCall(e *Elaborator, call *circuit.ExternalModuleCall) (circuit.Instantiable, error) {
	return call, nil
}

// GeneratorCall fails: only the generator pass expands generator calls.
func (Base) GeneratorCall(e *Elaborator, call *circuit.GeneratorCall) (circuit.Instantiable, error) {
	return nil, errors.Wrapf(ErrGeneratorCall, "%s reached pass %s", call, e.pass.PassName())
}

// Elaborator drives one pass over one hierarchy. It owns the
// identity-keyed module cache for the run; caches are never shared
// across runs, and a run is single-threaded.
type Elaborator struct {
	ctx     *Context
	pass    Pass
	modules map[*circuit.Module]*circuit.Module
}

// Run elaborates top with a single pass and returns the resulting
// module. Most callers want [Elaborate], which runs the standard pass
// pipeline; Run is the entry point for standalone passes such as
// technology-lowering walkers.
func Run(ctx *Context, pass Pass, top circuit.Elabable) (*circuit.Module, error) {
	ms, err := RunAll(ctx, pass, []circuit.Elabable{top})
	if err != nil {
		return nil, err
	}
	return ms[0], nil
}

// RunAll elaborates every top through one shared run of pass: modules
// reachable from several tops are processed once, and the results come
// back in top order.
func RunAll(ctx *Context, pass Pass, tops []circuit.Elabable) ([]*circuit.Module, error) {
	e := &Elaborator{
		ctx:     ctx,
		pass:    pass,
		modules: make(map[*circuit.Module]*circuit.Module),
	}
	ms := make([]*circuit.Module, len(tops))
	for i, top := range tops {
		m, err := e.top(top)
		if err != nil {
			return nil, errors.Wrapf(err, "pass %s", pass.PassName())
		}
		ms[i] = m
	}
	return ms, nil
}

// Elaborate resolves top into a fully-defined module: generator calls
// are expanded, instance arrays are flattened into scalar instances,
// and connections are checked. A nil ctx uses the defaults.
func Elaborate(ctx *Context, top circuit.Elabable) (*circuit.Module, error) {
	m, err := Run(ctx, newGenerators(), top)
	if err != nil {
		return nil, err
	}
	if m, err = Run(ctx, flatten{}, m); err != nil {
		return nil, err
	}
	if m, err = Run(ctx, checks{}, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Ctx returns the run's context.
func (e *Elaborator) Ctx() *Context { return e.ctx }

// top elaborates the run's top-level node.
func (e *Elaborator) top(top circuit.Elabable) (*circuit.Module, error) {
	switch t := top.(type) {
	case *circuit.Module:
		if t == nil {
			return nil, errors.Wrap(ErrInvalidTop, "nil module")
		}
		return e.Module(t)
	case *circuit.GeneratorCall:
		if t == nil {
			return nil, errors.Wrap(ErrInvalidTop, "nil generator call")
		}
		of, err := e.pass.GeneratorCall(e, t)
		if err != nil {
			return nil, err
		}
		m, ok := of.(*circuit.Module)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidTop, "generator call %s expanded to %T, not a module", t, of)
		}
		return m, nil
	}
	return nil, errors.Wrapf(ErrInvalidTop, "%v", top)
}

// Module elaborates m through the base traversal:
//
//  1. A cached module returns its cached result, unvisited.
//  2. An anonymous module is an error.
//  3. Every instance, then every instance array, then every bundle
//     instance is elaborated, depth-first.
//  4. The pass's Module hook runs on m.
//  5. The hook's result is cached under m's identity and returned.
//
// Pass hooks recurse through this method only; a pass never
// reimplements the traversal.
func (e *Elaborator) Module(m *circuit.Module) (*circuit.Module, error) {
	if done, ok := e.modules[m]; ok {
		return done, nil
	}
	if m.Name == "" {
		return nil, errors.Wrapf(ErrAnonymousModule, "in namespace %q (did you forget to name it?)", m.Namespace)
	}
	// Iterate over snapshots: pass hooks may add or remove module
	// attributes while the framework descends.
	for _, inst := range slices.Collect(m.Instances().Values()) {
		if err := e.instance(inst); err != nil {
			return nil, errors.Wrapf(err, "instance %s of module %s", inst.Name, m.Name)
		}
	}
	for _, arr := range slices.Collect(m.Arrays().Values()) {
		if err := e.instanceArray(arr); err != nil {
			return nil, errors.Wrapf(err, "instance array %s of module %s", arr.Name, m.Name)
		}
	}
	for bi := range m.Bundles().Values() {
		bi.MarkElaborated()
	}
	result, err := e.pass.Module(e, m)
	if err != nil {
		return nil, errors.Wrapf(err, "module %s", m.Name)
	}
	e.modules[m] = result
	return result, nil
}

// instance marks inst elaborated, elaborates its target, and installs
// the hook result as the new target.
func (e *Elaborator) instance(inst *circuit.Instance) error {
	inst.MarkElaborated()
	of, err := e.instantiable(inst.Of)
	if err != nil {
		return err
	}
	inst.Of = of
	return nil
}

// instanceArray is the [Elaborator.instance] contract for arrays: the
// shared target is elaborated once, not once per replica.
func (e *Elaborator) instanceArray(arr *circuit.InstanceArray) error {
	arr.MarkElaborated()
	of, err := e.instantiable(arr.Of)
	if err != nil {
		return err
	}
	arr.Of = of
	return nil
}

// instantiable dispatches an instance target to the pass hook for its
// kind. Modules recurse into the base traversal.
func (e *Elaborator) instantiable(of circuit.Instantiable) (circuit.Instantiable, error) {
	switch t := of.(type) {
	case *circuit.Module:
		if t == nil {
			return nil, ErrUnresolvedTarget
		}
		return e.Module(t)
	case *circuit.PrimitiveCall:
		return e.pass.PrimitiveCall(e, t)
	case *circuit.ExternalModuleCall:
		return e.pass.ExternalModuleCall(e, t)
	case *circuit.GeneratorCall:
		return e.pass.GeneratorCall(e, t)
	case nil:
		return nil, ErrUnresolvedTarget
	}
	return nil, errors.Errorf("invalid instance target %T", of)
}
