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

package elab

import (
	"fmt"
	"reflect"

	"github.com/hdx-org/hdx/circuit"
	"github.com/pkg/errors"
)

// generators is the generator-expansion pass: the only pass permitted
// to encounter GeneratorCall targets. It runs each called generator,
// installs the built module as the call's result, and elaborates into
// it, so that by the end of the pass no generator call remains
// anywhere in the hierarchy.
//
// Calls to the same generator with equal parameter values share one
// result module. The cache is keyed by parameter value, so it applies
// only when the parameter value is comparable; non-comparable
// parameters build a fresh module per call.
type generators struct {
	Base

	calls  map[genKey]*circuit.Module
	counts map[*circuit.Generator]int
}

type genKey struct {
	gen    *circuit.Generator
	params any
}

func newGenerators() *generators {
	return &generators{
		calls:  make(map[genKey]*circuit.Module),
		counts: make(map[*circuit.Generator]int),
	}
}

// PassName identifies the pass in error reports.
func (*generators) PassName() string { return "generators" }

// GeneratorCall expands call and elaborates the module it built.
func (g *generators) GeneratorCall(e *Elaborator, call *circuit.GeneratorCall) (circuit.Instantiable, error) {
	if call.Result != nil {
		return e.Module(call.Result)
	}
	if call.Gen == nil || call.Gen.Fn == nil {
		return nil, errors.Wrap(ErrUnresolvedTarget, "generator call without a generator function")
	}
	key, dedup := dedupKey(call)
	if dedup {
		if m, ok := g.calls[key]; ok {
			call.Result = m
			return e.Module(m)
		}
	}
	built, err := call.Gen.Fn(call.Params)
	if err != nil {
		return nil, errors.Wrapf(err, "generator %s", call.Gen)
	}
	if built == nil {
		return nil, errors.Errorf("generator %s returned no module", call.Gen)
	}
	if built.Name == "" {
		built.Name = g.resultName(call.Gen)
	}
	if built.Namespace == "" {
		built.Namespace = call.Gen.Namespace
	}
	call.Result = built
	if dedup {
		g.calls[key] = built
	}
	return e.Module(built)
}

// resultName names an anonymous generated module: the generator's own
// name first, numbered variants for every later distinct call.
func (g *generators) resultName(gen *circuit.Generator) string {
	n := g.counts[gen]
	g.counts[gen]++
	if n == 0 {
		return gen.Name
	}
	return fmt.Sprintf("%s_%d", gen.Name, n)
}

// dedupKey returns the result-sharing cache key for call, and whether
// the call's parameter value supports one.
func dedupKey(call *circuit.GeneratorCall) (genKey, bool) {
	if call.Params == nil {
		return genKey{gen: call.Gen}, true
	}
	if !reflect.ValueOf(call.Params).Comparable() {
		return genKey{}, false
	}
	return genKey{gen: call.Gen, params: call.Params}, true
}
