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

package elab_test

import (
	"strings"
	"testing"

	"github.com/hdx-org/hdx/circuit"
	"github.com/hdx-org/hdx/elab"
	"github.com/pkg/errors"
)

type busParams struct {
	Width int
}

// busGen builds an anonymous module with one bus port of the given
// width; the generator pass is responsible for naming the result.
func busGen() *circuit.Generator {
	return circuit.NewGenerator("bus", func(params any) (*circuit.Module, error) {
		p := params.(busParams)
		m := circuit.NewModule("")
		m.AddPort(circuit.NewPort("b", p.Width, circuit.Inout))
		return m, nil
	})
}

func TestGeneratorTopLevel(t *testing.T) {
	got, err := elab.Elaborate(nil, busGen().Call(busParams{Width: 4}))
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "bus" {
		t.Errorf("generated module name: got %q, want %q", got.Name, "bus")
	}
	if got.Namespace != "elab_test" {
		t.Errorf("generated module namespace: got %q, want %q", got.Namespace, "elab_test")
	}
	b, ok := got.Ports().Load("b")
	if !ok || b.Width() != 4 {
		t.Errorf("generated port: got %v, want b[4]", b)
	}
}

func TestGeneratorCallsDeduplicate(t *testing.T) {
	gen := busGen()
	top := circuit.NewModule("top")
	top.NewInstance("u0", gen.Call(busParams{Width: 8}))
	top.NewInstance("u1", gen.Call(busParams{Width: 8}))
	top.NewInstance("u2", gen.Call(busParams{Width: 2}))

	if _, err := elab.Elaborate(nil, top); err != nil {
		t.Fatal(err)
	}
	u0, _ := top.Instances().Load("u0")
	u1, _ := top.Instances().Load("u1")
	u2, _ := top.Instances().Load("u2")

	// Equal parameter values share one generated module.
	if u0.Of != u1.Of {
		t.Errorf("equal generator calls: distinct modules %v and %v", u0.Of, u1.Of)
	}
	if u0.Of == u2.Of {
		t.Errorf("distinct generator calls: shared module %v", u0.Of)
	}

	m0 := u0.Of.(*circuit.Module)
	m2 := u2.Of.(*circuit.Module)
	if m0.Name == m2.Name {
		t.Errorf("distinct generated modules share name %q", m0.Name)
	}
	if m0.Name != "bus" || m2.Name != "bus_1" {
		t.Errorf("generated names: got %q and %q, want bus and bus_1", m0.Name, m2.Name)
	}
}

func TestGeneratorNested(t *testing.T) {
	inner := busGen()
	outer := circuit.NewGenerator("pair", func(params any) (*circuit.Module, error) {
		p := params.(busParams)
		m := circuit.NewModule("")
		m.NewInstance("lo", inner.Call(busParams{Width: p.Width}))
		m.NewInstance("hi", inner.Call(busParams{Width: p.Width}))
		return m, nil
	})

	got, err := elab.Elaborate(nil, outer.Call(busParams{Width: 4}))
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "pair" {
		t.Errorf("outer module name: got %q, want %q", got.Name, "pair")
	}
	lo, _ := got.Instances().Load("lo")
	hi, _ := got.Instances().Load("hi")
	if _, ok := lo.Of.(*circuit.Module); !ok {
		t.Fatalf("nested generator call not expanded: %T", lo.Of)
	}
	if lo.Of != hi.Of {
		t.Errorf("nested equal calls: distinct modules")
	}
}

func TestGeneratorSharedCallNode(t *testing.T) {
	call := busGen().Call(busParams{Width: 4})
	top := circuit.NewModule("top")
	top.NewInstance("u0", call)
	top.NewInstance("u1", call)

	if _, err := elab.Elaborate(nil, top); err != nil {
		t.Fatal(err)
	}
	if call.Result == nil {
		t.Fatal("call result not installed")
	}
	u0, _ := top.Instances().Load("u0")
	u1, _ := top.Instances().Load("u1")
	if u0.Of != circuit.Instantiable(call.Result) || u1.Of != circuit.Instantiable(call.Result) {
		t.Errorf("shared call: instances do not share the result module")
	}
}

func TestGeneratorErrors(t *testing.T) {
	failing := circuit.NewGenerator("failing", func(any) (*circuit.Module, error) {
		return nil, errors.New("bad recipe")
	})
	_, err := elab.Elaborate(nil, failing.Call(nil))
	if err == nil || !strings.Contains(err.Error(), "bad recipe") {
		t.Errorf("failing generator: got %v, want the generator error", err)
	}
	if err == nil || !strings.Contains(err.Error(), "failing") {
		t.Errorf("failing generator: error %q does not name the generator", err)
	}

	vanishing := circuit.NewGenerator("vanishing", func(any) (*circuit.Module, error) {
		return nil, nil
	})
	_, err = elab.Elaborate(nil, vanishing.Call(nil))
	if err == nil || !strings.Contains(err.Error(), "returned no module") {
		t.Errorf("nil-result generator: got %v, want a no-module error", err)
	}

	_, err = elab.Elaborate(nil, &circuit.GeneratorCall{})
	if !errors.Is(err, elab.ErrUnresolvedTarget) {
		t.Errorf("empty generator call: got %v, want ErrUnresolvedTarget", err)
	}
}

func TestGeneratorNonComparableParams(t *testing.T) {
	gen := circuit.NewGenerator("widths", func(params any) (*circuit.Module, error) {
		ws := params.([]int)
		m := circuit.NewModule("")
		for i, w := range ws {
			m.AddPort(circuit.NewPort("b"+string(rune('0'+i)), w, circuit.Inout))
		}
		return m, nil
	})
	top := circuit.NewModule("top")
	top.NewInstance("u0", gen.Call([]int{1, 2}))
	top.NewInstance("u1", gen.Call([]int{1, 2}))

	if _, err := elab.Elaborate(nil, top); err != nil {
		t.Fatal(err)
	}
	u0, _ := top.Instances().Load("u0")
	u1, _ := top.Instances().Load("u1")
	// Non-comparable parameters cannot key the sharing cache: each
	// call builds its own module, each uniquely named.
	if u0.Of == u1.Of {
		t.Errorf("non-comparable parameters: calls share a module")
	}
	m0 := u0.Of.(*circuit.Module)
	m1 := u1.Of.(*circuit.Module)
	if m0.Name == m1.Name {
		t.Errorf("non-comparable parameters: modules share name %q", m0.Name)
	}
}
