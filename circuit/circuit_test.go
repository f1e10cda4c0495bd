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

package circuit_test

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hdx-org/hdx/circuit"
)

func TestModuleAttributes(t *testing.T) {
	m := circuit.NewModule("adder")
	m.AddPort(circuit.NewPort("a", 4, circuit.Input))
	m.AddPort(circuit.NewPort("b", 4, circuit.Input))
	m.AddPort(circuit.NewPort("out", 4, circuit.Output))
	m.AddSignal(circuit.NewSignal("carry", 4))

	wantPorts := []string{"a", "b", "out"}
	if got := slices.Collect(m.Ports().Keys()); !slices.Equal(got, wantPorts) {
		t.Errorf("ports: got %v, want %v", got, wantPorts)
	}
	if got := slices.Collect(m.Signals().Keys()); !slices.Equal(got, []string{"carry"}) {
		t.Errorf("signals: got %v, want [carry]", got)
	}

	carry, ok := m.SignalByName("carry")
	if !ok {
		t.Fatalf("SignalByName(carry): not found")
	}
	if carry.Vis() != circuit.VisInternal {
		t.Errorf("carry visibility: got %s, want internal", carry.Vis())
	}
	a, ok := m.SignalByName("a")
	if !ok {
		t.Fatalf("SignalByName(a): not found")
	}
	if a.Vis() != circuit.VisPort || a.Dir() != circuit.Input {
		t.Errorf("port a: got %s %s, want port input", a.Vis(), a.Dir())
	}
	if _, ok := m.SignalByName("nope"); ok {
		t.Errorf("SignalByName(nope): found, want not found")
	}
}

func TestModuleNames(t *testing.T) {
	m := circuit.NewModule("top")
	m.AddPort(circuit.NewPort("clk", 1, circuit.Input))
	m.AddSignal(circuit.NewSignal("mid", 1))
	child := circuit.NewModule("child")
	m.NewInstance("u0", child)
	m.NewInstanceArray("bank", child, 4)
	m.NewBundleInstance("pwr", circuit.NewBundle("supplies"))

	want := map[string]bool{
		"clk": true, "mid": true, "u0": true, "bank": true, "pwr": true,
	}
	if diff := cmp.Diff(want, m.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestModuleOverwrite(t *testing.T) {
	m := circuit.NewModule("m")
	m.AddSignal(circuit.NewSignal("s", 1))
	wide := m.AddSignal(circuit.NewSignal("s", 8))

	if got := m.Signals().Size(); got != 1 {
		t.Fatalf("signals size: got %d, want 1", got)
	}
	s, _ := m.SignalByName("s")
	if s != wide {
		t.Errorf("SignalByName(s): got %v, want the redeclared signal", s)
	}
	if s.Width() != 8 {
		t.Errorf("width: got %d, want 8", s.Width())
	}
}

func TestAddPortForcesVisibility(t *testing.T) {
	m := circuit.NewModule("m")
	p := m.AddPort(circuit.NewSignal("io", 2))
	if p.Vis() != circuit.VisPort {
		t.Errorf("visibility: got %s, want port", p.Vis())
	}
	if p.Dir() != circuit.NoDir {
		t.Errorf("direction: got %s, want none", p.Dir())
	}
}

func TestNamespaceCapture(t *testing.T) {
	m := circuit.NewModule("m")
	if m.Namespace != "circuit_test" {
		t.Errorf("module namespace: got %q, want %q", m.Namespace, "circuit_test")
	}
	if got := m.QualifiedName(); got != "circuit_test.m" {
		t.Errorf("qualified name: got %q, want %q", got, "circuit_test.m")
	}
	g := circuit.NewGenerator("gen", func(any) (*circuit.Module, error) {
		return circuit.NewModule("inner"), nil
	})
	if g.Namespace != "circuit_test" {
		t.Errorf("generator namespace: got %q, want %q", g.Namespace, "circuit_test")
	}
}

func TestInstanceConnect(t *testing.T) {
	child := circuit.NewModule("child")
	child.AddPort(circuit.NewPort("in", 1, circuit.Input))
	child.AddPort(circuit.NewPort("out", 1, circuit.Output))

	m := circuit.NewModule("parent")
	in := m.AddPort(circuit.NewPort("in", 1, circuit.Input))
	mid := m.AddSignal(circuit.NewSignal("mid", 1))
	inst := m.NewInstance("u0", child).
		Connect("in", in).
		Connect("out", mid)

	if got := slices.Collect(inst.Conns().Keys()); !slices.Equal(got, []string{"in", "out"}) {
		t.Errorf("connection order: got %v, want [in out]", got)
	}
	// Reconnecting a port replaces the previous connection.
	other := m.AddSignal(circuit.NewSignal("other", 1))
	inst.Connect("out", other)
	conn, _ := inst.Conns().Load("out")
	if conn != circuit.Conn(other) {
		t.Errorf("reconnect: got %v, want %v", conn, other)
	}
	if got := inst.Conns().Size(); got != 2 {
		t.Errorf("connection count after reconnect: got %d, want 2", got)
	}
}

func TestElabStateTransition(t *testing.T) {
	m := circuit.NewModule("m")
	inst := m.NewInstance("u0", circuit.NewModule("child"))
	if got := inst.State(); got != circuit.Unvisited {
		t.Fatalf("initial state: got %s, want unvisited", got)
	}
	inst.MarkElaborated()
	if got := inst.State(); got != circuit.Elaborated {
		t.Errorf("state after mark: got %s, want elaborated", got)
	}
}

func TestModuleString(t *testing.T) {
	m := circuit.NewModule("inv")
	m.Namespace = "lib"
	m.AddPort(circuit.NewPort("in", 1, circuit.Input))
	m.AddPort(circuit.NewPort("out", 1, circuit.Output))
	m.AddSignal(circuit.NewSignal("mid", 2))

	want := `module lib.inv:
	ports: in[1], out[1]
	signals: mid[2]
`
	if got := m.String(); got != want {
		t.Errorf("String(): got:\n%s\nwant:\n%s", got, want)
	}
}
