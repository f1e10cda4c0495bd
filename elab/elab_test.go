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
	"github.com/hdx-org/hdx/circuit/circuittest"
	"github.com/hdx-org/hdx/elab"
	"github.com/pkg/errors"
)

// identity is a pass with every hook at its default.
type identity struct {
	elab.Base
}

func (identity) PassName() string { return "identity" }

// counting tallies Module hook invocations per module.
type counting struct {
	elab.Base

	seen map[*circuit.Module]int
}

func (*counting) PassName() string { return "counting" }

func (c *counting) Module(e *elab.Elaborator, m *circuit.Module) (*circuit.Module, error) {
	c.seen[m]++
	return m, nil
}

func TestModuleHookRunsOncePerModule(t *testing.T) {
	top, leaf := circuittest.Diamond()
	pass := &counting{seen: make(map[*circuit.Module]int)}
	got, err := elab.Run(nil, pass, top)
	if err != nil {
		t.Fatal(err)
	}
	if got != top {
		t.Errorf("Run: got %v, want the top module", got)
	}
	if len(pass.seen) != 4 {
		t.Errorf("distinct modules visited: got %d, want 4", len(pass.seen))
	}
	for m, n := range pass.seen {
		if n != 1 {
			t.Errorf("module %s visited %d times, want 1", m.Name, n)
		}
	}
	if pass.seen[leaf] != 1 {
		t.Errorf("leaf visited %d times, want 1", pass.seen[leaf])
	}
}

func TestRunAllSharesOneCache(t *testing.T) {
	top, leaf := circuittest.Diamond()
	pass := &counting{seen: make(map[*circuit.Module]int)}
	ms, err := elab.RunAll(nil, pass, []circuit.Elabable{top, leaf, top})
	if err != nil {
		t.Fatal(err)
	}
	want := []*circuit.Module{top, leaf, top}
	for i, m := range ms {
		if m != want[i] {
			t.Errorf("result %d: got %v, want %v", i, m, want[i])
		}
	}
	for m, n := range pass.seen {
		if n != 1 {
			t.Errorf("module %s visited %d times, want 1", m.Name, n)
		}
	}
}

func TestEmptyModuleElaboratesToItself(t *testing.T) {
	m := circuit.NewModule("lone")
	got, err := elab.Run(nil, identity{}, m)
	if err != nil {
		t.Fatal(err)
	}
	if got != m {
		t.Errorf("Run: got %v, want the module itself", got)
	}
}

func TestAnonymousModuleFails(t *testing.T) {
	_, err := elab.Run(nil, identity{}, circuit.NewModule(""))
	if !errors.Is(err, elab.ErrAnonymousModule) {
		t.Fatalf("Run on anonymous module: got %v, want ErrAnonymousModule", err)
	}

	// The same failure surfaces when the anonymous module is nested.
	top := circuit.NewModule("top")
	top.NewInstance("u0", circuit.NewModule(""))
	_, err = elab.Run(nil, identity{}, top)
	if !errors.Is(err, elab.ErrAnonymousModule) {
		t.Fatalf("Run with nested anonymous module: got %v, want ErrAnonymousModule", err)
	}
	if !strings.Contains(err.Error(), "instance u0 of module top") {
		t.Errorf("error %q does not locate the failing instance", err)
	}
}

func TestInvalidTop(t *testing.T) {
	if _, err := elab.Run(nil, identity{}, nil); !errors.Is(err, elab.ErrInvalidTop) {
		t.Errorf("Run(nil top): got %v, want ErrInvalidTop", err)
	}
	if _, err := elab.Run(nil, identity{}, (*circuit.Module)(nil)); !errors.Is(err, elab.ErrInvalidTop) {
		t.Errorf("Run(nil module): got %v, want ErrInvalidTop", err)
	}
	if _, err := elab.Elaborate(nil, nil); !errors.Is(err, elab.ErrInvalidTop) {
		t.Errorf("Elaborate(nil top): got %v, want ErrInvalidTop", err)
	}
}

func TestUnresolvedTargetFails(t *testing.T) {
	top := circuit.NewModule("top")
	top.NewInstance("u0", nil)
	_, err := elab.Run(nil, identity{}, top)
	if !errors.Is(err, elab.ErrUnresolvedTarget) {
		t.Fatalf("Run with nil target: got %v, want ErrUnresolvedTarget", err)
	}
}

func TestGeneratorCallRejectedOutsideGeneratorPass(t *testing.T) {
	gen := circuit.NewGenerator("gen", func(any) (*circuit.Module, error) {
		return circuit.NewModule("made"), nil
	})
	top := circuit.NewModule("top")
	top.NewInstance("u0", gen.Call(nil))

	_, err := elab.Run(nil, identity{}, top)
	if !errors.Is(err, elab.ErrGeneratorCall) {
		t.Fatalf("Run with generator call: got %v, want ErrGeneratorCall", err)
	}
	if !strings.Contains(err.Error(), "identity") {
		t.Errorf("error %q does not name the offending pass", err)
	}
}

func TestElaborationMarksNodes(t *testing.T) {
	child := circuit.NewModule("child")
	top := circuit.NewModule("top")
	inst := top.NewInstance("u0", child)
	arr := top.NewInstanceArray("bank", child, 2)
	bi := top.NewBundleInstance("pwr", circuit.NewBundle("supplies"))

	if _, err := elab.Run(nil, identity{}, top); err != nil {
		t.Fatal(err)
	}
	for name, state := range map[string]circuit.ElabState{
		"instance":        inst.State(),
		"array":           arr.State(),
		"bundle instance": bi.State(),
	} {
		if state != circuit.Elaborated {
			t.Errorf("%s state: got %s, want elaborated", name, state)
		}
	}
}

// swapLeaf replaces a designated module with another wherever it is
// instantiated, exercising the hook write-back contract.
type swapLeaf struct {
	elab.Base

	from, to *circuit.Module
}

func (*swapLeaf) PassName() string { return "swap-leaf" }

func (s *swapLeaf) Module(e *elab.Elaborator, m *circuit.Module) (*circuit.Module, error) {
	if m == s.from {
		return s.to, nil
	}
	return m, nil
}

func TestHookResultReplacesInstanceTarget(t *testing.T) {
	top, leaf := circuittest.Diamond()
	swapped := circuit.NewModule("swapped")
	pass := &swapLeaf{from: leaf, to: swapped}
	if _, err := elab.Run(nil, pass, top); err != nil {
		t.Fatal(err)
	}
	u0, _ := top.Instances().Load("u0")
	left := u0.Of.(*circuit.Module)
	got, _ := left.Instances().Load("u0")
	if got.Of != circuit.Instantiable(swapped) {
		t.Errorf("left.u0 target: got %v, want the swapped module", got.Of)
	}
}
