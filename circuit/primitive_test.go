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
	"strings"
	"testing"

	"github.com/hdx-org/hdx/base/ordered"
	"github.com/hdx-org/hdx/circuit"
)

type ampParams struct {
	Gain int
	Bias circuit.Opt[float64]
}

type badParams struct {
	Gain int
}

func (p badParams) Validate() error {
	if p.Gain <= 0 {
		return errGain
	}
	return nil
}

var errGain = errorString("gain must be positive")

type errorString string

func (e errorString) Error() string { return string(e) }

func TestNewPrimitive(t *testing.T) {
	ports := []*circuit.Signal{
		circuit.NewPort("inp", 1, circuit.Input),
		circuit.NewPort("out", 1, circuit.Output),
	}
	amp, err := circuit.NewPrimitive("Amp", "Ideal amplifier", ports, ampParams{})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(amp.Ports()); got != 2 {
		t.Errorf("ports: got %d, want 2", got)
	}
	if got := amp.ParamType().Name(); got != "ampParams" {
		t.Errorf("parameter type: got %s, want ampParams", got)
	}
}

func TestNewPrimitiveInvalid(t *testing.T) {
	tests := []struct {
		name   string
		ports  []*circuit.Signal
		params any
		want   []string
	}{
		{
			name:   "unnamed port",
			ports:  []*circuit.Signal{circuit.NewPort("", 1, circuit.Input)},
			params: ampParams{},
			want:   []string{"port 0 has no name"},
		},
		{
			name:   "internal signal as port",
			ports:  []*circuit.Signal{circuit.NewSignal("x", 1)},
			params: ampParams{},
			want:   []string{"signal x is not declared as a port"},
		},
		{
			name:   "non-struct parameters",
			ports:  []*circuit.Signal{circuit.NewPort("p", 1, circuit.Inout)},
			params: 42,
			want:   []string{"parameter type int is not a struct"},
		},
		{
			name: "all errors reported",
			ports: []*circuit.Signal{
				circuit.NewPort("", 1, circuit.Input),
				circuit.NewSignal("x", 1),
			},
			params: nil,
			want: []string{
				"port 0 has no name",
				"signal x is not declared as a port",
				"parameter type <nil> is not a struct",
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := circuit.NewPrimitive("Bad", "", test.ports, test.params)
			if err == nil {
				t.Fatalf("NewPrimitive: no error, want %v", test.want)
			}
			for _, want := range test.want {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err, want)
				}
			}
		})
	}
}

func TestPrimitiveCall(t *testing.T) {
	ports := []*circuit.Signal{circuit.NewPort("inp", 1, circuit.Input)}
	amp, err := circuit.NewPrimitive("Amp", "Ideal amplifier", ports, ampParams{})
	if err != nil {
		t.Fatal(err)
	}
	call, err := amp.Call(ampParams{Gain: 10, Bias: circuit.Some(0.5)})
	if err != nil {
		t.Fatal(err)
	}
	if call.Prim != amp {
		t.Errorf("call primitive: got %v, want %v", call.Prim, amp)
	}
	if got := len(call.Ports()); got != 1 {
		t.Errorf("call ports: got %d, want 1", got)
	}

	// Parameters of any other type are rejected.
	if _, err := amp.Call(badParams{Gain: 1}); err == nil {
		t.Errorf("Call with wrong parameter type: no error, want one")
	}
	if _, err := amp.Call(&ampParams{Gain: 1}); err == nil {
		t.Errorf("Call with pointer parameters: no error, want one")
	}
}

func TestPrimitiveCallValidates(t *testing.T) {
	ports := []*circuit.Signal{circuit.NewPort("inp", 1, circuit.Input)}
	prim, err := circuit.NewPrimitive("Checked", "", ports, badParams{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := prim.Call(badParams{Gain: 3}); err != nil {
		t.Errorf("Call with valid parameters: %v", err)
	}
	_, err = prim.Call(badParams{Gain: -1})
	if err == nil {
		t.Fatalf("Call with invalid parameters: no error, want one")
	}
	if !strings.Contains(err.Error(), "gain must be positive") {
		t.Errorf("error %q does not mention the validation failure", err)
	}
}

func TestExternalModule(t *testing.T) {
	ports := []*circuit.Signal{
		circuit.NewPort("d", 1, circuit.Inout),
		circuit.NewPort("g", 1, circuit.Inout),
	}
	ext, err := circuit.NewExternalModule("sky130", "sky130_fd_pr__nfet", "Foundry NFET", ports)
	if err != nil {
		t.Fatal(err)
	}
	if got := ext.String(); got != "sky130.sky130_fd_pr__nfet" {
		t.Errorf("String(): got %q", got)
	}

	params := ordered.NewMap[string, any]()
	params.Store("w", 420)
	params.Store("l", 150)
	call := ext.Call(params)
	if got := call.Params.Size(); got != 2 {
		t.Errorf("call parameters: got %d, want 2", got)
	}
	if got := len(call.Ports()); got != 2 {
		t.Errorf("call ports: got %d, want 2", got)
	}

	// A nil parameter map is an empty parameter list.
	empty := ext.Call(nil)
	if empty.Params == nil || empty.Params.Size() != 0 {
		t.Errorf("nil parameters: got %v, want an empty map", empty.Params)
	}
}

func TestExternalModuleInvalid(t *testing.T) {
	_, err := circuit.NewExternalModule("", "anon", "", []*circuit.Signal{
		circuit.NewSignal("x", 1),
	})
	if err == nil {
		t.Fatalf("NewExternalModule with internal signal: no error, want one")
	}
	if !strings.Contains(err.Error(), "not declared as a port") {
		t.Errorf("error %q does not mention port visibility", err)
	}
}
