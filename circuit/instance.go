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

package circuit

import (
	"fmt"

	"github.com/hdx-org/hdx/base/ordered"
)

// ElabState is the elaboration lifecycle state of an instance-like node.
type ElabState uint8

const (
	// Unvisited marks a node elaboration has not reached yet.
	Unvisited ElabState = iota
	// Elaborated marks a node elaboration is done with.
	Elaborated
)

// String representation of the state.
func (s ElabState) String() string {
	switch s {
	case Unvisited:
		return "unvisited"
	case Elaborated:
		return "elaborated"
	}
	return fmt.Sprintf("ElabState(%d)", uint8(s))
}

// elabState equips a node with a one-way Unvisited to Elaborated
// transition.
type elabState struct {
	state ElabState
}

// State returns the node's elaboration state.
func (s *elabState) State() ElabState { return s.state }

// MarkElaborated transitions the node to [Elaborated]. The transition
// is one-way: there is no way back to [Unvisited].
func (s *elabState) MarkElaborated() { s.state = Elaborated }

type (
	// Instance is a named use of an [Instantiable] target within a
	// parent module.
	Instance struct {
		elabState

		// Name of the instance within its parent module.
		Name string

		// Of is the instantiated target. Elaboration passes may
		// replace it, e.g. with the module a generator call produced.
		Of Instantiable

		conns *ordered.Map[string, Conn]
	}

	// InstanceArray is an N-fold replicated instance. The standard
	// elaboration pipeline flattens arrays into scalar instances.
	InstanceArray struct {
		elabState

		// Name of the array within its parent module.
		Name string

		// Of is the instantiated target, shared by all replicas.
		Of Instantiable

		// N is the number of replicas.
		N int

		conns *ordered.Map[string, Conn]
	}

	// Bundle is a named group of signals, an authoring-time shorthand
	// for wiring several signals at once.
	Bundle struct {
		// Name of the bundle definition.
		Name string

		signals *ordered.Map[string, *Signal]
	}

	// BundleInstance is a named use of a [Bundle] within a module.
	// Bundle instances have no serialized form: the exporter rejects
	// modules still carrying them.
	BundleInstance struct {
		elabState

		// Name of the bundle instance within its parent module.
		Name string

		// Of is the instantiated bundle.
		Of *Bundle
	}
)

// Connect wires connection expression to port name of the instance,
// replacing any previous connection of that port. It returns the
// instance so calls can be chained.
func (inst *Instance) Connect(port string, to Conn) *Instance {
	inst.conns.Store(port, to)
	return inst
}

// Conns returns the instance connections in the order they were made.
func (inst *Instance) Conns() *ordered.Map[string, Conn] { return inst.conns }

// String returns the instance name and its target.
func (inst *Instance) String() string {
	return fmt.Sprintf("%s of %s", inst.Name, inst.Of)
}

// Connect wires connection expression to port name on every replica of
// the array, replacing any previous connection of that port. It
// returns the array so calls can be chained.
func (arr *InstanceArray) Connect(port string, to Conn) *InstanceArray {
	arr.conns.Store(port, to)
	return arr
}

// Conns returns the array connections in the order they were made.
func (arr *InstanceArray) Conns() *ordered.Map[string, Conn] { return arr.conns }

// String returns the array name, size, and target.
func (arr *InstanceArray) String() string {
	return fmt.Sprintf("%s[%d] of %s", arr.Name, arr.N, arr.Of)
}

// NewBundle returns a new empty bundle definition.
func NewBundle(name string) *Bundle {
	return &Bundle{
		Name:    name,
		signals: ordered.NewMap[string, *Signal](),
	}
}

// AddSignal declares a signal of the bundle and returns it.
func (b *Bundle) AddSignal(s *Signal) *Signal {
	b.signals.Store(s.name, s)
	return s
}

// Signals returns the bundle signals in declaration order.
func (b *Bundle) Signals() *ordered.Map[string, *Signal] { return b.signals }

// String returns the bundle instance name and its bundle.
func (bi *BundleInstance) String() string {
	return fmt.Sprintf("%s of bundle %s", bi.Name, bi.Of.Name)
}
