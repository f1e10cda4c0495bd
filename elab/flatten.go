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
	"slices"
	"strconv"

	"github.com/hdx-org/hdx/circuit"
	"github.com/pkg/errors"
)

// flatten replaces every instance array with scalar instances, one
// per replica, named with [Flatname] from the array name and the
// replica index. Replicas are appended in array order, after the
// module's existing instances.
//
// A connection whose width equals the target port's width is shared
// by every replica; a connection N times as wide is dealt out, each
// replica receiving its own slice. Any other width is an error.
type flatten struct {
	Base
}

// PassName identifies the pass in error reports.
func (flatten) PassName() string { return "flatten-arrays" }

// Module flattens m's instance arrays. It runs after m's children
// have been elaborated, so every array target is fully resolved.
func (f flatten) Module(e *Elaborator, m *circuit.Module) (*circuit.Module, error) {
	names := slices.Collect(m.Arrays().Keys())
	if len(names) == 0 {
		return m, nil
	}
	avoid := m.Names()
	for _, name := range names {
		arr, _ := m.Arrays().Load(name)
		if err := f.flattenArray(e, m, arr, avoid); err != nil {
			return nil, errors.Wrapf(err, "flattening array %s", arr.Name)
		}
		m.Arrays().Delete(name)
	}
	return m, nil
}

func (f flatten) flattenArray(e *Elaborator, m *circuit.Module, arr *circuit.InstanceArray, avoid map[string]bool) error {
	for i := range arr.N {
		name, err := Flatname([]string{arr.Name, strconv.Itoa(i)}, avoid, e.Ctx().maxNameLen())
		if err != nil {
			return err
		}
		avoid[name] = true
		inst := m.NewInstance(name, arr.Of)
		inst.MarkElaborated()
		for port, conn := range arr.Conns().Iter() {
			dealt, err := dealConn(arr, port, conn, i)
			if err != nil {
				return err
			}
			inst.Connect(port, dealt)
		}
	}
	return nil
}

// dealConn returns replica i's share of the array connection to port.
func dealConn(arr *circuit.InstanceArray, port string, conn circuit.Conn, i int) (circuit.Conn, error) {
	width, ok := portWidth(arr.Of, port)
	if !ok {
		return nil, errors.Errorf("no port %q on %s", port, arr.Of)
	}
	switch conn.Width() {
	case width:
		// One port-width connection is shared by every replica.
		return conn, nil
	case width * arr.N:
		return replicaSlice(conn, i*width, (i+1)*width)
	}
	return nil, errors.Errorf("connection %s of width %d does not fit port %q of width %d on %d replicas", conn, conn.Width(), port, width, arr.N)
}

// replicaSlice carves bits [bot, top) out of an array connection.
func replicaSlice(conn circuit.Conn, bot, top int) (circuit.Conn, error) {
	switch c := conn.(type) {
	case *circuit.Signal:
		return circuit.NewSlice(c, bot, top)
	case *circuit.Slice:
		return circuit.NewSlice(c.Signal(), c.Bot()+bot, c.Bot()+top)
	case *circuit.Concat:
		return nil, errors.Errorf("cannot deal concatenation %s out to array replicas", c)
	}
	return nil, errors.Errorf("invalid connection %T", conn)
}

// portWidth resolves the width of the named port on an elaborated
// instance target.
func portWidth(of circuit.Instantiable, port string) (int, bool) {
	switch t := of.(type) {
	case *circuit.Module:
		s, ok := t.Ports().Load(port)
		if !ok {
			return 0, false
		}
		return s.Width(), true
	case *circuit.PrimitiveCall:
		return portListWidth(t.Ports(), port)
	case *circuit.ExternalModuleCall:
		return portListWidth(t.Ports(), port)
	}
	return 0, false
}

func portListWidth(ports []*circuit.Signal, port string) (int, bool) {
	for _, p := range ports {
		if p.Name() == port {
			return p.Width(), true
		}
	}
	return 0, false
}
