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
	"reflect"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type (
	// Primitive is a built-in, technology-independent device
	// definition: an ideal transistor, resistor, capacitor, and the
	// like. A Primitive is not instantiated directly; calling it with
	// a parameter value yields an instantiable [PrimitiveCall].
	Primitive struct {
		// Name of the primitive, unique within the built-in catalog.
		Name string

		// Desc is a one-line description of the device.
		Desc string

		ports     []*Signal
		paramType reflect.Type
	}

	// PrimitiveCall pairs a [Primitive] with a concrete parameter
	// value. Calls with equal parameter values are interchangeable.
	PrimitiveCall struct {
		// Prim is the called primitive.
		Prim *Primitive

		// Params is a value of the primitive's parameter type.
		Params any
	}
)

var _ Instantiable = (*PrimitiveCall)(nil)

// Validator reports invalid parameter field values. Parameter structs
// implementing it are validated each time their primitive is called.
type Validator interface {
	Validate() error
}

// NewPrimitive defines a device with the given ports and a zero value
// of its parameter struct type. Every port must be named and declared
// with port visibility.
func NewPrimitive(name, desc string, ports []*Signal, params any) (*Primitive, error) {
	var errs error
	for i, port := range ports {
		if port.name == "" {
			errs = multierr.Append(errs, errors.Errorf("primitive %s: port %d has no name", name, i))
			continue
		}
		if port.vis != VisPort {
			errs = multierr.Append(errs, errors.Errorf("primitive %s: signal %s is not declared as a port", name, port.name))
		}
	}
	paramType := reflect.TypeOf(params)
	if paramType == nil || paramType.Kind() != reflect.Struct {
		errs = multierr.Append(errs, errors.Errorf("primitive %s: parameter type %T is not a struct", name, params))
	}
	if errs != nil {
		return nil, errs
	}
	return &Primitive{
		Name:      name,
		Desc:      desc,
		ports:     ports,
		paramType: paramType,
	}, nil
}

// Ports returns the primitive's port list in declaration order.
func (p *Primitive) Ports() []*Signal { return p.ports }

// ParamType returns the primitive's parameter struct type.
func (p *Primitive) ParamType() reflect.Type { return p.paramType }

// Call binds the primitive to a parameter value. The value must be of
// the primitive's exact parameter type; values implementing
// [Validator] are validated.
func (p *Primitive) Call(params any) (*PrimitiveCall, error) {
	if got := reflect.TypeOf(params); got != p.paramType {
		return nil, errors.Errorf("cannot call primitive %s with parameters of type %T: want %s", p.Name, params, p.paramType)
	}
	if v, ok := params.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, errors.Wrapf(err, "invalid parameters for primitive %s", p.Name)
		}
	}
	return &PrimitiveCall{Prim: p, Params: params}, nil
}

func (*PrimitiveCall) instantiable() {}

// Ports returns the called primitive's port list.
func (c *PrimitiveCall) Ports() []*Signal { return c.Prim.Ports() }

// String returns the primitive name with its parameter value.
func (c *PrimitiveCall) String() string {
	return fmt.Sprintf("%s(%+v)", c.Prim.Name, c.Params)
}
