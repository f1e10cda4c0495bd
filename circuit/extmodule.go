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
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type (
	// ExternalModule is a module defined outside the IR: a foundry
	// cell, a verified macro, or any black box with a known port
	// interface and no body.
	ExternalModule struct {
		// Domain names the technology or library the module belongs
		// to. It is informational and may be empty.
		Domain string

		// Name of the module within its domain.
		Name string

		// Desc is a one-line description of the module.
		Desc string

		ports []*Signal
	}

	// ExternalModuleCall pairs an [ExternalModule] with parameter
	// values. External parameters are schemaless name-value pairs:
	// the defining technology, not the IR, knows their meaning.
	ExternalModuleCall struct {
		// Mod is the called external module.
		Mod *ExternalModule

		// Params are the call's parameter values in declaration order.
		Params *ordered.Map[string, any]
	}
)

var _ Instantiable = (*ExternalModuleCall)(nil)

// NewExternalModule declares a foreign module with the given port
// interface. Every port must be named and declared with port
// visibility.
func NewExternalModule(domain, name, desc string, ports []*Signal) (*ExternalModule, error) {
	var errs error
	for i, port := range ports {
		if port.name == "" {
			errs = multierr.Append(errs, errors.Errorf("external module %s: port %d has no name", name, i))
			continue
		}
		if port.vis != VisPort {
			errs = multierr.Append(errs, errors.Errorf("external module %s: signal %s is not declared as a port", name, port.name))
		}
	}
	if errs != nil {
		return nil, errs
	}
	return &ExternalModule{
		Domain: domain,
		Name:   name,
		Desc:   desc,
		ports:  ports,
	}, nil
}

// Ports returns the external module's port list in declaration order.
func (e *ExternalModule) Ports() []*Signal { return e.ports }

// String returns the external module name qualified by its domain.
func (e *ExternalModule) String() string {
	if e.Domain == "" {
		return e.Name
	}
	return e.Domain + "." + e.Name
}

// Call binds the external module to parameter values. A nil params is
// treated as an empty parameter list.
func (e *ExternalModule) Call(params *ordered.Map[string, any]) *ExternalModuleCall {
	if params == nil {
		params = ordered.NewMap[string, any]()
	}
	return &ExternalModuleCall{Mod: e, Params: params}
}

func (*ExternalModuleCall) instantiable() {}

// Ports returns the called module's port list.
func (c *ExternalModuleCall) Ports() []*Signal { return c.Mod.Ports() }

// String returns the called module name with its parameter count.
func (c *ExternalModuleCall) String() string {
	return fmt.Sprintf("%s(%d params)", c.Mod, c.Params.Size())
}
