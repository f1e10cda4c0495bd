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

import "fmt"

type (
	// Generator is a parameterized module builder: a function from a
	// parameter value to a [Module]. Generators defer hierarchy
	// construction until elaboration.
	Generator struct {
		// Name of the generator, used to name the modules it builds.
		Name string

		// Namespace the generator originates from, assigned to the
		// modules it builds. Defaults to the short package name of
		// the NewGenerator caller.
		Namespace string

		// Fn builds a module for a parameter value.
		Fn func(params any) (*Module, error)
	}

	// GeneratorCall pairs a [Generator] with a concrete parameter
	// value. Elaboration runs the generator and records the module it
	// built in Result.
	GeneratorCall struct {
		// Gen is the called generator.
		Gen *Generator

		// Params is the parameter value the generator is called with.
		Params any

		// Result is the module the generator built. It is nil until
		// elaboration expands the call.
		Result *Module
	}
)

var (
	_ Instantiable = (*GeneratorCall)(nil)
	_ Elabable     = (*GeneratorCall)(nil)
)

// NewGenerator returns a generator running fn. Its namespace is the
// short package name of the caller.
func NewGenerator(name string, fn func(params any) (*Module, error)) *Generator {
	return &Generator{
		Name:      name,
		Namespace: callerNamespace(),
		Fn:        fn,
	}
}

// Call binds the generator to a parameter value.
func (g *Generator) Call(params any) *GeneratorCall {
	return &GeneratorCall{Gen: g, Params: params}
}

// String returns the generator name.
func (g *Generator) String() string {
	return g.Namespace + "." + g.Name
}

func (*GeneratorCall) instantiable() {}

func (*GeneratorCall) elabable() {}

// String returns the generator call with its parameter value.
func (c *GeneratorCall) String() string {
	return fmt.Sprintf("%s(%+v)", c.Gen, c.Params)
}
