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

// Package wire serializes elaborated circuit graphs to a portable
// package format and deserializes them back.
//
// A [Package] is a named container of [Module] definitions in
// dependency order: every child module precedes every parent that
// instantiates it, so a consumer reading the module list front to
// back never encounters a reference to a module it has not yet seen.
// Foreign modules are carried in a separate ext_modules list and do
// not participate in that ordering.
//
// [Export] turns elaborated modules into a Package; [Import] is its
// inverse. [Encode] and [Decode] move Packages through JSON.
package wire

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// QualifiedName addresses a serialized module. The pair must be
// unique within a package.
type QualifiedName struct {
	// Domain scopes the name: the package name for modules defined in
	// the package, a reserved namespace for built-in primitives, and
	// blank for foreign modules.
	Domain string `json:"domain"`

	// Name of the module within its domain.
	Name string `json:"name"`
}

// String returns the dotted form of the name.
func (qn QualifiedName) String() string {
	if qn.Domain == "" {
		return qn.Name
	}
	return qn.Domain + "." + qn.Name
}

// Package is the top-level serialized container.
type Package struct {
	// Name of the package, also the domain of its modules.
	Name string `json:"name"`

	// Modules in dependency order: children before parents.
	Modules []*Module `json:"modules"`

	// ExtModules are the foreign modules the package's instances
	// reference.
	ExtModules []*ExternalModule `json:"ext_modules,omitempty"`
}

// Module is a serialized module definition.
type Module struct {
	Name      QualifiedName `json:"name"`
	Ports     []*Port       `json:"ports,omitempty"`
	Signals   []*Signal     `json:"signals,omitempty"`
	Instances []*Instance   `json:"instances,omitempty"`
}

// ExternalModule is a serialized foreign-module interface: a name and
// ports, no body.
type ExternalModule struct {
	Name  QualifiedName `json:"name"`
	Ports []*Port       `json:"ports,omitempty"`
}

// Signal is a named bus of the given bit-width.
type Signal struct {
	Name  string `json:"name"`
	Width int64  `json:"width"`
}

// Dir is a serialized port direction.
type Dir string

// The four port directions of the wire format.
const (
	DirInput  Dir = "INPUT"
	DirOutput Dir = "OUTPUT"
	DirInout  Dir = "INOUT"
	DirNone   Dir = "NONE"
)

// Port is a signal exposed on a module boundary.
type Port struct {
	Direction Dir     `json:"direction"`
	Signal    *Signal `json:"signal"`
}

// Reference points an instance at its module definition.
type Reference struct {
	QN QualifiedName `json:"qn"`
}

// Instance is a serialized module instantiation.
type Instance struct {
	Name        string                 `json:"name"`
	Module      Reference              `json:"module"`
	Parameters  map[string]*ParamValue `json:"parameters,omitempty"`
	Connections map[string]*Connection `json:"connections,omitempty"`
}

// ParamValue is an instance parameter value. Exactly one of its
// fields is set; the format has no opaque value representation.
type ParamValue struct {
	Integer *int64   `json:"integer,omitempty"`
	Double  *float64 `json:"double,omitempty"`
	Str     *string  `json:"string,omitempty"`
}

// Int returns an integer parameter value.
func Int(v int64) *ParamValue { return &ParamValue{Integer: &v} }

// Double returns a floating-point parameter value.
func Double(v float64) *ParamValue { return &ParamValue{Double: &v} }

// Str returns a string parameter value.
func Str(v string) *ParamValue { return &ParamValue{Str: &v} }

// Connection is a serialized connection expression. Exactly one of
// its fields is set.
type Connection struct {
	Sig    *Signal `json:"sig,omitempty"`
	Slice  *Slice  `json:"slice,omitempty"`
	Concat *Concat `json:"concat,omitempty"`
}

// Slice selects bits [bot, top) of a signal, referenced by name.
type Slice struct {
	Signal string `json:"signal"`
	Bot    int64  `json:"bot"`
	Top    int64  `json:"top"`
}

// Concat concatenates connection expressions. Parts nest without a
// format-imposed depth limit.
type Concat struct {
	Parts []*Connection `json:"parts"`
}

// Encode writes pkg to w as JSON.
func Encode(w io.Writer, pkg *Package) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(pkg), "encoding package")
}

// Decode reads a JSON package from r.
func Decode(r io.Reader) (*Package, error) {
	pkg := &Package{}
	if err := json.NewDecoder(r).Decode(pkg); err != nil {
		return nil, errors.Wrap(err, "decoding package")
	}
	return pkg, nil
}
