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
	"github.com/hdx-org/hdx/base/iter"
	"github.com/hdx-org/hdx/circuit"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// checks validates the fully-resolved graph: every signal has a
// positive width, every connection names a port its target declares,
// and connection widths match port widths. All violations within a
// module are reported together.
type checks struct {
	Base
}

// PassName identifies the pass in error reports.
func (checks) PassName() string { return "connection-checks" }

// Module validates m's signals and instance connections.
func (checks) Module(e *Elaborator, m *circuit.Module) (*circuit.Module, error) {
	var errs error
	for s := range iter.All(m.Ports().Values(), m.Signals().Values()) {
		if s.Width() < 1 {
			errs = multierr.Append(errs, errors.Errorf("signal %s has invalid width %d", s.Name(), s.Width()))
		}
	}
	for inst := range m.Instances().Values() {
		for port, conn := range inst.Conns().Iter() {
			width, ok := portWidth(inst.Of, port)
			if !ok {
				errs = multierr.Append(errs, errors.Errorf("instance %s connects port %q, not declared by %s", inst.Name, port, inst.Of))
				continue
			}
			if conn.Width() != width {
				errs = multierr.Append(errs, errors.Errorf("instance %s connects %s of width %d to port %q of width %d", inst.Name, conn, conn.Width(), port, width))
			}
		}
	}
	if errs != nil {
		return nil, errs
	}
	return m, nil
}
