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
	// Instantiable is the closed set of targets an [Instance] can
	// point at: *[Module], *[PrimitiveCall], *[ExternalModuleCall],
	// and *[GeneratorCall].
	Instantiable interface {
		fmt.Stringer

		instantiable()
	}

	// Elabable is the closed set of hierarchy roots elaboration
	// accepts: *[Module] and *[GeneratorCall].
	Elabable interface {
		fmt.Stringer

		elabable()
	}
)
