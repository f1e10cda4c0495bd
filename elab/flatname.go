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
	"strings"

	"github.com/pkg/errors"
)

// MaxNameLen is the default ceiling on synthesized attribute names,
// representative of identifier limits in downstream EDA formats.
const MaxNameLen = 511

// ErrNameTooLong reports that no collision-free name within the
// length limit could be synthesized.
var ErrNameTooLong = errors.New("no available name")

// Flatname merges segments into one attribute name of at most maxLen
// characters, avoiding every name in avoid. The segments are joined
// with underscores; whenever the candidate collides with avoid,
// another underscore is appended. Flattening passes use it to
// synthesize explicit attribute names from nested or implicit ones.
func Flatname(segments []string, avoid map[string]bool, maxLen int) (string, error) {
	name := strings.Join(segments, "_")
	for {
		if len(name) > maxLen {
			return "", errors.Wrapf(ErrNameTooLong, "flattening %q with limit %d", strings.Join(segments, "_"), maxLen)
		}
		if !avoid[name] {
			return name, nil
		}
		name += "_"
	}
}
