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

package asap7

import (
	"github.com/hdx-org/hdx/pdk"
	"github.com/pkg/errors"
)

// Install is the site-specific ASAP7 installation data: the location
// of the kit's transistor model library.
type Install struct {
	// ModelLib is the path of the transistor model library.
	ModelLib string
}

var _ pdk.Installation = Install{}

// cornerSections maps process corners onto model library sections.
var cornerSections = map[pdk.Corner]string{
	pdk.Typical: "tt",
	pdk.Fast:    "ff",
	pdk.Slow:    "ss",
}

// Include implements [pdk.Installation].
func (inst Install) Include(corner pdk.Corner) (pdk.Lib, error) {
	section, ok := cornerSections[corner]
	if !ok {
		return pdk.Lib{}, errors.Errorf("invalid corner %s", corner)
	}
	return pdk.Lib{Path: inst.ModelLib, Section: section}, nil
}

// Register installs inst process-wide under the technology's PDK
// name.
func (inst Install) Register() {
	pdk.Register(Name, inst)
}
