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

// Context carries run-scoped settings shared by the passes of one
// elaboration. The zero value (and a nil pointer) is the default
// configuration.
type Context struct {
	// MaxNameLen caps the length of attribute names synthesized by
	// flattening passes. Zero means [MaxNameLen].
	MaxNameLen int
}

func (c *Context) maxNameLen() int {
	if c == nil || c.MaxNameLen == 0 {
		return MaxNameLen
	}
	return c.MaxNameLen
}
