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
	"slices"

	"github.com/hdx-org/hdx/base/stringseq"
	"github.com/pkg/errors"
)

// Dir is the direction of a port.
type Dir uint8

const (
	// NoDir marks a signal without a declared direction.
	NoDir Dir = iota
	// Input marks a port driven from outside its module.
	Input
	// Output marks a port driven by its module.
	Output
	// Inout marks a bidirectional port.
	Inout
)

// String representation of the direction.
func (d Dir) String() string {
	switch d {
	case NoDir:
		return "none"
	case Input:
		return "input"
	case Output:
		return "output"
	case Inout:
		return "inout"
	}
	return fmt.Sprintf("Dir(%d)", uint8(d))
}

// Vis is the visibility of a signal within its module.
type Vis uint8

const (
	// VisInternal marks a signal private to its module.
	VisInternal Vis = iota
	// VisPort marks a signal exposed as a port of its module.
	VisPort
)

// String representation of the visibility.
func (v Vis) String() string {
	switch v {
	case VisInternal:
		return "internal"
	case VisPort:
		return "port"
	}
	return fmt.Sprintf("Vis(%d)", uint8(v))
}

type (
	// Conn is a connection expression, the value wired to an instance
	// port. Exactly three kinds exist: a whole [Signal], a [Slice] of
	// one, or a [Concat] of other expressions.
	Conn interface {
		fmt.Stringer

		// Width returns the bit-width of the expression.
		Width() int

		conn()
	}

	// Signal is a named wire bus of fixed bit-width, owned by a module.
	Signal struct {
		name  string
		width int
		vis   Vis
		dir   Dir
	}

	// Slice selects the half-open bit range [bot, top) of a signal.
	Slice struct {
		sig *Signal
		bot int
		top int
	}

	// Concat concatenates connection expressions into a wider one.
	Concat struct {
		parts []Conn
	}
)

var (
	_ Conn = (*Signal)(nil)
	_ Conn = (*Slice)(nil)
	_ Conn = (*Concat)(nil)
)

func (*Signal) conn() {}
func (*Slice) conn()  {}
func (*Concat) conn() {}

// NewSignal returns an internal signal with no direction.
// Width must be at least one bit.
func NewSignal(name string, width int) *Signal {
	return &Signal{name: name, width: width, vis: VisInternal, dir: NoDir}
}

// NewPort returns a signal with port visibility and direction dir.
// Width must be at least one bit.
func NewPort(name string, width int, dir Dir) *Signal {
	return &Signal{name: name, width: width, vis: VisPort, dir: dir}
}

// Name of the signal.
func (s *Signal) Name() string { return s.name }

// Width of the signal in bits.
func (s *Signal) Width() int { return s.width }

// Vis returns the signal visibility.
func (s *Signal) Vis() Vis { return s.vis }

// Dir returns the port direction. Internal signals report [NoDir].
func (s *Signal) Dir() Dir { return s.dir }

// String returns the signal name with its width.
func (s *Signal) String() string {
	return fmt.Sprintf("%s[%d]", s.name, s.width)
}

// NewSlice selects bits [bot, top) of signal sig. The bounds must
// satisfy 0 <= bot < top <= sig.Width().
func NewSlice(sig *Signal, bot, top int) (*Slice, error) {
	if bot < 0 || bot >= top || top > sig.width {
		return nil, errors.Errorf("invalid slice %s[%d:%d]: bounds must satisfy 0 <= bot < top <= %d", sig.name, bot, top, sig.width)
	}
	return &Slice{sig: sig, bot: bot, top: top}, nil
}

// Signal returns the sliced signal.
func (s *Slice) Signal() *Signal { return s.sig }

// Bot returns the inclusive lower bound of the slice.
func (s *Slice) Bot() int { return s.bot }

// Top returns the exclusive upper bound of the slice.
func (s *Slice) Top() int { return s.top }

// Width of the slice in bits.
func (s *Slice) Width() int { return s.top - s.bot }

// String returns the slice in index notation.
func (s *Slice) String() string {
	return fmt.Sprintf("%s[%d:%d]", s.sig.name, s.bot, s.top)
}

// NewConcat concatenates parts into a single connection expression.
// At least one part is required.
func NewConcat(parts ...Conn) (*Concat, error) {
	if len(parts) == 0 {
		return nil, errors.New("invalid concatenation: no parts")
	}
	return &Concat{parts: parts}, nil
}

// Parts returns the concatenated expressions in order.
func (c *Concat) Parts() []Conn { return c.parts }

// Width of the concatenation: the sum of the widths of its parts.
func (c *Concat) Width() int {
	width := 0
	for _, part := range c.parts {
		width += part.Width()
	}
	return width
}

// String returns the concatenation in brace notation.
func (c *Concat) String() string {
	return "{" + stringseq.JoinStringer(slices.Values(c.parts), ", ") + "}"
}
