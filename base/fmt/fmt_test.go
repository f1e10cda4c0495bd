package fmt_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	hdxfmt "github.com/hdx-org/hdx/base/fmt"
)

func TestIndent(t *testing.T) {
	tests := []struct {
		skip int
		txt  string
		want string
	}{
		{
			txt: `
inverter
in: input[1]
`,
			want: `
	inverter
	in: input[1]
`,
		},
		{
			skip: 1,
			txt: `
module inverter:
nmos
pmos
`,
			want: `
module inverter:
	nmos
	pmos
`,
		},
	}
	for _, test := range tests {
		got := hdxfmt.IndentSkip(test.skip, strings.TrimLeft(test.txt, "\n"))
		want := strings.TrimLeft(test.want, "\n")
		if got != want {
			t.Errorf("got:\n%s\nbut want:\n%s\ndiff:\n%s", got, want, cmp.Diff(got, want))
		}
	}
}
