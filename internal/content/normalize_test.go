package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Normalize(t *testing.T) {
	for _, tc := range []struct {
		desc string
		in   string
		want string
	}{
		{
			desc: "strips wrapping quotes and converts escape sequences",
			in:   "\"Hello\\n\\n•World\"",
			want: "Hello\n\n•World",
		},
		{
			desc: "converts literal tabs",
			in:   `col1\tcol2`,
			want: "col1\tcol2",
		},
		{
			desc: "leaves clean input untouched",
			in:   "Just a post.\nSecond line.",
			want: "Just a post.\nSecond line.",
		},
		{
			desc: "strips whitespace around wrapping quotes",
			in:   "  \"padded\"  ",
			want: "padded",
		},
		{
			desc: "unquoted input keeps surrounding whitespace",
			in:   "  plain  ",
			want: "  plain  ",
		},
		{
			desc: "quoted trailing escape keeps its line break",
			in:   "\"Hi\\n\"",
			want: "Hi\n",
		},
		{
			desc: "empty input",
			in:   "",
			want: "",
		},
		{
			desc: "lone quote is not stripped",
			in:   `"`,
			want: `"`,
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			got := Normalize(tc.in)
			assert.Equal(t, tc.want, got)

			// normalization is idempotent
			assert.Equal(t, got, Normalize(got))
		})
	}
}
