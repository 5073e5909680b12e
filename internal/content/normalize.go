package content

import "strings"

// Normalize cleans up escaping artifacts the text model tends to leave
// in its output: literal backslash-n / backslash-t sequences become real
// line breaks and tabs, and one pair of wrapping double quotes is
// stripped along with any whitespace around it. Unquoted input keeps its
// surrounding whitespace, so renormalizing output that legitimately ends
// in a line break is a no-op.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")

	if t := strings.TrimSpace(s); len(t) >= 2 && t[0] == '"' && t[len(t)-1] == '"' {
		s = t[1 : len(t)-1]
	}

	return s
}
