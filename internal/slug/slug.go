// Package slug derives canonical, identifier-safe slugs from human
// names. Workspace ids are slugs; collision probing lives in the store
// because it must share the insert transaction.
package slug

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Make lowercases ASCII alphanumerics and collapses runs of whitespace,
// '-', '_' and '.' into a single '-'. Input is NFKD-decomposed first so
// accented Latin letters contribute their base character. Anything else
// is dropped. A name with no alphanumeric content yields "".
func Make(name string) string {
	decomposed := norm.NFKD.String(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(decomposed))
	lastWasSeparator := true

	for _, ch := range decomposed {
		switch {
		case ch >= 'a' && ch <= 'z' || ch >= '0' && ch <= '9':
			b.WriteRune(ch)
			lastWasSeparator = false
		case ch >= 'A' && ch <= 'Z':
			b.WriteRune(ch + ('a' - 'A'))
			lastWasSeparator = false
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '-' || ch == '_' || ch == '.':
			if !lastWasSeparator && b.Len() > 0 {
				b.WriteByte('-')
				lastWasSeparator = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
