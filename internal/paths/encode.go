package paths

import (
	"fmt"
	"strings"
	"unicode"
)

// CaretEncode maps an arbitrary locator string to a filesystem-safe
// directory name. Letters, digits, and the punctuation in -_`{}.~ pass
// through unchanged; every other character becomes a caret escape whose
// width class depends on the codepoint magnitude. The mapping is stable
// across runs, which is what makes cache entries reusable.
func CaretEncode(locator string) string {
	var b strings.Builder
	b.Grow(len(locator))

	for _, r := range locator {
		if isSafeRune(r) {
			b.WriteRune(r)
			continue
		}

		switch {
		case r <= 0xFF:
			fmt.Fprintf(&b, "^%02X", r)
		case r <= 0xFFF:
			fmt.Fprintf(&b, "^g%03X", r)
		case r <= 0xFFFF:
			fmt.Fprintf(&b, "^h%04X", r)
		case r <= 0xFFFFF:
			fmt.Fprintf(&b, "^i%05X", r)
		default:
			fmt.Fprintf(&b, "^j%06X", r)
		}
	}

	return b.String()
}

func isSafeRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return strings.ContainsRune("-_`{}.~", r)
}
