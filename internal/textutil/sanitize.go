package textutil

import (
	"strings"
	"unicode"
)

// maxStemRunes bounds stems built from vibe names, which are free text.
const maxStemRunes = 64

// FileStem turns a vibe name into a file name stem. Path separators and
// drive-style colons become dashes, other reserved or control characters are
// dropped, and whitespace runs collapse to one space. Leading and trailing
// dots are trimmed so a name can never resolve to "." or "..". fallback is
// returned when nothing usable remains.
func FileStem(name, fallback string) string {
	var b strings.Builder
	b.Grow(len(name))
	space := false
	runes := 0
	for _, r := range name {
		if runes >= maxStemRunes {
			break
		}
		switch {
		case unicode.IsSpace(r):
			space = b.Len() > 0
			continue
		case r == '/' || r == '\\' || r == ':' || r == '*':
			r = '-'
		case strings.ContainsRune(`?"<>|`, r) || unicode.IsControl(r) || r == unicode.ReplacementChar:
			continue
		}
		if space {
			if runes+2 > maxStemRunes {
				break
			}
			b.WriteByte(' ')
			runes++
			space = false
		}
		b.WriteRune(r)
		runes++
	}

	stem := strings.Trim(b.String(), ". ")
	if stem == "" {
		return fallback
	}
	return stem
}
