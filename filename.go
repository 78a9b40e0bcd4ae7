package main

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// maxFilenameBytes leaves room within the usual 255-byte name limit for the
// ".pdf" extension and the temp file prefix and suffix used while writing.
const maxFilenameBytes = 200

// SanitizeFilename turns a free-text title into a file name without
// directory separators, reserved characters or a leading dot. The result may
// be empty when nothing usable is left.
func SanitizeFilename(title string) string {
	var b strings.Builder
	underscore := false
	for _, r := range norm.NFC.String(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r), r == '-', r == '.':
			underscore = false
		default:
			if underscore {
				continue
			}
			r = '_'
			underscore = true
		}
		if b.Len()+utf8.RuneLen(r) > maxFilenameBytes {
			break
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "._")
}
