package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Final_List", "Final_List"},
		{"My Order", "My_Order"},
		{"  Diwali 2025!  ", "Diwali_2025"},
		{"../../etc/passwd", "etc_passwd"},
		{`a\b:c*d?e"f<g>h|i`, "a_b_c_d_e_f_g_h_i"},
		{".hidden", "hidden"},
		{"v1.2-final", "v1.2-final"},
		{"Café Crème", "Café_Crème"},
		{"தீபாவளி", "தீபாவளி"},
		{"///", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), "SanitizeFilename(%q)", tt.in)
	}
}

func TestSanitizeFilename_NormalizesComposedForm(t *testing.T) {
	decomposed := "Cafe\u0301"
	assert.Equal(t, "Café", SanitizeFilename(decomposed))
}

func TestSanitizeFilename_Truncates(t *testing.T) {
	got := SanitizeFilename(strings.Repeat("x", 300))
	assert.Equal(t, strings.Repeat("x", maxFilenameBytes), got)

	// three bytes per rune; the cut must land on a rune boundary
	got = SanitizeFilename(strings.Repeat("தீ", 50))
	assert.LessOrEqual(t, len(got), maxFilenameBytes)
	assert.Greater(t, len(got), maxFilenameBytes-utf8.UTFMax)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasPrefix(strings.Repeat("தீ", 50), got))
}
