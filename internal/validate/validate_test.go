package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scene-hunter/scenehunter/internal/model"
)

func TestNameAccepted(t *testing.T) {
	for _, name := range []string{
		"Ann",
		"a",
		"player one", // interior whitespace is fine
		"やしこ",
		"Ann-Marie_3",
		strings.Repeat("x", 12),
		strings.Repeat("あ", 12), // 12 runes, more than 12 bytes
	} {
		assert.NoError(t, Name(name), "name %q should be accepted", name)
	}
}

func TestNameRejected(t *testing.T) {
	cases := []struct {
		name   string
		reason string
	}{
		{"", "empty"},
		{" Ann", "leading space"},
		{"\tAnn", "leading tab"},
		{strings.Repeat("x", 13), "too long"},
		{"<script>", "angle brackets"},
		{"a'b", "quote"},
		{`a"b`, "double quote"},
		{"a,b", "comma"},
		{"a;b", "semicolon"},
		{"a%b", "percent"},
		{"a(b)", "parens"},
		{"a&b", "ampersand"},
		{"a+b", "plus"},
		{`a\b`, "backslash"},
		{"Ann🎉", "emoji"},
		{"🇯🇵", "flag emoji"},
		{"a❤️", "heart with variation selector"},
	}
	for _, c := range cases {
		err := Name(c.name)
		require.Error(t, err, "name %q (%s) should be rejected", c.name, c.reason)
		assert.ErrorIs(t, err, model.ErrInvalidName)
	}
}

func TestNameLengthIsCountedInRunes(t *testing.T) {
	// 12 multibyte runes exceed 12 bytes but are still a valid name
	assert.NoError(t, Name(strings.Repeat("ね", 12)))
	assert.Error(t, Name(strings.Repeat("ね", 13)))
}

func TestRoomCodeInput(t *testing.T) {
	for _, code := range []string{"", "1", "123456", "000000"} {
		assert.NoError(t, RoomCodeInput(code), "code %q should be accepted", code)
	}
	for _, code := range []string{"12a45", "1234567", " 123", "12-3", "１２３"} {
		err := RoomCodeInput(code)
		require.Error(t, err, "code %q should be rejected", code)
		assert.ErrorIs(t, err, model.ErrInvalidRoomCode)
	}
}

func TestRoomCodeRequiresAtLeastOneDigit(t *testing.T) {
	assert.ErrorIs(t, RoomCode(""), model.ErrInvalidRoomCode)
	assert.NoError(t, RoomCode("42"))
	assert.NoError(t, RoomCode("123456"))
}
