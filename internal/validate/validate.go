// Package validate holds the input validation predicates for player
// names and room codes. Validation always runs client-side before a
// value is sent to the server.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/scene-hunter/scenehunter/internal/model"
)

// MaxNameLength is the maximum player name length in runes
const MaxNameLength = 12

// forbiddenNameChars are rejected anywhere in a player name
const forbiddenNameChars = "<>'\",;%()&+\\"

// roomCodePattern accepts partial input while typing; a complete code
// additionally requires at least one digit.
var roomCodePattern = regexp.MustCompile(`^[0-9]{0,6}$`)

// emoji approximates the Extended_Pictographic property: the common
// emoji blocks plus the variation selector, ZWJ and regional
// indicators used in emoji sequences.
var emoji = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200D, Hi: 0x200D, Stride: 1}, // zero-width joiner
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1}, // misc symbols, dingbats
		{Lo: 0x2B00, Hi: 0x2BFF, Stride: 1}, // misc symbols and arrows
		{Lo: 0xFE0F, Hi: 0xFE0F, Stride: 1}, // variation selector-16
	},
	R32: []unicode.Range32{
		{Lo: 0x1F000, Hi: 0x1FAFF, Stride: 1}, // emoji, pictographs, flags
	},
}

// Name validates a player name for submission. It rejects forbidden
// characters, emoji, leading whitespace, empty names, and names longer
// than MaxNameLength runes.
func Name(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", model.ErrInvalidName)
	}
	if r, _ := utf8.DecodeRuneInString(name); unicode.IsSpace(r) {
		return fmt.Errorf("%w: leading whitespace", model.ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: longer than %d characters", model.ErrInvalidName, MaxNameLength)
	}
	if strings.ContainsAny(name, forbiddenNameChars) {
		return fmt.Errorf("%w: invalid characters", model.ErrInvalidName)
	}
	for _, r := range name {
		if unicode.Is(emoji, r) {
			return fmt.Errorf("%w: emoji are not allowed", model.ErrInvalidName)
		}
	}
	return nil
}

// RoomCodeInput validates partial room code input (as typed). Only
// strings matching ^[0-9]{0,6}$ are accepted.
func RoomCodeInput(code string) error {
	if !roomCodePattern.MatchString(code) {
		return fmt.Errorf("%w: digits only, at most 6", model.ErrInvalidRoomCode)
	}
	return nil
}

// RoomCode validates a complete room code: 1-6 digits.
func RoomCode(code string) error {
	if err := RoomCodeInput(code); err != nil {
		return err
	}
	if code == "" {
		return fmt.Errorf("%w: code is empty", model.ErrInvalidRoomCode)
	}
	return nil
}
