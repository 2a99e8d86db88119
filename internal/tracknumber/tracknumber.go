// Package tracknumber implements the TrackNumbering display formats and the
// heuristic filename-based track number parser, ported from
// original_source/src/track_numbering.rs and heuristic_audio_meta.rs. These
// features are not named explicitly in spec.md's distillation but are
// exercised by it (§8 scenario 6: "roman-dotted") and are supplemented here
// per SPEC_FULL.md.
package tracknumber

import "fmt"

// Numbering is the display style for a track's ordinal.
type Numbering int

const (
	Arabic Numbering = iota
	ArabicDotted
	ArabicPadded
	Disabled
	Hexadecimal
	HexadecimalPadded
	Roman
	RomanDotted
)

// FromManifestKey maps a track_numbering manifest value to a Numbering.
func FromManifestKey(key string) (Numbering, bool) {
	switch key {
	case "arabic":
		return Arabic, true
	case "arabic-dotted":
		return ArabicDotted, true
	case "arabic-padded":
		return ArabicPadded, true
	case "disabled":
		return Disabled, true
	case "hexadecimal":
		return Hexadecimal, true
	case "hexadecimal-padded":
		return HexadecimalPadded, true
	case "roman":
		return Roman, true
	case "roman-dotted":
		return RomanDotted, true
	default:
		return 0, false
	}
}

// Format renders number according to the numbering style.
func (n Numbering) Format(number int) string {
	switch n {
	case Arabic:
		return fmt.Sprintf("%d", number)
	case ArabicDotted:
		return fmt.Sprintf("%d.", number)
	case ArabicPadded:
		return fmt.Sprintf("%02d", number)
	case Disabled:
		return ""
	case Hexadecimal:
		return fmt.Sprintf("0x%X", number)
	case HexadecimalPadded:
		return fmt.Sprintf("0x%02X", number)
	case Roman:
		return toRoman(number)
	case RomanDotted:
		return toRoman(number) + "."
	default:
		return fmt.Sprintf("%d", number)
	}
}

// toRoman converts a number in the range 1-3999 to a "modern style" roman
// numeral (subtractive notation), matching track_numbering.rs::to_roman.
func toRoman(number int) string {
	thousands := [...]string{"", "M", "MM", "MMM"}
	hundreds := [...]string{"", "C", "CC", "CCC", "CD", "D", "DC", "DCC", "DCCC", "CM"}
	tens := [...]string{"", "X", "XX", "XXX", "XL", "L", "LX", "LXX", "LXXX", "XC"}
	ones := [...]string{"", "I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX"}

	if number < 0 || number > 3999 {
		panic("modern style roman numerals can only represent numbers up to 3999")
	}

	return thousands[number/1000] + hundreds[(number%1000)/100] + tens[(number%100)/10] + ones[number%10]
}
