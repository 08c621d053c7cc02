package inflect

import "strconv"

// Ordinalize appends the English ordinal suffix to an integer: 1 -> "1st",
// 22 -> "22nd", 113 -> "113th".
func Ordinalize(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}
	suffix := "th"
	switch abs % 100 {
	case 11, 12, 13:
		suffix = "th"
	default:
		switch abs % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.FormatInt(n, 10) + suffix
}

// Deordinalize strips a trailing English ordinal suffix, returning the bare
// integer string: "22nd" -> "22".
func Deordinalize(s string) string {
	if len(s) < 3 {
		return s
	}
	tail := s[len(s)-2:]
	switch tail {
	case "st", "nd", "rd", "th":
		return s[:len(s)-2]
	default:
		return s
	}
}
