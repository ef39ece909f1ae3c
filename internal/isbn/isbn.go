package isbn

import (
	"strconv"
	"strings"
)

// Clean strips separators and whitespace and upper-cases a trailing X.
// Returns an empty string if anything other than digits (and a final X)
// remains.
func Clean(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		switch {
		case r >= '0' && r <= '9', r == 'X':
			b.WriteRune(r)
		case r == '-', r == ' ', r == '\t':
		default:
			return ""
		}
	}
	s := b.String()
	if i := strings.IndexByte(s, 'X'); i >= 0 && i != len(s)-1 {
		return ""
	}
	return s
}

// Valid10 reports whether s is an ISBN-10 with a correct check digit.
func Valid10(s string) bool {
	if len(s) != 10 {
		return false
	}
	sum := 0
	for i, c := range s {
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c == 'X' && i == 9:
			d = 10
		default:
			return false
		}
		sum += d * (10 - i)
	}
	return sum%11 == 0
}

// To13 converts an ISBN-10 to ISBN-13 by prepending 978 and computing the check digit.
// Returns an empty string if the input is not a valid ISBN-10.
func To13(isbn10 string) string {
	if !Valid10(isbn10) {
		return ""
	}
	base := "978" + isbn10[:9]
	sum := 0
	for i, c := range base {
		d, err := strconv.Atoi(string(c))
		if err != nil {
			return ""
		}
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	check := (10 - sum%10) % 10
	return base + strconv.Itoa(check)
}
