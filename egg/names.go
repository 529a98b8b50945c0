package egg

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// SafeName makes name usable as an egg identifier: quotes become
// underscores and names containing whitespace or block delimiters are quoted.
func SafeName(name string) string {
	name = strings.ReplaceAll(name, `"`, "_")
	if strings.IndexFunc(name, needsQuote) >= 0 {
		return `"` + name + `"`
	}
	return name
}

func needsQuote(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune("{}<>", r)
}

// FixName removes whitespace from joint and group names.
func FixName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
}

// Float formats with six decimals.
func Float(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', 6, 32)
}

// SafeFloat is Float with NaN and infinities written as zero.
func SafeFloat(f float32) string {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return Float(0)
	}
	return Float(f)
}

func indent(level int) string {
	return strings.Repeat("  ", level)
}
