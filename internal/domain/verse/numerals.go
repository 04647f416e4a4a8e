package verse

import (
	"strconv"
	"strings"
)

var arabicIndicDigits = [10]rune{'٠', '١', '٢', '٣', '٤', '٥', '٦', '٧', '٨', '٩'}

// ArabicNumerals formats a verse number with Arabic-Indic digits.
// Returns an empty string for numbers <= 0.
func ArabicNumerals(n int) string {
	if n <= 0 {
		return ""
	}

	var b strings.Builder
	for _, d := range strconv.Itoa(n) {
		b.WriteRune(arabicIndicDigits[d-'0'])
	}
	return b.String()
}
