package normalize

import "strconv"

// sizeOrder is the reference display order for apparel size labels. Lookup
// happens on the stripped, uppercased form of the label.
var sizeOrder = []string{
	"XXXS", "XXS", "XS", "S", "SM", "M", "MED", "L", "LG", "XL",
	"2XL", "3XL", "4XL", "5XL", "6XL", "OSFA", "OS",
}

// UnknownSizeRank is assigned to labels that match neither the reference
// table nor a trailing numeric token, so unknown sizes sort last. Ties are
// broken lexically by the caller.
const UnknownSizeRank = 1 << 20

// numericRankBase offsets numeric size ranks past the reference table while
// preserving relative numeric order.
const numericRankBase = 1000

// SizeSort ranks a size label for display ordering. Table labels rank by
// table index; labels with a trailing number (e.g. "Size 42") rank after the
// table, offset by the numeric value; anything else gets UnknownSizeRank.
func SizeSort(label string) int {
	key := stripAlnum(label)
	for i, s := range sizeOrder {
		if key == s {
			return i
		}
	}

	if n, ok := trailingNumber(label); ok {
		return numericRankBase + n
	}

	return UnknownSizeRank
}

// stripAlnum removes every non-alphanumeric character and uppercases the rest
func stripAlnum(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			out = append(out, c-'a'+'A')
		case c >= 'A' && c <= 'Z' || c >= '0' && c <= '9':
			out = append(out, c)
		}
	}
	return string(out)
}

// trailingNumber extracts a numeric token from the end of the label
func trailingNumber(s string) (int, bool) {
	end := len(s)
	for end > 0 && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	start := end
	for start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, false
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
