package shopping

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var leadingNumber = regexp.MustCompile(`^([0-9.]+)\s*(.*)$`)

// parseLeadingNumber interprets a free-form quantity string. The whole string
// is tried as a decimal number first; otherwise a leading run of digits and
// decimal points is split off and the trimmed tail returned as the remainder.
// Fraction notation ("1/2") is deliberately not treated as numeric: the value
// is preserved verbatim so it can degrade cleanly downstream.
func parseLeadingNumber(text string) (float64, string, bool) {
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return v, "", true
	}

	m := leadingNumber.FindStringSubmatch(text)
	if m == nil {
		return 0, text, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || strings.HasPrefix(m[2], "/") {
		return 0, text, false
	}
	return v, strings.TrimSpace(m[2]), true
}

// ScaleQuantity multiplies the numeric part of a quantity string by factor.
// Quantities that carry no leading number ("to taste", "適量") pass through
// unchanged, as does any quantity at factor 1.0.
func ScaleQuantity(quantity string, factor float64) string {
	if quantity == "" || factor == 1.0 {
		return quantity
	}

	v, rest, ok := parseLeadingNumber(quantity)
	if !ok {
		return quantity
	}

	scaled := formatAmount(v * factor)
	if rest == "" {
		return scaled
	}
	return scaled + " " + rest
}

// formatAmount renders whole numbers without a decimal point and everything
// else with exactly one decimal digit.
func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
