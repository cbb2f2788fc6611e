// Package numfmt parses upstream decimal strings and renders the three numeric
// conventions used in reports: grouped integers, signed deltas and percentages.
package numfmt

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Reports always group digits the en-US way (8,688,981,341).
var printer = message.NewPrinter(language.English)

// ParseDecimal parses s as a decimal number. Any malformed input yields 0.
func ParseDecimal(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// GroupedInteger rounds v to the nearest integer (half away from zero) and
// renders it with thousands separators.
func GroupedInteger(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	d := decimal.NewFromFloat(v).Round(0)
	if d.Abs().LessThanOrEqual(maxInt64) {
		return printer.Sprintf("%d", d.IntPart())
	}
	return groupDigits(d.String())
}

var maxInt64 = decimal.NewFromInt(math.MaxInt64)

// groupDigits inserts thousands separators into an integer string of any length.
func groupDigits(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}

// SignedDelta renders v with an explicit sign and precision decimals.
// Values that round to zero render with a plus sign, e.g. "+0" or "+0.00".
func SignedDelta(v float64, precision int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	d := decimal.NewFromFloat(v).Round(int32(precision))
	s := d.StringFixed(int32(precision))
	if d.Sign() >= 0 {
		return "+" + s
	}
	return s
}

// PercentWithDelta renders "53.21% (+1.11)", or "53.21% ( - )" when delta is nil.
func PercentWithDelta(current float64, delta *float64) string {
	if math.IsNaN(current) || math.IsInf(current, 0) {
		current = 0
	}
	pct := decimal.NewFromFloat(current).StringFixed(2) + "%"
	if delta == nil {
		return pct + " ( - )"
	}
	return pct + " (" + SignedDelta(*delta, 2) + ")"
}

// ParsePercent parses a fraction such as "0.5321" and scales it to a
// percentage (53.21). Malformed input yields 0.
func ParsePercent(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Shift(2).Float64()
	return f
}
