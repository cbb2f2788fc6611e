package numfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"88637.56900000", 88637.569},
		{"0.5321", 0.5321},
		{"-12.5", -12.5},
		{"", 0},
		{"n/a", 0},
		{"1.2.3", 0},
		{"NaN", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseDecimal(tt.in), "ParseDecimal(%q)", tt.in)
	}
}

func TestGroupedInteger(t *testing.T) {
	assert.Equal(t, "8,688,981,341", GroupedInteger(8688981341.4458))
	assert.Equal(t, "88,638", GroupedInteger(88637.569))
	assert.Equal(t, "999", GroupedInteger(999.4))
	assert.Equal(t, "1,000", GroupedInteger(999.5))
	assert.Equal(t, "0", GroupedInteger(0))
	assert.Equal(t, "-1,235", GroupedInteger(-1234.5))
	assert.Equal(t, "100,000,000,000,000,000,000", GroupedInteger(1e20))
	assert.Equal(t, "-10,000,000,000,000,000,000", GroupedInteger(-1e19))
}

func TestSignedDelta(t *testing.T) {
	assert.Equal(t, "+0", SignedDelta(0, 0))
	assert.Equal(t, "+0.00", SignedDelta(0, 2))
	assert.Equal(t, "+0.00", SignedDelta(-0.001, 2))
	assert.Equal(t, "+37.57", SignedDelta(37.569, 2))
	assert.Equal(t, "-12.50", SignedDelta(-12.5, 2))
	assert.Equal(t, "+8981341", SignedDelta(8981341.4458, 0))
	assert.Equal(t, "-4000000", SignedDelta(-3999999.6, 0))
}

func TestPercentWithDelta(t *testing.T) {
	d := 1.11
	assert.Equal(t, "53.21% (+1.11)", PercentWithDelta(53.21, &d))
	assert.Equal(t, "53.21% ( - )", PercentWithDelta(53.21, nil))

	neg := -1.11
	assert.Equal(t, "46.79% (-1.11)", PercentWithDelta(46.79, &neg))

	zero := 0.0
	assert.Equal(t, "50.00% (+0.00)", PercentWithDelta(50, &zero))
}

func TestParsePercent(t *testing.T) {
	assert.Equal(t, 53.21, ParsePercent("0.5321"))
	assert.Equal(t, 46.79, ParsePercent("0.4679"))
	assert.Equal(t, 100.0, ParsePercent("1"))
	assert.Equal(t, 0.0, ParsePercent("bogus"))
}
