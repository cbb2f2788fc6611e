package app

import (
	"testing"
	"time"

	"ratiowatch/pkg/binance"

	"github.com/stretchr/testify/assert"
)

func TestShorterThanPeriod(t *testing.T) {
	tests := []struct {
		interval time.Duration
		period   binance.Period
		want     bool
	}{
		{5 * time.Minute, binance.Period5Min, false},
		{15 * time.Minute, binance.Period5Min, false},
		{5 * time.Minute, binance.Period15Min, true},
		{time.Hour, binance.Period1D, true},
		{24 * time.Hour, binance.Period1D, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shorterThanPeriod(tt.interval, tt.period), "%s/%s", tt.interval, tt.period)
	}
}
