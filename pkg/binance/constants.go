package binance

import "fmt"

// Period is the aggregation window accepted by the futures statistics endpoints.
type Period string

const (
	Period5Min  Period = "5m"
	Period15Min Period = "15m"
	Period30Min Period = "30m"
	Period1H    Period = "1h"
	Period2H    Period = "2h"
	Period4H    Period = "4h"
	Period6H    Period = "6h"
	Period12H   Period = "12h"
	Period1D    Period = "1d"
)

var validPeriods = map[Period]int{
	Period5Min:  5,
	Period15Min: 15,
	Period30Min: 30,
	Period1H:    60,
	Period2H:    120,
	Period4H:    240,
	Period6H:    360,
	Period12H:   720,
	Period1D:    1440,
}

// IsValid checks if the Period is one the API accepts
func (p Period) IsValid() bool {
	_, ok := validPeriods[p]
	return ok
}

// Minutes returns the window length, or 0 for an unknown period.
func (p Period) Minutes() int {
	return validPeriods[p]
}

// ParsePeriod parses a string into a valid Period
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid period: %s", s)
	}
	return p, nil
}

// Futures statistics endpoints (served under the public www host, no API key).
const (
	PathOpenInterestHist          = "/futures/data/openInterestHist"
	PathGlobalLongShortAccount    = "/futures/data/globalLongShortAccountRatio"
	PathTopLongShortPositionRatio = "/futures/data/topLongShortPositionRatio"
	PathTopLongShortAccountRatio  = "/futures/data/topLongShortAccountRatio"
)
