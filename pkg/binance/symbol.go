package binance

import "strings"

// quoteAssets is ordered so longer suffixes are tried first.
var quoteAssets = []string{"FDUSD", "USDT", "USDC", "BUSD", "USD"}

// SplitSymbol splits a contract symbol such as "BTCUSDT" into its base and
// quote assets. Unknown quotes return the whole symbol as base.
func SplitSymbol(symbol string) (base, quote string) {
	s := strings.ToUpper(symbol)
	for _, q := range quoteAssets {
		if len(s) > len(q) && strings.HasSuffix(s, q) {
			return strings.TrimSuffix(s, q), q
		}
	}
	return s, ""
}
