package binance

import (
	"encoding/json"
	"fmt"
)

// Record is a single timestamped point of a statistics series.
type Record interface {
	// Time is the sample time in milliseconds since epoch.
	Time() int64
}

// InterestRecord is one point of /futures/data/openInterestHist.
type InterestRecord struct {
	Symbol               string `json:"symbol"`               // e.g., "BTCUSDT"
	SumOpenInterest      string `json:"sumOpenInterest"`      // open interest in base asset units
	SumOpenInterestValue string `json:"sumOpenInterestValue"` // open interest notional in quote asset
	Timestamp            int64  `json:"timestamp"`            // milliseconds since epoch
}

func (r InterestRecord) Time() int64 { return r.Timestamp }

// UnmarshalJSON rejects objects that lack any of the record fields.
func (r *InterestRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		Symbol               *string `json:"symbol"`
		SumOpenInterest      *string `json:"sumOpenInterest"`
		SumOpenInterestValue *string `json:"sumOpenInterestValue"`
		Timestamp            *int64  `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := requireFields("open interest record",
		field{"symbol", raw.Symbol != nil},
		field{"sumOpenInterest", raw.SumOpenInterest != nil},
		field{"sumOpenInterestValue", raw.SumOpenInterestValue != nil},
		field{"timestamp", raw.Timestamp != nil},
	); err != nil {
		return err
	}
	*r = InterestRecord{
		Symbol:               *raw.Symbol,
		SumOpenInterest:      *raw.SumOpenInterest,
		SumOpenInterestValue: *raw.SumOpenInterestValue,
		Timestamp:            *raw.Timestamp,
	}
	return nil
}

// LongShortRecord is one point of the three long/short ratio endpoints.
// LongAccount and ShortAccount are fractions in [0,1].
type LongShortRecord struct {
	Symbol         string `json:"symbol"`
	LongShortRatio string `json:"longShortRatio"`
	LongAccount    string `json:"longAccount"`
	ShortAccount   string `json:"shortAccount"`
	Timestamp      int64  `json:"timestamp"`
}

func (r LongShortRecord) Time() int64 { return r.Timestamp }

// UnmarshalJSON rejects objects that lack any of the record fields.
func (r *LongShortRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		Symbol         *string `json:"symbol"`
		LongShortRatio *string `json:"longShortRatio"`
		LongAccount    *string `json:"longAccount"`
		ShortAccount   *string `json:"shortAccount"`
		Timestamp      *int64  `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := requireFields("long/short record",
		field{"symbol", raw.Symbol != nil},
		field{"longShortRatio", raw.LongShortRatio != nil},
		field{"longAccount", raw.LongAccount != nil},
		field{"shortAccount", raw.ShortAccount != nil},
		field{"timestamp", raw.Timestamp != nil},
	); err != nil {
		return err
	}
	*r = LongShortRecord{
		Symbol:         *raw.Symbol,
		LongShortRatio: *raw.LongShortRatio,
		LongAccount:    *raw.LongAccount,
		ShortAccount:   *raw.ShortAccount,
		Timestamp:      *raw.Timestamp,
	}
	return nil
}

type field struct {
	name    string
	present bool
}

func requireFields(record string, fields ...field) error {
	for _, f := range fields {
		if !f.present {
			return fmt.Errorf("%s: missing field %q", record, f.name)
		}
	}
	return nil
}

// Latest returns the record with the greatest timestamp. On ties the record
// encountered first wins. ok is false for an empty input.
func Latest[T Record](records []T) (latest T, ok bool) {
	for i, r := range records {
		if i == 0 || r.Time() > latest.Time() {
			latest = r
		}
	}
	return latest, len(records) > 0
}
