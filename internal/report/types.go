package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ratiowatch/internal/tracker"
	"ratiowatch/pkg/binance"
)

// Family identifies one metric family and its position in the report.
type Family string

const (
	FamilyOpenInterest  Family = "open_interest"
	FamilyGlobalAccount Family = "global_account"
	FamilyTopPosition   Family = "top_position"
	FamilyTopAccount    Family = "top_account"
)

// Families lists the report sections in output order.
var Families = []Family{FamilyOpenInterest, FamilyGlobalAccount, FamilyTopPosition, FamilyTopAccount}

// Tracked series ids.
const (
	SeriesOpenInterest      = "open_interest.base"
	SeriesOpenInterestValue = "open_interest.notional"
	SeriesGlobalLong        = "global_account.long"
	SeriesGlobalShort       = "global_account.short"
	SeriesTopPositionLong   = "top_position.long"
	SeriesTopPositionShort  = "top_position.short"
	SeriesTopAccountLong    = "top_account.long"
	SeriesTopAccountShort   = "top_account.short"
)

// ErrNoData is returned when an endpoint answers with an empty series.
var ErrNoData = errors.New("no records available")

// FamilyError attributes a cycle failure to the family whose fetch failed.
type FamilyError struct {
	Family Family
	Err    error
}

func (e *FamilyError) Error() string { return fmt.Sprintf("%s: %v", e.Family, e.Err) }

func (e *FamilyError) Unwrap() error { return e.Err }

// FailureKind labels a cycle error for logs and metrics: "no_data" or the
// fetch error kind ("network", "decode", "parse").
func FailureKind(err error) string {
	if errors.Is(err, ErrNoData) {
		return "no_data"
	}
	return binance.KindOf(err).String()
}

// FailedFamily returns the family a cycle error is attributed to.
func FailedFamily(err error) (Family, bool) {
	var fe *FamilyError
	if errors.As(err, &fe) {
		return fe.Family, true
	}
	return "", false
}

// Block is a titled group of lines.
type Block struct {
	Title string
	Lines []string
}

func (b Block) String() string {
	return b.Title + "\n" + strings.Join(b.Lines, "\n")
}

// Section is the rendered output of one family.
type Section struct {
	Family Family
	Blocks []Block
}

func (s Section) String() string {
	parts := make([]string, len(s.Blocks))
	for i, b := range s.Blocks {
		parts[i] = b.String()
	}
	return strings.Join(parts, "\n\n")
}

// Reading is one tracked value observed during a cycle.
type Reading struct {
	Series string
	Change tracker.Change
}

// Report is the output of one cycle. A report without sections is empty and
// must not be delivered.
type Report struct {
	Symbol      string
	GeneratedAt time.Time
	Sections    []Section
	Readings    []Reading
}

func (r Report) Empty() bool { return len(r.Sections) == 0 }

// Text renders the sections in order separated by blank lines.
func (r Report) Text() string {
	parts := make([]string, len(r.Sections))
	for i, s := range r.Sections {
		parts[i] = s.String()
	}
	return strings.Join(parts, "\n\n")
}
