package report

import (
	"context"
	"time"

	"ratiowatch/internal/numfmt"
	"ratiowatch/internal/tracker"
	"ratiowatch/pkg/binance"

	"go.uber.org/zap"
)

// Source fetches the raw statistics series. *binance.RESTClient satisfies it.
type Source interface {
	FetchInterest(ctx context.Context, endpoint string) ([]binance.InterestRecord, error)
	FetchLongShort(ctx context.Context, endpoint string) ([]binance.LongShortRecord, error)
}

// Endpoints are the full URLs polled each cycle.
type Endpoints struct {
	OpenInterest  string
	GlobalAccount string
	TopPosition   string
	TopAccount    string
}

// EndpointsFor builds the standard endpoint set for symbol from client.
func EndpointsFor(client *binance.RESTClient, symbol string, period binance.Period, limit int) Endpoints {
	return Endpoints{
		OpenInterest:  client.Endpoint(binance.PathOpenInterestHist, symbol, period, limit),
		GlobalAccount: client.Endpoint(binance.PathGlobalLongShortAccount, symbol, period, limit),
		TopPosition:   client.Endpoint(binance.PathTopLongShortPositionRatio, symbol, period, limit),
		TopAccount:    client.Endpoint(binance.PathTopLongShortAccountRatio, symbol, period, limit),
	}
}

type Options struct {
	Symbol    string
	Endpoints Endpoints
}

// ratioFamily describes a long/short section.
type ratioFamily struct {
	family   Family
	title    string
	endpoint string
	longID   string
	shortID  string
}

// Builder turns the latest upstream readings into a report, tracking deltas
// against the previous cycle.
type Builder struct {
	source  Source
	tracker *tracker.Tracker
	opts    Options
	base    string
	quote   string
	ratios  []ratioFamily
	logger  *zap.Logger
	now     func() time.Time
}

func NewBuilder(source Source, tr *tracker.Tracker, opts Options, logger *zap.Logger) *Builder {
	base, quote := binance.SplitSymbol(opts.Symbol)
	ratios := []ratioFamily{
		{FamilyGlobalAccount, "Global Long-Short Ratio", opts.Endpoints.GlobalAccount, SeriesGlobalLong, SeriesGlobalShort},
		{FamilyTopPosition, "Top Trader Long-Short Position Ratio", opts.Endpoints.TopPosition, SeriesTopPositionLong, SeriesTopPositionShort},
		{FamilyTopAccount, "Top Trader Long-Short Account Ratio", opts.Endpoints.TopAccount, SeriesTopAccountLong, SeriesTopAccountShort},
	}
	return &Builder{
		source:  source,
		tracker: tr,
		opts:    opts,
		base:    base,
		quote:   quote,
		ratios:  ratios,
		logger:  logger,
		now:     time.Now,
	}
}

// Build runs one cycle. Every series is fetched before any baseline is
// touched, so a failed cycle returns an empty report together with the cause
// and leaves the tracker exactly as it was.
func (b *Builder) Build(ctx context.Context) (Report, error) {
	rep := Report{Symbol: b.opts.Symbol, GeneratedAt: b.now()}

	interest, err := fetchLatest(ctx, FamilyOpenInterest, b.opts.Endpoints.OpenInterest, b.source.FetchInterest)
	if err != nil {
		b.logFetchFailure(FamilyOpenInterest, b.opts.Endpoints.OpenInterest, err)
		return rep, err
	}

	ratios := make([]binance.LongShortRecord, len(b.ratios))
	for i, rf := range b.ratios {
		rec, err := fetchLatest(ctx, rf.family, rf.endpoint, b.source.FetchLongShort)
		if err != nil {
			b.logFetchFailure(rf.family, rf.endpoint, err)
			return rep, err
		}
		ratios[i] = rec
	}

	rep.Sections = append(rep.Sections, b.openInterestSection(interest, &rep))
	for i, rf := range b.ratios {
		rep.Sections = append(rep.Sections, b.ratioSection(rf, ratios[i], &rep))
	}

	b.logger.Debug("report built", zap.String("symbol", rep.Symbol), zap.Int("sections", len(rep.Sections)))
	return rep, nil
}

func fetchLatest[T binance.Record](ctx context.Context, family Family, endpoint string,
	fetch func(context.Context, string) ([]T, error)) (T, error) {
	records, err := fetch(ctx, endpoint)
	if err != nil {
		var zero T
		return zero, &FamilyError{Family: family, Err: err}
	}
	latest, ok := binance.Latest(records)
	if !ok {
		return latest, &FamilyError{Family: family, Err: ErrNoData}
	}
	return latest, nil
}

func (b *Builder) observe(rep *Report, series string, value float64) tracker.Change {
	c := b.tracker.Observe(series, value)
	rep.Readings = append(rep.Readings, Reading{Series: series, Change: c})
	return c
}

func (b *Builder) openInterestSection(rec binance.InterestRecord, rep *Report) Section {
	amount := b.observe(rep, SeriesOpenInterest, numfmt.ParseDecimal(rec.SumOpenInterest))
	notional := b.observe(rep, SeriesOpenInterestValue, numfmt.ParseDecimal(rec.SumOpenInterestValue))

	return Section{
		Family: FamilyOpenInterest,
		Blocks: []Block{
			{Title: "Open Interest", Lines: []string{amountLine(amount, b.base, 2)}},
			{Title: "Notional Value of Open Interest", Lines: []string{amountLine(notional, b.quote, 0)}},
		},
	}
}

func (b *Builder) ratioSection(rf ratioFamily, rec binance.LongShortRecord, rep *Report) Section {
	long := b.observe(rep, rf.longID, numfmt.ParsePercent(rec.LongAccount))
	short := b.observe(rep, rf.shortID, numfmt.ParsePercent(rec.ShortAccount))

	return Section{
		Family: rf.family,
		Blocks: []Block{{
			Title: rf.title,
			Lines: []string{
				"Long: " + numfmt.PercentWithDelta(long.Current, long.DeltaPtr()),
				"Short: " + numfmt.PercentWithDelta(short.Current, short.DeltaPtr()),
			},
		}},
	}
}

// amountLine renders "88,638 BTC (+37.57)" or "88,638 BTC ( - )".
func amountLine(c tracker.Change, unit string, precision int) string {
	s := numfmt.GroupedInteger(c.Current)
	if unit != "" {
		s += " " + unit
	}
	if !c.Baseline {
		return s + " ( - )"
	}
	return s + " (" + numfmt.SignedDelta(c.Diff, precision) + ")"
}

func (b *Builder) logFetchFailure(family Family, endpoint string, err error) {
	b.logger.Warn("fetch failed, abandoning report",
		zap.String("family", string(family)),
		zap.String("endpoint", endpoint),
		zap.String("kind", FailureKind(err)),
		zap.Error(err),
	)
}
