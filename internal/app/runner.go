package app

import (
	"context"
	"time"

	"ratiowatch/internal/delivery"
	"ratiowatch/internal/metrics"
	"ratiowatch/internal/report"
	"ratiowatch/internal/tracker"
	"ratiowatch/pkg/storage/postgres"

	"go.uber.org/zap"
)

// Archive is the subset of the Postgres client used to keep report history.
type Archive interface {
	InsertReport(ctx context.Context, record *postgres.ReportRecord) error
	DeleteOldReports(ctx context.Context, before time.Time) (int64, error)
}

// Runner executes one report cycle: build, deliver, archive.
type Runner struct {
	builder   *report.Builder
	tracker   *tracker.Tracker
	sinks     *delivery.Multi
	archive   Archive // nil when archiving is disabled
	retention time.Duration
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewRunner(builder *report.Builder, tr *tracker.Tracker, sinks *delivery.Multi, archive Archive,
	retention time.Duration, m *metrics.Metrics, logger *zap.Logger) *Runner {
	return &Runner{
		builder:   builder,
		tracker:   tr,
		sinks:     sinks,
		archive:   archive,
		retention: retention,
		metrics:   m,
		logger:    logger,
	}
}

// RunCycle never fails: problems are logged and counted, and the next cycle
// starts from whatever baselines survived.
func (r *Runner) RunCycle(ctx context.Context) {
	rep, err := r.builder.Build(ctx)
	if err != nil {
		family, _ := report.FailedFamily(err)
		r.metrics.ObserveFetchFailure(string(family), report.FailureKind(err))
		r.logger.Error("report cycle abandoned", zap.String("symbol", rep.Symbol), zap.Error(err))
	}
	r.metrics.ObserveCycle(rep.Empty(), rep.GeneratedAt)

	text := rep.Text()
	r.logger.Info("generated message", zap.String("symbol", rep.Symbol), zap.String("text", text))

	delivered := false
	if text != "" && r.sinks.Len() > 0 {
		derr := r.sinks.DeliverEach(ctx, text, r.metrics.ObserveDelivery)
		delivered = derr == nil
	}

	for series, v := range r.tracker.Snapshot() {
		r.metrics.SetBaseline(series, v)
	}

	r.store(ctx, rep, err, delivered)
}

func (r *Runner) store(ctx context.Context, rep report.Report, cycleErr error, delivered bool) {
	if r.archive == nil {
		return
	}

	dbCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.archive.InsertReport(dbCtx, postgres.ToReportRecord(rep, cycleErr, delivered)); err != nil {
		r.logger.Warn("failed to archive report", zap.Error(err))
		return
	}

	if r.retention <= 0 {
		return
	}
	n, err := r.archive.DeleteOldReports(dbCtx, rep.GeneratedAt.Add(-r.retention))
	if err != nil {
		r.logger.Warn("failed to prune old reports", zap.Error(err))
		return
	}
	if n > 0 {
		r.logger.Debug("pruned old reports", zap.Int64("count", n))
	}
}
