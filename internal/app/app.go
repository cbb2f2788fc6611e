package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ratiowatch/config"
	"ratiowatch/internal/delivery"
	"ratiowatch/internal/metrics"
	"ratiowatch/internal/report"
	"ratiowatch/internal/scheduler"
	"ratiowatch/internal/tracker"
	"ratiowatch/pkg/binance"
	"ratiowatch/pkg/storage/postgres"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Start wires the poller from configuration and blocks until ctx is done.
func Start(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	period, err := binance.ParsePeriod(cfg.Binance.Period)
	if err != nil {
		return err
	}
	if shorterThanPeriod(cfg.Schedule.Interval, period) {
		logger.Warn("schedule interval is shorter than the statistics period, consecutive reports may repeat a sample",
			zap.Duration("interval", cfg.Schedule.Interval),
			zap.String("period", string(period)),
		)
	}

	// Parameter Store secrets (prod only)
	if cfg.NeedsSecrets() {
		ssmClient, err := config.NewParameterGetter(ctx)
		if err != nil {
			return err
		}
		if err := cfg.ResolveSecrets(ctx, ssmClient); err != nil {
			return fmt.Errorf("resolve secrets: %w", err)
		}
	}

	var limiter *rate.Limiter
	if cfg.Binance.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Binance.RequestsPerSecond), max(cfg.Binance.Burst, 1))
	}
	restClient := binance.NewRESTClient(cfg.Binance.BaseURL, cfg.Binance.Timeout, limiter)

	tr := tracker.New()
	builder := report.NewBuilder(restClient, tr, report.Options{
		Symbol:    cfg.Binance.Symbol,
		Endpoints: report.EndpointsFor(restClient, cfg.Binance.Symbol, period, cfg.Binance.Limit),
	}, logger.Named("report"))

	sinks, closeSinks, err := buildSinks(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSinks()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		srv := m.Serve(cfg.Metrics.Addr, logger.Named("metrics"))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	var archive Archive
	if cfg.Postgres.Enabled {
		client, err := postgres.InitializeAndMigrate(cfg.Postgres)
		if err != nil {
			return fmt.Errorf("failed to connect to DB: %w", err)
		}
		defer client.Close()
		archive = client
	}

	runner := NewRunner(builder, tr, sinks, archive, cfg.Postgres.Retention, m, logger.Named("cycle"))

	logger.Info("main loop started",
		zap.String("symbol", cfg.Binance.Symbol),
		zap.String("period", string(period)),
		zap.Duration("interval", cfg.Schedule.Interval),
		zap.Int("sinks", sinks.Len()),
		zap.Bool("archive", archive != nil),
	)

	sched := scheduler.New(cfg.Schedule.Interval, cfg.Schedule.RunOnStart, logger.Named("scheduler"))
	if err := sched.Run(ctx, runner.RunCycle); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func buildSinks(cfg *config.Config, logger *zap.Logger) (*delivery.Multi, func(), error) {
	var sinks []delivery.Deliverer
	closeFn := func() {}

	if cfg.Telegram.Enabled {
		tg, err := delivery.NewTelegram(cfg.Telegram.BaseURL, cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.Telegram.Timeout)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, tg)
	}

	if cfg.Relay.Enabled {
		if cfg.Relay.URL == "" {
			return nil, nil, errors.New("relay.url is required when relay is enabled")
		}
		relay := delivery.NewRelay(cfg.Relay.URL, cfg.Binance.Symbol, cfg.Relay.HandshakeTimeout, cfg.Relay.WriteTimeout, logger.Named("relay"))
		sinks = append(sinks, relay)
		closeFn = func() { _ = relay.Close() }
	}

	return delivery.NewMulti(logger.Named("delivery"), sinks...), closeFn, nil
}

// shorterThanPeriod reports whether cycles would run more often than the
// upstream publishes new samples.
func shorterThanPeriod(interval time.Duration, period binance.Period) bool {
	return interval < time.Duration(period.Minutes())*time.Minute
}
