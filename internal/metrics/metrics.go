package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics groups the collectors exported by the poller. Use New with a
// dedicated registry in tests.
type Metrics struct {
	Cycles          *prometheus.CounterVec
	FetchFailures   *prometheus.CounterVec
	Deliveries      *prometheus.CounterVec
	LastReport      prometheus.Gauge
	TrackedBaseline *prometheus.GaugeVec

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		Cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ratiowatch",
				Name:      "cycles_total",
				Help:      "Report cycles by result (ok, empty).",
			},
			[]string{"result"},
		),
		FetchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ratiowatch",
				Name:      "fetch_failures_total",
				Help:      "Abandoned cycles by failing family and error kind.",
			},
			[]string{"family", "kind"},
		),
		Deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ratiowatch",
				Name:      "deliveries_total",
				Help:      "Report deliveries by sink and result.",
			},
			[]string{"sink", "result"},
		),
		LastReport: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "ratiowatch",
				Name:      "last_report_timestamp_seconds",
				Help:      "Unix time of the last non-empty report.",
			},
		),
		TrackedBaseline: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "ratiowatch",
				Name:      "baseline_value",
				Help:      "Current baseline of each tracked series.",
			},
			[]string{"series"},
		),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.Cycles, m.FetchFailures, m.Deliveries, m.LastReport, m.TrackedBaseline)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveCycle(empty bool, at time.Time) {
	if empty {
		m.Cycles.WithLabelValues("empty").Inc()
		return
	}
	m.Cycles.WithLabelValues("ok").Inc()
	m.LastReport.Set(float64(at.Unix()))
}

func (m *Metrics) ObserveFetchFailure(family, kind string) {
	m.FetchFailures.WithLabelValues(family, kind).Inc()
}

func (m *Metrics) ObserveDelivery(sink string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Deliveries.WithLabelValues(sink, result).Inc()
}

func (m *Metrics) SetBaseline(series string, v float64) {
	m.TrackedBaseline.WithLabelValues(series).Set(v)
}

// Serve exposes /metrics on addr in the background and returns the server so
// the caller can shut it down.
func (m *Metrics) Serve(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}
	go func() {
		logger.Info("metrics listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()
	return srv
}
