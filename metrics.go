package rotacl

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/rotacl/internal/logging"
	"github.com/arloliu/rotacl/internal/metrics"
)

// NewPrometheusMetrics returns a MetricsCollector exporting to Prometheus.
//
// Metrics are registered on reg (prometheus.DefaultRegisterer if nil) under
// the "rotacl" namespace on first use.
//
// Example:
//
//	ctrl, err := rotacl.NewController(ctx, &cfg, src, store, locker,
//	    rotacl.WithMetrics(rotacl.NewPrometheusMetrics(nil)))
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsCollector {
	return metrics.NewPrometheus(reg, "")
}

// NewSlogLogger adapts a *slog.Logger to Logger.
//
// Records carry component=rotacl. A nil logger uses slog.Default().
//
// Example:
//
//	logger := rotacl.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
//	ctrl, err := rotacl.NewController(ctx, &cfg, src, store, locker, rotacl.WithLogger(logger))
func NewSlogLogger(logger *slog.Logger) Logger {
	return logging.NewSlog(logger, "rotacl")
}
