package dlf

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/dlf/internal/domain"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dlf",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type and outcome.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dlf",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("dlf: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("dlf: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for SDK operations.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	outcome := outcomeOf(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, outcome).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	switch outcome {
	case outcomeOK:
		o.logger.Debug("operation completed", "op", op, "duration", dur)
	case outcomeDecode, outcomeValidation:
		o.logger.Info("operation rejected", "op", op, "outcome", outcome, "error", err)
	default:
		o.logger.Warn("operation failed", "op", op, "outcome", outcome, "duration", dur, "error", err)
	}
}

// Operation outcomes, used as the status label.
const (
	outcomeOK         = "ok"
	outcomeDecode     = "decode"
	outcomeValidation = "validation"
	outcomeBackend    = "backend"
	outcomeLink       = "link"
	outcomeError      = "error"
)

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, domain.ErrDecode):
		return outcomeDecode
	case errors.Is(err, domain.ErrValidation):
		return outcomeValidation
	case errors.Is(err, domain.ErrBackend):
		return outcomeBackend
	case errors.Is(err, domain.ErrLinkBuild):
		return outcomeLink
	default:
		return outcomeError
	}
}
