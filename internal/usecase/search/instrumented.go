package search

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dlf/internal/domain/search/result"
	"github.com/kailas-cloud/dlf/internal/metrics"
	searchrepo "github.com/kailas-cloud/dlf/internal/repository/search"
)

// InstrumentedRepository wraps Repository with metrics and logging.
type InstrumentedRepository struct {
	inner  Repository
	logger *zap.Logger
}

// NewInstrumentedRepository wraps a repository with observability.
func NewInstrumentedRepository(inner Repository, logger *zap.Logger) *InstrumentedRepository {
	return &InstrumentedRepository{inner: inner, logger: logger}
}

// Search delegates to the inner repository and records duration, outcome and hit count.
func (r *InstrumentedRepository) Search(ctx context.Context, q searchrepo.Query) (result.Set, error) {
	start := time.Now()

	set, err := r.inner.Search(ctx, q)

	duration := time.Since(start)
	searchMode := string(q.Mode)
	metrics.SearchDuration.WithLabelValues(searchMode).Observe(duration.Seconds())

	if err != nil {
		outcome := "error"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		metrics.SearchRequestsTotal.WithLabelValues(searchMode, outcome).Inc()
		r.logger.Warn("Search backend failed",
			zap.String("core", q.Core),
			zap.String("mode", searchMode),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return set, err
	}

	metrics.SearchRequestsTotal.WithLabelValues(searchMode, "ok").Inc()
	metrics.SearchHits.WithLabelValues(searchMode).Observe(float64(set.NumHits))

	r.logger.Debug("Search completed",
		zap.String("core", q.Core),
		zap.String("mode", searchMode),
		zap.Duration("duration", duration),
		zap.Int("toplevels", set.NumberOfToplevels),
		zap.Int("hits", set.NumHits),
	)
	return set, nil
}
