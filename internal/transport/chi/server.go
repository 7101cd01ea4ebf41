package chi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dlf/internal/domain"
	domfeed "github.com/kailas-cloud/dlf/internal/domain/feed"
	feeduc "github.com/kailas-cloud/dlf/internal/usecase/feed"
	healthuc "github.com/kailas-cloud/dlf/internal/usecase/health"
	searchuc "github.com/kailas-cloud/dlf/internal/usecase/search"
)

// searchEID is the eID value the list view sends to the site root.
const searchEID = "tx_dlf_search"

type searcher interface {
	Search(ctx context.Context, q url.Values) (searchuc.Response, error)
}

type feedBuilder interface {
	Build(ctx context.Context, req feeduc.Request) (domfeed.Feed, error)
}

type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the search, feed and operational endpoints.
type Server struct {
	search        searcher
	feeds         feedBuilder
	health        healthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP server. feeds can be nil when no feed is configured.
func NewServer(search searcher, feeds feedBuilder, health healthChecker, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		feeds:  feeds,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDecode, http.StatusBadRequest, "Could not decode settings"),
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, "Invalid settings"),
		sentinelHandler(domain.ErrBackend, http.StatusBadGateway, "Search failed"),
		sentinelHandler(domain.ErrLinkBuild, http.StatusInternalServerError, "Search failed"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "not found"),
	}
	return s
}

// Options configures the router built by Handler.
type Options struct {
	// MetricsTokens guard /metrics with bearer auth; empty leaves it open.
	MetricsTokens []string
	// Limiter throttles the public endpoints; nil disables throttling.
	Limiter *RateLimiter
}

// Mount registers all routes on r.
func (s *Server) Mount(r chi.Router, opts Options) {
	r.MethodNotAllowed(methodNotAllowed)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	r.Group(func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(opts.Limiter.Middleware())
		}
		r.Get("/", s.Root)
		r.Get("/api/search", s.Search)
		r.Get("/feeds/{library}", s.Feed)
	})

	r.Get("/health", s.HealthCheck)
	r.With(BearerAuthMiddleware(opts.MetricsTokens)).Get("/metrics", s.Metrics)
}

// Root handles GET /. Only the search eID is served there.
func (s *Server) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("eID") != searchEID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.Search(w, r)
}

// Search handles GET /api/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	resp, err := s.search.Search(r.Context(), r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponseFrom(resp))
}

// Feed handles GET /feeds/{library}.
func (s *Server) Feed(w http.ResponseWriter, r *http.Request) {
	library, err := strconv.Atoi(chi.URLParam(r, "library"))
	if err != nil || library <= 0 || s.feeds == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	f, err := s.feeds.Build(r.Context(), feeduc.Request{
		Library:     library,
		Collections: r.URL.Query().Get("collection"),
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeRSS(w, f)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// methodNotAllowed answers every non-GET request with an empty body.
func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Allow", http.MethodGet)
	w.WriteHeader(http.StatusMethodNotAllowed)
}
