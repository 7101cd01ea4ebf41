package chi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dlf/internal/domain"
	logpkg "github.com/kailas-cloud/dlf/internal/logger"
)

type errorResponse struct {
	Message string `json:"message"`
}

// sentinelHandler returns an errorHandler that answers a single sentinel error with a fixed message.
func sentinelHandler(sentinel error, status int, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, message)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logDomainError(logpkg.FromContextOr(r.Context(), s.logger), err)

	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}

// logDomainError logs client errors at warn and server faults at error, with the failed stage context.
func logDomainError(log *zap.Logger, err error) {
	fields := []zap.Field{zap.Error(err)}
	var se *domain.SearchError
	if errors.As(err, &se) {
		fields = append(fields,
			zap.String("stage", se.Stage),
			zap.String("core", se.Core),
			zap.Int("storage_pid", se.StoragePID),
			zap.String("term", se.Term),
			zap.Int("page", se.Page),
			zap.String("mode", se.Mode),
		)
	}

	switch {
	case errors.Is(err, domain.ErrDecode), errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound):
		log.Warn("request rejected", fields...)
	default:
		log.Error("request failed", fields...)
	}
}
