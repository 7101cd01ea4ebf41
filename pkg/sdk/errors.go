package dlf

import "github.com/kailas-cloud/dlf/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrDecode     = domain.ErrDecode
	ErrValidation = domain.ErrValidation
	ErrBackend    = domain.ErrBackend
	ErrLinkBuild  = domain.ErrLinkBuild
	ErrNotFound   = domain.ErrNotFound
)
