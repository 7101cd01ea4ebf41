// Package search runs the list view search pipeline: open the settings token,
// normalize the query, execute the search and attach viewer links.
package search

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/kailas-cloud/dlf/internal/domain"
	domcol "github.com/kailas-cloud/dlf/internal/domain/collection"
	dommeta "github.com/kailas-cloud/dlf/internal/domain/metadata"
	"github.com/kailas-cloud/dlf/internal/domain/search/request"
	"github.com/kailas-cloud/dlf/internal/domain/search/result"
	"github.com/kailas-cloud/dlf/internal/domain/settings"
	searchrepo "github.com/kailas-cloud/dlf/internal/repository/search"
)

// DefaultTimeout bounds the search stage when no timeout is configured.
const DefaultTimeout = 3 * time.Second

// Response is the assembled answer to one search request.
type Response struct {
	Page result.Page
	Set  result.Set
}

// Service handles list view searches.
type Service struct {
	codec   Opener
	repo    Repository
	colls   CollectionReader
	meta    MetadataReader
	links   LinkBuilder
	timeout time.Duration
}

// New creates a search service.
func New(
	codec Opener, repo Repository, colls CollectionReader, meta MetadataReader,
	lb LinkBuilder, timeout time.Duration,
) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{codec: codec, repo: repo, colls: colls, meta: meta, links: lb, timeout: timeout}
}

// Search runs the whole pipeline for the query parameters of one request.
// Errors wrap domain.ErrDecode, domain.ErrValidation, domain.ErrBackend or domain.ErrLinkBuild;
// backend and link failures are *domain.SearchError carrying the request context.
func (s *Service) Search(ctx context.Context, q url.Values) (Response, error) {
	cfg, err := s.openSettings(q.Get(request.ParamSettings))
	if err != nil {
		return Response{}, err
	}

	req := request.FromQuery(q, cfg)
	fail := func(stage string, err error) error {
		return &domain.SearchError{
			Stage:      stage,
			Core:       cfg.CoreName(),
			StoragePID: cfg.StoragePID(),
			Term:       req.Term(),
			Page:       req.Page(),
			Mode:       string(req.Mode()),
			Err:        err,
		}
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cols, err := s.resolveCollections(searchCtx, cfg.StoragePID(), req.CollectionIDs())
	if err != nil {
		return Response{}, fail("collections", fmt.Errorf("%w: %w", domain.ErrBackend, err))
	}

	listed, err := s.meta.FindListed(searchCtx, cfg.StoragePID())
	if err != nil {
		return Response{}, fail("metadata", fmt.Errorf("%w: %w", domain.ErrBackend, err))
	}

	set, err := s.repo.Search(searchCtx, searchrepo.Query{
		Core:        cfg.CoreName(),
		StoragePID:  cfg.StoragePID(),
		Collections: domcol.IndexNames(cols),
		Term:        req.Term(),
		Mode:        req.Mode(),
		Sort:        req.Sort(),
		Offset:      req.Offset(),
		Limit:       req.Limit(),
		Listed:      dommeta.IndexNames(listed),
	})
	if err != nil {
		return Response{}, fail("search", fmt.Errorf("%w: %w", domain.ErrBackend, err))
	}
	if set.Documents == nil {
		set.Documents = []result.DocumentHit{}
	}

	if err := enrich(s.links, cfg.PageViewPID(), set.Documents); err != nil {
		return Response{}, fail("links", err)
	}

	return Response{
		Page: result.NewPage(req.Offset(), req.PageSize(), len(set.Documents)),
		Set:  set,
	}, nil
}

func (s *Service) openSettings(token string) (settings.Configuration, error) {
	plain, err := s.codec.Open(token)
	if err != nil {
		return settings.Configuration{}, fmt.Errorf("open settings: %w", err)
	}
	cfg, err := settings.Parse(plain)
	if err != nil {
		return settings.Configuration{}, fmt.Errorf("parse settings: %w", err)
	}
	return cfg, nil
}

// resolveCollections returns nil (no restriction) when no configured id resolves.
func (s *Service) resolveCollections(ctx context.Context, pid int, ids []int) ([]domcol.Collection, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cols, err := s.colls.FindByUIDs(ctx, pid, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve collections: %w", err)
	}
	if len(cols) == 0 {
		return nil, nil
	}
	return cols, nil
}
