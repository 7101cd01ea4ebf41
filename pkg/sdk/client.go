package dlf

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	dbRedis "github.com/kailas-cloud/dlf/internal/db/redis"
	"github.com/kailas-cloud/dlf/internal/db/sqlite"
	"github.com/kailas-cloud/dlf/internal/domain/search/request"
	"github.com/kailas-cloud/dlf/internal/domain/settings"
	"github.com/kailas-cloud/dlf/internal/links"
	collectionrepo "github.com/kailas-cloud/dlf/internal/repository/collection"
	metadatarepo "github.com/kailas-cloud/dlf/internal/repository/metadata"
	searchrepo "github.com/kailas-cloud/dlf/internal/repository/search"
	"github.com/kailas-cloud/dlf/internal/secret"
	healthuc "github.com/kailas-cloud/dlf/internal/usecase/health"
	searchuc "github.com/kailas-cloud/dlf/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCatalogPath      = "dlf.db"
	defaultKeyPrefix        = "dlf:"
)

// Internal interfaces, swapped for mocks in tests.
type searchUseCase interface {
	Search(ctx context.Context, q url.Values) (searchuc.Response, error)
}

type sealer interface {
	Seal(plain []byte) (string, error)
}

type closer interface {
	Close()
}

// Client is the dlf SDK entry point.
type Client struct {
	store     closer
	catalog   *sqlite.Catalog
	codec     sealer
	searchSvc searchUseCase
	healthSvc healthUseCase
	obs       *observer
}

func newClientConfig(opts ...Option) *clientConfig {
	cfg := &clientConfig{
		catalogPath:     defaultCatalogPath,
		keyPrefix:       defaultKeyPrefix,
		searchTimeout:   searchuc.DefaultTimeout,
		fulltextMaxHits: searchrepo.DefaultFulltextMaxHits,
		linkPath:        "/",
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	return cfg
}

// New creates a dlf Client, connects to Redis and opens the catalog.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := newClientConfig(opts...)

	if len(cfg.addrs) == 0 {
		return nil, errors.New("dlf: database address required (use WithRedis)")
	}

	codec, err := secret.NewCodec(cfg.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("dlf: %w", err)
	}
	lb, err := links.NewBuilder(cfg.linkBaseURL, cfg.linkPath)
	if err != nil {
		return nil, fmt.Errorf("dlf: %w", err)
	}
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("dlf: create redis store: %w", err)
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("dlf: database not ready: %w", err)
	}

	catalog, err := sqlite.Open(ctx, cfg.catalogPath)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("dlf: open catalog: %w", err)
	}

	searchRepo := searchrepo.New(store, searchrepo.Config{
		KeyPrefix:       cfg.keyPrefix,
		FulltextMaxHits: cfg.fulltextMaxHits,
		ChildLimit:      searchrepo.DefaultChildLimit,
	})
	searchSvc := searchuc.New(codec, searchRepo,
		collectionrepo.New(catalog.DB()), metadatarepo.New(catalog.DB()),
		lb, cfg.searchTimeout)

	return &Client{
		store:     store,
		catalog:   catalog,
		codec:     codec,
		searchSvc: searchSvc,
		healthSvc: healthuc.New(store, catalog),
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
	if c.catalog != nil {
		_ = c.catalog.Close()
	}
}

// Ping checks the search store and the catalog.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	report := c.healthSvc.Check(ctx)
	for component, res := range report.Checks {
		if res != healthuc.CheckOK {
			return fmt.Errorf("ping: %s unavailable", component)
		}
	}
	return nil
}

// Search runs a list view search. token is a sealed settings token,
// q carries the remaining request parameters (term, page, orderBy, ...).
// A settings parameter already present in q is replaced by token.
func (c *Client) Search(ctx context.Context, token string, q url.Values) (_ *Response, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	params := make(url.Values, len(q)+1)
	for k, v := range q {
		params[k] = append([]string(nil), v...)
	}
	params.Set(request.ParamSettings, token)

	resp, err := c.searchSvc.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return responseFrom(resp), nil
}

// Seal validates s and returns the encrypted token for the settings parameter.
func (c *Client) Seal(s Settings) (_ string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("seal", start, err) }()

	pageSize := s.ItemsPerPage
	if pageSize <= 0 {
		pageSize = settings.DefaultPageSize
	}
	cfg, err := settings.New(s.Core, s.StoragePID, s.PageViewPID, pageSize, s.Collections)
	if err != nil {
		return "", fmt.Errorf("seal: %w", err)
	}
	plain, err := cfg.Encode()
	if err != nil {
		return "", fmt.Errorf("seal: %w", err)
	}
	token, err := c.codec.Seal(plain)
	if err != nil {
		return "", fmt.Errorf("seal: %w", err)
	}
	return token, nil
}
