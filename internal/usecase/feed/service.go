// Package feed builds the RSS feeds of recently added and updated documents.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/dlf/internal/domain"
	domfeed "github.com/kailas-cloud/dlf/internal/domain/feed"
	"github.com/kailas-cloud/dlf/internal/domain/settings"
	"github.com/kailas-cloud/dlf/internal/links"
	"github.com/kailas-cloud/dlf/internal/metrics"
)

// Request selects a feed and optionally restricts it to collections.
type Request struct {
	Library int
	// Collections is the raw comma-separated collection parameter.
	Collections string
}

// Service builds feeds from their configured settings.
type Service struct {
	docs   DocumentReader
	libs   LibraryReader
	links  LinkBuilder
	feeds  map[int]domfeed.Settings
	logger *zap.Logger
}

// New creates a feed service. Feeds are keyed by their library uid.
func New(docs DocumentReader, libs LibraryReader, lb LinkBuilder, feeds []domfeed.Settings, logger *zap.Logger) *Service {
	byLibrary := make(map[int]domfeed.Settings, len(feeds))
	for _, f := range feeds {
		f.Labels = f.Labels.WithDefaults()
		byLibrary[f.Library] = f
	}
	return &Service{docs: docs, libs: libs, links: lb, feeds: byLibrary, logger: logger}
}

// Build renders the feed of req.Library.
// Fails with domain.ErrNotFound when no feed is configured for the library.
// A request for collections outside the allowlist yields a feed without items.
func (s *Service) Build(ctx context.Context, req Request) (domfeed.Feed, error) {
	cfg, ok := s.feeds[req.Library]
	if !ok {
		return domfeed.Feed{}, fmt.Errorf("feed for library %d: %w", req.Library, domain.ErrNotFound)
	}

	out := domfeed.Feed{Title: cfg.Title, Description: cfg.Description, Items: []domfeed.Item{}}

	lib, err := s.libs.FindByUID(ctx, cfg.Library)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.logger.Error("Failed to fetch label of selected library", zap.Int("library", cfg.Library))
	case err != nil:
		return domfeed.Feed{}, fmt.Errorf("get library %d: %w", cfg.Library, err)
	default:
		out.Copyright = lib.Label
		out.Link = lib.Website
		if out.Title == "" {
			out.Title = lib.Label
		}
	}

	requested := settings.ParseIDList(req.Collections)
	if !cfg.Allows(requested) {
		return out, nil
	}

	docs, err := s.docs.FindAllByCollectionsLimited(ctx, requested, cfg.Limit)
	if err != nil {
		return domfeed.Feed{}, fmt.Errorf("list documents: %w", err)
	}

	for _, doc := range docs {
		link, err := s.links.Build(cfg.PageViewPID, links.Params{Document: doc.UID()})
		if err != nil {
			return domfeed.Feed{}, fmt.Errorf("%w: %w", domain.ErrLinkBuild, err)
		}
		out.Items = append(out.Items, domfeed.Item{
			Title:       domfeed.ItemTitle(doc, cfg.PrependSuperiorTitle, cfg.Labels),
			Link:        link,
			GUID:        doc.RecordID(),
			Description: doc.Author(),
			PubDate:     doc.UpdatedAt(),
		})
	}

	metrics.FeedItemsTotal.WithLabelValues(strconv.Itoa(cfg.Library)).Add(float64(len(out.Items)))
	return out, nil
}
