package feed

import (
	"context"

	domdoc "github.com/kailas-cloud/dlf/internal/domain/document"
	domfeed "github.com/kailas-cloud/dlf/internal/domain/feed"
	"github.com/kailas-cloud/dlf/internal/links"
)

// DocumentReader lists recently changed documents.
type DocumentReader interface {
	FindAllByCollectionsLimited(ctx context.Context, collectionUIDs []int, limit int) ([]domdoc.Document, error)
}

// LibraryReader reads the library a feed is published for.
type LibraryReader interface {
	FindByUID(ctx context.Context, uid int) (domfeed.Library, error)
}

// LinkBuilder generates viewer deep links.
type LinkBuilder interface {
	Build(targetPID int, p links.Params) (string, error)
}
