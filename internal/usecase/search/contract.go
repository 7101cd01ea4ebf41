package search

import (
	"context"

	domcol "github.com/kailas-cloud/dlf/internal/domain/collection"
	dommeta "github.com/kailas-cloud/dlf/internal/domain/metadata"
	"github.com/kailas-cloud/dlf/internal/domain/search/result"
	"github.com/kailas-cloud/dlf/internal/links"
	searchrepo "github.com/kailas-cloud/dlf/internal/repository/search"
)

// Opener decrypts settings tokens.
type Opener interface {
	Open(token string) ([]byte, error)
}

// Repository executes searches against the search backend.
type Repository interface {
	Search(ctx context.Context, q searchrepo.Query) (result.Set, error)
}

// CollectionReader resolves collection ids within a storage boundary.
type CollectionReader interface {
	FindByUIDs(ctx context.Context, pid int, uids []int) ([]domcol.Collection, error)
}

// MetadataReader reads the metadata fields shown in listings.
type MetadataReader interface {
	FindListed(ctx context.Context, pid int) ([]dommeta.Field, error)
}

// LinkBuilder generates viewer deep links.
type LinkBuilder interface {
	Build(targetPID int, p links.Params) (string, error)
}
