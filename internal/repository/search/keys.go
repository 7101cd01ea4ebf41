package search

import (
	"fmt"

	"github.com/kailas-cloud/dlf/internal/db"
)

// Keyspace names the indexes and hash keys of one search core.
type Keyspace struct {
	prefix string
	core   string
}

// NewKeyspace validates core and creates its Keyspace.
func NewKeyspace(prefix, core string) (Keyspace, error) {
	if !db.IsValidIdentifier(core) {
		return Keyspace{}, fmt.Errorf("invalid core name %q", core)
	}
	return Keyspace{prefix: prefix, core: core}, nil
}

// DocIndex is the metadata index over document hashes.
func (k Keyspace) DocIndex() string { return k.prefix + k.core + ":doc:idx" }

// DocPrefix is the key prefix of document hashes.
func (k Keyspace) DocPrefix() string { return k.prefix + k.core + ":doc:" }

// DocKey is the hash key of document uid.
func (k Keyspace) DocKey(uid int) string { return fmt.Sprintf("%s%d", k.DocPrefix(), uid) }

// PageIndex is the fulltext index over page hashes.
func (k Keyspace) PageIndex() string { return k.prefix + k.core + ":page:idx" }

// PagePrefix is the key prefix of page hashes.
func (k Keyspace) PagePrefix() string { return k.prefix + k.core + ":page:" }

// PageKey is the hash key of page number page of document uid.
func (k Keyspace) PageKey(uid, page int) string {
	return fmt.Sprintf("%s%d:%d", k.PagePrefix(), uid, page)
}
