package collection

import (
	"fmt"
	"regexp"
)

var indexNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Collection is a named grouping of documents within a storage boundary.
type Collection struct {
	uid       int
	pid       int
	indexName string
	label     string
}

func validateIndexName(name string) error {
	if name == "" {
		return fmt.Errorf("collection index name is required")
	}
	if len(name) > 255 {
		return fmt.Errorf("collection index name too long (max 255)")
	}
	if !indexNameRegex.MatchString(name) {
		return fmt.Errorf("collection index name must be alphanumeric with dots, underscores and hyphens")
	}
	return nil
}

// New validates and creates a Collection.
// IndexName: ^[a-zA-Z0-9_.-]+$, 1-255 chars. UID and PID: > 0.
func New(uid, pid int, indexName, label string) (Collection, error) {
	if uid <= 0 {
		return Collection{}, fmt.Errorf("collection uid must be positive")
	}
	if pid <= 0 {
		return Collection{}, fmt.Errorf("collection pid must be positive")
	}
	if err := validateIndexName(indexName); err != nil {
		return Collection{}, err
	}
	if label == "" {
		label = indexName
	}
	return Collection{uid: uid, pid: pid, indexName: indexName, label: label}, nil
}

// Reconstruct creates a Collection without validation (storage hydration).
func Reconstruct(uid, pid int, indexName, label string) Collection {
	return Collection{uid: uid, pid: pid, indexName: indexName, label: label}
}

// UID returns the collection identifier.
func (c Collection) UID() int { return c.uid }

// PID returns the storage boundary the collection belongs to.
func (c Collection) PID() int { return c.pid }

// IndexName returns the name the search index tags documents with.
func (c Collection) IndexName() string { return c.indexName }

// Label returns the display label.
func (c Collection) Label() string { return c.label }

// IndexNames returns the index names of cols in order.
func IndexNames(cols []Collection) []string {
	if len(cols) == 0 {
		return nil
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.indexName
	}
	return names
}
