// Package metadata describes the metadata fields configured for a storage boundary.
package metadata

import "fmt"

// Field is a configured metadata field.
type Field struct {
	indexName string
	label     string
	listed    bool
	sortable  bool
}

// NewField validates and creates a Field.
func NewField(indexName, label string, listed, sortable bool) (Field, error) {
	if indexName == "" {
		return Field{}, fmt.Errorf("metadata index name is required")
	}
	if label == "" {
		label = indexName
	}
	return Field{indexName: indexName, label: label, listed: listed, sortable: sortable}, nil
}

// IndexName returns the key the field is stored under in hit metadata.
func (f Field) IndexName() string { return f.indexName }

// Label returns the display label.
func (f Field) Label() string { return f.label }

// IsListed reports whether the field is shown in result listings.
func (f Field) IsListed() bool { return f.listed }

// IsSortable reports whether results may be ordered by the field.
func (f Field) IsSortable() bool { return f.sortable }

// IndexNames returns the index names of fields in order.
func IndexNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.indexName
	}
	return names
}
