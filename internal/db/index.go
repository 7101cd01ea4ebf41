package db

import (
	"errors"
	"fmt"
)

// StorageType defines the document storage backend for FT indexes.
type StorageType string

const (
	// StorageHash stores documents as Redis hashes.
	StorageHash StorageType = "HASH"
)

// IndexFieldType enumerates supported FT index field types.
type IndexFieldType int

const (
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric IndexFieldType = iota
	// IndexFieldTag is a tag field.
	IndexFieldTag
	// IndexFieldText is a text field.
	IndexFieldText
)

// IndexField describes a single field in an FT index schema.
type IndexField struct {
	Name string
	Type IndexFieldType

	// TagSeparator splits a TAG value into several tags, e.g. a collection list.
	TagSeparator string

	// Weight scales TEXT matches on this field; 0 keeps the engine default of 1.
	Weight float64

	// Sortable allows SORTBY on the field; NoIndex keeps it out of query matching.
	Sortable bool
	NoIndex  bool
}

// IndexDefinition is a complete FT index definition used by FT.CREATE.
type IndexDefinition struct {
	Name        string
	StorageType StorageType
	Prefixes    []string
	Fields      []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("field name is required at index %d", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field name: %s", f.Name)
		}
		seen[f.Name] = true

		if f.NoIndex && !f.Sortable {
			return fmt.Errorf("NOINDEX field must be sortable: %s", f.Name)
		}
		if f.Weight < 0 {
			return fmt.Errorf("negative weight on field %s", f.Name)
		}
		if f.Weight != 0 && f.Type != IndexFieldText {
			return fmt.Errorf("weight is only valid on TEXT fields: %s", f.Name)
		}
	}

	return nil
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
