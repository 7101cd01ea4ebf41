package db

import (
	"strconv"
	"strings"
)

// IndexBuilder is a fluent builder for FT index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building a HASH FT index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{
		def: IndexDefinition{
			Name:        name,
			StorageType: StorageHash,
		},
	}
}

// Prefix adds key prefixes to the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Numeric adds a NUMERIC field to the index.
func (b *IndexBuilder) Numeric(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldNumeric})
}

// Tag adds a TAG field to the index.
func (b *IndexBuilder) Tag(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldTag})
}

// TagList adds a TAG field whose value holds several tags joined by separator.
func (b *IndexBuilder) TagList(name, separator string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldTag, TagSeparator: separator})
}

// Text adds a TEXT field to the index.
func (b *IndexBuilder) Text(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldText})
}

// WeightedText adds a TEXT field whose matches count weight times.
func (b *IndexBuilder) WeightedText(name string, weight float64) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldText, Weight: weight})
}

// SortKey adds a TEXT field used only for ordering (SORTABLE NOINDEX).
func (b *IndexBuilder) SortKey(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Type: IndexFieldText, Sortable: true, NoIndex: true})
}

// Sortable marks the most recently added field SORTABLE.
func (b *IndexBuilder) Sortable() *IndexBuilder {
	if n := len(b.def.Fields); n > 0 {
		b.def.Fields[n-1].Sortable = true
	}
	return b
}

func (b *IndexBuilder) add(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String returns a debug representation resembling the FT.CREATE command.
func (idx *IndexDefinition) String() string {
	parts := []string{"FT.CREATE", idx.Name}
	if idx.StorageType != "" {
		parts = append(parts, "ON", string(idx.StorageType))
	}
	if len(idx.Prefixes) > 0 {
		parts = append(parts, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		parts = append(parts, idx.Prefixes...)
	}
	parts = append(parts, "SCHEMA")
	for i := range idx.Fields {
		f := &idx.Fields[i]
		parts = append(parts, f.Name)
		switch f.Type {
		case IndexFieldTag:
			parts = append(parts, "TAG")
			if f.TagSeparator != "" {
				parts = append(parts, "SEPARATOR", f.TagSeparator)
			}
		case IndexFieldNumeric:
			parts = append(parts, "NUMERIC")
		case IndexFieldText:
			parts = append(parts, "TEXT")
			if f.Weight != 0 {
				parts = append(parts, "WEIGHT", strconv.FormatFloat(f.Weight, 'f', -1, 64))
			}
		}
		if f.Sortable {
			parts = append(parts, "SORTABLE")
		}
		if f.NoIndex {
			parts = append(parts, "NOINDEX")
		}
	}
	return strings.Join(parts, " ")
}
