package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/kailas-cloud/dlf/internal/db"
)

// CreateIndex creates an FT index from the given definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Target: def.Name, Err: err}
	}
	return nil
}

// IndexExists probes index existence via FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isUnknownIndex(err) {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Target: name, Err: err}
	}
	return true, nil
}

// isUnknownIndex matches the Redis 8 and the RediSearch module wording.
func isUnknownIndex(err error) bool {
	return isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index")
}

func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	args := []string{idx.Name}

	storage := idx.StorageType
	if storage == "" {
		storage = db.StorageHash
	}
	args = append(args, "ON", string(storage))

	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}

	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		fieldArgs, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}

	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	args := []string{f.Name}

	switch f.Type {
	case db.IndexFieldNumeric:
		args = append(args, "NUMERIC")

	case db.IndexFieldText:
		args = append(args, "TEXT")
		if f.Weight != 0 {
			args = append(args, "WEIGHT", strconv.FormatFloat(f.Weight, 'f', -1, 64))
		}

	case db.IndexFieldTag:
		args = append(args, "TAG")
		if f.TagSeparator != "" {
			args = append(args, "SEPARATOR", f.TagSeparator)
		}

	default:
		return nil, errors.New("unknown field type")
	}

	if f.Sortable {
		args = append(args, "SORTABLE")
	}
	if f.NoIndex {
		args = append(args, "NOINDEX")
	}

	return args, nil
}
