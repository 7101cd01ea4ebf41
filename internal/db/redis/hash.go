package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/dlf/internal/db"
)

// HSetMulti stores multiple hashes in a single DoMulti round-trip.
// Items without fields are skipped.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	cmds := make([]rueidis.Completed, 0, len(items))
	keys := make([]string, 0, len(items))
	for _, item := range items {
		if len(item.Fields) == 0 {
			continue
		}
		cmd := s.b().Hset().Key(item.Key).FieldValue()
		for k, v := range item.Fields {
			cmd = cmd.FieldValue(k, v)
		}
		cmds = append(cmds, cmd.Build())
		keys = append(keys, item.Key)
	}
	if len(cmds) == 0 {
		return nil
	}

	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Target: keys[i], Err: err}
		}
	}
	return nil
}

// HGetAllMulti fetches all fields for multiple hashes in a single DoMulti round-trip.
// Missing keys yield empty maps at their position.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Hgetall().Key(key).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]map[string]string, len(results))
	for i, res := range results {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, &db.Error{Op: db.OpHGetAll, Target: keys[i], Err: err}
		}
		out[i] = m
	}
	return out, nil
}
