package redisstore

import (
	"context"

	"github.com/unkn0wn-root/redisstore/internal/util"
)

func (s *store[V]) Scan(ctx context.Context, pattern string, cursor uint64, count int64) (ScanReply, error) {
	keys, next, err := s.rdb.Scan(ctx, cursor, util.Pattern(s.prefix, pattern), count).Result()
	if err != nil {
		return ScanReply{}, err
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = util.Strip(s.prefix, k)
	}
	return ScanReply{Cursor: next, Keys: out}, nil
}

// Keys walks Scan from cursor 0 until the server returns 0.
// SCAN may repeat a key across pages; each key is reported once.
func (s *store[V]) Keys(ctx context.Context, pattern string) ([]string, error) {
	seen := make(map[string]struct{})
	keys := make([]string, 0)
	var cursor uint64
	for {
		page, err := s.Scan(ctx, pattern, cursor, defaultScanCount)
		if err != nil {
			return nil, err
		}
		for _, k := range page.Keys {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		if page.Cursor == 0 {
			return keys, nil
		}
		cursor = page.Cursor
	}
}
