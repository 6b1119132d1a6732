package presence

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a member stays "online" after their last heartbeat.
const DefaultTTL = 60 * time.Second

// Service tracks which members are currently online per workspace using
// TTL keys. A crashed client simply ages out; no sweeper is needed.
type Service struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewService(rdb *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{rdb: rdb, ttl: ttl}
}

func key(workspaceID, userID string) string {
	return fmt.Sprintf("presence:ws:%s:user:%s", workspaceID, userID)
}

// Heartbeat marks the user online in the workspace for one TTL window.
func (s *Service) Heartbeat(ctx context.Context, workspaceID, userID string) error {
	return s.rdb.Set(ctx, key(workspaceID, userID), "1", s.ttl).Err()
}

// Online lists the user IDs currently online in the workspace, sorted.
func (s *Service) Online(ctx context.Context, workspaceID string) ([]string, error) {
	pattern := fmt.Sprintf("presence:ws:%s:user:*", workspaceID)

	var (
		cursor uint64
		out    []string
	)
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			if i := strings.LastIndex(k, ":"); i >= 0 {
				out = append(out, k[i+1:])
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	sort.Strings(out)
	return out, nil
}
