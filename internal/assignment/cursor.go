package assignment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CursorStore advances a per-pool round-robin cursor. Implementations must
// be atomic: two concurrent leads may never land on the same slot or skip
// one.
type CursorStore interface {
	// Next returns the next owner index for the pool, in [0, poolSize).
	Next(ctx context.Context, ruleID uuid.UUID, poolSize int) (int, error)
}

// RedisCursorStore keeps round-robin cursors in Redis, one key per rule.
// INCR is atomic, so concurrent assignments advance the cursor without a
// read-modify-write race. The cursor deliberately lives outside process
// memory: every replica shares the same rotation.
type RedisCursorStore struct {
	client *redis.Client
}

// NewRedisCursorStore creates a cursor store backed by the given client.
func NewRedisCursorStore(client *redis.Client) *RedisCursorStore {
	return &RedisCursorStore{client: client}
}

func cursorKey(ruleID uuid.UUID) string {
	return "assignment:rr:" + ruleID.String()
}

// Next atomically advances the rule's cursor and maps it onto the pool.
func (s *RedisCursorStore) Next(ctx context.Context, ruleID uuid.UUID, poolSize int) (int, error) {
	if poolSize <= 0 {
		return 0, fmt.Errorf("pool size must be positive, got %d", poolSize)
	}

	n, err := s.client.Incr(ctx, cursorKey(ruleID)).Result()
	if err != nil {
		return 0, fmt.Errorf("advance round-robin cursor: %w", err)
	}

	return int((n - 1) % int64(poolSize)), nil
}
