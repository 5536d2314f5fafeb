package followup

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// PendingTable tracks recipients with an outstanding, unanswered survey
// prompt. At most one entry per recipient exists at any time; Take
// consumes the entry the moment a reply is matched.
type PendingTable interface {
	Put(ctx context.Context, chatID int64, interactionID string) error
	Take(ctx context.Context, chatID int64) (string, bool, error)
	Has(ctx context.Context, chatID int64) (bool, error)
}

// MemoryTable is the default single-process table. The mutex keeps the
// scheduler goroutine and the update loop from racing on it.
type MemoryTable struct {
	mu      sync.Mutex
	entries map[int64]string
}

// NewMemoryTable creates an empty in-memory pending table.
func NewMemoryTable() *MemoryTable {
	return &MemoryTable{entries: make(map[int64]string)}
}

func (t *MemoryTable) Put(ctx context.Context, chatID int64, interactionID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[chatID] = interactionID
	return nil
}

func (t *MemoryTable) Take(ctx context.Context, chatID int64) (string, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.entries[chatID]
	if ok {
		delete(t.entries, chatID)
	}
	return id, ok, nil
}

func (t *MemoryTable) Has(ctx context.Context, chatID int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[chatID]
	return ok, nil
}

const redisPendingKey = "followup:pending"

// RedisTable keeps the pending entries in a Redis hash so multiple
// workers observe a consistent table.
type RedisTable struct {
	client *redis.Client
}

// NewRedisTable connects to Redis and verifies the connection.
func NewRedisTable(ctx context.Context, redisURL string) (*RedisTable, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisTable{client: client}, nil
}

func (t *RedisTable) Put(ctx context.Context, chatID int64, interactionID string) error {
	return t.client.HSet(ctx, redisPendingKey, field(chatID), interactionID).Err()
}

func (t *RedisTable) Take(ctx context.Context, chatID int64) (string, bool, error) {
	id, err := t.client.HGet(ctx, redisPendingKey, field(chatID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if err := t.client.HDel(ctx, redisPendingKey, field(chatID)).Err(); err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (t *RedisTable) Has(ctx context.Context, chatID int64) (bool, error) {
	n, err := t.client.HExists(ctx, redisPendingKey, field(chatID)).Result()
	if err != nil {
		return false, err
	}
	return n, nil
}

func field(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
