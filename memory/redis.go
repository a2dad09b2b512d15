package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists snapshots in Redis under a key prefix. SET of a single
// key is atomic on the server, satisfying the Store contract without a
// temp-and-rename dance. Useful when sessions outlive one process or host.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisStoreOptions configure a RedisStore.
type RedisStoreOptions struct {
	// Prefix namespaces snapshot keys. Defaults to "envagent:snapshot:".
	Prefix string
	// TTL expires snapshots after the given duration; zero keeps them forever.
	TTL time.Duration
}

// NewRedisStore creates a Store backed by an existing Redis client.
func NewRedisStore(client *redis.Client, optFns ...func(o *RedisStoreOptions)) *RedisStore {
	opts := RedisStoreOptions{Prefix: "envagent:snapshot:"}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RedisStore{client: client, prefix: opts.Prefix, ttl: opts.TTL}
}

func (s *RedisStore) key(sessionID string) string { return s.prefix + sessionID }

// Save stores the snapshot under the session key.
func (s *RedisStore) Save(ctx context.Context, sessionID string, snapshot []byte) error {
	if err := s.client.Set(ctx, s.key(sessionID), snapshot, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis save snapshot: %w", err)
	}
	return nil
}

// Load fetches the snapshot, mapping a missing key to ErrSnapshotNotFound.
func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, sessionID)
		}
		return nil, fmt.Errorf("redis load snapshot: %w", err)
	}
	return data, nil
}
