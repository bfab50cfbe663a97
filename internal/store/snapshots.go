// Package store is the persistence boundary for cart snapshots: a Redis slot
// per session, treated as a cache, never as the source of truth.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Snapshots wraps Redis helpers for JSON cart snapshots.
type Snapshots struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewSnapshots constructs a snapshot store. A zero TTL persists without expiry.
func NewSnapshots(client *redis.Client, ttl time.Duration) *Snapshots {
	return &Snapshots{client: client, ttl: ttl, prefix: "cart:"}
}

// Save serialises v as JSON and stores it under the session key.
func (s *Snapshots) Save(ctx context.Context, sessionID string, v any) error {
	if s == nil || s.client == nil || sessionID == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+sessionID, data, s.ttl).Err()
}

// Load unmarshals the stored snapshot into dst. It reports whether a snapshot
// existed.
func (s *Snapshots) Load(ctx context.Context, sessionID string, dst any) (bool, error) {
	if s == nil || s.client == nil || sessionID == "" {
		return false, nil
	}
	data, err := s.client.Get(ctx, s.prefix+sessionID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Delete drops the persisted snapshot for the session.
func (s *Snapshots) Delete(ctx context.Context, sessionID string) error {
	if s == nil || s.client == nil || sessionID == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+sessionID).Err()
}
