package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/teachme/platform/internal/domain"
)

const sessionPrefix = "session:"

// SessionStore implements domain.SessionStore on Redis.
// Reads slide the TTL forward; writes replace the whole value, so concurrent
// writers for the same user cannot leave a torn entry (last writer wins).
type SessionStore struct {
	client *Client
	ttl    time.Duration
}

// NewSessionStore creates a session store with the given sliding TTL.
func NewSessionStore(client *Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(userID uuid.UUID) string {
	return sessionPrefix + userID.String()
}

// Get returns the cached session, refreshing its TTL, or (nil, nil) on a miss.
func (s *SessionStore) Get(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	data, err := s.client.rdb.Get(ctx, sessionKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil // cache miss, caller rebuilds
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	// Sliding expiration: stamp and re-store on every read.
	session.ExpiresAt = time.Now().Add(s.ttl)
	if err := s.Put(ctx, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Put stores the session, replacing any existing value.
func (s *SessionStore) Put(ctx context.Context, session *domain.Session) error {
	session.ExpiresAt = time.Now().Add(s.ttl)

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.rdb.Set(ctx, sessionKey(session.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Delete removes the session, e.g. on logout.
func (s *SessionStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.rdb.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
