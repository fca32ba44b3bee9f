package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/kilter-intake/internal/models"
)

const adminSessionKeyPrefix = "kilter:admin:session:"

// RedisAdminSessionRepository keeps admin sessions in Redis with a TTL matching the token.
type RedisAdminSessionRepository struct {
	client *redis.Client
}

// NewRedisAdminSessionRepository constructs the repository.
func NewRedisAdminSessionRepository(client *redis.Client) *RedisAdminSessionRepository {
	return &RedisAdminSessionRepository{client: client}
}

// Save stores the session until its expiry.
func (r *RedisAdminSessionRepository) Save(ctx context.Context, session *models.AdminSession) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("save admin session %s: already expired", session.ID)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal admin session: %w", err)
	}
	if err := r.client.Set(ctx, adminSessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set admin session: %w", err)
	}
	return nil
}

// Exists reports whether the session is still live.
func (r *RedisAdminSessionRepository) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, adminSessionKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists admin session: %w", err)
	}
	return n > 0, nil
}

// Revoke deletes the session. Revoking an unknown session is not an error.
func (r *RedisAdminSessionRepository) Revoke(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, adminSessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete admin session: %w", err)
	}
	return nil
}

func adminSessionKey(id string) string {
	return adminSessionKeyPrefix + id
}

// MemoryAdminSessionRepository keeps admin sessions in process memory.
// Sessions do not survive a restart.
type MemoryAdminSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]models.AdminSession
	now      func() time.Time
}

// NewMemoryAdminSessionRepository constructs an empty in-memory store.
func NewMemoryAdminSessionRepository() *MemoryAdminSessionRepository {
	return &MemoryAdminSessionRepository{sessions: make(map[string]models.AdminSession), now: time.Now}
}

// Save stores the session, pruning expired ones.
func (r *MemoryAdminSessionRepository) Save(ctx context.Context, session *models.AdminSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, existing := range r.sessions {
		if !now.Before(existing.ExpiresAt) {
			delete(r.sessions, id)
		}
	}
	r.sessions[session.ID] = *session
	return nil
}

// Exists reports whether the session is present and unexpired.
func (r *MemoryAdminSessionRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return false, nil
	}
	if !r.now().Before(session.ExpiresAt) {
		delete(r.sessions, id)
		return false, nil
	}
	return true, nil
}

// Revoke removes the session.
func (r *MemoryAdminSessionRepository) Revoke(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}
