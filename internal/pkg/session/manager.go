// internal/pkg/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"arrears-service/internal/domain/auth"
	xerrors "arrears-service/internal/pkg/errors"
)

// SessionData is the Redis-resident record of one active login.
type SessionData struct {
	JTI            string             `json:"jti"`
	Kind           auth.PrincipalKind `json:"kind"`
	PrincipalID    int64              `json:"principal_id"`
	IPAddress      string             `json:"ip_address,omitempty"`
	UserAgent      string             `json:"user_agent,omitempty"`
	LoginAt        time.Time          `json:"login_at"`
	LastActivityAt time.Time          `json:"last_activity_at"`
	ExpiresAt      time.Time          `json:"expires_at"`
}

// Manager stores sessions in Redis. Redis is the source of truth; a missing
// key means the session is gone.
type Manager struct {
	client *redis.Client
}

func NewManager(client *redis.Client) *Manager {
	return &Manager{client: client}
}

func (m *Manager) sessionKey(kind auth.PrincipalKind, principalID int64, jti string) string {
	return fmt.Sprintf("session:%s:%d:%s", kind, principalID, jti)
}

// CreateSession stores a new session in Redis keyed by principal and jti.
func (m *Manager) CreateSession(ctx context.Context, s *SessionData) error {
	key := m.sessionKey(s.Kind, s.PrincipalID, s.JTI)

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	if err := m.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}
	return nil
}

// GetSession retrieves an active session or ErrSessionExpired.
func (m *Manager) GetSession(ctx context.Context, kind auth.PrincipalKind, principalID int64, jti string) (*SessionData, error) {
	key := m.sessionKey(kind, principalID, jti)

	data, err := m.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, xerrors.ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s SessionData
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// RevokeSession deletes one session.
func (m *Manager) RevokeSession(ctx context.Context, kind auth.PrincipalKind, principalID int64, jti string) error {
	return m.client.Del(ctx, m.sessionKey(kind, principalID, jti)).Err()
}

// RevokeAllSessions deletes every session for the principal.
func (m *Manager) RevokeAllSessions(ctx context.Context, kind auth.PrincipalKind, principalID int64) error {
	pattern := fmt.Sprintf("session:%s:%d:*", kind, principalID)

	iter := m.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := m.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete session %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}
