package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
)

const sessionKeyPrefix = "scope:session:"

var _ repository.ScopeSessionStore = (*SessionStore)(nil)

// SessionStore guarda la selección (negocio, ubicación) de cada sesión con TTL.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore construye el almacén. Cada Save renueva el TTL.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Load devuelve la selección o nil si la sesión no tiene ninguna.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*repository.ScopeSelection, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session scope: %w", err)
	}
	var sel repository.ScopeSelection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return nil, fmt.Errorf("decode session scope: %w", err)
	}
	return &sel, nil
}

// Save persiste la selección.
func (s *SessionStore) Save(ctx context.Context, sessionID string, sel repository.ScopeSelection) error {
	raw, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("encode session scope: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set session scope: %w", err)
	}
	return nil
}

// Clear borra la selección.
func (s *SessionStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("del session scope: %w", err)
	}
	return nil
}
