package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"coupon-api/internal/domain"
)

// redisSessionClient cubre los comandos que usa el registro.
type redisSessionClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisSessionRegistry implementa SessionRegistry con TTL de clave como
// timeout de inactividad. Un token vencido desaparece de Redis, por lo que
// esta variante reporta ErrTokenNotFound tambien para sesiones expiradas.
type RedisSessionRegistry struct {
	client redisSessionClient
	ttl    time.Duration
	prefix string
}

func NewRedisSessionRegistry(client *redis.Client, ttl time.Duration) *RedisSessionRegistry {
	if client == nil {
		return nil
	}
	return newRedisSessionRegistry(client, ttl)
}

func newRedisSessionRegistry(client redisSessionClient, ttl time.Duration) *RedisSessionRegistry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionRegistry{
		client: client,
		ttl:    ttl,
		prefix: "session:",
	}
}

type redisSessionPayload struct {
	Role        domain.Role `json:"role"`
	PrincipalID string      `json:"principal_id"`
}

func (r *RedisSessionRegistry) key(token string) string {
	return r.prefix + token
}

func (r *RedisSessionRegistry) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 500*time.Millisecond)
}

func (r *RedisSessionRegistry) Create(role domain.Role, principalID string) (string, error) {
	payload, err := json.Marshal(redisSessionPayload{Role: role, PrincipalID: principalID})
	if err != nil {
		return "", err
	}
	token := uuid.NewString()
	ctx, cancel := r.opCtx()
	defer cancel()
	if err := r.client.Set(ctx, r.key(token), payload, r.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (r *RedisSessionRegistry) Validate(token string, requiredRole domain.Role) (Session, error) {
	ctx, cancel := r.opCtx()
	defer cancel()

	raw, err := r.client.Get(ctx, r.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrTokenNotFound
	}
	if err != nil {
		return Session{}, err
	}

	var payload redisSessionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Session{}, err
	}
	if payload.Role != requiredRole {
		r.client.Del(ctx, r.key(token))
		return Session{}, ErrRoleMismatch
	}
	return Session{
		Token:       token,
		Role:        payload.Role,
		PrincipalID: payload.PrincipalID,
	}, nil
}

func (r *RedisSessionRegistry) Touch(token string) {
	ctx, cancel := r.opCtx()
	defer cancel()
	r.client.Expire(ctx, r.key(token), r.ttl)
}

func (r *RedisSessionRegistry) Destroy(token string) {
	ctx, cancel := r.opCtx()
	defer cancel()
	r.client.Del(ctx, r.key(token))
}
