package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"hauntedadmin/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Member caching
	GetMember(ctx context.Context, memberID uuid.UUID) (*models.Member, error)
	SetMember(ctx context.Context, member *models.Member, ttl time.Duration) error
	DeleteMember(ctx context.Context, memberID uuid.UUID) error

	// Plan list caching
	GetPlans(ctx context.Context) ([]*models.Plan, error)
	SetPlans(ctx context.Context, plans []*models.Plan, ttl time.Duration) error
	InvalidatePlans(ctx context.Context) error

	// Session management
	SetSession(ctx context.Context, sessionID, adminID string, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	// Health check
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis:// and rediss:// URLs as well as plain host:port
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func memberKey(memberID uuid.UUID) string {
	return fmt.Sprintf("hauntedfam:member:%s", memberID.String())
}

func (r *redisCacheService) GetMember(ctx context.Context, memberID uuid.UUID) (*models.Member, error) {
	data, err := r.client.Get(ctx, memberKey(memberID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var member models.Member
	if err := json.Unmarshal(data, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *redisCacheService) SetMember(ctx context.Context, member *models.Member, ttl time.Duration) error {
	data, err := json.Marshal(member)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, memberKey(member.ID), data, ttl).Err()
}

func (r *redisCacheService) DeleteMember(ctx context.Context, memberID uuid.UUID) error {
	return r.client.Del(ctx, memberKey(memberID)).Err()
}

func (r *redisCacheService) GetPlans(ctx context.Context) ([]*models.Plan, error) {
	data, err := r.client.Get(ctx, "hauntedfam:plans").Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var plans []*models.Plan
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *redisCacheService) SetPlans(ctx context.Context, plans []*models.Plan, ttl time.Duration) error {
	data, err := json.Marshal(plans)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, "hauntedfam:plans", data, ttl).Err()
}

func (r *redisCacheService) InvalidatePlans(ctx context.Context) error {
	return r.client.Del(ctx, "hauntedfam:plans").Err()
}

func (r *redisCacheService) SetSession(ctx context.Context, sessionID, adminID string, ttl time.Duration) error {
	key := fmt.Sprintf("hauntedfam:session:%s", sessionID)
	return r.client.Set(ctx, key, adminID, ttl).Err()
}

func (r *redisCacheService) GetSession(ctx context.Context, sessionID string) (string, error) {
	key := fmt.Sprintf("hauntedfam:session:%s", sessionID)
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // not found
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) DeleteSession(ctx context.Context, sessionID string) error {
	key := fmt.Sprintf("hauntedfam:session:%s", sessionID)
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("hauntedfam:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
