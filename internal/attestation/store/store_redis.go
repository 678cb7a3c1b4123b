package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"agegate/internal/attestation/models"
	"agegate/internal/clock"
	id "agegate/pkg/domain"
	"agegate/pkg/platform/sentinel"
)

const redisAttestationKeyPrefix = "attestation:"

// RedisStore persists attestations in Redis, TTL'd to their validity window.
// Eviction at the TTL equals natural expiry: checks require now <= ValidUntil,
// so an evicted entry and an expired one answer the same way. A revoked entry
// keeps its original TTL; once evicted the revocation is moot.
type RedisStore struct {
	client       *redis.Client
	clock        clock.Clock
	tickInterval time.Duration
}

// NewRedis constructs a Redis-backed attestation store. tickInterval is the
// wall-clock duration of one logical tick, used to convert the remaining
// validity window into a TTL.
func NewRedis(client *redis.Client, clk clock.Clock, tickInterval time.Duration) *RedisStore {
	return &RedisStore{
		client:       client,
		clock:        clk,
		tickInterval: tickInterval,
	}
}

func (s *RedisStore) Save(ctx context.Context, a *models.Attestation) error {
	if a == nil {
		return fmt.Errorf("attestation is required")
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode attestation: %w", err)
	}
	key := attestationKey(a.Attester, a.Subject)
	if err := s.client.Set(ctx, key, payload, s.ttlFor(a)).Err(); err != nil {
		return fmt.Errorf("save attestation: %w", err)
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, attester, subject id.Principal) (*models.Attestation, error) {
	data, err := s.client.Get(ctx, attestationKey(attester, subject)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find attestation: %w", err)
	}

	var a models.Attestation
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode attestation: %w", err)
	}
	return &a, nil
}

// ttlFor converts the attestation's remaining validity into a wall-clock TTL.
// Entries at or past their window get one tick of grace so a revocation write
// against a just-expired attestation still lands.
func (s *RedisStore) ttlFor(a *models.Attestation) time.Duration {
	now := s.clock.Now()
	remaining := uint64(1)
	if a.ValidUntil > now {
		remaining = uint64(a.ValidUntil-now) + 1
	}
	return time.Duration(remaining) * s.tickInterval
}

func attestationKey(attester, subject id.Principal) string {
	return redisAttestationKeyPrefix + attester.String() + ":" + subject.String()
}

var _ Store = (*RedisStore)(nil)
