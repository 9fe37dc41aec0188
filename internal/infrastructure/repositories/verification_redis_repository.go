package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/seldo/newww/internal/core/domain/account"
	"github.com/seldo/newww/internal/core/domain/verification"
	"github.com/seldo/newww/internal/core/ports"
)

// defaultVerificationPrefix namespaces pending verifications in the shared key space.
const defaultVerificationPrefix = "email_confirm" //nolint:gosec

// VerificationRedisRepository keeps pending verifications in Redis. Expiry is
// left to Redis key TTLs.
type VerificationRedisRepository struct {
	client redis.Cmdable
	prefix string
	logger *logrus.Logger
}

func NewVerificationRedisRepository(client redis.Cmdable, prefix string, logger *logrus.Logger) *VerificationRedisRepository {
	if prefix == "" {
		prefix = defaultVerificationPrefix
	}
	return &VerificationRedisRepository{client: client, prefix: prefix, logger: logger}
}

var _ ports.VerificationStore = (*VerificationRedisRepository)(nil)

func (r *VerificationRedisRepository) redisKey(key verification.Key) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

func (r *VerificationRedisRepository) Set(ctx context.Context, key verification.Key, record *verification.PendingVerification, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("verification ttl must be positive, got %s", ttl)
	}
	b, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal pending verification: %w", err)
	}

	if err := r.client.Set(ctx, r.redisKey(key), b, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store pending verification in redis: %w: %w", account.ErrStoreUnavailable, err)
	}
	return nil
}

// TakeAndDelete relies on GETDEL, so the read and the delete happen in one
// atomic command and only one caller can observe the value.
func (r *VerificationRedisRepository) TakeAndDelete(ctx context.Context, key verification.Key) (*verification.PendingVerification, error) {
	b, err := r.client.GetDel(ctx, r.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to take pending verification from redis: %w: %w", account.ErrStoreUnavailable, err)
	}

	var record verification.PendingVerification
	if err := json.Unmarshal(b, &record); err != nil {
		// the entry is already gone; an undecodable record cannot confirm anything
		if r.logger != nil {
			r.logger.WithField("lookup_key", key).WithError(err).Error("discarding undecodable pending verification")
		}
		return nil, nil
	}
	return &record, nil
}
