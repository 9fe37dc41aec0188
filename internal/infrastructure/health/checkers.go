package health

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/seldo/newww/internal/core/ports"
	infraDB "github.com/seldo/newww/internal/infrastructure/db"
)

// pinger is anything that can answer a liveness ping.
type pinger interface {
	Ping(ctx context.Context) error
}

// dbHealthChecker probes the account database.
type dbHealthChecker struct{ db pinger }

func (d *dbHealthChecker) Name() string                    { return "database" }
func (d *dbHealthChecker) Check(ctx context.Context) error { return d.db.Ping(ctx) }

// redisHealthChecker probes the verification store.
type redisHealthChecker struct{ client redis.Cmdable }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

// NewDBHealthChecker creates a health checker for the database.
func NewDBHealthChecker(db *infraDB.Database) ports.HealthChecker { return &dbHealthChecker{db: db} }

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client redis.Cmdable) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}
