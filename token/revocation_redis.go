package token

import (
	"context"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/pkg/errors"
)

const revokedKeyPrefix = "storefront:revoked:"

// RedisClient is the part of *redis.Client the revocation cache needs
type RedisClient interface {
	Set(key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(keys ...string) *redis.IntCmd
}

var _ RedisClient = (*redis.Client)(nil)

// RedisRevokedTokenCache shares revocations between instances. Entries carry a
// TTL equal to the token's remaining lifetime, so Cleanup has nothing to do.
type RedisRevokedTokenCache struct {
	client RedisClient
	now    func() time.Time
}

func NewRedisRevokedTokenCache(client RedisClient) *RedisRevokedTokenCache {
	return &RedisRevokedTokenCache{client: client, now: time.Now}
}

// NewRedisClient connects to addr and checks the connection with PING.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping().Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "[NewRedisClient] ping %s", addr)
	}
	return client, nil
}

func (c *RedisRevokedTokenCache) Add(ctx context.Context, jti string, exp time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ttl := exp.Sub(c.now())
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(revokedKeyPrefix+jti, 1, ttl).Err(); err != nil {
		return errors.Wrap(err, "[RedisRevokedTokenCache.Add] set")
	}
	return nil
}

func (c *RedisRevokedTokenCache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	n, err := c.client.Exists(revokedKeyPrefix + jti).Result()
	if err != nil {
		return false, errors.Wrap(err, "[RedisRevokedTokenCache.IsRevoked] exists")
	}
	return n > 0, nil
}

func (c *RedisRevokedTokenCache) Cleanup() {}
