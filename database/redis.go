package database

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis backs the refresh-token blacklist used by logout and token rotation.
// When Redis is unreachable the server still runs: blacklisting becomes a
// no-op, so revoked refresh tokens stay valid until they expire.
var Redis *redis.Client

func ConnectRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection failed, token blacklist disabled: %v", err)
		return
	}

	Redis = client
	log.Printf("Connected to Redis at %s", addr)
}

// BlacklistToken records a token id as revoked until its natural expiry.
func BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if Redis == nil || ttl <= 0 {
		return nil
	}
	return Redis.Set(ctx, "blacklist:"+jti, "1", ttl).Err()
}

// IsTokenBlacklisted reports whether a token id has been revoked.
func IsTokenBlacklisted(ctx context.Context, jti string) bool {
	if Redis == nil {
		return false
	}
	err := Redis.Get(ctx, "blacklist:"+jti).Err()
	return err == nil
}
