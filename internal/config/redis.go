package config

// Redis backs the layout response cache and the /v1 token bucket.  Both are
// optional: when the server is unreachable at startup NewRedisClient returns
// nil and the middleware degrades to a pass-through.

import (
	"context"
	"crypto/tls"
	"os"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

// RedisAddr resolves host:port from REDIS_HOST/REDIS_PORT, then REDIS_ADDR,
// then localhost:6379.
func RedisAddr() string {
	host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")
	if host != "" && port != "" {
		return host + ":" + port
	}
	return getenv("REDIS_ADDR", "localhost:6379")
}

// NewRedisClient connects using REDIS_* variables:
//
//	REDIS_HOST, REDIS_PORT  hostname and port
//	REDIS_ADDR              host:port shorthand, used when host/port are unset
//	REDIS_PASSWORD          optional password
//	REDIS_DB                database number (default 0)
//	REDIS_TLS               enable TLS when "true" or "1"
//
// A failed ping yields nil.
func NewRedisClient(ctx context.Context) *redis.Client {
	opts := &redis.Options{
		Addr:     RedisAddr(),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       envInt("REDIS_DB", 0),
	}
	if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warnf("redis: %s unreachable, cache and rate limit disabled: %v", opts.Addr, err)
		_ = client.Close()
		return nil
	}
	return client
}
