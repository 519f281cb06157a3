package repomanager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"github.com/redis/go-redis/v9"
)

const (
	connectTimeout = 10 * time.Second
	retryAttempts  = 3
	retryInterval  = time.Second
)

var (
	ErrRedisURL      = errors.New("failed to parse redis connection string")
	ErrRedisNotReady = errors.New("redis did not become ready")
)

// connectRedis parses url and pings the server, retrying a few times
// before giving up.
func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrRedisURL, err)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var lastErr error
	for range retryAttempts {
		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", common.ErrorBackend, errors.Join(ErrRedisNotReady, ctx.Err()))
		case <-time.After(retryInterval):
		}
	}

	return nil, fmt.Errorf("%w: %w", common.ErrorBackend, errors.Join(ErrRedisNotReady, lastErr))
}
