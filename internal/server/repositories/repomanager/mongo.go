package repomanager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	ErrMongoNotReady        = errors.New("failed to connect to mongo")
	ErrMongoHealthcheckFail = errors.New("mongo healthcheck failed")
)

// connectMongo creates a client and waits for the server to answer a ping.
// A malformed URI fails immediately without retrying.
func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(
		options.Client().
			ApplyURI(uri).
			SetConnectTimeout(connectTimeout).
			SetRetryWrites(true).
			SetRetryReads(true),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorBackend, errors.Join(ErrMongoNotReady, err))
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var lastErr error
	for range retryAttempts {
		if lastErr = client.Ping(ctx, nil); lastErr == nil {
			return client, nil
		}

		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
		case <-time.After(retryInterval):
			continue
		}
		break
	}

	_ = client.Disconnect(context.Background())
	return nil, fmt.Errorf("%w: %w", common.ErrorBackend, errors.Join(ErrMongoNotReady, lastErr))
}

func mongoHealthcheck(client *mongo.Client) Healthcheck {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx, nil); err != nil {
			return errors.Join(ErrMongoHealthcheckFail, err)
		}
		return nil
	}
}
