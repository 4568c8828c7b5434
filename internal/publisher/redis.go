// Package publisher mirrors refreshed report payloads into Redis so other
// services can read the latest report or follow the update stream without
// hitting the HTTP API.
package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/sideline/internal/report"
)

const (
	latestKey    = "sideline:report:latest"
	updateStream = "sideline:report:updates"
)

// RedisPublisher publishes report payloads to Redis
type RedisPublisher struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPublisher creates a new Redis publisher. The latest-report key
// expires after ttl so consumers never read a report the service stopped
// refreshing.
func NewRedisPublisher(redisURL string, ttl time.Duration) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisPublisher{client: client, ttl: ttl}, nil
}

// Close closes the Redis connection
func (rp *RedisPublisher) Close() error {
	return rp.client.Close()
}

// PublishReport stores the payload under the latest-report key and appends
// an entry to the update stream.
func (rp *RedisPublisher) PublishReport(ctx context.Context, payload report.Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if err := rp.client.Set(ctx, latestKey, string(data), rp.ttl).Err(); err != nil {
		return err
	}

	values := map[string]interface{}{
		"data":      string(data),
		"timestamp": time.Now().Unix(),
	}
	if payload.Meta != nil {
		values["pdfName"] = payload.Meta.PDFName
	}
	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: updateStream,
		Values: values,
	}).Err()
}
