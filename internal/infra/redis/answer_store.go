package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quizlink-service/internal/app"
)

// AnswerStores keeps answer records in Redis, one hash per browser id:
//
//	HSET quiz:answers:{clientID} {quizName} {json}
//
// The hash expiry is refreshed on every write so abandoned browsers age out.
type AnswerStores struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAnswerStores(client *redis.Client, ttl time.Duration) *AnswerStores {
	return &AnswerStores{client: client, ttl: ttl}
}

// ForClient returns the store scoped to one browser id.
func (s *AnswerStores) ForClient(clientID string) app.AnswerStore {
	return &answerStore{client: s.client, ttl: s.ttl, key: s.key(clientID)}
}

func (s *AnswerStores) key(clientID string) string {
	return "quiz:answers:" + clientID
}

type answerStore struct {
	client *redis.Client
	ttl    time.Duration
	key    string
}

func (a *answerStore) GetItem(ctx context.Context, field string) (string, bool, error) {
	value, err := a.client.HGet(ctx, a.key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis hget %s: %w", a.key, err)
	}
	return value, true, nil
}

func (a *answerStore) SetItem(ctx context.Context, field, value string) error {
	pipe := a.client.TxPipeline()
	pipe.HSet(ctx, a.key, field, value)
	if a.ttl > 0 {
		pipe.Expire(ctx, a.key, a.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis hset %s: %w", a.key, err)
	}
	return nil
}
