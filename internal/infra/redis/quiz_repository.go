package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizlink-service/internal/domain"
)

// QuizLoader fetches a raw quiz document from a backing store (directory, Postgres).
type QuizLoader interface {
	LoadDocument(ctx context.Context, name string) (map[string]any, error)
}

// QuizRepository caches raw quiz documents in Redis and falls back to a loader on cache miss.
// Documents are stored as: SET quiz:{name}:document {json}
// Parsing happens on every read so a cached document follows the current parse rules.
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, name string) (domain.Quiz, error) {
	doc, err := r.document(ctx, name)
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz, ok := domain.ParseQuiz(name, doc)
	if !ok {
		return domain.Quiz{}, domain.ErrInvalidQuiz
	}
	return quiz, nil
}

func (r *QuizRepository) document(ctx context.Context, name string) (map[string]any, error) {
	key := r.documentKey(name)
	if doc, ok := r.cached(ctx, key); ok {
		return doc, nil
	}

	result, err, _ := r.sf.Do(name, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if doc, ok := r.cached(ctx, key); ok {
			return doc, nil
		}

		doc, err := r.loader.LoadDocument(ctx, name)
		if err != nil {
			return nil, err
		}

		// Cache writes are best-effort; a Redis outage degrades to loader reads.
		if data, err := json.Marshal(doc); err == nil {
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]any), nil
}

func (r *QuizRepository) cached(ctx context.Context, key string) (map[string]any, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false
	}
	return doc, true
}

func (r *QuizRepository) documentKey(name string) string {
	return "quiz:" + name + ":document"
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
