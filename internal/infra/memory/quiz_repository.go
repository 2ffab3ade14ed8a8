package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizlink-service/internal/domain"
)

// QuizLoader fetches a raw quiz document (decoded JSON object) by name.
type QuizLoader interface {
	LoadDocument(ctx context.Context, name string) (map[string]any, error)
}

// QuizRepository parses quiz documents and caches the result with a TTL.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

// GetQuiz returns the parsed quiz. Documents without a questions list yield
// domain.ErrInvalidQuiz and are not cached.
func (r *QuizRepository) GetQuiz(ctx context.Context, name string) (domain.Quiz, error) {
	if quiz, ok := r.cached(name); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(name, func() (interface{}, error) {
		if quiz, ok := r.cached(name); ok {
			return quiz, nil
		}

		doc, err := r.loader.LoadDocument(ctx, name)
		if err != nil {
			return domain.Quiz{}, err
		}
		quiz, ok := domain.ParseQuiz(name, doc)
		if !ok {
			return domain.Quiz{}, domain.ErrInvalidQuiz
		}

		if r.ttl > 0 {
			r.mu.Lock()
			r.cache[name] = cachedQuiz{
				quiz:      quiz,
				expiresAt: r.clock().Add(r.ttlWithJitter()),
			}
			r.mu.Unlock()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) cached(name string) (domain.Quiz, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[name]; ok && entry.expiresAt.After(now) {
		return entry.quiz, true
	}
	return domain.Quiz{}, false
}

// StaticQuizLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticQuizLoader struct {
	docs map[string]map[string]any
}

func NewStaticQuizLoader(docs map[string]map[string]any) *StaticQuizLoader {
	return &StaticQuizLoader{docs: docs}
}

func (l *StaticQuizLoader) LoadDocument(_ context.Context, name string) (map[string]any, error) {
	if doc, ok := l.docs[name]; ok {
		return doc, nil
	}
	return nil, domain.ErrQuizNotFound
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
