package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"matha-service/internal/app"
	"matha-service/internal/domain"
)

// QuestionCache caches question sets with TTL to avoid repeated store hits.
type QuestionCache struct {
	loader app.QuestionRepository
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedQuestions
}

type cachedQuestions struct {
	questions []domain.QuizQuestion
	expiresAt time.Time
}

func NewQuestionCache(loader app.QuestionRepository, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuestions),
	}
}

func (c *QuestionCache) FindQuestions(ctx context.Context, categoryID string, difficulty domain.Difficulty, limit int) ([]domain.QuizQuestion, error) {
	key := cacheKey(categoryID, difficulty, limit)
	if questions, ok := c.lookup(key); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another caller filled it.
		if questions, ok := c.lookup(key); ok {
			return questions, nil
		}
		questions, err := c.loader.FindQuestions(ctx, categoryID, difficulty, limit)
		if err != nil {
			return nil, err
		}
		// Empty sets are not cached so newly seeded questions show up at once.
		if len(questions) > 0 {
			c.mu.Lock()
			c.cache[key] = cachedQuestions{
				questions: questions,
				expiresAt: c.clock().Add(c.ttlWithJitter()),
			}
			c.mu.Unlock()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return copyQuestions(result.([]domain.QuizQuestion)), nil
}

func (c *QuestionCache) lookup(key string) ([]domain.QuizQuestion, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[key]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	return copyQuestions(entry.questions), true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func cacheKey(categoryID string, difficulty domain.Difficulty, limit int) string {
	return categoryID + "|" + string(difficulty) + "|" + strconv.Itoa(limit)
}

func copyQuestions(in []domain.QuizQuestion) []domain.QuizQuestion {
	out := make([]domain.QuizQuestion, len(in))
	for i, q := range in {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
