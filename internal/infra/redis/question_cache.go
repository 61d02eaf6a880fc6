package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"matha-service/internal/app"
	"matha-service/internal/domain"
)

// QuestionCache caches question sets in Redis and falls back to a loader on
// cache miss. A set is stored as a JSON array:
//
//	SET quiz:questions:{categoryID}:{difficulty}:{limit} [...] EX ttl
type QuestionCache struct {
	client *redis.Client
	loader app.QuestionRepository
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuestionCache(client *redis.Client, loader app.QuestionRepository, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) FindQuestions(ctx context.Context, categoryID string, difficulty domain.Difficulty, limit int) ([]domain.QuizQuestion, error) {
	key := questionsKey(categoryID, difficulty, limit)
	if questions, ok := c.lookup(ctx, key); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := c.lookup(ctx, key); ok {
			return questions, nil
		}
		questions, err := c.loader.FindQuestions(ctx, categoryID, difficulty, limit)
		if err != nil {
			return nil, err
		}
		if len(questions) > 0 {
			if payload, err := json.Marshal(questions); err == nil {
				// A failed write only costs a reload next time.
				_ = c.client.Set(ctx, key, payload, c.ttlWithJitter()).Err()
			}
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.QuizQuestion), nil
}

// Invalidate drops the cached sets for a category.
func (c *QuestionCache) Invalidate(ctx context.Context, categoryID string) error {
	iter := c.client.Scan(ctx, 0, "quiz:questions:"+categoryID+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *QuestionCache) lookup(ctx context.Context, key string) ([]domain.QuizQuestion, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var questions []domain.QuizQuestion
	if err := json.Unmarshal(raw, &questions); err != nil || len(questions) == 0 {
		return nil, false
	}
	return questions, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func questionsKey(categoryID string, difficulty domain.Difficulty, limit int) string {
	return "quiz:questions:" + categoryID + ":" + string(difficulty) + ":" + strconv.Itoa(limit)
}

func isNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
