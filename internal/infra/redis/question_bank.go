package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches a contest's question sequence from the backing
// store (Postgres in production).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, contestID uuid.UUID) ([]domain.Question, error)
}

// QuestionBank caches the full question sequence of a contest as JSON
// under contest:{id}:questions, falling back to the loader on a miss.
// Concurrent misses collapse into one load via singleflight.
type QuestionBank struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionBank(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *QuestionBank) GetQuestions(ctx context.Context, contestID uuid.UUID) ([]domain.Question, error) {
	key := b.key(contestID)

	if raw, err := b.client.Get(ctx, key).Bytes(); err == nil && len(raw) > 0 {
		var questions []domain.Question
		if err := json.Unmarshal(raw, &questions); err == nil {
			return questions, nil
		}
	}

	result, err, _ := b.sf.Do(contestID.String(), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := b.client.Get(ctx, key).Bytes(); err == nil && len(raw) > 0 {
			var questions []domain.Question
			if err := json.Unmarshal(raw, &questions); err == nil {
				return questions, nil
			}
		}

		questions, err := b.loader.LoadQuestions(ctx, contestID)
		if err != nil {
			return nil, err
		}

		if raw, err := json.Marshal(questions); err == nil {
			_ = b.client.Set(ctx, key, raw, b.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops the cached sequence, e.g. after a question edit.
func (b *QuestionBank) Invalidate(ctx context.Context, contestID uuid.UUID) error {
	return b.client.Del(ctx, b.key(contestID)).Err()
}

func (b *QuestionBank) key(contestID uuid.UUID) string {
	return "contest:" + contestID.String() + ":questions"
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
