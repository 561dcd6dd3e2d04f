package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches a contest's question sequence from the backing
// store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, contestID uuid.UUID) ([]domain.Question, error)
}

// QuestionBank caches question sequences with TTL to avoid repeated store
// hits on the scoring path.
type QuestionBank struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[uuid.UUID]cachedQuestions
}

type cachedQuestions struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionBank(loader QuestionLoader, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[uuid.UUID]cachedQuestions),
	}
}

func (b *QuestionBank) GetQuestions(ctx context.Context, contestID uuid.UUID) ([]domain.Question, error) {
	now := b.clock()

	b.mu.RLock()
	if entry, ok := b.cache[contestID]; ok && entry.expiresAt.After(now) {
		b.mu.RUnlock()
		return entry.questions, nil
	}
	b.mu.RUnlock()

	result, err, _ := b.sf.Do(contestID.String(), func() (interface{}, error) {
		now := b.clock()
		b.mu.RLock()
		if entry, ok := b.cache[contestID]; ok && entry.expiresAt.After(now) {
			b.mu.RUnlock()
			return entry.questions, nil
		}
		b.mu.RUnlock()

		questions, err := b.loader.LoadQuestions(ctx, contestID)
		if err != nil {
			return nil, err
		}

		b.mu.Lock()
		b.cache[contestID] = cachedQuestions{
			questions: questions,
			expiresAt: now.Add(b.ttlWithJitter()),
		}
		b.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops a contest's cached sequence, e.g. after a question edit.
func (b *QuestionBank) Invalidate(_ context.Context, contestID uuid.UUID) error {
	b.mu.Lock()
	delete(b.cache, contestID)
	b.mu.Unlock()
	return nil
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
