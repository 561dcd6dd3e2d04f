package redis

import (
	"context"
	"testing"
	"time"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
)

type countingLoader struct {
	questions []domain.Question
	calls     int
}

func (l *countingLoader) LoadQuestions(context.Context, uuid.UUID) ([]domain.Question, error) {
	l.calls++
	return l.questions, nil
}

func TestQuestionBankCachesInRedis(t *testing.T) {
	mr, client := newTestClient(t)
	loader := &countingLoader{questions: []domain.Question{
		{ID: uuid.New(), Prompt: "first", CorrectAnswers: []string{"a"}},
		{ID: uuid.New(), Prompt: "second", CorrectAnswers: []string{"b"}},
	}}
	bank := NewQuestionBank(client, loader, time.Minute)
	ctx := context.Background()
	contestID := uuid.New()

	questions, err := bank.GetQuestions(ctx, contestID)
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if len(questions) != 2 || loader.calls != 1 {
		t.Fatalf("expected one load of 2 questions, got %d questions, %d calls", len(questions), loader.calls)
	}
	if !mr.Exists("contest:" + contestID.String() + ":questions") {
		t.Fatal("expected cached sequence in redis")
	}

	if _, err := bank.GetQuestions(ctx, contestID); err != nil {
		t.Fatalf("get questions 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}

	if err := bank.Invalidate(ctx, contestID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := bank.GetQuestions(ctx, contestID); err != nil {
		t.Fatalf("get questions 3: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, got %d calls", loader.calls)
	}
}

func TestQuestionBankSurvivesCacheFlush(t *testing.T) {
	mr, client := newTestClient(t)
	loader := &countingLoader{questions: []domain.Question{{ID: uuid.New(), Prompt: "q"}}}
	bank := NewQuestionBank(client, loader, time.Minute)
	ctx := context.Background()
	contestID := uuid.New()

	if _, err := bank.GetQuestions(ctx, contestID); err != nil {
		t.Fatalf("get questions: %v", err)
	}
	mr.FlushAll()

	questions, err := bank.GetQuestions(ctx, contestID)
	if err != nil {
		t.Fatalf("get questions after flush: %v", err)
	}
	if len(questions) != 1 || loader.calls != 2 {
		t.Fatalf("expected reload from backing store, got %d questions, %d calls", len(questions), loader.calls)
	}
}
