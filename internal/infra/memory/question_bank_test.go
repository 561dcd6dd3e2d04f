package memory

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

func TestQuestionBankCaches(t *testing.T) {
	loader := &countingLoader{questions: []domain.Question{{ID: uuid.New(), Prompt: "q"}}}
	bank := NewQuestionBank(loader, time.Minute)
	contestID := uuid.New()

	if _, err := bank.GetQuestions(context.Background(), contestID); err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := bank.GetQuestions(context.Background(), contestID); err != nil {
		t.Fatalf("get questions 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}

	if err := bank.Invalidate(context.Background(), contestID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := bank.GetQuestions(context.Background(), contestID); err != nil {
		t.Fatalf("get questions 3: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, got %d calls", loader.calls)
	}
}
