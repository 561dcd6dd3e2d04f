package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"arena-contest-service/internal/app"
	"arena-contest-service/internal/domain"
	"arena-contest-service/internal/infra/memory"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const hostID = "host-1"

type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Broadcast(evt domain.Event) {
	s.mu.Lock()
	s.events = append(s.events, evt)
	s.mu.Unlock()
}

func (s *recordingSink) count(eventType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, evt := range s.events {
		if evt.Type == eventType {
			n++
		}
	}
	return n
}

func (s *recordingSink) last(eventType string) (domain.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].Type == eventType {
			return s.events[i], true
		}
	}
	return domain.Event{}, false
}

type testEnv struct {
	service *app.ContestService
	store   *memory.Store
	sink    *recordingSink
	clock   *clockwork.FakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	clock := clockwork.NewFakeClock()
	sink := &recordingSink{}
	service := app.NewContestService(
		store,
		memory.NewQuestionBank(store, time.Minute),
		memory.NewLeaderboardCache(),
		memory.NewTimerStore(),
		sink,
		clock,
		zerolog.Nop(),
	)
	t.Cleanup(service.Shutdown)
	return &testEnv{service: service, store: store, sink: sink, clock: clock}
}

func defaultSettings() domain.ContestSettings {
	return domain.ContestSettings{
		Scoring: domain.ScoringRules{
			BasePoints:          100,
			TimeBonusEnabled:    true,
			TimeBonusMultiplier: 0.5,
		},
		AllowLateJoin: true,
		TimeLimitSec:  60,
	}
}

func (e *testEnv) createContest(t *testing.T, settings domain.ContestSettings) domain.Contest {
	t.Helper()
	contest, err := e.service.CreateContest(context.Background(), hostID, "Regional Finals", settings)
	if err != nil {
		t.Fatalf("create contest: %v", err)
	}
	return contest
}

func (e *testEnv) addQuestion(t *testing.T, contest domain.Contest, question domain.Question) domain.Question {
	t.Helper()
	added, err := e.service.AddQuestion(context.Background(), contest.ID, hostID, question)
	if err != nil {
		t.Fatalf("add question: %v", err)
	}
	return added
}

func (e *testEnv) join(t *testing.T, contest domain.Contest, userID, nickname string) domain.Participant {
	t.Helper()
	_, participant, err := e.service.JoinParticipant(context.Background(), contest.JoinCode, userID, nickname, "")
	if err != nil {
		t.Fatalf("join %s: %v", nickname, err)
	}
	return participant
}

// advanceToQuestion drives the contest through the countdown into the live
// question phase.
func (e *testEnv) advanceToQuestion(t *testing.T, contest domain.Contest) {
	t.Helper()
	ctx := context.Background()
	if err := e.service.NextQuestion(ctx, contest.ID, hostID); err != nil {
		t.Fatalf("next question: %v", err)
	}
	e.clock.BlockUntil(1)
	e.clock.Advance(3 * time.Second)
	e.waitForPhase(t, contest, domain.PhaseQuestion)
}

func (e *testEnv) waitForPhase(t *testing.T, contest domain.Contest, phase domain.Phase) {
	t.Helper()
	waitFor(t, func() bool {
		current, err := e.store.GetContest(context.Background(), contest.ID)
		return err == nil && current.Phase == phase
	})
}

// waitFor polls cond with a real-time deadline; countdown transitions fire
// on their own goroutines.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
