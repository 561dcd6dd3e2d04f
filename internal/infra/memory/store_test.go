package memory

import (
	"context"
	"testing"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
)

func seedContest(t *testing.T, store *Store) domain.Contest {
	t.Helper()
	contest := domain.Contest{ID: uuid.New(), HostID: "host", JoinCode: "ABCDEF", Status: domain.StatusDraft, Phase: domain.PhaseSetup, CurrentQuestionIndex: -1}
	if err := store.CreateContest(context.Background(), &contest); err != nil {
		t.Fatalf("create contest: %v", err)
	}
	return contest
}

func TestInsertSubmissionEnforcesUniqueness(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	questionID, participantID := uuid.New(), uuid.New()

	first := domain.Submission{ID: uuid.New(), QuestionID: questionID, ParticipantID: participantID}
	if err := store.InsertSubmission(ctx, &first); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	dup := domain.Submission{ID: uuid.New(), QuestionID: questionID, ParticipantID: participantID}
	if err := store.InsertSubmission(ctx, &dup); err != domain.ErrAlreadySubmitted {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}

	// The winner is findable by its natural key.
	found, err := store.FindSubmission(ctx, questionID, participantID)
	if err != nil || found.ID != first.ID {
		t.Fatalf("expected first submission, got %+v (%v)", found, err)
	}
}

func TestAddQuestionAssignsDenseOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	contest := seedContest(t, store)

	for i := 0; i < 3; i++ {
		question := domain.Question{ID: uuid.New(), ContestID: contest.ID}
		if err := store.AddQuestion(ctx, &question); err != nil {
			t.Fatalf("add question: %v", err)
		}
		if question.Order != i {
			t.Fatalf("expected order %d, got %d", i, question.Order)
		}
	}

	questions, err := store.LoadQuestions(ctx, contest.ID)
	if err != nil {
		t.Fatalf("load questions: %v", err)
	}
	for i, question := range questions {
		if question.Order != i {
			t.Fatalf("expected sorted dense orders, got %v", questions)
		}
	}

	current, _ := store.GetContest(ctx, contest.ID)
	if current.QuestionCount != 3 {
		t.Fatalf("expected question count 3, got %d", current.QuestionCount)
	}
}

func TestIncrementScoreReturnsUpdatedRow(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	participant := domain.Participant{ID: uuid.New(), ContestID: uuid.New(), Nickname: "Alice"}
	_ = store.CreateParticipant(ctx, &participant)

	updated, err := store.IncrementScore(ctx, participant.ID, 125, 1, 0)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if updated.TotalScore != 125 || updated.CorrectCount != 1 {
		t.Fatalf("unexpected totals %+v", updated)
	}

	updated, _ = store.IncrementScore(ctx, participant.ID, -45, 0, 0)
	if updated.TotalScore != 80 {
		t.Fatalf("expected 80 after delta, got %d", updated.TotalScore)
	}
}

func TestCreateTeamRejectsActiveDuplicateName(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	contestID := uuid.New()

	team := domain.Team{ID: uuid.New(), ContestID: contestID, Name: "Falcons", Active: true}
	if err := store.CreateTeam(ctx, &team); err != nil {
		t.Fatalf("create team: %v", err)
	}
	dup := domain.Team{ID: uuid.New(), ContestID: contestID, Name: "FALCONS", Active: true}
	if err := store.CreateTeam(ctx, &dup); err != domain.ErrDuplicateTeamName {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}

	// An inactive team frees its name.
	team.Active = false
	if err := store.UpdateTeam(ctx, &team); err != nil {
		t.Fatalf("deactivate team: %v", err)
	}
	if err := store.CreateTeam(ctx, &dup); err != nil {
		t.Fatalf("expected freed name, got %v", err)
	}
}

func TestTeamReadsAreCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	team := domain.Team{
		ID:        uuid.New(),
		ContestID: uuid.New(),
		Name:      "Falcons",
		Active:    true,
		Members:   []domain.TeamMember{{ParticipantID: uuid.New(), Nickname: "Alice"}},
	}
	_ = store.CreateTeam(ctx, &team)

	read, _ := store.GetTeam(ctx, team.ID)
	read.Members[0].Nickname = "mutated"

	again, _ := store.GetTeam(ctx, team.ID)
	if again.Members[0].Nickname != "Alice" {
		t.Fatal("stored team mutated through a read copy")
	}
}
