package app_test

import (
	"context"
	"sync"
	"testing"

	"arena-contest-service/internal/domain"
)

// liveQuestion drives a fresh contest into the question phase and returns
// the contest, active question and one joined participant.
func liveQuestion(t *testing.T, env *testEnv, settings domain.ContestSettings, question domain.Question) (domain.Contest, domain.Question, domain.Participant) {
	t.Helper()
	ctx := context.Background()
	contest := env.createContest(t, settings)
	added := env.addQuestion(t, contest, question)
	participant := env.join(t, contest, "", "Alice")
	if err := env.service.StartContest(ctx, contest.ID, hostID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	env.advanceToQuestion(t, contest)
	return contest, added, participant
}

func TestSubmitAwardsTimeBonus(t *testing.T) {
	env := newTestEnv(t)
	contest, question, participant := liveQuestion(t, env, defaultSettings(), domain.Question{
		Prompt:         "2+2?",
		CorrectAnswers: []string{"4"},
	})

	// base 100, multiplier 0.5, 30s of a 60s limit: 100 + 100*0.5*0.5 = 125.
	submission, err := env.service.Submit(context.Background(), contest.ID, question.ID, participant.ID, []string{"4"}, 30_000)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !submission.Correct || submission.Points != 125 || submission.TimeBonus != 25 {
		t.Fatalf("expected correct/125/25, got %+v", submission)
	}

	updated, _ := env.store.GetParticipant(context.Background(), participant.ID)
	if updated.TotalScore != 125 || updated.CorrectCount != 1 || updated.WrongCount != 0 {
		t.Fatalf("expected totals 125/1/0, got %d/%d/%d", updated.TotalScore, updated.CorrectCount, updated.WrongCount)
	}
}

func TestSubmitAtLimitEarnsNoBonus(t *testing.T) {
	env := newTestEnv(t)
	contest, question, participant := liveQuestion(t, env, defaultSettings(), domain.Question{
		Prompt:         "q",
		CorrectAnswers: []string{"a"},
	})

	submission, err := env.service.Submit(context.Background(), contest.ID, question.ID, participant.ID, []string{"a"}, 60_000)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if submission.Points != 100 || submission.TimeBonus != 0 {
		t.Fatalf("expected 100/0 at the limit, got %d/%d", submission.Points, submission.TimeBonus)
	}
}

func TestWrongAnswerPenalty(t *testing.T) {
	env := newTestEnv(t)
	settings := defaultSettings()
	settings.Scoring.PenaltyEnabled = true
	settings.Scoring.PenaltyPoints = 20
	contest, question, participant := liveQuestion(t, env, settings, domain.Question{
		Prompt:         "q",
		CorrectAnswers: []string{"a"},
	})

	submission, err := env.service.Submit(context.Background(), contest.ID, question.ID, participant.ID, []string{"b"}, 10_000)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if submission.Correct || submission.Points != -20 {
		t.Fatalf("expected -20 penalty, got %+v", submission)
	}

	updated, _ := env.store.GetParticipant(context.Background(), participant.ID)
	if updated.TotalScore != -20 || updated.WrongCount != 1 {
		t.Fatalf("expected -20 total and one wrong, got %d/%d", updated.TotalScore, updated.WrongCount)
	}
}

func TestDuplicateSubmissionRejected(t *testing.T) {
	env := newTestEnv(t)
	contest, question, participant := liveQuestion(t, env, defaultSettings(), domain.Question{
		Prompt:         "q",
		CorrectAnswers: []string{"a"},
	})
	ctx := context.Background()

	if _, err := env.service.Submit(ctx, contest.ID, question.ID, participant.ID, []string{"a"}, 5_000); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if _, err := env.service.Submit(ctx, contest.ID, question.ID, participant.ID, []string{"b"}, 6_000); err != domain.ErrAlreadySubmitted {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}

	// The rejected duplicate must not touch the totals.
	// round(100*0.5*(1-5/60)) = 46 bonus on the first submit.
	updated, _ := env.store.GetParticipant(ctx, participant.ID)
	if updated.TotalScore != 146 {
		t.Fatalf("expected total 146 after duplicate rejection, got %d", updated.TotalScore)
	}
	if updated.CorrectCount != 1 || updated.WrongCount != 0 {
		t.Fatalf("expected 1 correct, 0 wrong, got %d/%d", updated.CorrectCount, updated.WrongCount)
	}
}

func TestConcurrentDuplicateSubmissionsSingleWinner(t *testing.T) {
	env := newTestEnv(t)
	contest, question, participant := liveQuestion(t, env, defaultSettings(), domain.Question{
		Prompt:         "q",
		CorrectAnswers: []string{"a"},
	})
	ctx := context.Background()

	const attempts = 8
	errs := make(chan error, attempts)
	var gate sync.WaitGroup
	gate.Add(1)
	for i := 0; i < attempts; i++ {
		go func() {
			gate.Wait()
			_, err := env.service.Submit(ctx, contest.ID, question.ID, participant.ID, []string{"a"}, 5_000)
			errs <- err
		}()
	}
	gate.Done()

	won, rejected := 0, 0
	for i := 0; i < attempts; i++ {
		switch err := <-errs; err {
		case nil:
			won++
		case domain.ErrAlreadySubmitted:
			rejected++
		default:
			t.Fatalf("unexpected submit error: %v", err)
		}
	}
	if won != 1 || rejected != attempts-1 {
		t.Fatalf("expected exactly one winning submit, got %d winners and %d rejections", won, rejected)
	}

	// round(100*0.5*(1-5/60)) = 46 bonus, scored exactly once.
	updated, _ := env.store.GetParticipant(ctx, participant.ID)
	if updated.TotalScore != 146 || updated.CorrectCount != 1 || updated.WrongCount != 0 {
		t.Fatalf("expected totals 146/1/0, got %d/%d/%d", updated.TotalScore, updated.CorrectCount, updated.WrongCount)
	}
}

func TestQuestionAddedAfterJoinIsScorable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contest := env.createContest(t, defaultSettings())

	// Joining warms the question cache while the contest has no questions;
	// a question added afterwards must still be visible to scoring.
	participant := env.join(t, contest, "", "Alice")
	question := env.addQuestion(t, contest, domain.Question{Prompt: "q", CorrectAnswers: []string{"a"}})

	if err := env.service.StartContest(ctx, contest.ID, hostID); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	env.advanceToQuestion(t, contest)

	submission, err := env.service.Submit(ctx, contest.ID, question.ID, participant.ID, []string{"a"}, 60_000)
	if err != nil {
		t.Fatalf("submit of late-added question failed: %v", err)
	}
	if !submission.Correct || submission.Points != 100 {
		t.Fatalf("expected correct/100, got %+v", submission)
	}
}

func TestSubmissionStreamedToRefereeRoom(t *testing.T) {
	env := newTestEnv(t)
	contest, question, participant := liveQuestion(t, env, defaultSettings(), domain.Question{
		Prompt:         "q",
		CorrectAnswers: []string{"a"},
	})

	if _, err := env.service.Submit(context.Background(), contest.ID, question.ID, participant.ID, []string{"a"}, 5_000); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	event, ok := env.sink.last(domain.EventSubmissionReceived)
	if !ok {
		t.Fatal("no submission event broadcast")
	}
	if event.Scope != domain.ScopeReferees {
		t.Fatalf("submission event leaked beyond the referee room: scope %q", event.Scope)
	}
	payload, ok := event.Payload.(map[string]any)
	if !ok {
		t.Fatalf("unexpected payload %T", event.Payload)
	}
	if payload["nickname"] != "Alice" || payload["correct"] != true {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestMultiSelectComparesAsSets(t *testing.T) {
	env := newTestEnv(t)
	contest, question, participant := liveQuestion(t, env, defaultSettings(), domain.Question{
		Prompt:         "primes under 6?",
		Options:        []string{"2", "3", "4", "5"},
		CorrectAnswers: []string{"2", "3", "5"},
		MultiSelect:    true,
	})

	submission, err := env.service.Submit(context.Background(), contest.ID, question.ID, participant.ID, []string{"5", "2", "3"}, 10_000)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !submission.Correct {
		t.Fatal("order must not matter for multi-select answers")
	}
}

func TestMultiSelectRejectsSubsetAndDuplicates(t *testing.T) {
	env := newTestEnv(t)
	env2 := newTestEnv(t)
	for _, tc := range []struct {
		name   string
		env    *testEnv
		answer []string
	}{
		{"subset", env, []string{"2", "3"}},
		{"duplicates", env2, []string{"2", "2", "3"}},
	} {
		contest, question, participant := liveQuestion(t, tc.env, defaultSettings(), domain.Question{
			Prompt:         "primes under 6?",
			CorrectAnswers: []string{"2", "3", "5"},
			MultiSelect:    true,
		})
		submission, err := tc.env.service.Submit(context.Background(), contest.ID, question.ID, participant.ID, tc.answer, 10_000)
		if err != nil {
			t.Fatalf("%s: submit failed: %v", tc.name, err)
		}
		if submission.Correct {
			t.Fatalf("%s: expected incorrect", tc.name)
		}
	}
}

func TestSubmitOutsideQuestionPhaseRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	contest := env.createContest(t, defaultSettings())
	question := env.addQuestion(t, contest, domain.Question{Prompt: "q", CorrectAnswers: []string{"a"}})
	participant := env.join(t, contest, "", "Alice")
	_ = env.service.StartContest(ctx, contest.ID, hostID)

	if _, err := env.service.Submit(ctx, contest.ID, question.ID, participant.ID, []string{"a"}, 1_000); err != domain.ErrInvalidTransition {
		t.Fatalf("expected submission outside question phase to fail, got %v", err)
	}
}

func TestOverrideScorePropagatesDelta(t *testing.T) {
	env := newTestEnv(t)
	contest, question, participant := liveQuestion(t, env, defaultSettings(), domain.Question{
		Prompt:         "q",
		CorrectAnswers: []string{"a"},
	})
	ctx := context.Background()

	submission, err := env.service.Submit(ctx, contest.ID, question.ID, participant.ID, []string{"a"}, 30_000)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	// 125 awarded; referee corrects to 80.
	if err := env.service.OverrideScore(ctx, contest.ID, submission.ID, hostID, 80, "partial credit"); err != nil {
		t.Fatalf("override failed: %v", err)
	}

	updated, _ := env.store.GetParticipant(ctx, participant.ID)
	if updated.TotalScore != 80 {
		t.Fatalf("expected total 80 after override, got %d", updated.TotalScore)
	}
	stored, _ := env.store.GetSubmission(ctx, submission.ID)
	if stored.Points != 80 || stored.Override == nil {
		t.Fatalf("expected audited override, got %+v", stored)
	}
	if stored.Override.OriginalScore != 125 || stored.Override.NewScore != 80 || stored.Override.RefereeID != hostID {
		t.Fatalf("bad audit record: %+v", stored.Override)
	}

	// A second override applies its delta against the current points, not
	// the original award.
	if err := env.service.OverrideScore(ctx, contest.ID, submission.ID, hostID, 110, "revised"); err != nil {
		t.Fatalf("second override failed: %v", err)
	}
	updated, _ = env.store.GetParticipant(ctx, participant.ID)
	if updated.TotalScore != 110 {
		t.Fatalf("expected total 110 after second override, got %d", updated.TotalScore)
	}
}

func TestOverrideRequiresPermission(t *testing.T) {
	env := newTestEnv(t)
	contest, question, participant := liveQuestion(t, env, defaultSettings(), domain.Question{
		Prompt:         "q",
		CorrectAnswers: []string{"a"},
	})
	ctx := context.Background()
	submission, _ := env.service.Submit(ctx, contest.ID, question.ID, participant.ID, []string{"a"}, 30_000)

	if err := env.service.OverrideScore(ctx, contest.ID, submission.ID, "ref-1", 10, ""); err != domain.ErrNotAuthorized {
		t.Fatalf("expected unknown referee rejection, got %v", err)
	}

	if _, err := env.service.AddReferee(ctx, contest.ID, hostID, "ref-1", "Ruth", []domain.RefereePermission{domain.PermManualJudge}); err != nil {
		t.Fatalf("add referee: %v", err)
	}
	if err := env.service.OverrideScore(ctx, contest.ID, submission.ID, "ref-1", 10, ""); err != domain.ErrNotAuthorized {
		t.Fatalf("expected missing permission rejection, got %v", err)
	}

	if _, err := env.service.AddReferee(ctx, contest.ID, hostID, "ref-2", "Rita", []domain.RefereePermission{domain.PermOverrideScore}); err != nil {
		t.Fatalf("add referee: %v", err)
	}
	if err := env.service.OverrideScore(ctx, contest.ID, submission.ID, "ref-2", 10, ""); err != nil {
		t.Fatalf("permitted override failed: %v", err)
	}
}

func TestManualJudgeFlipsVerdict(t *testing.T) {
	env := newTestEnv(t)
	settings := defaultSettings()
	settings.Scoring.PenaltyEnabled = true
	settings.Scoring.PenaltyPoints = 20
	contest, question, participant := liveQuestion(t, env, settings, domain.Question{
		Prompt:         "free text",
		CorrectAnswers: []string{"mitochondria"},
	})
	ctx := context.Background()

	submission, err := env.service.Submit(ctx, contest.ID, question.ID, participant.ID, []string{"the mitochondria"}, 10_000)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if submission.Correct || submission.Points != -20 {
		t.Fatalf("expected auto-judged wrong with -20, got %+v", submission)
	}

	if err := env.service.ManualJudge(ctx, contest.ID, submission.ID, hostID, true, "acceptable phrasing"); err != nil {
		t.Fatalf("manual judge failed: %v", err)
	}

	updated, _ := env.store.GetParticipant(ctx, participant.ID)
	if updated.TotalScore != 100 {
		t.Fatalf("expected total 100 after flip, got %d", updated.TotalScore)
	}
	if updated.CorrectCount != 1 || updated.WrongCount != 0 {
		t.Fatalf("expected tallies to flip to 1/0, got %d/%d", updated.CorrectCount, updated.WrongCount)
	}
	stored, _ := env.store.GetSubmission(ctx, submission.ID)
	if !stored.Correct || stored.Points != 100 || stored.Override == nil {
		t.Fatalf("expected audited correct/100, got %+v", stored)
	}
}

func TestSplitViewViewerCannotSubmit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	settings := defaultSettings()
	settings.Teams = domain.TeamRules{Enabled: true, MaxTeamSize: 2, RoleMode: domain.TeamRoleModeSplitView}
	contest := env.createContest(t, settings)
	question := env.addQuestion(t, contest, domain.Question{Prompt: "q", CorrectAnswers: []string{"a"}})
	viewer := env.join(t, contest, "", "Vera")
	submitter := env.join(t, contest, "", "Sam")

	team, err := env.service.CreateTeam(ctx, contest.ID, viewer.ID, "Owls", domain.TeamRoleViewer)
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if _, err := env.service.JoinTeam(ctx, team.ID, submitter.ID, domain.TeamRoleSubmitter); err != nil {
		t.Fatalf("join team: %v", err)
	}

	_ = env.service.StartContest(ctx, contest.ID, hostID)
	env.advanceToQuestion(t, contest)

	if _, err := env.service.Submit(ctx, contest.ID, question.ID, viewer.ID, []string{"a"}, 1_000); err != domain.ErrNotAuthorized {
		t.Fatalf("expected viewer submission rejection, got %v", err)
	}
	if _, err := env.service.Submit(ctx, contest.ID, question.ID, submitter.ID, []string{"a"}, 1_000); err != nil {
		t.Fatalf("submitter submission failed: %v", err)
	}
}
