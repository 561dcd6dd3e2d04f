package app

import (
	"context"
	"math"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
)

// Submit records one answer for the contest's active question. The
// (question, participant) uniqueness is enforced by the store: under
// concurrent duplicates exactly one insert wins and the rest observe
// domain.ErrAlreadySubmitted.
func (s *ContestService) Submit(ctx context.Context, contestID, questionID, participantID uuid.UUID, answer []string, timeSpentMs int64) (domain.Submission, error) {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return domain.Submission{}, err
	}
	if contest.Status != domain.StatusOngoing || contest.Phase != domain.PhaseQuestion {
		return domain.Submission{}, domain.ErrInvalidTransition
	}

	question, err := s.activeQuestion(ctx, contest, questionID)
	if err != nil {
		return domain.Submission{}, err
	}

	participant, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		return domain.Submission{}, err
	}
	if participant.ContestID != contestID {
		return domain.Submission{}, domain.ErrParticipantNotFound
	}
	if participant.TeamID != nil && participant.TeamRole == domain.TeamRoleViewer {
		return domain.Submission{}, domain.ErrNotAuthorized
	}

	correct := answerMatches(question, answer)
	limitMs := int64(s.questionLimitSec(contest, question)) * 1000
	points, bonus := scoreAnswer(contest.Settings.Scoring, question, correct, timeSpentMs, limitMs)

	submission := domain.Submission{
		ID:            uuid.New(),
		ContestID:     contestID,
		QuestionID:    question.ID,
		ParticipantID: participantID,
		Answer:        answer,
		Correct:       correct,
		Points:        points,
		TimeBonus:     bonus,
		TimeSpentMs:   timeSpentMs,
		SubmittedAt:   s.clock.Now(),
	}
	if err := s.store.InsertSubmission(ctx, &submission); err != nil {
		return domain.Submission{}, err
	}

	correctDelta, wrongDelta := 0, 1
	if correct {
		correctDelta, wrongDelta = 1, 0
	}
	updated, err := s.store.IncrementScore(ctx, participantID, points, correctDelta, wrongDelta)
	if err != nil {
		return domain.Submission{}, err
	}
	s.propagateScore(ctx, contestID, updated)
	// Referees see every submission as it lands so they can judge live.
	s.sink.Broadcast(domain.ToReferees(contestID, domain.EventSubmissionReceived, map[string]any{
		"submissionId":  submission.ID,
		"questionId":    question.ID,
		"participantId": participantID,
		"nickname":      participant.Nickname,
		"correct":       correct,
		"points":        points,
	}))
	return submission, nil
}

// OverrideScore replaces a submission's awarded points with a referee's
// correction and propagates the delta against the submission's current
// points, recording an audit entry.
func (s *ContestService) OverrideScore(ctx context.Context, contestID, submissionID uuid.UUID, actor string, newScore int, comment string) error {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if err := s.requireHostOr(ctx, contest, actor, domain.PermOverrideScore); err != nil {
		return err
	}

	submission, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return err
	}
	if submission.ContestID != contestID {
		return domain.ErrSubmissionNotFound
	}

	override := domain.ScoreOverride{
		RefereeID:     actor,
		OriginalScore: submission.Points,
		NewScore:      newScore,
		Comment:       comment,
		At:            s.clock.Now(),
	}
	if err := s.store.UpdateSubmissionScore(ctx, submissionID, newScore, submission.Correct, override); err != nil {
		return err
	}

	updated, err := s.store.IncrementScore(ctx, submission.ParticipantID, newScore-submission.Points, 0, 0)
	if err != nil {
		return err
	}
	s.propagateScore(ctx, contestID, updated)
	s.sink.Broadcast(domain.ToAll(contestID, domain.EventScoreOverridden, map[string]any{
		"submissionId":  submissionID,
		"participantId": submission.ParticipantID,
		"originalScore": submission.Points,
		"newScore":      newScore,
	}))
	return nil
}

// ManualJudge flips a submission's correctness, rescoring it from the
// question's base points (keeping any earned time bonus when marking
// correct) and adjusting the participant's correct/wrong tallies by the
// signed delta.
func (s *ContestService) ManualJudge(ctx context.Context, contestID, submissionID uuid.UUID, actor string, correct bool, comment string) error {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if err := s.requireHostOr(ctx, contest, actor, domain.PermManualJudge); err != nil {
		return err
	}

	submission, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return err
	}
	if submission.ContestID != contestID {
		return domain.ErrSubmissionNotFound
	}

	question, err := s.store.GetQuestion(ctx, submission.QuestionID)
	if err != nil {
		return err
	}

	newPoints := 0
	if correct {
		newPoints = basePoints(contest.Settings.Scoring, question) + submission.TimeBonus
	} else if contest.Settings.Scoring.PenaltyEnabled {
		newPoints = -contest.Settings.Scoring.PenaltyPoints
	}

	correctDelta, wrongDelta := 0, 0
	if submission.Correct != correct {
		if correct {
			correctDelta, wrongDelta = 1, -1
		} else {
			correctDelta, wrongDelta = -1, 1
		}
	}

	override := domain.ScoreOverride{
		RefereeID:     actor,
		OriginalScore: submission.Points,
		NewScore:      newPoints,
		Comment:       comment,
		At:            s.clock.Now(),
	}
	if err := s.store.UpdateSubmissionScore(ctx, submissionID, newPoints, correct, override); err != nil {
		return err
	}

	updated, err := s.store.IncrementScore(ctx, submission.ParticipantID, newPoints-submission.Points, correctDelta, wrongDelta)
	if err != nil {
		return err
	}
	s.propagateScore(ctx, contestID, updated)
	s.sink.Broadcast(domain.ToAll(contestID, domain.EventScoreOverridden, map[string]any{
		"submissionId":  submissionID,
		"participantId": submission.ParticipantID,
		"originalScore": submission.Points,
		"newScore":      newPoints,
		"correct":       correct,
	}))
	return nil
}

// activeQuestion resolves the submitted question through the cache-backed
// bank and verifies it is the contest's current question.
func (s *ContestService) activeQuestion(ctx context.Context, contest domain.Contest, questionID uuid.UUID) (domain.Question, error) {
	questions, err := s.bank.GetQuestions(ctx, contest.ID)
	if err != nil {
		return domain.Question{}, err
	}
	for _, q := range questions {
		if q.ID == questionID {
			if q.Order != contest.CurrentQuestionIndex {
				return domain.Question{}, domain.ErrInvalidTransition
			}
			return q, nil
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

// propagateScore pushes a participant's new cumulative totals into the
// leaderboard projection, refreshes their team aggregate and fans the
// leaderboard out. Cache failures are logged, never returned: the
// projection self-heals on the next rebuild.
func (s *ContestService) propagateScore(ctx context.Context, contestID uuid.UUID, participant domain.Participant) {
	entry := domain.LeaderboardEntry{
		ParticipantID: participant.ID,
		Nickname:      participant.Nickname,
		Score:         participant.TotalScore,
		CorrectCount:  participant.CorrectCount,
	}
	if err := s.boards.RecordScore(ctx, contestID, entry); err != nil {
		s.log.Warn().Err(err).Str("contest_id", contestID.String()).Msg("leaderboard cache update failed")
	}
	if participant.TeamID != nil {
		if err := s.UpdateTeamScores(ctx, *participant.TeamID); err != nil {
			s.log.Warn().Err(err).Str("team_id", participant.TeamID.String()).Msg("team score update failed")
		}
	}
	s.broadcastLeaderboard(ctx, contestID)
}

// answerMatches compares the submitted answer against the question's
// correct set: multi-select as sets, single-value by equality.
func answerMatches(question domain.Question, answer []string) bool {
	if question.MultiSelect {
		if len(answer) != len(question.CorrectAnswers) {
			return false
		}
		correct := make(map[string]struct{}, len(question.CorrectAnswers))
		for _, c := range question.CorrectAnswers {
			correct[c] = struct{}{}
		}
		seen := make(map[string]struct{}, len(answer))
		for _, a := range answer {
			if _, ok := correct[a]; !ok {
				return false
			}
			if _, dup := seen[a]; dup {
				return false
			}
			seen[a] = struct{}{}
		}
		return true
	}
	return len(answer) == 1 && len(question.CorrectAnswers) == 1 && answer[0] == question.CorrectAnswers[0]
}

// scoreAnswer computes (totalPoints, timeBonus) for one submission.
func scoreAnswer(rules domain.ScoringRules, question domain.Question, correct bool, timeSpentMs, limitMs int64) (int, int) {
	if !correct {
		if rules.PenaltyEnabled {
			return -rules.PenaltyPoints, 0
		}
		return 0, 0
	}
	base := basePoints(rules, question)
	bonus := 0
	if rules.TimeBonusEnabled && limitMs > 0 && timeSpentMs < limitMs {
		fraction := 1 - float64(timeSpentMs)/float64(limitMs)
		bonus = int(math.Round(float64(base) * rules.TimeBonusMultiplier * fraction))
	}
	return base + bonus, bonus
}

func basePoints(rules domain.ScoringRules, question domain.Question) int {
	if question.Points > 0 {
		return question.Points
	}
	return rules.BasePoints
}
