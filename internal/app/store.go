package app

import (
	"context"
	"time"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
)

// Store is the durable source of truth. Implementations: postgres for
// production, memory for dev and tests. The submission uniqueness
// invariant must be enforced by the store itself, never by a
// check-then-act in the caller.
type Store interface {
	ContestStore
	QuestionStore
	ParticipantStore
	SubmissionStore
	TeamStore
	RefereeStore
}

// ContestStore persists contest records. SaveTimerSnapshot doubles as the
// timer engine's durable mirror.
type ContestStore interface {
	CreateContest(ctx context.Context, contest *domain.Contest) error
	GetContest(ctx context.Context, id uuid.UUID) (domain.Contest, error)
	GetContestByJoinCode(ctx context.Context, code string) (domain.Contest, error)
	UpdateContestState(ctx context.Context, id uuid.UUID, status domain.Status, phase domain.Phase, questionIndex int) error
	SetContestEnded(ctx context.Context, id uuid.UUID, at time.Time) error
	AdjustContestCounts(ctx context.Context, id uuid.UUID, participantDelta, teamDelta int) error
	SaveTimerSnapshot(ctx context.Context, contestID uuid.UUID, state domain.TimerState) error
}

// QuestionStore persists the ordered question sequence of a contest.
// AddQuestion assigns the next dense 0-based order value.
type QuestionStore interface {
	AddQuestion(ctx context.Context, question *domain.Question) error
	GetQuestion(ctx context.Context, id uuid.UUID) (domain.Question, error)
	GetQuestionByIndex(ctx context.Context, contestID uuid.UUID, index int) (domain.Question, error)
	UpdateQuestionStatus(ctx context.Context, id uuid.UUID, status domain.QuestionStatus) error
}

// ParticipantStore persists contestants. IncrementScore must apply the
// deltas atomically in the store and return the updated row; cumulative
// totals are never recomputed from scratch on the hot path.
type ParticipantStore interface {
	CreateParticipant(ctx context.Context, participant *domain.Participant) error
	GetParticipant(ctx context.Context, id uuid.UUID) (domain.Participant, error)
	FindParticipant(ctx context.Context, contestID uuid.UUID, userID, nickname string) (domain.Participant, bool, error)
	ListParticipants(ctx context.Context, contestID uuid.UUID) ([]domain.Participant, error)
	SetParticipantOnline(ctx context.Context, id uuid.UUID, online bool) error
	SetParticipantTeam(ctx context.Context, id uuid.UUID, teamID *uuid.UUID, role domain.TeamRole) error
	IncrementScore(ctx context.Context, id uuid.UUID, deltaPoints, deltaCorrect, deltaWrong int) (domain.Participant, error)
	SaveParticipantRanks(ctx context.Context, contestID uuid.UUID, ranks map[uuid.UUID]int) error
}

// SubmissionStore persists answers. InsertSubmission returns
// domain.ErrAlreadySubmitted when the (contest, question, participant)
// key already exists; concurrent duplicates must lose to a store-level
// constraint.
type SubmissionStore interface {
	InsertSubmission(ctx context.Context, submission *domain.Submission) error
	GetSubmission(ctx context.Context, id uuid.UUID) (domain.Submission, error)
	FindSubmission(ctx context.Context, questionID, participantID uuid.UUID) (domain.Submission, error)
	UpdateSubmissionScore(ctx context.Context, id uuid.UUID, points int, correct bool, override domain.ScoreOverride) error
}

// TeamStore persists teams. CreateTeam returns domain.ErrDuplicateTeamName
// when the name is taken within the contest (case-insensitive).
type TeamStore interface {
	CreateTeam(ctx context.Context, team *domain.Team) error
	GetTeam(ctx context.Context, id uuid.UUID) (domain.Team, error)
	FindTeamByName(ctx context.Context, contestID uuid.UUID, name string) (domain.Team, bool, error)
	UpdateTeam(ctx context.Context, team *domain.Team) error
	ListTeams(ctx context.Context, contestID uuid.UUID) ([]domain.Team, error)
}

// RefereeStore persists the referee roster of a contest.
type RefereeStore interface {
	AddReferee(ctx context.Context, referee *domain.Referee) error
	RemoveReferee(ctx context.Context, contestID uuid.UUID, userID string) error
	GetReferee(ctx context.Context, contestID uuid.UUID, userID string) (domain.Referee, error)
	ListReferees(ctx context.Context, contestID uuid.UUID) ([]domain.Referee, error)
	SetRefereeOnline(ctx context.Context, contestID uuid.UUID, userID string, online bool) error
}

// QuestionBank serves a contest's full question sequence for scoring,
// typically cache-backed (Redis in front of postgres). Invalidate drops
// the cached sequence after an edit so the next read hits the store.
type QuestionBank interface {
	GetQuestions(ctx context.Context, contestID uuid.UUID) ([]domain.Question, error)
	Invalidate(ctx context.Context, contestID uuid.UUID) error
}

// LeaderboardCache is the fast shared leaderboard. It is a projection:
// any miss is rebuilt from the participant rows.
type LeaderboardCache interface {
	RecordScore(ctx context.Context, contestID uuid.UUID, entry domain.LeaderboardEntry) error
	Top(ctx context.Context, contestID uuid.UUID, n int) ([]domain.LeaderboardEntry, error)
	Rebuild(ctx context.Context, contestID uuid.UUID, entries []domain.LeaderboardEntry) error
	Clear(ctx context.Context, contestID uuid.UUID) error
}

// Broadcaster fans events out to the contest's rooms. Fire-and-forget:
// callers never block on delivery.
type Broadcaster interface {
	Broadcast(evt domain.Event)
}
