package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScoringRules controls how submissions are awarded points.
type ScoringRules struct {
	BasePoints          int     `json:"basePoints"`
	PenaltyEnabled      bool    `json:"penaltyEnabled"`
	PenaltyPoints       int     `json:"penaltyPoints"`
	TimeBonusEnabled    bool    `json:"timeBonusEnabled"`
	TimeBonusMultiplier float64 `json:"timeBonusMultiplier"`
}

// TeamRoleMode selects how member roles inside a team are constrained.
type TeamRoleMode string

const (
	// TeamRoleModeFree places no constraint on member roles.
	TeamRoleModeFree TeamRoleMode = "free"
	// TeamRoleModeSplitView allows at most one viewer and one submitter per team.
	TeamRoleModeSplitView TeamRoleMode = "split-view"
)

// TeamRules controls team formation for a contest.
type TeamRules struct {
	Enabled     bool         `json:"enabled"`
	MaxTeamSize int          `json:"maxTeamSize"`
	RoleMode    TeamRoleMode `json:"roleMode"`
}

// ContestSettings bundles the per-contest configuration knobs.
type ContestSettings struct {
	Scoring         ScoringRules `json:"scoring"`
	Teams           TeamRules    `json:"teams"`
	MaxParticipants int          `json:"maxParticipants"` // 0 = unlimited
	MaxReferees     int          `json:"maxReferees"`     // 0 = unlimited
	AllowLateJoin   bool         `json:"allowLateJoin"`
	OnSite          bool         `json:"onSite"`
	TimeLimitSec    int          `json:"timeLimitSec"` // default per-question limit
}

// Contest is the root aggregate for one live competition.
type Contest struct {
	ID                   uuid.UUID       `json:"id"`
	HostID               string          `json:"hostId"`
	Title                string          `json:"title"`
	JoinCode             string          `json:"joinCode"`
	Status               Status          `json:"status"`
	Phase                Phase           `json:"phase"`
	CurrentQuestionIndex int             `json:"currentQuestionIndex"` // -1 = none
	Timer                TimerState      `json:"timer"`
	Settings             ContestSettings `json:"settings"`
	ParticipantCount     int             `json:"participantCount"`
	TeamCount            int             `json:"teamCount"`
	QuestionCount        int             `json:"questionCount"`
	CreatedAt            time.Time       `json:"createdAt"`
	EndedAt              time.Time       `json:"endedAt,omitempty"`
}

// QuestionStatus tracks a question through its reveal cycle.
type QuestionStatus string

const (
	QuestionPending   QuestionStatus = "pending"
	QuestionActive    QuestionStatus = "active"
	QuestionRevealed  QuestionStatus = "revealed"
	QuestionCompleted QuestionStatus = "completed"
)

// Question is one ordered entry in a contest's sequence. Order is a dense
// 0-based index assigned at insertion time.
type Question struct {
	ID             uuid.UUID      `json:"id"`
	ContestID      uuid.UUID      `json:"contestId"`
	Order          int            `json:"order"`
	Prompt         string         `json:"prompt"`
	Options        []string       `json:"options,omitempty"`
	CorrectAnswers []string       `json:"correctAnswers"`
	MultiSelect    bool           `json:"multiSelect"`
	Explanation    string         `json:"explanation,omitempty"`
	TimeLimitSec   int            `json:"timeLimitSec"` // 0 = contest default
	Points         int            `json:"points"`       // 0 = scoring.BasePoints
	Status         QuestionStatus `json:"status"`
}

// TeamRole is a participant's role inside their team.
type TeamRole string

const (
	TeamRoleViewer    TeamRole = "viewer"
	TeamRoleSubmitter TeamRole = "submitter"
	TeamRoleBoth      TeamRole = "both"
)

// Participant is one contestant, possibly anonymous, possibly in a team.
type Participant struct {
	ID           uuid.UUID  `json:"id"`
	ContestID    uuid.UUID  `json:"contestId"`
	UserID       string     `json:"userId,omitempty"` // empty for guests
	Nickname     string     `json:"nickname"`
	TeamID       *uuid.UUID `json:"teamId,omitempty"`
	TeamRole     TeamRole   `json:"teamRole,omitempty"`
	TotalScore   int        `json:"totalScore"`
	CorrectCount int        `json:"correctCount"`
	WrongCount   int        `json:"wrongCount"`
	Rank         int        `json:"rank,omitempty"`
	Online       bool       `json:"online"`
	JoinedAt     time.Time  `json:"joinedAt"`
}

// TeamMember pairs a participant with their role inside the team.
type TeamMember struct {
	ParticipantID uuid.UUID `json:"participantId"`
	Nickname      string    `json:"nickname"`
	Role          TeamRole  `json:"role"`
	JoinedAt      time.Time `json:"joinedAt"`
}

// Team aggregates member scores. Score fields are recomputed from members,
// never maintained incrementally.
type Team struct {
	ID           uuid.UUID    `json:"id"`
	ContestID    uuid.UUID    `json:"contestId"`
	Name         string       `json:"name"`
	CaptainID    uuid.UUID    `json:"captainId"`
	Members      []TeamMember `json:"members"`
	MaxSize      int          `json:"maxSize"`
	TotalScore   int          `json:"totalScore"`
	AverageScore float64      `json:"averageScore"`
	CorrectCount int          `json:"correctCount"`
	WrongCount   int          `json:"wrongCount"`
	Rank         int          `json:"rank,omitempty"`
	Active       bool         `json:"active"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// MemberIndex returns the position of the participant in Members, or -1.
func (t *Team) MemberIndex(participantID uuid.UUID) int {
	for i, m := range t.Members {
		if m.ParticipantID == participantID {
			return i
		}
	}
	return -1
}

// ScoreOverride is the audit record for a referee correction.
type ScoreOverride struct {
	RefereeID     string    `json:"refereeId"`
	OriginalScore int       `json:"originalScore"`
	NewScore      int       `json:"newScore"`
	Comment       string    `json:"comment,omitempty"`
	At            time.Time `json:"at"`
}

// Submission is the single answer a participant gave for one question.
// Exactly one may exist per (contest, question, participant).
type Submission struct {
	ID            uuid.UUID      `json:"id"`
	ContestID     uuid.UUID      `json:"contestId"`
	QuestionID    uuid.UUID      `json:"questionId"`
	ParticipantID uuid.UUID      `json:"participantId"`
	Answer        []string       `json:"answer"`
	Correct       bool           `json:"correct"`
	Points        int            `json:"points"`
	TimeBonus     int            `json:"timeBonus"`
	TimeSpentMs   int64          `json:"timeSpentMs"`
	Override      *ScoreOverride `json:"override,omitempty"`
	SubmittedAt   time.Time      `json:"submittedAt"`
}

// TimerState is the cache-resident countdown snapshot, mirrored into the
// contest row for durability. While running only StartedAt is authoritative;
// RemainingMs is the remainder frozen at the last checkpoint.
type TimerState struct {
	QuestionIndex int       `json:"questionIndex"`
	DurationMs    int64     `json:"durationMs"`
	RemainingMs   int64     `json:"remainingMs"`
	Running       bool      `json:"running"`
	StartedAt     time.Time `json:"startedAt,omitempty"`
	PausedAt      time.Time `json:"pausedAt,omitempty"`
}

// RemainingAt computes the remaining time at the given instant without
// mutating the state. Safe for concurrent readers.
func (t TimerState) RemainingAt(now time.Time) int64 {
	if !t.Running {
		return t.RemainingMs
	}
	remaining := t.RemainingMs - now.Sub(t.StartedAt).Milliseconds()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RefereePermission names one capability a referee may hold.
type RefereePermission string

const (
	PermOverrideScore RefereePermission = "override_score"
	PermManualJudge   RefereePermission = "manual_judge"
	PermAddComment    RefereePermission = "add_comment"
	PermPauseContest  RefereePermission = "pause_competition"
	PermSkipQuestion  RefereePermission = "skip_question"
	PermExtendTime    RefereePermission = "extend_time"
)

// Referee attaches a user identity with a permission set to a contest.
type Referee struct {
	ContestID   uuid.UUID           `json:"contestId"`
	UserID      string              `json:"userId"`
	Nickname    string              `json:"nickname"`
	Permissions []RefereePermission `json:"permissions"`
	Online      bool                `json:"online"`
	AddedAt     time.Time           `json:"addedAt"`
}

// Has reports whether the referee holds the permission.
func (r Referee) Has(p RefereePermission) bool {
	for _, held := range r.Permissions {
		if held == p {
			return true
		}
	}
	return false
}

// LeaderboardEntry is a snapshot-friendly view of a participant's standing.
type LeaderboardEntry struct {
	ParticipantID uuid.UUID `json:"participantId"`
	Nickname      string    `json:"nickname"`
	Score         int       `json:"score"`
	CorrectCount  int       `json:"correctCount"`
	Rank          int       `json:"rank"`
}

// Leaderboard captures the ordered scoreboard for a contest.
type Leaderboard struct {
	ContestID uuid.UUID          `json:"contestId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
