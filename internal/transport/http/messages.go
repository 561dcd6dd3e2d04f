package http

import (
	"encoding/json"
	"errors"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
)

var (
	errUnsupportedMessage = errors.New("unsupported message type")
	errInvalidPayload     = errors.New("invalid payload")
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type joinedPayload struct {
	Contest     domain.Contest     `json:"contest"`
	Participant domain.Participant `json:"participant,omitempty"`
	Referee     domain.Referee     `json:"referee,omitempty"`
}

type submitPayload struct {
	QuestionID  uuid.UUID `json:"questionId"`
	Answer      []string  `json:"answer"`
	TimeSpentMs int64     `json:"timeSpentMs"`
}

type jumpPayload struct {
	Index int `json:"index"`
}

type setPhasePayload struct {
	Phase domain.Phase `json:"phase"`
}

type addQuestionPayload struct {
	Prompt         string   `json:"prompt"`
	Options        []string `json:"options"`
	CorrectAnswers []string `json:"correctAnswers"`
	MultiSelect    bool     `json:"multiSelect"`
	Explanation    string   `json:"explanation"`
	TimeLimitSec   int      `json:"timeLimitSec"`
	Points         int      `json:"points"`
}

type overridePayload struct {
	SubmissionID uuid.UUID `json:"submissionId"`
	NewScore     int       `json:"newScore"`
	Comment      string    `json:"comment"`
}

type judgePayload struct {
	SubmissionID uuid.UUID `json:"submissionId"`
	Correct      bool      `json:"correct"`
	Comment      string    `json:"comment"`
}

type refereePayload struct {
	UserID      string                     `json:"userId"`
	Nickname    string                     `json:"nickname"`
	Permissions []domain.RefereePermission `json:"permissions"`
}

type createTeamPayload struct {
	Name string          `json:"name"`
	Role domain.TeamRole `json:"role"`
}

type joinTeamPayload struct {
	TeamID uuid.UUID       `json:"teamId"`
	Role   domain.TeamRole `json:"role"`
}

type transferCaptainPayload struct {
	TeamID       uuid.UUID `json:"teamId"`
	NewCaptainID uuid.UUID `json:"newCaptainId"`
}

type memberRolePayload struct {
	TeamID        uuid.UUID       `json:"teamId"`
	ParticipantID uuid.UUID       `json:"participantId"`
	Role          domain.TeamRole `json:"role"`
}

type teamIDPayload struct {
	TeamID uuid.UUID `json:"teamId"`
}

type adjustTimerPayload struct {
	DeltaSec int `json:"deltaSec"`
}

type resetTimerPayload struct {
	DurationSec int `json:"durationSec"`
}

type timerRemainingPayload struct {
	RemainingMs int64 `json:"remainingMs"`
}
