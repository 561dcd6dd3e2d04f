package domain

import "github.com/google/uuid"

// RoomScope names one of the broadcast groups of a contest. Team rooms
// carry the team id in TeamID.
type RoomScope string

const (
	ScopeAll      RoomScope = "all"
	ScopeHost     RoomScope = "host"
	ScopeReferees RoomScope = "referees"
	ScopeTeam     RoomScope = "team"
)

// Event type names on the real-time surface.
const (
	EventPhaseChanged       = "phaseChanged"
	EventQuestionPrepared   = "questionPrepared"
	EventQuestionShown      = "questionShown"
	EventAnswerRevealed     = "answerRevealed"
	EventTimerStarted       = "timerStarted"
	EventTimerPaused        = "timerPaused"
	EventTimerResumed       = "timerResumed"
	EventTimerTick          = "timerTick"
	EventTimerAdjusted      = "timerAdjusted"
	EventTimerEnded         = "timerEnded"
	EventLeaderboard        = "leaderboardUpdated"
	EventTeamCreated        = "teamCreated"
	EventTeamMemberJoined   = "teamMemberJoined"
	EventTeamMemberLeft     = "teamMemberLeft"
	EventTeamRoleUpdated    = "teamRoleUpdated"
	EventTeamScoreUpdated   = "teamScoreUpdated"
	EventTeamDisbanded      = "teamDisbanded"
	EventSubmissionReceived = "submissionReceived"
	EventRefereeOnline      = "refereeOnline"
	EventRefereeOffline     = "refereeOffline"
	EventScoreOverridden    = "scoreOverridden"
	EventParticipantJoined  = "participantJoined"
	EventParticipantLeft    = "participantLeft"
	EventContestEnded       = "contestEnded"
)

// Event is the envelope fanned out to the broadcast rooms. Emission is
// fire-and-forget; a dropped event is recovered by resync on reconnect.
type Event struct {
	Type      string    `json:"type"`
	ContestID uuid.UUID `json:"contestId"`
	Scope     RoomScope `json:"-"`
	TeamID    uuid.UUID `json:"-"` // set when Scope == ScopeTeam
	Payload   any       `json:"payload,omitempty"`
}

// ToAll builds an event for the contest-wide room.
func ToAll(contestID uuid.UUID, typ string, payload any) Event {
	return Event{Type: typ, ContestID: contestID, Scope: ScopeAll, Payload: payload}
}

// ToHost builds an event visible to the host room only.
func ToHost(contestID uuid.UUID, typ string, payload any) Event {
	return Event{Type: typ, ContestID: contestID, Scope: ScopeHost, Payload: payload}
}

// ToReferees builds an event for the referee room.
func ToReferees(contestID uuid.UUID, typ string, payload any) Event {
	return Event{Type: typ, ContestID: contestID, Scope: ScopeReferees, Payload: payload}
}

// ToTeam builds an event scoped to one team's room.
func ToTeam(contestID, teamID uuid.UUID, typ string, payload any) Event {
	return Event{Type: typ, ContestID: contestID, Scope: ScopeTeam, TeamID: teamID, Payload: payload}
}
