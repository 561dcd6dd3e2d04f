package domain

import "errors"

var (
	// ErrNotAuthorized is returned when the caller lacks the capability for the attempted action.
	ErrNotAuthorized = errors.New("not authorized for this action")
	// ErrInvalidTransition is returned when a status or phase precondition is not met.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrContestNotFound indicates the contest does not exist.
	ErrContestNotFound = errors.New("contest not found")
	// ErrQuestionNotFound indicates the question index or id is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrParticipantNotFound is returned when a user acts before joining.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrSubmissionNotFound indicates the submission does not exist.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrTeamNotFound indicates the team does not exist or is inactive.
	ErrTeamNotFound = errors.New("team not found")
	// ErrRefereeNotFound indicates the identity is not a referee of the contest.
	ErrRefereeNotFound = errors.New("referee not found")
	// ErrTimerNotFound indicates no countdown is registered for the contest.
	ErrTimerNotFound = errors.New("timer not found")

	// ErrAlreadySubmitted is returned when a (question, participant) pair already holds a submission.
	ErrAlreadySubmitted = errors.New("already submitted for this question")
	// ErrAlreadyInTeam is returned when a participant already holds a team membership.
	ErrAlreadyInTeam = errors.New("participant already in a team")
	// ErrDuplicateTeamName is returned when the team name is taken within the contest.
	ErrDuplicateTeamName = errors.New("team name already in use")

	// ErrContestFull is returned when the participant cap is reached.
	ErrContestFull = errors.New("contest is full")
	// ErrTeamFull is returned when a team is at its configured max size.
	ErrTeamFull = errors.New("team is full")
	// ErrRefereeLimit is returned when the referee cap is reached.
	ErrRefereeLimit = errors.New("referee limit reached")

	// ErrTeamsDisabled is returned when team operations hit a contest without team mode.
	ErrTeamsDisabled = errors.New("team mode not enabled")
	// ErrLateJoinClosed is returned when joining an ongoing contest that forbids late entry.
	ErrLateJoinClosed = errors.New("contest already started and late join is disabled")
	// ErrRoleModeViolation is returned when a member role breaks the contest's role mode.
	ErrRoleModeViolation = errors.New("team role mode violated")
)
