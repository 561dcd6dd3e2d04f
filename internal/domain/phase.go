package domain

// Status is the coarse contest lifecycle.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusReady    Status = "ready"
	StatusOngoing  Status = "ongoing"
	StatusPaused   Status = "paused"
	StatusFinished Status = "finished"
)

// statusTransitions is the allowed edge set of the lifecycle. Finished is
// terminal.
var statusTransitions = map[Status][]Status{
	StatusDraft:    {StatusReady, StatusOngoing, StatusFinished},
	StatusReady:    {StatusOngoing, StatusFinished},
	StatusOngoing:  {StatusPaused, StatusFinished},
	StatusPaused:   {StatusOngoing, StatusFinished},
	StatusFinished: {},
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo checks if a transition from the current status to the
// target status is valid.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Phase is the fine-grained step within a contest's question cycle,
// broadcast to every room on change.
type Phase string

const (
	PhaseSetup         Phase = "setup"
	PhaseTeamFormation Phase = "team-formation"
	PhaseWaiting       Phase = "waiting"
	PhaseCountdown     Phase = "countdown"
	PhaseQuestion      Phase = "question"
	PhaseRevealing     Phase = "revealing"
	PhaseLeaderboard   Phase = "leaderboard"
	PhaseFinished      Phase = "finished"
)

// phaseTransitions is the regular question-cycle edge set. Every
// transition is host-initiated except countdown→question, which fires on
// a 3-second delay. A question may also jump straight back to countdown
// when the host skips it without revealing.
var phaseTransitions = map[Phase][]Phase{
	PhaseSetup:         {PhaseTeamFormation, PhaseWaiting, PhaseFinished},
	PhaseTeamFormation: {PhaseWaiting, PhaseFinished},
	PhaseWaiting:       {PhaseCountdown, PhaseFinished},
	PhaseCountdown:     {PhaseQuestion, PhaseWaiting, PhaseFinished},
	PhaseQuestion:      {PhaseRevealing, PhaseCountdown, PhaseLeaderboard, PhaseFinished},
	PhaseRevealing:     {PhaseLeaderboard, PhaseCountdown, PhaseWaiting, PhaseFinished},
	PhaseLeaderboard:   {PhaseCountdown, PhaseWaiting, PhaseFinished},
	PhaseFinished:      {},
}

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// Valid reports whether p is a known phase value.
func (p Phase) Valid() bool {
	_, ok := phaseTransitions[p]
	return ok
}

// CanTransitionTo checks if a transition from the current phase to the
// target phase is valid.
func (p Phase) CanTransitionTo(target Phase) bool {
	for _, allowed := range phaseTransitions[p] {
		if allowed == target {
			return true
		}
	}
	return false
}
