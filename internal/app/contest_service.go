package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"arena-contest-service/internal/domain"
	"arena-contest-service/internal/timer"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// countdownDelay is the fixed lead-in between the countdown phase and the
// question going live.
const countdownDelay = 3 * time.Second

// leaderboardSize caps the entries broadcast on leaderboard updates.
const leaderboardSize = 50

// ContestService contains the contest orchestration use cases: lifecycle,
// question sequencing, scoring, teams and referees. It owns the timer
// engine and the registry of pending countdown→question transitions.
type ContestService struct {
	store  Store
	bank   QuestionBank
	boards LeaderboardCache
	sink   Broadcaster
	clock  clockwork.Clock
	log    zerolog.Logger
	timers *timer.Engine

	pendingMu sync.Mutex
	pending   map[uuid.UUID]*pendingTransition
}

// NewContestService wires the service and its timer engine. timerCache is
// the fast store for timer snapshots; the durable mirror is the Store.
func NewContestService(store Store, bank QuestionBank, boards LeaderboardCache, timerCache timer.StateStore, sink Broadcaster, clock clockwork.Clock, log zerolog.Logger) *ContestService {
	s := &ContestService{
		store:   store,
		bank:    bank,
		boards:  boards,
		sink:    sink,
		clock:   clock,
		log:     log.With().Str("component", "contest").Logger(),
		pending: make(map[uuid.UUID]*pendingTransition),
	}
	s.timers = timer.New(clock, timerCache, store, sink, log, s.handleTimerExpiry)
	return s
}

// Timers exposes the engine for direct timer control operations.
func (s *ContestService) Timers() *timer.Engine {
	return s.timers
}

// Shutdown cancels pending transitions and tears down every countdown.
func (s *ContestService) Shutdown() {
	s.pendingMu.Lock()
	for id, p := range s.pending {
		p.cancel()
		delete(s.pending, id)
	}
	s.pendingMu.Unlock()
	s.timers.Shutdown()
}

// CreateContest registers a draft contest with a fresh join code.
func (s *ContestService) CreateContest(ctx context.Context, hostID, title string, settings domain.ContestSettings) (domain.Contest, error) {
	code, err := s.newJoinCode(ctx)
	if err != nil {
		return domain.Contest{}, err
	}
	if settings.Scoring.BasePoints == 0 {
		settings.Scoring.BasePoints = 100
	}
	if settings.TimeLimitSec == 0 {
		settings.TimeLimitSec = 60
	}
	contest := domain.Contest{
		ID:                   uuid.New(),
		HostID:               hostID,
		Title:                title,
		JoinCode:             code,
		Status:               domain.StatusDraft,
		Phase:                domain.PhaseSetup,
		CurrentQuestionIndex: -1,
		Settings:             settings,
		CreatedAt:            s.clock.Now(),
	}
	if err := s.store.CreateContest(ctx, &contest); err != nil {
		return domain.Contest{}, err
	}
	s.log.Info().Str("contest_id", contest.ID.String()).Str("join_code", code).Msg("contest created")
	return contest, nil
}

// GetContest returns the contest by id.
func (s *ContestService) GetContest(ctx context.Context, id uuid.UUID) (domain.Contest, error) {
	return s.store.GetContest(ctx, id)
}

// GetContestByJoinCode resolves a contest from its join code.
func (s *ContestService) GetContestByJoinCode(ctx context.Context, code string) (domain.Contest, error) {
	return s.store.GetContestByJoinCode(ctx, normalizeJoinCode(code))
}

// AddQuestion appends a question to the contest's sequence; order is
// assigned densely by the store. Host only, and only before the contest
// finishes.
func (s *ContestService) AddQuestion(ctx context.Context, contestID uuid.UUID, actor string, question domain.Question) (domain.Question, error) {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return domain.Question{}, err
	}
	if contest.HostID != actor {
		return domain.Question{}, domain.ErrNotAuthorized
	}
	if contest.Status == domain.StatusFinished {
		return domain.Question{}, domain.ErrInvalidTransition
	}
	question.ID = uuid.New()
	question.ContestID = contestID
	question.Status = domain.QuestionPending
	if err := s.store.AddQuestion(ctx, &question); err != nil {
		return domain.Question{}, err
	}
	// The bank may have been warmed by an earlier join; a stale sequence
	// would make the new question invisible to the scoring path.
	if err := s.bank.Invalidate(ctx, contestID); err != nil {
		s.log.Warn().Err(err).Str("contest_id", contestID.String()).Msg("question cache invalidate failed")
	}
	return question, nil
}

// StartContest moves a draft/ready contest to ongoing.
func (s *ContestService) StartContest(ctx context.Context, contestID uuid.UUID, actor string) error {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if contest.HostID != actor {
		return domain.ErrNotAuthorized
	}
	if contest.Status != domain.StatusDraft && contest.Status != domain.StatusReady {
		return domain.ErrInvalidTransition
	}

	phase := domain.PhaseWaiting
	if contest.Settings.Teams.Enabled && contest.Phase == domain.PhaseSetup {
		phase = domain.PhaseTeamFormation
	}
	if err := s.store.UpdateContestState(ctx, contestID, domain.StatusOngoing, phase, contest.CurrentQuestionIndex); err != nil {
		return err
	}
	s.broadcastPhase(contestID, domain.StatusOngoing, phase)
	s.log.Info().Str("contest_id", contestID.String()).Msg("contest started")
	return nil
}

// PauseContest freezes an ongoing contest: the pending countdown→question
// transition is cancelled first, then the timer, then the status flips.
// Cancellation is a precondition here, not a best-effort afterthought.
func (s *ContestService) PauseContest(ctx context.Context, contestID uuid.UUID, actor string) error {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if err := s.requireHostOr(ctx, contest, actor, domain.PermPauseContest); err != nil {
		return err
	}
	if !contest.Status.CanTransitionTo(domain.StatusPaused) {
		return domain.ErrInvalidTransition
	}

	s.cancelPendingTransition(contestID)
	if err := s.timers.Pause(ctx, contestID); err != nil && err != domain.ErrTimerNotFound && err != domain.ErrInvalidTransition {
		return err
	}
	if err := s.store.UpdateContestState(ctx, contestID, domain.StatusPaused, contest.Phase, contest.CurrentQuestionIndex); err != nil {
		return err
	}
	s.broadcastPhase(contestID, domain.StatusPaused, contest.Phase)
	return nil
}

// ResumeContest continues a paused contest. A contest paused during the
// countdown phase re-enters the question through a fresh 3-second delay.
func (s *ContestService) ResumeContest(ctx context.Context, contestID uuid.UUID, actor string) error {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if err := s.requireHostOr(ctx, contest, actor, domain.PermPauseContest); err != nil {
		return err
	}
	if contest.Status != domain.StatusPaused {
		return domain.ErrInvalidTransition
	}

	if err := s.store.UpdateContestState(ctx, contestID, domain.StatusOngoing, contest.Phase, contest.CurrentQuestionIndex); err != nil {
		return err
	}
	s.broadcastPhase(contestID, domain.StatusOngoing, contest.Phase)

	switch contest.Phase {
	case domain.PhaseQuestion:
		s.restoreTimer(ctx, contest)
		if err := s.timers.Resume(ctx, contestID); err != nil && err != domain.ErrTimerNotFound && err != domain.ErrInvalidTransition {
			return err
		}
	case domain.PhaseCountdown:
		s.scheduleQuestionStart(contestID, contest.CurrentQuestionIndex)
	}
	return nil
}

// EndContest finishes the contest from any non-finished status, cancels
// whatever is in flight and computes the final rankings.
func (s *ContestService) EndContest(ctx context.Context, contestID uuid.UUID, actor string) error {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if contest.HostID != actor {
		return domain.ErrNotAuthorized
	}
	if !contest.Status.CanTransitionTo(domain.StatusFinished) {
		return domain.ErrInvalidTransition
	}

	s.cancelPendingTransition(contestID)
	if err := s.timers.Stop(ctx, contestID); err != nil && err != domain.ErrTimerNotFound {
		s.log.Warn().Err(err).Str("contest_id", contestID.String()).Msg("timer stop on end failed")
	}

	if err := s.store.UpdateContestState(ctx, contestID, domain.StatusFinished, domain.PhaseFinished, contest.CurrentQuestionIndex); err != nil {
		return err
	}
	if err := s.store.SetContestEnded(ctx, contestID, s.clock.Now()); err != nil {
		return err
	}

	leaderboard, err := s.finalizeRanks(ctx, contestID)
	if err != nil {
		return err
	}
	if err := s.UpdateTeamRankings(ctx, contestID); err != nil && err != domain.ErrTeamsDisabled {
		s.log.Warn().Err(err).Str("contest_id", contestID.String()).Msg("team ranking failed")
	}

	s.broadcastPhase(contestID, domain.StatusFinished, domain.PhaseFinished)
	s.sink.Broadcast(domain.ToAll(contestID, domain.EventContestEnded, leaderboard))
	s.log.Info().Str("contest_id", contestID.String()).Msg("contest ended")
	return nil
}

// NextQuestion advances to the following question through the countdown
// phase. The question index only moves forward and only while ongoing.
func (s *ContestService) NextQuestion(ctx context.Context, contestID uuid.UUID, actor string) error {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if err := s.requireHostOr(ctx, contest, actor, domain.PermSkipQuestion); err != nil {
		return err
	}
	return s.moveToQuestion(ctx, contest, contest.CurrentQuestionIndex+1)
}

// JumpToQuestion skips directly to a later question index.
func (s *ContestService) JumpToQuestion(ctx context.Context, contestID uuid.UUID, actor string, index int) error {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if err := s.requireHostOr(ctx, contest, actor, domain.PermSkipQuestion); err != nil {
		return err
	}
	if index <= contest.CurrentQuestionIndex {
		return domain.ErrInvalidTransition
	}
	return s.moveToQuestion(ctx, contest, index)
}

// moveToQuestion performs the shared advance: complete the prior question,
// enter countdown, then arm the delayed flip into the question phase.
func (s *ContestService) moveToQuestion(ctx context.Context, contest domain.Contest, index int) error {
	if contest.Status != domain.StatusOngoing {
		return domain.ErrInvalidTransition
	}
	question, err := s.store.GetQuestionByIndex(ctx, contest.ID, index)
	if err != nil {
		return err
	}

	s.cancelPendingTransition(contest.ID)
	if err := s.timers.Stop(ctx, contest.ID); err != nil && err != domain.ErrTimerNotFound {
		s.log.Warn().Err(err).Str("contest_id", contest.ID.String()).Msg("timer stop on advance failed")
	}

	if contest.CurrentQuestionIndex >= 0 {
		if prev, err := s.store.GetQuestionByIndex(ctx, contest.ID, contest.CurrentQuestionIndex); err == nil {
			if err := s.store.UpdateQuestionStatus(ctx, prev.ID, domain.QuestionCompleted); err != nil {
				return err
			}
		}
	}

	if err := s.store.UpdateContestState(ctx, contest.ID, domain.StatusOngoing, domain.PhaseCountdown, index); err != nil {
		return err
	}
	s.broadcastPhase(contest.ID, domain.StatusOngoing, domain.PhaseCountdown)
	s.sink.Broadcast(domain.ToAll(contest.ID, domain.EventQuestionPrepared, publicQuestion(question, s.questionLimitSec(contest, question))))

	s.scheduleQuestionStart(contest.ID, index)
	return nil
}

// beginQuestion fires when the 3-second delay elapses: it re-reads the
// contest, verifies the operator has not paused or moved on meanwhile, and
// only then shows the question and starts the countdown.
func (s *ContestService) beginQuestion(contestID uuid.UUID, index int) {
	ctx := context.Background()
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		s.log.Warn().Err(err).Str("contest_id", contestID.String()).Msg("begin question: contest load failed")
		return
	}
	if contest.Status != domain.StatusOngoing || contest.Phase != domain.PhaseCountdown || contest.CurrentQuestionIndex != index {
		s.log.Debug().Str("contest_id", contestID.String()).Int("index", index).Msg("begin question: state moved on, dropping")
		return
	}
	question, err := s.store.GetQuestionByIndex(ctx, contestID, index)
	if err != nil {
		s.log.Warn().Err(err).Str("contest_id", contestID.String()).Msg("begin question: question load failed")
		return
	}

	if err := s.store.UpdateQuestionStatus(ctx, question.ID, domain.QuestionActive); err != nil {
		s.log.Error().Err(err).Str("contest_id", contestID.String()).Msg("begin question: activate failed")
		return
	}
	if err := s.store.UpdateContestState(ctx, contestID, domain.StatusOngoing, domain.PhaseQuestion, index); err != nil {
		s.log.Error().Err(err).Str("contest_id", contestID.String()).Msg("begin question: phase update failed")
		return
	}

	limitSec := s.questionLimitSec(contest, question)
	s.broadcastPhase(contestID, domain.StatusOngoing, domain.PhaseQuestion)
	s.sink.Broadcast(domain.ToAll(contestID, domain.EventQuestionShown, publicQuestion(question, limitSec)))
	if err := s.timers.Start(ctx, contestID, index, limitSec); err != nil {
		s.log.Error().Err(err).Str("contest_id", contestID.String()).Msg("timer start failed")
	}
}

// RevealAnswer closes the current question and publishes the correct
// answer with its explanation.
func (s *ContestService) RevealAnswer(ctx context.Context, contestID uuid.UUID, actor string) error {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if contest.HostID != actor {
		return domain.ErrNotAuthorized
	}
	return s.reveal(ctx, contest)
}

func (s *ContestService) reveal(ctx context.Context, contest domain.Contest) error {
	if contest.Status != domain.StatusOngoing || contest.CurrentQuestionIndex < 0 {
		return domain.ErrInvalidTransition
	}
	question, err := s.store.GetQuestionByIndex(ctx, contest.ID, contest.CurrentQuestionIndex)
	if err != nil {
		return err
	}

	s.cancelPendingTransition(contest.ID)
	if err := s.timers.Stop(ctx, contest.ID); err != nil && err != domain.ErrTimerNotFound {
		s.log.Warn().Err(err).Str("contest_id", contest.ID.String()).Msg("timer stop on reveal failed")
	}

	if err := s.store.UpdateQuestionStatus(ctx, question.ID, domain.QuestionRevealed); err != nil {
		return err
	}
	if err := s.store.UpdateContestState(ctx, contest.ID, domain.StatusOngoing, domain.PhaseRevealing, contest.CurrentQuestionIndex); err != nil {
		return err
	}

	s.broadcastPhase(contest.ID, domain.StatusOngoing, domain.PhaseRevealing)
	s.sink.Broadcast(domain.ToAll(contest.ID, domain.EventAnswerRevealed, map[string]any{
		"questionId":     question.ID,
		"correctAnswers": question.CorrectAnswers,
		"explanation":    question.Explanation,
	}))
	s.broadcastLeaderboard(ctx, contest.ID)
	return nil
}

// ShowLeaderboard flips the contest into the leaderboard phase and
// broadcasts the current standings.
func (s *ContestService) ShowLeaderboard(ctx context.Context, contestID uuid.UUID, actor string) error {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if contest.HostID != actor {
		return domain.ErrNotAuthorized
	}
	if contest.Status != domain.StatusOngoing {
		return domain.ErrInvalidTransition
	}
	if err := s.store.UpdateContestState(ctx, contestID, contest.Status, domain.PhaseLeaderboard, contest.CurrentQuestionIndex); err != nil {
		return err
	}
	s.broadcastPhase(contestID, contest.Status, domain.PhaseLeaderboard)
	s.broadcastLeaderboard(ctx, contestID)
	return nil
}

// SetPhase changes the phase directly. Host-only escape hatch for
// recovering from anomalies; it still cancels any pending transition so a
// stale countdown cannot fire into the new phase.
func (s *ContestService) SetPhase(ctx context.Context, contestID uuid.UUID, actor string, phase domain.Phase) error {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if contest.HostID != actor {
		return domain.ErrNotAuthorized
	}
	if !phase.Valid() {
		return domain.ErrInvalidTransition
	}
	s.cancelPendingTransition(contestID)
	if err := s.store.UpdateContestState(ctx, contestID, contest.Status, phase, contest.CurrentQuestionIndex); err != nil {
		return err
	}
	s.broadcastPhase(contestID, contest.Status, phase)
	return nil
}

// AdjustTimer folds extra (or removed) seconds into the running question
// timer. Referees need the extend-time permission.
func (s *ContestService) AdjustTimer(ctx context.Context, contestID uuid.UUID, actor string, deltaSec int) error {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if err := s.requireHostOr(ctx, contest, actor, domain.PermExtendTime); err != nil {
		return err
	}
	return s.timers.Adjust(ctx, contestID, deltaSec)
}

// ResetTimer rewinds the question timer to a fresh duration.
func (s *ContestService) ResetTimer(ctx context.Context, contestID uuid.UUID, actor string, durationSec int) error {
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if err := s.requireHostOr(ctx, contest, actor, domain.PermExtendTime); err != nil {
		return err
	}
	return s.timers.Reset(ctx, contestID, durationSec)
}

// TimerRemaining reports the authoritative remaining time in milliseconds.
func (s *ContestService) TimerRemaining(ctx context.Context, contestID uuid.UUID) (int64, error) {
	if contest, err := s.store.GetContest(ctx, contestID); err == nil {
		s.restoreTimer(ctx, contest)
	}
	return s.timers.Remaining(ctx, contestID)
}

// restoreTimer re-registers the countdown of a live question from the
// contest row's durable snapshot. The cache and the in-process registry
// are projections; after a restart the contest record is what survives.
func (s *ContestService) restoreTimer(ctx context.Context, contest domain.Contest) {
	if s.timers.Tracks(contest.ID) {
		return
	}
	if contest.Status != domain.StatusOngoing && contest.Status != domain.StatusPaused {
		return
	}
	if contest.Phase != domain.PhaseQuestion || contest.Timer.DurationMs == 0 {
		return
	}
	if !contest.Timer.Running && contest.Timer.RemainingMs == 0 {
		return
	}
	if err := s.timers.Restore(ctx, contest.ID, contest.Timer); err != nil {
		s.log.Warn().Err(err).Str("contest_id", contest.ID.String()).Msg("timer restore failed")
	}
}

// handleTimerExpiry is the engine's natural-expiry hook: time up means the
// answer is revealed without host action.
func (s *ContestService) handleTimerExpiry(contestID uuid.UUID, questionIndex int) {
	ctx := context.Background()
	contest, err := s.store.GetContest(ctx, contestID)
	if err != nil {
		s.log.Warn().Err(err).Str("contest_id", contestID.String()).Msg("expiry: contest load failed")
		return
	}
	if contest.Status != domain.StatusOngoing || contest.CurrentQuestionIndex != questionIndex || contest.Phase != domain.PhaseQuestion {
		return
	}
	if err := s.reveal(ctx, contest); err != nil {
		s.log.Warn().Err(err).Str("contest_id", contestID.String()).Msg("expiry: reveal failed")
	}
}

// requireHostOr authorizes the actor as host, or as a referee holding the
// given permission on the contest.
func (s *ContestService) requireHostOr(ctx context.Context, contest domain.Contest, actor string, perm domain.RefereePermission) error {
	if contest.HostID == actor {
		return nil
	}
	referee, err := s.store.GetReferee(ctx, contest.ID, actor)
	if err != nil {
		return domain.ErrNotAuthorized
	}
	if !referee.Has(perm) {
		return domain.ErrNotAuthorized
	}
	return nil
}

func (s *ContestService) questionLimitSec(contest domain.Contest, question domain.Question) int {
	if question.TimeLimitSec > 0 {
		return question.TimeLimitSec
	}
	return contest.Settings.TimeLimitSec
}

func (s *ContestService) broadcastPhase(contestID uuid.UUID, status domain.Status, phase domain.Phase) {
	s.sink.Broadcast(domain.ToAll(contestID, domain.EventPhaseChanged, map[string]any{
		"status": status,
		"phase":  phase,
	}))
}

// Leaderboard returns the cached standings, rebuilding the projection from
// the durable store on a miss.
func (s *ContestService) Leaderboard(ctx context.Context, contestID uuid.UUID) (domain.Leaderboard, error) {
	entries, err := s.boards.Top(ctx, contestID, leaderboardSize)
	if err != nil || len(entries) == 0 {
		entries, err = s.rebuildLeaderboard(ctx, contestID)
		if err != nil {
			return domain.Leaderboard{}, err
		}
	}
	return domain.Leaderboard{ContestID: contestID, Entries: entries, UpdatedAt: s.clock.Now()}, nil
}

func (s *ContestService) broadcastLeaderboard(ctx context.Context, contestID uuid.UUID) {
	leaderboard, err := s.Leaderboard(ctx, contestID)
	if err != nil {
		s.log.Warn().Err(err).Str("contest_id", contestID.String()).Msg("leaderboard load failed")
		return
	}
	s.sink.Broadcast(domain.ToAll(contestID, domain.EventLeaderboard, leaderboard))
}

// rebuildLeaderboard recomputes the projection from participant rows and
// repopulates the cache.
func (s *ContestService) rebuildLeaderboard(ctx context.Context, contestID uuid.UUID) ([]domain.LeaderboardEntry, error) {
	participants, err := s.store.ListParticipants(ctx, contestID)
	if err != nil {
		return nil, err
	}
	entries := rankParticipants(participants)
	if err := s.boards.Rebuild(ctx, contestID, entries); err != nil {
		s.log.Warn().Err(err).Str("contest_id", contestID.String()).Msg("leaderboard cache rebuild failed")
	}
	return entries, nil
}

// finalizeRanks orders participants, persists ranks 1..N and rebuilds the
// leaderboard projection.
func (s *ContestService) finalizeRanks(ctx context.Context, contestID uuid.UUID) (domain.Leaderboard, error) {
	participants, err := s.store.ListParticipants(ctx, contestID)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	entries := rankParticipants(participants)
	ranks := make(map[uuid.UUID]int, len(entries))
	for _, entry := range entries {
		ranks[entry.ParticipantID] = entry.Rank
	}
	if err := s.store.SaveParticipantRanks(ctx, contestID, ranks); err != nil {
		return domain.Leaderboard{}, err
	}
	if err := s.boards.Rebuild(ctx, contestID, entries); err != nil {
		s.log.Warn().Err(err).Str("contest_id", contestID.String()).Msg("final leaderboard cache rebuild failed")
	}
	return domain.Leaderboard{ContestID: contestID, Entries: entries, UpdatedAt: s.clock.Now()}, nil
}

// rankParticipants sorts by score desc, ties broken by correct count desc,
// and assigns ordinal ranks 1..N.
func rankParticipants(participants []domain.Participant) []domain.LeaderboardEntry {
	sorted := make([]domain.Participant, len(participants))
	copy(sorted, participants)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalScore != sorted[j].TotalScore {
			return sorted[i].TotalScore > sorted[j].TotalScore
		}
		return sorted[i].CorrectCount > sorted[j].CorrectCount
	})
	entries := make([]domain.LeaderboardEntry, 0, len(sorted))
	for i, p := range sorted {
		entries = append(entries, domain.LeaderboardEntry{
			ParticipantID: p.ID,
			Nickname:      p.Nickname,
			Score:         p.TotalScore,
			CorrectCount:  p.CorrectCount,
			Rank:          i + 1,
		})
	}
	return entries
}

// publicQuestion strips the correct answers before broadcast; the reveal
// event is the only place they leave the server.
func publicQuestion(q domain.Question, limitSec int) map[string]any {
	return map[string]any{
		"questionId":   q.ID,
		"index":        q.Order,
		"prompt":       q.Prompt,
		"options":      q.Options,
		"multiSelect":  q.MultiSelect,
		"timeLimitSec": limitSec,
		"points":       q.Points,
	}
}
