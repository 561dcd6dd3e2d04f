package timer

import (
	"context"
	"sync"
	"time"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// tickInterval is the broadcast cadence of a running countdown.
const tickInterval = time.Second

// Broadcaster fans an event out to the contest's rooms. Emission is
// fire-and-forget; the engine never waits on delivery.
type Broadcaster interface {
	Broadcast(evt domain.Event)
}

// StateStore is the fast cache for timer snapshots. Write failures on a
// tick are recoverable: the next tick rewrites the full state.
type StateStore interface {
	SaveTimerState(ctx context.Context, contestID uuid.UUID, state domain.TimerState) error
	LoadTimerState(ctx context.Context, contestID uuid.UUID) (domain.TimerState, bool, error)
	ClearTimerState(ctx context.Context, contestID uuid.UUID) error
}

// Mirror persists a denormalized snapshot into the durable contest record
// so a cold cache can be rebuilt after restart.
type Mirror interface {
	SaveTimerSnapshot(ctx context.Context, contestID uuid.UUID, state domain.TimerState) error
}

// TickPayload is broadcast on every tick and on timer control events.
type TickPayload struct {
	QuestionIndex int   `json:"questionIndex"`
	RemainingMs   int64 `json:"remainingMs"`
	DurationMs    int64 `json:"durationMs,omitempty"`
	Expired       bool  `json:"expired,omitempty"`
}

// Engine owns one countdown per running contest. Countdowns are held in an
// explicit registry keyed by contest id so Shutdown can tear every handle
// down; nothing lives in package globals.
type Engine struct {
	clock   clockwork.Clock
	cache   StateStore
	mirror  Mirror
	sink    Broadcaster
	log     zerolog.Logger
	onEnded func(contestID uuid.UUID, questionIndex int)

	mu         sync.Mutex
	countdowns map[uuid.UUID]*countdown
}

// countdown is the in-memory handle for one contest's timer. While running
// only startedAt is authoritative; state.RemainingMs is the remainder
// frozen at the last checkpoint. The tick loop recomputes from wall-clock
// deltas, it never decrements its own counter.
type countdown struct {
	mu    sync.Mutex
	state domain.TimerState
	stop  chan struct{} // closed to cancel the current tick loop
	ended bool
}

// New builds an engine. onEnded is invoked once, on its own goroutine, when
// a countdown expires naturally; it may be nil.
func New(clock clockwork.Clock, cache StateStore, mirror Mirror, sink Broadcaster, log zerolog.Logger, onEnded func(contestID uuid.UUID, questionIndex int)) *Engine {
	return &Engine{
		clock:      clock,
		cache:      cache,
		mirror:     mirror,
		sink:       sink,
		log:        log.With().Str("component", "timer").Logger(),
		onEnded:    onEnded,
		countdowns: make(map[uuid.UUID]*countdown),
	}
}

// Start begins a fresh countdown for the contest's current question. Any
// previous countdown for the contest is stopped first. The durable mirror
// write is returned to the caller; cache and broadcast are best-effort.
func (e *Engine) Start(ctx context.Context, contestID uuid.UUID, questionIndex int, durationSec int) error {
	now := e.clock.Now()
	state := domain.TimerState{
		QuestionIndex: questionIndex,
		DurationMs:    int64(durationSec) * 1000,
		RemainingMs:   int64(durationSec) * 1000,
		Running:       true,
		StartedAt:     now,
	}

	e.mu.Lock()
	if prev, ok := e.countdowns[contestID]; ok {
		prev.cancelLoop()
	}
	c := &countdown{state: state, stop: make(chan struct{})}
	e.countdowns[contestID] = c
	e.mu.Unlock()

	if err := e.persist(ctx, contestID, state); err != nil {
		return err
	}

	e.sink.Broadcast(domain.ToAll(contestID, domain.EventTimerStarted, TickPayload{
		QuestionIndex: questionIndex,
		RemainingMs:   state.RemainingMs,
		DurationMs:    state.DurationMs,
	}))

	go e.runLoop(contestID, c, c.stop)
	return nil
}

// Pause freezes the remaining time. The countdown stays registered so it
// can be resumed.
func (e *Engine) Pause(ctx context.Context, contestID uuid.UUID) error {
	c, err := e.get(contestID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if !c.state.Running {
		c.mu.Unlock()
		return domain.ErrInvalidTransition
	}
	now := e.clock.Now()
	c.state.RemainingMs = c.state.RemainingAt(now)
	c.state.Running = false
	c.state.StartedAt = time.Time{}
	c.state.PausedAt = now
	c.cancelLoopLocked()
	state := c.state
	c.mu.Unlock()

	if err := e.persist(ctx, contestID, state); err != nil {
		return err
	}
	e.sink.Broadcast(domain.ToAll(contestID, domain.EventTimerPaused, TickPayload{
		QuestionIndex: state.QuestionIndex,
		RemainingMs:   state.RemainingMs,
	}))
	return nil
}

// Resume continues a paused countdown from its frozen remainder.
func (e *Engine) Resume(ctx context.Context, contestID uuid.UUID) error {
	c, err := e.get(contestID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.state.Running || c.ended {
		c.mu.Unlock()
		return domain.ErrInvalidTransition
	}
	c.state.Running = true
	c.state.StartedAt = e.clock.Now()
	c.state.PausedAt = time.Time{}
	c.stop = make(chan struct{})
	stop := c.stop
	state := c.state
	c.mu.Unlock()

	if err := e.persist(ctx, contestID, state); err != nil {
		return err
	}
	e.sink.Broadcast(domain.ToAll(contestID, domain.EventTimerResumed, TickPayload{
		QuestionIndex: state.QuestionIndex,
		RemainingMs:   state.RemainingMs,
	}))

	go e.runLoop(contestID, c, stop)
	return nil
}

// Adjust folds a signed delta into the remaining time. While running the
// countdown is re-based to "now" so the effective deadline shifts without a
// pause/resume cycle.
func (e *Engine) Adjust(ctx context.Context, contestID uuid.UUID, deltaSec int) error {
	c, err := e.get(contestID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	now := e.clock.Now()
	remaining := c.state.RemainingAt(now) + int64(deltaSec)*1000
	if remaining < 0 {
		remaining = 0
	}
	c.state.RemainingMs = remaining
	if c.state.Running {
		c.state.StartedAt = now
	}
	state := c.state
	c.mu.Unlock()

	if err := e.persist(ctx, contestID, state); err != nil {
		return err
	}
	e.sink.Broadcast(domain.ToAll(contestID, domain.EventTimerAdjusted, TickPayload{
		QuestionIndex: state.QuestionIndex,
		RemainingMs:   state.RemainingMs,
	}))
	return nil
}

// Reset stops the countdown and rewinds it to a full duration. A zero
// newDurationSec keeps the previous duration.
func (e *Engine) Reset(ctx context.Context, contestID uuid.UUID, newDurationSec int) error {
	c, err := e.get(contestID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.cancelLoopLocked()
	if newDurationSec > 0 {
		c.state.DurationMs = int64(newDurationSec) * 1000
	}
	c.state.RemainingMs = c.state.DurationMs
	c.state.Running = false
	c.state.StartedAt = time.Time{}
	c.state.PausedAt = e.clock.Now()
	c.ended = false
	state := c.state
	c.mu.Unlock()

	if err := e.persist(ctx, contestID, state); err != nil {
		return err
	}
	e.sink.Broadcast(domain.ToAll(contestID, domain.EventTimerAdjusted, TickPayload{
		QuestionIndex: state.QuestionIndex,
		RemainingMs:   state.RemainingMs,
		DurationMs:    state.DurationMs,
	}))
	return nil
}

// Stop tears the countdown down and removes it from the registry. Used for
// host-initiated stops; the terminal event carries the unexpired remainder.
func (e *Engine) Stop(ctx context.Context, contestID uuid.UUID) error {
	e.mu.Lock()
	c, ok := e.countdowns[contestID]
	if ok {
		delete(e.countdowns, contestID)
	}
	e.mu.Unlock()
	if !ok {
		return domain.ErrTimerNotFound
	}

	c.mu.Lock()
	c.cancelLoopLocked()
	now := e.clock.Now()
	c.state.RemainingMs = c.state.RemainingAt(now)
	c.state.Running = false
	c.state.StartedAt = time.Time{}
	c.state.PausedAt = now
	alreadyEnded := c.ended
	c.ended = true
	state := c.state
	c.mu.Unlock()

	if err := e.persist(ctx, contestID, state); err != nil {
		return err
	}
	if !alreadyEnded {
		e.sink.Broadcast(domain.ToAll(contestID, domain.EventTimerEnded, TickPayload{
			QuestionIndex: state.QuestionIndex,
			RemainingMs:   state.RemainingMs,
		}))
	}
	return nil
}

// Remaining reports the countdown's remaining milliseconds, recomputed
// lazily from the wall clock. Falls back to the cache when the contest has
// no in-process handle (e.g. after a restart, before rehydration).
func (e *Engine) Remaining(ctx context.Context, contestID uuid.UUID) (int64, error) {
	e.mu.Lock()
	c, ok := e.countdowns[contestID]
	e.mu.Unlock()
	if ok {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.state.RemainingAt(e.clock.Now()), nil
	}

	state, found, err := e.cache.LoadTimerState(ctx, contestID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, domain.ErrTimerNotFound
	}
	return state.RemainingAt(e.clock.Now()), nil
}

// Tracks reports whether the contest has an in-process countdown handle.
// False after a restart until Restore re-registers it.
func (e *Engine) Tracks(contestID uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.countdowns[contestID]
	return ok
}

// Restore re-registers a countdown from a durable snapshot, resuming the
// tick loop if it was running when the snapshot was taken.
func (e *Engine) Restore(ctx context.Context, contestID uuid.UUID, state domain.TimerState) error {
	c := &countdown{state: state, stop: make(chan struct{})}

	e.mu.Lock()
	if prev, ok := e.countdowns[contestID]; ok {
		prev.cancelLoop()
	}
	e.countdowns[contestID] = c
	e.mu.Unlock()

	if err := e.cache.SaveTimerState(ctx, contestID, state); err != nil {
		e.log.Warn().Err(err).Str("contest_id", contestID.String()).Msg("cache rehydrate failed")
	}
	if state.Running {
		go e.runLoop(contestID, c, c.stop)
	}
	return nil
}

// Shutdown cancels every registered countdown. State already persisted is
// left for rehydration.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, c := range e.countdowns {
		c.cancelLoop()
		delete(e.countdowns, id)
	}
}

func (e *Engine) get(contestID uuid.UUID) (*countdown, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.countdowns[contestID]
	if !ok {
		return nil, domain.ErrTimerNotFound
	}
	return c, nil
}

// persist writes the cache copy and mirrors the snapshot into the durable
// contest record. The mirror error is the one surfaced: durable state must
// not silently diverge from the cache.
func (e *Engine) persist(ctx context.Context, contestID uuid.UUID, state domain.TimerState) error {
	if err := e.cache.SaveTimerState(ctx, contestID, state); err != nil {
		e.log.Warn().Err(err).Str("contest_id", contestID.String()).Msg("timer cache write failed")
	}
	return e.mirror.SaveTimerSnapshot(ctx, contestID, state)
}

// runLoop broadcasts the remaining time once per tick and fires the
// terminal ended event exactly once. The tick that observes zero stops the
// ticker before anything else can schedule another tick.
func (e *Engine) runLoop(contestID uuid.UUID, c *countdown, stop chan struct{}) {
	ticker := e.clock.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.Chan():
			c.mu.Lock()
			if !c.state.Running || c.ended {
				c.mu.Unlock()
				return
			}
			remaining := c.state.RemainingAt(now)
			if remaining > 0 {
				state := c.state
				c.mu.Unlock()
				// Cache refresh and broadcast are both self-healing on
				// the next tick.
				state.RemainingMs = remaining
				state.StartedAt = now
				if err := e.cache.SaveTimerState(context.Background(), contestID, state); err != nil {
					e.log.Debug().Err(err).Str("contest_id", contestID.String()).Msg("tick cache write failed")
				}
				e.sink.Broadcast(domain.ToAll(contestID, domain.EventTimerTick, TickPayload{
					QuestionIndex: state.QuestionIndex,
					RemainingMs:   remaining,
				}))
				continue
			}

			ticker.Stop()
			c.state.RemainingMs = 0
			c.state.Running = false
			c.state.StartedAt = time.Time{}
			c.state.PausedAt = now
			c.ended = true
			state := c.state
			c.mu.Unlock()

			if err := e.cache.SaveTimerState(context.Background(), contestID, state); err != nil {
				e.log.Warn().Err(err).Str("contest_id", contestID.String()).Msg("final timer cache write failed")
			}
			e.sink.Broadcast(domain.ToAll(contestID, domain.EventTimerEnded, TickPayload{
				QuestionIndex: state.QuestionIndex,
				RemainingMs:   0,
				Expired:       true,
			}))
			e.log.Info().Str("contest_id", contestID.String()).Int("question", state.QuestionIndex).Msg("countdown expired")
			if e.onEnded != nil {
				go e.onEnded(contestID, state.QuestionIndex)
			}
			return
		}
	}
}

func (c *countdown) cancelLoop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLoopLocked()
}

// cancelLoopLocked closes the current stop channel exactly once.
func (c *countdown) cancelLoopLocked() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}
