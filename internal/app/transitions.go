package app

import (
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// pendingTransition is one armed countdown→question flip. At most one
// exists per contest; arming a new one cancels the old.
type pendingTransition struct {
	timer clockwork.Timer
	done  chan struct{}
}

func (p *pendingTransition) cancel() {
	select {
	case <-p.done:
		return
	default:
		close(p.done)
	}
	stopAndDrainTimer(p.timer)
}

// scheduleQuestionStart arms the fixed 3-second delayed transition into
// the question phase. Every phase-ending or pausing operation cancels the
// handle through cancelPendingTransition before touching state.
func (s *ContestService) scheduleQuestionStart(contestID uuid.UUID, index int) {
	t := s.clock.NewTimer(countdownDelay)
	p := &pendingTransition{timer: t, done: make(chan struct{})}

	s.pendingMu.Lock()
	if prev, ok := s.pending[contestID]; ok {
		prev.cancel()
	}
	s.pending[contestID] = p
	s.pendingMu.Unlock()

	go func() {
		select {
		case <-t.Chan():
			s.pendingMu.Lock()
			if s.pending[contestID] == p {
				delete(s.pending, contestID)
			}
			s.pendingMu.Unlock()
			s.beginQuestion(contestID, index)
		case <-p.done:
		}
	}()
}

// cancelPendingTransition removes and cancels the contest's armed
// transition, if any.
func (s *ContestService) cancelPendingTransition(contestID uuid.UUID) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if p, ok := s.pending[contestID]; ok {
		p.cancel()
		delete(s.pending, contestID)
	}
}

// stopAndDrainTimer stops a timer and drains its channel so the waiting
// goroutine cannot observe a late fire.
func stopAndDrainTimer(t clockwork.Timer) {
	if !t.Stop() {
		select {
		case <-t.Chan():
		default:
		}
	}
}
