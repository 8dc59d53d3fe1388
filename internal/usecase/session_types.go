package usecase

import (
	"context"
	"sync"
	"time"

	"voiceguard/internal/domain"
	"voiceguard/internal/ports"
	"voiceguard/internal/trigger"
)

type activeSession struct {
	ctx      context.Context
	cancel   func()
	audio    ports.AudioSession
	stream   ports.StreamingSession
	matcher  *trigger.Matcher
	language string

	stateMu sync.Mutex
	state   domain.MonitorState
	failure error

	displayMu    sync.Mutex
	displayTimer *time.Timer

	eventsDone chan struct{}
	audioDone  chan struct{}
	finished   chan struct{}
}

// setState stores state and reports whether it changed.
func (s *activeSession) setState(state domain.MonitorState) bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.state == state {
		return false
	}
	s.state = state
	return true
}

func (s *activeSession) getState() domain.MonitorState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *activeSession) fail(err error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.failure == nil {
		s.failure = err
	}
}

func (s *activeSession) failed() error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.failure
}

// scheduleDisplayClear runs clear after grace unless a new chunk or teardown
// cancels it first.
func (s *activeSession) scheduleDisplayClear(grace time.Duration, clear func()) {
	s.displayMu.Lock()
	defer s.displayMu.Unlock()
	if s.displayTimer != nil {
		s.displayTimer.Stop()
	}
	s.displayTimer = time.AfterFunc(grace, clear)
}

func (s *activeSession) cancelDisplayClear() bool {
	s.displayMu.Lock()
	defer s.displayMu.Unlock()
	if s.displayTimer == nil {
		return false
	}
	stopped := s.displayTimer.Stop()
	s.displayTimer = nil
	return stopped
}
