package app

import (
	"sync"

	"hotel_reservations/internal/domain"
)

// State is the view-state container one UI session works against. Every
// transition goes through apply, so observers see each step in order.
type State struct {
	mu       sync.Mutex
	v        domain.ViewState
	onChange func(domain.ViewState)
}

func NewState(v domain.ViewState) *State {
	if v.Reservations == nil {
		v.Reservations = []domain.Reservation{}
	}
	return &State{v: v}
}

// OnChange registers fn to receive a snapshot after every transition.
// fn runs under the state lock and must not call back into the State.
func (s *State) OnChange(fn func(domain.ViewState)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *State) Snapshot() domain.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.Clone()
}

func (s *State) apply(fn func(v *domain.ViewState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.v)
	if s.onChange != nil {
		s.onChange(s.v.Clone())
	}
}
