// Package ristretto keeps view states in-process with dgraph-io/ristretto.
package ristretto

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"hotel_reservations/internal/adapters/observability"
	"hotel_reservations/internal/domain"
)

// Sessions is the single-replica session store. maxSessions bounds memory;
// cost is one per session.
type Sessions struct {
	c   *ristretto.Cache[string, domain.ViewState]
	ttl time.Duration
}

func New(maxSessions int64, ttl time.Duration) (*Sessions, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, domain.ViewState]{
		NumCounters:        maxSessions * 10, // ~10x expected items
		MaxCost:            maxSessions,
		BufferItems:        64,
		IgnoreInternalCost: true, // cost counts sessions, not bytes
	})
	if err != nil {
		return nil, err
	}
	return &Sessions{c: c, ttl: ttl}, nil
}

func (s *Sessions) Get(_ context.Context, id string) (domain.ViewState, bool, error) {
	v, found := s.c.Get(id)
	if !found {
		observability.ObserveSession("memory", "miss")
		return domain.ViewState{}, false, nil
	}
	observability.ObserveSession("memory", "hit")
	return v.Clone(), true, nil
}

var ErrDropped = errors.New("session write dropped by cache")

// Set waits for the write to land so a following Get sees it.
func (s *Sessions) Set(_ context.Context, id string, v domain.ViewState) error {
	if !s.c.SetWithTTL(id, v.Clone(), 1, s.ttl) {
		observability.ObserveSession("memory", "dropped")
		return ErrDropped
	}
	s.c.Wait()
	observability.ObserveSession("memory", "set")
	return nil
}

func (s *Sessions) Del(_ context.Context, id string) error {
	s.c.Del(id)
	observability.ObserveSession("memory", "del")
	return nil
}

func (s *Sessions) Close() { s.c.Close() }
