package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_reservations/internal/app"
	"hotel_reservations/internal/domain"
)

const SessionCookie = "hotel_session"

type stateKey struct{}

// liveSession is the one State every in-flight request of a session shares.
// ready closes once st (or err) is set.
type liveSession struct {
	ready  chan struct{}
	st     *app.State
	err    error
	unlock func()
	refs   int
}

// sessionRegistry hands out live states. A session is read from the store
// when its first request arrives and dropped when its last one finishes;
// in between the store only mirrors the live state.
type sessionRegistry struct {
	store domain.SessionStore

	mu   sync.Mutex
	live map[string]*liveSession
}

func newSessionRegistry(store domain.SessionStore) *sessionRegistry {
	return &sessionRegistry{store: store, live: map[string]*liveSession{}}
}

func (r *sessionRegistry) acquire(ctx context.Context, id string) (*app.State, func(), error) {
	r.mu.Lock()
	s, ok := r.live[id]
	if !ok {
		s = &liveSession{ready: make(chan struct{})}
		r.live[id] = s
	}
	s.refs++
	r.mu.Unlock()

	release := func() { r.release(id, s) }
	if !ok {
		s.st, s.unlock, s.err = r.hydrate(ctx, id)
		close(s.ready)
	} else {
		select {
		case <-s.ready:
		case <-ctx.Done():
			release()
			return nil, nil, ctx.Err()
		}
	}
	if s.err != nil {
		release()
		return nil, nil, s.err
	}
	return s.st, release, nil
}

func (r *sessionRegistry) release(id string, s *liveSession) {
	r.mu.Lock()
	s.refs--
	last := s.refs == 0
	if last && r.live[id] == s {
		delete(r.live, id)
	}
	r.mu.Unlock()
	if last && s.unlock != nil {
		s.unlock()
	}
}

// hydrate takes the cross-process lock when the store has one, then loads
// the saved state and mirrors every transition back to the store.
func (r *sessionRegistry) hydrate(ctx context.Context, id string) (*app.State, func(), error) {
	var unlock func()
	if l, ok := r.store.(domain.SessionLocker); ok {
		u, err := l.Lock(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		unlock = u
	}

	v, ok, err := r.store.Get(ctx, id)
	if err != nil {
		if unlock != nil {
			unlock()
		}
		return nil, nil, err
	}
	if !ok {
		v = domain.NewViewState()
	}
	// a crash mid-operation can leave the flag set; nothing is in flight now
	v.Loading = false

	st := app.NewState(v)
	st.OnChange(func(v domain.ViewState) {
		// transitions arrive in order under the state lock, so saves do too
		if err := r.store.Set(context.Background(), id, v); err != nil {
			log.Error().Err(err).Str("session", id).Msg("session save failed")
		}
	})
	return st, unlock, nil
}

// Session attaches the caller's live view state to the request context. A
// missing or malformed cookie starts a fresh session.
func Session(store domain.SessionStore, ttl time.Duration) func(http.Handler) http.Handler {
	reg := newSessionRegistry(store)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sessionID(r)
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			st, release, err := reg.acquire(r.Context(), id)
			if err != nil {
				log.Error().Err(err).Str("session", id).Msg("session load failed")
				writeProblem(w, http.StatusServiceUnavailable, "Session Unavailable", "session store unavailable")
				return
			}
			defer release()

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), stateKey{}, st)))
		})
	}
}

func sessionID(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

// StateFrom returns the session state placed by Session, or nil.
func StateFrom(ctx context.Context) *app.State {
	st, _ := ctx.Value(stateKey{}).(*app.State)
	return st
}
