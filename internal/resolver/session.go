package resolver

import (
	"context"
	"sync"

	"github.com/couchcryptid/spin-location-service/internal/domain"
	"github.com/couchcryptid/spin-location-service/internal/geo"
)

// Session serializes resolutions from a single input source, such as a
// search box. Starting a resolution cancels the one still in flight, so a
// slow answer to an old query never replaces the answer to a newer one.
type Session struct {
	resolver *Resolver

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NewSession creates a Session backed by r.
func NewSession(r *Resolver) *Session {
	return &Session{resolver: r}
}

// Resolve cancels any in-flight resolution and resolves query. The boolean is
// false when a newer call superseded this one before it finished; the caller
// should discard the result.
func (s *Session) Resolve(ctx context.Context, query string) (domain.ResolvedLocation, bool) {
	return s.run(ctx, func(ctx context.Context) domain.ResolvedLocation {
		return s.resolver.Resolve(ctx, query)
	})
}

// ResolveNear is Resolve biased toward device.
func (s *Session) ResolveNear(ctx context.Context, query string, device geo.Coordinate) (domain.ResolvedLocation, bool) {
	return s.run(ctx, func(ctx context.Context) domain.ResolvedLocation {
		return s.resolver.ResolveNear(ctx, query, device)
	})
}

func (s *Session) run(ctx context.Context, resolve func(context.Context) domain.ResolvedLocation) (domain.ResolvedLocation, bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	s.cancel = cancel
	s.mu.Unlock()

	resolved := resolve(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.seq == seq
	if current {
		s.cancel = nil
	}
	return resolved, current
}

// Close cancels the in-flight resolution, if any.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Sessions keeps one Session per client ID. A client's Session exists only
// while it has a resolution in flight, so idle clients hold no memory.
type Sessions struct {
	resolver *Resolver

	mu     sync.Mutex
	active map[string]*clientSession
}

type clientSession struct {
	session  *Session
	inflight int
}

// NewSessions creates a client-keyed Session registry backed by r.
func NewSessions(r *Resolver) *Sessions {
	return &Sessions{resolver: r, active: make(map[string]*clientSession)}
}

// ResolveFor resolves query in clientID's Session, cancelling that client's
// previous in-flight call. A nil device uses the resolver's held location.
func (s *Sessions) ResolveFor(ctx context.Context, clientID, query string, device *geo.Coordinate) (domain.ResolvedLocation, bool) {
	cs := s.acquire(clientID)
	defer s.release(clientID, cs)

	if device != nil {
		return cs.session.ResolveNear(ctx, query, *device)
	}
	return cs.session.Resolve(ctx, query)
}

// Active returns the number of clients with a resolution in flight.
func (s *Sessions) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

func (s *Sessions) acquire(clientID string) *clientSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.active[clientID]
	if !ok {
		cs = &clientSession{session: NewSession(s.resolver)}
		s.active[clientID] = cs
	}
	cs.inflight++
	return cs
}

func (s *Sessions) release(clientID string, cs *clientSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs.inflight--
	if cs.inflight == 0 {
		delete(s.active, clientID)
	}
}
