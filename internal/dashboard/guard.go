package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"institute-service/internal/apiclient"
	"institute-service/internal/auth"
)

// ErrNoSession means the screen must redirect to login without touching data.
var ErrNoSession = errors.New("no session")

// Reasons a session ended.
const (
	ReasonSignedOut = "signed_out"
	ReasonExpired   = "expired"
)

type Principals interface {
	CurrentPrincipal(ctx context.Context) (*auth.Principal, error)
}

type subscription struct {
	id int
	fn func(reason string)
}

// Guard is the explicit session context handed to every screen.
type Guard struct {
	source Principals
	now    func() time.Time

	mu        sync.Mutex
	principal *auth.Principal
	subs      []subscription
	nextID    int
}

func NewGuard(source Principals) *Guard {
	return &Guard{source: source, now: time.Now}
}

// Activate resolves the principal for a screen. Any unauthorized answer ends the session.
func (g *Guard) Activate(ctx context.Context) (*auth.Principal, error) {
	p, err := g.source.CurrentPrincipal(ctx)
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			g.Terminate(ReasonExpired)
			return nil, ErrNoSession
		}
		return nil, err
	}

	g.mu.Lock()
	g.principal = p
	g.mu.Unlock()
	return p, nil
}

// Principal returns the active principal, or nil once the session has ended or expired.
func (g *Guard) Principal() *auth.Principal {
	g.mu.Lock()
	p := g.principal
	g.mu.Unlock()

	if p != nil && !p.ExpiresAt.IsZero() && !g.now().Before(p.ExpiresAt) {
		g.Terminate(ReasonExpired)
		return nil
	}
	return p
}

// Subscribe registers fn for session termination. Subscribers run synchronously in registration order.
func (g *Guard) Subscribe(fn func(reason string)) (unsubscribe func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	id := g.nextID
	g.subs = append(g.subs, subscription{id: id, fn: fn})

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		for i, s := range g.subs {
			if s.id == id {
				g.subs = append(g.subs[:i], g.subs[i+1:]...)
				return
			}
		}
	}
}

// Terminate ends the session once; later calls are no-ops.
func (g *Guard) Terminate(reason string) {
	g.mu.Lock()
	if g.principal == nil {
		g.mu.Unlock()
		return
	}
	g.principal = nil
	subs := append([]subscription(nil), g.subs...)
	g.mu.Unlock()

	for _, s := range subs {
		s.fn(reason)
	}
}

// Observe ends the session when err says the server no longer accepts it.
func (g *Guard) Observe(err error) error {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		g.Terminate(ReasonExpired)
		return ErrNoSession
	}
	return err
}
