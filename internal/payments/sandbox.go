package payments

import (
	"context"
	"fmt"
	"sync"
)

// SandboxGateway hands out local session URLs. It backs dev environments that
// run without Stripe credentials.
type SandboxGateway struct {
	baseURL string

	mu       sync.Mutex
	sessions map[string]Session
	expired  map[string]bool
}

func NewSandboxGateway(baseURL string) *SandboxGateway {
	return &SandboxGateway{
		baseURL:  baseURL,
		sessions: make(map[string]Session),
		expired:  make(map[string]bool),
	}
}

// CreateSession returns the same session for a repeated idempotency token.
func (g *SandboxGateway) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	if err := req.Validate(); err != nil {
		return Session{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if existing, ok := g.sessions[req.IdempotencyToken]; ok {
		return existing, nil
	}
	id := fmt.Sprintf("cs_sandbox_%s", req.OrderID.String())
	created := Session{ID: id, URL: fmt.Sprintf("%s/sandbox/checkout/%s", g.baseURL, id)}
	g.sessions[req.IdempotencyToken] = created
	return created, nil
}

func (g *SandboxGateway) ExpireSession(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expired[sessionID] = true
	return nil
}

// Expired reports whether ExpireSession was called for id.
func (g *SandboxGateway) Expired(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.expired[id]
}
