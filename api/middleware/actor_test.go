package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/dimensionalz-backend/internal/identity"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
)

type stubResolver struct {
	actor identity.Actor
	err   error
}

func (s stubResolver) Actor(_ context.Context, userID uuid.UUID) (identity.Actor, error) {
	if s.err != nil {
		return identity.Actor{}, s.err
	}
	actor := s.actor
	actor.OwnerID = userID
	return actor, nil
}

func TestActorContextSeedsActor(t *testing.T) {
	userID := uuid.New()
	var got identity.Actor
	handler := ActorContext(stubResolver{actor: identity.Actor{EnergyBalance: 420}}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := ActorFromContext(r.Context())
		if err != nil {
			t.Fatalf("actor from context: %v", err)
		}
		got = actor
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got.OwnerID != userID || got.EnergyBalance != 420 {
		t.Fatalf("unexpected actor %+v", got)
	}
}

func TestActorContextRejectsUnknownUser(t *testing.T) {
	handler := ActorContext(stubResolver{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown user")}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestActorContextRequiresUserID(t *testing.T) {
	handler := ActorContext(stubResolver{}, nil)(okHandler())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestActorFromContextMissing(t *testing.T) {
	if _, err := ActorFromContext(context.Background()); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
