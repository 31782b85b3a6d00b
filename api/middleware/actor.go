package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/dimensionalz-backend/api/responses"
	"github.com/angelmondragon/dimensionalz-backend/internal/identity"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
	"github.com/angelmondragon/dimensionalz-backend/pkg/logger"
)

const ctxActor contextKey = "actor"

type actorResolver interface {
	Actor(ctx context.Context, userID uuid.UUID) (identity.Actor, error)
}

// ActorContext loads the caller's owner id and current energy balance. It must run
// after Auth.
func ActorContext(resolver actorResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolver == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "identity provider unavailable"))
				return
			}
			userID, err := uuid.Parse(UserIDFromContext(r.Context()))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user"))
				return
			}
			actor, err := resolver.Actor(r.Context(), userID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func WithActor(ctx context.Context, actor identity.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}

// ActorFromContext returns the actor seeded by ActorContext.
func ActorFromContext(ctx context.Context) (identity.Actor, error) {
	if ctx != nil {
		if actor, ok := ctx.Value(ctxActor).(identity.Actor); ok && actor.OwnerID != uuid.Nil {
			return actor, nil
		}
	}
	return identity.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing")
}
