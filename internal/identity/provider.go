// Package identity resolves the acting identity for cart and checkout calls.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
)

// Actor is passed explicitly into every cart and checkout operation. It is a read-only
// snapshot taken at request time.
type Actor struct {
	OwnerID       uuid.UUID
	EnergyBalance int64
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Provider struct {
	users userLoader
}

func NewProvider(users userLoader) (*Provider, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &Provider{users: users}, nil
}

// Actor loads the current energy balance for userID.
func (p *Provider) Actor(ctx context.Context, userID uuid.UUID) (Actor, error) {
	if userID == uuid.Nil {
		return Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user")
	}
	user, err := p.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown user")
		}
		return Actor{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return Actor{OwnerID: user.ID, EnergyBalance: user.EnergyBalance}, nil
}
