// Package trail records the append-only cognitive trail of cart interactions.
package trail

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dimensionalz-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

type RecorderParams struct {
	Repository *Repository
	Narrator   Narrator
	Now        func() time.Time
}

type Recorder struct {
	repo     *Repository
	narrator Narrator
	now      func() time.Time
}

func NewRecorder(params RecorderParams) (*Recorder, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("trail repository required")
	}
	narrator := params.Narrator
	if narrator == nil {
		narrator = NewThemedNarrator(nil)
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Recorder{repo: params.Repository, narrator: narrator, now: now}, nil
}

// Record appends one entry inside tx. The narrative is rendered here so the caller's
// state change is already decided.
func (r *Recorder) Record(ctx context.Context, tx *gorm.DB, cartID uuid.UUID, event Event) (*models.TrailEntry, error) {
	if !event.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown trail kind %q", event.Kind))
	}
	entry := &models.TrailEntry{
		CartID:    cartID,
		Kind:      event.Kind,
		Narrative: r.narrator.Narrate(event),
		CreatedAt: r.now().UTC(),
	}
	if err := r.repo.WithTx(tx).Append(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append trail entry")
	}
	return entry, nil
}

// List returns up to limit entries, newest first.
func (r *Recorder) List(ctx context.Context, cartID uuid.UUID, limit int) ([]models.TrailEntry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	rows, err := r.repo.ListByCart(ctx, cartID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list trail entries")
	}
	return rows, nil
}
