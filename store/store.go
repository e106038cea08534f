// Copyright (c) 2025 Veato.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"

	"github.com/veato-app/veato-server/models"
)

var (
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrAlreadyExists is returned by Create when the ID is taken.
	ErrAlreadyExists = errors.New("document already exists")

	// ErrVersionConflict is returned by conditional updates when the
	// document changed since it was read. Callers retry by re-reading.
	ErrVersionConflict = errors.New("document version conflict")
)

// PollStore persists poll documents with optimistic concurrency. Get returns
// the document and its current version; Update succeeds only when the stored
// version still matches expectedVersion.
type PollStore interface {
	Get(ctx context.Context, id string) (models.Poll, int64, error)
	Create(ctx context.Context, p models.Poll) error
	Update(ctx context.Context, p models.Poll, expectedVersion int64) error
}

// TeamStore persists team documents. Teams are updated last-writer-wins:
// every team mutation happens after a successful poll commit, which already
// serialized the contenders.
type TeamStore interface {
	Get(ctx context.Context, id string) (models.Team, error)
	Save(ctx context.Context, t models.Team) error
}

// ProfileDirectory resolves team members to their raw dining constraints.
// Users without a stored profile resolve to empty constraints.
type ProfileDirectory interface {
	Constraints(ctx context.Context, userIDs []string) ([]models.MemberConstraints, error)
	Save(ctx context.Context, userID string, c models.RawConstraints) error
}
