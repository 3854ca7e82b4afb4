// internal/domain/tournament/repository.go
package tournament

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("tournament not found")
	// ErrStatusConflict is returned by UpdateStatus when the stored status no longer matches the expected one.
	ErrStatusConflict = errors.New("tournament status changed concurrently")
)

// Repository defines the tournament operations the lifecycle scheduler depends on.
type Repository interface {
	// ListNonTerminal returns every tournament whose status is upcoming or live.
	ListNonTerminal(ctx context.Context) ([]*Tournament, error)
	GetByID(ctx context.Context, id string) (*Tournament, error)
	// UpdateStatus writes next only if the stored status still equals expected.
	// It returns ErrStatusConflict when the guard fails and ErrNotFound when no such tournament exists.
	UpdateStatus(ctx context.Context, id string, next Status, expected Status) error
}
