// internal/domain/registration/registration.go
package registration

import (
	"context"
	"time"
)

// Registration links a user to a tournament. The scheduler only reads registrations.
type Registration struct {
	ID           string    `bson:"_id,omitempty"`
	UserID       string    `bson:"userId"`
	TournamentID string    `bson:"tournamentId"`
	CreatedAt    time.Time `bson:"createdAt,omitempty"`
}

// Repository provides read access to tournament registrations.
type Repository interface {
	ListByTournament(ctx context.Context, tournamentID string) ([]*Registration, error)
}
