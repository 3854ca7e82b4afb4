package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tournament_scheduler/internal/domain/registration"
)

type RegistrationRepository struct {
	collection *mongo.Collection
}

func NewRegistrationRepository(collection *mongo.Collection) *RegistrationRepository {
	return &RegistrationRepository{collection: collection}
}

func (r *RegistrationRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*registration.Registration, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"tournamentId": tournamentID})
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations for tournament %s: %w", tournamentID, err)
	}
	defer cursor.Close(ctx)

	var regs []*registration.Registration
	if err := cursor.All(ctx, &regs); err != nil {
		return nil, fmt.Errorf("failed to decode registrations for tournament %s: %w", tournamentID, err)
	}
	return regs, nil
}
