// internal/infra/mongodb/tournament_repository.go
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tournament_scheduler/internal/domain/tournament"
)

// TournamentRepository reads tournaments and performs the conditional status write.
type TournamentRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewTournamentRepository(collection *mongo.Collection) *TournamentRepository {
	return &TournamentRepository{collection: collection, now: time.Now}
}

// ListNonTerminal returns upcoming and live tournaments ordered by start time.
func (r *TournamentRepository) ListNonTerminal(ctx context.Context) ([]*tournament.Tournament, error) {
	filter := bson.M{"status": bson.M{"$in": tournament.NonTerminalStatuses}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query non-terminal tournaments: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*tournament.Tournament
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode non-terminal tournaments: %w", err)
	}
	return out, nil
}

func (r *TournamentRepository) GetByID(ctx context.Context, id string) (*tournament.Tournament, error) {
	var t tournament.Tournament
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tournament.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return &t, nil
}

// UpdateStatus sets status to next only while the stored status is still expected.
// A miss is resolved into ErrNotFound or ErrStatusConflict with a follow-up count.
func (r *TournamentRepository) UpdateStatus(ctx context.Context, id string, next, expected tournament.Status) error {
	filter := bson.M{"_id": id, "status": expected}
	update := bson.M{"$set": bson.M{"status": next, "updatedAt": r.now()}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update status of tournament %s to %s: %w", id, next, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to check tournament %s after conditional update: %w", id, err)
	}
	if n == 0 {
		return tournament.ErrNotFound
	}
	return tournament.ErrStatusConflict
}
