// internal/domain/tournament/tournament.go
package tournament

import (
	"time"

	"tournament_scheduler/internal/domain/prize"
)

// Tournament is the subset of the tournament document the lifecycle scheduler works with.
// Only Status is ever written by the scheduler.
type Tournament struct {
	ID                          string    `bson:"_id"`
	Title                       string    `bson:"title"`
	Status                      Status    `bson:"status"`
	StartTime                   time.Time `bson:"startTime"`
	RoomID                      string    `bson:"roomId,omitempty"`
	RoomPassword                string    `bson:"roomPassword,omitempty"`
	RegisteredTeams             int       `bson:"registeredTeams"`
	MaxTeams                    int       `bson:"maxTeams"`
	EntryFee                    float64   `bson:"entryFee"`
	CompanyCommissionPercentage float64   `bson:"companyCommissionPercentage"`
	FirstPrize                  float64   `bson:"firstPrize"`
	PerKillReward               float64   `bson:"perKillReward"`
	MatchType                   string    `bson:"matchType"`
	CreatedAt                   time.Time `bson:"createdAt,omitempty"`
	UpdatedAt                   time.Time `bson:"updatedAt,omitempty"`
}

// HasRoomDetails is true only when both the room id and password are set.
func (t *Tournament) HasRoomDetails() bool {
	return t.RoomID != "" && t.RoomPassword != ""
}

// TotalPlayers counts individual players for a full lobby: MaxTeams units of the match type's team size.
func (t *Tournament) TotalPlayers() int {
	return t.MaxTeams * prize.ParseMatchType(t.MatchType).TeamSize()
}

// Distribution derives the prize distribution from the tournament's configuration.
func (t *Tournament) Distribution() prize.Distribution {
	return prize.ComputeDistribution(
		t.EntryFee,
		float64(t.TotalPlayers()),
		t.CompanyCommissionPercentage,
		t.FirstPrize,
		t.PerKillReward,
		t.MatchType,
	)
}
