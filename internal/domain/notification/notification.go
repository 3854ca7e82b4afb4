// internal/domain/notification/notification.go
package notification

import (
	"context"
	"errors"
	"time"
)

// ErrSink wraps any failure to persist a notification or an announcement.
var ErrSink = errors.New("notification sink error")

// Type classifies a per-user notification.
type Type string

const (
	TypeTournamentLive Type = "TOURNAMENT_LIVE"
)

// Notification is a per-user message created once per (tournament, user) pair on go-live.
type Notification struct {
	ID           string    `bson:"_id"`
	UserID       string    `bson:"userId"`
	TournamentID string    `bson:"tournamentId"`
	Type         Type      `bson:"type"`
	Title        string    `bson:"title"`
	Message      string    `bson:"message"`
	Read         bool      `bson:"read"`
	CreatedAt    time.Time `bson:"createdAt"`
}

// Announcement is the broadcast record created once per go-live.
type Announcement struct {
	ID           string    `bson:"_id"`
	TournamentID string    `bson:"tournamentId"`
	Title        string    `bson:"title"`
	Message      string    `bson:"message"`
	IsActive     bool      `bson:"isActive"`
	CreatedAt    time.Time `bson:"createdAt"`
}

// Sink persists notifications and announcements. Implementations wrap failures with ErrSink.
type Sink interface {
	CreateUserNotification(ctx context.Context, userID, title, body, tournamentID string) error
	CreateAnnouncement(ctx context.Context, title, body, tournamentID string) error
}
