package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"tournament_scheduler/internal/domain/notification"
)

// goLiveNamespace seeds the name-based ids of go-live documents.
var goLiveNamespace = uuid.MustParse("6f1d7c1e-3b0a-4c55-9a61-2f0c8e4b7d90")

// NotificationSink writes go-live notifications and announcements. Document ids are
// derived from the tournament (and user), so a repeated write is a duplicate-key no-op.
type NotificationSink struct {
	notifications *mongo.Collection
	announcements *mongo.Collection
	now           func() time.Time
}

func NewNotificationSink(notifications, announcements *mongo.Collection) *NotificationSink {
	return &NotificationSink{notifications: notifications, announcements: announcements, now: time.Now}
}

func (s *NotificationSink) CreateUserNotification(ctx context.Context, userID, title, body, tournamentID string) error {
	doc := notification.Notification{
		ID:           NotificationID(tournamentID, userID),
		UserID:       userID,
		TournamentID: tournamentID,
		Type:         notification.TypeTournamentLive,
		Title:        title,
		Message:      body,
		Read:         false,
		CreatedAt:    s.now(),
	}
	if _, err := s.notifications.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("%w: notification for user %s in tournament %s: %w", notification.ErrSink, userID, tournamentID, err)
	}
	return nil
}

func (s *NotificationSink) CreateAnnouncement(ctx context.Context, title, body, tournamentID string) error {
	doc := notification.Announcement{
		ID:           AnnouncementID(tournamentID),
		TournamentID: tournamentID,
		Title:        title,
		Message:      body,
		IsActive:     true,
		CreatedAt:    s.now(),
	}
	if _, err := s.announcements.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("%w: announcement for tournament %s: %w", notification.ErrSink, tournamentID, err)
	}
	return nil
}

func NotificationID(tournamentID, userID string) string {
	return uuid.NewSHA1(goLiveNamespace, []byte("notification:"+tournamentID+":"+userID)).String()
}

func AnnouncementID(tournamentID string) string {
	return uuid.NewSHA1(goLiveNamespace, []byte("announcement:"+tournamentID)).String()
}
