// internal/domain/notification/message.go
package notification

import (
	"fmt"
	"strings"

	"tournament_scheduler/internal/domain/tournament"
)

const (
	goLiveHeadline = "Tournament \"%s\" has started!"
	goLiveStatus   = "Tournament is now LIVE!"
	goLiveSignoff  = "Good luck and have fun!"
)

// GoLiveTitle is the short title shown on notifications and the announcement.
func GoLiveTitle(t *tournament.Tournament) string {
	return fmt.Sprintf("%s is LIVE", t.Title)
}

// GoLiveMessage renders the go-live body. The room block appears only when both
// the room id and password are present.
func GoLiveMessage(t *tournament.Tournament) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(goLiveHeadline, t.Title))
	b.WriteString("\n\n")
	if t.HasRoomDetails() {
		b.WriteString("Room Details:\n")
		b.WriteString(fmt.Sprintf("Room ID: %s\n", t.RoomID))
		b.WriteString(fmt.Sprintf("Password: %s\n", t.RoomPassword))
		b.WriteString("\n")
	}
	b.WriteString(goLiveStatus)
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d/%d teams registered", t.RegisteredTeams, t.MaxTeams))
	b.WriteString("\n\n")
	b.WriteString(goLiveSignoff)
	return b.String()
}
