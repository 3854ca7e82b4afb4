// internal/infra/telegram/client.go
package telegram

import (
	"fmt"

	"gopkg.in/telebot.v3"
)

// sender is the part of *telebot.Bot the adapter uses.
type sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// TelebotAdapter delivers operational alerts to the admin chat over gopkg.in/telebot.v3.
type TelebotAdapter struct {
	bot         sender
	adminChatID int64
}

func NewTelebotAdapter(b *telebot.Bot, adminChatID int64) *TelebotAdapter {
	return &TelebotAdapter{bot: b, adminChatID: adminChatID}
}

// SendMessage sends a text message to the specified recipient.
func (tba *TelebotAdapter) SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}

	recipient := &telebot.User{ID: recipientChatID}
	_, err := tba.bot.Send(recipient, text, options)
	return err
}

// NotifyAdmin implements telegram.AdminNotifier.
func (tba *TelebotAdapter) NotifyAdmin(text string) error {
	if err := tba.SendMessage(tba.adminChatID, text, &telebot.SendOptions{DisableWebPagePreview: true}); err != nil {
		return fmt.Errorf("failed to notify admin: %w", err)
	}
	return nil
}
