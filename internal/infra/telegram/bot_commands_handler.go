// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(b *telebot.Bot, adminTelegramID int64, baseLogger *logrus.Entry) {
	h := &botCommands{adminID: adminTelegramID, logger: baseLogger.WithField("handler_group", "start_help")}
	b.Handle("/start", h.start)
	b.Handle("/help", h.help)
}

type botCommands struct {
	adminID int64
	logger  *logrus.Entry
}

func (h *botCommands) start(c telebot.Context) error {
	senderID := c.Sender().ID
	logCtx := h.logger.WithField("command", "/start").WithField("sender_id", senderID)
	logCtx.Info("Processing /start command")

	if senderID == h.adminID {
		logCtx.Info("User identified as Admin")
		return c.Send(fmt.Sprintf("Hello, %s! The tournament scheduler is running. Use /help to list commands.", c.Sender().FirstName))
	}

	logCtx.Info("User is not the admin")
	return c.Send("This bot only serves the tournament scheduler's operators. Tournament updates are delivered in the app.")
}

func (h *botCommands) help(c telebot.Context) error {
	senderID := c.Sender().ID
	logCtx := h.logger.WithField("command", "/help").WithField("sender_id", senderID)
	logCtx.Info("Processing /help command")

	if senderID != h.adminID {
		return c.Send("No commands are available to you.")
	}

	var helpText strings.Builder
	helpText.WriteString("Admin commands:\n\n")
	helpText.WriteString("`/start_tournament <TournamentID>`\n - Force an upcoming tournament live now and notify its players.\n\n")
	helpText.WriteString("`/sweep`\n - Run a lifecycle sweep immediately.\n\n")
	helpText.WriteString("`/reports [count]`\n - Show the latest sweep reports.\n\n")
	helpText.WriteString("`/prize <entryFee> <totalPlayers> <commission%> <firstPrize> <perKill> [solo|duo|squad]`\n - Preview a prize distribution.\n\n")
	helpText.WriteString("`/help`\n - Show this message.")
	return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
}
