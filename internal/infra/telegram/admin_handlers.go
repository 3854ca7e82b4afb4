package telegram

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"tournament_scheduler/internal/app"
	"tournament_scheduler/internal/domain/prize"
	"tournament_scheduler/internal/domain/tournament"
)

const (
	defaultReportsLimit = 5
	maxReportsLimit     = 20
	unauthorizedReply   = "Error: you are not allowed to run this command."
)

// AdminOperations is what the admin commands need from app.AdminService.
type AdminOperations interface {
	StartTournament(ctx context.Context, performingAdminID int64, tournamentID string) (*app.FanoutResult, error)
	RunSweep(ctx context.Context, performingAdminID int64) (*app.SweepReport, error)
	RecentSweeps(ctx context.Context, performingAdminID int64, limit int) ([]app.SweepSummary, error)
	PreviewPrize(performingAdminID int64, entryFee, totalPlayers, commission, firstPrize, perKill float64, matchType string) (prize.Distribution, error)
}

type adminHandlers struct {
	ctx     context.Context
	admin   AdminOperations
	adminID int64
	logger  *logrus.Entry
}

// RegisterAdminHandlers registers the admin-only commands on the bot.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, admin AdminOperations, adminTelegramID int64, baseLogger *logrus.Entry) {
	h := &adminHandlers{ctx: ctx, admin: admin, adminID: adminTelegramID, logger: baseLogger}
	b.Handle("/start_tournament", h.startTournament)
	b.Handle("/sweep", h.sweep)
	b.Handle("/prize", h.prize)
	b.Handle("/reports", h.reports)
}

func (h *adminHandlers) handlerLogger(c telebot.Context, command string) *logrus.Entry {
	return h.logger.WithFields(logrus.Fields{
		"handler":   command,
		"sender_id": c.Sender().ID,
	})
}

func (h *adminHandlers) startTournament(c telebot.Context) error {
	log := h.handlerLogger(c, "/start_tournament")
	log.Info("Command received")

	if c.Sender().ID != h.adminID {
		log.Warn("Unauthorized access attempt")
		return c.Send(unauthorizedReply)
	}

	args := c.Args()
	// Expected format: /start_tournament <TournamentID>
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return c.Send("Invalid format. Use: /start_tournament <TournamentID>")
	}
	id := strings.TrimSpace(args[0])
	log = log.WithField("tournament_id", id)

	res, err := h.admin.StartTournament(h.ctx, c.Sender().ID, id)
	if err != nil {
		logWithError := log.WithError(err)
		switch {
		case errors.Is(err, app.ErrAdminNotAuthorized):
			logWithError.Warn("Admin not authorized (service level)")
			return c.Send(unauthorizedReply)
		case errors.Is(err, tournament.ErrNotFound):
			logWithError.Warn("Tournament to start not found")
			return c.Send(fmt.Sprintf("Tournament %s not found.", id))
		case errors.Is(err, app.ErrInvalidState):
			logWithError.Warn("Tournament is not upcoming")
			return c.Send(fmt.Sprintf("Tournament %s cannot be started: it is no longer upcoming.", id))
		default:
			logWithError.Error("Failed to start tournament")
			return c.Send(fmt.Sprintf("Failed to start tournament %s: %s", id, err.Error()))
		}
	}

	log.WithField("notified", len(res.Notifications.Succeeded)).Info("Tournament started manually")
	return c.Send(formatFanout(res))
}

func (h *adminHandlers) sweep(c telebot.Context) error {
	log := h.handlerLogger(c, "/sweep")
	log.Info("Command received")

	if c.Sender().ID != h.adminID {
		log.Warn("Unauthorized access attempt")
		return c.Send(unauthorizedReply)
	}

	report, err := h.admin.RunSweep(h.ctx, c.Sender().ID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrAdminNotAuthorized):
			return c.Send(unauthorizedReply)
		case errors.Is(err, app.ErrSweepInProgress):
			log.Info("Sweep already running")
			return c.Send("A sweep is already running. Try again in a moment.")
		default:
			log.WithError(err).Error("Manual sweep failed")
			return c.Send(fmt.Sprintf("Sweep failed: %s", err.Error()))
		}
	}
	return c.Send(formatSweep(report.Summary()))
}

func (h *adminHandlers) prize(c telebot.Context) error {
	log := h.handlerLogger(c, "/prize")

	if c.Sender().ID != h.adminID {
		log.Warn("Unauthorized access attempt")
		return c.Send(unauthorizedReply)
	}

	args := c.Args()
	// Expected format: /prize <entryFee> <totalPlayers> <commission%> <firstPrize> <perKill> [matchType]
	if len(args) < 5 || len(args) > 6 {
		return c.Send("Invalid format. Use: /prize <entryFee> <totalPlayers> <commission%> <firstPrize> <perKill> [solo|duo|squad]")
	}
	values := make([]float64, 5)
	for i := range values {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return c.Send(fmt.Sprintf("Error: %q must be a finite non-negative number.", args[i]))
		}
		values[i] = v
	}
	if values[2] > 100 {
		return c.Send("Error: commission must be between 0 and 100.")
	}
	matchType := "squad"
	if len(args) == 6 {
		matchType = args[5]
	}

	d, err := h.admin.PreviewPrize(c.Sender().ID, values[0], values[1], values[2], values[3], values[4], matchType)
	if err != nil {
		return c.Send(unauthorizedReply)
	}
	return c.Send(formatDistribution(d, values[3], values[4]))
}

func (h *adminHandlers) reports(c telebot.Context) error {
	log := h.handlerLogger(c, "/reports")

	if c.Sender().ID != h.adminID {
		log.Warn("Unauthorized access attempt")
		return c.Send(unauthorizedReply)
	}

	limit := defaultReportsLimit
	if args := c.Args(); len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return c.Send("Invalid format. Use: /reports [count]")
		}
		limit = min(n, maxReportsLimit)
	}

	summaries, err := h.admin.RecentSweeps(h.ctx, c.Sender().ID, limit)
	if err != nil {
		log.WithError(err).Error("Failed to list sweep reports")
		return c.Send(fmt.Sprintf("Failed to list sweep reports: %s", err.Error()))
	}
	if len(summaries) == 0 {
		return c.Send("No sweep reports recorded yet.")
	}

	var response strings.Builder
	for i, s := range summaries {
		if i > 0 {
			response.WriteString("\n\n")
		}
		response.WriteString(formatSweep(s))
	}
	return c.Send(response.String())
}

func formatFanout(res *app.FanoutResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tournament %s is now LIVE.\n", res.TournamentID)
	if res.ListErr != nil {
		b.WriteString("Registrations could not be loaded; notifications are queued for retry.")
		return b.String()
	}
	fmt.Fprintf(&b, "Notified %d of %d registered users", len(res.Notifications.Succeeded), len(res.Notifications.Succeeded)+len(res.Notifications.Failed))
	switch {
	case res.Announced:
		b.WriteString(", announcement created.")
	case res.AnnouncementErr != nil:
		b.WriteString(", announcement failed (queued for retry).")
	default:
		b.WriteString(".")
	}
	return b.String()
}

func formatSweep(s app.SweepSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sweep %s at %s\n", s.RunID, s.StartedAt.UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Transitioned: %d, unchanged: %d, failed: %d, deferred: %d",
		len(s.Transitioned), s.Unchanged, len(s.Failed), s.Deferred)
	for _, id := range s.Failed {
		fmt.Fprintf(&b, "\n- %s: %s", id, s.FailureReasons[id])
	}
	return b.String()
}

func formatDistribution(d prize.Distribution, firstPrize, perKill float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Match type: %s\n", d.MatchType)
	fmt.Fprintf(&b, "Total revenue: %.2f\n", d.TotalRevenue)
	fmt.Fprintf(&b, "Commission: %.2f\n", d.CompanyCommission)
	fmt.Fprintf(&b, "Prize pool: %.2f\n", d.PrizePool)
	fmt.Fprintf(&b, "Kill rewards: %.0f x %.2f = %.2f\n", d.KillCount, perKill, d.TotalKillReward)
	fmt.Fprintf(&b, "First prize: %.2f\n", firstPrize)
	fmt.Fprintf(&b, "Total payout: %.2f\n", d.TotalPrizeDistribution)
	if d.WithinBudget {
		b.WriteString("Within budget: yes")
	} else {
		b.WriteString("Within budget: NO")
	}
	return b.String()
}
