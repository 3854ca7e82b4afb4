package httpapi

import (
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"tournament_scheduler/internal/app"
	"tournament_scheduler/internal/domain/prize"
)

const (
	defaultSweepsLimit = 20
	maxSweepsLimit     = 100
)

type fanoutResponse struct {
	TournamentID      string             `json:"tournament_id"`
	Registrations     int                `json:"registrations"`
	NotifiedUsers     []string           `json:"notified_users"`
	FailedUsers       []string           `json:"failed_users"`
	Announced         bool               `json:"announced"`
	RegistrationError string             `json:"registration_error,omitempty"`
	Distribution      prize.Distribution `json:"distribution"`
}

type sweepResponse struct {
	RunID          string            `json:"run_id"`
	StartedAt      time.Time         `json:"started_at"`
	FinishedAt     time.Time         `json:"finished_at"`
	Transitioned   []string          `json:"transitioned"`
	Failed         []string          `json:"failed"`
	Unchanged      int               `json:"unchanged"`
	Deferred       int               `json:"deferred"`
	FailureReasons map[string]string `json:"failure_reasons,omitempty"`
}

func toSweepResponse(s app.SweepSummary) sweepResponse {
	return sweepResponse{
		RunID:          s.RunID,
		StartedAt:      s.StartedAt,
		FinishedAt:     s.FinishedAt,
		Transitioned:   nonNil(s.Transitioned),
		Failed:         nonNil(s.Failed),
		Unchanged:      s.Unchanged,
		Deferred:       s.Deferred,
		FailureReasons: s.FailureReasons,
	}
}

func (s *Server) startTournament(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "tournament id is required")
		return
	}

	res, err := s.admin.StartTournament(r.Context(), s.adminID, id)
	if err != nil {
		s.mapServiceError(w, r, err)
		return
	}

	failed := make([]string, 0, len(res.Notifications.Failed))
	for _, f := range res.Notifications.Failed {
		failed = append(failed, f.ID)
	}
	sort.Strings(failed)
	resp := fanoutResponse{
		TournamentID:  res.TournamentID,
		Registrations: res.Registrations,
		NotifiedUsers: nonNil(res.Notifications.Succeeded),
		FailedUsers:   failed,
		Announced:     res.Announced,
		Distribution:  res.Distribution,
	}
	if res.ListErr != nil {
		resp.RegistrationError = res.ListErr.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) runSweep(w http.ResponseWriter, r *http.Request) {
	report, err := s.admin.RunSweep(r.Context(), s.adminID)
	if err != nil {
		s.mapServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSweepResponse(report.Summary()))
}

func (s *Server) listSweeps(w http.ResponseWriter, r *http.Request) {
	limit := defaultSweepsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.failedValidationResponse(w, map[string]string{"limit": "must be a positive integer"})
			return
		}
		limit = min(n, maxSweepsLimit)
	}

	summaries, err := s.admin.RecentSweeps(r.Context(), s.adminID, limit)
	if err != nil {
		s.mapServiceError(w, r, err)
		return
	}
	out := make([]sweepResponse, 0, len(summaries))
	for _, sum := range summaries {
		out = append(out, toSweepResponse(sum))
	}
	s.writeJSON(w, http.StatusOK, envelope{"sweeps": out})
}

func (s *Server) prizeDistribution(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	errs := make(map[string]string)

	number := func(key string, required bool) float64 {
		raw := q.Get(key)
		if raw == "" {
			if required {
				errs[key] = "is required"
			}
			return 0
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs[key] = "must be a number"
			return 0
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs[key] = "must be a finite number"
			return 0
		}
		if v < 0 {
			errs[key] = "must not be negative"
		}
		return v
	}

	entryFee := number("entry_fee", true)
	totalPlayers := number("total_players", true)
	commission := number("commission_percentage", true)
	firstPrize := number("first_prize", true)
	perKill := number("per_kill_reward", false)
	if _, bad := errs["commission_percentage"]; !bad && commission > 100 {
		errs["commission_percentage"] = "must not exceed 100"
	}
	if len(errs) > 0 {
		s.failedValidationResponse(w, errs)
		return
	}

	d, err := s.admin.PreviewPrize(s.adminID, entryFee, totalPlayers, commission, firstPrize, perKill, q.Get("match_type"))
	if err != nil {
		s.mapServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
