// Package httpapi serves the scheduler's admin operations over HTTP.
package httpapi

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"tournament_scheduler/internal/app"
	"tournament_scheduler/internal/domain/prize"
)

// AdminOperations is what the API needs from app.AdminService.
type AdminOperations interface {
	StartTournament(ctx context.Context, performingAdminID int64, tournamentID string) (*app.FanoutResult, error)
	RunSweep(ctx context.Context, performingAdminID int64) (*app.SweepReport, error)
	RecentSweeps(ctx context.Context, performingAdminID int64, limit int) ([]app.SweepSummary, error)
	PreviewPrize(performingAdminID int64, entryFee, totalPlayers, commission, firstPrize, perKill float64, matchType string) (prize.Distribution, error)
}

type Server struct {
	admin   AdminOperations
	adminID int64 // identity the API acts as towards the admin service
	token   string
	logger  *logrus.Entry
}

func NewServer(admin AdminOperations, adminID int64, token string, logger *logrus.Entry) *Server {
	return &Server{admin: admin, adminID: adminID, token: token, logger: logger.WithField("component", "httpapi")}
}

// Routes builds the router. Everything except /healthz requires the admin token.
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusOK, envelope{"status": "ok"})
	})

	router.Group(func(r chi.Router) {
		r.Use(s.requireToken)

		r.Post("/tournaments/{id}/start", s.startTournament)
		r.Post("/sweeps", s.runSweep)
		r.Get("/sweeps", s.listSweeps)
		r.Get("/prize-distribution", s.prizeDistribution)
	})

	return router
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || s.token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
			s.logger.WithField("path", r.URL.Path).Warn("Rejected request with missing or invalid admin token")
			s.errorResponse(w, http.StatusUnauthorized, "invalid or missing admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HTTPServer wraps Routes in an *http.Server listening on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		// Manual starts and sweeps run synchronously within the request.
		WriteTimeout: 5 * time.Minute,
	}
}
