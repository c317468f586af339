package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/football-investment/practice-booking-system-sub013/handlers"
	"github.com/football-investment/practice-booking-system-sub013/middleware"
	"github.com/football-investment/practice-booking-system-sub013/models"
	"github.com/football-investment/practice-booking-system-sub013/services"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Tournaments *handlers.TournamentHandler
	Enrollments *handlers.EnrollmentHandler
	Sessions    *handlers.SessionHandler
	Matches     *handlers.MatchHandler
	Rewards     *handlers.RewardHandler
	WebSocket   *handlers.WebSocketHandler
}

func InitRoutes(h Handlers, auth *services.AuthService, allowedOrigins []string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(auth)
	staffOnly := middleware.Authorize(models.RoleInstructor, models.RoleAdmin)

	router.Post("/auth/register", h.Auth.RegisterHandler)
	router.Post("/auth/login", h.Auth.LoginHandler)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournaments.ListHandler)
		r.Get("/{tournamentID}", h.Tournaments.GetByIDHandler)
		r.Get("/{tournamentID}/history", h.Tournaments.HistoryHandler)
		r.Get("/{tournamentID}/sessions", h.Sessions.ListHandler)
		r.Get("/{tournamentID}/enrollments", h.Enrollments.ListHandler)
		r.Get("/{tournamentID}/rankings", h.Matches.ListRankingsHandler)
		r.Get("/{tournamentID}/rewards", h.Rewards.LedgerHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", h.Tournaments.CreateHandler)
			r.Post("/{tournamentID}/enrollments", h.Enrollments.EnrollHandler)
			r.Delete("/{tournamentID}/enrollments/{enrollmentID}", h.Enrollments.WithdrawHandler)

			// Lifecycle and settlement operations stay with staff.
			r.Group(func(r chi.Router) {
				r.Use(staffOnly)

				r.Post("/{tournamentID}/transitions", h.Tournaments.TransitionHandler)
				r.Put("/{tournamentID}/instructor", h.Tournaments.AssignInstructorHandler)
				r.Post("/{tournamentID}/finalize", h.Tournaments.FinalizeHandler)
				r.Post("/{tournamentID}/rewards", h.Rewards.DistributeHandler)
				r.Post("/{tournamentID}/sessions", h.Sessions.CreateHandler)
				r.Put("/{tournamentID}/rankings", h.Matches.IngestRankingsHandler)
			})
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate, staffOnly)
		r.Put("/matches/{matchID}/result", h.Matches.RecordResultHandler)
		r.Delete("/sessions/{sessionID}", h.Sessions.DeleteHandler)
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.SubscribeHandler)

	router.Get("/swagger/*", httpSwagger.Handler())

	return router
}
