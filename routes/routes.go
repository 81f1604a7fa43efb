package routes

import (
	"log/slog"
	"net/http"
	"time"

	_ "github.com/Dosada05/padel-club/docs"
	"github.com/Dosada05/padel-club/handlers"
	"github.com/Dosada05/padel-club/middleware"
	"github.com/Dosada05/padel-club/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handlers собирает все HTTP-обработчики. WebhookHandler может быть nil,
// если провайдер платежей не настроен.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Admin      *handlers.AdminHandler
	Tournament *handlers.TournamentHandler
	Booking    *handlers.BookingHandler
	Transfer   *handlers.TransferHandler
	Webhook    *handlers.WebhookHandler
	WebSocket  *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Logger         *slog.Logger
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"status":"ok"}`))
	})
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	authenticate := middleware.Authenticate(opts.JWTSecret, opts.Logger)
	staff := []models.UserRole{models.RoleAdmin, models.RoleClubAdmin, models.RoleStaff}
	clubAdmins := []models.UserRole{models.RoleAdmin, models.RoleClubAdmin}

	router.Route("/ws", func(r chi.Router) {
		r.Get("/tournaments/{tournamentID}", h.WebSocket.ServeTournament)
		r.Get("/bookings/{bookingID}", h.WebSocket.ServeBooking)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Post("/auth/login", h.Auth.Login)

		if h.Webhook != nil {
			r.Post("/webhooks/stripe", h.Webhook.StripeHandler)
		}

		// Публичные маршруты турниров
		r.Get("/tournaments", h.Tournament.ListHandler)
		r.Get("/tournaments/{tournamentID}", h.Tournament.GetByIDHandler)
		r.Get("/tournaments/{tournamentID}/bracket", h.Tournament.GetBracketHandler)
		r.Post("/tournaments/{tournamentID}/registrations", h.Tournament.RegisterTeamHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/admin", func(r chi.Router) {
				r.With(middleware.RequireRoles(models.RoleAdmin)).Post("/clubs", h.Admin.CreateClub)
				r.With(middleware.RequireRoles(clubAdmins...)).Post("/users", h.Admin.CreateUser)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(staff...))

				r.Post("/tournaments", h.Tournament.CreateHandler)
				r.Patch("/tournaments/{tournamentID}/status", h.Tournament.UpdateStatusHandler)
				r.Post("/tournaments/{tournamentID}/registrations/{registrationID}/confirm", h.Tournament.ConfirmRegistrationHandler)
				r.Post("/tournaments/{tournamentID}/registrations/{registrationID}/payments", h.Tournament.RecordRegistrationPaymentHandler)
				r.Post("/tournaments/{tournamentID}/registrations/{registrationID}/check-in", h.Tournament.CheckInRegistrationHandler)
				r.Post("/tournaments/{tournamentID}/bracket", h.Tournament.GenerateBracketHandler)
				r.Post("/tournaments/{tournamentID}/rounds/advance", h.Tournament.AdvanceRoundHandler)
				r.Put("/matches/{matchID}/result", h.Tournament.RecordMatchResultHandler)

				r.Post("/bookings", h.Booking.CreateHandler)
				r.Get("/bookings/{bookingID}/settlement", h.Booking.SettlementHandler)
				r.Post("/split-payments/{splitPaymentID}/result", h.Booking.SplitPaymentResultHandler)
				r.Post("/payments/{paymentID}/result", h.Booking.PaymentResultHandler)
			})

			r.Route("/clubs/{clubID}", func(r chi.Router) {
				r.Use(middleware.RequireRoles(clubAdmins...))

				r.Post("/transfers/process", h.Transfer.ProcessHandler)
				r.Get("/payouts", h.Transfer.ListPayoutsHandler)
				r.Put("/payment-account", h.Transfer.SetPaymentAccountHandler)
				r.Post("/onboarding/sync", h.Transfer.SyncOnboardingHandler)
			})
		})
	})
}
