package routes

import (
	"net/http"

	_ "github.com/Dosada05/team-hub/docs"
	"github.com/Dosada05/team-hub/handlers"
	"github.com/Dosada05/team-hub/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Admin      *handlers.AdminHandler
	Dashboard  *handlers.DashboardHandler
	Team       *handlers.TeamHandler
	Event      *handlers.EventHandler
	Attendance *handlers.AttendanceHandler
	Comment    *handlers.CommentHandler
	Payment    *handlers.PaymentHandler
	Chat       *handlers.ChatHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(
	router chi.Router,
	h Handlers,
	auth middleware.TokenAuthenticator,
	log *zap.Logger,
	allowedOrigins []string,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(log))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Публичные маршруты
	router.Post("/auth/signup", h.Auth.SignUp)
	router.Post("/auth/signin", h.Auth.SignIn)

	// Браузерный websocket не умеет слать заголовки, токен принимается и в query.
	router.With(middleware.AuthenticateWS(auth)).Get("/ws/teams/{teamID}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(auth))

		r.Post("/auth/signout", h.Auth.SignOut)
		r.Get("/auth/me", h.Auth.Me)
		r.Get("/dashboard", h.Dashboard.Player)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequirePlatformAdmin)
			r.Post("/invites", h.Admin.CreateInvite)
			r.Get("/dashboard", h.Dashboard.Stats)
		})

		r.Route("/teams", func(r chi.Router) {
			r.Post("/", h.Team.CreateTeam)
			r.Get("/", h.Team.ListMyTeams)
			r.Post("/join", h.Team.JoinTeam)

			r.Route("/{teamID}", func(r chi.Router) {
				r.Get("/", h.Team.GetTeam)
				r.Patch("/", h.Team.UpdateTeam)
				r.Delete("/", h.Team.DeleteTeam)
				r.Post("/invite-code", h.Team.RegenerateInviteCode)
				r.Post("/logo", h.Team.UploadLogo)

				r.Get("/members", h.Team.ListMembers)
				r.Delete("/members/{userID}", h.Team.RemoveMember)

				r.Get("/events", h.Event.ListTeamEvents)
				r.Post("/events", h.Event.CreateEvent)

				r.Get("/chat", h.Chat.History)
				r.Post("/chat", h.Chat.Send)
			})
		})

		r.Route("/events/{eventID}", func(r chi.Router) {
			r.Get("/", h.Event.GetEvent)
			r.Patch("/", h.Event.UpdateEvent)
			r.Delete("/", h.Event.DeleteEvent)
			r.Post("/confirm", h.Event.ConfirmEvent)

			r.Put("/attendance", h.Attendance.Vote)
			r.Get("/attendance", h.Attendance.ListAttendance)

			r.Get("/comments", h.Comment.ListComments)
			r.Post("/comments", h.Comment.AddComment)

			r.Get("/payments", h.Payment.ListEventPayments)
			r.Post("/payments", h.Payment.CreatePayment)
		})

		r.Get("/payments/mine", h.Payment.ListMyPendingPayments)
		r.Patch("/payments/{paymentID}", h.Payment.UpdatePaymentStatus)
	})
}
