package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"civic-portal/internal/domain"
	"civic-portal/internal/handler"
	"civic-portal/internal/middleware"
)

type Handlers struct {
	Auth          *handler.AuthHandler
	Requests      *handler.RequestHandler
	Chat          *handler.ChatHandler
	IoT           *handler.IoTHandler
	Announcements *handler.AnnouncementHandler
	Photos        *handler.PhotoHandler
	AI            *handler.AIHandler
	Analytics     *handler.AnalyticsHandler
}

func SetupRoutes(
	r chi.Router,
	h Handlers,
	auth *middleware.Auth,
	rdb *redis.Client,
	clientURL string,
	uploadDir string,
) chi.Router {
	// ---- Global Middleware ----
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{clientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Global rate limiting
	r.Use(middleware.RateLimiter(rdb, 100, time.Minute, time.Minute, "global"))

	loginLimit := middleware.RateLimiter(rdb, 10, 10*time.Minute, 10*time.Minute, "login")

	// Stored uploads are public once created.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	// ============================================================
	// Public Endpoints
	// ============================================================
	r.Route("/api/auth", func(a chi.Router) {
		a.Post("/register", h.Auth.Register)
		a.With(loginLimit).Post("/login", h.Auth.Login)
		a.With(loginLimit).Post("/staff-login", h.Auth.StaffLogin)
		a.Post("/verify", h.Auth.Verify)
		a.Post("/verify-staff", h.Auth.VerifyStaff)

		a.With(auth.Require).Get("/me", h.Auth.Me)
	})

	r.Route("/api/announcements", func(a chi.Router) {
		a.Get("/", h.Announcements.List)
		a.Get("/{id}", h.Announcements.GetByID)

		a.With(auth.Require, middleware.RequireStaff).Post("/", h.Announcements.Create)
	})

	// ============================================================
	// Authenticated Endpoints
	// ============================================================
	r.Group(func(pr chi.Router) {
		pr.Use(auth.Require)

		pr.Route("/api/complaints", func(c chi.Router) {
			c.Post("/", h.Requests.Create(domain.KindComplaint))
			c.Get("/", h.Requests.List(domain.KindComplaint))
			c.Get("/user/{userId}", h.Requests.ListByUser(domain.KindComplaint))
			c.Get("/{id}", h.Requests.GetByID(domain.KindComplaint))

			c.With(middleware.RequireStaff, middleware.RequireDepartment).
				Patch("/{id}/status", h.Requests.UpdateStatus(domain.KindComplaint))
		})

		pr.Route("/api/services", func(s chi.Router) {
			s.Post("/", h.Requests.Create(domain.KindService))
			s.Get("/", h.Requests.List(domain.KindService))
			s.Get("/user/{userId}", h.Requests.ListByUser(domain.KindService))
			s.Get("/{id}", h.Requests.GetByID(domain.KindService))

			s.With(middleware.RequireStaff, middleware.RequireDepartment).
				Patch("/{id}/status", h.Requests.UpdateStatus(domain.KindService))
		})

		pr.Route("/api/iot", func(i chi.Router) {
			i.Get("/sensors", h.IoT.Latest)
			i.Get("/sensors/{sensorId}", h.IoT.SensorHistory)
			i.Get("/simulator", h.IoT.SimulatorStatus)

			i.With(middleware.RequireStaff).Delete("/", h.IoT.Purge)
			i.With(middleware.RequireStaff).Post("/simulator/start", h.IoT.StartSimulator)
			i.With(middleware.RequireStaff).Post("/simulator/stop", h.IoT.StopSimulator)
		})

		pr.Route("/api/analytics", func(a chi.Router) {
			a.Use(middleware.RequireStaff)
			a.Get("/summary", h.Analytics.Summary)
			a.Get("/complaints/status", h.Analytics.ComplaintsByStatus)
			a.Get("/complaints/monthly", h.Analytics.MonthlyComplaints)
		})

		pr.Route("/api/photos", func(p chi.Router) {
			p.Post("/upload", h.Photos.Upload)
			p.Get("/all", h.Photos.List)
		})

		pr.Get("/api/chat/history", h.Chat.History)
		pr.Post("/api/ai/chat", h.AI.Chat)

		pr.Get("/ws", h.Chat.ServeWS)
	})

	return r
}
