package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/Mutombe/silver-carbon/internal/clients"
	"github.com/Mutombe/silver-carbon/internal/http/handlers"
	"github.com/Mutombe/silver-carbon/internal/http/middleware"
	"github.com/Mutombe/silver-carbon/internal/metrics"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Timeout time.Duration
	// LoginPath — Location в ответах 401 (страница входа UI).
	LoginPath string
	// AllowedOrigins — origin'ы UI для CORS; пусто — CORS не подключается.
	AllowedOrigins []string
	BasePath       string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(cl *clients.Clients, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),
		middleware.RequestID(),          // до логирования
		middleware.Logging(opts.Logger), // request-scoped логгер в контексте
		middleware.Metrics(opts.Metrics),
	)
	if len(opts.AllowedOrigins) > 0 {
		root.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"Location", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout))
	}

	h := handlers.New(cl, opts.LoginPath)
	requireSession := middleware.RequireSession(cl.Core.Session(), opts.LoginPath)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, requireSession)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, requireSession)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, requireSession middleware.Middleware) {
	// auth (публичные)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/register", h.Register)
	r.Post("/auth/verify-email", h.VerifyEmail)
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/session", h.Session)

	r.Group(func(r chi.Router) {
		r.Use(requireSession)

		// devices
		r.Get("/devices", h.ListDevices)
		r.Post("/devices", h.CreateDevice)
		r.Get("/devices/mine", h.MyDevices)
		r.Get("/devices/fuel-types", h.FuelTypes)
		r.Get("/devices/technology-types", h.TechnologyTypes)
		r.Get("/devices/{id}", h.GetDevice)
		r.Patch("/devices/{id}", h.UpdateDevice)
		r.Delete("/devices/{id}", h.DeleteDevice)

		// users (admin)
		r.Get("/users", h.ListUsers)
		r.Patch("/users/{id}/toggle-active", h.ToggleUserActive)
		r.Patch("/users/{id}/role", h.ChangeUserRole)

		// profile
		r.Get("/profile", h.GetProfile)
		r.Patch("/profile", h.UpdateProfile)
	})
}
