package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kolapsis/vocalboard/internal/auth"
	"github.com/kolapsis/vocalboard/internal/calendar"
	"github.com/kolapsis/vocalboard/internal/config"
	"github.com/kolapsis/vocalboard/internal/realtime"
	"github.com/kolapsis/vocalboard/internal/reconcile"
	"github.com/kolapsis/vocalboard/internal/store"
	"github.com/kolapsis/vocalboard/internal/task"
)

// webhookPath is where Google delivers push notifications.
const webhookPath = "/api/google/calendar/notifications"

// Deps holds everything the HTTP surface needs.
type Deps struct {
	Store      store.Store
	Auth       *auth.Service
	Tasks      *task.Service
	Google     *calendar.GoogleSync
	Reconciler *reconcile.Reconciler
	Hub        *realtime.Hub
	RateLimit  config.RateLimitConfig

	// PublicURL is the externally reachable base URL (config or tunnel);
	// empty disables watch-channel registration.
	PublicURL string

	// MCP is the optional assistant tool endpoint, mounted behind auth.
	MCP http.Handler
}

// Server is the HTTP surface of Vocalboard.
type Server struct {
	deps Deps
}

// New creates a Server.
func New(deps Deps) *Server {
	return &Server{deps: deps}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(SecurityHeaders)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Google's webhook: unauthenticated by design, identified by the
	// stored channel/resource ids, always acknowledged with 2xx.
	r.Post(webhookPath, s.handleCalendarWebhook)

	// Credential endpoints, IP rate limited against brute force.
	r.Group(func(r chi.Router) {
		r.Use(IPRateLimit(10, 5))
		r.Post("/api/auth/register", s.handleRegister)
		r.Post("/api/auth/login", s.handleLogin)
		r.Get("/api/auth/google/callback", s.handleConsentLanding)
	})

	// Authenticated API.
	r.Group(func(r chi.Router) {
		r.Use(RateLimit(s.deps.RateLimit))
		r.Use(BearerAuth(s.deps.Auth))

		r.Get("/api/me", s.handleMe)
		r.Get("/api/ws", s.handleWebsocket)

		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", s.handleListTasks)
			r.Post("/", s.handleCreateTask)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", s.handleUpdateTask)
				r.Delete("/", s.handleDeleteTask)
				r.Get("/share-link", s.handleShareLink)
			})
		})

		r.Post("/api/calendar/sync", s.handleCalendarSync)
		r.Get("/api/calendar/test", s.handleCalendarTest)
		r.Get("/api/auth/google", s.handleConsentURL)
		r.Post("/api/auth/google/callback", s.handleConsentCallback)

		if s.deps.MCP != nil {
			r.Handle("/mcp", s.deps.MCP)
		}
	})

	return r
}
