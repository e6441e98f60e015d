package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kyozo/waitlist/internal/auth"
	"github.com/kyozo/waitlist/internal/gate"
	"github.com/kyozo/waitlist/internal/pkg/httputil"
)

// Allowed CORS methods and headers for the browser form and dashboard.
var (
	corsMethods = []string{"GET", "OPTIONS", "PATCH", "DELETE", "POST", "PUT"}
	corsHeaders = []string{
		"X-CSRF-Token", "X-Requested-With", "Accept", "Accept-Version",
		"Content-Length", "Content-MD5", "Content-Type", "Date", "X-Api-Version",
	}
)

// Routes bundles what SetupRoutes mounts.
type Routes struct {
	Handlers       *Handlers
	Admin          *auth.Gate
	Passcode       *gate.Passcode
	Health         *HealthChecker
	AllowedOrigins []string
}

// postOnly answers anything but POST with a 405 JSON body. Preflight
// requests never get here; the CORS middleware answers them.
func postOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httputil.MethodNotAllowed(w)
			return
		}
		h(w, r)
	}
}

// SetupRoutes configures all routes.
func SetupRoutes(rt Routes) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.AllowedOrigins,
		AllowedMethods:   corsMethods,
		AllowedHeaders:   corsHeaders,
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.NotFound(w, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.MethodNotAllowed(w)
	})

	if rt.Health != nil {
		r.Get("/health", rt.Health.HandleHealth)
		r.Get("/health/live", rt.Health.HandleLiveness)
		r.Get("/health/ready", rt.Health.HandleReadiness)
	}

	h := rt.Handlers
	admin := rt.Admin.RequireAdmin

	r.Route("/api", func(r chi.Router) {
		r.Post("/passcode", rt.Passcode.HandleCheck)
		r.Post("/access-requests", h.RequestAccess)

		r.Route("/form", func(r chi.Router) {
			r.Get("/options", h.FormOptions)
			r.Post("/sessions", h.CreateSession)
			r.Route("/sessions/{id}", func(r chi.Router) {
				r.Get("/", h.GetSession)
				r.Patch("/", h.UpdateSession)
				r.Post("/advance", h.Advance)
				r.Post("/retreat", h.Retreat)
			})
		})

		r.HandleFunc("/send-notification", postOnly(h.SendNotification))
		r.With(admin).HandleFunc("/send-reply", postOnly(h.SendReply))
		r.With(admin).HandleFunc("/delete-submission", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				httputil.MethodNotAllowed(w)
				return
			}
			h.DeleteSubmission(w, r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", rt.Admin.HandleLogin)
			r.Post("/logout", rt.Admin.HandleLogout)
			r.Get("/session", rt.Admin.HandleSession)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Get("/submissions", h.ListSubmissions)
				r.Get("/submissions/export", h.ExportSubmissions)
				r.Post("/reply", h.Reply)
				r.Get("/notifications", h.NotificationAttempts)
			})
		})
	})

	return r
}
