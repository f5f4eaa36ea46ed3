package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/claude/mapty/internal/app"
	"github.com/claude/mapty/internal/mapview"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Views are the headless views the controller renders into. The web page
// reads them back through /api/v1/state.
type Views struct {
	Canvas *mapview.Canvas
	List   *app.List
	Alerts *app.Alerts
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	app    *app.App
	views  Views
	log    *slog.Logger
	whois  WhoIser
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(a *app.App, views Views, log *slog.Logger) *Server {
	s := &Server{
		app:    a,
		views:  views,
		log:    log,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale resolves request identities through the tailnet. Without it
// every request is the local user.
func (s *Server) SetTailscale(wi WhoIser) {
	s.whois = wi
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identify)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)
		r.Get("/state", s.handleState)

		r.Post("/map/click", s.handleMapClick)

		r.Post("/form/variant", s.handleSelectVariant)
		r.Post("/form/cancel", s.handleCancel)
		r.Post("/form/submit", s.handleSubmit)

		r.Get("/workouts", s.handleListWorkouts)
		r.Post("/workouts", s.handleLogWorkout)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Post("/workouts/{id}/focus", s.handleFocusWorkout)
	})
}

// SetMCP serves an MCP endpoint at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}

// SetFrontend mounts the embedded web page.
// Unmatched routes serve index.html.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
