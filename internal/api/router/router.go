package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/andrewdunn358-dev/Veteran-sub000/internal/http/handlers"
	httpmiddleware "github.com/andrewdunn358-dev/Veteran-sub000/internal/http/middleware"
	"github.com/andrewdunn358-dev/Veteran-sub000/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	TriageHandler   *handlers.TriageHandler
	AdminHandler    *handlers.AdminHandler
	AdminAuthSecret string
	MetricsHandler  http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Route("/triage", func(t chi.Router) {
			t.Post("/assess", cfg.TriageHandler.Assess)
		})

		v1.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/audit", cfg.AdminHandler.QueryAudit)
			admin.Get("/sessions/{sessionID}/transcript", cfg.AdminHandler.GetTranscript)
			admin.Post("/lexicon/reload", cfg.AdminHandler.ReloadLexicon)
		})
	})

	return r
}
