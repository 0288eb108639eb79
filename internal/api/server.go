package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/dgallion1/docserve/internal/config"
	"github.com/dgallion1/docserve/internal/docs"
	"github.com/dgallion1/docserve/internal/metrics"
	"github.com/dgallion1/docserve/internal/render"
	"github.com/dgallion1/docserve/internal/site"
)

// Server is the HTTP surface of docserve: the JSON API plus either the
// single-page shell or server-rendered pages, depending on cfg.Mode.
type Server struct {
	router        chi.Router
	docs          *docs.Service
	pages         *site.Pages
	chromaCSS     map[render.Theme][]byte
	limiter       *rate.Limiter
	errorHandlers []errorHandler
	log           *slog.Logger
	cfg           config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(svc *docs.Service, log *slog.Logger, cfg config.Config) (*Server, error) {
	s := &Server{
		docs:      svc,
		log:       log,
		cfg:       cfg,
		chromaCSS: make(map[render.Theme][]byte),
	}

	chroma := render.NewChroma()
	for _, theme := range []render.Theme{render.ThemeLight, render.ThemeDark} {
		var buf bytes.Buffer
		if err := chroma.WriteCSS(&buf, theme); err != nil {
			return nil, fmt.Errorf("generate %s highlight css: %w", theme, err)
		}
		s.chromaCSS[theme] = buf.Bytes()
	}

	if cfg.Mode == config.ModeSSR {
		pages, err := site.NewPages()
		if err != nil {
			return nil, err
		}
		s.pages = pages
	}

	if cfg.SearchRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.SearchRate), cfg.SearchBurst)
	}

	s.errorHandlers = defaultErrorHandlers()
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	if s.cfg.Metrics {
		r.Use(metrics.Middleware())
	}
	r.Use(SecurityHeaders)
	r.Use(CORS(s.cfg.CORSOrigin))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	if s.cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/navigation", s.handleNavigation)
		r.Get("/content/*", s.handleContent)
		r.With(RateLimit(s.limiter)).Get("/search", s.handleSearch)
		r.Get("/stats/search", s.handleSearchStats)
	})

	r.Get("/static/chroma-light.css", s.handleChromaCSS(render.ThemeLight))
	r.Get("/static/chroma-dark.css", s.handleChromaCSS(render.ThemeDark))
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(site.Static())))

	if s.cfg.Mode == config.ModeSSR {
		r.Get("/", s.handleWelcomePage)
		r.With(RateLimit(s.limiter)).Get("/search", s.handleSearchPage)
		r.Get("/*", s.handleDocPage)
	} else {
		r.Get("/*", s.handleIndex)
	}

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
