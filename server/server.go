package server

import (
	"html/template"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mkobayashi/summarize-portal/internal/config"
	"github.com/mkobayashi/summarize-portal/summarizer"
)

type Server struct {
	env       string // Environment (e.g., "DEV", "production")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	summaries *summarizer.Service
	indexTmpl *template.Template
	log       zerolog.Logger
}

// New wires the HTTP boundary around the summarizer service
func New(cfg config.Config, svc *summarizer.Service, gatherer prometheus.Gatherer, log zerolog.Logger) (*Server, error) {
	tmpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, err
	}

	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		summaries: svc,
		indexTmpl: tmpl,
		log:       log.With().Str("component", "server").Logger(),
	}

	s.initRoutes(gatherer)
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) initRoutes(gatherer prometheus.Gatherer) {
	s.RegisterRouteFunc("GET /{$}", ChainMiddleware(s.IndexHandler(), s.Middleware()...))

	s.RegisterRouteFunc("POST "+RouteSummarize, ChainMiddleware(s.SummarizeHandler(), s.Middleware()...))
	s.RegisterRouteFunc("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.Middleware()...))
	s.RegisterRouteFunc("POST "+RouteExecutePending, ChainMiddleware(s.ExecutePendingHandler(), s.Middleware()...))
	s.RegisterRouteFunc("POST "+RouteSample, ChainMiddleware(s.SampleHandler(), s.Middleware()...))
	s.RegisterRouteFunc("POST "+RouteClear, ChainMiddleware(s.ClearHandler(), s.Middleware()...))
	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.Middleware()...))

	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		s.log.Info().Str("route", route).Msg("Registered route")
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
