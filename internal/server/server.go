// Package server wires the HTTP surface of the showcase proxy: routing,
// CORS/compression middleware and the handlers that delegate to the fetch
// orchestrator.
package server

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/meostore/showcase-proxy/pkg/fetch"
	"github.com/meostore/showcase-proxy/pkg/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Config holds the server configuration.
type Config struct {
	// AllowedOrigins for CORS. Empty disables CORS headers.
	AllowedOrigins []string
}

// Server maps inbound paths to keyspace fetches.
type Server struct {
	router    *mux.Router
	coalescer *fetch.Coalescer
	config    Config
	logger    zerolog.Logger
}

// New creates a Server around a fetch orchestrator.
func New(coalescer *fetch.Coalescer, cfg Config) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		coalescer: coalescer,
		config:    cfg,
		logger:    logging.NewLogger("server"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	s.router.HandleFunc("/ping", s.handlePing).Methods(http.MethodGet, http.MethodHead)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/enka/{uid}", s.handleEnka).Methods(http.MethodGet)
	s.router.HandleFunc("/idv/{roleid}", s.handleIDV).Methods(http.MethodGet)
	// Registered last so /enka and /idv win.
	s.router.HandleFunc("/{game}/{uid}", s.handleGame).Methods(http.MethodGet)
}

// Handler returns the router wrapped with logging, CORS and gzip middleware.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = handlers.CompressHandler(h)
	if len(s.config.AllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(s.config.AllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "Accept"}),
			handlers.AllowCredentials(),
		)(h)
	}
	return s.requestLogger(h)
}
