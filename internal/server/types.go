package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ByLCY/barlabel/barcode"
	"github.com/ByLCY/barlabel/layout"
)

// generator is what the server needs from barcode.Generator.
type generator interface {
	Encode(data string, sym layout.Symbology, opts barcode.Options) (*barcode.Result, error)
	Write(w io.Writer, res *barcode.Result, format string) error
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	gen       generator
	defaults  barcode.Options
	maxWidth  int
	maxHeight int
	version   string
}

// Config holds server configuration.
type Config struct {
	Host       string
	Port       int
	TimeoutSec int
	MaxWidth   int
	MaxHeight  int
	Version    string
	// Defaults are applied before query parameters.
	Defaults barcode.Options
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// NewServer creates a barcode server instance.
func NewServer(config Config, gen generator) (*Server, error) {
	if gen == nil {
		return nil, fmt.Errorf("server requires a barcode generator")
	}
	if config.MaxWidth <= 0 || config.MaxHeight <= 0 {
		return nil, fmt.Errorf("max image size must be positive: %dx%d", config.MaxWidth, config.MaxHeight)
	}
	if err := config.Defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid default options: %w", err)
	}
	return &Server{
		gen:       gen,
		defaults:  config.Defaults,
		maxWidth:  config.MaxWidth,
		maxHeight: config.MaxHeight,
		version:   config.Version,
	}, nil
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Group(func(r chi.Router) {
		r.Use(s.metricsMiddleware)
		r.Get("/healthz", s.healthHandler)
		r.Get("/barcode", s.barcodeHandler)
	})
	r.Handle("/metrics", metricsHandler())
	return r
}

// NewHTTPServer wraps handler in an http.Server listening on config's address.
func NewHTTPServer(config Config, handler http.Handler) *http.Server {
	timeout := time.Duration(config.TimeoutSec) * time.Second
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
}
