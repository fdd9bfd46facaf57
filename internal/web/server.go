// Package web serves a password-gated upload form that runs the WebP
// conversion pipeline over submitted images and returns a zip bundle.
package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/imagetools/webp-batch/internal/config"
	"github.com/imagetools/webp-batch/internal/convert"
)

// Server handles login, the upload form and conversion requests.
type Server struct {
	addr          string
	passwordHash  string
	maxUploadSize int64
	defaults      convert.Options
	sessions      *sessionStore
	tmpl          *template.Template
	log           zerolog.Logger
}

// New builds a Server from the server configuration and the conversion
// defaults applied when a form field is left blank.
func New(cfg config.ServerConfig, defaults convert.Options, log zerolog.Logger) (*Server, error) {
	if cfg.PasswordHash == "" {
		return nil, errors.New("web: password hash is required, set server.password_hash or WEBP_BATCH_PASSWORD_HASH")
	}
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{
		addr:          cfg.Addr,
		passwordHash:  cfg.PasswordHash,
		maxUploadSize: cfg.MaxUploadSize,
		defaults:      defaults,
		sessions:      newSessionStore(cfg.SessionTTL.Std()),
		tmpl:          tmpl,
		log:           log,
	}, nil
}

// Handler returns the route table wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /{$}", s.requireAuth(s.handleIndex))
	mux.HandleFunc("POST /convert", s.requireAuth(s.handleConvert))
	return s.logRequests(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("web server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
