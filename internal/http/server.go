package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"tally/internal/log"
	"tally/internal/services"
)

// Server exposes the transaction API over HTTP. It embeds http.Server so
// callers can ListenAndServe and Shutdown it directly.
type Server struct {
	http.Server
	service      *services.TransactionService
	defaultOwner uuid.UUID
	logger       *log.Logger
	limiter      *writeLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server.
func NewServer(addr string, service *services.TransactionService, defaultOwner uuid.UUID, logger *log.Logger) *Server {
	s := &Server{
		service:      service,
		defaultOwner: defaultOwner,
		logger:       logger.WithComponent("http"),
		limiter:      newWriteLimiter(writeRequestsPerMinute),
	}

	r := mux.NewRouter()
	r.Use(log.Middleware(logger))
	r.Use(securityHeaders)
	r.Use(s.limitWrites)

	api := r.PathPrefix("/api/transactions").Subrouter()
	api.HandleFunc("", s.handleCreate).Methods(http.MethodPost)
	api.HandleFunc("", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/import", s.handleImport).Methods(http.MethodPost)
	api.HandleFunc("/{id}", s.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/{id}", s.handleUpdate).Methods(http.MethodPut)
	api.HandleFunc("/{id}", s.handleDelete).Methods(http.MethodDelete)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Shutdown stops the limiter's cleanup goroutine and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.Info("Draining HTTP server")
		s.limiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// ownerID resolves the acting user from the X-User-ID header, falling back
// to the configured development owner when the header is absent or invalid.
func (s *Server) ownerID(r *http.Request) uuid.UUID {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return s.defaultOwner
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return s.defaultOwner
	}
	return id
}
