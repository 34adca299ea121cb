// Package server is a small booking backend for local development. It
// serves the room catalog, the select-room check and idempotent booking
// confirmations.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/idilsaglam/hotelres/internal/metrics"
	"github.com/idilsaglam/hotelres/internal/model"
	"github.com/idilsaglam/hotelres/pkg/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const shutdownTimeout = 10 * time.Second

// DefaultRooms is the catalog served when none is configured.
var DefaultRooms = []model.Room{
	{ID: "standard", Name: "Standard Room", Price: 250},
	{ID: "deluxe", Name: "Deluxe Room", Price: 350},
	{ID: "suite", Name: "Suite", Price: 500},
}

type Server struct {
	rooms []model.Room
	byID  map[string]model.Room

	mu       sync.Mutex
	bookings map[string]booking // by idempotency key

	now     func() time.Time
	newID   func() string
	logger  *logging.Logger
	metrics *metrics.Metrics
}

type Option func(*Server)

func WithRooms(rooms []model.Room) Option {
	return func(s *Server) { s.rooms = rooms }
}

func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithIDFunc replaces the confirmation id generator.
func WithIDFunc(f func() string) Option {
	return func(s *Server) { s.newID = f }
}

func New(opts ...Option) *Server {
	s := &Server{
		rooms:    DefaultRooms,
		bookings: make(map[string]booking),
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.byID = make(map[string]model.Room, len(s.rooms))
	for _, r := range s.rooms {
		s.byID[r.ID] = r
	}
	return s
}

// Routes returns the instrumented router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/rooms", s.listRooms)
		r.Get("/select-room/{roomId}", s.selectRoom)
		r.Post("/bookings", s.createBooking)
	})

	r.Handle("/metrics", s.metrics.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	return otelhttp.NewHandler(r, "hotelres-backend")
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("booking backend starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down booking backend")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// observe counts requests by route pattern and status.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveBackend(route, strconv.Itoa(status))
		s.logger.With("request_id", middleware.GetReqID(r.Context())).Debug("request served",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start).String(),
		)
	})
}
